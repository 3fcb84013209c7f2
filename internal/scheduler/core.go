package scheduler

import (
	"math"
	"slices"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

// available returns the workers that can fill vacancy i: free that day, not already in the slot,
// and not picked for another vacancy on the same day
func (s *Scheduler) available(genes []*gene, i int) []string {
	g := genes[i]
	key := domain.SlotKey{ClientID: g.clientID, Date: g.date}

	var out []string
	for _, workerID := range s.candidates[g.date] {
		if slices.Contains(s.inSlot[key], workerID) {
			continue
		}
		used := false
		for _, other := range genes {
			if other.date == g.date && slices.Contains(other.workerIDs, workerID) {
				used = true
				break
			}
		}
		if !used {
			out = append(out, workerID)
		}
	}
	return out
}

// randomInitChromosome builds a random chromosome
func (s *Scheduler) randomInitChromosome() *chromosome {
	ch := &chromosome{genes: make([]*gene, len(s.vacancies))}
	for i, v := range s.vacancies {
		ch.genes[i] = &gene{clientID: v.clientID, date: v.date, open: v.open}
	}

	for i, g := range ch.genes {
		candidates := s.available(ch.genes, i)
		// shuffle candidates
		s.rng.Shuffle(len(candidates), func(a, b int) {
			candidates[a], candidates[b] = candidates[b], candidates[a]
		})
		g.workerIDs = candidates[:min(g.open, len(candidates))]
	}
	return ch
}

/**
 * calcFitness scores a chromosome
 * fitness = filled - FairnessWeight * fairnessPenalty
 * where:
 * 		1. filled is the number of positions filled
 * 		2. fairnessPenalty is the variance of confirmed days per worker over the range
 * 		3. FairnessWeight trades coverage against fairness
 */
func (s *Scheduler) calcFitness(ch *chromosome) {
	workCnt := make(map[string]float64, len(s.load))
	for id, days := range s.load {
		workCnt[id] = days
	}

	filled := 0.0
	for _, g := range ch.genes {
		for _, workerID := range g.workerIDs {
			workCnt[workerID]++
			filled++
		}
	}

	variance := 0.0
	if len(workCnt) > 0 {
		avg := 0.0
		for _, cnt := range workCnt {
			avg += cnt
		}
		avg /= float64(len(workCnt))

		for _, cnt := range workCnt {
			variance += math.Pow(cnt-avg, 2)
		}
		variance /= float64(len(workCnt))
	}

	ch.fitness = filled - s.parameters.FairnessWeight*variance
}

// selectByRoulette picks proportionally to fitness shifted to be non-negative
func (s *Scheduler) selectByRoulette(pop []*chromosome) *chromosome {
	minFit := math.Inf(1)
	for _, ch := range pop {
		minFit = math.Min(minFit, ch.fitness)
	}

	const epsilon = 1e-9
	sumFit := 0.0
	for _, ch := range pop {
		sumFit += ch.fitness - minFit + epsilon
	}
	pick := s.rng.Float64() * sumFit
	partial := 0.0

	for _, ch := range pop {
		partial += ch.fitness - minFit + epsilon
		if partial >= pick {
			return ch
		}
	}

	// unreachable
	return pop[len(pop)-1]
}

// dayCrossover is a single-point crossover cut on a day boundary, so every day comes from one parent
func (s *Scheduler) dayCrossover(ch1, ch2 *chromosome) {
	if len(ch1.genes) != len(ch2.genes) {
		return
	}

	var boundaries []int
	for i := 1; i < len(ch1.genes); i++ {
		if ch1.genes[i].date != ch1.genes[i-1].date {
			boundaries = append(boundaries, i)
		}
	}
	if len(boundaries) == 0 {
		return
	}

	point := boundaries[s.rng.Intn(len(boundaries))]
	for i := point; i < len(ch1.genes); i++ {
		ch1.genes[i], ch2.genes[i] = ch2.genes[i], ch1.genes[i]
	}
}

// mutate swaps chosen workers or tops up unfilled vacancies
func (s *Scheduler) mutate(ch *chromosome) {
	for i, g := range ch.genes {
		for j := range g.workerIDs {
			// each worker may be replaced
			if s.rng.Float64() > s.parameters.MutationRate {
				continue
			}
			candidates := s.available(ch.genes, i)
			if len(candidates) > 0 {
				g.workerIDs[j] = candidates[s.rng.Intn(len(candidates))]
			}
		}

		if len(g.workerIDs) < g.open && s.rng.Float64() <= s.parameters.MutationRate {
			candidates := s.available(ch.genes, i)
			if len(candidates) > 0 {
				g.workerIDs = append(g.workerIDs, candidates[s.rng.Intn(len(candidates))])
			}
		}
	}
}
