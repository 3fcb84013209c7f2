// Package scheduler suggests confirmed assignments that fill open positions over a range of days.
// Suggestions are plain Add changes; they are meant to be proposed into a simulation session, which
// validates them like any other change.
package scheduler

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"
	"time"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/availability"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/fulfillment"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/schedule"
)

type Scheduler struct {
	parameters Parameters
	rng        *rand.Rand
	vacancies  []*gene                     // sorted by date, then client
	candidates map[domain.Date][]string    // free workers per date
	inSlot     map[domain.SlotKey][]string // workers already in the slot, tentative included
	load       map[string]float64          // confirmed days per worker in range
}

func New(parameters Parameters, view schedule.View, clientIDs, workerIDs []string, days []domain.Date) (*Scheduler, error) {
	if parameters.PopulationSize <= 0 || parameters.MaxGenerations < 0 {
		return nil, fmt.Errorf("population size must be positive and generations non-negative")
	}
	if parameters.EliteCount < 0 || parameters.EliteCount > parameters.PopulationSize {
		return nil, fmt.Errorf("elite count %d out of range", parameters.EliteCount)
	}

	seed := parameters.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Scheduler{
		parameters: parameters,
		rng:        rand.New(rand.NewSource(seed)),
		candidates: make(map[domain.Date][]string),
		inSlot:     make(map[domain.SlotKey][]string),
		load:       make(map[string]float64, len(workerIDs)),
	}

	for _, id := range workerIDs {
		s.load[id] = 0
	}

	days = slices.Clone(days)
	slices.Sort(days)
	for _, day := range days {
		s.candidates[day] = availability.FreeWorkers(view, day, workerIDs)

		for _, clientID := range clientIDs {
			key := domain.SlotKey{ClientID: clientID, Date: day}
			slot := view.Slot(clientID, day)
			for _, a := range slot.Assignments {
				s.inSlot[key] = append(s.inSlot[key], a.WorkerID)
				if _, tracked := s.load[a.WorkerID]; tracked && a.Status == domain.AssignmentConfirmed {
					s.load[a.WorkerID]++
				}
			}

			res := fulfillment.Evaluate(slot)
			if open := res.Required - res.Confirmed; open > 0 {
				s.vacancies = append(s.vacancies, &gene{clientID: clientID, date: day, open: open})
			}
		}
	}

	return s, nil
}

// Suggest runs the search and returns Add changes ordered by date then client. The result never
// books a worker twice on one day and never exceeds a slot's open positions.
func (s *Scheduler) Suggest() ([]domain.Change, error) {
	if len(s.vacancies) == 0 {
		return nil, nil
	}

	// initial population
	pop := make([]*chromosome, s.parameters.PopulationSize)
	for i := range pop {
		pop[i] = s.randomInitChromosome()
		s.calcFitness(pop[i])
	}

	best := pop[0].clone()
	for gen := 0; gen < s.parameters.MaxGenerations; gen++ {
		// keep the elite
		sort.Slice(pop, func(i, j int) bool {
			return pop[i].fitness > pop[j].fitness
		})
		if pop[0].fitness > best.fitness {
			// copy, breeding mutates genes in place
			best = pop[0].clone()
		}

		newPop := make([]*chromosome, 0, s.parameters.PopulationSize)
		for _, elite := range pop[:s.parameters.EliteCount] {
			newPop = append(newPop, elite.clone())
		}

		// fill the rest by crossover and mutation
		for len(newPop) < s.parameters.PopulationSize {
			p1 := s.selectByRoulette(pop).clone()
			p2 := s.selectByRoulette(pop).clone()

			if s.rng.Float64() < s.parameters.CrossoverRate {
				s.dayCrossover(p1, p2)
			}

			s.mutate(p1)
			s.mutate(p2)

			newPop = append(newPop, p1)
			if len(newPop) < s.parameters.PopulationSize {
				newPop = append(newPop, p2)
			}
		}

		for i := range newPop {
			s.calcFitness(newPop[i])
		}
		pop = newPop
	}
	for _, ch := range pop {
		if ch.fitness > best.fitness {
			best = ch
		}
	}

	if err := s.validate(best); err != nil {
		return nil, err
	}

	var changes []domain.Change
	for _, g := range best.genes {
		for _, workerID := range g.workerIDs {
			changes = append(changes, domain.Add(workerID, g.clientID, g.date))
		}
	}
	return changes, nil
}

// validate checks the result against the constraints
func (s *Scheduler) validate(ch *chromosome) error {
	booked := make(map[domain.Date]map[string]string)
	for _, g := range ch.genes {
		if len(g.workerIDs) > g.open {
			return fmt.Errorf("client %s on %s: %d workers for %d open positions", g.clientID, g.date, len(g.workerIDs), g.open)
		}
		if booked[g.date] == nil {
			booked[g.date] = make(map[string]string)
		}
		for _, workerID := range g.workerIDs {
			if other, ok := booked[g.date][workerID]; ok {
				return &domain.DoubleBookingError{WorkerID: workerID, Date: g.date, ExistingClientID: other, TargetClientID: g.clientID}
			}
			booked[g.date][workerID] = g.clientID
		}
	}
	return nil
}
