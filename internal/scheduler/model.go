package scheduler

import "github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"

// gene is the staffing decision for one (client, date) vacancy
type gene struct {
	clientID  string
	date      domain.Date
	open      int      // open positions
	workerIDs []string // empty when nothing was filled
}

func (g *gene) clone() *gene {
	c := *g
	c.workerIDs = append([]string(nil), g.workerIDs...)
	return &c
}

// chromosome is one staffing plan for the range
type chromosome struct {
	genes   []*gene
	fitness float64
}

func (ch *chromosome) clone() *chromosome {
	c := &chromosome{genes: make([]*gene, len(ch.genes)), fitness: ch.fitness}
	for i, g := range ch.genes {
		c.genes[i] = g.clone()
	}
	return c
}

// Parameters tune the genetic search.
type Parameters struct {
	PopulationSize int
	MaxGenerations int
	CrossoverRate  float64
	MutationRate   float64
	EliteCount     int
	FairnessWeight float64 // weight of the workload variance against positions filled
	Seed           int64   // 0 seeds from the clock
}

func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize: 40,
		MaxGenerations: 80,
		CrossoverRate:  0.8,
		MutationRate:   0.05,
		EliteCount:     2,
		FairnessWeight: 0.5,
	}
}
