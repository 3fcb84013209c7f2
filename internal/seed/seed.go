// Package seed generates demo registries and schedules for local development.
package seed

import (
	"fmt"
	"math/rand"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/registry"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/utils"
)

func RandomRegistry(clients, workers int) registry.Document {
	doc := registry.Document{
		Clients: make([]domain.ClientSite, clients),
		Workers: make([]domain.Worker, workers),
	}
	for i := range doc.Clients {
		doc.Clients[i] = utils.GenerateRandomClientSite(fmt.Sprintf("client-%03d", i+1))
	}
	for i := range doc.Workers {
		doc.Workers[i] = utils.GenerateRandomWorker(fmt.Sprintf("worker-%04d", i+1))
	}
	return doc
}

// RandomWeek builds a change log that sets a headcount for every client and day of the week and
// confirms free workers against it. fill is the share of required positions to staff, so the
// result has a mix of fulfilled, partial and shortage slots. booked carries confirmations that
// already exist (worker id by date) and is updated in place.
func RandomWeek(doc registry.Document, weekStart domain.Date, fill float64, booked map[domain.Date]map[string]bool) []domain.Change {
	var changes []domain.Change
	for _, day := range domain.Week(weekStart) {
		if booked[day] == nil {
			booked[day] = make(map[string]bool)
		}
		// shuffle workers once per day
		order := rand.Perm(len(doc.Workers))
		next := 0

		for _, client := range doc.Clients {
			required := rand.Intn(5)
			changes = append(changes, domain.Require(client.ID, day, required))

			staff := int(float64(required)*fill + rand.Float64())
			for staffed := 0; staffed < staff && next < len(order); next++ {
				w := doc.Workers[order[next]]
				if booked[day][w.ID] {
					continue
				}
				booked[day][w.ID] = true
				changes = append(changes, domain.Add(w.ID, client.ID, day))
				staffed++
			}
		}
	}
	return changes
}

// Bookings indexes the confirmed assignments of slots the way RandomWeek expects.
func Bookings(slots []domain.Slot) map[domain.Date]map[string]bool {
	booked := make(map[domain.Date]map[string]bool)
	for _, s := range slots {
		for _, a := range s.Assignments {
			if a.Status != domain.AssignmentConfirmed {
				continue
			}
			if booked[s.Date] == nil {
				booked[s.Date] = make(map[string]bool)
			}
			booked[s.Date][a.WorkerID] = true
		}
	}
	return booked
}
