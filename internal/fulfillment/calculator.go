// Package fulfillment derives slot status and staffing metrics from a resolved schedule view.
// Everything here is a pure function of its inputs.
package fulfillment

import "github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"

// Status classifies a slot by its confirmed headcount. Tentative assignments never count.
func Status(required, confirmed int) domain.SlotStatus {
	switch {
	case required == 0 || confirmed >= required:
		return domain.SlotFulfilled
	case confirmed == 0:
		return domain.SlotShortage
	default:
		return domain.SlotPartial
	}
}

type SlotResult struct {
	ClientID  string            `json:"clientID"`
	Date      domain.Date       `json:"date"`
	Required  int               `json:"required"`
	Confirmed int               `json:"confirmed"`
	Tentative int               `json:"tentative"`
	Vacant    int               `json:"vacant"`
	Status    domain.SlotStatus `json:"status"`
}

func Evaluate(slot domain.Slot) SlotResult {
	res := SlotResult{ClientID: slot.ClientID, Date: slot.Date, Required: slot.RequiredCount}
	for _, a := range slot.Assignments {
		switch a.Status {
		case domain.AssignmentConfirmed:
			res.Confirmed++
		case domain.AssignmentTentative:
			res.Tentative++
		}
	}
	res.Vacant = max(0, res.Required-res.Confirmed)
	res.Status = Status(res.Required, res.Confirmed)
	return res
}

type Metrics struct {
	TotalRequired   int     `json:"totalRequired"`
	TotalConfirmed  int     `json:"totalConfirmed"`
	TotalTentative  int     `json:"totalTentative"`
	FillRate        float64 `json:"fillRate"`
	VacantSlots     int     `json:"vacantSlots"`
	DistinctWorkers int     `json:"distinctWorkers"`
	Fulfilled       int     `json:"fulfilled"`
	Partial         int     `json:"partial"`
	Shortage        int     `json:"shortage"`
}

// Summarize aggregates slots. FillRate is Σconfirmed/Σrequired, and 1.0 when nothing is required.
// DistinctWorkers counts confirmed workers only.
func Summarize(slots []domain.Slot) Metrics {
	var m Metrics
	workers := make(map[string]struct{})
	for _, slot := range slots {
		res := Evaluate(slot)
		m.TotalRequired += res.Required
		m.TotalConfirmed += res.Confirmed
		m.TotalTentative += res.Tentative
		m.VacantSlots += res.Vacant
		switch res.Status {
		case domain.SlotFulfilled:
			m.Fulfilled++
		case domain.SlotPartial:
			m.Partial++
		case domain.SlotShortage:
			m.Shortage++
		}
		for _, a := range slot.Assignments {
			if a.Status == domain.AssignmentConfirmed {
				workers[a.WorkerID] = struct{}{}
			}
		}
	}
	m.DistinctWorkers = len(workers)
	m.FillRate = FillRate(m.TotalConfirmed, m.TotalRequired)
	return m
}

func FillRate(confirmed, required int) float64 {
	if required == 0 {
		return 1
	}
	return float64(confirmed) / float64(required)
}
