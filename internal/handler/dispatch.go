package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/availability"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/export"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/fulfillment"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/registry"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/schedule"
)

// maxSummaryDays bounds /summary so one request cannot walk years of slots.
const maxSummaryDays = 366

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "ok", map[string]int64{"version": h.store.CurrentVersion()})
}

func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "schedule version", map[string]int64{"version": h.store.CurrentVersion()})
}

func (h *Handler) GetSlot(w http.ResponseWriter, r *http.Request) {
	req := struct {
		ClientID string `validate:"required"`
		Date     string `validate:"required,date"`
	}{
		ClientID: chi.URLParam(r, "clientID"),
		Date:     chi.URLParam(r, "date"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	snap := h.store.Snapshot()
	slot := snap.Slot(req.ClientID, domain.Date(req.Date))
	h.successResponse(w, r, "slot", struct {
		Version     int64                  `json:"version"`
		Slot        domain.Slot            `json:"slot"`
		Fulfillment fulfillment.SlotResult `json:"fulfillment"`
	}{snap.Version(), slot, fulfillment.Evaluate(slot)})
}

type gridResponse struct {
	Version int64            `json:"version"`
	Grid    fulfillment.Grid `json:"grid"`
}

func (h *Handler) weekStartParam(r *http.Request, fallback domain.Date) (domain.Date, error) {
	req := struct {
		WeekStart string `validate:"required,date"`
	}{WeekStart: r.URL.Query().Get("weekStart")}
	if req.WeekStart == "" && fallback != "" {
		return fallback, nil
	}
	if err := h.validate.Struct(req); err != nil {
		return "", err
	}
	return domain.Date(req.WeekStart), nil
}

func (h *Handler) weekGrid(view schedule.View, weekStart domain.Date) fulfillment.Grid {
	return fulfillment.WeekGrid(view, h.registry.Clients(), weekStart, h.workerName)
}

func (h *Handler) GetWeekGrid(w http.ResponseWriter, r *http.Request) {
	weekStart, err := h.weekStartParam(r, "")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	snap := h.store.Snapshot()
	h.successResponse(w, r, "week grid", gridResponse{
		Version: snap.Version(),
		Grid:    h.weekGrid(snap, weekStart),
	})
}

func (h *Handler) ExportWeekGrid(w http.ResponseWriter, r *http.Request) {
	weekStart, err := h.weekStartParam(r, "")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	grid := h.weekGrid(h.store.Snapshot(), weekStart)
	f, err := export.WeekGrid(grid)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="dispatch-%s.xlsx"`, weekStart))
	if _, err := f.WriteTo(w); err != nil {
		// headers are already sent, only log
		h.logInternalServerError(r, err)
	}
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := struct {
		From     string `validate:"required,date"`
		To       string `validate:"required,date"`
		ClientID string
	}{From: q.Get("from"), To: q.Get("to"), ClientID: q.Get("clientID")}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	from, to := domain.Date(req.From), domain.Date(req.To)
	if to < from {
		h.domainError(w, r, &domain.ValidationError{Field: "to", Reason: "must not be before from"})
		return
	}
	if days := int(to.Time().Sub(from.Time()).Hours()/24) + 1; days > maxSummaryDays {
		h.domainError(w, r, &domain.ValidationError{Field: "to", Reason: fmt.Sprintf("range is limited to %d days", maxSummaryDays)})
		return
	}

	clientIDs := []string{req.ClientID}
	if req.ClientID == "" {
		clients := h.registry.Clients()
		clientIDs = make([]string, len(clients))
		for i, c := range clients {
			clientIDs[i] = c.ID
		}
	}

	snap := h.store.Snapshot()
	h.successResponse(w, r, "summary", struct {
		Version int64               `json:"version"`
		From    domain.Date         `json:"from"`
		To      domain.Date         `json:"to"`
		Summary fulfillment.Metrics `json:"summary"`
	}{snap.Version(), from, to, fulfillment.Summarize(fulfillment.Range(snap, clientIDs, from, to))})
}

// GetAvailableWorkers lists registry workers with no confirmed assignment on the date, either in
// the committed schedule or, with sessionID, in that simulation's working view.
func (h *Handler) GetAvailableWorkers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := struct {
		Date      string `validate:"required,date"`
		SessionID string
	}{Date: q.Get("date"), SessionID: q.Get("sessionID")}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	var view availability.Lookup = h.store.Snapshot()
	if req.SessionID != "" {
		s, err := h.sessions.Get(r.Context(), req.SessionID)
		if err != nil {
			h.domainError(w, r, err)
			return
		}
		view = s.Preview()
	}

	free := availability.FreeWorkers(view, domain.Date(req.Date), registry.WorkerIDs(h.registry))
	workers := make([]domain.Worker, 0, len(free))
	for _, id := range free {
		if wk, ok := h.registry.Worker(id); ok {
			workers = append(workers, wk)
		}
	}
	h.successResponse(w, r, "available workers", workers)
}
