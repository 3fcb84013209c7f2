package handler

import (
	"net/http"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/registry"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/scheduler"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/simulation"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/utils"
)

func (h *Handler) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name" validate:"required,max=100"`
		WeekStart string `json:"weekStart" validate:"required,date"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	plannerID, _ := r.Context().Value(SubCtxKey).(string)
	s := h.sessions.Open(r.Context(), simulation.Meta{
		Name:      req.Name,
		PlannerID: plannerID,
		WeekStart: domain.Date(req.WeekStart),
	})

	h.successResponse(w, r, "simulation created", s.Record())
}

func (h *Handler) ListSimulations(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "simulations", h.sessions.List())
}

func (h *Handler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(SimulationCtx).(*simulation.Session)

	h.successResponse(w, r, "simulation", s.Record())
}

func (h *Handler) ProposeChange(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(SimulationCtx).(*simulation.Session)

	var change domain.Change
	if err := h.readJSON(r, &change); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateChangeWithRegistry(change, h.registry); err != nil {
		h.domainError(w, r, err)
		return
	}

	if _, err := h.sessions.Propose(r.Context(), s.ID(), change); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "change accepted", s.Record())
}

// AutofillSimulation proposes suggested assignments for the session's week. Suggestions go through
// the session like hand-made changes; the first rejected one stops the run.
func (h *Handler) AutofillSimulation(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(SimulationCtx).(*simulation.Session)

	if s.Status() != domain.SessionDraft {
		h.domainError(w, r, domain.ErrSessionClosed)
		return
	}

	clients := h.registry.Clients()
	clientIDs := make([]string, len(clients))
	for i, c := range clients {
		clientIDs[i] = c.ID
	}

	sched, err := scheduler.New(scheduler.DefaultParameters(), s.Preview(), clientIDs, registry.WorkerIDs(h.registry), domain.Week(s.WeekStart()))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	changes, err := sched.Suggest()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	for _, change := range changes {
		if _, err := h.sessions.Propose(r.Context(), s.ID(), change); err != nil {
			h.domainError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "simulation autofilled", struct {
		Added      []domain.Change          `json:"added"`
		Simulation domain.SimulationSession `json:"simulation"`
	}{changes, s.Record()})
}

func (h *Handler) PreviewSimulation(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(SimulationCtx).(*simulation.Session)

	weekStart, err := h.weekStartParam(r, s.WeekStart())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.successResponse(w, r, "simulation preview", gridResponse{
		Version: s.BaseVersion(),
		Grid:    h.weekGrid(s.Preview(), weekStart),
	})
}

func (h *Handler) CommitSimulation(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(SimulationCtx).(*simulation.Session)

	version, err := h.sessions.Commit(r.Context(), s.ID())
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "simulation committed", struct {
		Version    int64                    `json:"version"`
		Simulation domain.SimulationSession `json:"simulation"`
	}{version, s.Record()})
}

func (h *Handler) DiscardSimulation(w http.ResponseWriter, r *http.Request) {
	s := r.Context().Value(SimulationCtx).(*simulation.Session)

	if err := h.sessions.Discard(r.Context(), s.ID()); err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "simulation discarded", s.Record())
}
