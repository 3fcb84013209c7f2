package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/config"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/metrics"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/registry"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/schedule"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/simulation"
)

var planners = []domain.Role{domain.RolePlanner, domain.RoleAdmin}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	translator ut.Translator
	store      *schedule.Store
	sessions   *simulation.Manager
	registry   registry.Registry
	metrics    *metrics.Recorder

	Mux *chi.Mux
}

// NewHandler wires the HTTP surface. rec may be nil when metrics are disabled.
func NewHandler(cfg *config.Config, store *schedule.Store, sessions *simulation.Manager, reg registry.Registry, rec *metrics.Recorder) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerDateValidation(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		translator: trans,
		store:      store,
		sessions:   sessions,
		registry:   reg,
		metrics:    rec,

		Mux: chi.NewRouter(),
	}, nil
}

func registerDateValidation(validate *validator.Validate, trans ut.Translator) error {
	err := validate.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		return domain.Date(fl.Field().String()).Valid()
	})
	if err != nil {
		return err
	}
	return validate.RegisterTranslation("date", trans,
		func(ut ut.Translator) error {
			return ut.Add("date", "{0} must be a YYYY-MM-DD date", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T("date", fe.Field())
			if err != nil {
				return fmt.Sprintf("%s must be a YYYY-MM-DD date", fe.Field())
			}
			return t
		},
	)
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Healthz)
	if h.metrics != nil {
		h.Mux.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	// everything below requires a valid token
	h.Mux.Route("/dispatch", func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/version", h.GetVersion)
		r.Get("/slots/{clientID}/{date}", h.GetSlot)
		r.Get("/grid", h.GetWeekGrid)
		r.Get("/grid/export", h.ExportWeekGrid)
		r.Get("/summary", h.GetSummary)
		r.Get("/available-workers", h.GetAvailableWorkers)

		r.Route("/simulations", func(r chi.Router) {
			r.Get("/", h.ListSimulations)
			r.With(h.RequiredRole(planners)).Post("/", h.CreateSimulation)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.simulation)
				r.Get("/", h.GetSimulation)
				r.Get("/preview", h.PreviewSimulation)
				r.With(h.RequiredRole(planners)).Post("/changes", h.ProposeChange)
				r.With(h.RequiredRole(planners)).Post("/autofill", h.AutofillSimulation)
				r.With(h.RequiredRole(planners)).Post("/commit", h.CommitSimulation)
				r.With(h.RequiredRole(planners)).Post("/discard", h.DiscardSimulation)
			})
		})
	})
}

func (h *Handler) workerName(workerID string) string {
	if w, ok := h.registry.Worker(workerID); ok {
		return w.DisplayName
	}
	return workerID
}
