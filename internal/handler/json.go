package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorData tells clients what to do about a rejected request: "conflict" means reopen the
// simulation and retry, every other kind means the request itself must change.
type ErrorData struct {
	Kind string `json:"kind"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: validationErrors[0].Translate(h.translator),
		Data:    ErrorData{Kind: "validation"},
	})
}

// domainError maps scheduling errors onto responses.
func (h *Handler) domainError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.ErrorKind(err)
	switch kind {
	case "internal":
		h.internalServerError(w, r, err)
	case "conflict":
		h.writeJSON(w, r, http.StatusConflict, Response{
			Success: false,
			Message: err.Error(),
			Data:    ErrorData{Kind: kind},
		})
	default:
		h.writeJSON(w, r, http.StatusOK, Response{
			Success: false,
			Message: err.Error(),
			Data:    ErrorData{Kind: kind},
		})
	}
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "internal server error",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}
