package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"scadenze/internal/core"
	"scadenze/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps domain errors to HTTP statuses. Anything not
// recognized is a 500 with a generic message so internals never leak.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrCardNotFound), errors.Is(err, core.ErrObligationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrCycleAlreadyPaid):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidWindow),
		errors.Is(err, services.ErrInvalidCycleMonth),
		errors.Is(err, core.ErrClosingDayOutOfRange),
		errors.Is(err, core.ErrDueDayOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
