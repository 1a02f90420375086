package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/vaultclip/internal/apperr"
)

// maxBody caps request bodies; clipped pages can be large.
const maxBody = 16 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps domain errors to status codes. Unknown errors are logged
// and reported as 500 without detail.
func writeError(w http.ResponseWriter, op string, err error) {
	var status int
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrImport), errors.Is(err, apperr.ErrInvalidPath):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrExtraction), errors.Is(err, apperr.ErrRender):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrFetch):
		status = http.StatusBadGateway
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, status, errorBody(err.Error()))
}
