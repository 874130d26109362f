package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"storefront/internal/httpx"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	httpx.WriteJSON(w, status, data)
}

// writeError maps err to a status and error body. Domain errors keep their
// message; anything else is logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		status := httpx.StatusForCode(domainErr.Code)
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("request_id", httpx.RequestID(r.Context())).Msg("request failed")
		}
		httpx.WriteError(w, r, status, domainErr.Code, domainErr.Message)
		return
	}

	logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("request_id", httpx.RequestID(r.Context())).
		Msg("unexpected error")
	httpx.WriteError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "Internal server error")
}

// decodeJSON reads exactly one JSON value from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	invalid := model.NewDomainError(model.ErrCodeInvalidJSON, "Invalid JSON in request body")

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return invalid
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return invalid
	}
	return nil
}

// pathID parses a positive integer URL parameter. ok is false for anything else.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// Health reports that the process is serving.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound answers unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(w, r, http.StatusNotFound, model.ErrCodeRouteNotFound, "Route not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(w, r, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "Method not allowed")
}
