package api

import (
	"cfgym-backend/internal/scrapers/codeforces"
	"cfgym-backend/internal/summary"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
)

// Response is the JSend-style envelope every endpoint answers with.
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{Message: message, Data: data})
	if err != nil {
		slog.Warn("write response", "err", err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// statusFromError maps failures of a run onto the status the client sees,
// origin side failures are reported as a bad gateway.
func statusFromError(err error) int {
	var validationErr *summary.ValidationError
	var authErr *codeforces.AuthError
	var fetchErr *codeforces.FetchError
	var parseErr *codeforces.ParseError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return http.StatusBadGateway
	case errors.As(err, &fetchErr):
		if isTimeout(fetchErr) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.As(err, &parseErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	respond(w, statusFromError(err), err.Error(), nil)
}
