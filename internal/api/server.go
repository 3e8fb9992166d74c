// Package api exposes the gym scraper and the contest summary over http.
package api

import (
	"cfgym-backend/internal/assert"
	"cfgym-backend/internal/summary"
	"cfgym-backend/lib/telemetry"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const report_api_request = "api.request"

// Login opens a fresh authenticated session, it is called once per request
// so that no session is shared between independent runs.
type Login func(ctx context.Context) (summary.Source, error)

type Server struct {
	login   Login
	summary summary.Service
	tel     telemetry.API
	timeout time.Duration
}

type ServerOption func(s *Server)

// WithTimeout bounds the duration of a whole request, a run that takes
// longer is aborted.
func WithTimeout(timeout time.Duration) ServerOption {
	return func(s *Server) {
		s.timeout = timeout
	}
}

func NewServer(login Login, service summary.Service, tel telemetry.API, options ...ServerOption) Server {
	assert.NotNil(login, "login")

	if tel == nil {
		tel = telemetry.NewSlogAPI()
	}
	s := Server{
		login:   login,
		summary: service,
		tel:     telemetry.NewScopedAPI("api", tel),
		timeout: 5 * time.Minute,
	}
	for _, opt := range options {
		opt(&s)
	}
	return s
}

func (s Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(s.timeout))

	r.Get("/", s.health)
	r.Route("/contest/{gymId}", func(contest chi.Router) {
		contest.Get("/", s.contest)
		contest.Post("/summary", s.contestSummary)
		contest.Get("/problems", s.contestProblems)
		contest.Get("/standings", s.contestStandings)
		contest.Get("/submissions", s.contestSubmissions)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.InfoContext(
			r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chiMiddleware.GetReqID(r.Context()),
		)
	})
}

func gymId(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "gymId")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, &summary.ValidationError{Field: "gym_id", Reason: "must be a positive integer"}
	}
	return id, nil
}

func (s Server) health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "OK", nil)
}

func (s Server) contest(w http.ResponseWriter, r *http.Request) {
	_, err := gymId(r)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusBadRequest, "Not implemented", nil)
}

func (s Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	if status >= 500 {
		s.tel.ReportBroken(report_api_request, err, r.Method, r.URL.Path)
	}
	respond(w, status, err.Error(), nil)
}

func (s Server) contestSummary(w http.ResponseWriter, r *http.Request) {
	id, err := gymId(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req summary.ContestSummaryRequest
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, &summary.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	req.GymId = id
	if req.Handles == nil {
		req.Handles = []string{}
	}
	// rejected before a session is opened
	err = req.Validate()
	if err != nil {
		respondError(w, err)
		return
	}

	src, err := s.login(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.summary.Summarize(r.Context(), src, req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, "OK", result)
}

// records serves one of the raw record lists of a gym.
func records[T any](s Server, fetch func(src summary.Source, ctx context.Context, gymId int) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := gymId(r)
		if err != nil {
			respondError(w, err)
			return
		}
		src, err := s.login(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		result, err := fetch(src, r.Context(), id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if result == nil {
			result = []T{}
		}
		respond(w, http.StatusOK, "OK", result)
	}
}

func (s Server) contestProblems(w http.ResponseWriter, r *http.Request) {
	records(s, summary.Source.Problems)(w, r)
}

func (s Server) contestStandings(w http.ResponseWriter, r *http.Request) {
	records(s, summary.Source.Standings)(w, r)
}

func (s Server) contestSubmissions(w http.ResponseWriter, r *http.Request) {
	records(s, summary.Source.Submissions)(w, r)
}
