// Package summary reduces the scraped problems, standings and submissions
// of a gym into a per-handle contest summary.
package summary

import (
	"cfgym-backend/internal/scrapers/codeforces"
	"cfgym-backend/lib/telemetry"
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cfgym.summary")

const report_service_summarize = "service.summarize"

// Source is everything a summary needs to be computed, it is implemented by
// an authenticated *codeforces.Client.
type Source interface {
	Problems(ctx context.Context, gymId int) ([]codeforces.Problem, error)
	Standings(ctx context.Context, gymId int) ([]codeforces.Standing, error)
	Submissions(ctx context.Context, gymId int) ([]codeforces.Submission, error)
}

type Service struct {
	tel telemetry.API
}

func NewService(tel telemetry.API) Service {
	if tel == nil {
		tel = telemetry.NewSlogAPI()
	}
	return Service{tel: telemetry.NewScopedAPI("summary", tel)}
}

// Summarize validates the request, pulls every record of the gym from src
// and aggregates them. Any failure aborts the whole run.
func (s Service) Summarize(ctx context.Context, src Source, req ContestSummaryRequest) (ContestSummary, error) {
	err := req.Validate()
	if err != nil {
		return ContestSummary{}, err
	}

	ctx, span := tracer.Start(ctx, "Summarize")
	defer span.End()
	span.SetAttributes(
		attribute.Int("gym_id", req.GymId),
		attribute.Bool("virtual_enabled", req.VirtualEnabled),
		attribute.Int("handles", len(req.Handles)),
	)

	fail := func(stage string, err error) (ContestSummary, error) {
		err = fmt.Errorf("%s of gym %d: %w", stage, req.GymId, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, stage)
		s.tel.ReportBroken(report_service_summarize, err)
		return ContestSummary{}, err
	}

	submissions, err := src.Submissions(ctx, req.GymId)
	if err != nil {
		return fail("get submissions", err)
	}
	standings, err := src.Standings(ctx, req.GymId)
	if err != nil {
		return fail("get standings", err)
	}
	problems, err := src.Problems(ctx, req.GymId)
	if err != nil {
		return fail("get problems", err)
	}

	s.tel.ReportCount("service.submissions", int64(len(submissions)))
	s.tel.ReportCount("service.standings", int64(len(standings)))

	return Aggregate(problems, submissions, standings, req, s.tel), nil
}
