package summary

import (
	"cfgym-backend/internal/scrapers/codeforces"
	"cfgym-backend/lib/telemetry"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	problems    []codeforces.Problem
	standings   []codeforces.Standing
	submissions []codeforces.Submission
	err         error
	calls       []string
}

func (f *fakeSource) Problems(ctx context.Context, gymId int) ([]codeforces.Problem, error) {
	f.calls = append(f.calls, "problems")
	return f.problems, f.err
}

func (f *fakeSource) Standings(ctx context.Context, gymId int) ([]codeforces.Standing, error) {
	f.calls = append(f.calls, "standings")
	return f.standings, f.err
}

func (f *fakeSource) Submissions(ctx context.Context, gymId int) ([]codeforces.Submission, error) {
	f.calls = append(f.calls, "submissions")
	return f.submissions, f.err
}

func TestSummarize(t *testing.T) {
	src := &fakeSource{
		problems:  threeProblems,
		standings: []codeforces.Standing{standing("alice", 4, 2, codeforces.IN_CONTEST)},
	}
	service := NewService(&telemetry.Recorder{})

	result, err := service.Summarize(context.Background(), src, ContestSummaryRequest{
		GymId:   100,
		Handles: []string{"Alice", "bob"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, result.TotalProblems)
	requireRows(t, map[string]Row{
		"alice": row(1, 2, codeforces.IN_CONTEST),
		"bob":   None(),
	}, result.Rows)
	require.Equal(t, []string{"submissions", "standings", "problems"}, src.calls)
}

func TestSummarizeValidatesFirst(t *testing.T) {
	src := &fakeSource{}
	service := NewService(&telemetry.Recorder{})

	_, err := service.Summarize(context.Background(), src, ContestSummaryRequest{
		GymId:          100,
		VirtualEnabled: true,
	})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Empty(t, src.calls)
}

func TestSummarizeFetchFailure(t *testing.T) {
	fetchErr := &codeforces.FetchError{Url: "/gym/100/status", Status: 503}
	src := &fakeSource{err: fetchErr}
	recorder := &telemetry.Recorder{}
	service := NewService(recorder)

	_, err := service.Summarize(context.Background(), src, ContestSummaryRequest{GymId: 100})

	var got *codeforces.FetchError
	require.True(t, errors.As(err, &got))
	require.Equal(t, 503, got.Status)
	require.Equal(t, []string{"submissions"}, src.calls)
	require.Len(t, recorder.Reports("broken"), 1)
}
