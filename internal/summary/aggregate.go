package summary

import (
	"cfgym-backend/internal/scrapers/codeforces"
	"cfgym-backend/lib/telemetry"
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

const report_aggregate_submission_lookup = "aggregate.submission-lookup"

// never is the qualifying time of a standing without accepted problems.
const never int64 = math.MaxInt64

type candidate struct {
	qualifiedAt int64
	standing    codeforces.Standing
}

func (c candidate) less(other candidate) bool {
	if c.qualifiedAt != other.qualifiedAt {
		return c.qualifiedAt < other.qualifiedAt
	}
	return rankOf(c.standing) < rankOf(other.standing)
}

func rankOf(standing codeforces.Standing) int {
	if standing.Rank == nil {
		return math.MaxInt
	}
	return *standing.Rank
}

// keepParticipation drops every standing that can't be part of the summary,
// virtual standings of handles that also participated in person included.
func keepParticipation(standings []codeforces.Standing, virtualEnabled bool) []codeforces.Standing {
	inPerson := map[string]bool{}
	for _, standing := range standings {
		if standing.ParticipationType == codeforces.IN_CONTEST {
			inPerson[standing.Handle] = true
		}
	}

	result := []codeforces.Standing{}
	for _, standing := range standings {
		switch standing.ParticipationType {
		case codeforces.IN_CONTEST:
			result = append(result, standing)
		case codeforces.VIRTUAL:
			if virtualEnabled && !inPerson[standing.Handle] {
				result = append(result, standing)
			}
		}
	}
	return result
}

// rerank orders standings by their original rank and replaces it with a
// dense 1-based rank. The input is left untouched.
func rerank(standings []codeforces.Standing) []codeforces.Standing {
	result := slices.Clone(standings)
	slices.SortStableFunc(result, func(a, b codeforces.Standing) int {
		return cmp.Compare(rankOf(a), rankOf(b))
	})
	for i := range result {
		rank := i + 1
		result[i].Rank = &rank
	}
	return result
}

func qualifiedAt(standing codeforces.Standing, submissions map[int64]codeforces.Submission, tel telemetry.API) int64 {
	earliest := never
	for _, result := range standing.ProblemResults {
		if !result.IsAccepted || result.SubmissionId == nil {
			continue
		}
		submission, ok := submissions[*result.SubmissionId]
		if !ok {
			tel.ReportWarning(
				report_aggregate_submission_lookup,
				fmt.Errorf("accepted submission %d of %s on problem %s is not in the status pages", *result.SubmissionId, standing.Handle, result.Index),
			)
			continue
		}
		earliest = min(earliest, submission.SubmissionTimeUtc)
	}
	return earliest
}

// Aggregate reduces the scraped records of a gym into one optional row per
// requested handle.
func Aggregate(
	problems []codeforces.Problem,
	submissions []codeforces.Submission,
	standings []codeforces.Standing,
	req ContestSummaryRequest,
	tel telemetry.API,
) ContestSummary {
	lookup := make(map[int64]codeforces.Submission, len(submissions))
	for _, submission := range submissions {
		lookup[submission.Id] = submission
	}

	ranked := rerank(keepParticipation(standings, req.VirtualEnabled))

	deadline := never
	if req.VirtualDeadlineUtc != nil {
		deadline = req.VirtualDeadlineUtc.Unix()
	}

	winners := map[string]candidate{}
	for _, standing := range ranked {
		current := candidate{
			qualifiedAt: qualifiedAt(standing, lookup, tel),
			standing:    standing,
		}
		// a virtual attempt that never qualified or qualified too late doesn't count
		if standing.ParticipationType == codeforces.VIRTUAL &&
			(current.qualifiedAt == never || current.qualifiedAt > deadline) {
			continue
		}

		handle := strings.ToLower(standing.Handle)
		existing, ok := winners[handle]
		if !ok || current.less(existing) {
			winners[handle] = current
		}
	}

	summary := ContestSummary{
		TotalProblems: len(problems),
		Rows:          make(map[string]Row, len(req.Handles)),
	}
	for _, handle := range req.Handles {
		handle = strings.ToLower(handle)
		winner, ok := winners[handle]
		if !ok {
			summary.Rows[handle] = None()
			continue
		}
		summary.Rows[handle] = Some(SingleRow{
			Rank:              *winner.standing.Rank,
			AcCount:           winner.standing.Solved,
			ParticipationType: winner.standing.ParticipationType,
		})
	}
	return summary
}
