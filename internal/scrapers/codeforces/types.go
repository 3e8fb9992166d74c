package codeforces

import "fmt"

type Problem struct {
	Index              string  `json:"index"`
	InContestName      string  `json:"in_contest_name"`
	OriginalProblemUrl *string `json:"original_problem_url"`
}

type Submission struct {
	Id int64 `json:"id"`
	// unix timestamp (seconds) in utc
	SubmissionTimeUtc int64  `json:"submission_time_utc"`
	Handle            string `json:"handle"`
	IsVirtual         bool   `json:"is_virtual"`
	ProblemIndex      string `json:"problem_index"`
	Language          string `json:"language"`
	Verdict           string `json:"verdict"`
	// in milliseconds
	TimeMs int64 `json:"time"`
	// in kilobytes
	MemoryKb int64 `json:"memory"`
}

// ProblemResult is one problem cell of a standing, SubmissionId and
// SubmissionContestMinutes are set if and only if IsAccepted is true.
type ProblemResult struct {
	Tries                    int    `json:"tries"`
	SubmissionId             *int64 `json:"submission_id"`
	SubmissionContestMinutes *int   `json:"submission_contest_minutes"`
	IsAccepted               bool   `json:"is_accepted"`
	Index                    string `json:"index"`
}

type ParticipationType int

const (
	IN_CONTEST ParticipationType = iota
	AFTER_CONTEST
	VIRTUAL
	MANAGER
)

var participationTypeNames = map[ParticipationType]string{
	IN_CONTEST:    "InContest",
	AFTER_CONTEST: "AfterContest",
	VIRTUAL:       "Virtual",
	MANAGER:       "Manager",
}

func (p ParticipationType) String() string {
	name, ok := participationTypeNames[p]
	if !ok {
		return fmt.Sprintf("ParticipationType(%d)", int(p))
	}
	return name
}

// Ranked is true for the participation types that carry a rank.
func (p ParticipationType) Ranked() bool {
	return p == IN_CONTEST || p == VIRTUAL
}

func (p ParticipationType) MarshalText() ([]byte, error) {
	name, ok := participationTypeNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown participation type %d", int(p))
	}
	return []byte(name), nil
}

func (p *ParticipationType) UnmarshalText(text []byte) error {
	for value, name := range participationTypeNames {
		if name == string(text) {
			*p = value
			return nil
		}
	}
	return fmt.Errorf("unknown participation type %q", string(text))
}

// Standing is one participation row, Rank is set if and only if the
// participation type is IN_CONTEST or VIRTUAL.
type Standing struct {
	Solved            int               `json:"solved"`
	Rank              *int              `json:"rank"`
	Handle            string            `json:"handle"`
	Penalty           int               `json:"penalty"`
	ProblemResults    []ProblemResult   `json:"problem_results"`
	ParticipationType ParticipationType `json:"participation_type"`
}
