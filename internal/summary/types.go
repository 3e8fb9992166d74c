package summary

import (
	"bytes"
	"cfgym-backend/internal/scrapers/codeforces"
	"encoding/json"
	"fmt"
	"time"
)

type ContestSummaryRequest struct {
	GymId          int  `json:"gym_id"`
	VirtualEnabled bool `json:"virtual_enabled"`
	// only virtual participations that qualified at or before this time count
	VirtualDeadlineUtc *time.Time `json:"virtual_deadline_utc"`
	Handles            []string   `json:"handles"`
}

// ValidationError is returned when a request is malformed, it is detected
// before anything is fetched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

func (r ContestSummaryRequest) Validate() error {
	if r.GymId <= 0 {
		return &ValidationError{Field: "gym_id", Reason: "must be a positive integer"}
	}
	if r.VirtualEnabled && r.VirtualDeadlineUtc == nil {
		return &ValidationError{Field: "virtual_deadline_utc", Reason: "is required when virtual_enabled is true"}
	}
	return nil
}

type SingleRow struct {
	Rank              int                          `json:"rank"`
	AcCount           int                          `json:"ac_count"`
	ParticipationType codeforces.ParticipationType `json:"participation_type"`
}

// Row is either a SingleRow or nothing, it encodes to null when empty.
type Row struct {
	row SingleRow
	ok  bool
}

func Some(row SingleRow) Row {
	return Row{row: row, ok: true}
}

func None() Row {
	return Row{}
}

func (r Row) Get() (SingleRow, bool) {
	return r.row, r.ok
}

func (r Row) MarshalJSON() ([]byte, error) {
	if !r.ok {
		return []byte("null"), nil
	}
	return json.Marshal(r.row)
}

func (r *Row) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = None()
		return nil
	}
	var row SingleRow
	err := json.Unmarshal(data, &row)
	if err != nil {
		return err
	}
	*r = Some(row)
	return nil
}

type ContestSummary struct {
	TotalProblems int `json:"total_problems"`
	// keyed by lowercase handle, every requested handle has an entry
	Rows map[string]Row `json:"rows"`
}
