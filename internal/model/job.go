// Package model defines the core job posting types shared by every pipeline stage.
package model

import (
	"encoding/json"
	"time"
)

// Tri is an explicit three-valued boolean for source fields that may be absent.
// The zero value is TriUnknown, so an unpopulated field is unknown by default.
type Tri int

const (
	TriUnknown Tri = iota
	TriFalse
	TriTrue
)

// TriFromBool converts an optional bool into a Tri.
func TriFromBool(b *bool) Tri {
	switch {
	case b == nil:
		return TriUnknown
	case *b:
		return TriTrue
	default:
		return TriFalse
	}
}

// True reports whether the value is explicitly true.
func (t Tri) True() bool { return t == TriTrue }

// False reports whether the value is explicitly false.
func (t Tri) False() bool { return t == TriFalse }

// Known reports whether the value is explicitly true or false.
func (t Tri) Known() bool { return t != TriUnknown }

// String returns "true", "false", or "" for unknown.
func (t Tri) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return ""
	}
}

// MarshalJSON encodes TriUnknown as null.
func (t Tri) MarshalJSON() ([]byte, error) {
	switch t {
	case TriTrue:
		return []byte("true"), nil
	case TriFalse:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null (or anything non-boolean) as TriUnknown.
func (t *Tri) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		*t = TriUnknown
		return nil
	}
	*t = TriFromBool(b)
	return nil
}

// Posting is one job listing as ingested from an external board.
// Optional source fields are pointers; absence is never mutated away by the
// pipeline — stages only remove postings or annotate them with a score.
type Posting struct {
	Title       string     `json:"title"`
	Company     string     `json:"company,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Description *string    `json:"description,omitempty"`
	MinAmount   *float64   `json:"min_amount,omitempty"`
	MaxAmount   *float64   `json:"max_amount,omitempty"`
	Remote      Tri        `json:"is_remote,omitempty"`
	JobType     *string    `json:"job_type,omitempty"`
	Interval    *string    `json:"interval,omitempty"`
	DatePosted  *time.Time `json:"date_posted,omitempty"`

	// Passthrough metadata, opaque to the filters and the scorer.
	Site       string `json:"site,omitempty"`
	JobURL     string `json:"job_url,omitempty"`
	CompanyURL string `json:"company_url,omitempty"`
}

// ScoredPosting is a posting annotated with its composite desirability score.
// The score is computed once, after all filter stages, and never changes.
type ScoredPosting struct {
	Posting
	Score float64 `json:"composite_score"`
}

// Run records one pipeline execution for the run-history store.
type Run struct {
	ID            string         `json:"id"`
	Query         string         `json:"query"`
	Sites         []string       `json:"sites"`
	Fetched       int            `json:"fetched"`
	StageCounts   map[string]int `json:"stage_counts"`
	TerminalStage string         `json:"terminal_stage,omitempty"`
	Exported      int            `json:"exported"`
	ExportPath    string         `json:"export_path,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	DurationMS    int64          `json:"duration_ms"`
}
