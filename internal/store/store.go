// Package store persists run history for the pipeline.
package store

import (
	"context"

	"github.com/jobscout/jobscout-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	TerminalStage string `json:"terminal_stage,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for run history.
type Store interface {
	RecordRun(ctx context.Context, run *model.Run) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
