// Package store persists extraction run history for later inspection.
package store

import (
	"context"
	"time"
)

// Run records one completed extraction pass.
type Run struct {
	ID         string    `json:"id"`
	SchemaPath string    `json:"schema_path"`
	Inputs     []string  `json:"inputs"`
	InputKind  string    `json:"input_kind"`
	Processed  int       `json:"processed"`
	Emitted    int       `json:"emitted"`
	Skipped    int       `json:"skipped"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store defines the run-history persistence interface.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
