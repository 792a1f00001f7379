// Package core provides the batch pipeline orchestration framework.
package core

import (
	"context"
	"time"

	"github.com/cardpress/cardpress/internal/collection"
	"github.com/cardpress/cardpress/internal/policy"
	"github.com/cardpress/cardpress/internal/report"
)

// Stage represents a single step in the batch pipeline.
type Stage interface {
	// ID returns a unique identifier for the stage (e.g., "scan").
	ID() string

	// Name returns a human-readable name for the stage (e.g., "Scan Collection").
	Name() string

	// Execute performs the stage's work against the shared state.
	Execute(ctx context.Context, state *State) (*StageResult, error)

	// Cleanup performs any necessary cleanup after execution.
	// Called regardless of success or failure.
	Cleanup(ctx context.Context) error
}

// State holds all data shared between pipeline stages.
type State struct {
	// CollectionDir is the directory holding the image assets.
	CollectionDir string

	// BackupDir is the backup area directory for this run's mode.
	BackupDir string

	// Mode selects the encode policy for the run.
	Mode policy.Mode

	// Document is the markup document whose references are rewritten
	// after container conversions. Empty disables reference updates.
	Document string

	// Assets are the collection entries discovered by the scan stage.
	Assets []collection.Asset

	// Renames maps old asset filenames to new ones for committed
	// container conversions.
	Renames map[string]string

	// Stats accumulates per-asset outcomes across stages.
	Stats report.BatchStats

	// StartTime records when pipeline execution began.
	StartTime time.Time

	// Errors collects non-fatal errors during execution.
	Errors []error

	// Metadata stores arbitrary stage-specific data.
	Metadata map[string]any
}

// NewState creates a new pipeline state for one batch run.
func NewState(collectionDir, backupDir string, mode policy.Mode) *State {
	return &State{
		CollectionDir: collectionDir,
		BackupDir:     backupDir,
		Mode:          mode,
		Assets:        make([]collection.Asset, 0),
		Renames:       make(map[string]string),
		StartTime:     time.Now(),
		Errors:        make([]error, 0),
		Metadata:      make(map[string]any),
	}
}

// AddError adds a non-fatal error to the state.
func (s *State) AddError(err error) {
	if err != nil {
		s.Errors = append(s.Errors, err)
	}
}

// HasErrors returns true if any non-fatal errors were recorded.
func (s *State) HasErrors() bool {
	return len(s.Errors) > 0
}

// Duration returns the elapsed time since pipeline start.
func (s *State) Duration() time.Duration {
	return time.Since(s.StartTime)
}

// SetMetadata stores a value in the metadata map.
func (s *State) SetMetadata(key string, value any) {
	s.Metadata[key] = value
}

// GetMetadata retrieves a value from the metadata map.
func (s *State) GetMetadata(key string) (any, bool) {
	v, ok := s.Metadata[key]
	return v, ok
}

// StageResult contains the outcome of a stage execution.
type StageResult struct {
	// RecordsProcessed is the count of items processed.
	RecordsProcessed int

	// RecordsModified is the count of items changed.
	RecordsModified int

	// Duration is the execution time.
	Duration time.Duration

	// Message is an optional summary message.
	Message string
}

// Result represents the outcome of pipeline execution.
type Result struct {
	// Success indicates if the pipeline completed without fatal errors.
	Success bool

	// Stats is the final batch report.
	Stats report.BatchStats

	// Renames maps old asset filenames to new ones after conversions.
	Renames map[string]string

	// Duration is the total execution time.
	Duration time.Duration

	// StageResults contains results from each stage.
	StageResults map[string]*StageResult

	// Errors contains any errors that occurred.
	Errors []error
}
