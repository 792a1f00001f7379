// Package verify implements the post-run collection count check.
package verify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardpress/cardpress/internal/collection"
	"github.com/cardpress/cardpress/internal/pipeline/core"
)

// Stage counts the assets remaining after the run and flags a shortfall
// against the expected collection size. The check is advisory; nothing is
// ever added or removed to correct the count.
type Stage struct {
	// ExpectedCount is the configured collection size. Zero disables
	// the check.
	ExpectedCount int

	logger *slog.Logger
}

// NewStage creates a new verify stage.
func NewStage(expectedCount int, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{ExpectedCount: expectedCount, logger: logger}
}

// ID returns the stage identifier.
func (s *Stage) ID() string { return "verify" }

// Name returns the human-readable stage name.
func (s *Stage) Name() string { return "Verify Collection" }

// Execute records the final asset count in the batch stats.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	count, err := collection.Count(state.CollectionDir)
	if err != nil {
		return nil, err
	}

	state.Stats.FinalCount = count
	state.Stats.ExpectedCount = s.ExpectedCount

	if state.Stats.Shortfall() {
		s.logger.WarnContext(ctx, "collection is short of expected count",
			slog.Int("final", count),
			slog.Int("expected", s.ExpectedCount),
		)
	}

	return &core.StageResult{
		RecordsProcessed: count,
		Message:          fmt.Sprintf("%d assets present", count),
	}, nil
}

// Cleanup is a no-op for the verify stage.
func (s *Stage) Cleanup(context.Context) error { return nil }
