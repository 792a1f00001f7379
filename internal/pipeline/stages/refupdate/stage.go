// Package refupdate implements the markup reference rewrite stage.
package refupdate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardpress/cardpress/internal/pipeline/core"
	"github.com/cardpress/cardpress/internal/refs"
)

// Stage rewrites asset references in the configured markup document after
// container conversions rename files. Runs only when conversions happened
// and a document is configured.
type Stage struct {
	logger *slog.Logger
}

// NewStage creates a new reference update stage.
func NewStage(logger *slog.Logger) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{logger: logger}
}

// ID returns the stage identifier.
func (s *Stage) ID() string { return "refupdate" }

// Name returns the human-readable stage name.
func (s *Stage) Name() string { return "Update References" }

// Execute applies the run's renames to the markup document.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	if state.Document == "" || len(state.Renames) == 0 {
		s.logger.DebugContext(ctx, "no reference updates needed",
			slog.String("document", state.Document),
			slog.Int("renames", len(state.Renames)),
		)
		return &core.StageResult{Message: "nothing to update"}, nil
	}

	updated, err := refs.Apply(state.Document, state.Renames)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "updated document references",
		slog.String("document", state.Document),
		slog.Int("renames", len(state.Renames)),
		slog.Int("updated", updated),
	)

	return &core.StageResult{
		RecordsProcessed: len(state.Renames),
		RecordsModified:  updated,
		Message:          fmt.Sprintf("%d of %d renames referenced", updated, len(state.Renames)),
	}, nil
}

// Cleanup is a no-op for the reference update stage.
func (s *Stage) Cleanup(context.Context) error { return nil }
