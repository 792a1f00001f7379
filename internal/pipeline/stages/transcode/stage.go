// Package transcode implements the per-asset transcode-decide-commit stage.
package transcode

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/cardpress/cardpress/internal/pipeline/core"
	"github.com/cardpress/cardpress/internal/policy"
)

// Codec decodes, resamples, and encodes image files.
type Codec interface {
	Decode(path string) (image.Image, string, error)
	Resize(img image.Image, width, height int) image.Image
	EncodeFile(img image.Image, path string, container policy.Container, quality int) error
}

// Ledger preserves original bytes before mutation.
type Ledger interface {
	Ensure(ctx context.Context, srcPath string) (bool, error)
}

// Stage runs one transcode session per asset. Sessions are isolated: a
// failed asset is recorded and the batch continues.
type Stage struct {
	codec  Codec
	ledger Ledger
	opts   policy.Options
	logger *slog.Logger
}

// NewStage creates a new transcode stage.
func NewStage(codec Codec, ledger Ledger, opts policy.Options, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{codec: codec, ledger: ledger, opts: opts, logger: logger}
}

// ID returns the stage identifier.
func (s *Stage) ID() string { return "transcode" }

// Name returns the human-readable stage name.
func (s *Stage) Name() string { return "Transcode Assets" }

// Execute processes every asset in the state sequentially.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	committed := 0

	for _, asset := range state.Assets {
		if err := ctx.Err(); err != nil {
			return &core.StageResult{RecordsModified: committed}, err
		}

		outcome := newSession(s, asset, state.Mode).run(ctx)
		s.logOutcome(ctx, asset.Filename(), outcome)

		switch outcome.Status {
		case StatusCommitted:
			state.Stats.AddCommitted(outcome.OriginalBytes, outcome.FinalBytes, outcome.Converted)
			if outcome.Converted {
				state.Renames[asset.Filename()] = outcome.NewName
			}
			committed++
		case StatusDiscarded:
			state.Stats.AddDiscarded(outcome.OriginalBytes)
		case StatusFailed:
			state.Stats.AddFailed()
			state.AddError(fmt.Errorf("%s: %w", asset.Filename(), outcome.Err))
		}
	}

	return &core.StageResult{
		RecordsProcessed: len(state.Assets),
		RecordsModified:  committed,
		Message:          fmt.Sprintf("%d of %d assets committed", committed, len(state.Assets)),
	}, nil
}

// Cleanup is a no-op; sessions remove their own candidates.
func (s *Stage) Cleanup(context.Context) error { return nil }

func (s *Stage) logOutcome(ctx context.Context, name string, outcome Outcome) {
	switch outcome.Status {
	case StatusFailed:
		s.logger.ErrorContext(ctx, "asset failed",
			slog.String("asset", name),
			slog.String("error", outcome.Err.Error()),
		)
	case StatusCommitted:
		attrs := []any{
			slog.String("asset", name),
			slog.String("status", string(outcome.Status)),
			slog.Int64("before", outcome.OriginalBytes),
			slog.Int64("after", outcome.FinalBytes),
		}
		if outcome.Converted {
			attrs = append(attrs, slog.String("renamed_to", outcome.NewName))
		}
		s.logger.InfoContext(ctx, "asset committed", attrs...)
	default:
		s.logger.InfoContext(ctx, "asset unchanged",
			slog.String("asset", name),
			slog.String("status", string(outcome.Status)),
			slog.Int64("size", outcome.OriginalBytes),
		)
	}
}
