// Package scan implements the collection discovery stage.
package scan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardpress/cardpress/internal/collection"
	"github.com/cardpress/cardpress/internal/pipeline/core"
)

// Stage discovers the live assets in the collection directory.
type Stage struct {
	// MaxAssetSize skips assets larger than this many bytes. Zero means
	// no limit.
	MaxAssetSize int64

	logger *slog.Logger
}

// NewStage creates a new scan stage.
func NewStage(maxAssetSize int64, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{MaxAssetSize: maxAssetSize, logger: logger}
}

// ID returns the stage identifier.
func (s *Stage) ID() string { return "scan" }

// Name returns the human-readable stage name.
func (s *Stage) Name() string { return "Scan Collection" }

// Execute populates state.Assets from the collection directory.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	assets, err := collection.Scan(state.CollectionDir)
	if err != nil {
		return nil, err
	}

	kept := assets[:0]
	skipped := 0
	for _, asset := range assets {
		if s.MaxAssetSize > 0 && asset.Size > s.MaxAssetSize {
			s.logger.WarnContext(ctx, "skipping oversized asset",
				slog.String("asset", asset.Filename()),
				slog.Int64("size", asset.Size),
				slog.Int64("max", s.MaxAssetSize),
			)
			skipped++
			continue
		}
		kept = append(kept, asset)
	}
	state.Assets = kept

	if len(kept) == 0 {
		return nil, core.ErrNoAssets
	}

	return &core.StageResult{
		RecordsProcessed: len(kept),
		Message:          fmt.Sprintf("found %d assets (%d skipped)", len(kept), skipped),
	}, nil
}

// Cleanup is a no-op for the scan stage.
func (s *Stage) Cleanup(context.Context) error { return nil }
