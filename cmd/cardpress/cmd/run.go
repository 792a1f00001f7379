package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cardpress/cardpress/internal/backup"
	"github.com/cardpress/cardpress/internal/codec"
	"github.com/cardpress/cardpress/internal/database"
	"github.com/cardpress/cardpress/internal/models"
	"github.com/cardpress/cardpress/internal/observability"
	"github.com/cardpress/cardpress/internal/pipeline/core"
	"github.com/cardpress/cardpress/internal/pipeline/stages/refupdate"
	"github.com/cardpress/cardpress/internal/pipeline/stages/scan"
	"github.com/cardpress/cardpress/internal/pipeline/stages/transcode"
	"github.com/cardpress/cardpress/internal/pipeline/stages/verify"
	"github.com/cardpress/cardpress/internal/policy"
	"github.com/cardpress/cardpress/internal/repository"
	"github.com/cardpress/cardpress/internal/startup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch compression pass over the collection",
	Long: `Run a batch compression pass over the collection.

Every asset is re-encoded under the selected mode and replaced only when
the result is strictly smaller. Originals are preserved in the mode's
backup area before the first mutation.

Modes:
  conservative  keep containers, quality 85, bound 2000x3000
  aggressive    opaque PNG becomes JPEG, quality 90, bound 1200x2000
  reencode      keep containers, quality 75, bound 1000x1667
  convertwebp   opaque assets become WebP, quality 85, bound 1200x2000`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("mode", "conservative", "policy mode (conservative, aggressive, reencode, convertwebp)")
	runCmd.Flags().String("dir", "", "collection directory (overrides config)")
	runCmd.Flags().String("document", "", "markup document for reference updates (overrides config)")
	runCmd.Flags().Int("expected-count", -1, "expected asset count, 0 disables the check (overrides config)")
}

// ledgerIndex adapts the backup record repository to the ledger's index.
type ledgerIndex struct {
	repo repository.BackupRecordRepository
}

func (i *ledgerIndex) Record(ctx context.Context, rec *models.BackupRecord) error {
	return i.repo.Create(ctx, rec)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := observability.WithComponent(slog.Default(), "run")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config only when explicitly set.
	if cmd.Flags().Changed("dir") {
		cfg.Collection.Dir, _ = cmd.Flags().GetString("dir")
	}
	if cmd.Flags().Changed("document") {
		cfg.Refs.Document, _ = cmd.Flags().GetString("document")
	}
	if cmd.Flags().Changed("expected-count") {
		cfg.Collection.ExpectedCount, _ = cmd.Flags().GetInt("expected-count")
	}

	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := policy.ParseMode(modeFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing collection directory is fatal; nothing is ever created
	// in its place.
	if info, err := os.Stat(cfg.Collection.Dir); err != nil || !info.IsDir() {
		return fmt.Errorf("collection directory %s does not exist", cfg.Collection.Dir)
	}

	// Sweep candidates left behind by an interrupted run.
	if removed, err := startup.CleanupStaleCandidates(logger, cfg.Collection.Dir, cfg.Collection.TempMaxAge.Duration()); err != nil {
		logger.Warn("failed to clean stale candidates",
			slog.String("error", err.Error()),
		)
	} else if removed > 0 {
		logger.Info("cleaned stale candidates on startup",
			slog.Int("removed_count", removed),
		)
	}

	backupRoot := cfg.Backup.BackupRoot(cfg.Collection.Dir)
	area := mode.BackupArea()
	backupDir := filepath.Join(backupRoot, area)

	// The sqlite index is an optional convenience; the run proceeds
	// without it when it cannot be opened.
	var index backup.Index
	if cfg.Database.Enabled {
		db, err := database.New(cfg.Database, cfg.Database.LedgerDSN(backupRoot), logger)
		if err != nil {
			logger.Warn("backup index unavailable, continuing without it",
				slog.String("error", err.Error()),
			)
		} else {
			defer db.Close()
			index = &ledgerIndex{repo: repository.NewBackupRecordRepository(db.DB)}
		}
	}

	ledger, err := backup.NewLedger(backupDir, area, index, logger)
	if err != nil {
		return fmt.Errorf("preparing backup area: %w", err)
	}

	done := observability.TimedOperation(ctx, logger, "batch_run")
	defer done()

	state := core.NewState(cfg.Collection.Dir, backupDir, mode)
	state.Document = cfg.Refs.Document

	stages := []core.Stage{
		scan.NewStage(cfg.Collection.MaxAssetSize.Bytes(), logger),
		transcode.NewStage(codec.New(), ledger, policy.Options{AllowAlphaWebP: cfg.Policy.AllowAlphaWebP}, logger),
		refupdate.NewStage(logger),
		verify.NewStage(cfg.Collection.ExpectedCount, logger),
	}

	orchestrator := core.NewOrchestrator(state, stages, logger)
	result, err := orchestrator.Execute(ctx)
	if err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}

	fmt.Print(result.Stats.Summary())

	if result.Stats.Failed > 0 {
		return fmt.Errorf("%d assets failed", result.Stats.Failed)
	}
	return nil
}
