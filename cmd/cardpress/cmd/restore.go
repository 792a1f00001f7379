package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cardpress/cardpress/internal/backup"
	"github.com/cardpress/cardpress/internal/observability"
	"github.com/cardpress/cardpress/internal/policy"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore originals from a backup area",
	Long: `Restore original assets from a mode's backup area.

Backups are copied back into the collection, overwriting the compressed
versions. Converted siblings (e.g. fool.jpg left by an aggressive run
that converted fool.png) are removed so the restored original is the
only copy.`,
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().String("mode", "conservative", "mode whose backup area to restore from")
	restoreCmd.Flags().String("dir", "", "collection directory (overrides config)")
}

func runRestore(cmd *cobra.Command, args []string) error {
	logger := observability.WithComponent(slog.Default(), "restore")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("dir") {
		cfg.Collection.Dir, _ = cmd.Flags().GetString("dir")
	}

	modeFlag, _ := cmd.Flags().GetString("mode")
	mode, err := policy.ParseMode(modeFlag)
	if err != nil {
		return err
	}

	area := mode.BackupArea()
	backupDir := filepath.Join(cfg.Backup.BackupRoot(cfg.Collection.Dir), area)

	if info, err := os.Stat(backupDir); err != nil || !info.IsDir() {
		return fmt.Errorf("backup area %s does not exist", backupDir)
	}

	ledger, err := backup.NewLedger(backupDir, area, nil, logger)
	if err != nil {
		return fmt.Errorf("opening backup area: %w", err)
	}

	restored, err := ledger.Restore(cfg.Collection.Dir)
	if err != nil {
		return fmt.Errorf("restoring from %s: %w", area, err)
	}

	fmt.Printf("Restored %d assets from %s\n", restored, area)
	return nil
}
