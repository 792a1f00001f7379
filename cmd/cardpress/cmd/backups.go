package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cardpress/cardpress/internal/collection"
	"github.com/cardpress/cardpress/internal/config"
	"github.com/cardpress/cardpress/internal/database"
	"github.com/cardpress/cardpress/internal/models"
	"github.com/cardpress/cardpress/internal/observability"
	"github.com/cardpress/cardpress/internal/policy"
	"github.com/cardpress/cardpress/internal/repository"
	"github.com/cardpress/cardpress/pkg/format"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "Backup area commands",
	Long:  `Commands for inspecting the backup areas.`,
}

var backupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backed-up originals",
	Long: `List the originals preserved in the backup areas.

Listing prefers the sqlite index when it is available and falls back to
scanning the backup directories. The filesystem is authoritative either
way.`,
	RunE: runBackupsList,
}

func init() {
	rootCmd.AddCommand(backupsCmd)
	backupsCmd.AddCommand(backupsListCmd)

	backupsListCmd.Flags().String("area", "", "limit listing to one backup area")
	backupsListCmd.Flags().String("dir", "", "collection directory (overrides config)")
}

func runBackupsList(cmd *cobra.Command, args []string) error {
	logger := observability.WithComponent(slog.Default(), "backups")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("dir") {
		cfg.Collection.Dir, _ = cmd.Flags().GetString("dir")
	}
	areaFlag, _ := cmd.Flags().GetString("area")

	backupRoot := cfg.Backup.BackupRoot(cfg.Collection.Dir)

	if cfg.Database.Enabled {
		if done, err := listFromIndex(cmd, cfg.Database.LedgerDSN(backupRoot), areaFlag, logger); done {
			return err
		}
	}

	return listFromFilesystem(backupRoot, areaFlag)
}

// listFromIndex lists records from the sqlite index. Returns false when the
// index cannot be opened, letting the caller fall back to the filesystem.
func listFromIndex(cmd *cobra.Command, dsn, area string, logger *slog.Logger) (bool, error) {
	db, err := database.New(config.DatabaseConfig{LogLevel: "silent"}, dsn, logger)
	if err != nil {
		logger.Debug("backup index unavailable, listing from filesystem",
			slog.String("error", err.Error()),
		)
		return false, nil
	}
	defer db.Close()

	repo := repository.NewBackupRecordRepository(db.DB)

	var records []*models.BackupRecord
	if area != "" {
		records, err = repo.ListByArea(cmd.Context(), area)
	} else {
		records, err = repo.ListAll(cmd.Context())
	}
	if err != nil {
		return true, fmt.Errorf("listing backup index: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No backups recorded.")
		return true, nil
	}

	var total int64
	for _, rec := range records {
		fmt.Printf("%-22s %-40s %10s  %s\n",
			rec.Area, rec.Asset, format.Bytes(rec.SizeBytes),
			rec.CreatedAt.Format("2006-01-02 15:04"))
		total += rec.SizeBytes
	}
	fmt.Printf("\n%d backups, %s total\n", len(records), format.Bytes(total))
	return true, nil
}

// listFromFilesystem walks the known backup areas directly.
func listFromFilesystem(backupRoot, area string) error {
	areas := policy.BackupAreas()
	if area != "" {
		areas = []string{area}
	}

	count := 0
	var total int64
	for _, a := range areas {
		dir := filepath.Join(backupRoot, a)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !collection.IsImage(entry.Name()) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			fmt.Printf("%-22s %-40s %10s\n", a, entry.Name(), format.Bytes(info.Size()))
			count++
			total += info.Size()
		}
	}

	if count == 0 {
		fmt.Println("No backups found.")
		return nil
	}
	fmt.Printf("\n%d backups, %s total\n", count, format.Bytes(total))
	return nil
}
