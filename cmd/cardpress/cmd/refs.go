package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardpress/cardpress/internal/refs"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Markup reference commands",
	Long:  `Commands for updating asset references in markup documents.`,
}

var refsApplyCmd = &cobra.Command{
	Use:   "apply OLD=NEW [OLD=NEW...]",
	Short: "Rewrite asset references in the configured document",
	Long: `Rewrite asset filename references in the configured markup document.

Each argument is an OLD=NEW filename pair. Matching is case-insensitive
and the document is written back only when at least one reference changed:

  cardpress refs apply fool.png=fool.jpg magician.png=magician.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRefsApply,
}

func init() {
	rootCmd.AddCommand(refsCmd)
	refsCmd.AddCommand(refsApplyCmd)

	refsApplyCmd.Flags().String("document", "", "markup document to rewrite (overrides config)")
}

func runRefsApply(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("document") {
		cfg.Refs.Document, _ = cmd.Flags().GetString("document")
	}
	if cfg.Refs.Document == "" {
		return fmt.Errorf("no document configured (set refs.document or --document)")
	}

	renames := make(map[string]string, len(args))
	for _, arg := range args {
		oldName, newName, ok := strings.Cut(arg, "=")
		if !ok || oldName == "" || newName == "" {
			return fmt.Errorf("invalid rename %q (want OLD=NEW)", arg)
		}
		renames[oldName] = newName
	}

	updated, err := refs.Apply(cfg.Refs.Document, renames)
	if err != nil {
		return fmt.Errorf("updating references: %w", err)
	}

	fmt.Printf("Updated %d of %d references in %s\n", updated, len(renames), cfg.Refs.Document)
	return nil
}
