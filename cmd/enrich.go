/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/

// The enrich command re-runs the enrichment pipeline outside the server:
// either for a single bookmark by ID, or for a batch of bookmarks whose
// enrichment is pending (e.g. after refresh requests while the server was
// down).
//
// Example usage:
//
//	linkhoard enrich --id=8f14e45f --owner=katie@example.com
//	linkhoard enrich --limit=10 --rendered-extraction
package cmd

import (
	"context"
	"fmt"

	"github.com/seckatie/linkhoard/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// enrichCmd represents the enrich command
var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Re-enrich bookmarks from the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnrich(cmd)
	},
}

func runEnrich(cmd *cobra.Command) error {
	cfg := config.Load()
	zlog := initLogger(cmd)
	defer zlog.Sync()

	database, err := initDB(cmd, zlog)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	enricher := newEnricher(cmd, cfg, zlog)

	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return fmt.Errorf("failed to read --id: %w", err)
	}
	owner, err := cmd.Flags().GetString("owner")
	if err != nil {
		return fmt.Errorf("failed to read --owner: %w", err)
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("failed to read --limit: %w", err)
	}

	ctx := context.Background()

	if id != "" {
		if owner == "" {
			return fmt.Errorf("--owner is required with --id")
		}
		b, err := database.GetBookmark(owner, id)
		if err != nil {
			return err
		}
		return enrichAndPersist(ctx, database, enricher, b)
	}

	bookmarks, err := database.ListBookmarksToEnrich(limit)
	if err != nil {
		return err
	}
	if len(bookmarks) == 0 {
		zlog.Info("no bookmarks to enrich")
		return nil
	}

	zlog.Info("enriching bookmarks", zap.Int("count", len(bookmarks)))
	var failures int
	for _, b := range bookmarks {
		if err := enrichAndPersist(ctx, database, enricher, b); err != nil {
			failures++
			zlog.Error("enrichment failed",
				zap.String("id", b.ID), zap.String("url", b.URL), zap.Error(err))
		}
	}
	if failures > 0 {
		return fmt.Errorf("enrichment finished with %d failure(s)", failures)
	}

	zlog.Info("enrichment finished successfully")
	return nil
}

func init() {
	rootCmd.AddCommand(enrichCmd)

	enrichCmd.Flags().String("id", "", "Re-enrich a specific bookmark id")
	enrichCmd.Flags().String("owner", "", "Owner of the bookmark given with --id")
	enrichCmd.Flags().Int("limit", 0, "Limit the number of bookmarks to enrich (0 = all pending)")
}
