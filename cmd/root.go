/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/seckatie/linkhoard/internal/config"
	"github.com/seckatie/linkhoard/internal/core"
	"github.com/seckatie/linkhoard/internal/core/db"
	"github.com/seckatie/linkhoard/internal/core/web"
	"github.com/seckatie/linkhoard/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linkhoard",
	Short: "A personal bookmarking server with automatic link enrichment",
	Long: `linkhoard stores bookmarks submitted by authenticated users and enriches
each one with a title, favicon and summary derived from the page, falling
back to offline synthesis from the URL when the network strategies fail.

Running without a subcommand starts the HTTP API server together with the
background workers that re-enrich bookmarks on request.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		zlog := initLogger(cmd)
		defer zlog.Sync()

		database, err := initDB(cmd, zlog)
		if err != nil {
			zlog.Fatal("failed to initialize database", zap.Error(err))
		}
		defer database.Close()

		enricher := newEnricher(cmd, cfg, zlog)

		numWorkers, err := cmd.Flags().GetInt("enrich-workers")
		if err != nil {
			zlog.Fatal("failed to get enrich workers", zap.Error(err))
		}

		// Work queue feeding the re-enrichment workers
		workQueue := make(chan db.Bookmark, numWorkers*10)

		// A refresh request clears the bookmark's enrichment state; queue it
		// for the workers to pick up.
		database.RegisterEventListener(db.OnRefreshRequestedEvent, func(event db.Event) error {
			ev := event.(db.RefreshRequestedEvent)
			bookmark, err := database.GetBookmark(ev.Owner, ev.BookmarkID)
			if err != nil {
				zlog.Error("failed to fetch bookmark for re-enrichment",
					zap.String("id", ev.BookmarkID), zap.Error(err))
				return err
			}
			select {
			case workQueue <- bookmark:
				zlog.Info("queued bookmark for re-enrichment", zap.String("id", bookmark.ID))
			default:
				zlog.Warn("work queue full, bookmark will be picked up later",
					zap.String("id", bookmark.ID))
			}
			return nil
		})

		// Start workers that re-enrich bookmarks and persist results
		for i := 0; i < numWorkers; i++ {
			workerID := i
			go func() {
				zlog.Info("enrich worker started", zap.Int("worker", workerID))
				for bookmark := range workQueue {
					ctx := context.Background()
					if err := enrichAndPersist(ctx, database, enricher, bookmark); err != nil {
						zlog.Error("re-enrichment failed",
							zap.Int("worker", workerID),
							zap.String("id", bookmark.ID),
							zap.String("url", bookmark.URL),
							zap.Error(err))
					}
				}
			}()
		}

		// On startup, queue any bookmarks whose enrichment is still pending
		// (e.g. a refresh was requested right before a previous shutdown).
		go func() {
			time.Sleep(2 * time.Second)
			bookmarks, err := database.ListBookmarksToEnrich(0)
			if err != nil {
				zlog.Error("failed to list pending bookmarks", zap.Error(err))
				return
			}
			for _, b := range bookmarks {
				select {
				case workQueue <- b:
				default:
					zlog.Warn("work queue full, bookmark will be retried on next startup",
						zap.String("id", b.ID))
				}
			}
			if len(bookmarks) > 0 {
				zlog.Info("queued pending bookmarks from startup scan", zap.Int("count", len(bookmarks)))
			}
		}()

		host, err := cmd.Flags().GetString("host")
		if err != nil {
			zlog.Fatal("failed to get host", zap.Error(err))
		}
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			zlog.Fatal("failed to get port", zap.Error(err))
		}

		web.StartServer(fmt.Sprintf("%s:%d", host, port), database, enricher, cfg.JWTSecret, zlog)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("db", "d", "linkhoard.db", "Path to the SQLite database file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Human-readable log output")
	rootCmd.PersistentFlags().Bool("rendered-extraction", false, "Enable the browser-based metadata strategy (requires Chrome/Chromium)")
	rootCmd.PersistentFlags().String("chrome-path", "", "Path to Chrome/Chromium executable")

	rootCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	rootCmd.Flags().String("host", "localhost", "Host to listen on")
	rootCmd.Flags().IntP("enrich-workers", "w", 1, "Number of re-enrichment workers to run")
}

func initLogger(cmd *cobra.Command) *zap.Logger {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		log.Fatalf("Failed to get log level: %v", err)
	}
	pretty, err := cmd.Flags().GetBool("log-pretty")
	if err != nil {
		log.Fatalf("Failed to get log format: %v", err)
	}
	zlog, err := logger.New(level, pretty)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	return zlog
}

func initDB(cmd *cobra.Command, zlog *zap.Logger) (*db.DB, error) {
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}
	database, err := db.NewSQLiteDB(dbPath, zlog)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	if err := database.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	zlog.Info("database migrated successfully", zap.String("path", dbPath))

	return database, nil
}

func newEnricher(cmd *cobra.Command, cfg *config.Config, zlog *zap.Logger) *core.Enricher {
	rendered, err := cmd.Flags().GetBool("rendered-extraction")
	if err != nil {
		zlog.Fatal("failed to get rendered-extraction flag", zap.Error(err))
	}
	chromePath, err := cmd.Flags().GetString("chrome-path")
	if err != nil {
		zlog.Fatal("failed to get chrome-path flag", zap.Error(err))
	}

	return core.NewEnricher(core.EnricherOptions{
		PreviewAPIURL:      cfg.PreviewAPIURL,
		ReaderAPIURL:       cfg.ReaderAPIURL,
		FetchTimeout:       cfg.FetchTimeout,
		CacheTTL:           cfg.CacheTTL,
		RenderedExtraction: rendered,
		ChromePath:         chromePath,
		OpenAIAPIKey:       cfg.OpenAIAPIKey,
		OpenAIBaseURL:      cfg.OpenAIBaseURL,
		OpenAIModel:        cfg.OpenAIModel,
	}, zlog)
}

// enrichAndPersist runs the pipeline for one bookmark and stores the result.
func enrichAndPersist(ctx context.Context, database *db.DB, enricher *core.Enricher, b db.Bookmark) error {
	enrichment := enricher.Enrich(ctx, b.URL)
	return database.SaveEnrichment(b.Owner, b.ID,
		enrichment.Title, enrichment.Favicon, enrichment.Summary, enrichment.Method)
}
