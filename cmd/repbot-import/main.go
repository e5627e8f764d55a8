package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/repbot/internal/config"
	"github.com/claude/repbot/internal/importer"
	"github.com/claude/repbot/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	historyPath := flag.String("path", "", "path to CSV history file (required)")
	userID := flag.Int64("user", 0, "Telegram user ID to import for (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *historyPath == "" || *userID == 0 {
		fmt.Fprintf(os.Stderr, "Usage: repbot-import -config config.yaml -user <telegram-id> -path history.csv [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// The user row must exist so imported workouts have an owner
	if !*dryRun {
		if _, err := db.UpsertUser(ctx, *userID, ""); err != nil {
			log.Error("failed to ensure user", "error", err)
			os.Exit(1)
		}
	}

	// Run import
	imp := importer.New(db, log, *dryRun)
	stats, err := imp.Import(ctx, *userID, *historyPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	if stats == nil {
		return
	}
	log.Info("import stats",
		"rows_read", stats.RowsRead,
		"rows_skipped", stats.RowsSkipped,
		"workouts_created", stats.WorkoutsCreated,
		"sets_imported", stats.SetsImported,
	)
}
