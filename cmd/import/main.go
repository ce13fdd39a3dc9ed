// Command import loads the JSON state files into the SQLite backend.
//
// Usage:
//
//	go run ./cmd/import -messages messages.json -tracker seasons_tracker.json -state state.json -db data/greetings.db
//
// This tool:
// 1. Reads the message list, the season tracker and the rotation state
// 2. Creates/opens the SQLite database
// 3. Runs migrations to ensure schema is current
// 4. Replaces messages, tracker and rotation index in a single transaction
//
// The import is idempotent: every run replaces what the database holds.
// Missing tracker or state files import as empty state.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/seasonal-greetings/internal/calendar"
	"github.com/zapponejosh/seasonal-greetings/internal/database"
	"github.com/zapponejosh/seasonal-greetings/internal/filestore"
	"github.com/zapponejosh/seasonal-greetings/internal/rotation"
)

func main() {
	// Parse command line flags
	messagesPath := flag.String("messages", "messages.json", "Path to the messages JSON file")
	trackerPath := flag.String("tracker", "seasons_tracker.json", "Path to the season tracker JSON file")
	statePath := flag.String("state", "state.json", "Path to the rotation state JSON file")
	dbPath := flag.String("db", "data/greetings.db", "Path to SQLite database")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	files := filestore.Config{
		TrackerPath:  *trackerPath,
		StatePath:    *statePath,
		MessagesPath: *messagesPath,
	}

	// Run import
	if err := run(files, *dbPath, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

func run(files filestore.Config, dbPath string, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and parse JSON
	// =========================================================================
	logger.Info("reading messages", slog.String("path", files.MessagesPath))

	f, err := os.Open(files.MessagesPath)
	if err != nil {
		return fmt.Errorf("open messages file: %w", err)
	}
	entries, err := rotation.DecodeEntries(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parse messages: %w", err)
	}

	src := filestore.New(files)
	tr, err := src.LoadTracker(ctx)
	if err != nil {
		return fmt.Errorf("read tracker: %w", err)
	}
	rot, err := src.LoadRotation(ctx)
	if err != nil {
		return fmt.Errorf("read rotation state: %w", err)
	}

	logger.Info("parsed JSON",
		slog.Int("messages", len(entries)),
		slog.Int("seasons", len(tr)),
		slog.Int("index", rot.Index),
	)

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	logger.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 3: Import data in a transaction
	// =========================================================================
	logger.Info("starting import")

	err = db.WithTx(ctx, func(tx *database.Tx) error {
		if err := tx.ReplaceMessages(ctx, entries); err != nil {
			return err
		}
		if err := tx.SaveTracker(ctx, tr); err != nil {
			return err
		}
		return tx.SaveRotation(ctx, rot)
	})
	if err != nil {
		return fmt.Errorf("import data: %w", err)
	}

	// =========================================================================
	// Step 4: Verify import
	// =========================================================================
	count, err := db.CountMessages(ctx)
	if err != nil {
		return fmt.Errorf("count messages: %w", err)
	}
	stored, err := db.LoadTracker(ctx)
	if err != nil {
		return fmt.Errorf("reload tracker: %w", err)
	}

	elapsed := time.Since(startTime)

	logger.Info("import verified",
		slog.Int("messages", count),
		slog.Duration("elapsed", elapsed),
	)

	// Print summary
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Messages imported:   %d\n", count)
	for _, season := range calendar.Seasons() {
		fmt.Printf("%-8s used:       %d\n", season, len(stored.Entry(string(season)).Used))
	}
	fmt.Printf("Rotation index:      %d\n", rot.Index)
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}
