// Package importer loads historical workout data from CSV exports into the
// database, so users switching from another tracker keep their history.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repbot/internal/models"
	"github.com/claude/repbot/internal/storage"
)

// Stats reports what an import run did (or would do, in dry-run mode).
type Stats struct {
	RowsRead        int
	RowsSkipped     int
	WorkoutsCreated int
	SetsImported    int
}

// Importer writes parsed history into storage.
type Importer struct {
	db     *storage.DB
	log    *slog.Logger
	dryRun bool
}

func New(db *storage.DB, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, log: log, dryRun: dryRun}
}

// dayImport is all sets logged on one date, in file order.
type dayImport struct {
	date time.Time
	sets []models.NewSet
}

// Import reads a CSV history file and creates one workout per distinct date.
// Expected columns: date, exercise, reps, weight_kg, warmup, comment.
// Rows that fail to parse are skipped and counted, not fatal.
func (imp *Importer) Import(ctx context.Context, userID int64, path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	days, stats, err := parseHistory(f, imp.log)
	if err != nil {
		return stats, err
	}

	for _, day := range days {
		if imp.dryRun {
			stats.WorkoutsCreated++
			stats.SetsImported += len(day.sets)
			continue
		}

		w, err := imp.db.CreateWorkoutOn(ctx, userID, day.date)
		if err != nil {
			return stats, fmt.Errorf("importing %s: %w", day.date.Format("2006-01-02"), err)
		}
		if err := imp.db.AddSets(ctx, userID, w.ID, day.sets); err != nil {
			return stats, fmt.Errorf("importing %s: %w", day.date.Format("2006-01-02"), err)
		}
		if _, err := imp.db.FinishWorkout(ctx, userID, w.ID); err != nil {
			return stats, fmt.Errorf("finalizing %s: %w", day.date.Format("2006-01-02"), err)
		}

		stats.WorkoutsCreated++
		stats.SetsImported += len(day.sets)
		imp.log.Info("imported workout", "date", day.date.Format("2006-01-02"), "sets", len(day.sets))
	}

	return stats, nil
}

// parseHistory reads CSV rows and groups them by date, oldest first.
func parseHistory(r io.Reader, log *slog.Logger) ([]dayImport, *Stats, error) {
	stats := &Stats{}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("reading header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "exercise", "reps"} {
		if _, ok := col[required]; !ok {
			return nil, stats, fmt.Errorf("missing required column %q", required)
		}
	}

	byDate := make(map[string]*dayImport)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("reading row: %w", err)
		}
		stats.RowsRead++

		set, date, err := parseRow(record, col)
		if err != nil {
			stats.RowsSkipped++
			log.Warn("skipping row", "row", stats.RowsRead, "error", err)
			continue
		}

		key := date.Format("2006-01-02")
		day, ok := byDate[key]
		if !ok {
			day = &dayImport{date: date}
			byDate[key] = day
		}
		day.sets = append(day.sets, *set)
	}

	days := make([]dayImport, 0, len(byDate))
	for _, day := range byDate {
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })
	return days, stats, nil
}

func parseRow(record []string, col map[string]int) (*models.NewSet, time.Time, error) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := time.Parse("2006-01-02", field("date"))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("bad date %q", field("date"))
	}

	name := field("exercise")
	if name == "" {
		return nil, time.Time{}, fmt.Errorf("empty exercise name")
	}

	set := &models.NewSet{
		ExerciseName: name,
		Comment:      field("comment"),
	}

	if raw := field("reps"); raw != "" {
		reps, err := strconv.Atoi(raw)
		if err != nil || reps < 0 {
			return nil, time.Time{}, fmt.Errorf("bad reps %q", raw)
		}
		set.Reps = &reps
	}

	if raw := field("weight_kg"); raw != "" {
		weight, err := strconv.ParseFloat(raw, 64)
		if err != nil || weight < 0 {
			return nil, time.Time{}, fmt.Errorf("bad weight %q", raw)
		}
		set.WeightKg = &weight
	}

	switch strings.ToLower(field("warmup")) {
	case "1", "true", "yes", "y":
		set.IsWarmup = true
	}

	return set, date, nil
}
