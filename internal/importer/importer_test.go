package importer

import (
	"log/slog"
	"strings"
	"testing"
)

// TestParseHistory verifies rows are grouped by date and ordered oldest first.
func TestParseHistory(t *testing.T) {
	input := `date,exercise,reps,weight_kg,warmup,comment
2026-08-20,Bench Press,10,80,,
2026-08-20,Bench Press,8,85,,heavy
2026-08-18,Squat,5,100,1,
2026-08-20,Squat,12,,,
`
	days, stats, err := parseHistory(strings.NewReader(input), slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	if stats.RowsRead != 4 {
		t.Errorf("rows read = %d, want 4", stats.RowsRead)
	}
	if stats.RowsSkipped != 0 {
		t.Errorf("rows skipped = %d, want 0", stats.RowsSkipped)
	}
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}

	// Oldest first
	if got := days[0].date.Format("2006-01-02"); got != "2026-08-18" {
		t.Errorf("first day = %s, want 2026-08-18", got)
	}
	if len(days[0].sets) != 1 {
		t.Fatalf("first day sets = %d, want 1", len(days[0].sets))
	}
	if !days[0].sets[0].IsWarmup {
		t.Error("expected warmup flag on first day's set")
	}

	if len(days[1].sets) != 3 {
		t.Fatalf("second day sets = %d, want 3", len(days[1].sets))
	}
	if days[1].sets[1].Comment != "heavy" {
		t.Errorf("comment = %q, want heavy", days[1].sets[1].Comment)
	}
	// Bodyweight row has reps but no weight
	if days[1].sets[2].WeightKg != nil {
		t.Error("expected nil weight for bodyweight set")
	}
}

// TestParseHistorySkipsBadRows verifies malformed rows are counted and skipped
// without aborting the import.
func TestParseHistorySkipsBadRows(t *testing.T) {
	input := `date,exercise,reps,weight_kg
2026-08-20,Bench Press,ten,80
not-a-date,Squat,5,100
2026-08-20,,5,100
2026-08-20,Deadlift,5,140
`
	days, stats, err := parseHistory(strings.NewReader(input), slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	if stats.RowsSkipped != 3 {
		t.Errorf("rows skipped = %d, want 3", stats.RowsSkipped)
	}
	if len(days) != 1 {
		t.Fatalf("got %d days, want 1", len(days))
	}
	if days[0].sets[0].ExerciseName != "Deadlift" {
		t.Errorf("exercise = %q, want Deadlift", days[0].sets[0].ExerciseName)
	}
}

// TestParseHistoryMissingColumn verifies a missing required column is fatal.
func TestParseHistoryMissingColumn(t *testing.T) {
	input := "exercise,reps\nBench Press,10\n"
	_, _, err := parseHistory(strings.NewReader(input), slog.Default())
	if err == nil {
		t.Fatal("expected error for missing date column")
	}
}
