package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/claude/repbot/internal/models"
	"github.com/claude/repbot/internal/nlp"
	"github.com/claude/repbot/internal/storage"
)

func intp(v int) *int          { return &v }
func floatp(v float64) *float64 { return &v }

// TestFormatSet covers weighted, bodyweight and cardio renderings.
func TestFormatSet(t *testing.T) {
	tests := []struct {
		name string
		set  models.Set
		want string
	}{
		{"weighted", models.Set{Reps: intp(10), WeightKg: floatp(80)}, "10 × 80 kg"},
		{"fractional weight", models.Set{Reps: intp(8), WeightKg: floatp(82.5)}, "8 × 82.5 kg"},
		{"bodyweight", models.Set{Reps: intp(12)}, "12 × bodyweight"},
		{"cardio", models.Set{Reps: intp(30), Comment: "minutes"}, "30 min"},
		{"empty", models.Set{}, "—"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSet(tt.set); got != tt.want {
				t.Errorf("formatSet() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestFormatLoggedExercises verifies the confirmation message includes
// names, set lines and per-exercise volume.
func TestFormatLoggedExercises(t *testing.T) {
	got := formatLoggedExercises([]nlp.ParsedExercise{
		{
			Name: "Bench Press",
			Sets: []nlp.ParsedSet{
				{Reps: intp(10), WeightKg: floatp(80)},
				{Reps: intp(8), WeightKg: floatp(85)},
			},
		},
		{
			Name: "Treadmill",
			Sets: []nlp.ParsedSet{{Reps: intp(30), Comment: "minutes"}},
		},
	})

	for _, want := range []string{"Bench Press", "10 × 80 kg", "8 × 85 kg", "Volume: 1480 kg", "Treadmill", "30 min"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatLoggedExercises() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Treadmill</b>\nVolume") {
		t.Error("formatLoggedExercises() shows volume for cardio-only exercise")
	}
}

// TestFormatWorkoutDetail verifies the current-workout view and the empty
// case.
func TestFormatWorkoutDetail(t *testing.T) {
	empty := &storage.WorkoutDetail{}
	if got := formatWorkoutDetail(empty); !strings.Contains(got, "Nothing logged yet") {
		t.Errorf("formatWorkoutDetail(empty) = %q, want the empty hint", got)
	}

	detail := &storage.WorkoutDetail{
		Exercises: []models.WorkoutExercise{
			{
				OrderNum: 1,
				Name:     "Squat",
				VolumeKg: floatp(1500),
				Comment:  "felt heavy",
				Sets: []models.Set{
					{Reps: intp(5), WeightKg: floatp(100)},
				},
			},
		},
	}
	got := formatWorkoutDetail(detail)
	for _, want := range []string{"Squat", "5 × 100 kg", "felt heavy", "Total volume: <b>1500 kg</b>"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatWorkoutDetail() missing %q in:\n%s", want, got)
		}
	}
}

// TestFormatWeekComparison verifies the diff section appears with both
// weeks' numbers and a signed percentage.
func TestFormatWeekComparison(t *testing.T) {
	cur := &storage.RangeSummary{Workouts: 3, Sets: 40, VolumeKg: 12000}
	prev := &storage.RangeSummary{Workouts: 2, Sets: 30, VolumeKg: 10000}

	got := formatWeekComparison(cur, prev)
	for _, want := range []string{"2 → 3", "30 → 40", "10000 kg → 12000 kg", "+20%"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatWeekComparison() missing %q in:\n%s", want, got)
		}
	}
}

// TestFormatRecords verifies grouping by exercise and the empty case.
func TestFormatRecords(t *testing.T) {
	if got := formatRecords(nil); !strings.Contains(got, "No records yet") {
		t.Errorf("formatRecords(nil) = %q, want the empty hint", got)
	}

	when := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	records := []storage.RecordWithName{
		{ExerciseName: "Bench Press", Record: models.Record{RecordType: models.RecordMaxWeight, Value: 100, AchievedAt: when}},
		{ExerciseName: "Bench Press", Record: models.Record{RecordType: models.RecordMax1RM, Value: 110, AchievedAt: when}},
	}
	got := formatRecords(records)
	if strings.Count(got, "Bench Press") != 1 {
		t.Errorf("formatRecords() repeats the exercise header:\n%s", got)
	}
	for _, want := range []string{"max weight: 100 kg", "estimated 1RM: 110 kg", "15 Aug 2026"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatRecords() missing %q in:\n%s", want, got)
		}
	}
}

// TestWeekStart verifies Monday boundaries, including Sundays mapping back
// to the previous Monday.
func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"wednesday",
			time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC),
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			"monday stays",
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday goes back six days",
			time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC),
			time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("weekStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestAlternativeIDs verifies name-to-ID resolution keeps positions aligned
// with the alternatives slice.
func TestAlternativeIDs(t *testing.T) {
	exercises := []models.Exercise{
		{ID: 1, Name: "Bench Press"},
		{ID: 2, Name: "Incline Bench Press"},
	}
	alts := []nlp.Alternative{
		{Name: "incline bench press"},
		{Name: "no such thing"},
		{Name: "Bench Press"},
	}

	got := alternativeIDs(alts, exercises)
	want := []int{2, 0, 1}
	if len(got) != len(want) {
		t.Fatalf("alternativeIDs() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("alternativeIDs()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
