package storage

import (
	"testing"

	"github.com/claude/repbot/internal/models"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

// TestRecordCandidates verifies the per-exercise max weight, session volume,
// and estimated 1RM computed from a workout's working sets.
func TestRecordCandidates(t *testing.T) {
	detail := &WorkoutDetail{
		Exercises: []models.WorkoutExercise{
			{
				ExerciseID: 1,
				Name:       "Bench Press",
				Sets: []models.Set{
					{Reps: intp(10), WeightKg: floatp(60), IsWarmup: true},
					{Reps: intp(10), WeightKg: floatp(80)},
					{Reps: intp(8), WeightKg: floatp(85)},
				},
			},
		},
	}

	candidates := recordCandidates(detail)
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(candidates))
	}

	byType := make(map[string]float64, 3)
	for _, c := range candidates {
		if c.exerciseID != 1 || c.name != "Bench Press" {
			t.Errorf("candidate = %+v, want exercise 1 Bench Press", c)
		}
		byType[c.recordType] = c.value
	}

	if got := byType[models.RecordMaxWeight]; got != 85 {
		t.Errorf("max weight = %v, want 85 (warmup excluded)", got)
	}
	// 10×80 + 8×85, warmup excluded
	if got := byType[models.RecordMaxVolume]; got != 1480 {
		t.Errorf("volume = %v, want 1480", got)
	}
	// Epley on 8×85 beats 10×80
	want1RM := 85 * (1 + 8.0/30)
	if got := byType[models.RecordMax1RM]; got < want1RM-0.001 || got > want1RM+0.001 {
		t.Errorf("1rm = %v, want %v", got, want1RM)
	}
}

// TestRecordCandidatesSkipsUnweighted verifies cardio and bodyweight-only
// exercises produce no record candidates.
func TestRecordCandidatesSkipsUnweighted(t *testing.T) {
	detail := &WorkoutDetail{
		Exercises: []models.WorkoutExercise{
			{
				ExerciseID: 2,
				Name:       "Treadmill",
				Sets:       []models.Set{{Reps: intp(30), Comment: "minutes"}},
			},
			{
				ExerciseID: 3,
				Name:       "Pull-Up",
				Sets:       []models.Set{{Reps: intp(12)}},
			},
		},
	}

	if candidates := recordCandidates(detail); len(candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(candidates))
	}
}

// TestTruncInterval verifies bucket strings map to date_trunc field names,
// defaulting to week.
func TestTruncInterval(t *testing.T) {
	cases := []struct {
		bucket string
		want   string
	}{
		{"1 day", "day"},
		{"1 week", "week"},
		{"1 month", "month"},
		{"nonsense", "week"},
		{"", "week"},
	}
	for _, tc := range cases {
		if got := truncInterval(tc.bucket); got != tc.want {
			t.Errorf("truncInterval(%q) = %q, want %q", tc.bucket, got, tc.want)
		}
	}
}
