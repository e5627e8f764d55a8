package analytics

import (
	"math"
	"testing"

	"github.com/claude/repbot/internal/models"
)

// TestEstimateOneRepMax verifies the Epley estimate, including the
// single-rep case where the lifted weight is returned unchanged.
func TestEstimateOneRepMax(t *testing.T) {
	tests := []struct {
		name     string
		weightKg float64
		reps     int
		want     float64
	}{
		{"single rep", 100, 1, 100},
		{"zero reps", 100, 0, 100},
		{"five reps", 100, 5, 100 * (1 + 5.0/30)},
		{"ten reps", 80, 10, 80 * (1 + 10.0/30)},
		{"thirty reps doubles", 60, 30, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateOneRepMax(tt.weightKg, tt.reps)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EstimateOneRepMax(%v, %d) = %v, want %v", tt.weightKg, tt.reps, got, tt.want)
			}
		})
	}
}

// TestEstimateOneRepMaxMonotonic verifies that more reps at the same weight
// never lowers the estimate.
func TestEstimateOneRepMaxMonotonic(t *testing.T) {
	prev := 0.0
	for reps := 1; reps <= 20; reps++ {
		got := EstimateOneRepMax(100, reps)
		if got < prev {
			t.Fatalf("EstimateOneRepMax(100, %d) = %v, less than previous %v", reps, got, prev)
		}
		prev = got
	}
}

// TestSetVolume verifies volume accounting for weighted, bodyweight and
// cardio sets.
func TestSetVolume(t *testing.T) {
	reps, weight := 8, 80.0
	minutes := 20

	tests := []struct {
		name string
		set  models.Set
		want float64
	}{
		{"weighted", models.Set{Reps: &reps, WeightKg: &weight}, 640},
		{"bodyweight", models.Set{Reps: &reps}, 0},
		{"cardio minutes", models.Set{Reps: &minutes, Comment: "minutes"}, 0},
		{"empty", models.Set{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SetVolume(tt.set); got != tt.want {
				t.Errorf("SetVolume() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestExerciseVolume verifies that warmup sets are excluded from totals.
func TestExerciseVolume(t *testing.T) {
	reps, light, heavy := 5, 40.0, 100.0
	we := models.WorkoutExercise{
		Sets: []models.Set{
			{Reps: &reps, WeightKg: &light, IsWarmup: true},
			{Reps: &reps, WeightKg: &heavy},
			{Reps: &reps, WeightKg: &heavy},
		},
	}
	if got, want := ExerciseVolume(we), 1000.0; got != want {
		t.Errorf("ExerciseVolume() = %v, want %v", got, want)
	}
}

// TestPercentChange verifies comparison math including zero baselines.
func TestPercentChange(t *testing.T) {
	tests := []struct {
		name string
		prev float64
		cur  float64
		want float64
	}{
		{"growth", 100, 120, 20},
		{"decline", 100, 80, -20},
		{"flat", 50, 50, 0},
		{"zero baseline", 0, 500, 100},
		{"both zero", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PercentChange(tt.prev, tt.cur); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PercentChange(%v, %v) = %v, want %v", tt.prev, tt.cur, got, tt.want)
			}
		})
	}
}

// TestLbToKg verifies the pound conversion constant.
func TestLbToKg(t *testing.T) {
	if got := LbToKg(100); math.Abs(got-45.3592) > 1e-6 {
		t.Errorf("LbToKg(100) = %v, want 45.3592", got)
	}
}

// TestFormatWeight verifies trailing-zero trimming, including non-integer
// inputs that round to a whole number at two decimals.
func TestFormatWeight(t *testing.T) {
	tests := []struct {
		kg   float64
		want string
	}{
		{80, "80"},
		{82.5, "82.5"},
		{0, "0"},
		{102.25, "102.25"},
		{82.999, "83"},
		{80.004, "80"},
	}

	for _, tt := range tests {
		if got := FormatWeight(tt.kg); got != tt.want {
			t.Errorf("FormatWeight(%v) = %q, want %q", tt.kg, got, tt.want)
		}
	}
}

// TestFormatDiff verifies the signed percentage rendering.
func TestFormatDiff(t *testing.T) {
	if got, want := FormatDiff(12.4), "+12%"; got != want {
		t.Errorf("FormatDiff(12.4) = %q, want %q", got, want)
	}
	if got, want := FormatDiff(-5), "-5%"; got != want {
		t.Errorf("FormatDiff(-5) = %q, want %q", got, want)
	}
}

// TestMotivationDeterministic verifies the same seed yields the same phrase.
func TestMotivationDeterministic(t *testing.T) {
	if Motivation(7) != Motivation(7) {
		t.Error("Motivation(7) is not deterministic")
	}
	if Motivation(-3) == "" {
		t.Error("Motivation(-3) = empty string")
	}
}
