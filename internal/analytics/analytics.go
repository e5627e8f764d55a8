// Package analytics holds the pure training math: one-rep-max estimation,
// volume accounting and percentage comparisons. It has no storage or
// transport dependencies so every function is trivially testable.
package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/claude/repbot/internal/models"
)

// KgPerLb converts pounds to kilograms.
const KgPerLb = 0.453592

// EstimateOneRepMax estimates a one-rep max using the Epley formula,
// weight * (1 + reps/30). For a single rep the lifted weight is already
// the best estimate.
func EstimateOneRepMax(weightKg float64, reps int) float64 {
	if reps <= 1 {
		return weightKg
	}
	return weightKg * (1 + float64(reps)/30)
}

// LbToKg converts a weight in pounds to kilograms.
func LbToKg(lb float64) float64 {
	return lb * KgPerLb
}

// SetVolume returns reps times weight for a single set, zero when either
// is missing (cardio and bodyweight entries carry no load).
func SetVolume(s models.Set) float64 {
	if s.Reps == nil || s.WeightKg == nil {
		return 0
	}
	return float64(*s.Reps) * *s.WeightKg
}

// ExerciseVolume sums the working-set volume of one exercise.
func ExerciseVolume(we models.WorkoutExercise) float64 {
	var total float64
	for _, s := range we.Sets {
		if s.IsWarmup {
			continue
		}
		total += SetVolume(s)
	}
	return total
}

// PercentChange returns the relative change from prev to cur in percent.
// A zero previous value yields +100% for any positive current value, so a
// first-ever week still reads as growth rather than a division error.
func PercentChange(prev, cur float64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	return (cur - prev) / prev * 100
}

// FormatWeight renders a weight in kilograms without trailing zeros:
// 80 -> "80", 82.5 -> "82.5".
func FormatWeight(kg float64) string {
	if kg == math.Trunc(kg) {
		return fmt.Sprintf("%.0f", kg)
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", kg), "0"), ".")
}

// FormatDiff renders a signed percentage: "+12%" or "-5%".
func FormatDiff(pct float64) string {
	return fmt.Sprintf("%+.0f%%", pct)
}

// RecordTypeLabel maps a record type constant to a human label.
func RecordTypeLabel(recordType string) string {
	switch recordType {
	case models.RecordMaxWeight:
		return "max weight"
	case models.RecordMaxVolume:
		return "session volume"
	case models.RecordMax1RM:
		return "estimated 1RM"
	default:
		return recordType
	}
}

var motivations = []string{
	"Keep it up! 💪",
	"Solid work today!",
	"Consistency beats intensity. See you next time!",
	"Another one in the books.",
	"Strong session. Rest well!",
}

// Motivation returns a short closing phrase, keyed deterministically so
// tests stay stable.
func Motivation(seed int64) string {
	if seed < 0 {
		seed = -seed
	}
	return motivations[seed%int64(len(motivations))]
}
