package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/claude/repbot/internal/analytics"
	"github.com/claude/repbot/internal/models"
	"github.com/claude/repbot/internal/nlp"
	"github.com/claude/repbot/internal/storage"
)

// formatSet renders one set line: "10 × 80 kg", "12 × bodyweight" or
// "30 min" for cardio entries.
func formatSet(s models.Set) string {
	if s.Reps == nil {
		return "—"
	}
	if s.Comment == "minutes" {
		return fmt.Sprintf("%d min", *s.Reps)
	}
	if s.WeightKg == nil {
		return fmt.Sprintf("%d × bodyweight", *s.Reps)
	}
	return fmt.Sprintf("%d × %s kg", *s.Reps, analytics.FormatWeight(*s.WeightKg))
}

// formatParsedSets renders sets fresh from the parser, before they have a
// database identity.
func formatParsedSets(sets []nlp.ParsedSet) string {
	var b strings.Builder
	for i, s := range sets {
		if s.Reps == nil {
			continue
		}
		b.WriteString(fmt.Sprintf("%d) ", i+1))
		switch {
		case s.Comment == "minutes":
			b.WriteString(fmt.Sprintf("%d min", *s.Reps))
		case s.WeightKg == nil:
			b.WriteString(fmt.Sprintf("%d × bodyweight", *s.Reps))
		default:
			b.WriteString(fmt.Sprintf("%d × %s kg", *s.Reps, analytics.FormatWeight(*s.WeightKg)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatLoggedExercises is the confirmation message after a parse lands.
func formatLoggedExercises(exercises []nlp.ParsedExercise) string {
	var b strings.Builder
	b.WriteString("Logged:\n\n")
	for _, e := range exercises {
		b.WriteString("<b>" + e.Name + "</b>\n")
		if lines := formatParsedSets(e.Sets); lines != "" {
			b.WriteString(lines + "\n")
		}
		var volume float64
		for _, s := range e.Sets {
			if s.Reps != nil && s.WeightKg != nil {
				volume += float64(*s.Reps) * *s.WeightKg
			}
		}
		if volume > 0 {
			b.WriteString(fmt.Sprintf("Volume: %s kg\n", analytics.FormatWeight(volume)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatWorkoutDetail is the "current workout" view.
func formatWorkoutDetail(detail *storage.WorkoutDetail) string {
	if len(detail.Exercises) == 0 {
		return "🏋️ Workout in progress. Nothing logged yet — send a voice note or a message like \"bench press 3x10 at 80\"."
	}

	var b strings.Builder
	b.WriteString("🏋️ <b>Current workout</b>\n\n")
	var total float64
	for _, we := range detail.Exercises {
		b.WriteString(fmt.Sprintf("%d. <b>%s</b>\n", we.OrderNum, we.Name))
		for _, s := range we.Sets {
			b.WriteString("   " + formatSet(s) + "\n")
		}
		if we.Comment != "" {
			b.WriteString("   💬 " + we.Comment + "\n")
		}
		if we.VolumeKg != nil {
			total += *we.VolumeKg
		}
	}
	if total > 0 {
		b.WriteString(fmt.Sprintf("\nTotal volume: <b>%s kg</b>", analytics.FormatWeight(total)))
	}
	return b.String()
}

// formatFinish is the end-of-workout summary with any records beaten.
func formatFinish(detail *storage.WorkoutDetail, totalKg float64, records []storage.RecordWithName, motivation string) string {
	var b strings.Builder
	b.WriteString("🏁 <b>Workout finished!</b>\n\n")
	b.WriteString(fmt.Sprintf("Exercises: %d\n", len(detail.Exercises)))
	var sets int
	for _, we := range detail.Exercises {
		sets += len(we.Sets)
	}
	b.WriteString(fmt.Sprintf("Sets: %d\n", sets))
	if totalKg > 0 {
		b.WriteString(fmt.Sprintf("Total volume: <b>%s kg</b>\n", analytics.FormatWeight(totalKg)))
	}
	if len(records) > 0 {
		b.WriteString("\n🏆 <b>New personal records:</b>\n")
		for _, r := range records {
			b.WriteString(fmt.Sprintf("• %s — %s: %s kg\n",
				r.ExerciseName, analytics.RecordTypeLabel(r.RecordType), analytics.FormatWeight(r.Value)))
		}
	}
	b.WriteString("\n" + motivation)
	return b.String()
}

// formatRangeSummary renders today / week / month statistics.
func formatRangeSummary(title string, s *storage.RangeSummary) string {
	if s.Workouts == 0 {
		return title + "\n\nNo workouts in this period."
	}

	var b strings.Builder
	b.WriteString(title + "\n\n")
	b.WriteString(fmt.Sprintf("Workouts: %d\n", s.Workouts))
	b.WriteString(fmt.Sprintf("Working sets: %d\n", s.Sets))
	b.WriteString(fmt.Sprintf("Volume: <b>%s kg</b>\n", analytics.FormatWeight(s.VolumeKg)))
	if len(s.Exercises) > 0 {
		b.WriteString("\nTop exercises:\n")
		for i, e := range s.Exercises {
			if i >= 5 {
				break
			}
			b.WriteString(fmt.Sprintf("• %s — %d sets, %s kg\n",
				e.Name, e.WorkingSets, analytics.FormatWeight(e.VolumeKg)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatWeekComparison renders this week against the previous one over the
// same span of days.
func formatWeekComparison(cur, prev *storage.RangeSummary) string {
	var b strings.Builder
	b.WriteString(formatRangeSummary("📆 <b>This week</b>", cur))
	if prev.Workouts == 0 && cur.Workouts == 0 {
		return b.String()
	}
	b.WriteString("\n\nVs. last week:\n")
	b.WriteString(fmt.Sprintf("• Workouts: %d → %d\n", prev.Workouts, cur.Workouts))
	b.WriteString(fmt.Sprintf("• Sets: %d → %d\n", prev.Sets, cur.Sets))
	b.WriteString(fmt.Sprintf("• Volume: %s kg → %s kg (%s)",
		analytics.FormatWeight(prev.VolumeKg),
		analytics.FormatWeight(cur.VolumeKg),
		analytics.FormatDiff(analytics.PercentChange(prev.VolumeKg, cur.VolumeKg))))
	return b.String()
}

// formatRecords renders the personal-record list grouped by exercise.
func formatRecords(records []storage.RecordWithName) string {
	if len(records) == 0 {
		return "🏆 No records yet. Finish a workout with weighted sets to set some!"
	}

	var b strings.Builder
	b.WriteString("🏆 <b>Personal records</b>\n")
	var lastExercise string
	for _, r := range records {
		if r.ExerciseName != lastExercise {
			b.WriteString("\n<b>" + r.ExerciseName + "</b>\n")
			lastExercise = r.ExerciseName
		}
		b.WriteString(fmt.Sprintf("• %s: %s kg (%s)\n",
			analytics.RecordTypeLabel(r.RecordType),
			analytics.FormatWeight(r.Value),
			r.AchievedAt.Format("2 Jan 2006")))
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatProgress renders per-workout history for one exercise.
func formatProgress(exerciseName string, points []storage.ExercisePoint) string {
	if len(points) == 0 {
		return "📈 No history for " + exerciseName + " yet."
	}

	var b strings.Builder
	b.WriteString("📈 <b>" + exerciseName + "</b>\n\n")
	for _, p := range points {
		b.WriteString(fmt.Sprintf("%s — max %s kg, %d sets, volume %s kg\n",
			p.Date.Format("2 Jan"),
			analytics.FormatWeight(p.MaxWeightKg),
			p.WorkingSets,
			analytics.FormatWeight(p.VolumeKg)))
	}
	first, last := points[0], points[len(points)-1]
	if first.MaxWeightKg > 0 && len(points) > 1 {
		b.WriteString(fmt.Sprintf("\nMax weight change: %s",
			analytics.FormatDiff(analytics.PercentChange(first.MaxWeightKg, last.MaxWeightKg))))
	}
	return b.String()
}

// weekStart returns the Monday 00:00 of the week containing t.
func weekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, -(weekday - 1))
}

// monthStart returns the first day of the month containing t.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// dayStart returns midnight of the day containing t.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
