package storage

import (
	"context"
	"fmt"
	"time"
)

// StrengthVolumeSummary holds aggregated strength training stats for a period.
type StrengthVolumeSummary struct {
	WorkingSets       int     `json:"working_sets"`
	TotalReps         int     `json:"total_reps"`
	TonnageKg         float64 `json:"tonnage_kg"`
	Sessions          int     `json:"sessions"`
	AvgSetsPerSession float64 `json:"avg_sets_per_session"`
}

// TrainingSummaryPeriod holds aggregated training data for one time period.
type TrainingSummaryPeriod struct {
	Period       string                 `json:"period"`
	Strength     *StrengthVolumeSummary `json:"strength,omitempty"`
	TopExercises []ExerciseTotal        `json:"top_exercises,omitempty"`
}

// GetTrainingSummary returns strength volume stats per period bucket,
// newest period first.
func (db *DB) GetTrainingSummary(ctx context.Context, userID int64, start, end time.Time, bucket string) ([]TrainingSummaryPeriod, error) {
	strengthRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, w.workout_date)::date AS period,
		        COUNT(s.id) FILTER (WHERE NOT s.is_warmup)::int AS working_sets,
		        COALESCE(SUM(s.reps) FILTER (WHERE NOT s.is_warmup), 0)::int AS total_reps,
		        COALESCE(SUM(s.reps * s.weight_kg) FILTER (WHERE NOT s.is_warmup), 0) AS tonnage,
		        COUNT(DISTINCT w.id)::int AS sessions
		 FROM workouts w
		 JOIN workout_exercises we ON we.workout_id = w.id
		 JOIN sets s ON s.workout_exercise_id = we.id
		 WHERE w.workout_date >= $2 AND w.workout_date < $3 AND w.user_id = $4
		 GROUP BY period
		 ORDER BY period DESC`,
		truncInterval(bucket), start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying strength summary: %w", err)
	}
	defer strengthRows.Close()

	periodMap := make(map[string]*TrainingSummaryPeriod)
	var periodOrder []string

	for strengthRows.Next() {
		var periodTime time.Time
		var sv StrengthVolumeSummary
		if err := strengthRows.Scan(&periodTime, &sv.WorkingSets, &sv.TotalReps, &sv.TonnageKg, &sv.Sessions); err != nil {
			return nil, fmt.Errorf("scanning strength summary: %w", err)
		}
		if sv.Sessions > 0 {
			sv.AvgSetsPerSession = float64(sv.WorkingSets) / float64(sv.Sessions)
		}
		key := periodTime.Format("2006-01-02")
		periodMap[key] = &TrainingSummaryPeriod{Period: key, Strength: &sv}
		periodOrder = append(periodOrder, key)
	}
	if err := strengthRows.Err(); err != nil {
		return nil, err
	}

	exerciseRows, err := db.Pool.Query(ctx,
		`SELECT period, name, working_sets, total_reps, volume, max_weight FROM (
		    SELECT date_trunc($1, w.workout_date)::date AS period,
		           e.name,
		           COUNT(s.id) FILTER (WHERE NOT s.is_warmup)::int AS working_sets,
		           COALESCE(SUM(s.reps) FILTER (WHERE NOT s.is_warmup), 0)::int AS total_reps,
		           COALESCE(SUM(s.reps * s.weight_kg) FILTER (WHERE NOT s.is_warmup), 0) AS volume,
		           COALESCE(MAX(s.weight_kg) FILTER (WHERE NOT s.is_warmup), 0) AS max_weight,
		           ROW_NUMBER() OVER (PARTITION BY date_trunc($1, w.workout_date)
		                              ORDER BY SUM(s.reps * s.weight_kg) DESC NULLS LAST) AS rank
		    FROM workouts w
		    JOIN workout_exercises we ON we.workout_id = w.id
		    JOIN exercises e ON e.id = we.exercise_id
		    JOIN sets s ON s.workout_exercise_id = we.id
		    WHERE w.workout_date >= $2 AND w.workout_date < $3 AND w.user_id = $4
		    GROUP BY period, e.name
		 ) ranked
		 WHERE rank <= 5
		 ORDER BY period DESC, volume DESC`,
		truncInterval(bucket), start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying top exercises: %w", err)
	}
	defer exerciseRows.Close()

	for exerciseRows.Next() {
		var periodTime time.Time
		var t ExerciseTotal
		if err := exerciseRows.Scan(&periodTime, &t.Name, &t.WorkingSets, &t.TotalReps, &t.VolumeKg, &t.MaxWeightKg); err != nil {
			return nil, fmt.Errorf("scanning top exercise: %w", err)
		}
		key := periodTime.Format("2006-01-02")
		if _, ok := periodMap[key]; !ok {
			periodMap[key] = &TrainingSummaryPeriod{Period: key}
			periodOrder = append(periodOrder, key)
		}
		periodMap[key].TopExercises = append(periodMap[key].TopExercises, t)
	}
	if err := exerciseRows.Err(); err != nil {
		return nil, err
	}

	result := make([]TrainingSummaryPeriod, 0, len(periodOrder))
	for _, key := range periodOrder {
		result = append(result, *periodMap[key])
	}
	return result, nil
}

// truncInterval converts bucket strings like "1 month" to the interval name
// that date_trunc expects (e.g. "month", "week").
func truncInterval(bucket string) string {
	switch bucket {
	case "1 day":
		return "day"
	case "1 week":
		return "week"
	case "1 month":
		return "month"
	default:
		return "week"
	}
}
