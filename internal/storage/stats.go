package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored data.
type DataStats struct {
	TotalUsers     int64      `json:"total_users"`
	TotalWorkouts  int64      `json:"total_workouts"`
	TotalSets      int64      `json:"total_sets"`
	TotalExercises int64      `json:"total_exercises"`
	TotalRecords   int64      `json:"total_records"`
	EarliestData   *time.Time `json:"earliest_data"`
	LatestData     *time.Time `json:"latest_data"`
}

// GetDataStats returns aggregate statistics across all users.
func (db *DB) GetDataStats(ctx context.Context) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM users),
		        (SELECT COUNT(*) FROM workouts),
		        (SELECT COUNT(*) FROM sets),
		        (SELECT COUNT(*) FROM exercises),
		        (SELECT COUNT(*) FROM records)`,
	).Scan(&stats.TotalUsers, &stats.TotalWorkouts, &stats.TotalSets,
		&stats.TotalExercises, &stats.TotalRecords)
	if err != nil {
		return nil, fmt.Errorf("counting rows: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT MIN(workout_date), MAX(workout_date) FROM workouts`,
	).Scan(&stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	return stats, nil
}

// ExerciseTotal holds aggregated set data for one exercise within a period.
type ExerciseTotal struct {
	Name        string  `json:"name"`
	WorkingSets int     `json:"working_sets"`
	TotalReps   int     `json:"total_reps"`
	VolumeKg    float64 `json:"volume_kg"`
	MaxWeightKg float64 `json:"max_weight_kg"`
}

// RangeSummary holds a user's aggregated training data for a date range.
type RangeSummary struct {
	Start     time.Time       `json:"start"`
	End       time.Time       `json:"end"`
	Workouts  int             `json:"workouts"`
	Sets      int             `json:"sets"`
	VolumeKg  float64         `json:"volume_kg"`
	Exercises []ExerciseTotal `json:"exercises,omitempty"`
}

// GetRangeSummary aggregates a user's workouts, sets and volume over
// [start, end), with per-exercise totals sorted by volume.
func (db *DB) GetRangeSummary(ctx context.Context, userID int64, start, end time.Time) (*RangeSummary, error) {
	summary := &RangeSummary{Start: start, End: end}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT w.id)::int,
		        COUNT(s.id) FILTER (WHERE NOT s.is_warmup)::int,
		        COALESCE(SUM(s.reps * s.weight_kg) FILTER (WHERE NOT s.is_warmup), 0)
		 FROM workouts w
		 LEFT JOIN workout_exercises we ON we.workout_id = w.id
		 LEFT JOIN sets s ON s.workout_exercise_id = we.id
		 WHERE w.user_id = $1 AND w.workout_date >= $2 AND w.workout_date < $3`,
		userID, start, end,
	).Scan(&summary.Workouts, &summary.Sets, &summary.VolumeKg)
	if err != nil {
		return nil, fmt.Errorf("querying range totals: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT e.name,
		        COUNT(s.id) FILTER (WHERE NOT s.is_warmup)::int,
		        COALESCE(SUM(s.reps) FILTER (WHERE NOT s.is_warmup), 0)::int,
		        COALESCE(SUM(s.reps * s.weight_kg) FILTER (WHERE NOT s.is_warmup), 0),
		        COALESCE(MAX(s.weight_kg) FILTER (WHERE NOT s.is_warmup), 0)
		 FROM workouts w
		 JOIN workout_exercises we ON we.workout_id = w.id
		 JOIN exercises e ON e.id = we.exercise_id
		 JOIN sets s ON s.workout_exercise_id = we.id
		 WHERE w.user_id = $1 AND w.workout_date >= $2 AND w.workout_date < $3
		 GROUP BY e.name
		 ORDER BY 4 DESC, e.name`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying exercise totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t ExerciseTotal
		if err := rows.Scan(&t.Name, &t.WorkingSets, &t.TotalReps, &t.VolumeKg, &t.MaxWeightKg); err != nil {
			return nil, fmt.Errorf("scanning exercise total: %w", err)
		}
		summary.Exercises = append(summary.Exercises, t)
	}
	return summary, rows.Err()
}

// ExercisePoint is one workout's aggregate for an exercise, used to chart
// progress over time.
type ExercisePoint struct {
	Date        time.Time `json:"date"`
	WorkingSets int       `json:"working_sets"`
	MaxWeightKg float64   `json:"max_weight_kg"`
	VolumeKg    float64   `json:"volume_kg"`
	BestReps    int       `json:"best_reps"`
}

// GetExerciseHistory returns per-workout aggregates for one exercise,
// oldest first, limited to the most recent n workouts.
func (db *DB) GetExerciseHistory(ctx context.Context, userID int64, exerciseID, limit int) ([]ExercisePoint, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT workout_date, working_sets, max_weight, volume, best_reps FROM (
		    SELECT w.workout_date,
		           COUNT(s.id) FILTER (WHERE NOT s.is_warmup)::int AS working_sets,
		           COALESCE(MAX(s.weight_kg) FILTER (WHERE NOT s.is_warmup), 0) AS max_weight,
		           COALESCE(SUM(s.reps * s.weight_kg) FILTER (WHERE NOT s.is_warmup), 0) AS volume,
		           COALESCE(MAX(s.reps) FILTER (WHERE NOT s.is_warmup), 0)::int AS best_reps
		    FROM workouts w
		    JOIN workout_exercises we ON we.workout_id = w.id
		    JOIN sets s ON s.workout_exercise_id = we.id
		    WHERE w.user_id = $1 AND we.exercise_id = $2
		    GROUP BY w.id, w.workout_date
		    ORDER BY w.workout_date DESC
		    LIMIT $3
		 ) recent
		 ORDER BY workout_date ASC`,
		userID, exerciseID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	var result []ExercisePoint
	for rows.Next() {
		var p ExercisePoint
		if err := rows.Scan(&p.Date, &p.WorkingSets, &p.MaxWeightKg, &p.VolumeKg, &p.BestReps); err != nil {
			return nil, fmt.Errorf("scanning exercise point: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
