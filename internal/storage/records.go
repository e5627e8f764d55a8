package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repbot/internal/analytics"
	"github.com/claude/repbot/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RecordWithName is a personal record joined with its exercise name.
type RecordWithName struct {
	models.Record
	ExerciseName string `json:"exercise_name"`
}

// CheckAndSaveRecords compares a workout's working sets against the user's
// stored personal records and upserts any that were beaten. Warmup sets and
// sets without a weight are ignored. Returns the records that were newly
// set or improved.
func (db *DB) CheckAndSaveRecords(ctx context.Context, userID int64, workoutID uuid.UUID) ([]RecordWithName, error) {
	detail, err := db.GetWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	candidates := recordCandidates(detail)
	if len(candidates) == 0 {
		return nil, nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var beaten []RecordWithName
	for _, c := range candidates {
		var current float64
		err := tx.QueryRow(ctx,
			`SELECT value FROM records
			 WHERE user_id = $1 AND exercise_id = $2 AND record_type = $3`,
			userID, c.exerciseID, c.recordType).Scan(&current)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// first ever entry counts as a record
		case err != nil:
			return nil, fmt.Errorf("querying record: %w", err)
		case c.value <= current:
			continue
		}

		row := tx.QueryRow(ctx,
			`INSERT INTO records (user_id, exercise_id, record_type, value, workout_id)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (user_id, exercise_id, record_type) DO UPDATE
			 SET value = EXCLUDED.value, workout_id = EXCLUDED.workout_id, achieved_at = NOW()
			 RETURNING id, user_id, exercise_id, record_type, value, workout_id, achieved_at`,
			userID, c.exerciseID, c.recordType, c.value, workoutID)

		r := RecordWithName{ExerciseName: c.name}
		if err := row.Scan(&r.ID, &r.UserID, &r.ExerciseID, &r.RecordType,
			&r.Value, &r.WorkoutID, &r.AchievedAt); err != nil {
			return nil, fmt.Errorf("upserting record: %w", err)
		}
		beaten = append(beaten, r)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing records: %w", err)
	}
	return beaten, nil
}

type recordCandidate struct {
	exerciseID int
	name       string
	recordType string
	value      float64
}

// recordCandidates computes the three record values per exercise from a
// workout's working sets. Warmup sets and sets without weight or reps are
// ignored; exercises with no weighted working set produce no candidates.
func recordCandidates(detail *WorkoutDetail) []recordCandidate {
	var candidates []recordCandidate
	for _, we := range detail.Exercises {
		var maxWeight, maxOneRM, volume float64
		var weighted bool
		for _, s := range we.Sets {
			if s.IsWarmup || s.WeightKg == nil || s.Reps == nil {
				continue
			}
			weighted = true
			w, reps := *s.WeightKg, *s.Reps
			volume += float64(reps) * w
			if w > maxWeight {
				maxWeight = w
			}
			if est := analytics.EstimateOneRepMax(w, reps); est > maxOneRM {
				maxOneRM = est
			}
		}
		if !weighted {
			continue
		}
		candidates = append(candidates,
			recordCandidate{we.ExerciseID, we.Name, models.RecordMaxWeight, maxWeight},
			recordCandidate{we.ExerciseID, we.Name, models.RecordMaxVolume, volume},
			recordCandidate{we.ExerciseID, we.Name, models.RecordMax1RM, maxOneRM},
		)
	}
	return candidates
}

// ListRecords returns all of a user's personal records, grouped by exercise.
func (db *DB) ListRecords(ctx context.Context, userID int64) ([]RecordWithName, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT r.id, r.user_id, r.exercise_id, r.record_type, r.value, r.workout_id, r.achieved_at, e.name
		 FROM records r
		 JOIN exercises e ON e.id = r.exercise_id
		 WHERE r.user_id = $1
		 ORDER BY e.name, r.record_type`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var result []RecordWithName
	for rows.Next() {
		var r RecordWithName
		if err := rows.Scan(&r.ID, &r.UserID, &r.ExerciseID, &r.RecordType,
			&r.Value, &r.WorkoutID, &r.AchievedAt, &r.ExerciseName); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
