package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/repbot/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WorkoutDetail is a workout with its exercises and sets, in logged order.
type WorkoutDetail struct {
	models.Workout
	Exercises []models.WorkoutExercise
}

// CreateWorkout starts a new workout session dated today.
func (db *DB) CreateWorkout(ctx context.Context, userID int64, programID *int) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO workouts (id, user_id, workout_date, program_id)
		 VALUES ($1, $2, CURRENT_DATE, $3)
		 RETURNING id, user_id, workout_date, program_id, COALESCE(comment, ''), total_volume_kg, created_at, updated_at`,
		uuid.New(), userID, programID)

	w, err := scanWorkout(row)
	if err != nil {
		return nil, fmt.Errorf("creating workout: %w", err)
	}
	return w, nil
}

// CreateWorkoutOn starts a workout dated on a specific day. Used by the
// history importer; interactive sessions go through CreateWorkout.
func (db *DB) CreateWorkoutOn(ctx context.Context, userID int64, date time.Time) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO workouts (id, user_id, workout_date)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, workout_date, program_id, COALESCE(comment, ''), total_volume_kg, created_at, updated_at`,
		uuid.New(), userID, date)

	w, err := scanWorkout(row)
	if err != nil {
		return nil, fmt.Errorf("creating workout: %w", err)
	}
	return w, nil
}

// GetActiveWorkout returns the user's most recent workout dated today,
// or ErrNotFound when none exists.
func (db *DB) GetActiveWorkout(ctx context.Context, userID int64) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, workout_date, program_id, COALESCE(comment, ''), total_volume_kg, created_at, updated_at
		 FROM workouts
		 WHERE user_id = $1 AND workout_date = CURRENT_DATE
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID)

	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying active workout: %w", err)
	}
	return w, nil
}

// QueryWorkouts retrieves a user's workouts in a date range, newest first.
func (db *DB) QueryWorkouts(ctx context.Context, userID int64, start, end time.Time, limit int) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, workout_date, program_id, COALESCE(comment, ''), total_volume_kg, created_at, updated_at
		 FROM workouts
		 WHERE user_id = $1 AND workout_date >= $2 AND workout_date < $3
		 ORDER BY workout_date DESC, created_at DESC
		 LIMIT $4`,
		userID, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, *w)
	}
	return result, rows.Err()
}

// GetWorkout retrieves a single workout with its exercises and sets.
func (db *DB) GetWorkout(ctx context.Context, userID int64, workoutID uuid.UUID) (*WorkoutDetail, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, workout_date, program_id, COALESCE(comment, ''), total_volume_kg, created_at, updated_at
		 FROM workouts
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID)

	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}

	detail := &WorkoutDetail{Workout: *w}

	exRows, err := db.Pool.Query(ctx,
		`SELECT we.id, we.workout_id, we.exercise_id, e.name, we.order_num, COALESCE(we.comment, ''), we.volume_kg
		 FROM workout_exercises we
		 JOIN exercises e ON e.id = we.exercise_id
		 WHERE we.workout_id = $1
		 ORDER BY we.order_num ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying workout exercises: %w", err)
	}
	defer exRows.Close()

	index := make(map[int]int)
	for exRows.Next() {
		var we models.WorkoutExercise
		if err := exRows.Scan(&we.ID, &we.WorkoutID, &we.ExerciseID, &we.Name,
			&we.OrderNum, &we.Comment, &we.VolumeKg); err != nil {
			return nil, fmt.Errorf("scanning workout exercise: %w", err)
		}
		index[we.ID] = len(detail.Exercises)
		detail.Exercises = append(detail.Exercises, we)
	}
	if err := exRows.Err(); err != nil {
		return nil, err
	}

	setRows, err := db.Pool.Query(ctx,
		`SELECT s.id, s.workout_exercise_id, s.set_number, s.reps, s.weight_kg, COALESCE(s.comment, ''), s.is_warmup
		 FROM sets s
		 JOIN workout_exercises we ON we.id = s.workout_exercise_id
		 WHERE we.workout_id = $1
		 ORDER BY we.order_num ASC, s.set_number ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var s models.Set
		if err := setRows.Scan(&s.ID, &s.WorkoutExerciseID, &s.SetNumber,
			&s.Reps, &s.WeightKg, &s.Comment, &s.IsWarmup); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		if i, ok := index[s.WorkoutExerciseID]; ok {
			detail.Exercises[i].Sets = append(detail.Exercises[i].Sets, s)
		}
	}

	return detail, setRows.Err()
}

// AddSets records parsed sets into a workout in a single transaction.
// Sets are grouped by exercise in order of appearance; an exercise already
// present in the workout gets its set numbering continued, a new one gets
// the next order slot. Unknown exercise names become custom exercises owned
// by the user. Either everything lands or nothing does.
func (db *DB) AddSets(ctx context.Context, userID int64, workoutID uuid.UUID, sets []models.NewSet) error {
	if len(sets) == 0 {
		return nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	touched := make(map[int]bool)
	for _, s := range sets {
		weID, err := getOrCreateWorkoutExercise(ctx, tx, userID, workoutID, s.ExerciseName)
		if err != nil {
			return err
		}
		touched[weID] = true

		if _, err := tx.Exec(ctx,
			`INSERT INTO sets (workout_exercise_id, set_number, reps, weight_kg, comment, is_warmup)
			 VALUES ($1,
			         (SELECT COALESCE(MAX(set_number), 0) + 1 FROM sets WHERE workout_exercise_id = $1),
			         $2, $3, NULLIF($4, ''), $5)`,
			weID, s.Reps, s.WeightKg, s.Comment, s.IsWarmup); err != nil {
			return fmt.Errorf("inserting set: %w", err)
		}
	}

	for weID := range touched {
		if err := recomputeExerciseVolume(ctx, tx, weID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE workouts SET updated_at = NOW() WHERE id = $1`, workoutID); err != nil {
		return fmt.Errorf("touching workout: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing sets: %w", err)
	}
	return nil
}

func getOrCreateWorkoutExercise(ctx context.Context, tx pgx.Tx, userID int64, workoutID uuid.UUID, exerciseName string) (int, error) {
	var exerciseID int
	err := tx.QueryRow(ctx,
		`SELECT id FROM exercises WHERE LOWER(name) = LOWER($1)`, exerciseName).Scan(&exerciseID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx,
			`INSERT INTO exercises (name, is_custom, created_by)
			 VALUES ($1, TRUE, $2)
			 RETURNING id`,
			exerciseName, userID).Scan(&exerciseID)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving exercise %q: %w", exerciseName, err)
	}

	var weID int
	err = tx.QueryRow(ctx,
		`SELECT id FROM workout_exercises WHERE workout_id = $1 AND exercise_id = $2`,
		workoutID, exerciseID).Scan(&weID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx,
			`INSERT INTO workout_exercises (workout_id, exercise_id, order_num)
			 VALUES ($1, $2,
			         (SELECT COALESCE(MAX(order_num), 0) + 1 FROM workout_exercises WHERE workout_id = $1))
			 RETURNING id`,
			workoutID, exerciseID).Scan(&weID)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving workout exercise: %w", err)
	}
	return weID, nil
}

func recomputeExerciseVolume(ctx context.Context, tx pgx.Tx, workoutExerciseID int) error {
	if _, err := tx.Exec(ctx,
		`UPDATE workout_exercises
		 SET volume_kg = (SELECT SUM(reps * weight_kg) FROM sets
		                  WHERE workout_exercise_id = $1 AND NOT is_warmup)
		 WHERE id = $1`,
		workoutExerciseID); err != nil {
		return fmt.Errorf("recomputing exercise volume: %w", err)
	}
	return nil
}

// FinishWorkout recomputes the workout's total volume and stamps updated_at.
// Returns the finished total in kilograms (zero when no weighted sets).
func (db *DB) FinishWorkout(ctx context.Context, userID int64, workoutID uuid.UUID) (float64, error) {
	row := db.Pool.QueryRow(ctx,
		`UPDATE workouts
		 SET total_volume_kg = COALESCE((SELECT SUM(volume_kg) FROM workout_exercises WHERE workout_id = $1), 0),
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING COALESCE(total_volume_kg, 0)`,
		workoutID, userID)

	var total float64
	if err := row.Scan(&total); errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	} else if err != nil {
		return 0, fmt.Errorf("finishing workout: %w", err)
	}
	return total, nil
}

// DeleteWorkout removes a workout and, via cascade, its exercises and sets.
func (db *DB) DeleteWorkout(ctx context.Context, userID int64, workoutID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workouts WHERE id = $1 AND user_id = $2`, workoutID, userID)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LastExercise returns the most recently logged exercise of a workout with
// its sets, or ErrNotFound when the workout is still empty.
func (db *DB) LastExercise(ctx context.Context, workoutID uuid.UUID) (*models.WorkoutExercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT we.id, we.workout_id, we.exercise_id, e.name, we.order_num, COALESCE(we.comment, ''), we.volume_kg
		 FROM workout_exercises we
		 JOIN exercises e ON e.id = we.exercise_id
		 WHERE we.workout_id = $1
		 ORDER BY we.order_num DESC
		 LIMIT 1`,
		workoutID)

	var we models.WorkoutExercise
	err := row.Scan(&we.ID, &we.WorkoutID, &we.ExerciseID, &we.Name,
		&we.OrderNum, &we.Comment, &we.VolumeKg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying last exercise: %w", err)
	}

	setRows, err := db.Pool.Query(ctx,
		`SELECT id, workout_exercise_id, set_number, reps, weight_kg, COALESCE(comment, ''), is_warmup
		 FROM sets WHERE workout_exercise_id = $1
		 ORDER BY set_number ASC`,
		we.ID)
	if err != nil {
		return nil, fmt.Errorf("querying last exercise sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var s models.Set
		if err := setRows.Scan(&s.ID, &s.WorkoutExerciseID, &s.SetNumber,
			&s.Reps, &s.WeightKg, &s.Comment, &s.IsWarmup); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		we.Sets = append(we.Sets, s)
	}
	return &we, setRows.Err()
}

// DeleteLastExercise removes the most recently logged exercise and its sets.
func (db *DB) DeleteLastExercise(ctx context.Context, workoutID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_exercises
		 WHERE id = (SELECT id FROM workout_exercises
		             WHERE workout_id = $1
		             ORDER BY order_num DESC LIMIT 1)`,
		workoutID)
	if err != nil {
		return fmt.Errorf("deleting last exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveLastSet removes the highest-numbered set of the last exercise. The
// exercise row itself stays, even if left empty, so numbering restarts
// cleanly if the user logs more sets.
func (db *DB) RemoveLastSet(ctx context.Context, workoutID uuid.UUID) error {
	we, err := db.LastExercise(ctx, workoutID)
	if err != nil {
		return err
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM sets
		 WHERE id = (SELECT id FROM sets
		             WHERE workout_exercise_id = $1
		             ORDER BY set_number DESC LIMIT 1)`,
		we.ID)
	if err != nil {
		return fmt.Errorf("removing last set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := recomputeExerciseVolume(ctx, tx, we.ID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing set removal: %w", err)
	}
	return nil
}

// ReassignLastExercise points the last logged exercise at a different
// exercise row. Used when the user corrects a misrecognized name.
func (db *DB) ReassignLastExercise(ctx context.Context, workoutID uuid.UUID, exerciseID int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_exercises SET exercise_id = $2
		 WHERE id = (SELECT id FROM workout_exercises
		             WHERE workout_id = $1
		             ORDER BY order_num DESC LIMIT 1)`,
		workoutID, exerciseID)
	if err != nil {
		return fmt.Errorf("reassigning last exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetExerciseComment attaches a comment to the last logged exercise.
func (db *DB) SetExerciseComment(ctx context.Context, workoutID uuid.UUID, comment string) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_exercises SET comment = NULLIF($2, '')
		 WHERE id = (SELECT id FROM workout_exercises
		             WHERE workout_id = $1
		             ORDER BY order_num DESC LIMIT 1)`,
		workoutID, comment)
	if err != nil {
		return fmt.Errorf("setting exercise comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetWorkoutComment attaches a comment to the workout itself.
func (db *DB) SetWorkoutComment(ctx context.Context, userID int64, workoutID uuid.UUID, comment string) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workouts SET comment = NULLIF($2, ''), updated_at = NOW()
		 WHERE id = $1 AND user_id = $3`,
		workoutID, comment, userID)
	if err != nil {
		return fmt.Errorf("setting workout comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWorkout(row pgx.Row) (*models.Workout, error) {
	var w models.Workout
	if err := row.Scan(&w.ID, &w.UserID, &w.Date, &w.ProgramID,
		&w.Comment, &w.TotalVolumeKg, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
