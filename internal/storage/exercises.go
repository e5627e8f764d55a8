package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/repbot/internal/models"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

const exerciseColumns = `id, name, COALESCE(synonyms, '{}'), COALESCE(muscle_groups, '{}'),
	 COALESCE(equipment, ''), is_custom, created_by, created_at`

// SeedExercises inserts catalog exercises that are not already present.
// Existing rows are left untouched so user edits survive restarts.
func (db *DB) SeedExercises(ctx context.Context, exercises []models.Exercise) (int64, error) {
	var inserted int64
	for _, e := range exercises {
		tag, err := db.Pool.Exec(ctx,
			`INSERT INTO exercises (name, synonyms, muscle_groups, equipment, is_custom)
			 VALUES ($1, $2, $3, NULLIF($4, ''), FALSE)
			 ON CONFLICT (name) DO NOTHING`,
			e.Name, e.Synonyms, e.MuscleGroups, e.Equipment)
		if err != nil {
			return inserted, fmt.Errorf("seeding exercise %q: %w", e.Name, err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// GetExercise retrieves a single exercise by ID.
func (db *DB) GetExercise(ctx context.Context, id int) (*models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = $1`, id)
	e, err := scanExercise(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return e, nil
}

// GetExerciseByName retrieves an exercise by exact name (case-insensitive).
func (db *DB) GetExerciseByName(ctx context.Context, name string) (*models.Exercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+exerciseColumns+` FROM exercises WHERE LOWER(name) = LOWER($1)`, name)
	e, err := scanExercise(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise by name: %w", err)
	}
	return e, nil
}

// SearchExercises finds exercises whose name or synonyms contain the query,
// visible to the given user (standard plus their own custom ones).
func (db *DB) SearchExercises(ctx context.Context, userID int64, query string, limit int) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+`
		 FROM exercises
		 WHERE (NOT is_custom OR created_by = $1)
		   AND (name ILIKE '%' || $2 || '%'
		        OR array_to_string(COALESCE(synonyms, '{}'), ' ') ILIKE '%' || $2 || '%')
		 ORDER BY is_custom, name
		 LIMIT $3`,
		userID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

// ListExercises returns all exercises visible to the given user.
func (db *DB) ListExercises(ctx context.Context, userID int64) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+exerciseColumns+`
		 FROM exercises
		 WHERE NOT is_custom OR created_by = $1
		 ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, *e)
	}
	return result, rows.Err()
}

// CreateCustomExercise creates a user-owned exercise. If an exercise with
// that name already exists the existing row is returned instead.
func (db *DB) CreateCustomExercise(ctx context.Context, userID int64, name string) (*models.Exercise, error) {
	if existing, err := db.GetExerciseByName(ctx, name); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	row := db.Pool.QueryRow(ctx,
		`INSERT INTO exercises (name, is_custom, created_by)
		 VALUES ($1, TRUE, $2)
		 RETURNING `+exerciseColumns,
		name, userID)
	e, err := scanExercise(row)
	if err != nil {
		return nil, fmt.Errorf("creating custom exercise: %w", err)
	}
	return e, nil
}

func scanExercise(row pgx.Row) (*models.Exercise, error) {
	var e models.Exercise
	if err := row.Scan(&e.ID, &e.Name, &e.Synonyms, &e.MuscleGroups,
		&e.Equipment, &e.IsCustom, &e.CreatedBy, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}
