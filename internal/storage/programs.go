package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/repbot/internal/models"
	"github.com/jackc/pgx/v5"
)

// CreateProgram stores a named workout template for a user.
func (db *DB) CreateProgram(ctx context.Context, userID int64, name string, exercises []models.ProgramExercise) (*models.Program, error) {
	payload, err := json.Marshal(exercises)
	if err != nil {
		return nil, fmt.Errorf("marshaling program exercises: %w", err)
	}

	row := db.Pool.QueryRow(ctx,
		`INSERT INTO programs (user_id, name, exercises)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, name, created_at`,
		userID, name, payload)

	p := models.Program{Exercises: exercises}
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt); err != nil {
		return nil, fmt.Errorf("creating program: %w", err)
	}
	return &p, nil
}

// GetProgram retrieves a program by ID, scoped to its owner.
func (db *DB) GetProgram(ctx context.Context, userID int64, id int) (*models.Program, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, COALESCE(exercises, '[]'), created_at
		 FROM programs WHERE id = $1 AND user_id = $2`,
		id, userID)

	p, err := scanProgram(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying program: %w", err)
	}
	return p, nil
}

// ListPrograms returns all programs owned by a user, newest first.
func (db *DB) ListPrograms(ctx context.Context, userID int64) ([]models.Program, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, name, COALESCE(exercises, '[]'), created_at
		 FROM programs WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing programs: %w", err)
	}
	defer rows.Close()

	var result []models.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

// DeleteProgram removes a program. Workouts that referenced it keep their
// history; the foreign key nulls out on delete.
func (db *DB) DeleteProgram(ctx context.Context, userID int64, id int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM programs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProgram(row pgx.Row) (*models.Program, error) {
	var p models.Program
	var payload []byte
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &payload, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &p.Exercises); err != nil {
		return nil, fmt.Errorf("unmarshaling program exercises: %w", err)
	}
	return &p, nil
}
