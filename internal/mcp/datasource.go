package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/claude/repbot/internal/models"
	"github.com/claude/repbot/internal/storage"
)

// DataSource abstracts the data layer for MCP tools so handlers can be
// exercised against a fake in tests.
type DataSource interface {
	QueryWorkouts(ctx context.Context, userID int64, start, end time.Time, limit int) ([]models.Workout, error)
	GetWorkout(ctx context.Context, userID int64, workoutID uuid.UUID) (*storage.WorkoutDetail, error)
	GetTrainingSummary(ctx context.Context, userID int64, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error)
	ListRecords(ctx context.Context, userID int64) ([]storage.RecordWithName, error)
	GetExerciseByName(ctx context.Context, name string) (*models.Exercise, error)
	SearchExercises(ctx context.Context, userID int64, query string, limit int) ([]models.Exercise, error)
	GetExerciseHistory(ctx context.Context, userID int64, exerciseID, limit int) ([]storage.ExercisePoint, error)
	GetDataStats(ctx context.Context) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
