package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a row in the users table. The primary key is the Telegram ID.
type User struct {
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username,omitempty"`
	Units      string    `json:"units"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeen   time.Time `json:"last_seen"`
}

// Exercise is a row in the exercises table. Standard exercises come from
// the embedded catalog; custom ones are created per user on demand.
type Exercise struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Synonyms     []string  `json:"synonyms,omitempty"`
	MuscleGroups []string  `json:"muscle_groups,omitempty"`
	Equipment    string    `json:"equipment,omitempty"`
	IsCustom     bool      `json:"is_custom"`
	CreatedBy    *int64    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Program is a reusable workout template owned by a user. Exercises holds
// an ordered list of planned exercise references as JSON.
type Program struct {
	ID        int               `json:"id"`
	UserID    int64             `json:"user_id"`
	Name      string            `json:"name"`
	Exercises []ProgramExercise `json:"exercises,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// ProgramExercise is one planned exercise inside a program's JSON column.
type ProgramExercise struct {
	ExerciseID int `json:"exercise_id"`
	Order      int `json:"order"`
}

// Workout is a row in the workouts table: one logged training session.
type Workout struct {
	ID            uuid.UUID `json:"id"`
	UserID        int64     `json:"user_id"`
	Date          time.Time `json:"date"`
	ProgramID     *int      `json:"program_id,omitempty"`
	Comment       string    `json:"comment,omitempty"`
	TotalVolumeKg *float64  `json:"total_volume_kg,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WorkoutExercise is one exercise within a workout, ordered by OrderNum.
type WorkoutExercise struct {
	ID         int      `json:"id"`
	WorkoutID  uuid.UUID `json:"workout_id"`
	ExerciseID int      `json:"exercise_id"`
	Name       string   `json:"name"`
	OrderNum   int      `json:"order_num"`
	Comment    string   `json:"comment,omitempty"`
	VolumeKg   *float64 `json:"volume_kg,omitempty"`
	Sets       []Set    `json:"sets,omitempty"`
}

// Set is a single logged set. Cardio entries use Reps for minutes with a
// nil weight and a "minutes" comment.
type Set struct {
	ID                int      `json:"id"`
	WorkoutExerciseID int      `json:"workout_exercise_id"`
	SetNumber         int      `json:"set_number"`
	Reps              *int     `json:"reps,omitempty"`
	WeightKg          *float64 `json:"weight_kg,omitempty"`
	Comment           string   `json:"comment,omitempty"`
	IsWarmup          bool     `json:"is_warmup"`
}

// Record types tracked per exercise.
const (
	RecordMaxWeight = "max_weight"
	RecordMaxVolume = "max_volume"
	RecordMax1RM    = "max_1rm"
)

// Record is a personal record for one exercise and record type.
type Record struct {
	ID         int        `json:"id"`
	UserID     int64      `json:"user_id"`
	ExerciseID int        `json:"exercise_id"`
	RecordType string     `json:"record_type"`
	Value      float64    `json:"value"`
	WorkoutID  *uuid.UUID `json:"workout_id,omitempty"`
	AchievedAt time.Time  `json:"achieved_at"`
}

// NewSet is a set about to be logged, before it has a database identity.
// ExerciseName is the already-matched catalog name (or a brand new custom
// name the user confirmed).
type NewSet struct {
	ExerciseName string
	Reps         *int
	WeightKg     *float64
	Comment      string
	IsWarmup     bool
}
