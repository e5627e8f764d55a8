package bot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Conversation steps a chat can be in between messages.
const (
	StepIdle                 = "idle"
	StepWorkoutActive        = "workout_active"
	StepAwaitingConfirm      = "awaiting_confirm"
	StepAwaitingComment      = "awaiting_comment"
	StepAwaitingExerciseName = "awaiting_exercise_name"
	StepNamingProgram        = "naming_program"
)

// ChatState is the per-chat conversation state that survives restarts.
type ChatState struct {
	Step          string          `json:"step"`
	WorkoutID     string          `json:"workout_id,omitempty"`
	PendingParse  json.RawMessage `json:"pending_parse,omitempty"`
	PendingIdx    int             `json:"pending_idx,omitempty"`
	ParseAttempts int             `json:"parse_attempts,omitempty"`
	PendingVoice  string          `json:"pending_voice,omitempty"`
}

// StateDB keeps conversation state in a local SQLite file so an in-flight
// confirmation dialog is not lost when the process restarts.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS chat_states (
		chat_id    INTEGER PRIMARY KEY,
		state      TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Get loads the state for a chat. A chat never seen before is idle.
func (s *StateDB) Get(chatID int64) (*ChatState, error) {
	var raw string
	err := s.db.QueryRow(
		`SELECT state FROM chat_states WHERE chat_id = ?`, chatID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return &ChatState{Step: StepIdle}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading chat state: %w", err)
	}

	var state ChatState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decoding chat state: %w", err)
	}
	if state.Step == "" {
		state.Step = StepIdle
	}
	return &state, nil
}

// Set stores the state for a chat.
func (s *StateDB) Set(chatID int64, state *ChatState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding chat state: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO chat_states (chat_id, state, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		chatID, string(raw),
	)
	if err != nil {
		return fmt.Errorf("saving chat state: %w", err)
	}
	return nil
}

// Clear resets a chat back to idle.
func (s *StateDB) Clear(chatID int64) error {
	if _, err := s.db.Exec(`DELETE FROM chat_states WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("clearing chat state: %w", err)
	}
	return nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}
