package bot

import (
	"encoding/json"
	"testing"
)

// TestStateRoundTrip verifies set, get and clear against a fresh database.
func TestStateRoundTrip(t *testing.T) {
	db, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB() error = %v", err)
	}
	defer db.Close()

	state, err := db.Get(42)
	if err != nil {
		t.Fatalf("Get(unseen) error = %v", err)
	}
	if state.Step != StepIdle {
		t.Errorf("Get(unseen).Step = %q, want %q", state.Step, StepIdle)
	}

	want := &ChatState{
		Step:          StepAwaitingConfirm,
		WorkoutID:     "0b8a2f6e-0000-0000-0000-000000000000",
		PendingParse:  json.RawMessage(`{"exercises":[]}`),
		ParseAttempts: 1,
	}
	if err := db.Set(42, want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := db.Get(42)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Step != want.Step || got.WorkoutID != want.WorkoutID || got.ParseAttempts != want.ParseAttempts {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if string(got.PendingParse) != string(want.PendingParse) {
		t.Errorf("PendingParse = %s, want %s", got.PendingParse, want.PendingParse)
	}

	if err := db.Clear(42); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	state, err = db.Get(42)
	if err != nil {
		t.Fatalf("Get(after clear) error = %v", err)
	}
	if state.Step != StepIdle {
		t.Errorf("Get(after clear).Step = %q, want %q", state.Step, StepIdle)
	}
}

// TestStateOverwrite verifies Set replaces rather than duplicates.
func TestStateOverwrite(t *testing.T) {
	db, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB() error = %v", err)
	}
	defer db.Close()

	if err := db.Set(7, &ChatState{Step: StepWorkoutActive}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := db.Set(7, &ChatState{Step: StepAwaitingComment}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := db.Get(7)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Step != StepAwaitingComment {
		t.Errorf("Step = %q, want %q", got.Step, StepAwaitingComment)
	}
}

// TestStashedVoicePreservesWorkout verifies parking a voice note on a
// mid-prompt chat keeps the step and the active workout reference.
func TestStashedVoicePreservesWorkout(t *testing.T) {
	db, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB() error = %v", err)
	}
	defer db.Close()

	workoutID := "0b8a2f6e-0000-0000-0000-000000000000"
	if err := db.Set(9, &ChatState{Step: StepAwaitingComment, WorkoutID: workoutID}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	st, err := db.Get(9)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := db.Set(9, stashVoice(st, "voice-file-42")); err != nil {
		t.Fatalf("Set(stashed) error = %v", err)
	}

	got, err := db.Get(9)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Step != StepAwaitingComment {
		t.Errorf("Step = %q, want %q", got.Step, StepAwaitingComment)
	}
	if got.WorkoutID != workoutID {
		t.Errorf("WorkoutID = %q, want %q", got.WorkoutID, workoutID)
	}
	if got.PendingVoice != "voice-file-42" {
		t.Errorf("PendingVoice = %q, want %q", got.PendingVoice, "voice-file-42")
	}
}

// TestStateIsolatedPerChat verifies chats do not share state.
func TestStateIsolatedPerChat(t *testing.T) {
	db, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB() error = %v", err)
	}
	defer db.Close()

	if err := db.Set(1, &ChatState{Step: StepWorkoutActive}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	other, err := db.Get(2)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if other.Step != StepIdle {
		t.Errorf("Get(other chat).Step = %q, want %q", other.Step, StepIdle)
	}
}
