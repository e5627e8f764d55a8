package nlp

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/claude/repbot/internal/models"
)

// TestDecodeResponse verifies a well-formed model reply decodes fully,
// including pound-to-kilogram conversion.
func TestDecodeResponse(t *testing.T) {
	content := `{
		"exercises": [
			{"name": "Bench Press", "sets": [
				{"reps": 10, "weight": 80},
				{"reps": 8, "weight": 185, "weight_unit": "lb"}
			]}
		],
		"workout_comment": "felt strong",
		"confidence": 0.95,
		"clarification_needed": false,
		"action": "add_sets"
	}`

	result, err := decodeResponse(content)
	if err != nil {
		t.Fatalf("decodeResponse() error = %v", err)
	}
	if len(result.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(result.Exercises))
	}
	ex := result.Exercises[0]
	if ex.Name != "Bench Press" {
		t.Errorf("name = %q, want %q", ex.Name, "Bench Press")
	}
	if len(ex.Sets) != 2 {
		t.Fatalf("sets = %d, want 2", len(ex.Sets))
	}
	if *ex.Sets[0].WeightKg != 80 {
		t.Errorf("set 0 weight = %v, want 80", *ex.Sets[0].WeightKg)
	}
	if math.Abs(*ex.Sets[1].WeightKg-185*0.453592) > 1e-6 {
		t.Errorf("set 1 weight = %v, want %v", *ex.Sets[1].WeightKg, 185*0.453592)
	}
	if result.WorkoutComment != "felt strong" {
		t.Errorf("workout comment = %q, want %q", result.WorkoutComment, "felt strong")
	}
	if result.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", result.Confidence)
	}
}

// TestDecodeResponseFenced verifies markdown fences are stripped before
// decoding.
func TestDecodeResponseFenced(t *testing.T) {
	content := "```json\n{\"exercises\": [], \"confidence\": 0.4, \"clarification_needed\": true, \"clarification_question\": \"Which press?\"}\n```"

	result, err := decodeResponse(content)
	if err != nil {
		t.Fatalf("decodeResponse() error = %v", err)
	}
	if !result.ClarificationNeeded {
		t.Error("ClarificationNeeded = false, want true")
	}
	if result.ClarificationQuestion != "Which press?" {
		t.Errorf("question = %q, want %q", result.ClarificationQuestion, "Which press?")
	}
}

// TestDecodeResponseInvalid verifies garbage replies map to ErrParseFailure.
func TestDecodeResponseInvalid(t *testing.T) {
	for _, content := range []string{"", "not json at all", "```\nstill not json\n```"} {
		if _, err := decodeResponse(content); !errors.Is(err, ErrParseFailure) {
			t.Errorf("decodeResponse(%q) error = %v, want ErrParseFailure", content, err)
		}
	}
}

// TestDecodeResponseNormalization verifies out-of-range confidence is
// clamped and unknown actions fall back to add_sets.
func TestDecodeResponseNormalization(t *testing.T) {
	content := `{"exercises": [], "confidence": 1.7, "action": "explode"}`

	result, err := decodeResponse(content)
	if err != nil {
		t.Fatalf("decodeResponse() error = %v", err)
	}
	if result.Confidence != 1 {
		t.Errorf("confidence = %v, want 1", result.Confidence)
	}
	if result.Action != ActionAddSets {
		t.Errorf("action = %q, want %q", result.Action, ActionAddSets)
	}
}

// TestDecodeResponseActions verifies all known actions pass through.
func TestDecodeResponseActions(t *testing.T) {
	for _, action := range []string{ActionAddSets, ActionRemoveLast, ActionEditLast, ActionAddComment} {
		result, err := decodeResponse(`{"exercises": [], "action": "` + action + `"}`)
		if err != nil {
			t.Fatalf("decodeResponse() error = %v", err)
		}
		if result.Action != action {
			t.Errorf("action = %q, want %q", result.Action, action)
		}
	}
}

// TestConvertToKg verifies unit conversion.
func TestConvertToKg(t *testing.T) {
	tests := []struct {
		weight float64
		unit   string
		want   float64
	}{
		{100, "kg", 100},
		{100, "", 100},
		{100, "lb", 45.3592},
		{100, "LBS", 45.3592},
		{100, "furlongs", 100},
	}

	for _, tt := range tests {
		if got := ConvertToKg(tt.weight, tt.unit); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("ConvertToKg(%v, %q) = %v, want %v", tt.weight, tt.unit, got, tt.want)
		}
	}
}

// TestMatchExercise verifies name resolution against the stored list.
func TestMatchExercise(t *testing.T) {
	exercises := []models.Exercise{
		{ID: 1, Name: "Bench Press", Synonyms: []string{"flat bench", "bench"}},
		{ID: 2, Name: "Incline Bench Press", Synonyms: []string{"incline bench"}},
		{ID: 3, Name: "Squat", Synonyms: []string{"back squat"}},
	}

	t.Run("exact name", func(t *testing.T) {
		m := MatchExercise("bench press", exercises)
		if m.ExerciseID == nil || *m.ExerciseID != 1 {
			t.Fatalf("ExerciseID = %v, want 1", m.ExerciseID)
		}
		if m.Confidence != 1.0 {
			t.Errorf("Confidence = %v, want 1.0", m.Confidence)
		}
	})

	t.Run("synonym", func(t *testing.T) {
		m := MatchExercise("back squat", exercises)
		if m.ExerciseID == nil || *m.ExerciseID != 3 {
			t.Fatalf("ExerciseID = %v, want 3", m.ExerciseID)
		}
		if m.Confidence >= 1.0 {
			t.Errorf("Confidence = %v, want below 1.0 for synonym match", m.Confidence)
		}
	})

	t.Run("ambiguous has alternatives", func(t *testing.T) {
		m := MatchExercise("bench", exercises)
		if m.ExerciseID == nil {
			t.Fatal("ExerciseID = nil, want a match")
		}
		if len(m.Alternatives) == 0 {
			t.Error("Alternatives empty, want at least one for ambiguous query")
		}
	})

	t.Run("no match", func(t *testing.T) {
		m := MatchExercise("underwater basket weaving", exercises)
		if m.ExerciseID != nil {
			t.Errorf("ExerciseID = %v, want nil", m.ExerciseID)
		}
		if m.Confidence != 0 {
			t.Errorf("Confidence = %v, want 0", m.Confidence)
		}
	})
}

// TestBuildSystemPrompt verifies the vocabulary and context make it into
// the prompt and the list is capped at fifty names.
func TestBuildSystemPrompt(t *testing.T) {
	names := make([]string, 60)
	for i := range names {
		names[i] = "Exercise " + strings.Repeat("X", i+1)
	}

	prompt := buildSystemPrompt(names, PromptContext{CurrentExercises: []string{"Squat"}})
	if !strings.Contains(prompt, names[49]) {
		t.Error("prompt missing the fiftieth exercise name")
	}
	if strings.Contains(prompt, names[50]) {
		t.Error("prompt contains the fifty-first exercise name, want capped at 50")
	}
	if !strings.Contains(prompt, "already logged this session: Squat") {
		t.Error("prompt missing session context")
	}
}

// TestBuildSystemPromptUnits verifies the default-unit rule follows the
// user's preference.
func TestBuildSystemPromptUnits(t *testing.T) {
	kg := buildSystemPrompt([]string{"Squat"}, PromptContext{})
	if !strings.Contains(kg, "Weight defaults to kilograms") {
		t.Error("default prompt missing kilogram rule")
	}

	lb := buildSystemPrompt([]string{"Squat"}, PromptContext{Units: "lb"})
	if !strings.Contains(lb, "Weight defaults to pounds") {
		t.Error("pound prompt missing pound rule")
	}
}

// TestCombineConfidence verifies how the matcher score and the model's own
// confidence fold together: exact matches stand, an unreported model
// confidence is ignored, and otherwise the lower value wins.
func TestCombineConfidence(t *testing.T) {
	tests := []struct {
		name         string
		match, model float64
		want         float64
	}{
		{"exact match overrides model doubt", 1.0, 0.4, 1.0},
		{"model unreported", 0.9, 0, 0.9},
		{"model more doubtful", 0.9, 0.5, 0.5},
		{"matcher more doubtful", 0.7, 0.95, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CombineConfidence(tt.match, tt.model); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CombineConfidence(%v, %v) = %v, want %v", tt.match, tt.model, got, tt.want)
			}
		})
	}
}

// TestStripFences covers fenced, unfenced and partial-fence content.
func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}

	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
