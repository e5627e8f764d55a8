// Package nlp turns free-form workout messages into structured exercises,
// sets and actions using a chat completion model.
package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrParseFailure means the model reply could not be decoded into the
// expected structure. Callers ask the user to rephrase instead of retrying.
var ErrParseFailure = errors.New("unparseable model response")

// Actions a parsed message can request.
const (
	ActionAddSets    = "add_sets"
	ActionRemoveLast = "remove_last"
	ActionEditLast   = "edit_last"
	ActionAddComment = "add_comment"
)

// ParsedSet is one set extracted from the message, already in kilograms.
type ParsedSet struct {
	Reps     *int
	WeightKg *float64
	Comment  string
}

// ParsedExercise is one exercise with its sets.
type ParsedExercise struct {
	Name string
	Sets []ParsedSet
}

// Alternative is a lower-confidence exercise name candidate.
type Alternative struct {
	Name       string
	Confidence float64
}

// ParseResult is the structured reading of one user message.
type ParseResult struct {
	Exercises             []ParsedExercise
	WorkoutComment        string
	Confidence            float64
	ClarificationNeeded   bool
	ClarificationQuestion string
	Action                string
	Alternatives          []Alternative
}

// PromptContext is what the parser knows about the ongoing session. Units
// is the user's preferred unit ("kg" or "lb") for weights that arrive
// without one.
type PromptContext struct {
	CurrentExercises []string
	Units            string
}

// Parser wraps the chat completion client.
type Parser struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// NewParser creates a Parser using the given API key and chat model.
func NewParser(apiKey, model string, logger *slog.Logger) *Parser {
	return &Parser{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}
}

// Parse extracts workout structure from a message. availableNames bounds the
// exercise vocabulary the model may answer with.
func (p *Parser) Parse(ctx context.Context, text string, availableNames []string, pctx PromptContext) (*ParseResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &ParseResult{
			Confidence:            0,
			ClarificationNeeded:   true,
			ClarificationQuestion: "Tell me what you did, e.g. \"bench press 3 sets of 10 at 80 kg\".",
			Action:                ActionAddSets,
		}, nil
	}

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildSystemPrompt(availableNames, pctx)),
			openai.UserMessage(text),
		},
		Model:       p.model,
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", ErrParseFailure)
	}

	content := completion.Choices[0].Message.Content
	result, err := decodeResponse(content)
	if err != nil {
		p.logger.Warn("model reply did not decode", "snippet", snippet(content, 200))
		return nil, err
	}
	return result, nil
}

func buildSystemPrompt(availableNames []string, pctx PromptContext) string {
	names := availableNames
	if len(names) > 50 {
		names = names[:50]
	}
	exercisesBlock := "(empty list)"
	if len(names) > 0 {
		var b strings.Builder
		for _, n := range names {
			b.WriteString("- " + n + "\n")
		}
		exercisesBlock = strings.TrimRight(b.String(), "\n")
	}

	var b strings.Builder
	b.WriteString("You are an assistant for logging gym workouts. Parse the user's message and return exactly one valid JSON object, no markdown.\n\n")
	b.WriteString("AVAILABLE EXERCISES (use only these names or the closest one):\n")
	b.WriteString(exercisesBlock + "\n\n")
	if len(pctx.CurrentExercises) > 0 {
		b.WriteString("Context:\n- Exercises already logged this session: " + strings.Join(pctx.CurrentExercises, ", ") + "\n\n")
	}
	b.WriteString(`Input examples:
STRENGTH:
"Bench press 10 at 80, 8 at 85" -> exercises: [{"name": "Bench Press", "sets": [{"reps": 10, "weight": 80}, {"reps": 8, "weight": 85}]}]
"Squat 5x5 100" -> exercises: [{"name": "Squat", "sets": [{"reps": 5, "weight": 100}, {"reps": 5, "weight": 100}, {"reps": 5, "weight": 100}, {"reps": 5, "weight": 100}, {"reps": 5, "weight": 100}]}]

CARDIO (time instead of weight):
"Ran on the treadmill for 30 minutes" -> exercises: [{"name": "Treadmill", "sets": [{"reps": 30, "weight": null, "comment": "minutes"}]}]
"Bike 60 minutes" -> exercises: [{"name": "Cycling", "sets": [{"reps": 60, "weight": null, "comment": "minutes"}]}]

Response format, a single JSON object:
- "exercises": array. Element: {"name": "name FROM THE LIST ABOVE", "sets": [{"reps": N, "weight": N or null, "weight_unit": "kg"|"lb"|null, "comment": string or null}]}.
- For CARDIO (running, swimming, cycling and so on): when a duration is given, use reps=minutes, weight=null, comment="minutes".
- "workout_comment": string or null.
- "confidence": 0-1. When UNSURE which exercise is meant (different presses, squats and so on) set confidence < 0.8 and fill "alternatives".
- "clarification_needed": true when the message is unclear or empty.
- "clarification_question": question for the user when clarification_needed.
- "alternatives": array of 2-3 candidates when confidence < 0.8. Element: {"name": "name from the list", "confidence": number}.
- "action": "add_sets" | "remove_last" | "edit_last" | "add_comment".

Rules:
- Exercise names must come from the AVAILABLE EXERCISES list, or be the closest possible phrasing.
`)
	if pctx.Units == "lb" {
		b.WriteString(`- Weight defaults to pounds: when no unit is named, set weight_unit: "lb"; for kilograms set weight_unit: "kg".`)
	} else {
		b.WriteString(`- Weight defaults to kilograms; for pounds set weight_unit: "lb".`)
	}
	return b.String()
}

// rawResponse mirrors the JSON contract the model is asked to produce.
type rawResponse struct {
	Exercises []struct {
		Name string `json:"name"`
		Sets []struct {
			Reps       *int     `json:"reps"`
			Weight     *float64 `json:"weight"`
			WeightUnit string   `json:"weight_unit"`
			Comment    string   `json:"comment"`
		} `json:"sets"`
	} `json:"exercises"`
	WorkoutComment        string  `json:"workout_comment"`
	Confidence            float64 `json:"confidence"`
	ClarificationNeeded   bool    `json:"clarification_needed"`
	ClarificationQuestion string  `json:"clarification_question"`
	Alternatives          []struct {
		Name       string   `json:"name"`
		Confidence *float64 `json:"confidence"`
	} `json:"alternatives"`
	Action string `json:"action"`
}

func decodeResponse(content string) (*ParseResult, error) {
	content = stripFences(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrParseFailure)
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	result := &ParseResult{
		WorkoutComment:        strings.TrimSpace(raw.WorkoutComment),
		Confidence:            clamp01(raw.Confidence),
		ClarificationNeeded:   raw.ClarificationNeeded,
		ClarificationQuestion: strings.TrimSpace(raw.ClarificationQuestion),
		Action:                normalizeAction(raw.Action),
	}

	for _, e := range raw.Exercises {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		pe := ParsedExercise{Name: name}
		for _, s := range e.Sets {
			ps := ParsedSet{Reps: s.Reps, Comment: strings.TrimSpace(s.Comment)}
			if s.Weight != nil {
				kg := ConvertToKg(*s.Weight, s.WeightUnit)
				ps.WeightKg = &kg
			}
			pe.Sets = append(pe.Sets, ps)
		}
		result.Exercises = append(result.Exercises, pe)
	}

	for i, a := range raw.Alternatives {
		if i >= 5 || strings.TrimSpace(a.Name) == "" {
			continue
		}
		conf := 0.5
		if a.Confidence != nil {
			conf = clamp01(*a.Confidence)
		}
		result.Alternatives = append(result.Alternatives, Alternative{
			Name:       strings.TrimSpace(a.Name),
			Confidence: conf,
		})
	}

	return result, nil
}

var fenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// stripFences removes a markdown code fence wrapper if the model added one
// despite being told not to.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.Contains(content, "```") {
		if m := fenceRe.FindStringSubmatch(content); m != nil {
			content = strings.TrimSpace(m[1])
		}
	}
	return content
}

// kgPerLb converts pounds to kilograms.
const kgPerLb = 0.453592

// ConvertToKg converts a weight in the given unit to kilograms. Unknown or
// empty units are treated as kilograms already.
func ConvertToKg(weight float64, unit string) float64 {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "lb", "lbs", "pound", "pounds":
		return weight * kgPerLb
	default:
		return weight
	}
}

func normalizeAction(action string) string {
	switch strings.TrimSpace(action) {
	case ActionRemoveLast, ActionEditLast, ActionAddComment:
		return strings.TrimSpace(action)
	default:
		return ActionAddSets
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func snippet(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
