package nlp

import (
	"math"
	"sort"
	"strings"

	"github.com/claude/repbot/internal/models"
)

// ExerciseMatch is the outcome of resolving a parsed name against the
// stored exercises. ExerciseID is nil when nothing matched.
type ExerciseMatch struct {
	ExerciseID   *int
	Name         string
	Confidence   float64
	Alternatives []Alternative
}

// MatchExercise resolves an exercise name against the database list using
// exact, substring and synonym comparison. The best candidate wins; runners
// up come back as alternatives for the confirmation keyboard.
func MatchExercise(name string, exercises []models.Exercise) ExerciseMatch {
	query := normalizeName(name)
	if query == "" || len(exercises) == 0 {
		return ExerciseMatch{Name: name}
	}

	type candidate struct {
		score float64
		id    int
		name  string
		conf  float64
	}
	var candidates []candidate

	for _, ex := range exercises {
		exName := normalizeName(ex.Name)
		switch {
		case query == exName:
			candidates = append(candidates, candidate{1.0, ex.ID, ex.Name, 1.0})
			continue
		case strings.Contains(exName, query) || strings.Contains(query, exName):
			candidates = append(candidates, candidate{0.95, ex.ID, ex.Name, 0.9})
			continue
		}
		for _, syn := range ex.Synonyms {
			s := normalizeName(syn)
			if s == "" {
				continue
			}
			if query == s || strings.Contains(s, query) || strings.Contains(query, s) {
				candidates = append(candidates, candidate{0.85, ex.ID, ex.Name, 0.8})
				break
			}
		}
	}

	if len(candidates) == 0 {
		return ExerciseMatch{Name: name}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	best := candidates[0]
	match := ExerciseMatch{
		ExerciseID: &best.id,
		Name:       best.name,
		Confidence: best.conf,
	}
	for _, c := range candidates[1:] {
		if len(match.Alternatives) == 5 {
			break
		}
		match.Alternatives = append(match.Alternatives, Alternative{Name: c.name, Confidence: c.conf})
	}
	return match
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CombineConfidence folds the model's self-reported confidence into the
// matcher's score. An exact local match stands on its own; otherwise the
// more pessimistic of the two wins. A zero model confidence means the model
// did not report one and is ignored.
func CombineConfidence(match, model float64) float64 {
	if match >= 1.0 || model == 0 {
		return match
	}
	return math.Min(match, model)
}
