// Package catalog embeds the standard exercise list and provides name and
// synonym matching over it.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/claude/repbot/internal/models"
)

//go:embed exercises.json
var exercisesJSON []byte

// Entry is one exercise in the embedded catalog.
type Entry struct {
	Name         string   `json:"name"`
	Synonyms     []string `json:"synonyms,omitempty"`
	MuscleGroups []string `json:"muscle_groups,omitempty"`
	Equipment    string   `json:"equipment,omitempty"`
}

// Match is a catalog entry with its search relevance.
type Match struct {
	Entry
	Score int
}

// Catalog is the loaded exercise list.
type Catalog struct {
	entries []Entry
}

// Load parses the embedded exercise list.
func Load() (*Catalog, error) {
	var entries []Entry
	if err := json.Unmarshal(exercisesJSON, &entries); err != nil {
		return nil, fmt.Errorf("parsing embedded catalog: %w", err)
	}
	return &Catalog{entries: entries}, nil
}

// Entries returns all catalog entries.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Models converts the catalog to exercise rows ready for seeding.
func (c *Catalog) Models() []models.Exercise {
	result := make([]models.Exercise, len(c.entries))
	for i, e := range c.entries {
		result[i] = models.Exercise{
			Name:         e.Name,
			Synonyms:     e.Synonyms,
			MuscleGroups: e.MuscleGroups,
			Equipment:    e.Equipment,
		}
	}
	return result
}

// Search scores entries against the query. An exact name match scores 100,
// an exact synonym 90, a partial name 50, a partial synonym 40. Results are
// sorted by score, then name, and capped at limit.
func (c *Catalog) Search(query string, limit int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var matches []Match
	for _, e := range c.entries {
		score := scoreEntry(e, q)
		if score > 0 {
			matches = append(matches, Match{Entry: e, Score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Name < matches[j].Name
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Best returns the single best match for a query, or false when nothing
// in the catalog matches at all.
func (c *Catalog) Best(query string) (Match, bool) {
	matches := c.Search(query, 1)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

func scoreEntry(e Entry, q string) int {
	name := strings.ToLower(e.Name)
	if name == q {
		return 100
	}
	for _, s := range e.Synonyms {
		if strings.ToLower(s) == q {
			return 90
		}
	}
	if strings.Contains(name, q) {
		return 50
	}
	for _, s := range e.Synonyms {
		if strings.Contains(strings.ToLower(s), q) {
			return 40
		}
	}
	return 0
}
