package catalog

import "testing"

// TestLoad verifies the embedded catalog parses and is non-trivial.
func TestLoad(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.Entries()) < 20 {
		t.Errorf("Load() entries = %d, want at least 20", len(c.Entries()))
	}
	for _, e := range c.Entries() {
		if e.Name == "" {
			t.Error("catalog entry with empty name")
		}
	}
}

// TestSearchScoring verifies the relevance ordering: exact name beats exact
// synonym beats partial matches.
func TestSearchScoring(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		query     string
		wantFirst string
		wantScore int
	}{
		{"bench press", "Bench Press", 100},
		{"Bench Press", "Bench Press", 100},
		{"ohp", "Overhead Press", 90},
		{"rdl", "Romanian Deadlift", 90},
		{"running", "Treadmill", 90},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			matches := c.Search(tt.query, 5)
			if len(matches) == 0 {
				t.Fatalf("Search(%q) = no matches", tt.query)
			}
			if matches[0].Name != tt.wantFirst {
				t.Errorf("Search(%q)[0] = %q, want %q", tt.query, matches[0].Name, tt.wantFirst)
			}
			if matches[0].Score != tt.wantScore {
				t.Errorf("Search(%q)[0].Score = %d, want %d", tt.query, matches[0].Score, tt.wantScore)
			}
		})
	}
}

// TestSearchPartial verifies substring matches rank below exact ones.
func TestSearchPartial(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	matches := c.Search("curl", 10)
	if len(matches) < 3 {
		t.Fatalf("Search(%q) = %d matches, want at least 3", "curl", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("scores not sorted: %d before %d", matches[i-1].Score, matches[i].Score)
		}
	}
}

// TestSearchEmpty verifies blank queries match nothing.
func TestSearchEmpty(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Search("  ", 5); got != nil {
		t.Errorf("Search(blank) = %v, want nil", got)
	}
	if got := c.Search("xyzzy no such exercise", 5); got != nil {
		t.Errorf("Search(nonsense) = %v, want nil", got)
	}
}

// TestBest verifies the single-result helper.
func TestBest(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	m, ok := c.Best("squats")
	if !ok {
		t.Fatal("Best(squats) found nothing")
	}
	if m.Name != "Squat" {
		t.Errorf("Best(squats) = %q, want %q", m.Name, "Squat")
	}
	if _, ok := c.Best("qqqq"); ok {
		t.Error("Best(qqqq) = match, want none")
	}
}
