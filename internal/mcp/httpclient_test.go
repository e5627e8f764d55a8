package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/claude/repbot/internal/models"
	"github.com/claude/repbot/internal/storage"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestQueryWorkouts verifies the HTTP client sends the API key, user scoping,
// and time range, and parses the JSON array response.
func TestQueryWorkouts(t *testing.T) {
	workoutID := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("X-API-Key"); got != "secret" {
				t.Errorf("X-API-Key=%q, want secret", got)
			}
			if got := r.URL.Query().Get("user_id"); got != "123456789" {
				t.Errorf("user_id=%q, want 123456789", got)
			}
			if got := r.URL.Query().Get("limit"); got != "50" {
				t.Errorf("limit=%q, want 50", got)
			}

			writeTestJSON(t, w, []models.Workout{
				{ID: workoutID, UserID: 123456789, Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "secret")
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	workouts, err := client.QueryWorkouts(context.Background(), 123456789, start, end, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(workouts) != 1 {
		t.Fatalf("got %d workouts, want 1", len(workouts))
	}
	if workouts[0].ID != workoutID {
		t.Errorf("id=%s, want %s", workouts[0].ID, workoutID)
	}
}

// TestGetWorkoutNotFound verifies a 404 maps to storage.ErrNotFound.
func TestGetWorkoutNotFound(t *testing.T) {
	workoutID := uuid.New()
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts/" + workoutID.String(): func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"workout not found"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "secret")
	_, err := client.GetWorkout(context.Background(), 1, workoutID)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want storage.ErrNotFound", err)
	}
}

// TestGetTrainingSummaryRemote verifies bucket mapping and response parsing
// for the summary endpoint.
func TestGetTrainingSummaryRemote(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/summary": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("bucket"); got != "monthly" {
				t.Errorf("bucket=%q, want monthly", got)
			}
			writeTestJSON(t, w, []storage.TrainingSummaryPeriod{
				{Period: "2026-08"},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "secret")
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	periods, err := client.GetTrainingSummary(context.Background(), 1, start, end, "1 month")
	if err != nil {
		t.Fatal(err)
	}
	if len(periods) != 1 {
		t.Fatalf("got %d periods, want 1", len(periods))
	}
	if periods[0].Period != "2026-08" {
		t.Errorf("period=%q, want 2026-08", periods[0].Period)
	}
}

// TestGetExerciseByNameRemote verifies the name lookup endpoint.
func TestGetExerciseByNameRemote(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("name"); got != "Bench Press" {
				t.Errorf("name=%q, want 'Bench Press'", got)
			}
			writeTestJSON(t, w, models.Exercise{ID: 7, Name: "Bench Press"})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "secret")
	exercise, err := client.GetExerciseByName(context.Background(), "Bench Press")
	if err != nil {
		t.Fatal(err)
	}
	if exercise.ID != 7 {
		t.Errorf("id=%d, want 7", exercise.ID)
	}
}

// TestBucketToAgg verifies the bucket mapping used for summary requests.
func TestBucketToAgg(t *testing.T) {
	cases := []struct {
		bucket string
		want   string
	}{
		{"1 day", "daily"},
		{"1 week", "weekly"},
		{"1 month", "monthly"},
		{"", "weekly"},
	}
	for _, tc := range cases {
		if got := bucketToAgg(tc.bucket); got != tc.want {
			t.Errorf("bucketToAgg(%q) = %q, want %q", tc.bucket, got, tc.want)
		}
	}
}

// TestHTTPClientServerError verifies the client returns an error on non-200 responses.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/stats": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"database down"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "secret")
	_, err := client.GetDataStats(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
