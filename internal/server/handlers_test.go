package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestParseTimeRangeDefaults verifies the 30-day default window.
func TestParseTimeRangeDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workouts", nil)

	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("parseTimeRange() error = %v", err)
	}
	if d := end.Sub(start); d < 29*24*time.Hour || d > 31*24*time.Hour {
		t.Errorf("default window = %v, want about 30 days", d)
	}
}

// TestParseTimeRangeDates verifies date-only values parse, with end pushed
// to the end of its day.
func TestParseTimeRangeDates(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workouts?start=2026-08-01&end=2026-08-15", nil)

	start, end, err := parseTimeRange(req)
	if err != nil {
		t.Fatalf("parseTimeRange() error = %v", err)
	}
	if got, want := start.Format("2006-01-02"), "2026-08-01"; got != want {
		t.Errorf("start = %s, want %s", got, want)
	}
	if got, want := end.Format("2006-01-02"), "2026-08-16"; got != want {
		t.Errorf("end = %s, want %s (end of the named day)", got, want)
	}
}

// TestParseTimeRangeInvalid verifies garbage values error out.
func TestParseTimeRangeInvalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/workouts?start=yesterday", nil)
	if _, _, err := parseTimeRange(req); err == nil {
		t.Error("parseTimeRange(start=yesterday) = nil error, want error")
	}
}

// TestParseUserID verifies the required user_id query parameter.
func TestParseUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/records?user_id=123456", nil)
	id, err := parseUserID(req)
	if err != nil {
		t.Fatalf("parseUserID() error = %v", err)
	}
	if id != 123456 {
		t.Errorf("parseUserID() = %d, want 123456", id)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
	if _, err := parseUserID(req); err == nil {
		t.Error("parseUserID(missing) = nil error, want error")
	}
}
