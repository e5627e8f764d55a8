package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/repbot/internal/models"
	"github.com/claude/repbot/internal/storage"
)

// HTTPClient implements DataSource by calling the RepBot admin REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but data
// lives on the bot host (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: *HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// bucketToAgg maps MCP bucket values to REST API bucket parameter values.
func bucketToAgg(bucket string) string {
	switch bucket {
	case "1 day":
		return "daily"
	case "1 month":
		return "monthly"
	default:
		return "weekly"
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func userTimeParams(userID int64, start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("user_id", strconv.FormatInt(userID, 10))
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) QueryWorkouts(ctx context.Context, userID int64, start, end time.Time, limit int) ([]models.Workout, error) {
	params := userTimeParams(userID, start, end)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v1/workouts", params)
	if err != nil {
		return nil, err
	}

	var workouts []models.Workout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, userID int64, workoutID uuid.UUID) (*storage.WorkoutDetail, error) {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))

	body, err := c.get(ctx, "/api/v1/workouts/"+workoutID.String(), params)
	if err != nil {
		return nil, err
	}

	var detail storage.WorkoutDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("httpclient: decode workout detail: %w", err)
	}
	return &detail, nil
}

func (c *HTTPClient) GetTrainingSummary(ctx context.Context, userID int64, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error) {
	params := userTimeParams(userID, start, end)
	params.Set("bucket", bucketToAgg(bucket))

	body, err := c.get(ctx, "/api/v1/summary", params)
	if err != nil {
		return nil, err
	}

	var periods []storage.TrainingSummaryPeriod
	if err := json.Unmarshal(body, &periods); err != nil {
		return nil, fmt.Errorf("httpclient: decode training summary: %w", err)
	}
	return periods, nil
}

func (c *HTTPClient) ListRecords(ctx context.Context, userID int64) ([]storage.RecordWithName, error) {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))

	body, err := c.get(ctx, "/api/v1/records", params)
	if err != nil {
		return nil, err
	}

	var records []storage.RecordWithName
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("httpclient: decode records: %w", err)
	}
	return records, nil
}

func (c *HTTPClient) GetExerciseByName(ctx context.Context, name string) (*models.Exercise, error) {
	params := url.Values{}
	params.Set("name", name)

	body, err := c.get(ctx, "/api/v1/exercises", params)
	if err != nil {
		return nil, err
	}

	var exercise models.Exercise
	if err := json.Unmarshal(body, &exercise); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercise: %w", err)
	}
	return &exercise, nil
}

func (c *HTTPClient) SearchExercises(ctx context.Context, userID int64, query string, limit int) ([]models.Exercise, error) {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v1/exercises", params)
	if err != nil {
		return nil, err
	}

	var exercises []models.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) GetExerciseHistory(ctx context.Context, userID int64, exerciseID, limit int) ([]storage.ExercisePoint, error) {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v1/exercises/"+strconv.Itoa(exerciseID)+"/history", params)
	if err != nil {
		return nil, err
	}

	var points []storage.ExercisePoint
	if err := json.Unmarshal(body, &points); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercise history: %w", err)
	}
	return points, nil
}

func (c *HTTPClient) GetDataStats(ctx context.Context) (*storage.DataStats, error) {
	body, err := c.get(ctx, "/api/v1/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats storage.DataStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &stats, nil
}
