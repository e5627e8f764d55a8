package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/repbot/internal/storage"
)

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	workouts, err := h.ds.QueryWorkouts(ctx, uid, start, end, 50)
	if err != nil {
		return nil, err
	}

	details := make([]*storage.WorkoutDetail, 0, len(workouts))
	for _, w := range workouts {
		detail, err := h.ds.GetWorkout(ctx, uid, w.ID)
		if err != nil {
			h.log.Warn("recent_workouts: detail load failed", "workout_id", w.ID, "error", err)
			continue
		}
		details = append(details, detail)
	}

	return jsonContents(req.Params.URI, details)
}

func (h *handlers) records(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	records, err := h.ds.ListRecords(ctx, uid)
	if err != nil {
		return nil, err
	}

	return jsonContents(req.Params.URI, records)
}

func (h *handlers) dataStats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := h.ds.GetDataStats(ctx)
	if err != nil {
		return nil, err
	}

	return jsonContents(req.Params.URI, stats)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
