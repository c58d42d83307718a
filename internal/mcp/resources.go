package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/repcoach/internal/coach"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) activePlan(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	plan, err := h.ds.ActivePlan(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, plan)
}

func (h *handlers) profileAnalysis(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	analysis, err := h.ds.AnalyzeUser(ctx, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, analysis)
}

func (h *handlers) exerciseCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exs, err := h.ds.FindExercises(ctx, coach.ExerciseQuery{})
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, exs)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
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
