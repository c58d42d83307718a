package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/coach"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/service"
)

// HTTPClient implements DataSource by calling the RepCoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). User-scoped
// calls go to /users/me, so the server decides who the caller is.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The API
// key is sent on writes and may be empty for read-only use.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends a request and decodes a JSON response into out (if non-nil).
// 400 and 404 responses map to the coach and models sentinel errors.
func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("httpclient: encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", coach.ErrInvalidInput, errorMessage(data))
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, models.ErrNotFound)
	case resp.StatusCode >= 300:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

func (c *HTTPClient) GenerateRoutine(ctx context.Context, req coach.RoutineRequest) (*coach.GeneratedRoutine, error) {
	var r coach.GeneratedRoutine
	if err := c.do(ctx, http.MethodPost, "/api/v1/routines", nil, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) FindExercises(ctx context.Context, q coach.ExerciseQuery) ([]coach.Exercise, error) {
	params := url.Values{}
	if len(q.BodyParts) > 0 {
		params.Set("body_part", strings.Join(q.BodyParts, ","))
	}
	if len(q.Equipment) > 0 {
		params.Set("equipment", strings.Join(q.Equipment, ","))
	}
	if q.Pattern != "" {
		params.Set("pattern", q.Pattern)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	var exs []coach.Exercise
	if err := c.do(ctx, http.MethodGet, "/api/v1/exercises", params, nil, &exs); err != nil {
		return nil, err
	}
	return exs, nil
}

func (c *HTTPClient) AnalyzeUser(ctx context.Context, _ int) (*coach.ProfileAnalysis, error) {
	var a coach.ProfileAnalysis
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me/analysis", nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *HTTPClient) GenerateForUser(ctx context.Context, _ int, req service.PlanRequest) (*service.Plan, error) {
	var p service.Plan
	if err := c.do(ctx, http.MethodPost, "/api/v1/users/me/routines", nil, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ActivePlan(ctx context.Context, _ int) (*service.Plan, error) {
	var p service.Plan
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me/routines/active", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ReviewExercise(ctx context.Context, _ int, exercise string) (*service.ExerciseReview, error) {
	var r service.ExerciseReview
	params := url.Values{"exercise": {exercise}}
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me/progression", params, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) ReviewAdaptation(ctx context.Context, _ int, previousEquipment []string) (*coach.AdaptationPlan, error) {
	params := url.Values{}
	if previousEquipment != nil {
		params.Set("previous_equipment", strings.Join(previousEquipment, ","))
	}
	var p coach.AdaptationPlan
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me/adaptation", params, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) ExerciseHistory(ctx context.Context, _ int, exercise string, days int) (*models.ExerciseHistory, error) {
	params := url.Values{"exercise": {exercise}}
	if days > 0 {
		params.Set("days", strconv.Itoa(days))
	}
	var h models.ExerciseHistory
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/me/exercises/history", params, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *HTTPClient) LogWeight(ctx context.Context, _ int, date time.Time, weightKg float64, source string) error {
	body := map[string]any{"weight_kg": weightKg, "source": source}
	if !date.IsZero() {
		body["date"] = date.Format("2006-01-02")
	}
	return c.do(ctx, http.MethodPost, "/api/v1/users/me/weights", nil, body, nil)
}
