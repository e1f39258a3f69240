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

	"github.com/google/uuid"

	"github.com/claude/trainday/internal/models"
	"github.com/claude/trainday/internal/training"
)

// HTTPClient implements Backend by calling the TrainDay REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// state lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies Backend.
var _ Backend = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// statusErrors maps API status codes back to the domain sentinels so
// callers can use errors.Is on remote results.
var statusErrors = map[int]error{
	http.StatusBadRequest:          models.ErrInvalidInput,
	http.StatusNotFound:            models.ErrNotFound,
	http.StatusConflict:            models.ErrAlreadyCompleted,
	http.StatusUnprocessableEntity: models.ErrNoCandidates,
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
	return c.do(req, path)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("httpclient: encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path)
}

func (c *HTTPClient) do(req *http.Request, path string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		if sentinel, ok := statusErrors[resp.StatusCode]; ok {
			return nil, fmt.Errorf("httpclient: %s: %w (%s)", path, sentinel, msg)
		}
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, msg)
	}

	return body, nil
}

func decode[T any](body []byte, what string) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("httpclient: decode %s: %w", what, err)
	}
	return v, nil
}

func (c *HTTPClient) Generate(ctx context.Context, q models.Questionnaire) (models.Session, error) {
	body, err := c.post(ctx, "/api/v1/generate", q)
	if err != nil {
		return models.Session{}, err
	}
	return decode[models.Session](body, "session")
}

func (c *HTTPClient) Reroll(ctx context.Context, req training.RerollRequest) (models.Session, error) {
	body, err := c.post(ctx, "/api/v1/reroll", req)
	if err != nil {
		return models.Session{}, err
	}
	return decode[models.Session](body, "session")
}

func (c *HTTPClient) Swap(ctx context.Context, req training.SwapRequest) (models.Session, error) {
	body, err := c.post(ctx, "/api/v1/swap", req)
	if err != nil {
		return models.Session{}, err
	}
	return decode[models.Session](body, "session")
}

func (c *HTTPClient) Complete(ctx context.Context, id uuid.UUID, feedback models.Feedback) (models.CompleteResult, error) {
	payload := struct {
		SessionID uuid.UUID       `json:"session_id"`
		Feedback  models.Feedback `json:"feedback"`
	}{id, feedback}

	body, err := c.post(ctx, "/api/v1/complete", payload)
	if err != nil {
		return models.CompleteResult{}, err
	}
	return decode[models.CompleteResult](body, "complete result")
}

func (c *HTTPClient) State(ctx context.Context) (models.UserState, error) {
	body, err := c.get(ctx, "/api/v1/state", nil)
	if err != nil {
		return models.UserState{}, err
	}
	return decode[models.UserState](body, "state")
}

func (c *HTTPClient) History(ctx context.Context, limit int) ([]models.Session, error) {
	var params url.Values
	if limit > 0 {
		params = url.Values{"limit": {strconv.Itoa(limit)}}
	}

	body, err := c.get(ctx, "/api/v1/history", params)
	if err != nil {
		return nil, err
	}
	return decode[[]models.Session](body, "history")
}

func (c *HTTPClient) Exercises(ctx context.Context, category models.Category) ([]models.Exercise, error) {
	path := "/api/v1/exercises"
	if category != "" {
		path += "/" + url.PathEscape(string(category))
	}

	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return decode[[]models.Exercise](body, "exercises")
}

func (c *HTTPClient) Protocols(ctx context.Context) ([]models.Protocol, error) {
	body, err := c.get(ctx, "/api/v1/protocols", nil)
	if err != nil {
		return nil, err
	}
	return decode[[]models.Protocol](body, "protocols")
}
