package mockdraft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/auctioneer/pkg/logger"
)

// ErrStatus is returned when the service answers with an unexpected status.
var ErrStatus = errors.New("unexpected status")

// apiError mirrors the service error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client talks to the valuation service over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient returns a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Health checks that the service answers /healthz.
func (c *Client) Health(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: health check returned %d", ErrStatus, status)
	}
	return nil
}

// Teams fetches the per-team budget summary.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	var teams []Team
	if err := c.getJSON(ctx, "/teams", &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Available fetches the top undrafted players by price.
func (c *Client) Available(ctx context.Context, limit int) (Board, error) {
	q := url.Values{}
	q.Set("available", "true")
	q.Set("limit", strconv.Itoa(limit))
	var b Board
	if err := c.getJSON(ctx, "/valuations?"+q.Encode(), &b); err != nil {
		return Board{}, err
	}
	return b, nil
}

// Player fetches one board entry.
func (c *Client) Player(ctx context.Context, id string) (Player, error) {
	var p Player
	if err := c.getJSON(ctx, "/valuations/"+url.PathEscape(id), &p); err != nil {
		return Player{}, err
	}
	return p, nil
}

// Submit posts a pick. A 202 yields an empty code; a 4xx rejection yields
// the service's error code and no error.
func (c *Client) Submit(ctx context.Context, p Pick) (int, string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal pick: %w", err)
	}
	status, data, err := c.do(ctx, http.MethodPost, "/picks", body)
	if err != nil {
		return 0, "", err
	}
	if status == http.StatusAccepted {
		return status, "", nil
	}
	var e apiError
	if err := json.Unmarshal(data, &e); err != nil {
		return status, "", fmt.Errorf("%w: %d", ErrStatus, status)
	}
	return status, e.Code, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	status, data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: GET %s returned %d", ErrStatus, path, status)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}
