package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sadopc/fleetwatch/internal/model"
)

// ErrTimeout marks requests that exceeded the client deadline, so callers
// can tell a slow backend from an unreachable one.
var ErrTimeout = errors.New("request timed out")

// ErrNotFound is returned for HTTP 404 responses.
var ErrNotFound = errors.New("not found")

// Client talks to the fleet backend. All methods take a context and are
// bounded by the configured timeout.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// ActionReply is the backend's answer to run/sync requests.
type ActionReply struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg"`
}

// FetchFleet retrieves the full account snapshot plus queue depth.
func (c *Client) FetchFleet(ctx context.Context) (*model.Fleet, error) {
	var fleet model.Fleet
	if err := c.getJSON(ctx, "/api/accounts", &fleet); err != nil {
		return nil, fmt.Errorf("fetch accounts: %w", err)
	}
	return &fleet, nil
}

// SyncSingle queues a balance sync job for one account.
func (c *Client) SyncSingle(ctx context.Context, phone string) (*ActionReply, error) {
	return c.postForm(ctx, "/sync_single", phone)
}

// RunSingle starts the automation for one account.
func (c *Client) RunSingle(ctx context.Context, phone string) (*ActionReply, error) {
	return c.postForm(ctx, "/run_single", phone)
}

// FetchPnlHistory retrieves the daily PnL series keyed by ISO date.
func (c *Client) FetchPnlHistory(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	if err := c.getJSON(ctx, "/api/pnl_history", &out); err != nil {
		return nil, fmt.Errorf("fetch pnl history: %w", err)
	}
	return out, nil
}

// FetchGlobalHistory retrieves the fleet-wide financial series keyed by ISO date.
func (c *Client) FetchGlobalHistory(ctx context.Context) (map[string]model.HistoryPoint, error) {
	out := map[string]model.HistoryPoint{}
	if err := c.getJSON(ctx, "/api/global_history", &out); err != nil {
		return nil, fmt.Errorf("fetch global history: %w", err)
	}
	return out, nil
}

// FetchLogs retrieves the newline-delimited log text for one account.
func (c *Client) FetchLogs(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/logs/"+url.PathEscape(id), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", wrapTransport("fetch logs", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("fetch logs %s: %w", id, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch logs: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read logs: %w", err)
	}
	return string(body), nil
}

// SaveSettings posts client settings to the backend.
func (c *Client) SaveSettings(ctx context.Context, settings map[string]any) error {
	body, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/settings/save", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return wrapTransport("save settings", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("save settings: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return wrapTransport("get "+path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, path, phone string) (*ActionReply, error) {
	form := url.Values{"phone": {phone}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, wrapTransport("post "+path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("post %s: status %d", path, resp.StatusCode)
	}
	var reply ActionReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode %s reply: %w", path, err)
	}
	return &reply, nil
}

func wrapTransport(op string, err error) error {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}
