package gtasks

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

	"github.com/donaldgifford/grocery-autopilot/internal/metrics"
)

const (
	defaultBaseURL = "https://tasks.googleapis.com/tasks/v1"
	pageSize       = 100
)

// ErrListNotFound is returned when no task list carries the given name.
var ErrListNotFound = errors.New("task list not found")

// Client implements Source against the Google Tasks REST API.
type Client struct {
	tokens      TokenProvider
	baseURL     string
	client      *http.Client
	rateLimiter *RateLimiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL overrides the default API endpoint, for tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithRateLimiter injects a rate limiter; when set, every API call goes
// through Wait() first.
func WithRateLimiter(r *RateLimiter) ClientOption {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// NewClient creates a new Google Tasks API client.
func NewClient(tokens TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		tokens:  tokens,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type taskList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Notes  string `json:"notes,omitempty"`
	Status string `json:"status,omitempty"`
}

type taskListsResponse struct {
	Items []taskList `json:"items"`
}

type tasksResponse struct {
	Items         []task `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// FetchOpenTitles implements Source.
func (c *Client) FetchOpenTitles(ctx context.Context, listName string) ([]string, error) {
	listID, err := c.findListID(ctx, listName)
	if err != nil {
		return nil, err
	}

	tasks, err := c.openTasks(ctx, listID)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(tasks))
	for _, t := range tasks {
		title := strings.TrimSpace(t.Title)
		if title != "" {
			titles = append(titles, title)
		}
	}
	return titles, nil
}

// MarkComplete implements Source.
func (c *Client) MarkComplete(ctx context.Context, listName string, titles []string) (int, error) {
	listID, err := c.findListID(ctx, listName)
	if err != nil {
		return 0, err
	}

	wanted := titleSet(titles)
	if len(wanted) == 0 {
		return 0, nil
	}

	tasks, err := c.openTasks(ctx, listID)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, t := range tasks {
		if _, ok := wanted[normalizeTitle(t.Title)]; !ok {
			continue
		}
		body := map[string]string{"status": "completed"}
		path := fmt.Sprintf("/lists/%s/tasks/%s", url.PathEscape(listID), url.PathEscape(t.ID))
		if err := c.do(ctx, http.MethodPatch, path, nil, body, nil); err != nil {
			return completed, fmt.Errorf("completing task %q: %w", t.Title, err)
		}
		completed++
	}
	return completed, nil
}

// Move implements Source.
func (c *Client) Move(ctx context.Context, srcList, dstList string, titles []string) (int, error) {
	wanted := titleSet(titles)
	if len(wanted) == 0 {
		return 0, nil
	}

	srcID, err := c.findListID(ctx, srcList)
	if err != nil {
		return 0, fmt.Errorf("source list: %w", err)
	}
	dstID, err := c.findListID(ctx, dstList)
	if err != nil {
		return 0, fmt.Errorf("destination list: %w", err)
	}

	tasks, err := c.openTasks(ctx, srcID)
	if err != nil {
		return 0, err
	}

	moved := 0
	for _, t := range tasks {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			continue
		}
		if _, ok := wanted[normalizeTitle(title)]; !ok {
			continue
		}

		body := map[string]string{"title": title}
		if t.Notes != "" {
			body["notes"] = t.Notes
		}
		insertPath := fmt.Sprintf("/lists/%s/tasks", url.PathEscape(dstID))
		if err := c.do(ctx, http.MethodPost, insertPath, nil, body, nil); err != nil {
			return moved, fmt.Errorf("inserting task %q: %w", title, err)
		}

		deletePath := fmt.Sprintf("/lists/%s/tasks/%s", url.PathEscape(srcID), url.PathEscape(t.ID))
		if err := c.do(ctx, http.MethodDelete, deletePath, nil, nil, nil); err != nil {
			return moved, fmt.Errorf("deleting task %q from source: %w", title, err)
		}
		moved++
	}
	return moved, nil
}

// findListID resolves a list name to its ID, case-insensitively.
func (c *Client) findListID(ctx context.Context, listName string) (string, error) {
	var resp taskListsResponse
	if err := c.do(ctx, http.MethodGet, "/users/@me/lists", nil, nil, &resp); err != nil {
		return "", err
	}
	for _, l := range resp.Items {
		if strings.EqualFold(l.Title, listName) {
			return l.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrListNotFound, listName)
}

// openTasks pages through every open task in a list. The API caps pages
// at 100 items.
func (c *Client) openTasks(ctx context.Context, listID string) ([]task, error) {
	var all []task
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("showCompleted", "false")
		q.Set("showHidden", "false")
		q.Set("maxResults", fmt.Sprint(pageSize))
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var resp tasksResponse
		path := fmt.Sprintf("/lists/%s/tasks", url.PathEscape(listID))
		if err := c.do(ctx, http.MethodGet, path, q, nil, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Items...)

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return all, nil
		}
	}
}

// do performs one authenticated API call, decoding a JSON response into
// out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.TasksDailyLimitHits.Inc()
			}
			return fmt.Errorf("rate limit: %w", err)
		}
	}
	metrics.TasksAPICallsTotal.Inc()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("obtaining token: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling tasks API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("tasks API %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding tasks API response: %w", err)
	}
	return nil
}

func titleSet(titles []string) map[string]struct{} {
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		if n := normalizeTitle(t); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func normalizeTitle(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
