package clickup

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
)

const DefaultBaseURL = "https://api.clickup.com/api/v2"

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is returned when ClickUp answers with a non-200 status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

type ClickUpTask struct {
	ID          string        `json:"id"`
	CustomID    *string       `json:"custom_id"`
	Name        string        `json:"name"`
	Status      ClickUpStatus `json:"status"`
	URL         string        `json:"url"`
	DateCreated Timestamp     `json:"date_created"`
	Creator     *User         `json:"creator"`
	Assignees   []User        `json:"assignees"`
	List        ListRef       `json:"list"`
}

type ClickUpStatus struct {
	Status string `json:"status"`
}

type User struct {
	ID       int     `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
}

type ListRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TasksResponse struct {
	Tasks []ClickUpTask `json:"tasks"`
}

type listsResponse struct {
	Lists []ListRef `json:"lists"`
}

// Timestamp is an epoch-millisecond value. ClickUp sends it as a string,
// but plain numbers and null are accepted too. Values that are not a
// number decode as the zero time so one bad task does not spoil a list.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	raw := strings.Trim(string(data), `"`)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms == 0 {
		t.Time = time.Time{}
		return nil
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}

func (c *Client) newRequest(ctx context.Context, path, rawQuery string) (*http.Request, error) {
	u := c.baseURL + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// statusQuery renders statuses as repeated "statuses[]" parameters with
// literal brackets and %20 for spaces, the form ClickUp documents.
func statusQuery(statuses []string) string {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, "statuses[]="+strings.ReplaceAll(url.QueryEscape(s), "+", "%20"))
	}
	return strings.Join(parts, "&")
}

// FetchTasks fetches the tasks of a list whose status is one of statuses.
// Only the first page is read.
func (c *Client) FetchTasks(ctx context.Context, listID string, statuses []string) ([]ClickUpTask, error) {
	req, err := c.newRequest(ctx, "/list/"+url.PathEscape(listID)+"/task", statusQuery(statuses))
	if err != nil {
		return nil, err
	}

	var result TasksResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return result.Tasks, nil
}

// GetListsFromFolder returns the lists of a folder in the order ClickUp reports them.
func (c *Client) GetListsFromFolder(ctx context.Context, folderID string) ([]ListRef, error) {
	req, err := c.newRequest(ctx, "/folder/"+url.PathEscape(folderID)+"/list", "")
	if err != nil {
		return nil, err
	}

	var result listsResponse
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return result.Lists, nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := c.newRequest(ctx, "/user", "")
	if err != nil {
		return err
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("API health check failed: %w", err)
	}
	return nil
}
