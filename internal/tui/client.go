package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fentz26/recur/internal/models"
)

// DefaultClientTimeout is the default timeout for API requests.
const DefaultClientTimeout = 10 * time.Second

// Client wraps HTTP calls to the recur daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client with timeout
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
}

// do sends a request and decodes a JSON response into out, when out is non-nil.
func (c *Client) do(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s", bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListTasks fetches the stored tasks. Derived fields in the response are
// ignored; the UI derives them itself at its own clock.
func (c *Client) ListTasks() ([]models.Task, error) {
	var list []models.Task
	if err := c.do(http.MethodGet, "/tasks", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateTask creates a task and returns it.
func (c *Client) CreateTask(fields models.TaskFields) (*models.Task, error) {
	var task models.Task
	if err := c.do(http.MethodPost, "/tasks", fields, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// EditTask applies a partial edit.
func (c *Client) EditTask(id string, fields models.TaskFields) (*models.Task, error) {
	var task models.Task
	if err := c.do(http.MethodPatch, "/tasks/"+id, fields, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// SetDone marks a task done or not done.
func (c *Client) SetDone(id string, done bool) (*models.Task, error) {
	action := "/done"
	if !done {
		action = "/undo"
	}
	var task models.Task
	if err := c.do(http.MethodPost, "/tasks/"+id+action, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(id string) error {
	return c.do(http.MethodDelete, "/tasks/"+id, nil, nil)
}

// Ping reports whether the daemon answers its health check.
func (c *Client) Ping() bool {
	return c.do(http.MethodGet, "/health", nil, nil) == nil
}
