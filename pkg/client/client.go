// Package client is a typed HTTP client for the kambam API, for integrations
// and end-to-end tests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joelosiris11/kambam/pkg/kambam"
	"github.com/joelosiris11/kambam/pkg/models"
)

// Client talks to a running kambam server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base URL, e.g. "http://localhost:3001".
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
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

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil || errBody.Error == "" {
			errBody.Error = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Auth.

func (c *Client) Login(ctx context.Context, username, pin string) (*models.User, error) {
	var user models.User
	body := map[string]string{"username": username, "pin": pin}
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ConfirmRole(ctx context.Context, role models.RoleID) (*models.User, error) {
	var user models.User
	body := map[string]models.RoleID{"role": role}
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/role", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Tasks.

func (c *Client) ListTasks(ctx context.Context) ([]*models.Task, error) {
	var tasks []*models.Task
	if err := c.doRequest(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	var created models.Task
	if err := c.doRequest(ctx, http.MethodPost, "/api/tasks", task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetTask(ctx context.Context, id models.TaskID) (*models.Task, error) {
	var task models.Task
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/tasks/%d", int64(id)), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id models.TaskID, patch models.TaskPatch) (*models.Task, error) {
	var task models.Task
	if err := c.doRequest(ctx, http.MethodPatch, fmt.Sprintf("/api/tasks/%d", int64(id)), patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id models.TaskID) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", int64(id)), nil, nil)
}

func (c *Client) MoveTask(ctx context.Context, id models.TaskID, status models.ColumnID) (*models.Task, error) {
	var task models.Task
	body := map[string]models.ColumnID{"status": status}
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/move", int64(id)), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ValidateTask(ctx context.Context, id models.TaskID, validated bool) (*models.Task, error) {
	var task models.Task
	body := map[string]bool{"validated": validated}
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/validate", int64(id)), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) AddComment(ctx context.Context, id models.TaskID, text string) (*models.Task, error) {
	var task models.Task
	body := map[string]string{"text": text}
	if err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/comments", int64(id)), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteComment(ctx context.Context, taskID models.TaskID, commentID models.CommentID) (*models.Task, error) {
	var task models.Task
	path := fmt.Sprintf("/api/tasks/%d/comments/%d", int64(taskID), int64(commentID))
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Columns.

func (c *Client) ListColumns(ctx context.Context) ([]*models.Column, error) {
	var columns []*models.Column
	if err := c.doRequest(ctx, http.MethodGet, "/api/columns", nil, &columns); err != nil {
		return nil, err
	}
	return columns, nil
}

func (c *Client) CreateColumn(ctx context.Context, column *models.Column) (*models.Column, error) {
	var created models.Column
	if err := c.doRequest(ctx, http.MethodPost, "/api/columns", column, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateColumn(ctx context.Context, id models.ColumnID, patch models.ColumnPatch) (*models.Column, error) {
	var column models.Column
	if err := c.doRequest(ctx, http.MethodPatch, "/api/columns/"+id.String(), patch, &column); err != nil {
		return nil, err
	}
	return &column, nil
}

func (c *Client) DeleteColumn(ctx context.Context, id models.ColumnID) error {
	return c.doRequest(ctx, http.MethodDelete, "/api/columns/"+id.String(), nil, nil)
}

// Roles and settings.

func (c *Client) ListRoles(ctx context.Context) ([]*models.Role, error) {
	var roles []*models.Role
	if err := c.doRequest(ctx, http.MethodGet, "/api/roles", nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (c *Client) GetSettings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	if err := c.doRequest(ctx, http.MethodGet, "/api/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Derivations.

func (c *Client) Stats(ctx context.Context) (*kambam.Stats, error) {
	var stats kambam.Stats
	if err := c.doRequest(ctx, http.MethodGet, "/api/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) Leaderboard(ctx context.Context) ([]kambam.UserScore, error) {
	var scores []kambam.UserScore
	if err := c.doRequest(ctx, http.MethodGet, "/api/stats/leaderboard", nil, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

func (c *Client) Burndown(ctx context.Context) ([]kambam.BurndownPoint, error) {
	var points []kambam.BurndownPoint
	if err := c.doRequest(ctx, http.MethodGet, "/api/stats/burndown", nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) SprintRange(ctx context.Context) (*models.SprintRange, error) {
	var sprint models.SprintRange
	if err := c.doRequest(ctx, http.MethodGet, "/api/sprint", nil, &sprint); err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (c *Client) SetSprintRange(ctx context.Context, sprint models.SprintRange) error {
	return c.doRequest(ctx, http.MethodPut, "/api/sprint", sprint, nil)
}
