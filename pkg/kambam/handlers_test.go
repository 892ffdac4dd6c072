package kambam

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelosiris11/kambam/pkg/models"
)

func newTestApp(t *testing.T) (*App, *Board) {
	t.Helper()
	board, mem := newTestBoard(t)
	app := &App{
		store:  mem,
		board:  board,
		config: &Config{},
		log:    zerolog.Nop(),
	}
	app.sync = NewSyncCoordinator(mem, board.ReplaceTasks, board.ReplaceColumns, app.log)
	return app, board
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	rec := doJSON(t, app.Router(), http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "inactive", body["sync"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestLoginFlowOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)
	router := app.Router()

	rec := doJSON(t, router, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/login", map[string]string{"username": "ana", "pin": "1234"})
	require.Equal(t, http.StatusOK, rec.Code)
	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.True(t, user.IsTemporary)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/role", map[string]string{"role": "developer"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestTaskEndpoints(t *testing.T) {
	app, board := newTestApp(t)
	router := app.Router()
	signIn(t, board, "ana", "developer")

	rec := doJSON(t, router, http.MethodPost, "/api/tasks", map[string]any{"title": "over http", "hours": 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	var task models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, models.ColumnTodo, task.Status)

	rec = doJSON(t, router, http.MethodGet, "/api/tasks/"+task.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/tasks/"+task.ID.String()+"/move", map[string]string{"status": "in-progress"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/tasks/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/tasks", map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Task deletion is an admin operation.
	rec = doJSON(t, router, http.MethodDelete, "/api/tasks/"+task.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestColumnEndpoints(t *testing.T) {
	app, board := newTestApp(t)
	router := app.Router()
	signIn(t, board, "ana", "developer")

	rec := doJSON(t, router, http.MethodGet, "/api/columns", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var columns []*models.Column
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &columns))
	assert.Len(t, columns, 5)

	rec = doJSON(t, router, http.MethodPost, "/api/columns", map[string]any{"title": "Blocked"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/columns/blocked", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestStatsEndpoints(t *testing.T) {
	app, board := newTestApp(t)
	router := app.Router()
	signIn(t, board, "ana", "developer")

	_, err := board.CreateTask(context.Background(), &models.Task{Title: "counted", Hours: 5})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalTasks)

	rec = doJSON(t, router, http.MethodGet, "/api/stats/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/stats/burndown", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRoleManagementRequiresAdmin(t *testing.T) {
	app, board := newTestApp(t)
	router := app.Router()
	signIn(t, board, "ana", "developer")

	rec := doJSON(t, router, http.MethodPost, "/api/roles", map[string]any{"name": "Nueva Posición"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	signIn(t, board, "boss", models.RoleAdmin)
	rec = doJSON(t, router, http.MethodPost, "/api/roles", map[string]any{"name": "Nueva Posición"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var role models.Role
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &role))
	assert.Equal(t, models.RoleID("nueva-posici-n"), role.ID)

	rec = doJSON(t, router, http.MethodPost, "/api/roles/"+role.ID.String()+"/active", map[string]bool{"active": false})
	require.Equal(t, http.StatusOK, rec.Code)
}
