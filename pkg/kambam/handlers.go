package kambam

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/joelosiris11/kambam/pkg/models"
	"github.com/joelosiris11/kambam/pkg/store"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}

func statusForError(err error) int {
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, store.ErrReadOnly):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrLastColumn):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalidf("body", "invalid JSON: %v", err)
	}
	return nil
}

func taskIDVar(r *http.Request) (models.TaskID, error) {
	raw := mux.Vars(r)["id"]
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalidf("id", "invalid task id %q", raw)
	}
	return models.TaskID(n), nil
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"sync":      a.sync.State().String(),
		"read_only": a.IsReadOnly(),
	})
}

// Auth.

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Pin      string `json:"pin"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	user, err := a.board.Login(r.Context(), body.Username, body.Pin)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (a *App) handleConfirmRole(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role models.RoleID `json:"role"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	user, err := a.board.ConfirmRole(r.Context(), body.Role)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.board.Logout(r.Context())
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleMe(w http.ResponseWriter, r *http.Request) {
	user := a.board.Session()
	if user == nil {
		respondError(w, ErrNotSignedIn)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Tasks.

func (a *App) handleListTasks(w http.ResponseWriter, r *http.Request) {
	if column := r.URL.Query().Get("column"); column != "" {
		respondJSON(w, http.StatusOK, a.board.TasksByColumn(models.ColumnID(column)))
		return
	}
	respondJSON(w, http.StatusOK, a.board.Tasks())
}

func (a *App) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var input models.Task
	if err := decodeBody(r, &input); err != nil {
		respondError(w, err)
		return
	}
	task, err := a.board.CreateTask(r.Context(), &input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func (a *App) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDVar(r)
	if err != nil {
		respondError(w, err)
		return
	}
	task, err := a.board.Task(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (a *App) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDVar(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var patch models.TaskPatch
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, err)
		return
	}
	task, err := a.board.UpdateTask(r.Context(), id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (a *App) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDVar(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := a.board.DeleteTask(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDVar(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var body struct {
		Status models.ColumnID `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	task, err := a.board.MoveTask(r.Context(), id, body.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (a *App) handleValidateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDVar(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var body struct {
		Validated bool `json:"validated"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	task, err := a.board.SetTaskValidated(r.Context(), id, body.Validated)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (a *App) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDVar(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	task, err := a.board.AddComment(r.Context(), id, body.Text)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func (a *App) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := taskIDVar(r)
	if err != nil {
		respondError(w, err)
		return
	}
	raw := mux.Vars(r)["commentID"]
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondError(w, invalidf("commentID", "invalid comment id %q", raw))
		return
	}
	task, err := a.board.DeleteComment(r.Context(), id, models.CommentID(n))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// Columns.

func (a *App) handleListColumns(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.board.Columns())
}

func (a *App) handleCreateColumn(w http.ResponseWriter, r *http.Request) {
	var input models.Column
	if err := decodeBody(r, &input); err != nil {
		respondError(w, err)
		return
	}
	column, err := a.board.AddColumn(r.Context(), &input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, column)
}

func (a *App) handleUpdateColumn(w http.ResponseWriter, r *http.Request) {
	id := models.ColumnID(mux.Vars(r)["id"])
	var patch models.ColumnPatch
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, err)
		return
	}
	column, err := a.board.UpdateColumn(r.Context(), id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, column)
}

func (a *App) handleDeleteColumn(w http.ResponseWriter, r *http.Request) {
	id := models.ColumnID(mux.Vars(r)["id"])
	if err := a.board.DeleteColumn(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Roles.

func (a *App) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := a.board.Roles(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, roles)
}

func (a *App) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var input models.Role
	if err := decodeBody(r, &input); err != nil {
		respondError(w, err)
		return
	}
	role, err := a.board.CreateRole(r.Context(), &input)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, role)
}

func (a *App) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id := models.RoleID(mux.Vars(r)["id"])
	var patch models.RolePatch
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, err)
		return
	}
	role, err := a.board.UpdateRole(r.Context(), id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, role)
}

func (a *App) handleDeleteRole(w http.ResponseWriter, r *http.Request) {
	id := models.RoleID(mux.Vars(r)["id"])
	if err := a.board.DeleteRole(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (a *App) handleSetRoleActive(w http.ResponseWriter, r *http.Request) {
	id := models.RoleID(mux.Vars(r)["id"])
	var body struct {
		Active bool `json:"active"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}
	role, err := a.board.SetRoleActive(r.Context(), id, body.Active)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, role)
}

// Settings.

func (a *App) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.board.Settings(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

func (a *App) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := decodeBody(r, &patch); err != nil {
		respondError(w, err)
		return
	}
	settings, err := a.board.UpdateSettings(r.Context(), patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// Derivations.

func (a *App) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.board.Stats())
}

func (a *App) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.board.Leaderboard())
}

func (a *App) handleBurndown(w http.ResponseWriter, r *http.Request) {
	points, err := a.board.Burndown(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, points)
}

func (a *App) handleGetSprint(w http.ResponseWriter, r *http.Request) {
	sprint, err := a.board.SprintRange(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sprint)
}

func (a *App) handleSetSprint(w http.ResponseWriter, r *http.Request) {
	var sprint models.SprintRange
	if err := decodeBody(r, &sprint); err != nil {
		respondError(w, err)
		return
	}
	if err := a.board.SetSprintRange(r.Context(), sprint); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sprint)
}
