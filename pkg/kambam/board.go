package kambam

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/joelosiris11/kambam/pkg/models"
	"github.com/joelosiris11/kambam/pkg/store"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// Board is the in-memory view of the Kanban board plus the active session.
//
// Every mutation is confirm-then-reflect: the write goes through the store,
// the stored state is re-read, and only then does the snapshot change. The
// snapshot therefore never shows a state the backend has not acknowledged.
// The sync coordinator replaces the snapshot wholesale when the remote
// backend pushes a change made elsewhere.
type Board struct {
	store store.Store
	prefs store.Preferences
	log   zerolog.Logger

	mu      sync.RWMutex
	tasks   []*models.Task
	columns []*models.Column
	session *models.User
}

func NewBoard(st store.Store, prefs store.Preferences, logger zerolog.Logger) *Board {
	return &Board{
		store: st,
		prefs: prefs,
		log:   logger.With().Str("component", "board").Logger(),
	}
}

// Load primes the snapshot and restores a persisted session, if any.
func (b *Board) Load(ctx context.Context) error {
	tasks, err := b.store.ListTasks(ctx)
	if err != nil {
		return err
	}
	columns, err := b.store.ListColumns(ctx)
	if err != nil {
		return err
	}

	session, err := b.prefs.ActiveSession(ctx)
	if err != nil {
		// A broken preference row should not keep the board from starting.
		b.log.Warn().Err(err).Msg("could not restore persisted session")
		session = nil
	}

	b.mu.Lock()
	b.tasks = tasks
	b.columns = columns
	b.session = session
	b.mu.Unlock()

	if session != nil {
		b.log.Info().Str("username", session.Username).Msg("restored session")
	}
	return nil
}

// Snapshot accessors. Returned slices are copies; entities are shared and
// must be treated as read-only.

func (b *Board) Tasks() []*models.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*models.Task(nil), b.tasks...)
}

func (b *Board) Columns() []*models.Column {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*models.Column(nil), b.columns...)
}

// Task fetches a single task from the store, bypassing the snapshot so the
// caller always sees the confirmed document.
func (b *Board) Task(ctx context.Context, id models.TaskID) (*models.Task, error) {
	task, err := b.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, store.ErrNotFound
	}
	return task, nil
}

func (b *Board) TasksByColumn(id models.ColumnID) []*models.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var tasks []*models.Task
	for _, t := range b.tasks {
		if t.Status == id {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// ReplaceTasks installs a collection pushed by the realtime backend.
func (b *Board) ReplaceTasks(tasks []*models.Task) {
	b.mu.Lock()
	b.tasks = tasks
	b.mu.Unlock()
}

// ReplaceColumns installs a collection pushed by the realtime backend.
func (b *Board) ReplaceColumns(columns []*models.Column) {
	b.mu.Lock()
	b.columns = columns
	b.mu.Unlock()
}

func (b *Board) refreshTasks(ctx context.Context) error {
	tasks, err := b.store.ListTasks(ctx)
	if err != nil {
		return err
	}
	b.ReplaceTasks(tasks)
	return nil
}

func (b *Board) refreshColumns(ctx context.Context) error {
	columns, err := b.store.ListColumns(ctx)
	if err != nil {
		return err
	}
	b.ReplaceColumns(columns)
	return nil
}

// Task operations

func (b *Board) CreateTask(ctx context.Context, input *models.Task) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, invalidf("title", "must not be empty")
	}
	if input.Hours < 0 {
		return nil, invalidf("hours", "must not be negative")
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, invalidf("priority", "unknown value %q", input.Priority)
	}
	if input.Type == "" {
		input.Type = models.TypeGeneral
	}
	if !input.Type.Valid() {
		return nil, invalidf("type", "unknown value %q", input.Type)
	}
	if input.Status.IsZero() {
		input.Status = b.defaultStatus()
	} else if !b.columnExists(input.Status) {
		return nil, invalidf("status", "unknown column %q", input.Status)
	}
	if input.ID.IsZero() {
		input.ID = b.nextTaskID(time.Now())
	}
	if user := b.Session(); user != nil {
		input.CreatedBy = user.Username
	}

	if err := b.store.CreateTask(ctx, input); err != nil {
		return nil, err
	}
	created, err := b.store.GetTask(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := b.refreshTasks(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (b *Board) UpdateTask(ctx context.Context, id models.TaskID, patch models.TaskPatch) (*models.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, invalidf("title", "must not be empty")
	}
	if patch.Hours != nil && *patch.Hours < 0 {
		return nil, invalidf("hours", "must not be negative")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, invalidf("priority", "unknown value %q", *patch.Priority)
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return nil, invalidf("type", "unknown value %q", *patch.Type)
	}
	if patch.Status != nil && !b.columnExists(*patch.Status) {
		return nil, invalidf("status", "unknown column %q", *patch.Status)
	}

	task, err := b.store.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if err := b.refreshTasks(ctx); err != nil {
		return nil, err
	}
	return task, nil
}

// MoveTask relocates a task to another column.
func (b *Board) MoveTask(ctx context.Context, id models.TaskID, status models.ColumnID) (*models.Task, error) {
	return b.UpdateTask(ctx, id, models.TaskPatch{Status: &status})
}

// SetTaskValidated toggles the validation mark, recording who flipped it.
func (b *Board) SetTaskValidated(ctx context.Context, id models.TaskID, validated bool) (*models.Task, error) {
	user := b.Session()
	if user == nil {
		return nil, ErrNotSignedIn
	}
	validatedBy := ""
	if validated {
		validatedBy = user.Username
	}
	return b.UpdateTask(ctx, id, models.TaskPatch{
		Validated:   &validated,
		ValidatedBy: &validatedBy,
	})
}

// DeleteTask removes a task. Only administrators may delete tasks.
func (b *Board) DeleteTask(ctx context.Context, id models.TaskID) error {
	if err := b.requireAdmin(); err != nil {
		return err
	}
	if err := b.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	return b.refreshTasks(ctx)
}

// Comment operations. Comments live inside their task, so both operations
// rewrite the comments array through a task update.

func (b *Board) AddComment(ctx context.Context, taskID models.TaskID, text string) (*models.Task, error) {
	user := b.Session()
	if user == nil {
		return nil, ErrNotSignedIn
	}
	if strings.TrimSpace(text) == "" {
		return nil, invalidf("text", "must not be empty")
	}

	task, err := b.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, store.ErrNotFound
	}

	now := time.Now()
	id := models.NewCommentID(now)
	for containsComment(task.Comments, id) {
		id++
	}
	comments := append(append(models.CommentList(nil), task.Comments...), models.Comment{
		ID:        id,
		Text:      text,
		Author:    user.Username,
		CreatedAt: now,
	})

	updated, err := b.store.UpdateTask(ctx, taskID, models.TaskPatch{Comments: &comments})
	if err != nil {
		return nil, err
	}
	if err := b.refreshTasks(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteComment removes a comment. Only its author may delete it.
func (b *Board) DeleteComment(ctx context.Context, taskID models.TaskID, commentID models.CommentID) (*models.Task, error) {
	user := b.Session()
	if user == nil {
		return nil, ErrNotSignedIn
	}

	task, err := b.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, store.ErrNotFound
	}

	var comments models.CommentList
	found := false
	for _, c := range task.Comments {
		if c.ID == commentID {
			found = true
			if c.Author != user.Username {
				return nil, ErrForbidden
			}
			continue
		}
		comments = append(comments, c)
	}
	if !found {
		return nil, store.ErrNotFound
	}
	if comments == nil {
		comments = models.CommentList{}
	}

	updated, err := b.store.UpdateTask(ctx, taskID, models.TaskPatch{Comments: &comments})
	if err != nil {
		return nil, err
	}
	if err := b.refreshTasks(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// Column operations

func (b *Board) AddColumn(ctx context.Context, input *models.Column) (*models.Column, error) {
	if b.Session() == nil {
		return nil, ErrNotSignedIn
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, invalidf("title", "must not be empty")
	}
	if input.ID.IsZero() {
		input.ID = models.ColumnID(slugify(input.Title))
	}
	if input.ID.IsZero() {
		return nil, invalidf("id", "could not derive a slug from the title")
	}
	if input.Order == 0 {
		// New columns append to the right edge.
		input.Order = len(b.Columns())
	}

	if err := b.store.CreateColumn(ctx, input); err != nil {
		return nil, err
	}
	created, err := b.store.GetColumn(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if err := b.refreshColumns(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (b *Board) UpdateColumn(ctx context.Context, id models.ColumnID, patch models.ColumnPatch) (*models.Column, error) {
	if b.Session() == nil {
		return nil, ErrNotSignedIn
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, invalidf("title", "must not be empty")
	}

	column, err := b.store.UpdateColumn(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if err := b.refreshColumns(ctx); err != nil {
		return nil, err
	}
	return column, nil
}

// DeleteColumn removes a lane and reassigns its tasks to the leftmost
// remaining column. The last column cannot be deleted: a board without lanes
// has nowhere to put its tasks.
func (b *Board) DeleteColumn(ctx context.Context, id models.ColumnID) error {
	if b.Session() == nil {
		return ErrNotSignedIn
	}

	columns := b.Columns()
	if len(columns) <= 1 {
		return ErrLastColumn
	}

	var target *models.Column
	found := false
	for _, c := range columns {
		if c.ID == id {
			found = true
			continue
		}
		if target == nil || c.Order < target.Order {
			target = c
		}
	}
	if !found {
		return store.ErrNotFound
	}

	if err := b.store.DeleteColumn(ctx, id); err != nil {
		return err
	}

	// Orphaned tasks move to the leftmost surviving lane.
	for _, t := range b.Tasks() {
		if t.Status != id {
			continue
		}
		if _, err := b.store.UpdateTask(ctx, t.ID, models.TaskPatch{Status: &target.ID}); err != nil {
			b.log.Warn().Err(err).Str("task", t.ID.String()).Msg("could not reassign task from deleted column")
		}
	}

	if err := b.refreshColumns(ctx); err != nil {
		return err
	}
	return b.refreshTasks(ctx)
}

// Helpers

func (b *Board) requireAdmin() error {
	user := b.Session()
	if user == nil {
		return ErrNotSignedIn
	}
	if user.Role == nil || *user.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (b *Board) columnExists(id models.ColumnID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.columns {
		if c.ID == id {
			return true
		}
	}
	return false
}

// defaultStatus picks the lane for tasks created without one: the standard
// todo column when present, otherwise the leftmost lane.
func (b *Board) defaultStatus() models.ColumnID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.columns {
		if c.ID == models.ColumnTodo {
			return c.ID
		}
	}
	if len(b.columns) > 0 {
		return b.columns[0].ID
	}
	return models.ColumnTodo
}

// nextTaskID derives a timestamp key, bumping past collisions when two tasks
// land in the same millisecond.
func (b *Board) nextTaskID(now time.Time) models.TaskID {
	id := models.NewTaskID(now)
	b.mu.RLock()
	defer b.mu.RUnlock()
	for containsTask(b.tasks, id) {
		id++
	}
	return id
}

func containsTask(tasks []*models.Task, id models.TaskID) bool {
	for _, t := range tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

func containsComment(comments models.CommentList, id models.CommentID) bool {
	for _, c := range comments {
		if c.ID == id {
			return true
		}
	}
	return false
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases a title and collapses everything non-alphanumeric into
// single dashes.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
