// Package memory implements the store contract entirely in process. It backs
// unit tests and works as a zero-dependency backend for throwaway instances.
// Subscriptions are delivered synchronously on every mutation, which makes it
// the only backend where realtime behavior is deterministic enough to assert on.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/joelosiris11/kambam/pkg/models"
	"github.com/joelosiris11/kambam/pkg/store"
)

type Store struct {
	mu       sync.RWMutex
	tasks    map[models.TaskID]*models.Task
	columns  map[models.ColumnID]*models.Column
	users    map[models.UserKey]*models.User
	roles    map[models.RoleID]*models.Role
	settings *models.Settings

	taskSubs   map[int]func([]*models.Task)
	columnSubs map[int]func([]*models.Column)
	nextSub    int

	session *models.User
	sprint  *models.SprintRange

	failErr error
}

var (
	_ store.Store       = (*Store)(nil)
	_ store.Preferences = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		tasks:      make(map[models.TaskID]*models.Task),
		columns:    make(map[models.ColumnID]*models.Column),
		users:      make(map[models.UserKey]*models.User),
		roles:      make(map[models.RoleID]*models.Role),
		taskSubs:   make(map[int]func([]*models.Task)),
		columnSubs: make(map[int]func([]*models.Column)),
	}
}

// Fail makes every subsequent operation return err until called with nil.
// Tests use it to simulate a backend outage.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *Store) failing() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failErr
}

// Task operations

func (s *Store) ListTasks(ctx context.Context) ([]*models.Task, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taskSnapshot(), nil
}

func (s *Store) GetTask(ctx context.Context, id models.TaskID) (*models.Task, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	return cloneTask(t), nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if err := s.failing(); err != nil {
		return err
	}
	s.mu.Lock()
	if task.ID.IsZero() {
		task.ID = models.NewTaskID(time.Now())
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = time.Now()
	s.tasks[task.ID] = cloneTask(task)
	subs, snapshot := s.taskDelivery()
	s.mu.Unlock()

	deliverTasks(subs, snapshot)
	return nil
}

func (s *Store) UpdateTask(ctx context.Context, id models.TaskID, patch models.TaskPatch) (*models.Task, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		return nil, store.ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Type != nil {
		t.Type = *patch.Type
	}
	if patch.Hours != nil {
		t.Hours = *patch.Hours
	}
	if patch.AssignedTo != nil {
		t.AssignedTo = *patch.AssignedTo
	}
	if patch.Validated != nil {
		t.Validated = *patch.Validated
	}
	if patch.ValidatedBy != nil {
		t.ValidatedBy = *patch.ValidatedBy
	}
	if patch.Comments != nil {
		t.Comments = append(models.CommentList(nil), (*patch.Comments)...)
	}
	t.UpdatedAt = time.Now()
	updated := cloneTask(t)
	subs, snapshot := s.taskDelivery()
	s.mu.Unlock()

	deliverTasks(subs, snapshot)
	return updated, nil
}

func (s *Store) DeleteTask(ctx context.Context, id models.TaskID) error {
	if err := s.failing(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.tasks, id)
	subs, snapshot := s.taskDelivery()
	s.mu.Unlock()

	deliverTasks(subs, snapshot)
	return nil
}

func (s *Store) SubscribeTasks(ctx context.Context, fn func([]*models.Task)) (store.Unsubscribe, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.taskSubs[id] = fn
	s.mu.Unlock()

	return func() error {
		s.mu.Lock()
		delete(s.taskSubs, id)
		s.mu.Unlock()
		return nil
	}, nil
}

// Column operations

func (s *Store) ListColumns(ctx context.Context) ([]*models.Column, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.columnSnapshot(), nil
}

func (s *Store) GetColumn(ctx context.Context, id models.ColumnID) (*models.Column, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.columns[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (s *Store) CreateColumn(ctx context.Context, column *models.Column) error {
	if err := s.failing(); err != nil {
		return err
	}
	s.mu.Lock()
	if column.CreatedAt.IsZero() {
		column.CreatedAt = time.Now()
	}
	column.UpdatedAt = time.Now()
	clone := *column
	s.columns[column.ID] = &clone
	subs, snapshot := s.columnDelivery()
	s.mu.Unlock()

	deliverColumns(subs, snapshot)
	return nil
}

func (s *Store) UpdateColumn(ctx context.Context, id models.ColumnID, patch models.ColumnPatch) (*models.Column, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	c, ok := s.columns[id]
	if !ok {
		s.mu.Unlock()
		return nil, store.ErrNotFound
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	if patch.Color != nil {
		c.Color = *patch.Color
	}
	if patch.Order != nil {
		c.Order = *patch.Order
	}
	c.UpdatedAt = time.Now()
	updated := *c
	subs, snapshot := s.columnDelivery()
	s.mu.Unlock()

	deliverColumns(subs, snapshot)
	return &updated, nil
}

func (s *Store) DeleteColumn(ctx context.Context, id models.ColumnID) error {
	if err := s.failing(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.columns, id)
	subs, snapshot := s.columnDelivery()
	s.mu.Unlock()

	deliverColumns(subs, snapshot)
	return nil
}

func (s *Store) SubscribeColumns(ctx context.Context, fn func([]*models.Column)) (store.Unsubscribe, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.columnSubs[id] = fn
	s.mu.Unlock()

	return func() error {
		s.mu.Lock()
		delete(s.columnSubs, id)
		s.mu.Unlock()
		return nil
	}, nil
}

// User operations

func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		clone := *u
		users = append(users, &clone)
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, key models.UserKey) (*models.User, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[key]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.failing(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()
	clone := *user
	s.users[user.Key] = &clone
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, key models.UserKey, patch models.UserPatch) (*models.User, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Pin != nil {
		u.Pin = *patch.Pin
	}
	if patch.Role != nil {
		role := *patch.Role
		u.Role = &role
	}
	u.UpdatedAt = time.Now()
	clone := *u
	return &clone, nil
}

func (s *Store) DeleteUser(ctx context.Context, key models.UserKey) error {
	if err := s.failing(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, key)
	return nil
}

// Role operations

func (s *Store) ListRoles(ctx context.Context) ([]*models.Role, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	roles := make([]*models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		clone := *r
		roles = append(roles, &clone)
	}
	models.SortRoles(roles)
	return roles, nil
}

func (s *Store) GetRole(ctx context.Context, id models.RoleID) (*models.Role, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[id]
	if !ok {
		return nil, nil
	}
	clone := *r
	return &clone, nil
}

func (s *Store) CreateRole(ctx context.Context, role *models.Role) error {
	if err := s.failing(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if role.CreatedAt.IsZero() {
		role.CreatedAt = time.Now()
	}
	role.UpdatedAt = time.Now()
	clone := *role
	s.roles[role.ID] = &clone
	return nil
}

func (s *Store) UpdateRole(ctx context.Context, id models.RoleID, patch models.RolePatch) (*models.Role, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if patch.Name != nil {
		r.Name = *patch.Name
	}
	if patch.Icon != nil {
		r.Icon = *patch.Icon
	}
	if patch.Description != nil {
		r.Description = *patch.Description
	}
	if patch.Category != nil {
		r.Category = *patch.Category
	}
	if patch.Color != nil {
		r.Color = *patch.Color
	}
	if patch.IsActive != nil {
		r.IsActive = *patch.IsActive
	}
	r.UpdatedAt = time.Now()
	clone := *r
	return &clone, nil
}

func (s *Store) DeleteRole(ctx context.Context, id models.RoleID) error {
	if err := s.failing(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, id)
	return nil
}

// Settings operations

func (s *Store) GetSettings(ctx context.Context) (*models.Settings, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		s.settings = models.DefaultSettings(time.Now())
	}
	clone := *s.settings
	return &clone, nil
}

func (s *Store) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error) {
	if err := s.failing(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		s.settings = models.DefaultSettings(time.Now())
	}
	if patch.FilesURL != nil {
		s.settings.FilesURL = *patch.FilesURL
	}
	if patch.GitURL != nil {
		s.settings.GitURL = *patch.GitURL
	}
	s.settings.UpdatedAt = time.Now()
	clone := *s.settings
	return &clone, nil
}

// Preferences

func (s *Store) ActiveSession(ctx context.Context) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, nil
	}
	clone := *s.session
	return &clone, nil
}

func (s *Store) SaveActiveSession(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *user
	s.session = &clone
	return nil
}

func (s *Store) ClearActiveSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}

func (s *Store) SprintRange(ctx context.Context) (*models.SprintRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sprint == nil {
		return nil, nil
	}
	clone := *s.sprint
	return &clone, nil
}

func (s *Store) SaveSprintRange(ctx context.Context, r models.SprintRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sprint = &r
	return nil
}

func (s *Store) Migrate(ctx context.Context) error { return nil }
func (s *Store) Close() error                      { return nil }

// Snapshot and delivery helpers. Callbacks run outside the lock so a
// subscriber may call back into the store without deadlocking.

func (s *Store) taskSnapshot() []*models.Task {
	tasks := make([]*models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, cloneTask(t))
	}
	models.SortTasks(tasks)
	return tasks
}

func (s *Store) columnSnapshot() []*models.Column {
	columns := make([]*models.Column, 0, len(s.columns))
	for _, c := range s.columns {
		clone := *c
		columns = append(columns, &clone)
	}
	models.SortColumns(columns)
	return columns
}

func (s *Store) taskDelivery() ([]func([]*models.Task), []*models.Task) {
	subs := make([]func([]*models.Task), 0, len(s.taskSubs))
	for _, fn := range s.taskSubs {
		subs = append(subs, fn)
	}
	return subs, s.taskSnapshot()
}

func (s *Store) columnDelivery() ([]func([]*models.Column), []*models.Column) {
	subs := make([]func([]*models.Column), 0, len(s.columnSubs))
	for _, fn := range s.columnSubs {
		subs = append(subs, fn)
	}
	return subs, s.columnSnapshot()
}

func deliverTasks(subs []func([]*models.Task), tasks []*models.Task) {
	for _, fn := range subs {
		fn(tasks)
	}
}

func deliverColumns(subs []func([]*models.Column), columns []*models.Column) {
	for _, fn := range subs {
		fn(columns)
	}
}

func cloneTask(t *models.Task) *models.Task {
	clone := *t
	clone.Comments = append(models.CommentList(nil), t.Comments...)
	return &clone
}
