package store

import (
	"context"

	"github.com/joelosiris11/kambam/pkg/models"
)

// ReadOnlyStore wraps another Store and rejects writes while the provided
// check reports read-only mode. Reads and subscriptions pass through
// untouched. The check runs on every write, so the mode can be toggled at
// runtime for maintenance windows without restarting.
type ReadOnlyStore struct {
	Store
	isReadOnly func() bool
}

func NewReadOnlyStore(inner Store, isReadOnly func() bool) *ReadOnlyStore {
	return &ReadOnlyStore{Store: inner, isReadOnly: isReadOnly}
}

func (s *ReadOnlyStore) guard() error {
	if s.isReadOnly() {
		return ErrReadOnly
	}
	return nil
}

func (s *ReadOnlyStore) CreateTask(ctx context.Context, task *models.Task) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.Store.CreateTask(ctx, task)
}

func (s *ReadOnlyStore) UpdateTask(ctx context.Context, id models.TaskID, patch models.TaskPatch) (*models.Task, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.Store.UpdateTask(ctx, id, patch)
}

func (s *ReadOnlyStore) DeleteTask(ctx context.Context, id models.TaskID) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.Store.DeleteTask(ctx, id)
}

func (s *ReadOnlyStore) CreateColumn(ctx context.Context, column *models.Column) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.Store.CreateColumn(ctx, column)
}

func (s *ReadOnlyStore) UpdateColumn(ctx context.Context, id models.ColumnID, patch models.ColumnPatch) (*models.Column, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.Store.UpdateColumn(ctx, id, patch)
}

func (s *ReadOnlyStore) DeleteColumn(ctx context.Context, id models.ColumnID) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.Store.DeleteColumn(ctx, id)
}

func (s *ReadOnlyStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.Store.CreateUser(ctx, user)
}

func (s *ReadOnlyStore) UpdateUser(ctx context.Context, key models.UserKey, patch models.UserPatch) (*models.User, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.Store.UpdateUser(ctx, key, patch)
}

func (s *ReadOnlyStore) DeleteUser(ctx context.Context, key models.UserKey) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.Store.DeleteUser(ctx, key)
}

func (s *ReadOnlyStore) CreateRole(ctx context.Context, role *models.Role) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.Store.CreateRole(ctx, role)
}

func (s *ReadOnlyStore) UpdateRole(ctx context.Context, id models.RoleID, patch models.RolePatch) (*models.Role, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.Store.UpdateRole(ctx, id, patch)
}

func (s *ReadOnlyStore) DeleteRole(ctx context.Context, id models.RoleID) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.Store.DeleteRole(ctx, id)
}

func (s *ReadOnlyStore) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.Store.UpdateSettings(ctx, patch)
}
