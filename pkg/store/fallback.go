package store

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/joelosiris11/kambam/pkg/models"
)

// FallbackStore serves every operation from the remote store and falls back to
// the local store when the remote backend fails. Successful remote writes are
// mirrored into the local store best-effort so the local copy stays warm and
// data written moments before an outage remains retrievable offline.
//
// Domain errors never trigger failover: an ErrNotFound from the remote means
// the record genuinely is not there, not that the backend is down.
type FallbackStore struct {
	remote Store
	local  Store
	log    zerolog.Logger
}

func NewFallbackStore(remote, local Store, logger zerolog.Logger) *FallbackStore {
	return &FallbackStore{
		remote: remote,
		local:  local,
		log:    logger.With().Str("component", "fallback_store").Logger(),
	}
}

// backendFailed reports whether err is a backend failure worth failing over,
// logging it when it is.
func (s *FallbackStore) backendFailed(op string, err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) {
		return false
	}
	s.log.Warn().Err(err).Str("op", op).Msg("remote store failed, falling back to local")
	return true
}

// mirror logs a failed best-effort replication to the local store.
func (s *FallbackStore) mirror(op string, err error) {
	if err != nil {
		s.log.Debug().Err(err).Str("op", op).Msg("local mirror write failed")
	}
}

// Task operations

func (s *FallbackStore) ListTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := s.remote.ListTasks(ctx)
	if s.backendFailed("list_tasks", err) {
		return s.local.ListTasks(ctx)
	}
	return tasks, err
}

func (s *FallbackStore) GetTask(ctx context.Context, id models.TaskID) (*models.Task, error) {
	task, err := s.remote.GetTask(ctx, id)
	if s.backendFailed("get_task", err) {
		return s.local.GetTask(ctx, id)
	}
	return task, err
}

func (s *FallbackStore) CreateTask(ctx context.Context, task *models.Task) error {
	if err := s.remote.CreateTask(ctx, task); err != nil {
		if !s.backendFailed("create_task", err) {
			return err
		}
		return s.local.CreateTask(ctx, task)
	}
	s.mirror("create_task", s.local.CreateTask(ctx, task))
	return nil
}

func (s *FallbackStore) UpdateTask(ctx context.Context, id models.TaskID, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.remote.UpdateTask(ctx, id, patch)
	if err != nil {
		if !s.backendFailed("update_task", err) {
			return nil, err
		}
		return s.local.UpdateTask(ctx, id, patch)
	}
	// Replicate the confirmed state, not the patch, so the copies converge.
	s.mirror("update_task", s.local.CreateTask(ctx, task))
	return task, nil
}

func (s *FallbackStore) DeleteTask(ctx context.Context, id models.TaskID) error {
	if err := s.remote.DeleteTask(ctx, id); err != nil {
		if !s.backendFailed("delete_task", err) {
			return err
		}
		return s.local.DeleteTask(ctx, id)
	}
	s.mirror("delete_task", s.local.DeleteTask(ctx, id))
	return nil
}

func (s *FallbackStore) SubscribeTasks(ctx context.Context, fn func([]*models.Task)) (Unsubscribe, error) {
	return s.remote.SubscribeTasks(ctx, fn)
}

// Column operations

func (s *FallbackStore) ListColumns(ctx context.Context) ([]*models.Column, error) {
	columns, err := s.remote.ListColumns(ctx)
	if s.backendFailed("list_columns", err) {
		return s.local.ListColumns(ctx)
	}
	return columns, err
}

func (s *FallbackStore) GetColumn(ctx context.Context, id models.ColumnID) (*models.Column, error) {
	column, err := s.remote.GetColumn(ctx, id)
	if s.backendFailed("get_column", err) {
		return s.local.GetColumn(ctx, id)
	}
	return column, err
}

func (s *FallbackStore) CreateColumn(ctx context.Context, column *models.Column) error {
	if err := s.remote.CreateColumn(ctx, column); err != nil {
		if !s.backendFailed("create_column", err) {
			return err
		}
		return s.local.CreateColumn(ctx, column)
	}
	s.mirror("create_column", s.local.CreateColumn(ctx, column))
	return nil
}

func (s *FallbackStore) UpdateColumn(ctx context.Context, id models.ColumnID, patch models.ColumnPatch) (*models.Column, error) {
	column, err := s.remote.UpdateColumn(ctx, id, patch)
	if err != nil {
		if !s.backendFailed("update_column", err) {
			return nil, err
		}
		return s.local.UpdateColumn(ctx, id, patch)
	}
	s.mirror("update_column", s.local.CreateColumn(ctx, column))
	return column, nil
}

func (s *FallbackStore) DeleteColumn(ctx context.Context, id models.ColumnID) error {
	if err := s.remote.DeleteColumn(ctx, id); err != nil {
		if !s.backendFailed("delete_column", err) {
			return err
		}
		return s.local.DeleteColumn(ctx, id)
	}
	s.mirror("delete_column", s.local.DeleteColumn(ctx, id))
	return nil
}

func (s *FallbackStore) SubscribeColumns(ctx context.Context, fn func([]*models.Column)) (Unsubscribe, error) {
	return s.remote.SubscribeColumns(ctx, fn)
}

// User operations

func (s *FallbackStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.remote.ListUsers(ctx)
	if s.backendFailed("list_users", err) {
		return s.local.ListUsers(ctx)
	}
	return users, err
}

func (s *FallbackStore) GetUser(ctx context.Context, key models.UserKey) (*models.User, error) {
	user, err := s.remote.GetUser(ctx, key)
	if s.backendFailed("get_user", err) {
		return s.local.GetUser(ctx, key)
	}
	return user, err
}

func (s *FallbackStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.remote.CreateUser(ctx, user); err != nil {
		if !s.backendFailed("create_user", err) {
			return err
		}
		return s.local.CreateUser(ctx, user)
	}
	s.mirror("create_user", s.local.CreateUser(ctx, user))
	return nil
}

func (s *FallbackStore) UpdateUser(ctx context.Context, key models.UserKey, patch models.UserPatch) (*models.User, error) {
	user, err := s.remote.UpdateUser(ctx, key, patch)
	if err != nil {
		if !s.backendFailed("update_user", err) {
			return nil, err
		}
		return s.local.UpdateUser(ctx, key, patch)
	}
	s.mirror("update_user", s.local.CreateUser(ctx, user))
	return user, nil
}

func (s *FallbackStore) DeleteUser(ctx context.Context, key models.UserKey) error {
	if err := s.remote.DeleteUser(ctx, key); err != nil {
		if !s.backendFailed("delete_user", err) {
			return err
		}
		return s.local.DeleteUser(ctx, key)
	}
	s.mirror("delete_user", s.local.DeleteUser(ctx, key))
	return nil
}

// Role operations

func (s *FallbackStore) ListRoles(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.remote.ListRoles(ctx)
	if s.backendFailed("list_roles", err) {
		return s.local.ListRoles(ctx)
	}
	return roles, err
}

func (s *FallbackStore) GetRole(ctx context.Context, id models.RoleID) (*models.Role, error) {
	role, err := s.remote.GetRole(ctx, id)
	if s.backendFailed("get_role", err) {
		return s.local.GetRole(ctx, id)
	}
	return role, err
}

func (s *FallbackStore) CreateRole(ctx context.Context, role *models.Role) error {
	if err := s.remote.CreateRole(ctx, role); err != nil {
		if !s.backendFailed("create_role", err) {
			return err
		}
		return s.local.CreateRole(ctx, role)
	}
	s.mirror("create_role", s.local.CreateRole(ctx, role))
	return nil
}

func (s *FallbackStore) UpdateRole(ctx context.Context, id models.RoleID, patch models.RolePatch) (*models.Role, error) {
	role, err := s.remote.UpdateRole(ctx, id, patch)
	if err != nil {
		if !s.backendFailed("update_role", err) {
			return nil, err
		}
		return s.local.UpdateRole(ctx, id, patch)
	}
	s.mirror("update_role", s.local.CreateRole(ctx, role))
	return role, nil
}

func (s *FallbackStore) DeleteRole(ctx context.Context, id models.RoleID) error {
	if err := s.remote.DeleteRole(ctx, id); err != nil {
		if !s.backendFailed("delete_role", err) {
			return err
		}
		return s.local.DeleteRole(ctx, id)
	}
	s.mirror("delete_role", s.local.DeleteRole(ctx, id))
	return nil
}

// Settings operations

func (s *FallbackStore) GetSettings(ctx context.Context) (*models.Settings, error) {
	settings, err := s.remote.GetSettings(ctx)
	if s.backendFailed("get_settings", err) {
		return s.local.GetSettings(ctx)
	}
	return settings, err
}

func (s *FallbackStore) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error) {
	settings, err := s.remote.UpdateSettings(ctx, patch)
	if err != nil {
		if !s.backendFailed("update_settings", err) {
			return nil, err
		}
		return s.local.UpdateSettings(ctx, patch)
	}
	if _, merr := s.local.UpdateSettings(ctx, patch); merr != nil {
		s.mirror("update_settings", merr)
	}
	return settings, nil
}

func (s *FallbackStore) Migrate(ctx context.Context) error {
	if err := s.local.Migrate(ctx); err != nil {
		return err
	}
	return s.remote.Migrate(ctx)
}

func (s *FallbackStore) Close() error {
	return errors.Join(s.remote.Close(), s.local.Close())
}
