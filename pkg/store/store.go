// Package store defines the persistence contract shared by every backend:
// the SurrealDB remote store, the embedded SQLite store, the in-process memory
// store, and the fallback facade combining a remote with a local copy.
package store

import (
	"context"
	"errors"

	"github.com/joelosiris11/kambam/pkg/models"
)

var (
	// ErrNotFound reports that an update targeted a missing record. Reads use
	// the softer (nil, nil) convention instead.
	ErrNotFound = errors.New("record not found")

	// ErrRealtimeUnavailable reports that a backend cannot push change
	// notifications. The sync coordinator treats it as "stay inactive".
	ErrRealtimeUnavailable = errors.New("realtime subscriptions unavailable")

	// ErrReadOnly reports that a write was rejected by the read-only guard.
	ErrReadOnly = errors.New("store is in read-only mode")
)

// Unsubscribe terminates a live subscription. Calling it more than once is
// safe; notifications delivered after it returns are the subscriber's problem
// to discard, which the sync coordinator does with its guard flag.
type Unsubscribe func() error

// Store is the persistence interface for the five entity families.
//
// Conventions, identical across backends:
//   - Get returns (nil, nil) when the record does not exist.
//   - Create with a natural key that already exists overwrites the record.
//   - Update merges a partial patch and returns the re-read record; updating a
//     missing record returns ErrNotFound.
//   - Delete is idempotent.
//   - List results arrive in the canonical order for the family (tasks newest
//     first, columns by position, roles by category then name).
//   - Subscribe delivers the full re-sorted collection on every change and
//     returns ErrRealtimeUnavailable when the backend cannot push.
type Store interface {
	ListTasks(ctx context.Context) ([]*models.Task, error)
	GetTask(ctx context.Context, id models.TaskID) (*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, id models.TaskID, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id models.TaskID) error
	SubscribeTasks(ctx context.Context, fn func([]*models.Task)) (Unsubscribe, error)

	ListColumns(ctx context.Context) ([]*models.Column, error)
	GetColumn(ctx context.Context, id models.ColumnID) (*models.Column, error)
	CreateColumn(ctx context.Context, column *models.Column) error
	UpdateColumn(ctx context.Context, id models.ColumnID, patch models.ColumnPatch) (*models.Column, error)
	DeleteColumn(ctx context.Context, id models.ColumnID) error
	SubscribeColumns(ctx context.Context, fn func([]*models.Column)) (Unsubscribe, error)

	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, key models.UserKey) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, key models.UserKey, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, key models.UserKey) error

	ListRoles(ctx context.Context) ([]*models.Role, error)
	GetRole(ctx context.Context, id models.RoleID) (*models.Role, error)
	CreateRole(ctx context.Context, role *models.Role) error
	UpdateRole(ctx context.Context, id models.RoleID, patch models.RolePatch) (*models.Role, error)
	DeleteRole(ctx context.Context, id models.RoleID) error

	// GetSettings lazily creates the singleton with defaults on first read.
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Preferences holds device-local state that never syncs to the remote backend:
// the persisted session and the sprint window. The SQLite store is the
// production home; the memory store implements it for tests.
type Preferences interface {
	ActiveSession(ctx context.Context) (*models.User, error)
	SaveActiveSession(ctx context.Context, user *models.User) error
	ClearActiveSession(ctx context.Context) error

	SprintRange(ctx context.Context) (*models.SprintRange, error)
	SaveSprintRange(ctx context.Context, r models.SprintRange) error
}
