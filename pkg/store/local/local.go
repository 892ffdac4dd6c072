// Package local implements the store contract on an embedded SQLite database
// through GORM. It is the offline copy of the board: the fallback target when
// the remote backend is unreachable, and the only home of device-local
// preferences (the persisted session and the sprint window), which never sync.
//
// SQLite cannot push change notifications, so both Subscribe methods return
// store.ErrRealtimeUnavailable and the sync coordinator stays inactive in
// local-only mode.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joelosiris11/kambam/pkg/models"
	"github.com/joelosiris11/kambam/pkg/store"
)

// Preference keys.
const (
	prefActiveSession = "active_session"
	prefSprintRange   = "sprint_range"
)

// preference is a key/value row for device-local state.
type preference struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

type Store struct {
	db *gorm.DB
}

var (
	_ store.Store       = (*Store)(nil)
	_ store.Preferences = (*Store)(nil)
)

// NewStore opens (and creates if needed) the SQLite database at path.
// Use ":memory:" for a throwaway instance.
func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&models.Task{},
		&models.Column{},
		&models.User{},
		&models.Role{},
		&models.Settings{},
		&preference{},
	)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// upsert writes a record by natural key, overwriting any existing row.
func (s *Store) upsert(ctx context.Context, record any) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(record).Error
}

// Task operations

func (s *Store) ListTasks(ctx context.Context) ([]*models.Task, error) {
	var tasks []*models.Task
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id models.TaskID) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID.IsZero() {
		task.ID = models.NewTaskID(time.Now())
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = time.Now()
	if err := s.upsert(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (s *Store) UpdateTask(ctx context.Context, id models.TaskID, patch models.TaskPatch) (*models.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, store.ErrNotFound
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Type != nil {
		task.Type = *patch.Type
	}
	if patch.Hours != nil {
		task.Hours = *patch.Hours
	}
	if patch.AssignedTo != nil {
		task.AssignedTo = *patch.AssignedTo
	}
	if patch.Validated != nil {
		task.Validated = *patch.Validated
	}
	if patch.ValidatedBy != nil {
		task.ValidatedBy = *patch.ValidatedBy
	}
	if patch.Comments != nil {
		task.Comments = *patch.Comments
	}
	task.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return s.GetTask(ctx, id)
}

func (s *Store) DeleteTask(ctx context.Context, id models.TaskID) error {
	if err := s.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *Store) SubscribeTasks(ctx context.Context, fn func([]*models.Task)) (store.Unsubscribe, error) {
	return nil, store.ErrRealtimeUnavailable
}

// Column operations

func (s *Store) ListColumns(ctx context.Context) ([]*models.Column, error) {
	var columns []*models.Column
	if err := s.db.WithContext(ctx).Order("sort_order ASC").Find(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	return columns, nil
}

func (s *Store) GetColumn(ctx context.Context, id models.ColumnID) (*models.Column, error) {
	var column models.Column
	err := s.db.WithContext(ctx).First(&column, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get column: %w", err)
	}
	return &column, nil
}

func (s *Store) CreateColumn(ctx context.Context, column *models.Column) error {
	if column.CreatedAt.IsZero() {
		column.CreatedAt = time.Now()
	}
	column.UpdatedAt = time.Now()
	if err := s.upsert(ctx, column); err != nil {
		return fmt.Errorf("failed to create column: %w", err)
	}
	return nil
}

func (s *Store) UpdateColumn(ctx context.Context, id models.ColumnID, patch models.ColumnPatch) (*models.Column, error) {
	column, err := s.GetColumn(ctx, id)
	if err != nil {
		return nil, err
	}
	if column == nil {
		return nil, store.ErrNotFound
	}

	if patch.Title != nil {
		column.Title = *patch.Title
	}
	if patch.Color != nil {
		column.Color = *patch.Color
	}
	if patch.Order != nil {
		column.Order = *patch.Order
	}
	column.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(column).Error; err != nil {
		return nil, fmt.Errorf("failed to update column: %w", err)
	}
	return s.GetColumn(ctx, id)
}

func (s *Store) DeleteColumn(ctx context.Context, id models.ColumnID) error {
	if err := s.db.WithContext(ctx).Delete(&models.Column{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete column: %w", err)
	}
	return nil
}

func (s *Store) SubscribeColumns(ctx context.Context, fn func([]*models.Column)) (store.Unsubscribe, error) {
	return nil, store.ErrRealtimeUnavailable
}

// User operations

func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := s.db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, key models.UserKey) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.Key.IsZero() {
		user.Key = models.NewUserKey(user.Username)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()
	if err := s.upsert(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, key models.UserKey, patch models.UserPatch) (*models.User, error) {
	user, err := s.GetUser(ctx, key)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, store.ErrNotFound
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Pin != nil {
		user.Pin = *patch.Pin
	}
	if patch.Role != nil {
		role := *patch.Role
		user.Role = &role
	}
	user.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetUser(ctx, key)
}

func (s *Store) DeleteUser(ctx context.Context, key models.UserKey) error {
	if err := s.db.WithContext(ctx).Delete(&models.User{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Role operations

func (s *Store) ListRoles(ctx context.Context) ([]*models.Role, error) {
	var roles []*models.Role
	if err := s.db.WithContext(ctx).Order("category ASC, name ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (s *Store) GetRole(ctx context.Context, id models.RoleID) (*models.Role, error) {
	var role models.Role
	err := s.db.WithContext(ctx).First(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}

func (s *Store) CreateRole(ctx context.Context, role *models.Role) error {
	if role.CreatedAt.IsZero() {
		role.CreatedAt = time.Now()
	}
	role.UpdatedAt = time.Now()
	if err := s.upsert(ctx, role); err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

func (s *Store) UpdateRole(ctx context.Context, id models.RoleID, patch models.RolePatch) (*models.Role, error) {
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, store.ErrNotFound
	}

	if patch.Name != nil {
		role.Name = *patch.Name
	}
	if patch.Icon != nil {
		role.Icon = *patch.Icon
	}
	if patch.Description != nil {
		role.Description = *patch.Description
	}
	if patch.Category != nil {
		role.Category = *patch.Category
	}
	if patch.Color != nil {
		role.Color = *patch.Color
	}
	if patch.IsActive != nil {
		role.IsActive = *patch.IsActive
	}
	role.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(role).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return s.GetRole(ctx, id)
}

func (s *Store) DeleteRole(ctx context.Context, id models.RoleID) error {
	if err := s.db.WithContext(ctx).Delete(&models.Role{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return nil
}

// Settings operations

func (s *Store) GetSettings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := s.db.WithContext(ctx).First(&settings, "key = ?", models.SettingsApp).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	defaults := models.DefaultSettings(time.Now())
	if err := s.upsert(ctx, defaults); err != nil {
		return nil, fmt.Errorf("failed to initialize settings: %w", err)
	}
	return defaults, nil
}

func (s *Store) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if patch.FilesURL != nil {
		settings.FilesURL = *patch.FilesURL
	}
	if patch.GitURL != nil {
		settings.GitURL = *patch.GitURL
	}
	settings.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return settings, nil
}

// Preferences

func (s *Store) getPreference(ctx context.Context, key string, out any) (bool, error) {
	var pref preference
	err := s.db.WithContext(ctx).First(&pref, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(pref.Value), out); err != nil {
		return false, fmt.Errorf("failed to decode preference %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) setPreference(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode preference %s: %w", key, err)
	}
	if err := s.upsert(ctx, &preference{Key: key, Value: string(b)}); err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

func (s *Store) ActiveSession(ctx context.Context) (*models.User, error) {
	var user models.User
	ok, err := s.getPreference(ctx, prefActiveSession, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

func (s *Store) SaveActiveSession(ctx context.Context, user *models.User) error {
	return s.setPreference(ctx, prefActiveSession, user)
}

func (s *Store) ClearActiveSession(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Delete(&preference{}, "key = ?", prefActiveSession).Error; err != nil {
		return fmt.Errorf("failed to clear active session: %w", err)
	}
	return nil
}

func (s *Store) SprintRange(ctx context.Context) (*models.SprintRange, error) {
	var r models.SprintRange
	ok, err := s.getPreference(ctx, prefSprintRange, &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *Store) SaveSprintRange(ctx context.Context, r models.SprintRange) error {
	return s.setPreference(ctx, prefSprintRange, r)
}
