// Package surreal implements the store contract on SurrealDB over WebSocket.
//
// The connection is configured manually with the surrealcbor codec instead of
// the endpoint-string shortcut: CBOR is what SurrealDB speaks internally, and
// without the custom codec time.Time values and typed record keys do not
// survive the round trip. Typed keys marshal to RecordIDs (CBOR tag 8), so
// documents are addressed by their natural keys and a create is an overwrite.
//
// Queries are always parameterized ($param syntax); no user-provided value is
// ever interpolated into a query string.
package surreal

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/joelosiris11/kambam/pkg/models"
	"github.com/joelosiris11/kambam/pkg/store"
)

// Store is the remote adapter backed by SurrealDB live documents.
type Store struct {
	db       *surrealdb.DB
	ns       string
	database string
}

var _ store.Store = (*Store)(nil)

// NewStore connects to SurrealDB at wsURL and scopes the session to the given
// namespace and database. Credentials are optional for unauthenticated dev
// instances.
func NewStore(ctx context.Context, wsURL, namespace, database, username, password string) (*Store, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	conf := connection.NewConfig(u)

	// The default marshaler mangles time.Time and RecordID values.
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	conn := gorillaws.New(conf)

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if username != "" && password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": username,
			"pass": password,
		}); err != nil {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &Store{db: db, ns: namespace, database: database}, nil
}

// Migrate is a no-op: SurrealDB creates tables implicitly on first insert.
func (s *Store) Migrate(ctx context.Context) error { return nil }

func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

// handleNotFound collapses the SDK's "no result" errors into nil so callers
// get the (nil, nil) convention for missing records.
func handleNotFound(err error) error {
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "Expected a single or multiple results but got 0") ||
			strings.Contains(errStr, "cannot unmarshal array into Go value") {
			return nil
		}
	}
	return err
}

func queryAll[T any](ctx context.Context, db *surrealdb.DB, query string, params map[string]any) ([]*T, error) {
	result, err := surrealdb.Query[[]T](ctx, db, query, params)
	if err != nil {
		return nil, err
	}
	var items []*T
	if result != nil && len(*result) > 0 {
		for i := range (*result)[0].Result {
			items = append(items, &(*result)[0].Result[i])
		}
	}
	return items, nil
}

// Task operations

func (s *Store) ListTasks(ctx context.Context) ([]*models.Task, error) {
	tasks, err := queryAll[models.Task](ctx, s.db, "SELECT * FROM tasks", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	models.SortTasks(tasks)
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id models.TaskID) (*models.Task, error) {
	task, err := surrealdb.Select[models.Task](ctx, s.db, id.RecordID())
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID.IsZero() {
		task.ID = models.NewTaskID(time.Now())
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = time.Now()

	// Upsert keeps natural-key creates idempotent: re-creating a record
	// overwrites it instead of failing on a duplicate key.
	if _, err := surrealdb.Upsert[models.Task](ctx, s.db, task.ID.RecordID(), task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (s *Store) UpdateTask(ctx context.Context, id models.TaskID, patch models.TaskPatch) (*models.Task, error) {
	existing, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, store.ErrNotFound
	}

	fields := patch.Fields()
	fields["updated_at"] = time.Now()
	if _, err := surrealdb.Merge[models.Task](ctx, s.db, id.RecordID(), fields); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	// Re-read so the caller sees the stored state, not the intended one.
	return s.GetTask(ctx, id)
}

func (s *Store) DeleteTask(ctx context.Context, id models.TaskID) error {
	if _, err := surrealdb.Delete[models.Task](ctx, s.db, id.RecordID()); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// Column operations

func (s *Store) ListColumns(ctx context.Context) ([]*models.Column, error) {
	columns, err := queryAll[models.Column](ctx, s.db, "SELECT * FROM columns", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	models.SortColumns(columns)
	return columns, nil
}

func (s *Store) GetColumn(ctx context.Context, id models.ColumnID) (*models.Column, error) {
	column, err := surrealdb.Select[models.Column](ctx, s.db, id.RecordID())
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get column: %w", err)
	}
	return column, nil
}

func (s *Store) CreateColumn(ctx context.Context, column *models.Column) error {
	if column.CreatedAt.IsZero() {
		column.CreatedAt = time.Now()
	}
	column.UpdatedAt = time.Now()

	if _, err := surrealdb.Upsert[models.Column](ctx, s.db, column.ID.RecordID(), column); err != nil {
		return fmt.Errorf("failed to create column: %w", err)
	}
	return nil
}

func (s *Store) UpdateColumn(ctx context.Context, id models.ColumnID, patch models.ColumnPatch) (*models.Column, error) {
	existing, err := s.GetColumn(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, store.ErrNotFound
	}

	fields := patch.Fields()
	fields["updated_at"] = time.Now()
	if _, err := surrealdb.Merge[models.Column](ctx, s.db, id.RecordID(), fields); err != nil {
		return nil, fmt.Errorf("failed to update column: %w", err)
	}
	return s.GetColumn(ctx, id)
}

func (s *Store) DeleteColumn(ctx context.Context, id models.ColumnID) error {
	if _, err := surrealdb.Delete[models.Column](ctx, s.db, id.RecordID()); err != nil {
		return fmt.Errorf("failed to delete column: %w", err)
	}
	return nil
}

// User operations

func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := queryAll[models.User](ctx, s.db, "SELECT * FROM users ORDER BY username", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *Store) GetUser(ctx context.Context, key models.UserKey) (*models.User, error) {
	user, err := surrealdb.Select[models.User](ctx, s.db, key.RecordID())
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.Key.IsZero() {
		user.Key = models.NewUserKey(user.Username)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()

	if _, err := surrealdb.Upsert[models.User](ctx, s.db, user.Key.RecordID(), user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, key models.UserKey, patch models.UserPatch) (*models.User, error) {
	existing, err := s.GetUser(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, store.ErrNotFound
	}

	fields := patch.Fields()
	fields["updated_at"] = time.Now()
	if _, err := surrealdb.Merge[models.User](ctx, s.db, key.RecordID(), fields); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetUser(ctx, key)
}

func (s *Store) DeleteUser(ctx context.Context, key models.UserKey) error {
	if _, err := surrealdb.Delete[models.User](ctx, s.db, key.RecordID()); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Role operations

func (s *Store) ListRoles(ctx context.Context) ([]*models.Role, error) {
	roles, err := queryAll[models.Role](ctx, s.db, "SELECT * FROM roles", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	models.SortRoles(roles)
	return roles, nil
}

func (s *Store) GetRole(ctx context.Context, id models.RoleID) (*models.Role, error) {
	role, err := surrealdb.Select[models.Role](ctx, s.db, id.RecordID())
	if err != nil {
		if handleNotFound(err) == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

func (s *Store) CreateRole(ctx context.Context, role *models.Role) error {
	if role.CreatedAt.IsZero() {
		role.CreatedAt = time.Now()
	}
	role.UpdatedAt = time.Now()

	if _, err := surrealdb.Upsert[models.Role](ctx, s.db, role.ID.RecordID(), role); err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

func (s *Store) UpdateRole(ctx context.Context, id models.RoleID, patch models.RolePatch) (*models.Role, error) {
	existing, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, store.ErrNotFound
	}

	fields := patch.Fields()
	fields["updated_at"] = time.Now()
	if _, err := surrealdb.Merge[models.Role](ctx, s.db, id.RecordID(), fields); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return s.GetRole(ctx, id)
}

func (s *Store) DeleteRole(ctx context.Context, id models.RoleID) error {
	if _, err := surrealdb.Delete[models.Role](ctx, s.db, id.RecordID()); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	return nil
}

// Settings operations

func (s *Store) GetSettings(ctx context.Context) (*models.Settings, error) {
	settings, err := surrealdb.Select[models.Settings](ctx, s.db, models.SettingsApp.RecordID())
	if err != nil && handleNotFound(err) != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if settings != nil {
		return settings, nil
	}

	defaults := models.DefaultSettings(time.Now())
	if _, err := surrealdb.Upsert[models.Settings](ctx, s.db, defaults.Key.RecordID(), defaults); err != nil {
		return nil, fmt.Errorf("failed to initialize settings: %w", err)
	}
	return defaults, nil
}

func (s *Store) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error) {
	if _, err := s.GetSettings(ctx); err != nil {
		return nil, err
	}

	fields := patch.Fields()
	fields["updated_at"] = time.Now()
	if _, err := surrealdb.Merge[models.Settings](ctx, s.db, models.SettingsApp.RecordID(), fields); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return s.GetSettings(ctx)
}
