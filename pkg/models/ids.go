package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// All record identifiers are natural keys: a task id is its creation time in
// Unix milliseconds, column and role ids are slugs, a user key is the lowercase
// username and settings live under the fixed key "app". Creating a record with
// an existing key overwrites it, which makes seeding idempotent.

// TaskID is a typed ID for tasks, derived from the creation timestamp.
type TaskID int64

func NewTaskID(t time.Time) TaskID {
	return TaskID(t.UnixMilli())
}

func ParseTaskID(s string) (TaskID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task ID: %w", err)
	}
	return TaskID(n), nil
}

func (id TaskID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id TaskID) IsZero() bool   { return id == 0 }

func (id TaskID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "tasks",
		ID:    id.String(),
	}
}

func (id TaskID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"tasks", id.String()},
	})
}

func (id *TaskID) UnmarshalCBOR(data []byte) error {
	s, err := unmarshalCBORKey(data, "tasks")
	if err != nil {
		return err
	}
	parsed, err := ParseTaskID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ColumnID is a typed ID for board columns, a URL-safe slug such as "in-progress".
type ColumnID string

func ParseColumnID(s string) (ColumnID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("invalid column ID: empty")
	}
	return ColumnID(s), nil
}

func (id ColumnID) String() string { return string(id) }
func (id ColumnID) IsZero() bool   { return id == "" }

func (id ColumnID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "columns",
		ID:    string(id),
	}
}

func (id ColumnID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"columns", string(id)},
	})
}

func (id *ColumnID) UnmarshalCBOR(data []byte) error {
	s, err := unmarshalCBORKey(data, "columns")
	if err != nil {
		return err
	}
	*id = ColumnID(s)
	return nil
}

// RoleID is a typed ID for roles, a slug such as "project-manager".
type RoleID string

func ParseRoleID(s string) (RoleID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("invalid role ID: empty")
	}
	return RoleID(s), nil
}

func (id RoleID) String() string { return string(id) }
func (id RoleID) IsZero() bool   { return id == "" }

func (id RoleID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "roles",
		ID:    string(id),
	}
}

func (id RoleID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"roles", string(id)},
	})
}

func (id *RoleID) UnmarshalCBOR(data []byte) error {
	s, err := unmarshalCBORKey(data, "roles")
	if err != nil {
		return err
	}
	*id = RoleID(s)
	return nil
}

// UserKey is a typed ID for users: the lowercase, trimmed username. Display
// casing is kept on the User record itself.
type UserKey string

func NewUserKey(username string) UserKey {
	return UserKey(strings.ToLower(strings.TrimSpace(username)))
}

func (k UserKey) String() string { return string(k) }
func (k UserKey) IsZero() bool   { return k == "" }

func (k UserKey) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "users",
		ID:    string(k),
	}
}

func (k UserKey) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"users", string(k)},
	})
}

func (k *UserKey) UnmarshalCBOR(data []byte) error {
	s, err := unmarshalCBORKey(data, "users")
	if err != nil {
		return err
	}
	*k = UserKey(s)
	return nil
}

// SettingsKey identifies the settings singleton. Only "app" is used.
type SettingsKey string

const SettingsApp SettingsKey = "app"

func (k SettingsKey) String() string { return string(k) }
func (k SettingsKey) IsZero() bool   { return k == "" }

func (k SettingsKey) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.RecordID{
		Table: "settings",
		ID:    string(k),
	}
}

func (k SettingsKey) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  8,
		Content: []any{"settings", string(k)},
	})
}

func (k *SettingsKey) UnmarshalCBOR(data []byte) error {
	s, err := unmarshalCBORKey(data, "settings")
	if err != nil {
		return err
	}
	*k = SettingsKey(s)
	return nil
}

// CommentID identifies a comment within its task, derived from the creation
// timestamp. Comments are embedded documents, so no RecordID mapping exists.
type CommentID int64

func NewCommentID(t time.Time) CommentID {
	return CommentID(t.UnixMilli())
}

func ParseCommentID(s string) (CommentID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid comment ID: %w", err)
	}
	return CommentID(n), nil
}

func (id CommentID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id CommentID) IsZero() bool   { return id == 0 }

// unmarshalCBORKey is a helper for unmarshaling a SurrealDB RecordID key from CBOR.
// SurrealDB uses CBOR tag 8 to identify RecordID types in its binary protocol,
// encoded as [table_name, id] within the tag. Plain strings and integers are
// accepted as well so values survive round trips through non-record fields.
func unmarshalCBORKey(data []byte, expectedTable string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty CBOR data")
	}

	majorType := data[0] >> 5
	if majorType != 6 {
		// Not a tag: accept a bare string or integer key.
		var s string
		if err := cbor.Unmarshal(data, &s); err == nil {
			return s, nil
		}
		var n int64
		if err := cbor.Unmarshal(data, &n); err == nil {
			return strconv.FormatInt(n, 10), nil
		}
		return "", fmt.Errorf("expected CBOR tag for RecordID, got major type %d", majorType)
	}

	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return "", fmt.Errorf("failed to unmarshal CBOR tag: %w", err)
	}
	if tag.Number != 8 {
		return "", fmt.Errorf("expected RecordID tag (8), got %d", tag.Number)
	}

	arr, ok := tag.Content.([]any)
	if !ok || len(arr) != 2 {
		return "", fmt.Errorf("invalid RecordID format: expected [table, id] array")
	}
	table, ok := arr[0].(string)
	if !ok {
		return "", fmt.Errorf("invalid RecordID format: table name must be string")
	}
	if table != expectedTable {
		return "", fmt.Errorf("expected table %s, got %s", expectedTable, table)
	}

	switch v := arr[1].(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	default:
		return "", fmt.Errorf("invalid RecordID format: unsupported key type %T", arr[1])
	}
}
