// Package models defines the entities shared by every store implementation and
// the HTTP layer: tasks, board columns, users, roles and the settings singleton.
//
// The same structs serve three serialization targets:
//   - JSON for the HTTP API (json tags, snake_case)
//   - CBOR for SurrealDB (typed keys marshal to RecordIDs via tag 8)
//   - SQL for the embedded SQLite store (gorm tags; comments persist as JSON)
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Priority is the urgency bucket of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskType categorizes the kind of work a task represents.
type TaskType string

const (
	TypeGeneral  TaskType = "general"
	TypeCode     TaskType = "code"
	TypeResearch TaskType = "research"
	TypeDesign   TaskType = "design"
	TypeTesting  TaskType = "testing"
	TypeDocs     TaskType = "docs"
	TypeMeeting  TaskType = "meeting"
	TypeBug      TaskType = "bug"
)

func (t TaskType) Valid() bool {
	switch t {
	case TypeGeneral, TypeCode, TypeResearch, TypeDesign, TypeTesting, TypeDocs, TypeMeeting, TypeBug:
		return true
	}
	return false
}

// Well-known column and role slugs referenced across the codebase.
const (
	ColumnBacklog    ColumnID = "backlog"
	ColumnTodo       ColumnID = "todo"
	ColumnInProgress ColumnID = "in-progress"
	ColumnReview     ColumnID = "review"
	ColumnCompleted  ColumnID = "completed"

	RoleAdmin RoleID = "admin"
)

// Comment is a discussion entry embedded in its parent task. Comments have no
// standalone lifecycle: adding or removing one rewrites the task's comments
// array as a whole.
type Comment struct {
	ID        CommentID `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentList persists as a JSON column under GORM and as a plain array in
// SurrealDB documents.
type CommentList []Comment

func (c CommentList) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *CommentList) Scan(value any) error {
	if value == nil {
		*c = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("cannot scan type %T into CommentList", value)
	}
}

// Task is a card on the board. Status references the column the task sits in.
type Task struct {
	ID          TaskID      `json:"id" gorm:"primaryKey"`
	Title       string      `json:"title" gorm:"not null"`
	Description string      `json:"description,omitempty"`
	Status      ColumnID    `json:"status" gorm:"index"`
	Priority    Priority    `json:"priority"`
	Type        TaskType    `json:"type"`
	Hours       float64     `json:"hours"`
	AssignedTo  string      `json:"assigned_to,omitempty"`
	CreatedBy   string      `json:"created_by,omitempty"`
	Validated   bool        `json:"validated"`
	ValidatedBy string      `json:"validated_by,omitempty"`
	Comments    CommentList `json:"comments" gorm:"type:json"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Completed reports whether the task sits in the completed column.
func (t *Task) Completed() bool { return t.Status == ColumnCompleted }

// Column is a board lane. Order is the left-to-right position.
type Column struct {
	ID        ColumnID  `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	Color     string    `json:"color,omitempty"`
	Order     int       `json:"order" gorm:"column:sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is an account on the board. The PIN is a legacy-compatible 4-digit
// plaintext secret inherited from the system this service replaces.
// Temporary users exist only in the active session until a role is confirmed;
// they are never persisted with IsTemporary set.
type User struct {
	Key         UserKey   `json:"key" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"not null"`
	Pin         string    `json:"pin,omitempty"`
	Role        *RoleID   `json:"role"`
	IsTemporary bool      `json:"is_temporary,omitempty" gorm:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Role describes a selectable position with its display metadata.
type Role struct {
	ID          RoleID    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Icon        string    `json:"icon,omitempty"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Color       string    `json:"color,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Settings is the application-wide singleton stored under the key "app".
type Settings struct {
	Key       SettingsKey `json:"key" gorm:"primaryKey"`
	FilesURL  string      `json:"files_url"`
	GitURL    string      `json:"git_url"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// SprintRange is the date window the burndown chart covers. Both bounds are
// inclusive days.
type SprintRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Partial update payloads. A nil field leaves the stored value untouched.
// Fields returns the merge map keyed by document field names for the
// SurrealDB MERGE path; the SQL stores apply patches field by field instead.

type TaskPatch struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Status      *ColumnID    `json:"status,omitempty"`
	Priority    *Priority    `json:"priority,omitempty"`
	Type        *TaskType    `json:"type,omitempty"`
	Hours       *float64     `json:"hours,omitempty"`
	AssignedTo  *string      `json:"assigned_to,omitempty"`
	Validated   *bool        `json:"validated,omitempty"`
	ValidatedBy *string      `json:"validated_by,omitempty"`
	Comments    *CommentList `json:"comments,omitempty"`
}

func (p TaskPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.Priority != nil {
		fields["priority"] = *p.Priority
	}
	if p.Type != nil {
		fields["type"] = *p.Type
	}
	if p.Hours != nil {
		fields["hours"] = *p.Hours
	}
	if p.AssignedTo != nil {
		fields["assigned_to"] = *p.AssignedTo
	}
	if p.Validated != nil {
		fields["validated"] = *p.Validated
	}
	if p.ValidatedBy != nil {
		fields["validated_by"] = *p.ValidatedBy
	}
	if p.Comments != nil {
		fields["comments"] = *p.Comments
	}
	return fields
}

type ColumnPatch struct {
	Title *string `json:"title,omitempty"`
	Color *string `json:"color,omitempty"`
	Order *int    `json:"order,omitempty"`
}

func (p ColumnPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Color != nil {
		fields["color"] = *p.Color
	}
	if p.Order != nil {
		fields["order"] = *p.Order
	}
	return fields
}

type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Pin      *string `json:"pin,omitempty"`
	Role     *RoleID `json:"role,omitempty"`
}

func (p UserPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Username != nil {
		fields["username"] = *p.Username
	}
	if p.Pin != nil {
		fields["pin"] = *p.Pin
	}
	if p.Role != nil {
		fields["role"] = *p.Role
	}
	return fields
}

type RolePatch struct {
	Name        *string `json:"name,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (p RolePatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Icon != nil {
		fields["icon"] = *p.Icon
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.Color != nil {
		fields["color"] = *p.Color
	}
	if p.IsActive != nil {
		fields["is_active"] = *p.IsActive
	}
	return fields
}

type SettingsPatch struct {
	FilesURL *string `json:"files_url,omitempty"`
	GitURL   *string `json:"git_url,omitempty"`
}

func (p SettingsPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.FilesURL != nil {
		fields["files_url"] = *p.FilesURL
	}
	if p.GitURL != nil {
		fields["git_url"] = *p.GitURL
	}
	return fields
}

// Canonical collection orderings. Every read path and every subscription
// delivery goes through these, so consumers can rely on stable positions.

// SortTasks orders tasks newest first.
func SortTasks(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

// SortColumns orders columns left to right.
func SortColumns(columns []*Column) {
	sort.SliceStable(columns, func(i, j int) bool {
		return columns[i].Order < columns[j].Order
	})
}

// SortRoles groups roles by category, then name.
func SortRoles(roles []*Role) {
	sort.SliceStable(roles, func(i, j int) bool {
		if roles[i].Category != roles[j].Category {
			return roles[i].Category < roles[j].Category
		}
		return roles[i].Name < roles[j].Name
	})
}
