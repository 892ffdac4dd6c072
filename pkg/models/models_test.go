package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserKeyNormalizes(t *testing.T) {
	assert.Equal(t, UserKey("carla"), NewUserKey("  Carla "))
	assert.Equal(t, UserKey("josé"), NewUserKey("JOSÉ"))
}

func TestSortTasksNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tasks := []*Task{
		{ID: 1, CreatedAt: base},
		{ID: 3, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 2, CreatedAt: base.Add(time.Hour)},
	}
	SortTasks(tasks)
	assert.Equal(t, TaskID(3), tasks[0].ID)
	assert.Equal(t, TaskID(1), tasks[2].ID)
}

func TestSortColumnsByOrder(t *testing.T) {
	columns := []*Column{
		{ID: "c", Order: 2},
		{ID: "a", Order: 0},
		{ID: "b", Order: 1},
	}
	SortColumns(columns)
	assert.Equal(t, ColumnID("a"), columns[0].ID)
	assert.Equal(t, ColumnID("c"), columns[2].ID)
}

func TestSortRolesByCategoryThenName(t *testing.T) {
	roles := []*Role{
		{ID: "z", Category: "Soporte", Name: "Z"},
		{ID: "b", Category: "Análisis", Name: "B"},
		{ID: "a", Category: "Análisis", Name: "A"},
	}
	SortRoles(roles)
	assert.Equal(t, RoleID("a"), roles[0].ID)
	assert.Equal(t, RoleID("b"), roles[1].ID)
	assert.Equal(t, RoleID("z"), roles[2].ID)
}

func TestCommentListSQLRoundTrip(t *testing.T) {
	list := CommentList{{ID: 7, Text: "hola", Author: "ana", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}}

	value, err := list.Value()
	require.NoError(t, err)

	var decoded CommentList
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 1)
	assert.Equal(t, list[0], decoded[0])

	var empty CommentList
	emptyValue, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", emptyValue)
}

func TestTaskIDRecordID(t *testing.T) {
	id := TaskID(1700000000000)
	rid := id.RecordID()
	assert.Equal(t, "tasks", rid.Table)

	parsed, err := ParseTaskID("1700000000000")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseTaskID("not-a-number")
	assert.Error(t, err)
}

func TestDefaultSeedData(t *testing.T) {
	now := time.Now()

	columns := DefaultColumns(now)
	require.Len(t, columns, 5)
	assert.Equal(t, ColumnBacklog, columns[0].ID)
	assert.Equal(t, ColumnCompleted, columns[4].ID)
	for i, c := range columns {
		assert.Equal(t, i, c.Order)
	}

	roles := DefaultRoles(now)
	require.Len(t, roles, 16)
	seen := map[RoleID]bool{}
	for _, r := range roles {
		assert.False(t, seen[r.ID], "duplicate role %s", r.ID)
		seen[r.ID] = true
		assert.True(t, r.IsActive)
	}
	assert.True(t, seen[RoleAdmin])

	welcome := WelcomeTask(now)
	assert.Equal(t, ColumnTodo, welcome.Status)
	assert.Equal(t, "sistema", welcome.CreatedBy)
	require.Len(t, welcome.Comments, 1)
}
