package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelosiris11/kambam/pkg/models"
	"github.com/joelosiris11/kambam/pkg/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTaskCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := &models.Task{
		ID:       1700000000000,
		Title:    "persist me",
		Status:   models.ColumnTodo,
		Priority: models.PriorityHigh,
		Type:     models.TypeCode,
		Hours:    3,
		Comments: models.CommentList{{ID: 1, Text: "hola", Author: "ana", CreatedAt: time.Now().UTC()}},
	}
	require.NoError(t, s.CreateTask(ctx, task))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "persist me", got.Title)
	require.Len(t, got.Comments, 1, "comments survive the JSON column round trip")
	assert.Equal(t, "hola", got.Comments[0].Text)

	title := "renamed"
	updated, err := s.UpdateTask(ctx, task.ID, models.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	_, err = s.UpdateTask(ctx, 999, models.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteTask(ctx, task.ID))
	gone, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Deleting again is a no-op.
	require.NoError(t, s.DeleteTask(ctx, task.ID))
}

func TestCreateTaskOverwritesByNaturalKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: 7, Title: "first"}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: 7, Title: "second"}))

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "second", tasks[0].Title)
}

func TestListTasksNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: 1, Title: "old", CreatedAt: base}))
	require.NoError(t, s.CreateTask(ctx, &models.Task{ID: 2, Title: "new", CreatedAt: base.Add(time.Hour)}))

	tasks, err := s.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "new", tasks[0].Title)
}

func TestColumnsOrderedByPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateColumn(ctx, &models.Column{ID: "right", Title: "Right", Order: 1}))
	require.NoError(t, s.CreateColumn(ctx, &models.Column{ID: "left", Title: "Left", Order: 0}))

	columns, err := s.ListColumns(ctx)
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, models.ColumnID("left"), columns[0].ID)
}

func TestSubscriptionsUnavailable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SubscribeTasks(ctx, func([]*models.Task) {})
	assert.ErrorIs(t, err, store.ErrRealtimeUnavailable)
	_, err = s.SubscribeColumns(ctx, func([]*models.Column) {})
	assert.ErrorIs(t, err, store.ErrRealtimeUnavailable)
}

func TestSettingsLazyDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SettingsApp, settings.Key)
	assert.NotEmpty(t, settings.GitURL)

	url := "https://example.com/repo"
	updated, err := s.UpdateSettings(ctx, models.SettingsPatch{GitURL: &url})
	require.NoError(t, err)
	assert.Equal(t, url, updated.GitURL)
}

func TestPreferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session, err := s.ActiveSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	role := models.RoleID("developer")
	user := &models.User{Key: "ana", Username: "ana", Pin: "1234", Role: &role}
	require.NoError(t, s.SaveActiveSession(ctx, user))

	session, err = s.ActiveSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "ana", session.Username)
	require.NotNil(t, session.Role)
	assert.Equal(t, role, *session.Role)

	require.NoError(t, s.ClearActiveSession(ctx))
	session, err = s.ActiveSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	sprint, err := s.SprintRange(ctx)
	require.NoError(t, err)
	assert.Nil(t, sprint)

	want := models.SprintRange{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.SaveSprintRange(ctx, want))
	sprint, err = s.SprintRange(ctx)
	require.NoError(t, err)
	require.NotNil(t, sprint)
	assert.Equal(t, want, *sprint)
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "Ana", Pin: "1234"}))

	got, err := s.GetUser(ctx, models.NewUserKey("ana"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Role)

	role := models.RoleID("qa")
	updated, err := s.UpdateUser(ctx, got.Key, models.UserPatch{Role: &role})
	require.NoError(t, err)
	require.NotNil(t, updated.Role)
	assert.Equal(t, role, *updated.Role)
}
