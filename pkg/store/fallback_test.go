package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelosiris11/kambam/pkg/models"
	"github.com/joelosiris11/kambam/pkg/store"
	"github.com/joelosiris11/kambam/pkg/store/memory"
)

var errDown = errors.New("connection refused")

func newFallback() (*store.FallbackStore, *memory.Store, *memory.Store) {
	remote := memory.NewStore()
	local := memory.NewStore()
	return store.NewFallbackStore(remote, local, zerolog.Nop()), remote, local
}

func TestFallbackMirrorsSuccessfulWrites(t *testing.T) {
	fb, remote, local := newFallback()
	ctx := context.Background()

	task := &models.Task{ID: 1, Title: "replicated"}
	require.NoError(t, fb.CreateTask(ctx, task))

	fromRemote, err := remote.GetTask(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, fromRemote)

	fromLocal, err := local.GetTask(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, fromLocal)
	assert.Equal(t, "replicated", fromLocal.Title)
}

func TestFallbackWriteDuringOutage(t *testing.T) {
	fb, remote, local := newFallback()
	ctx := context.Background()

	remote.Fail(errDown)
	require.NoError(t, fb.CreateTask(ctx, &models.Task{ID: 2, Title: "offline"}))

	// The write landed locally and stays retrievable through the facade.
	fromLocal, err := local.GetTask(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, fromLocal)

	got, err := fb.GetTask(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "offline", got.Title)
}

func TestFallbackReadDuringOutage(t *testing.T) {
	fb, remote, _ := newFallback()
	ctx := context.Background()

	require.NoError(t, fb.CreateTask(ctx, &models.Task{ID: 3, Title: "warm copy"}))
	remote.Fail(errDown)

	tasks, err := fb.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "warm copy", tasks[0].Title)
}

func TestFallbackDomainErrorsDoNotFailOver(t *testing.T) {
	fb, _, local := newFallback()
	ctx := context.Background()

	// The task exists only locally. A remote miss must not fall back.
	require.NoError(t, local.CreateTask(ctx, &models.Task{ID: 4, Title: "local only"}))

	got, err := fb.GetTask(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = fb.UpdateTask(ctx, 4, models.TaskPatch{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFallbackUpdateMirrorsConfirmedState(t *testing.T) {
	fb, _, local := newFallback()
	ctx := context.Background()

	require.NoError(t, fb.CreateTask(ctx, &models.Task{ID: 5, Title: "before"}))

	title := "after"
	_, err := fb.UpdateTask(ctx, 5, models.TaskPatch{Title: &title})
	require.NoError(t, err)

	fromLocal, err := local.GetTask(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, fromLocal)
	assert.Equal(t, "after", fromLocal.Title)
}

func TestReadOnlyStoreBlocksWrites(t *testing.T) {
	mem := memory.NewStore()
	ctx := context.Background()

	readOnly := true
	guarded := store.NewReadOnlyStore(mem, func() bool { return readOnly })

	err := guarded.CreateTask(ctx, &models.Task{ID: 6, Title: "nope"})
	assert.ErrorIs(t, err, store.ErrReadOnly)

	// Reads still work.
	_, err = guarded.ListTasks(ctx)
	require.NoError(t, err)

	readOnly = false
	require.NoError(t, guarded.CreateTask(ctx, &models.Task{ID: 6, Title: "now it lands"}))
}
