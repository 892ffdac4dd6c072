package kambam

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

// captureStore wraps the memory store to capture the registered callbacks so
// tests can fire notifications by hand.
type captureStore struct {
	*memory.Store
	taskFn   func([]*models.Task)
	columnFn func([]*models.Column)
	subErr   error
}

func (c *captureStore) SubscribeTasks(ctx context.Context, fn func([]*models.Task)) (store.Unsubscribe, error) {
	if c.subErr != nil {
		return nil, c.subErr
	}
	c.taskFn = fn
	return func() error { return nil }, nil
}

func (c *captureStore) SubscribeColumns(ctx context.Context, fn func([]*models.Column)) (store.Unsubscribe, error) {
	if c.subErr != nil {
		return nil, c.subErr
	}
	c.columnFn = fn
	return func() error { return nil }, nil
}

func TestSyncCoordinatorLifecycle(t *testing.T) {
	cs := &captureStore{Store: memory.NewStore()}
	var got []*models.Task
	c := NewSyncCoordinator(cs, func(tasks []*models.Task) { got = tasks }, func([]*models.Column) {}, zerolog.Nop())

	assert.Equal(t, SyncInactive, c.State())
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, SyncActive, c.State())

	cs.taskFn([]*models.Task{{ID: 1, Title: "pushed"}})
	require.Len(t, got, 1)

	c.Stop()
	assert.Equal(t, SyncUnsubscribed, c.State())
}

func TestSyncCoordinatorDropsLateNotifications(t *testing.T) {
	cs := &captureStore{Store: memory.NewStore()}
	delivered := 0
	c := NewSyncCoordinator(cs, func([]*models.Task) { delivered++ }, func([]*models.Column) {}, zerolog.Nop())

	require.NoError(t, c.Start(context.Background()))
	c.Stop()

	// A notification racing the teardown must not reach the board.
	cs.taskFn([]*models.Task{{ID: 1}})
	assert.Zero(t, delivered)
}

func TestSyncCoordinatorInactiveWithoutRealtime(t *testing.T) {
	cs := &captureStore{Store: memory.NewStore(), subErr: store.ErrRealtimeUnavailable}
	c := NewSyncCoordinator(cs, func([]*models.Task) {}, func([]*models.Column) {}, zerolog.Nop())

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, SyncInactive, c.State())

	// An inactive coordinator may be started again later.
	cs.subErr = nil
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, SyncActive, c.State())
}

func TestSyncCoordinatorSubscribeFailure(t *testing.T) {
	cs := &captureStore{Store: memory.NewStore(), subErr: errors.New("socket closed")}
	c := NewSyncCoordinator(cs, func([]*models.Task) {}, func([]*models.Column) {}, zerolog.Nop())

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, SyncInactive, c.State())
}

func TestSyncCoordinatorDoubleStart(t *testing.T) {
	cs := &captureStore{Store: memory.NewStore()}
	c := NewSyncCoordinator(cs, func([]*models.Task) {}, func([]*models.Column) {}, zerolog.Nop())

	require.NoError(t, c.Start(context.Background()))
	assert.Error(t, c.Start(context.Background()))
}

func TestMemoryStorePushesToBoard(t *testing.T) {
	board, mem := newTestBoard(t)
	ctx := context.Background()

	c := NewSyncCoordinator(mem, board.ReplaceTasks, board.ReplaceColumns, zerolog.Nop())
	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	// A write that bypasses the board still lands in the snapshot.
	require.NoError(t, mem.CreateTask(ctx, &models.Task{ID: 42, Title: "out of band"}))
	tasks := board.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, models.TaskID(42), tasks[0].ID)
}
