package kambam

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/joelosiris11/kambam/pkg/models"
	"github.com/joelosiris11/kambam/pkg/store"
)

// SyncState is the lifecycle position of the realtime coordinator.
type SyncState int32

const (
	SyncInactive SyncState = iota
	SyncSubscribing
	SyncActive
	SyncUnsubscribed
)

func (s SyncState) String() string {
	switch s {
	case SyncInactive:
		return "inactive"
	case SyncSubscribing:
		return "subscribing"
	case SyncActive:
		return "active"
	case SyncUnsubscribed:
		return "unsubscribed"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// SyncCoordinator owns the realtime subscriptions for tasks and columns and
// forwards pushed collections to the board snapshot.
//
// Teardown is racy by nature: a notification can already be in flight when
// Stop runs. The guard flag is flipped before the subscriptions are killed,
// and every delivery checks it, so late notifications are discarded instead
// of resurrecting stale state.
type SyncCoordinator struct {
	store store.Store
	log   zerolog.Logger

	onTasks   func([]*models.Task)
	onColumns func([]*models.Column)

	mu     sync.Mutex
	state  SyncState
	active atomic.Bool
	unsubs []store.Unsubscribe
}

func NewSyncCoordinator(
	st store.Store,
	onTasks func([]*models.Task),
	onColumns func([]*models.Column),
	logger zerolog.Logger,
) *SyncCoordinator {
	return &SyncCoordinator{
		store:     st,
		log:       logger.With().Str("component", "sync").Logger(),
		onTasks:   onTasks,
		onColumns: onColumns,
	}
}

// State returns the current lifecycle position.
func (c *SyncCoordinator) State() SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start opens the live subscriptions. A backend without realtime support
// leaves the coordinator inactive without error; the board then only changes
// through its own confirm-then-reflect writes.
func (c *SyncCoordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == SyncSubscribing || c.state == SyncActive {
		return fmt.Errorf("sync coordinator already started")
	}
	c.state = SyncSubscribing
	c.active.Store(true)

	unsubTasks, err := c.store.SubscribeTasks(ctx, func(tasks []*models.Task) {
		if !c.active.Load() {
			return
		}
		c.onTasks(tasks)
	})
	if err != nil {
		c.active.Store(false)
		c.state = SyncInactive
		if errors.Is(err, store.ErrRealtimeUnavailable) {
			c.log.Info().Msg("backend has no realtime support, staying inactive")
			return nil
		}
		return fmt.Errorf("failed to subscribe to tasks: %w", err)
	}

	unsubColumns, err := c.store.SubscribeColumns(ctx, func(columns []*models.Column) {
		if !c.active.Load() {
			return
		}
		c.onColumns(columns)
	})
	if err != nil {
		c.active.Store(false)
		c.state = SyncInactive
		if kerr := unsubTasks(); kerr != nil {
			c.log.Warn().Err(kerr).Msg("failed to tear down task subscription")
		}
		if errors.Is(err, store.ErrRealtimeUnavailable) {
			c.log.Info().Msg("backend has no realtime support, staying inactive")
			return nil
		}
		return fmt.Errorf("failed to subscribe to columns: %w", err)
	}

	c.unsubs = []store.Unsubscribe{unsubTasks, unsubColumns}
	c.state = SyncActive
	c.log.Info().Msg("realtime sync active")
	return nil
}

// Stop tears down the subscriptions. The guard flag flips first so any
// notification racing the teardown is dropped.
func (c *SyncCoordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != SyncActive && c.state != SyncSubscribing {
		return
	}
	c.active.Store(false)

	for _, unsub := range c.unsubs {
		if err := unsub(); err != nil {
			c.log.Warn().Err(err).Msg("failed to tear down subscription")
		}
	}
	c.unsubs = nil
	c.state = SyncUnsubscribed
	c.log.Info().Msg("realtime sync stopped")
}
