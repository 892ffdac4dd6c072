package surreal

import (
	"context"
	"fmt"
	"sync"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/joelosiris11/kambam/pkg/models"
	"github.com/joelosiris11/kambam/pkg/store"
)

// Live subscriptions. A notification only tells us that something changed in
// the table; the contract is to hand subscribers the complete re-sorted
// collection, so every notification triggers a fresh list. That keeps
// subscribers free of merge logic at the cost of one query per change.

func (s *Store) SubscribeTasks(ctx context.Context, fn func([]*models.Task)) (store.Unsubscribe, error) {
	return subscribeTable(ctx, s, "tasks", s.ListTasks, fn)
}

func (s *Store) SubscribeColumns(ctx context.Context, fn func([]*models.Column)) (store.Unsubscribe, error) {
	return subscribeTable(ctx, s, "columns", s.ListColumns, fn)
}

func subscribeTable[T any](
	ctx context.Context,
	s *Store,
	table string,
	list func(context.Context) ([]*T, error),
	fn func([]*T),
) (store.Unsubscribe, error) {
	live, err := surrealdb.Live(ctx, s.db, surrealmodels.Table(table), false)
	if err != nil {
		return nil, fmt.Errorf("failed to start live query on %s: %w", table, err)
	}

	notifications, err := s.db.LiveNotifications(live.String())
	if err != nil {
		// Best effort: the live query exists but we cannot consume it.
		_ = surrealdb.Kill(context.Background(), s.db, live.String())
		return nil, fmt.Errorf("failed to open notification channel for %s: %w", table, err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case _, ok := <-notifications:
				if !ok {
					// Kill closes the channel.
					return
				}
				items, err := list(context.Background())
				if err != nil {
					// A failed refresh drops this delivery; the next
					// change triggers another attempt.
					continue
				}
				fn(items)
			}
		}
	}()

	var once sync.Once
	return func() error {
		var err error
		once.Do(func() {
			close(done)
			err = surrealdb.Kill(context.Background(), s.db, live.String())
		})
		return err
	}, nil
}
