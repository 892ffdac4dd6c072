package kambam

import (
	"context"
	"time"

	"github.com/joelosiris11/kambam/pkg/models"
)

// Seed installs the default board data: the five lanes, the role catalogue,
// the application settings and, on an empty board, the welcome task. Every
// write is a natural-key upsert, so seeding an already seeded board only
// refreshes the defaults it previously wrote.
func (a *App) Seed(ctx context.Context, cmd *SeedCommand) error {
	now := time.Now()

	for _, column := range models.DefaultColumns(now) {
		if err := a.store.CreateColumn(ctx, column); err != nil {
			return err
		}
	}
	a.log.Info().Msg("seeded default columns")

	for _, role := range models.DefaultRoles(now) {
		if err := a.store.CreateRole(ctx, role); err != nil {
			return err
		}
	}
	a.log.Info().Msg("seeded role catalogue")

	// GetSettings installs the defaults when no settings document exists.
	if _, err := a.store.GetSettings(ctx); err != nil {
		return err
	}

	tasks, err := a.store.ListTasks(ctx)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		if err := a.store.CreateTask(ctx, models.WelcomeTask(now)); err != nil {
			return err
		}
		a.log.Info().Msg("seeded welcome task")
	}

	a.log.Info().Msg("seed complete")
	return nil
}
