package kambam

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelosiris11/kambam/pkg/store/memory"
)

func TestSeedIsIdempotent(t *testing.T) {
	mem := memory.NewStore()
	app := &App{store: mem, log: zerolog.Nop()}
	ctx := context.Background()

	require.NoError(t, app.Seed(ctx, &SeedCommand{}))
	require.NoError(t, app.Seed(ctx, &SeedCommand{}))

	columns, err := mem.ListColumns(ctx)
	require.NoError(t, err)
	assert.Len(t, columns, 5)

	roles, err := mem.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 16)

	tasks, err := mem.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "¡Bienvenido a Kanban JCE!", tasks[0].Title)

	settings, err := mem.GetSettings(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, settings.GitURL)
}
