// Package kambam wires the Kanban persistence core: the board snapshot, the
// dual-backend store stack, the realtime sync coordinator and the HTTP API.
package kambam

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/joelosiris11/kambam/pkg/store"
	"github.com/joelosiris11/kambam/pkg/store/local"
	"github.com/joelosiris11/kambam/pkg/store/surreal"
)

// Config holds application configuration. An empty SurrealDBURL selects
// local-only mode: the embedded SQLite store serves everything and realtime
// sync stays off.
type Config struct {
	SQLitePath string

	SurrealDBURL  string
	SurrealDBNS   string
	SurrealDBDB   string
	SurrealDBUser string
	SurrealDBPass string

	ServerPort string
	ReadOnly   bool
}

// App holds the application state.
type App struct {
	store    store.Store
	localDB  *local.Store
	board    *Board
	sync     *SyncCoordinator
	config   *Config
	log      zerolog.Logger
	readOnly bool
}

// New builds the store stack and the board. The local SQLite store always
// exists: in remote mode it is the fallback target and the preference home,
// in local mode it is the only backend.
func New(ctx context.Context, config *Config) (*App, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	localStore, err := local.NewStore(config.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := localStore.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	var appStore store.Store = localStore
	if config.SurrealDBURL != "" {
		remote, err := surreal.NewStore(
			ctx,
			config.SurrealDBURL,
			config.SurrealDBNS,
			config.SurrealDBDB,
			config.SurrealDBUser,
			config.SurrealDBPass,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
		}
		logger.Info().Str("url", config.SurrealDBURL).Msg("connected to SurrealDB")
		appStore = store.NewFallbackStore(remote, localStore, logger)
	} else {
		logger.Info().Str("path", config.SQLitePath).Msg("running in local-only mode")
	}

	app := &App{
		localDB:  localStore,
		config:   config,
		log:      logger,
		readOnly: config.ReadOnly,
	}
	app.store = store.NewReadOnlyStore(appStore, app.IsReadOnly)
	app.board = NewBoard(app.store, localStore, logger)
	app.sync = NewSyncCoordinator(app.store, app.board.ReplaceTasks, app.board.ReplaceColumns, logger)

	return app, nil
}

// Close releases the store stack.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// Store returns the wired store, useful for tests.
func (a *App) Store() store.Store { return a.store }

// Board returns the domain state store.
func (a *App) Board() *Board { return a.board }

// SetReadOnly toggles the write guard at runtime, e.g. for maintenance
// windows. The guard is checked on every write, so no restart is needed.
func (a *App) SetReadOnly(readOnly bool) {
	a.readOnly = readOnly
	a.log.Info().Bool("read_only", readOnly).Msg("write guard toggled")
}

// IsReadOnly reports whether writes are currently rejected.
func (a *App) IsReadOnly() bool { return a.readOnly }

// Migrate applies schema migrations on every wired backend.
func (a *App) Migrate(ctx context.Context, cmd *MigrateCommand) error {
	if err := a.store.Migrate(ctx); err != nil {
		return err
	}
	a.log.Info().Msg("migration complete")
	return nil
}

// getEnv returns the environment variable value, or the default when unset
// or empty.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
