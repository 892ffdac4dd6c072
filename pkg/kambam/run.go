package kambam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/joelosiris11/kambam/pkg/models"
)

// Run loads the board, starts realtime sync and serves the HTTP API until the
// context is cancelled.
func (a *App) Run(ctx context.Context, cmd *RunCommand) error {
	if err := a.board.Load(ctx); err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	if err := a.ensureColumns(ctx); err != nil {
		return fmt.Errorf("failed to install default columns: %w", err)
	}
	if err := a.sync.Start(ctx); err != nil {
		return fmt.Errorf("failed to start realtime sync: %w", err)
	}
	defer a.sync.Stop()

	server := &http.Server{
		Addr:    ":" + a.config.ServerPort,
		Handler: a.Router(),
	}

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// ensureColumns installs the standard lanes on a board that has none, so a
// fresh instance is usable without running seed first.
func (a *App) ensureColumns(ctx context.Context) error {
	if len(a.board.Columns()) > 0 {
		return nil
	}
	a.log.Info().Msg("no columns found, installing default lanes")
	for _, column := range models.DefaultColumns(time.Now()) {
		if err := a.store.CreateColumn(ctx, column); err != nil {
			return err
		}
	}
	return a.board.refreshColumns(ctx)
}

// Router builds the API router. Exposed so tests can drive the handlers with
// httptest without binding a port.
func (a *App) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogger(a.log))

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", a.handleHealth).Methods(http.MethodGet)

	api.HandleFunc("/auth/login", a.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/role", a.handleConfirmRole).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", a.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", a.handleMe).Methods(http.MethodGet)

	api.HandleFunc("/tasks", a.handleListTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", a.handleCreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}", a.handleGetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}", a.handleUpdateTask).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{id}", a.handleDeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/move", a.handleMoveTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/validate", a.handleValidateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/comments", a.handleAddComment).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/comments/{commentID}", a.handleDeleteComment).Methods(http.MethodDelete)

	api.HandleFunc("/columns", a.handleListColumns).Methods(http.MethodGet)
	api.HandleFunc("/columns", a.handleCreateColumn).Methods(http.MethodPost)
	api.HandleFunc("/columns/{id}", a.handleUpdateColumn).Methods(http.MethodPatch)
	api.HandleFunc("/columns/{id}", a.handleDeleteColumn).Methods(http.MethodDelete)

	api.HandleFunc("/roles", a.handleListRoles).Methods(http.MethodGet)
	api.HandleFunc("/roles", a.handleCreateRole).Methods(http.MethodPost)
	api.HandleFunc("/roles/{id}", a.handleUpdateRole).Methods(http.MethodPatch)
	api.HandleFunc("/roles/{id}", a.handleDeleteRole).Methods(http.MethodDelete)
	api.HandleFunc("/roles/{id}/active", a.handleSetRoleActive).Methods(http.MethodPost)

	api.HandleFunc("/settings", a.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", a.handleUpdateSettings).Methods(http.MethodPatch)

	api.HandleFunc("/stats", a.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/leaderboard", a.handleLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/stats/burndown", a.handleBurndown).Methods(http.MethodGet)
	api.HandleFunc("/sprint", a.handleGetSprint).Methods(http.MethodGet)
	api.HandleFunc("/sprint", a.handleSetSprint).Methods(http.MethodPut)

	return router
}
