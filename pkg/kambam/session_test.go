package kambam

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelosiris11/kambam/pkg/models"
)

func TestLoginCreatesTemporaryUser(t *testing.T) {
	board, mem := newTestBoard(t)
	ctx := context.Background()

	user, err := board.Login(ctx, "Carla", "4321")
	require.NoError(t, err)
	assert.True(t, user.IsTemporary)
	assert.Equal(t, "Carla", user.Username)
	assert.Equal(t, models.NewUserKey("Carla"), user.Key)

	// Temporary users are not persisted until a role is confirmed.
	stored, err := mem.GetUser(ctx, user.Key)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestLoginValidation(t *testing.T) {
	board, _ := newTestBoard(t)
	ctx := context.Background()

	var verr *ValidationError
	_, err := board.Login(ctx, "  ", "1234")
	require.ErrorAs(t, err, &verr)

	_, err = board.Login(ctx, "carla", "123")
	require.ErrorAs(t, err, &verr)

	_, err = board.Login(ctx, "carla", "12a4")
	require.ErrorAs(t, err, &verr)
}

func TestLoginRejectsWrongPin(t *testing.T) {
	board, _ := newTestBoard(t)
	ctx := context.Background()
	signIn(t, board, "carla", "developer")

	_, err := board.Login(ctx, "carla", "9999")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestConfirmRolePersistsTemporaryUser(t *testing.T) {
	board, mem := newTestBoard(t)
	ctx := context.Background()

	_, err := board.Login(ctx, "carla", "4321")
	require.NoError(t, err)

	user, err := board.ConfirmRole(ctx, "developer")
	require.NoError(t, err)
	assert.False(t, user.IsTemporary)
	require.NotNil(t, user.Role)
	assert.Equal(t, models.RoleID("developer"), *user.Role)

	stored, err := mem.GetUser(ctx, user.Key)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "4321", stored.Pin)
}

func TestConfirmRoleRequiresSessionAndKnownRole(t *testing.T) {
	board, _ := newTestBoard(t)
	ctx := context.Background()

	_, err := board.ConfirmRole(ctx, "developer")
	assert.ErrorIs(t, err, ErrNotSignedIn)

	_, err = board.Login(ctx, "carla", "4321")
	require.NoError(t, err)
	_, err = board.ConfirmRole(ctx, "astronaut")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSessionPersistsAcrossLoad(t *testing.T) {
	board, mem := newTestBoard(t)
	ctx := context.Background()
	signIn(t, board, "carla", "developer")

	// A second board over the same store restores the session.
	reopened := NewBoard(mem, mem, board.log)
	require.NoError(t, reopened.Load(ctx))
	session := reopened.Session()
	require.NotNil(t, session)
	assert.Equal(t, "carla", session.Username)

	board.Logout(ctx)
	require.NoError(t, reopened.Load(ctx))
	assert.Nil(t, reopened.Session())
}
