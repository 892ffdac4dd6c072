package kambam

import (
	"context"
	"strings"
	"time"

	"github.com/joelosiris11/kambam/pkg/models"
)

// Session management. The board holds a single active session, persisted in
// local preferences so it survives a restart.
//
// Login identifies users by lowercase username and a 4-digit PIN. A username
// nobody has used yet produces a temporary user that lives only in the
// session; it is persisted the moment a role is confirmed. The PIN stays
// plaintext for compatibility with the data this service inherits.

// Session returns a copy of the active session user, or nil.
func (b *Board) Session() *models.User {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.session == nil {
		return nil
	}
	clone := *b.session
	return &clone
}

func (b *Board) setSession(ctx context.Context, user *models.User) {
	b.mu.Lock()
	b.session = user
	b.mu.Unlock()

	var err error
	if user == nil {
		err = b.prefs.ClearActiveSession(ctx)
	} else {
		err = b.prefs.SaveActiveSession(ctx, user)
	}
	if err != nil {
		b.log.Warn().Err(err).Msg("could not persist session preference")
	}
}

// Login signs a user in, creating a temporary user when the username is new.
func (b *Board) Login(ctx context.Context, username, pin string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalidf("username", "must not be empty")
	}
	if !pinPattern.MatchString(pin) {
		return nil, invalidf("pin", "must be exactly 4 digits")
	}

	key := models.NewUserKey(username)
	existing, err := b.store.GetUser(ctx, key)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if existing.Pin != pin {
			return nil, ErrInvalidCredentials
		}
		b.setSession(ctx, existing)
		b.log.Info().Str("username", existing.Username).Msg("user signed in")
		clone := *existing
		return &clone, nil
	}

	now := time.Now()
	user := &models.User{
		Key:         key,
		Username:    username,
		Pin:         pin,
		IsTemporary: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.setSession(ctx, user)
	b.log.Info().Str("username", username).Msg("temporary user signed in, awaiting role confirmation")
	clone := *user
	return &clone, nil
}

// ConfirmRole assigns a role to the active session. For a temporary user this
// is the moment the account is actually persisted.
func (b *Board) ConfirmRole(ctx context.Context, roleID models.RoleID) (*models.User, error) {
	session := b.Session()
	if session == nil {
		return nil, ErrNotSignedIn
	}

	role, err := b.store.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, invalidf("role", "unknown role %q", roleID)
	}

	var user *models.User
	if session.IsTemporary {
		session.Role = &roleID
		session.IsTemporary = false
		if err := b.store.CreateUser(ctx, session); err != nil {
			return nil, err
		}
		user, err = b.store.GetUser(ctx, session.Key)
		if err != nil {
			return nil, err
		}
	} else {
		user, err = b.store.UpdateUser(ctx, session.Key, models.UserPatch{Role: &roleID})
		if err != nil {
			return nil, err
		}
	}

	b.setSession(ctx, user)
	b.log.Info().Str("username", user.Username).Str("role", roleID.String()).Msg("role confirmed")
	clone := *user
	return &clone, nil
}

// Logout clears the active session. User data is untouched.
func (b *Board) Logout(ctx context.Context) {
	b.setSession(ctx, nil)
}
