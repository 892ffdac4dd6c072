package kambam

import (
	"context"
	"strings"
	"time"

	"github.com/joelosiris11/kambam/pkg/models"
	"github.com/joelosiris11/kambam/pkg/store"
)

// Role catalogue management. Reading the catalogue is open; changing it is an
// admin operation.

// Roles lists the role catalogue in canonical order.
func (b *Board) Roles(ctx context.Context) ([]*models.Role, error) {
	return b.store.ListRoles(ctx)
}

// CreateRole adds a role to the catalogue. The id is derived from the name
// when absent.
func (b *Board) CreateRole(ctx context.Context, input *models.Role) (*models.Role, error) {
	if err := b.requireAdmin(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, invalidf("name", "must not be empty")
	}

	role := *input
	if role.ID.IsZero() {
		role.ID = models.RoleID(slugify(role.Name))
	}
	now := time.Now()
	role.CreatedAt = now
	role.UpdatedAt = now

	if err := b.store.CreateRole(ctx, &role); err != nil {
		return nil, err
	}
	return b.store.GetRole(ctx, role.ID)
}

// UpdateRole patches a catalogue entry.
func (b *Board) UpdateRole(ctx context.Context, id models.RoleID, patch models.RolePatch) (*models.Role, error) {
	if err := b.requireAdmin(); err != nil {
		return nil, err
	}
	return b.store.UpdateRole(ctx, id, patch)
}

// SetRoleActive toggles whether a role is offered during role confirmation.
// Users already holding the role keep it.
func (b *Board) SetRoleActive(ctx context.Context, id models.RoleID, active bool) (*models.Role, error) {
	if err := b.requireAdmin(); err != nil {
		return nil, err
	}
	return b.store.UpdateRole(ctx, id, models.RolePatch{IsActive: &active})
}

// DeleteRole removes a catalogue entry. Users holding the role keep their
// assignment; only the catalogue changes.
func (b *Board) DeleteRole(ctx context.Context, id models.RoleID) error {
	if err := b.requireAdmin(); err != nil {
		return err
	}
	role, err := b.store.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if role == nil {
		return store.ErrNotFound
	}
	return b.store.DeleteRole(ctx, id)
}

// Settings returns the application settings, creating the defaults on first
// access.
func (b *Board) Settings(ctx context.Context) (*models.Settings, error) {
	return b.store.GetSettings(ctx)
}

// UpdateSettings patches the application settings.
func (b *Board) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error) {
	if err := b.requireAdmin(); err != nil {
		return nil, err
	}
	return b.store.UpdateSettings(ctx, patch)
}
