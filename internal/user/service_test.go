// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptforge/storefront/internal/core"
)

type fakeRepo struct {
	users map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*User)}
}

func (f *fakeRepo) Create(_ context.Context, user *User) error {
	stored := *user
	stored.CreatedAt = time.Now()
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	stored, ok := f.users[id]
	if !ok || stored.IsDeleted() {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	found := *stored
	return &found, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, stored := range f.users {
		if stored.Email == email && !stored.IsDeleted() {
			found := *stored
			return &found, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

// Update mirrors the statement: name only, never role.
func (f *fakeRepo) Update(_ context.Context, user *User) error {
	stored, ok := f.users[user.ID]
	if !ok || stored.IsDeleted() {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	stored.Name = user.Name
	stored.UpdatedAt = time.Now()
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	stored, ok := f.users[id]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	stored.PasswordHash = passwordHash
	return nil
}

func (f *fakeRepo) MarkVerified(_ context.Context, id string) error {
	stored, ok := f.users[id]
	if !ok {
		return fmt.Errorf("mark verified: %w", core.ErrNotFound)
	}
	stored.Verified = true
	return nil
}

func (f *fakeRepo) SetNewsletter(_ context.Context, id string, subscribed bool) error {
	stored, ok := f.users[id]
	if !ok {
		return fmt.Errorf("set newsletter: %w", core.ErrNotFound)
	}
	stored.Newsletter = subscribed
	return nil
}

func (f *fakeRepo) SetCartSnapshot(_ context.Context, id string, snapshot CartSnapshot) error {
	stored, ok := f.users[id]
	if !ok {
		return fmt.Errorf("set cart snapshot: %w", core.ErrNotFound)
	}
	stored.CartSnapshot = snapshot
	return nil
}

func (f *fakeRepo) IncrementTokenVersion(_ context.Context, id string) error {
	stored, ok := f.users[id]
	if !ok {
		return fmt.Errorf("increment token version: %w", core.ErrNotFound)
	}
	stored.TokenVersion++
	return nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id string) error {
	stored, ok := f.users[id]
	if !ok || stored.IsDeleted() {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}
	now := time.Now()
	stored.DeletedAt = &now
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ ListUsersParams) ([]User, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(context.Background(), email)
	return err == nil, nil
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestRoleFixedAtCreation(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	info, err := svc.Create(ctx, "admin@shop.test", "hash", "Admin", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, info.Role)

	updated, err := svc.UpdateUser(ctx, info.ID, UpdateUserRequest{Name: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, RoleAdmin, updated.Role)

	stored, err := repo.GetByID(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, stored.Role)
}

func TestUpdateSettingsKeepsRole(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	info, err := svc.Create(ctx, "buyer@shop.test", "hash", "Buyer", RoleUser)
	require.NoError(t, err)

	updated, err := svc.UpdateSettings(ctx, info.ID, UpdateSettingsRequest{
		Newsletter: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, updated.Newsletter)
	assert.Equal(t, RoleUser, updated.Role)
}

func TestMarkVerifiedIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	info, err := svc.Create(ctx, "buyer@shop.test", "hash", "Buyer", RoleUser)
	require.NoError(t, err)

	require.NoError(t, svc.MarkVerified(ctx, info.ID))
	require.NoError(t, svc.MarkVerified(ctx, info.ID))

	stored, err := repo.GetByID(ctx, info.ID)
	require.NoError(t, err)
	assert.True(t, stored.Verified)
}

func TestCreateLowercasesEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	info, err := svc.Create(context.Background(), "Buyer@Shop.Test", "hash", "Buyer", RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "buyer@shop.test", info.Email)
}
