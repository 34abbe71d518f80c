package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-account-service/internal/model"
)

func newAccount(username string) model.Account {
	now := time.Now().UTC()
	return model.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryAccounts_UsernameIsCaseInsensitive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts := NewMemoryStore().Accounts()

	require.NoError(t, accounts.Create(ctx, newAccount("Alice")))
	assert.ErrorIs(t, accounts.Create(ctx, newAccount("alice")), model.ErrUserAlreadyExists)

	found, err := accounts.FindByUsername(ctx, "  ALICE ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Username)

	_, err = accounts.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestMemoryAccounts_RolesAndCascade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	accounts := store.Accounts()
	roles := store.Roles()

	admin := model.Role{ID: uuid.NewString(), Name: "Admin"}
	user := model.Role{ID: uuid.NewString(), Name: "User"}
	require.NoError(t, roles.Create(ctx, admin))
	require.NoError(t, roles.Create(ctx, user))
	assert.ErrorIs(t, roles.Create(ctx, model.Role{ID: uuid.NewString(), Name: "admin"}), model.ErrRoleAlreadyExists)

	a := newAccount("alice")
	require.NoError(t, accounts.Create(ctx, a))
	require.NoError(t, accounts.AddRole(ctx, a.ID, "user"))
	require.NoError(t, accounts.AddRole(ctx, a.ID, "Admin"))
	require.NoError(t, accounts.AddRole(ctx, a.ID, "Admin"))
	assert.ErrorIs(t, accounts.AddRole(ctx, a.ID, "Ghost"), model.ErrRoleNotFound)

	names, err := accounts.ListRoles(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin", "User"}, names)

	require.NoError(t, roles.Delete(ctx, admin.ID))
	names, err = accounts.ListRoles(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"User"}, names)

	require.NoError(t, accounts.Delete(ctx, a.ID))
	assert.ErrorIs(t, accounts.Delete(ctx, a.ID), model.ErrUserNotFound)
}

func TestMemoryAccounts_WithinTxRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	accounts := NewMemoryStore().Accounts()

	boom := errors.New("boom")
	err := accounts.WithinTx(ctx, func(tx IdentityStore) error {
		require.NoError(t, tx.Create(ctx, newAccount("alice")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = accounts.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	err = accounts.WithinTx(ctx, func(tx IdentityStore) error {
		return tx.Create(ctx, newAccount("alice"))
	})
	require.NoError(t, err)

	_, err = accounts.FindByUsername(ctx, "alice")
	assert.NoError(t, err)
}

func TestMemoryPositions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	positions := NewMemoryStore().Positions()

	first, err := positions.Create(ctx, model.Position{Name: "Director", Active: true})
	require.NoError(t, err)
	second, err := positions.Create(ctx, model.Position{Name: "Clerk", Active: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	second.Active = false
	require.NoError(t, positions.Update(ctx, second))

	got, err := positions.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	require.NoError(t, positions.Delete(ctx, first.ID))
	_, err = positions.FindByID(ctx, first.ID)
	assert.ErrorIs(t, err, model.ErrPositionNotFound)
	assert.ErrorIs(t, positions.Update(ctx, model.Position{ID: 99}), model.ErrPositionNotFound)

	list, err := positions.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryAudit_QueryNewestFirstWithPaging(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	audit := NewMemoryStore().Audit()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, action := range []string{"account.register", "account.delete", "account.register"} {
		require.NoError(t, audit.Log(ctx, model.AuditEntry{
			Action:     action,
			OccurredAt: base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339Nano),
			Status:     "success",
			Resource:   "alice",
		}))
	}

	items, meta, err := audit.Query(ctx, model.AuditQuery{Action: "ACCOUNT.REGISTER", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
	require.Len(t, items, 1)
	assert.Equal(t, base.Add(2*time.Minute).Format(time.RFC3339Nano), items[0].OccurredAt)

	items, _, err = audit.Query(ctx, model.AuditQuery{Page: 5})
	require.NoError(t, err)
	assert.Empty(t, items)
}
