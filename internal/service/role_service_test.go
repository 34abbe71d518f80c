package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-account-service/internal/model"
	"go-account-service/internal/repository"
)

func TestRoleService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewRoleService(repository.NewMemoryStore().Roles())

	require.NoError(t, svc.EnsureDefaults(ctx, "User", "Admin"))
	require.NoError(t, svc.EnsureDefaults(ctx, "User", "Admin"))

	role, err := svc.Create(ctx, "  Auditor ")
	require.NoError(t, err)
	assert.Equal(t, "Auditor", role.Name)
	assert.NotEmpty(t, role.ID)

	_, err = svc.Create(ctx, "auditor")
	assert.Equal(t, []string{"name"}, fieldNames(requireFieldErrors(t, err)))

	_, err = svc.Create(ctx, "")
	assert.Equal(t, []string{"name"}, fieldNames(requireFieldErrors(t, err)))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Roles, 3)

	require.NoError(t, svc.Delete(ctx, "AUDITOR"))
	assert.ErrorIs(t, svc.Delete(ctx, "Auditor"), model.ErrRoleNotFound)
	assert.Equal(t, []string{"roleName"}, fieldNames(requireFieldErrors(t, svc.Delete(ctx, ""))))
}

func TestRoleService_BuiltInRolesCannotBeDeleted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewRoleService(repository.NewMemoryStore().Roles(), "User", "Admin")
	require.NoError(t, svc.EnsureDefaults(ctx, "User", "Admin"))

	for _, name := range []string{"User", "admin", " USER "} {
		err := svc.Delete(ctx, name)
		assert.Equal(t, []string{"roleName"}, fieldNames(requireFieldErrors(t, err)), name)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Roles, 2)
}
