package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-account-service/internal/model"
	"go-account-service/internal/repository"
)

func TestPositionService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewPositionService(repository.NewMemoryStore().Positions())

	inactive := false
	created, err := svc.Create(ctx, model.PositionRequest{Name: " Director ", Active: &inactive})
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.Equal(t, "Director", created.Name)

	_, err = svc.Create(ctx, model.PositionRequest{})
	assert.Equal(t, []string{"name"}, fieldNames(requireFieldErrors(t, err)))

	updated, err := svc.Update(ctx, created.ID, model.PositionRequest{Name: "Managing Director"})
	require.NoError(t, err)
	assert.True(t, updated.Active)

	updated, err = svc.Update(ctx, created.ID, model.PositionRequest{Name: "Managing Director", Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = svc.Update(ctx, 999, model.PositionRequest{Name: "x"})
	assert.ErrorIs(t, err, model.ErrPositionNotFound)

	_, err = svc.Get(ctx, 0)
	assert.ErrorIs(t, err, model.ErrPositionNotFound)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrPositionNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
