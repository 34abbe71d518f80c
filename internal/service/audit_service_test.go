package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-account-service/internal/model"
	"go-account-service/internal/repository"
	"go-account-service/pkg/apierror"
)

type mockAuditStore struct {
	mock.Mock
}

func (m *mockAuditStore) Log(ctx context.Context, entry model.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditStore) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]model.AuditEntry), args.Get(1).(model.Meta), args.Error(2)
}

func TestAuditService_LogAndQuery(t *testing.T) {
	t.Parallel()
	svc := NewAuditService(repository.NewMemoryStore().Audit())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	actor := model.AuditActor{UserID: "u1", Username: "root", Roles: "Admin", IP: "10.0.0.1"}
	svc.Log(ctx, "role.create", actor, "success", "Auditor", nil, map[string]any{"name": "Auditor"}, "")
	svc.Log(ctx, "role.delete", actor, "failed", "Ghost", nil, nil, "role not found")

	items, meta, err := svc.Query(context.Background(), model.AuditQuery{Status: "failed"})
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Total)
	require.Len(t, items, 1)
	assert.Equal(t, "role.delete", items[0].Action)
	assert.Equal(t, "root", items[0].Actor.Username)
}

func TestAuditService_QueryRejectsBadTimes(t *testing.T) {
	t.Parallel()
	svc := NewAuditService(repository.NewMemoryStore().Audit())

	_, _, err := svc.Query(context.Background(), model.AuditQuery{From: "yesterday"})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
}

func TestAuditService_NormalizesTimeBounds(t *testing.T) {
	t.Parallel()
	store := &mockAuditStore{}
	svc := NewAuditService(store)

	store.On("Query", mock.Anything, model.AuditQuery{
		From: "2026-03-01T10:00:00Z",
		Page: 2,
	}).Return([]model.AuditEntry{}, model.Meta{Page: 2}, nil).Once()

	_, meta, err := svc.Query(context.Background(), model.AuditQuery{From: " 2026-03-01T12:00:00+02:00 ", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Page)
	store.AssertExpectations(t)
}

func TestAuditService_WriteFailureIsSwallowed(t *testing.T) {
	t.Parallel()
	store := &mockAuditStore{}
	svc := NewAuditService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	store.On("Log", mock.Anything, mock.MatchedBy(func(e model.AuditEntry) bool {
		return e.Action == "account.delete" && e.OccurredAt == "2026-03-01T00:00:00Z"
	})).Return(errors.New("db down")).Once()

	assert.NotPanics(t, func() {
		svc.Log(context.Background(), "account.delete", model.AuditActor{}, "success", "alice", nil, nil, "")
	})
	store.AssertExpectations(t)

	var nilSvc *AuditService
	assert.NotPanics(t, func() {
		nilSvc.Log(context.Background(), "x", model.AuditActor{}, "success", "", nil, nil, "")
	})
}
