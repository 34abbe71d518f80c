package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-account-service/internal/model"
	"go-account-service/internal/repository"
	"go-account-service/pkg/apierror"
)

const (
	testSecret = "test-signing-secret"
	testIssuer = "go-account-service"
	fourteen   = 14 * 24 * time.Hour
)

type testEnv struct {
	store    *repository.MemoryStore
	accounts *AccountService
	roles    *RoleService
	auth     *AuthService
	issuer   *TokenIssuer
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	now := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	roles := NewRoleService(store.Roles(), "User", "Admin")
	require.NoError(t, roles.EnsureDefaults(context.Background(), "User", "Admin"))

	verifier, err := NewCredentialVerifier(store.Accounts(), hasher)
	require.NoError(t, err)

	issuer, err := NewTokenIssuer(testSecret, testIssuer, fourteen, func() time.Time { return now })
	require.NoError(t, err)

	return &testEnv{
		store:    store,
		accounts: NewAccountService(store.Accounts(), hasher, DefaultPasswordPolicy(), "User"),
		roles:    roles,
		auth:     NewAuthService(verifier, NewRoleResolver(store.Accounts()), issuer, "User"),
		issuer:   issuer,
		now:      now,
	}
}

func (e *testEnv) register(t *testing.T, username string, password string) model.Account {
	t.Helper()

	account, err := e.accounts.Register(context.Background(), model.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
	})
	require.NoError(t, err)
	return account
}

func requireFieldErrors(t *testing.T, err error) []apierror.FieldError {
	t.Helper()

	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "VALIDATION_FAILED", apiErr.Code)
	return apiErr.Fields
}

func fieldNames(fields []apierror.FieldError) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	return names
}

func strPtr(s string) *string { return &s }
