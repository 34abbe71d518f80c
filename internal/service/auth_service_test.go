package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-account-service/internal/model"
)

func TestAuthService_RegisterThenToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.accounts.Register(ctx, model.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "Secret123!"})
	require.NoError(t, err)

	token, err := env.auth.GetToken(ctx, "alice", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, []string{"User"}, token.Roles)
	assert.Equal(t, "User", token.Role)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, "alice", token.Username)
	assert.NotEmpty(t, token.UserID)

	_, err = env.auth.GetToken(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestAuthService_TokenWindow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.register(t, "alice", "Secret123!")

	token, err := env.auth.GetToken(context.Background(), "alice", "Secret123!")
	require.NoError(t, err)

	assert.Equal(t, int64(1209600), token.ExpiresIn)
	assert.Equal(t, env.now.Format(time.RFC1123), token.Issued)
	assert.Equal(t, env.now.Add(fourteen).Format(time.RFC1123), token.Expires)

	claims, err := env.auth.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, token.UserID, claims.UserID)
	assert.NotEmpty(t, claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
	assert.Equal(t, []string{"User"}, claims.Roles)
	assert.True(t, claims.ExpiresAt.Equal(claims.IssuedAt.Add(fourteen)))
}

func TestAuthService_EachTokenHasFreshID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.register(t, "alice", "Secret123!")
	ctx := context.Background()

	first, err := env.auth.GetToken(ctx, "alice", "Secret123!")
	require.NoError(t, err)
	second, err := env.auth.GetToken(ctx, "alice", "Secret123!")
	require.NoError(t, err)

	a, err := env.auth.ValidateToken(first.AccessToken)
	require.NoError(t, err)
	b, err := env.auth.ValidateToken(second.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, a.TokenID, b.TokenID)
}

func TestAuthService_RolesFrozenAtIssuance(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.register(t, "alice", "Secret123!")
	ctx := context.Background()

	before, err := env.auth.GetToken(ctx, "alice", "Secret123!")
	require.NoError(t, err)

	_, err = env.accounts.AssignRole(ctx, "alice", "Admin")
	require.NoError(t, err)

	claims, err := env.auth.ValidateToken(before.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"User"}, claims.Roles)

	after, err := env.auth.GetToken(ctx, "alice", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin", "User"}, after.Roles)
}

func TestAuthService_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.register(t, "alice", "Secret123!")
	ctx := context.Background()

	_, unknownErr := env.auth.GetToken(ctx, "mallory", "Secret123!")
	_, wrongErr := env.auth.GetToken(ctx, "alice", "Wrong123!")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	_, unknownErr = env.auth.Login(ctx, "mallory", "x")
	_, wrongErr = env.auth.Login(ctx, "alice", "x")
	assert.Equal(t, unknownErr, wrongErr)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.register(t, "alice", "Secret123!")

	result, err := env.auth.Login(context.Background(), " ALICE ", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, model.LoginResult{Username: "alice", Email: "alice@example.com"}, result)
}

func TestAuthService_AccountWithoutRolesGetsDefaultPrimaryRole(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.register(t, "alice", "Secret123!")
	ctx := context.Background()

	_, err := env.accounts.RevokeRole(ctx, "alice", "User")
	require.NoError(t, err)

	token, err := env.auth.GetToken(ctx, "alice", "Secret123!")
	require.NoError(t, err)
	assert.Equal(t, []string{}, token.Roles)
	assert.Equal(t, "User", token.Role)
}

func TestTokenIssuer(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	account := model.Account{ID: "id-1", Username: "alice"}

	t.Run("empty secret is a configuration error", func(t *testing.T) {
		_, err := NewTokenIssuer("  ", testIssuer, fourteen, clock)
		assert.ErrorIs(t, err, ErrMissingSigningKey)
	})

	t.Run("copies roles at issuance", func(t *testing.T) {
		issuer, err := NewTokenIssuer(testSecret, testIssuer, fourteen, clock)
		require.NoError(t, err)

		roles := []string{"Admin", "User"}
		token, err := issuer.Issue(account, roles)
		require.NoError(t, err)
		roles[0] = "Changed"

		assert.Equal(t, []string{"Admin", "User"}, token.Roles)
		assert.Equal(t, now, token.IssuedAt)
		assert.Equal(t, now.Add(fourteen), token.ExpiresAt)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		issuer, err := NewTokenIssuer(testSecret, testIssuer, fourteen, clock)
		require.NoError(t, err)
		token, err := issuer.Issue(account, nil)
		require.NoError(t, err)

		later, err := NewTokenIssuer(testSecret, testIssuer, fourteen, func() time.Time { return now.Add(fourteen + time.Minute) })
		require.NoError(t, err)
		_, err = later.Validate(token.Token)
		assert.Error(t, err)
	})

	t.Run("rejects other secrets and issuers", func(t *testing.T) {
		issuer, err := NewTokenIssuer(testSecret, testIssuer, fourteen, clock)
		require.NoError(t, err)
		token, err := issuer.Issue(account, nil)
		require.NoError(t, err)

		otherSecret, err := NewTokenIssuer("another-secret", testIssuer, fourteen, clock)
		require.NoError(t, err)
		_, err = otherSecret.Validate(token.Token)
		assert.Error(t, err)

		otherIssuer, err := NewTokenIssuer(testSecret, "someone-else", fourteen, clock)
		require.NoError(t, err)
		_, err = otherIssuer.Validate(token.Token)
		assert.Error(t, err)
	})

	t.Run("rejects unsigned tokens", func(t *testing.T) {
		issuer, err := NewTokenIssuer(testSecret, testIssuer, fourteen, clock)
		require.NoError(t, err)

		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testIssuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Validate(unsigned)
		assert.Error(t, err)
	})

	t.Run("rejects tokens without an account id", func(t *testing.T) {
		issuer, err := NewTokenIssuer(testSecret, testIssuer, fourteen, clock)
		require.NoError(t, err)

		token, err := issuer.Issue(model.Account{Username: "alice"}, nil)
		require.NoError(t, err)
		_, err = issuer.Validate(token.Token)
		assert.Error(t, err)
	})

	t.Run("empty role set validates to empty slice", func(t *testing.T) {
		issuer, err := NewTokenIssuer(testSecret, testIssuer, fourteen, clock)
		require.NoError(t, err)
		token, err := issuer.Issue(account, nil)
		require.NoError(t, err)

		claims, err := issuer.Validate(token.Token)
		require.NoError(t, err)
		assert.NotNil(t, claims.Roles)
		assert.Empty(t, claims.Roles)
	})
}
