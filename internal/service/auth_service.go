package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go-account-service/internal/model"
)

const tokenTypeBearer = "bearer"

// AuthService runs the credential -> roles -> token flow.
type AuthService struct {
	verifier    *CredentialVerifier
	roles       *RoleResolver
	issuer      *TokenIssuer
	defaultRole string
}

func NewAuthService(verifier *CredentialVerifier, roles *RoleResolver, issuer *TokenIssuer, defaultRole string) *AuthService {
	return &AuthService{
		verifier:    verifier,
		roles:       roles,
		issuer:      issuer,
		defaultRole: defaultRole,
	}
}

// GetToken verifies the credentials and issues a session token carrying the
// account's roles as they are right now.
func (s *AuthService) GetToken(ctx context.Context, username string, password string) (model.TokenResponse, error) {
	username = strings.TrimSpace(username)

	account, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			slog.Warn("token request rejected", "username", username)
		}
		return model.TokenResponse{}, err
	}

	roles, err := s.roles.Resolve(ctx, account)
	if err != nil {
		return model.TokenResponse{}, err
	}

	token, err := s.issuer.Issue(account, roles)
	if err != nil {
		return model.TokenResponse{}, err
	}

	primary := s.defaultRole
	if len(token.Roles) > 0 {
		primary = token.Roles[0]
	}

	return model.TokenResponse{
		AccessToken: token.Token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   token.ExpiresIn,
		Username:    account.Username,
		UserID:      account.ID,
		Role:        primary,
		Roles:       token.Roles,
		Issued:      token.IssuedAt.UTC().Format(time.RFC1123),
		Expires:     token.ExpiresAt.UTC().Format(time.RFC1123),
	}, nil
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (model.LoginResult, error) {
	account, err := s.verifier.Verify(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return model.LoginResult{}, err
	}

	return model.LoginResult{Username: account.Username, Email: account.Email}, nil
}

func (s *AuthService) ValidateToken(token string) (*model.AuthClaims, error) {
	return s.issuer.Validate(token)
}
