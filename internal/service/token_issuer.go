package service

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-account-service/internal/model"
	"go-account-service/pkg/apierror"
)

var ErrMissingSigningKey = errors.New("token signing key is required")

// sessionClaims carries the account id next to the username so a token stays
// bound to one account even after its username is released and reused.
type sessionClaims struct {
	UserID string   `json:"uid"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates HS256 session tokens. It is immutable after
// construction and safe for concurrent use.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, issuer string, ttl time.Duration, now func() time.Time) (*TokenIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSigningKey
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	if now == nil {
		now = time.Now
	}

	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: now}, nil
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

func (i *TokenIssuer) Issue(account model.Account, roles []string) (model.SessionToken, error) {
	issuedAt := i.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.ttl)
	tokenID := uuid.NewString()
	frozen := append([]string{}, roles...)

	claims := sessionClaims{
		UserID: account.ID,
		Roles:  frozen,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Username,
			ID:        tokenID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.issuer},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return model.SessionToken{}, err
	}

	return model.SessionToken{
		Token:     signed,
		TokenID:   tokenID,
		Roles:     frozen,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		ExpiresIn: int64(i.ttl / time.Second),
	}, nil
}

func (i *TokenIssuer) Validate(tokenString string) (*model.AuthClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, apierror.New("UNAUTHORIZED", "invalid token", "", http.StatusUnauthorized)
	}
	if claims.Subject == "" || claims.UserID == "" {
		return nil, apierror.New("UNAUTHORIZED", "invalid token subject", "", http.StatusUnauthorized)
	}

	out := &model.AuthClaims{
		Subject: claims.Subject,
		UserID:  claims.UserID,
		TokenID: claims.ID,
		Roles:   claims.Roles,
	}
	if out.Roles == nil {
		out.Roles = []string{}
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.UTC()
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.UTC()
	}

	return out, nil
}
