package model

import "time"

// Account is a stored identity. PasswordHash never leaves the service layer.
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthClaims is the validated content of a session token.
type AuthClaims struct {
	Subject   string    `json:"sub"`
	UserID    string    `json:"uid"`
	TokenID   string    `json:"jti"`
	Roles     []string  `json:"roles"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// SessionToken is a freshly signed bearer token and its validity window.
type SessionToken struct {
	Token     string
	TokenID   string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ExpiresIn int64
}

type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
	Username    string   `json:"username"`
	UserID      string   `json:"user_id"`
	Role        string   `json:"role"`
	Roles       []string `json:"roles"`
	Issued      string   `json:"issued"`
	Expires     string   `json:"expires"`
}

type LoginResult struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AccountView struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	EmailConfirmed bool     `json:"email_confirmed"`
	Roles          []string `json:"roles"`
}

type AccountList struct {
	Users []AccountView `json:"users"`
}

type RoleList struct {
	Roles []Role `json:"roles"`
}
