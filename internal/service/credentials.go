package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"go-account-service/internal/model"
	"go-account-service/internal/repository"
)

// CredentialVerifier checks a username/password pair against the identity store.
// Unknown usernames and wrong passwords both yield model.ErrInvalidCredentials,
// and both pay for one bcrypt comparison.
type CredentialVerifier struct {
	accounts  repository.IdentityStore
	hasher    PasswordHasher
	dummyHash string
}

func NewCredentialVerifier(accounts repository.IdentityStore, hasher PasswordHasher) (*CredentialVerifier, error) {
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	return &CredentialVerifier{accounts: accounts, hasher: hasher, dummyHash: dummyHash}, nil
}

func (v *CredentialVerifier) Verify(ctx context.Context, username string, password string) (model.Account, error) {
	account, err := v.accounts.FindByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		_ = v.hasher.Compare(v.dummyHash, password)
		return model.Account{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("load account: %w", err)
	}

	if err := v.hasher.Compare(account.PasswordHash, password); err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			return model.Account{}, model.ErrInvalidCredentials
		}
		return model.Account{}, err
	}

	return account, nil
}

type RoleResolver struct {
	accounts repository.IdentityStore
}

func NewRoleResolver(accounts repository.IdentityStore) *RoleResolver {
	return &RoleResolver{accounts: accounts}
}

// Resolve returns the account's current role names ordered by name.
func (r *RoleResolver) Resolve(ctx context.Context, account model.Account) ([]string, error) {
	roles, err := r.accounts.ListRoles(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	if roles == nil {
		roles = []string{}
	}
	return roles, nil
}
