package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-account-service/internal/model"
	"go-account-service/internal/repository"
	"go-account-service/pkg/apierror"
)

type AccountService struct {
	accounts    repository.IdentityStore
	hasher      PasswordHasher
	policy      PasswordPolicy
	defaultRole string
}

func NewAccountService(accounts repository.IdentityStore, hasher PasswordHasher, policy PasswordPolicy, defaultRole string) *AccountService {
	return &AccountService{
		accounts:    accounts,
		hasher:      hasher,
		policy:      policy,
		defaultRole: defaultRole,
	}
}

// Register creates the account and grants the default role in one transaction.
func (s *AccountService) Register(ctx context.Context, req model.RegisterRequest) (model.Account, error) {
	normalizeRegister(&req)
	if fields := validateRegister(req, s.policy); len(fields) > 0 {
		return model.Account{}, apierror.Validation(fields)
	}

	return s.create(ctx, req, s.defaultRole)
}

func (s *AccountService) create(ctx context.Context, req model.RegisterRequest, roles ...string) (model.Account, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.Account{}, err
	}

	now := time.Now().UTC()
	account := model.Account{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		PasswordHash:   hash,
		EmailConfirmed: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.accounts.WithinTx(ctx, func(tx repository.IdentityStore) error {
		if err := tx.Create(ctx, account); err != nil {
			return err
		}
		for _, role := range roles {
			if err := tx.AddRole(ctx, account.ID, role); err != nil {
				// A missing built-in role is a server fault, not a client 404.
				return fmt.Errorf("assign role %q: %v", role, err)
			}
		}
		return nil
	})
	if errors.Is(err, model.ErrUserAlreadyExists) {
		return model.Account{}, usernameTaken("username", req.Username)
	}
	if err != nil {
		return model.Account{}, err
	}

	slog.Info("account registered", "username", account.Username, "user_id", account.ID)
	return account, nil
}

// Update applies only the supplied fields. A request without any of them is a
// successful no-op once the account is known to exist.
func (s *AccountService) Update(ctx context.Context, req model.UpdateAccountRequest) (model.Account, error) {
	normalizeUpdate(&req)
	if fields := validateUpdate(req, s.policy); len(fields) > 0 {
		return model.Account{}, apierror.Validation(fields)
	}

	var newHash string
	if req.NewPassword != nil {
		hash, err := s.hasher.Hash(*req.NewPassword)
		if err != nil {
			return model.Account{}, err
		}
		newHash = hash
	}

	var updated model.Account
	err := s.accounts.WithinTx(ctx, func(tx repository.IdentityStore) error {
		account, err := tx.FindByUsername(ctx, req.Username)
		if err != nil {
			return err
		}

		updated = account
		if req.NewUsername == nil && req.NewEmail == nil && req.NewPassword == nil {
			return nil
		}

		if req.NewUsername != nil {
			updated.Username = *req.NewUsername
		}
		if req.NewEmail != nil {
			updated.Email = *req.NewEmail
		}
		if newHash != "" {
			updated.PasswordHash = newHash
		}
		updated.UpdatedAt = time.Now().UTC()

		return tx.Update(ctx, updated)
	})
	if errors.Is(err, model.ErrUserAlreadyExists) && req.NewUsername != nil {
		return model.Account{}, usernameTaken("newUsername", *req.NewUsername)
	}
	if err != nil {
		return model.Account{}, err
	}

	return updated, nil
}

func (s *AccountService) Delete(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apierror.Field("username", "username is required")
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := s.accounts.Delete(ctx, account.ID); err != nil {
		return err
	}

	slog.Info("account deleted", "username", account.Username, "user_id", account.ID)
	return nil
}

func (s *AccountService) Get(ctx context.Context, username string) (model.AccountView, error) {
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return model.AccountView{}, err
	}
	return s.view(ctx, account)
}

// GetByID resolves the account a session token was issued for.
func (s *AccountService) GetByID(ctx context.Context, id string) (model.AccountView, error) {
	if strings.TrimSpace(id) == "" {
		return model.AccountView{}, model.ErrUserNotFound
	}

	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return model.AccountView{}, err
	}
	return s.view(ctx, account)
}

func (s *AccountService) List(ctx context.Context) (model.AccountList, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return model.AccountList{}, err
	}

	users := make([]model.AccountView, 0, len(accounts))
	for _, account := range accounts {
		view, err := s.view(ctx, account)
		if err != nil {
			return model.AccountList{}, err
		}
		users = append(users, view)
	}

	return model.AccountList{Users: users}, nil
}

func (s *AccountService) AssignRole(ctx context.Context, username string, role string) (model.AccountView, error) {
	account, err := s.membershipTarget(ctx, username, role)
	if err != nil {
		return model.AccountView{}, err
	}

	if err := s.accounts.AddRole(ctx, account.ID, strings.TrimSpace(role)); err != nil {
		return model.AccountView{}, err
	}
	return s.view(ctx, account)
}

func (s *AccountService) RevokeRole(ctx context.Context, username string, role string) (model.AccountView, error) {
	account, err := s.membershipTarget(ctx, username, role)
	if err != nil {
		return model.AccountView{}, err
	}

	if err := s.accounts.RemoveRole(ctx, account.ID, strings.TrimSpace(role)); err != nil {
		return model.AccountView{}, err
	}
	return s.view(ctx, account)
}

// SeedAdmin makes sure the bootstrap administrator exists and holds adminRole.
// An empty username disables seeding.
func (s *AccountService) SeedAdmin(ctx context.Context, username string, email string, password string, adminRole string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}

	existing, err := s.accounts.FindByUsername(ctx, username)
	if err == nil {
		return s.accounts.AddRole(ctx, existing.ID, adminRole)
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	req := model.RegisterRequest{Username: username, Email: email, Password: password}
	normalizeRegister(&req)
	if req.Email == "" {
		req.Email = username + "@localhost"
	}
	if fields := validateRegister(req, s.policy); len(fields) > 0 {
		return fmt.Errorf("seed admin: %w", apierror.Validation(fields))
	}

	if _, err := s.create(ctx, req, s.defaultRole, adminRole); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func (s *AccountService) membershipTarget(ctx context.Context, username string, role string) (model.Account, error) {
	fields := make([]apierror.FieldError, 0)
	if strings.TrimSpace(username) == "" {
		fields = append(fields, apierror.FieldError{Field: "username", Message: "username is required"})
	}
	if strings.TrimSpace(role) == "" {
		fields = append(fields, apierror.FieldError{Field: "role", Message: "role is required"})
	}
	if len(fields) > 0 {
		return model.Account{}, apierror.Validation(fields)
	}

	return s.accounts.FindByUsername(ctx, username)
}

func (s *AccountService) view(ctx context.Context, account model.Account) (model.AccountView, error) {
	roles, err := s.accounts.ListRoles(ctx, account.ID)
	if err != nil {
		return model.AccountView{}, err
	}
	if roles == nil {
		roles = []string{}
	}

	return model.AccountView{
		ID:             account.ID,
		Username:       account.Username,
		Email:          account.Email,
		EmailConfirmed: account.EmailConfirmed,
		Roles:          roles,
	}, nil
}

func usernameTaken(field string, username string) *apierror.APIError {
	return apierror.Field(field, fmt.Sprintf("username '%s' is already taken", username))
}
