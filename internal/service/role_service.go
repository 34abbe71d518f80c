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

type RoleService struct {
	roles     repository.RoleStore
	protected []string
}

// NewRoleService manages roles; the protected names (the default and admin
// roles) can never be deleted because registration and authorization rely on them.
func NewRoleService(roles repository.RoleStore, protected ...string) *RoleService {
	return &RoleService{roles: roles, protected: protected}
}

func (s *RoleService) isProtected(name string) bool {
	for _, p := range s.protected {
		if strings.EqualFold(strings.TrimSpace(p), name) {
			return true
		}
	}
	return false
}

func (s *RoleService) List(ctx context.Context) (model.RoleList, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return model.RoleList{}, err
	}
	return model.RoleList{Roles: roles}, nil
}

func (s *RoleService) Create(ctx context.Context, name string) (model.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Role{}, apierror.Field("name", "role name is required")
	}

	role := model.Role{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	err := s.roles.Create(ctx, role)
	if errors.Is(err, model.ErrRoleAlreadyExists) {
		return model.Role{}, apierror.Field("name", fmt.Sprintf("role '%s' already exists", name))
	}
	if err != nil {
		return model.Role{}, err
	}

	return role, nil
}

func (s *RoleService) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apierror.Field("roleName", "role name is required")
	}
	if s.isProtected(name) {
		return apierror.Field("roleName", fmt.Sprintf("role '%s' is built in and cannot be deleted", name))
	}

	role, err := s.roles.FindByName(ctx, name)
	if err != nil {
		return err
	}
	return s.roles.Delete(ctx, role.ID)
}

// EnsureDefaults creates any of the named roles that do not exist yet.
func (s *RoleService) EnsureDefaults(ctx context.Context, names ...string) error {
	for _, name := range names {
		_, err := s.roles.FindByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, model.ErrRoleNotFound) {
			return fmt.Errorf("look up role %q: %w", name, err)
		}

		role := model.Role{ID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
		if err := s.roles.Create(ctx, role); err != nil && !errors.Is(err, model.ErrRoleAlreadyExists) {
			return fmt.Errorf("create role %q: %w", name, err)
		}
		slog.Info("default role created", "role", name)
	}
	return nil
}
