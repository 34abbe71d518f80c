package service

import (
	"context"
	"strings"

	"go-account-service/internal/model"
	"go-account-service/internal/repository"
	"go-account-service/pkg/apierror"
)

const maxPositionNameLength = 200

type PositionService struct {
	positions repository.PositionStore
}

func NewPositionService(positions repository.PositionStore) *PositionService {
	return &PositionService{positions: positions}
}

func (s *PositionService) List(ctx context.Context) ([]model.Position, error) {
	return s.positions.List(ctx)
}

func (s *PositionService) Get(ctx context.Context, id int64) (model.Position, error) {
	if id <= 0 {
		return model.Position{}, model.ErrPositionNotFound
	}
	return s.positions.FindByID(ctx, id)
}

// Create always stores the position as active.
func (s *PositionService) Create(ctx context.Context, req model.PositionRequest) (model.Position, error) {
	name, err := positionName(req.Name)
	if err != nil {
		return model.Position{}, err
	}

	return s.positions.Create(ctx, model.Position{Name: name, Active: true})
}

// Update replaces the name and, when supplied, the active flag.
func (s *PositionService) Update(ctx context.Context, id int64, req model.PositionRequest) (model.Position, error) {
	name, err := positionName(req.Name)
	if err != nil {
		return model.Position{}, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return model.Position{}, err
	}

	current.Name = name
	if req.Active != nil {
		current.Active = *req.Active
	}

	if err := s.positions.Update(ctx, current); err != nil {
		return model.Position{}, err
	}
	return current, nil
}

func (s *PositionService) Delete(ctx context.Context, id int64) (model.Position, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return model.Position{}, err
	}

	if err := s.positions.Delete(ctx, id); err != nil {
		return model.Position{}, err
	}
	return current, nil
}

func positionName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apierror.Field("name", "name is required")
	}
	if len(name) > maxPositionNameLength {
		return "", apierror.Field("name", "name is too long")
	}
	return name, nil
}
