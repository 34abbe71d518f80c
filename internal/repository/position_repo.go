package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"go-account-service/internal/model"
)

type PositionRepository struct {
	db Querier
}

func NewPositionRepository(db Querier) *PositionRepository {
	return &PositionRepository{db: db}
}

func (r *PositionRepository) List(ctx context.Context) ([]model.Position, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, active FROM positions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	defer rows.Close()

	positions := make([]model.Position, 0)
	for rows.Next() {
		var p model.Position
		if err := rows.Scan(&p.ID, &p.Name, &p.Active); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func (r *PositionRepository) FindByID(ctx context.Context, id int64) (model.Position, error) {
	var p model.Position
	err := r.db.QueryRow(ctx, `SELECT id, name, active FROM positions WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Position{}, model.ErrPositionNotFound
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("find position: %w", err)
	}
	return p, nil
}

func (r *PositionRepository) Create(ctx context.Context, p model.Position) (model.Position, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO positions (name, active) VALUES ($1, $2) RETURNING id`,
		p.Name, p.Active).Scan(&p.ID)
	if err != nil {
		return model.Position{}, fmt.Errorf("create position: %w", err)
	}
	return p, nil
}

func (r *PositionRepository) Update(ctx context.Context, p model.Position) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE positions SET name = $2, active = $3 WHERE id = $1`, p.ID, p.Name, p.Active)
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPositionNotFound
	}
	return nil
}

func (r *PositionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPositionNotFound
	}
	return nil
}
