package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"go-account-service/internal/model"
)

// IdentityStore persists accounts, their password hashes and role memberships.
// Lookups by username are case-insensitive.
type IdentityStore interface {
	FindByUsername(ctx context.Context, username string) (model.Account, error)
	FindByID(ctx context.Context, id string) (model.Account, error)
	List(ctx context.Context) ([]model.Account, error)
	Create(ctx context.Context, account model.Account) error
	Update(ctx context.Context, account model.Account) error
	Delete(ctx context.Context, id string) error
	ListRoles(ctx context.Context, accountID string) ([]string, error)
	AddRole(ctx context.Context, accountID string, roleName string) error
	RemoveRole(ctx context.Context, accountID string, roleName string) error
	// WithinTx runs fn against a store bound to a single transaction.
	// Any error returned by fn rolls the whole unit back.
	WithinTx(ctx context.Context, fn func(IdentityStore) error) error
}

type RoleStore interface {
	List(ctx context.Context) ([]model.Role, error)
	FindByName(ctx context.Context, name string) (model.Role, error)
	Create(ctx context.Context, role model.Role) error
	Delete(ctx context.Context, id string) error
}

type PositionStore interface {
	List(ctx context.Context) ([]model.Position, error)
	FindByID(ctx context.Context, id int64) (model.Position, error)
	Create(ctx context.Context, position model.Position) (model.Position, error)
	Update(ctx context.Context, position model.Position) error
	Delete(ctx context.Context, id int64) error
}

type AuditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func normalizePage(query *model.AuditQuery) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 200 {
		query.Limit = 200
	}
}

func pageMeta(query model.AuditQuery, total int) model.Meta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + query.Limit - 1) / query.Limit
	}

	return model.Meta{Page: query.Page, Limit: query.Limit, Total: total, TotalPages: totalPages}
}
