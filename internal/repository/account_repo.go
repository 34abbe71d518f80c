package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"go-account-service/internal/model"
)

type AccountRepository struct {
	db Querier
}

func NewAccountRepository(db Querier) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, username, email, password_hash, email_confirmed, created_at, updated_at`

func scanAccount(row pgx.Row) (model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.EmailConfirmed, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (model.Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account by id: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (model.Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(username) = lower($1)`,
		strings.TrimSpace(username)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("find account by username: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]model.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY lower(username)`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]model.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) Create(ctx context.Context, a model.Account) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Username, a.Email, a.PasswordHash, a.EmailConfirmed, a.CreatedAt, a.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, a model.Account) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts
		 SET username = $2, email = $3, password_hash = $4, email_confirmed = $5, updated_at = $6
		 WHERE id = $1`,
		a.ID, a.Username, a.Email, a.PasswordHash, a.EmailConfirmed, a.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *AccountRepository) ListRoles(ctx context.Context, accountID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT r.name
		 FROM roles r
		 JOIN account_roles ar ON ar.role_id = r.id
		 WHERE ar.account_id = $1
		 ORDER BY r.name`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list account roles: %w", err)
	}
	defer rows.Close()

	roles := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan role name: %w", err)
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

func (r *AccountRepository) roleID(ctx context.Context, roleName string) (string, error) {
	var id string
	err := r.db.QueryRow(ctx,
		`SELECT id FROM roles WHERE lower(name) = lower($1)`, strings.TrimSpace(roleName)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", model.ErrRoleNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find role id: %w", err)
	}
	return id, nil
}

func (r *AccountRepository) AddRole(ctx context.Context, accountID string, roleName string) error {
	roleID, err := r.roleID(ctx, roleName)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO account_roles (account_id, role_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`, accountID, roleID)
	if isForeignKeyViolation(err) {
		return model.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("add account role: %w", err)
	}
	return nil
}

func (r *AccountRepository) RemoveRole(ctx context.Context, accountID string, roleName string) error {
	roleID, err := r.roleID(ctx, roleName)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx,
		`DELETE FROM account_roles WHERE account_id = $1 AND role_id = $2`, accountID, roleID); err != nil {
		return fmt.Errorf("remove account role: %w", err)
	}
	return nil
}

func (r *AccountRepository) WithinTx(ctx context.Context, fn func(IdentityStore) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(NewAccountRepository(tx))
	})
}
