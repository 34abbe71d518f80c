package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"go-account-service/internal/model"
)

const auditColumns = `action, occurred_at, actor_user_id, actor_username, actor_roles, actor_ip,
	status, resource, before_data, after_data, error_text`

type AuditRepository struct {
	db Querier
}

func NewAuditRepository(db Querier) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	before, err := marshalSnapshot(entry.Before)
	if err != nil {
		return fmt.Errorf("marshal before snapshot: %w", err)
	}
	after, err := marshalSnapshot(entry.After)
	if err != nil {
		return fmt.Errorf("marshal after snapshot: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO audit_entries (`+auditColumns+`)
		 VALUES (@action, @occurred_at, @user_id, @username, @roles, @ip,
		         @status, @resource, @before, @after, @error)`,
		pgx.NamedArgs{
			"action":      entry.Action,
			"occurred_at": entry.OccurredAt,
			"user_id":     entry.Actor.UserID,
			"username":    entry.Actor.Username,
			"roles":       entry.Actor.Roles,
			"ip":          entry.Actor.IP,
			"status":      entry.Status,
			"resource":    entry.Resource,
			"before":      before,
			"after":       after,
			"error":       entry.Error,
		})
	if err != nil {
		return fmt.Errorf("log audit entry: %w", err)
	}
	return nil
}

// auditFilter turns an AuditQuery into a WHERE clause over named arguments.
func auditFilter(query model.AuditQuery) (string, pgx.NamedArgs) {
	clauses := make([]string, 0, 6)
	args := pgx.NamedArgs{}

	add := func(name string, clause string, value string) {
		if value = strings.TrimSpace(value); value == "" {
			return
		}
		clauses = append(clauses, clause)
		args[name] = value
	}

	add("action", "lower(action) = lower(@action)", query.Action)
	add("username", "lower(actor_username) = lower(@username)", query.Username)
	add("status", "lower(status) = lower(@status)", query.Status)
	add("from", "occurred_at >= @from::timestamptz", query.From)
	add("to", "occurred_at <= @to::timestamptz", query.To)
	if resource := strings.TrimSpace(query.Resource); resource != "" {
		clauses = append(clauses, "lower(resource) LIKE lower(@resource)")
		args["resource"] = "%" + resource + "%"
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (r *AuditRepository) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	normalizePage(&query)
	where, args := auditFilter(query)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_entries `+where, args).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count audit entries: %w", err)
	}

	args["limit"] = query.Limit
	args["offset"] = (query.Page - 1) * query.Limit
	rows, err := r.db.Query(ctx,
		`SELECT `+auditColumns+` FROM audit_entries `+where+`
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query audit entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, scanAuditEntry)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("scan audit entries: %w", err)
	}

	return entries, pageMeta(query, total), nil
}

func scanAuditEntry(row pgx.CollectableRow) (model.AuditEntry, error) {
	var e model.AuditEntry
	var occurredAt time.Time
	var before, after []byte

	err := row.Scan(
		&e.Action, &occurredAt,
		&e.Actor.UserID, &e.Actor.Username, &e.Actor.Roles, &e.Actor.IP,
		&e.Status, &e.Resource, &before, &after, &e.Error,
	)
	if err != nil {
		return model.AuditEntry{}, err
	}

	e.OccurredAt = occurredAt.UTC().Format(time.RFC3339Nano)
	e.Before = unmarshalSnapshot(before)
	e.After = unmarshalSnapshot(after)
	return e, nil
}

// marshalSnapshot returns nil for an absent snapshot so the column stays NULL.
func marshalSnapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalSnapshot(data []byte) any {
	if len(data) == 0 {
		return nil
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
