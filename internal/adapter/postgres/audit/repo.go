// Package audit implements the audit-record repository using PostgreSQL.
// Records are append-only; there is no update or delete operation.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/cmdgate/internal/adapter/postgres"
	"github.com/heartmarshall/cmdgate/internal/domain"
)

const table = "audit_records"

var columns = []string{"id", "account_id", "command_text", "action", "created_at"}

// Repo provides audit-record persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audit repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type recordRow struct {
	ID          uuid.UUID `db:"id"`
	AccountID   uuid.UUID `db:"account_id"`
	CommandText string    `db:"command_text"`
	Action      string    `db:"action"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r recordRow) toDomain() domain.AuditRecord {
	return domain.AuditRecord{
		ID:          r.ID,
		AccountID:   r.AccountID,
		CommandText: r.CommandText,
		Action:      domain.AuditAction(r.Action),
		CreatedAt:   r.CreatedAt,
	}
}

// Create appends a new audit record.
func (r *Repo) Create(ctx context.Context, record *domain.AuditRecord) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(record.ID, record.AccountID, record.CommandText, record.Action.String(), record.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("audit: build insert: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "audit_record", record.ID)
	}

	return nil
}

// ListByAccount returns one account's audit records, most recent first.
func (r *Repo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("audit: build query: %w", err)
	}

	var rows []recordRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "audit_record", accountID)
	}

	records := make([]domain.AuditRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toDomain()
	}

	return records, nil
}

// entryRow is the scan target for the admin global audit listing.
type entryRow struct {
	ID          uuid.UUID `db:"id"`
	Username    string    `db:"username"`
	CommandText string    `db:"command_text"`
	Action      string    `db:"action"`
	CreatedAt   time.Time `db:"created_at"`
}

// ListAll returns up to limit audit records across all accounts joined with
// usernames, most recent first.
func (r *Repo) ListAll(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select("ar.id", "a.username", "ar.command_text", "ar.action", "ar.created_at").
		From(table + " ar").
		Join("accounts a ON a.id = ar.account_id").
		OrderBy("ar.created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("audit: build query: %w", err)
	}

	var rows []entryRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "audit_record", "all")
	}

	entries := make([]domain.AuditEntry, len(rows))
	for i, row := range rows {
		entries[i] = domain.AuditEntry{
			ID:          row.ID,
			Username:    row.Username,
			CommandText: row.CommandText,
			Action:      domain.AuditAction(row.Action),
			CreatedAt:   row.CreatedAt,
		}
	}

	return entries, nil
}
