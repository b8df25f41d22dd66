// Package approval implements the approval-request repository using
// PostgreSQL. The state machine itself lives in the services; this package
// owns the atomic state transitions the machine relies on.
package approval

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

const table = "approval_requests"

var columns = []string{"id", "account_id", "command_text", "status", "created_at", "decided_at"}

// Repo provides approval-request persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new approval repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type requestRow struct {
	ID          uuid.UUID  `db:"id"`
	AccountID   uuid.UUID  `db:"account_id"`
	CommandText string     `db:"command_text"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	DecidedAt   *time.Time `db:"decided_at"`
}

func (r requestRow) toDomain() *domain.ApprovalRequest {
	return &domain.ApprovalRequest{
		ID:          r.ID,
		AccountID:   r.AccountID,
		CommandText: r.CommandText,
		Status:      domain.ApprovalStatus(r.Status),
		CreatedAt:   r.CreatedAt,
		DecidedAt:   r.DecidedAt,
	}
}

// GetByID returns an approval request by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("approval: build query: %w", err)
	}

	var row requestRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "approval_request", id)
	}

	return row.toDomain(), nil
}

// ConsumeApproved atomically transitions at most one APPROVED request for
// (accountID, exact commandText) to USED. Returns true when a request was
// consumed. The subselect bounds consumption to a single row so concurrent
// submissions cannot both spend the same approval.
func (r *Repo) ConsumeApproved(ctx context.Context, accountID uuid.UUID, commandText string) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	const sql = `
		UPDATE approval_requests
		SET status = 'USED'
		WHERE id IN (
			SELECT id FROM approval_requests
			WHERE account_id = $1 AND command_text = $2 AND status = 'APPROVED'
			ORDER BY created_at
			LIMIT 1
		)`

	tag, err := q.Exec(ctx, sql, accountID, commandText)
	if err != nil {
		return false, postgres.MapError(err, "approval_request", accountID)
	}

	return tag.RowsAffected() == 1, nil
}

// EnsurePending inserts a PENDING request for (accountID, commandText)
// unless one already exists. The partial unique index on PENDING rows makes
// this idempotent under concurrent load. Returns true when a new request was
// created.
func (r *Repo) EnsurePending(ctx context.Context, req *domain.ApprovalRequest) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	const sql = `
		INSERT INTO approval_requests (id, account_id, command_text, status, created_at)
		VALUES ($1, $2, $3, 'PENDING', $4)
		ON CONFLICT (account_id, command_text) WHERE status = 'PENDING' DO NOTHING`

	tag, err := q.Exec(ctx, sql, req.ID, req.AccountID, req.CommandText, req.CreatedAt)
	if err != nil {
		return false, postgres.MapError(err, "approval_request", req.ID)
	}

	return tag.RowsAffected() == 1, nil
}

// DecidePending transitions a PENDING request to the given status and stamps
// decided_at. Returns false when the request was not PENDING anymore (or the
// row vanished), leaving the caller to distinguish conflict from not-found.
func (r *Repo) DecidePending(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus, decidedAt time.Time) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Update(table).
		Set("status", status.String()).
		Set("decided_at", decidedAt).
		Where(squirrel.Eq{"id": id, "status": domain.ApprovalStatusPending.String()}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("approval: build update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return false, postgres.MapError(err, "approval_request", id)
	}

	return tag.RowsAffected() == 1, nil
}

// pendingRow is the scan target for the admin pending queue.
type pendingRow struct {
	ID          uuid.UUID `db:"id"`
	Username    string    `db:"username"`
	CommandText string    `db:"command_text"`
	CreatedAt   time.Time `db:"created_at"`
}

// ListPending returns all PENDING requests joined with requester usernames,
// most recent first.
func (r *Repo) ListPending(ctx context.Context) ([]domain.PendingApproval, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select("ar.id", "a.username", "ar.command_text", "ar.created_at").
		From(table + " ar").
		Join("accounts a ON a.id = ar.account_id").
		Where(squirrel.Eq{"ar.status": domain.ApprovalStatusPending.String()}).
		OrderBy("ar.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("approval: build query: %w", err)
	}

	var rows []pendingRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "approval_request", "pending")
	}

	pending := make([]domain.PendingApproval, len(rows))
	for i, row := range rows {
		pending[i] = domain.PendingApproval{
			ID:          row.ID,
			Username:    row.Username,
			CommandText: row.CommandText,
			CreatedAt:   row.CreatedAt,
		}
	}

	return pending, nil
}
