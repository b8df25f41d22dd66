// Package account implements the account repository using PostgreSQL.
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/cmdgate/internal/adapter/postgres"
	"github.com/heartmarshall/cmdgate/internal/domain"
)

const table = "accounts"

var columns = []string{"id", "username", "api_key", "role", "credits", "created_at"}

// Repo provides account persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new account repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// accountRow is the scany scan target for account queries.
type accountRow struct {
	ID        uuid.UUID `db:"id"`
	Username  string    `db:"username"`
	APIKey    string    `db:"api_key"`
	Role      string    `db:"role"`
	Credits   int       `db:"credits"`
	CreatedAt time.Time `db:"created_at"`
}

func (r accountRow) toDomain() *domain.Account {
	return &domain.Account{
		ID:        r.ID,
		Username:  r.Username,
		APIKey:    r.APIKey,
		Role:      domain.Role(r.Role),
		Credits:   r.Credits,
		CreatedAt: r.CreatedAt,
	}
}

// GetByID returns an account by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("account: build query: %w", err)
	}

	var row accountRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "account", id)
	}

	return row.toDomain(), nil
}

// GetByAPIKey resolves an opaque API key to an account.
func (r *Repo) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Account, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"api_key": apiKey}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("account: build query: %w", err)
	}

	var row accountRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		// Key text never goes into error messages.
		return nil, postgres.MapError(err, "account", "api_key")
	}

	return row.toDomain(), nil
}

// Create inserts a new account and returns the persisted domain.Account.
// A duplicate username surfaces as domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(a.ID, a.Username, a.APIKey, a.Role.String(), a.Credits, a.CreatedAt).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("account: build insert: %w", err)
	}

	var row accountRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "account", a.Username)
	}

	return row.toDomain(), nil
}

// GetBalance returns the current credit balance for an account.
func (r *Repo) GetBalance(ctx context.Context, id uuid.UUID) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select("credits").
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("account: build query: %w", err)
	}

	var credits int
	if err := q.QueryRow(ctx, sql, args...).Scan(&credits); err != nil {
		return 0, postgres.MapError(err, "account", id)
	}

	return credits, nil
}

// Debit atomically subtracts amount from the account's balance and returns
// the new balance. The subtraction is a single conditional update so two
// concurrent debits cannot both succeed on the last credit. Returns
// domain.ErrInsufficientCredits when the balance is too low.
func (r *Repo) Debit(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Update(table).
		Set("credits", squirrel.Expr("credits - ?", amount)).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("credits >= ?", amount)).
		Suffix("RETURNING credits").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("account: build debit: %w", err)
	}

	var credits int
	if err := q.QueryRow(ctx, sql, args...).Scan(&credits); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("account %s: %w", id, domain.ErrInsufficientCredits)
		}
		return 0, postgres.MapError(err, "account", id)
	}

	return credits, nil
}

// AdminExists reports whether any admin account has been provisioned.
// Used by idempotent startup seeding.
func (r *Repo) AdminExists(ctx context.Context) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select("1").
		From(table).
		Where(squirrel.Eq{"role": domain.RoleAdmin.String()}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("account: build query: %w", err)
	}

	var one int
	err = q.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, postgres.MapError(err, "account", "admin")
	}

	return true, nil
}

func joinColumns() string {
	out := columns[0]
	for _, c := range columns[1:] {
		out += ", " + c
	}
	return out
}
