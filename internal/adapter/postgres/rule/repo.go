// Package rule implements the rule repository using PostgreSQL.
package rule

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

const table = "rules"

var columns = []string{"id", "sort_order", "pattern", "action", "created_at"}

// Repo provides rule persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new rule repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

type ruleRow struct {
	ID        uuid.UUID `db:"id"`
	SortOrder int64     `db:"sort_order"`
	Pattern   string    `db:"pattern"`
	Action    string    `db:"action"`
	CreatedAt time.Time `db:"created_at"`
}

func (r ruleRow) toDomain() domain.Rule {
	return domain.Rule{
		ID:        r.ID,
		SortOrder: r.SortOrder,
		Pattern:   r.Pattern,
		Action:    domain.RuleAction(r.Action),
		CreatedAt: r.CreatedAt,
	}
}

// List returns all rules in evaluation order (creation order).
func (r *Repo) List(ctx context.Context) ([]domain.Rule, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		OrderBy("sort_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("rule: build query: %w", err)
	}

	var rows []ruleRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "rule", "list")
	}

	rules := make([]domain.Rule, len(rows))
	for i, row := range rows {
		rules[i] = row.toDomain()
	}

	return rules, nil
}

// Create inserts a new rule at the end of the evaluation order and returns
// the persisted domain.Rule. sort_order is assigned by the database.
func (r *Repo) Create(ctx context.Context, rl *domain.Rule) (*domain.Rule, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Insert(table).
		Columns("id", "pattern", "action", "created_at").
		Values(rl.ID, rl.Pattern, rl.Action.String(), rl.CreatedAt).
		Suffix("RETURNING id, sort_order, pattern, action, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("rule: build insert: %w", err)
	}

	var row ruleRow
	if err := pgxscan.Get(ctx, q, &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "rule", rl.ID)
	}

	result := row.toDomain()
	return &result, nil
}

// Delete removes a rule by ID. Deleting an absent rule is a no-op, not an
// error (idempotent delete semantics).
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Delete(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("rule: build delete: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "rule", id)
	}

	return nil
}
