package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/cmdgate/internal/domain"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, domain.ErrAlreadyExists},
		{"fk violation", &pgconn.PgError{Code: "23503"}, domain.ErrNotFound},
		{"check violation", &pgconn.PgError{Code: "23514"}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MapError(tt.err, "rule", "abc")
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapError_ContextErrorsPassThrough(t *testing.T) {
	t.Parallel()

	err := MapError(fmt.Errorf("query: %w", context.Canceled), "account", "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestMapError_UnknownWrapped(t *testing.T) {
	t.Parallel()

	base := errors.New("connection refused")
	err := MapError(base, "audit_record", 42)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "audit_record 42")
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, isRetryable(fmt.Errorf("tx: %w", &pgconn.PgError{Code: "40001"})))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, isRetryable(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isRetryable(errors.New("boom")))
}
