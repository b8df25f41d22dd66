// Package audit serves the append-only evaluation log: per-member history
// and the admin-wide listing.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/cmdgate/internal/domain"
	"github.com/heartmarshall/cmdgate/pkg/ctxutil"
)

// auditRepo defines the audit operations needed by the service.
type auditRepo interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.AuditRecord, error)
	ListAll(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// Service reads the audit log.
type Service struct {
	log      *slog.Logger
	audit    auditRepo
	maxLimit int
}

// NewService creates a new audit service instance. maxLimit caps how many
// entries the admin listing returns in one call.
func NewService(logger *slog.Logger, audit auditRepo, maxLimit int) *Service {
	return &Service{
		log:      logger.With("service", "audit"),
		audit:    audit,
		maxLimit: maxLimit,
	}
}

// History returns the caller's own audit entries, newest first.
func (s *Service) History(ctx context.Context) ([]domain.AuditRecord, error) {
	id, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	records, err := s.audit.ListByAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("audit.History: %w", err)
	}
	return records, nil
}

// ListAll returns the global audit log joined with usernames, newest first.
// A non-positive or too-large limit falls back to the configured maximum.
func (s *Service) ListAll(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}

	entries, err := s.audit.ListAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("audit.ListAll: %w", err)
	}
	return entries, nil
}
