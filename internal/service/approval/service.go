// Package approval implements the admin side of the approval workflow.
package approval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/cmdgate/internal/domain"
)

// approvalRepo defines the approval operations needed by the service.
type approvalRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error)
	DecidePending(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus, decidedAt time.Time) (bool, error)
	ListPending(ctx context.Context) ([]domain.PendingApproval, error)
}

// Service manages approval requests.
type Service struct {
	log       *slog.Logger
	approvals approvalRepo
}

// NewService creates a new approval service instance.
func NewService(logger *slog.Logger, approvals approvalRepo) *Service {
	return &Service{
		log:       logger.With("service", "approval"),
		approvals: approvals,
	}
}

// ListPending returns all PENDING requests, newest first.
func (s *Service) ListPending(ctx context.Context) ([]domain.PendingApproval, error) {
	pending, err := s.approvals.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("approval.ListPending: %w", err)
	}
	return pending, nil
}

// Decide moves a PENDING request to APPROVED or REJECTED. Only PENDING
// requests can be decided: an already-decided or already-used request
// returns ErrConflict, an unknown id ErrNotFound. The update itself is
// guarded by the PENDING status so two concurrent decisions cannot both
// land.
func (s *Service) Decide(ctx context.Context, id uuid.UUID, approve bool) error {
	req, err := s.approvals.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("approval.Decide: %w", err)
	}
	if req.Status != domain.ApprovalStatusPending {
		return fmt.Errorf("approval %s is %s: %w", id, req.Status, domain.ErrConflict)
	}

	status := domain.ApprovalStatusRejected
	if approve {
		status = domain.ApprovalStatusApproved
	}

	decided, err := s.approvals.DecidePending(ctx, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("approval.Decide: %w", err)
	}
	if !decided {
		// Lost a race with another decision between the read and the update.
		return fmt.Errorf("approval %s: %w", id, domain.ErrConflict)
	}

	s.log.InfoContext(ctx, "approval decided",
		slog.String("approval_id", id.String()),
		slog.String("status", status.String()),
	)
	return nil
}
