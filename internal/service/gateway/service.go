// Package gateway implements the command evaluation pipeline: rule matching,
// approval-workflow resolution, credit debit, and audit logging, all inside
// one serializable transaction per submission.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/cmdgate/internal/domain"
)

// accountRepo defines the account operations needed by the gateway.
type accountRepo interface {
	GetBalance(ctx context.Context, id uuid.UUID) (int, error)
	Debit(ctx context.Context, id uuid.UUID, amount int) (int, error)
}

// ruleRepo defines the rule operations needed by the gateway.
type ruleRepo interface {
	List(ctx context.Context) ([]domain.Rule, error)
}

// approvalRepo defines the approval operations needed by the gateway.
type approvalRepo interface {
	ConsumeApproved(ctx context.Context, accountID uuid.UUID, commandText string) (bool, error)
	EnsurePending(ctx context.Context, req *domain.ApprovalRequest) (bool, error)
}

// auditRepo defines the audit operations needed by the gateway.
type auditRepo interface {
	Create(ctx context.Context, record *domain.AuditRecord) error
}

// txManager defines the transaction manager interface needed by the gateway.
type txManager interface {
	RunSerializable(ctx context.Context, attempts int, fn func(ctx context.Context) error) error
}

// Service evaluates submitted commands.
type Service struct {
	log       *slog.Logger
	accounts  accountRepo
	rules     ruleRepo
	approvals approvalRepo
	audit     auditRepo
	tx        txManager
	matcher   *Matcher
	txRetries int
}

// NewService creates a new gateway service instance.
func NewService(
	logger *slog.Logger,
	accounts accountRepo,
	rules ruleRepo,
	approvals approvalRepo,
	audit auditRepo,
	tx txManager,
	txRetries int,
) *Service {
	return &Service{
		log:       logger.With("service", "gateway"),
		accounts:  accounts,
		rules:     rules,
		approvals: approvals,
		audit:     audit,
		tx:        tx,
		matcher:   NewMatcher(logger),
		txRetries: txRetries,
	}
}

// EvaluateCommand classifies one submitted command and applies its side
// effects (credit debit, approval-state transition, audit entry) atomically.
// Either all persisted effects of one evaluation commit, or none do.
//
// Rejection for insufficient credits writes NO audit entry, which
// distinguishes it from rule-based rejection.
func (s *Service) EvaluateCommand(ctx context.Context, accountID uuid.UUID, commandText string) (*domain.Outcome, error) {
	if strings.TrimSpace(commandText) == "" {
		return nil, domain.NewValidationError("command_text", "required")
	}

	var outcome *domain.Outcome
	err := s.tx.RunSerializable(ctx, s.txRetries, func(ctx context.Context) error {
		var err error
		outcome, err = s.evaluate(ctx, accountID, commandText)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("gateway.EvaluateCommand: %w", err)
	}

	s.log.InfoContext(ctx, "command evaluated",
		slog.String("account_id", accountID.String()),
		slog.String("status", outcome.Status.String()),
	)

	return outcome, nil
}

// evaluate runs inside the transaction opened by EvaluateCommand.
func (s *Service) evaluate(ctx context.Context, accountID uuid.UUID, commandText string) (*domain.Outcome, error) {
	balance, err := s.accounts.GetBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if balance <= 0 {
		return insufficientCredits(balance), nil
	}

	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, err
	}
	action := s.matcher.Match(commandText, rules)

	if action == domain.RuleActionRequireApproval {
		consumed, err := s.approvals.ConsumeApproved(ctx, accountID, commandText)
		if err != nil {
			return nil, err
		}
		if consumed {
			// Approval spent: execute as if the rule had said AUTO_ACCEPT.
			action = domain.RuleActionAutoAccept
		} else {
			return s.awaitApproval(ctx, accountID, commandText, balance)
		}
	}

	if action == domain.RuleActionAutoAccept {
		return s.execute(ctx, accountID, commandText, balance)
	}

	if err := s.audit.Create(ctx, newAuditRecord(accountID, commandText, domain.AuditActionRejected)); err != nil {
		return nil, err
	}
	return &domain.Outcome{
		Status:     domain.CommandStatusRejected,
		NewBalance: balance,
		Message:    "Blocked by rule",
	}, nil
}

// awaitApproval guarantees a PENDING request exists for the key and records
// the pending outcome. The ledger is not touched on this path.
func (s *Service) awaitApproval(ctx context.Context, accountID uuid.UUID, commandText string, balance int) (*domain.Outcome, error) {
	req := &domain.ApprovalRequest{
		ID:          uuid.New(),
		AccountID:   accountID,
		CommandText: commandText,
		Status:      domain.ApprovalStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.approvals.EnsurePending(ctx, req); err != nil {
		return nil, err
	}

	if err := s.audit.Create(ctx, newAuditRecord(accountID, commandText, domain.AuditActionPendingApproval)); err != nil {
		return nil, err
	}

	return &domain.Outcome{
		Status:     domain.CommandStatusPending,
		NewBalance: balance,
		Message:    "Approval required. Request sent to admin.",
	}, nil
}

// execute debits one credit and records the executed outcome. The debit is a
// conditional update: if a concurrent evaluation spent the last credit since
// the balance check, the command is rejected without an audit entry, same as
// the up-front check.
func (s *Service) execute(ctx context.Context, accountID uuid.UUID, commandText string, balance int) (*domain.Outcome, error) {
	newBalance, err := s.accounts.Debit(ctx, accountID, 1)
	if errors.Is(err, domain.ErrInsufficientCredits) {
		return insufficientCredits(balance), nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.audit.Create(ctx, newAuditRecord(accountID, commandText, domain.AuditActionExecuted)); err != nil {
		return nil, err
	}

	return &domain.Outcome{
		Status:     domain.CommandStatusExecuted,
		NewBalance: newBalance,
		Message:    "Command executed",
	}, nil
}

func insufficientCredits(balance int) *domain.Outcome {
	return &domain.Outcome{
		Status:     domain.CommandStatusRejected,
		NewBalance: balance,
		Message:    "Insufficient credits",
	}
}

func newAuditRecord(accountID uuid.UUID, commandText string, action domain.AuditAction) *domain.AuditRecord {
	return &domain.AuditRecord{
		ID:          uuid.New(),
		AccountID:   accountID,
		CommandText: commandText,
		Action:      action,
		CreatedAt:   time.Now().UTC(),
	}
}
