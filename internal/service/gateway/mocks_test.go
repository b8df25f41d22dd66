package gateway

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/cmdgate/internal/domain"
)

//go:generate moq -out account_repo_mock_test.go -pkg gateway . accountRepo

var _ accountRepo = &accountRepoMock{}

type accountRepoMock struct {
	GetBalanceFunc func(ctx context.Context, id uuid.UUID) (int, error)
	DebitFunc      func(ctx context.Context, id uuid.UUID, amount int) (int, error)

	calls struct {
		GetBalance []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		Debit []struct {
			Ctx    context.Context
			ID     uuid.UUID
			Amount int
		}
	}
	lockGetBalance sync.RWMutex
	lockDebit      sync.RWMutex
}

func (mock *accountRepoMock) GetBalance(ctx context.Context, id uuid.UUID) (int, error) {
	if mock.GetBalanceFunc == nil {
		panic("accountRepoMock.GetBalanceFunc: method is nil but accountRepo.GetBalance was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockGetBalance.Lock()
	mock.calls.GetBalance = append(mock.calls.GetBalance, callInfo)
	mock.lockGetBalance.Unlock()
	return mock.GetBalanceFunc(ctx, id)
}

func (mock *accountRepoMock) Debit(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	if mock.DebitFunc == nil {
		panic("accountRepoMock.DebitFunc: method is nil but accountRepo.Debit was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		ID     uuid.UUID
		Amount int
	}{Ctx: ctx, ID: id, Amount: amount}
	mock.lockDebit.Lock()
	mock.calls.Debit = append(mock.calls.Debit, callInfo)
	mock.lockDebit.Unlock()
	return mock.DebitFunc(ctx, id, amount)
}

func (mock *accountRepoMock) DebitCalls() []struct {
	Ctx    context.Context
	ID     uuid.UUID
	Amount int
} {
	mock.lockDebit.RLock()
	calls := mock.calls.Debit
	mock.lockDebit.RUnlock()
	return calls
}

var _ ruleRepo = &ruleRepoMock{}

type ruleRepoMock struct {
	ListFunc func(ctx context.Context) ([]domain.Rule, error)

	calls struct {
		List []struct {
			Ctx context.Context
		}
	}
	lockList sync.RWMutex
}

func (mock *ruleRepoMock) List(ctx context.Context) ([]domain.Rule, error) {
	if mock.ListFunc == nil {
		panic("ruleRepoMock.ListFunc: method is nil but ruleRepo.List was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx)
}

var _ approvalRepo = &approvalRepoMock{}

type approvalRepoMock struct {
	ConsumeApprovedFunc func(ctx context.Context, accountID uuid.UUID, commandText string) (bool, error)
	EnsurePendingFunc   func(ctx context.Context, req *domain.ApprovalRequest) (bool, error)

	calls struct {
		ConsumeApproved []struct {
			Ctx         context.Context
			AccountID   uuid.UUID
			CommandText string
		}
		EnsurePending []struct {
			Ctx context.Context
			Req *domain.ApprovalRequest
		}
	}
	lockConsumeApproved sync.RWMutex
	lockEnsurePending   sync.RWMutex
}

func (mock *approvalRepoMock) ConsumeApproved(ctx context.Context, accountID uuid.UUID, commandText string) (bool, error) {
	if mock.ConsumeApprovedFunc == nil {
		panic("approvalRepoMock.ConsumeApprovedFunc: method is nil but approvalRepo.ConsumeApproved was just called")
	}
	callInfo := struct {
		Ctx         context.Context
		AccountID   uuid.UUID
		CommandText string
	}{Ctx: ctx, AccountID: accountID, CommandText: commandText}
	mock.lockConsumeApproved.Lock()
	mock.calls.ConsumeApproved = append(mock.calls.ConsumeApproved, callInfo)
	mock.lockConsumeApproved.Unlock()
	return mock.ConsumeApprovedFunc(ctx, accountID, commandText)
}

func (mock *approvalRepoMock) EnsurePending(ctx context.Context, req *domain.ApprovalRequest) (bool, error) {
	if mock.EnsurePendingFunc == nil {
		panic("approvalRepoMock.EnsurePendingFunc: method is nil but approvalRepo.EnsurePending was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Req *domain.ApprovalRequest
	}{Ctx: ctx, Req: req}
	mock.lockEnsurePending.Lock()
	mock.calls.EnsurePending = append(mock.calls.EnsurePending, callInfo)
	mock.lockEnsurePending.Unlock()
	return mock.EnsurePendingFunc(ctx, req)
}

func (mock *approvalRepoMock) EnsurePendingCalls() []struct {
	Ctx context.Context
	Req *domain.ApprovalRequest
} {
	mock.lockEnsurePending.RLock()
	calls := mock.calls.EnsurePending
	mock.lockEnsurePending.RUnlock()
	return calls
}

var _ auditRepo = &auditRepoMock{}

type auditRepoMock struct {
	CreateFunc func(ctx context.Context, record *domain.AuditRecord) error

	calls struct {
		Create []struct {
			Ctx    context.Context
			Record *domain.AuditRecord
		}
	}
	lockCreate sync.RWMutex
}

func (mock *auditRepoMock) Create(ctx context.Context, record *domain.AuditRecord) error {
	if mock.CreateFunc == nil {
		panic("auditRepoMock.CreateFunc: method is nil but auditRepo.Create was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Record *domain.AuditRecord
	}{Ctx: ctx, Record: record}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, record)
}

func (mock *auditRepoMock) CreateCalls() []struct {
	Ctx    context.Context
	Record *domain.AuditRecord
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	RunSerializableFunc func(ctx context.Context, attempts int, fn func(ctx context.Context) error) error
}

func (mock *txManagerMock) RunSerializable(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	if mock.RunSerializableFunc == nil {
		panic("txManagerMock.RunSerializableFunc: method is nil but txManager.RunSerializable was just called")
	}
	return mock.RunSerializableFunc(ctx, attempts, fn)
}

// passthroughTx runs the callback directly, standing in for a committed
// transaction.
func passthroughTx() *txManagerMock {
	return &txManagerMock{
		RunSerializableFunc: func(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
}
