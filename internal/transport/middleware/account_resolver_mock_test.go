package middleware

import (
	"context"
	"sync"

	"github.com/heartmarshall/cmdgate/internal/domain"
)

var _ accountResolver = &accountResolverMock{}

type accountResolverMock struct {
	ResolveAPIKeyFunc func(ctx context.Context, apiKey string) (*domain.Account, error)

	calls struct {
		ResolveAPIKey []struct {
			Ctx    context.Context
			APIKey string
		}
	}
	lockResolveAPIKey sync.RWMutex
}

func (mock *accountResolverMock) ResolveAPIKey(ctx context.Context, apiKey string) (*domain.Account, error) {
	if mock.ResolveAPIKeyFunc == nil {
		panic("accountResolverMock.ResolveAPIKeyFunc: method is nil but accountResolver.ResolveAPIKey was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		APIKey string
	}{Ctx: ctx, APIKey: apiKey}
	mock.lockResolveAPIKey.Lock()
	mock.calls.ResolveAPIKey = append(mock.calls.ResolveAPIKey, callInfo)
	mock.lockResolveAPIKey.Unlock()
	return mock.ResolveAPIKeyFunc(ctx, apiKey)
}

func (mock *accountResolverMock) ResolveAPIKeyCalls() []struct {
	Ctx    context.Context
	APIKey string
} {
	mock.lockResolveAPIKey.RLock()
	calls := mock.calls.ResolveAPIKey
	mock.lockResolveAPIKey.RUnlock()
	return calls
}
