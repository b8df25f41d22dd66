package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/cmdgate/internal/config"
	"github.com/heartmarshall/cmdgate/internal/domain"
)

type seedAccountRepoMock struct {
	AdminExistsFunc func(ctx context.Context) (bool, error)
	CreateFunc      func(ctx context.Context, a *domain.Account) (*domain.Account, error)

	created []*domain.Account
}

func (m *seedAccountRepoMock) AdminExists(ctx context.Context) (bool, error) {
	return m.AdminExistsFunc(ctx)
}

func (m *seedAccountRepoMock) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	m.created = append(m.created, a)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	return a, nil
}

type seedRuleRepoMock struct {
	created []*domain.Rule
}

func (m *seedRuleRepoMock) Create(ctx context.Context, r *domain.Rule) (*domain.Rule, error) {
	m.created = append(m.created, r)
	return r, nil
}

type seedTxManagerMock struct{}

func (seedTxManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func seedConfig() config.GatewayConfig {
	return config.GatewayConfig{
		DefaultCredits:   100,
		SeedAdminCredits: 1000,
		SeedAdminKey:     "admin-secret-key",
		AuditLimit:       200,
		TxRetries:        3,
	}
}

func seedLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeed_FirstStart(t *testing.T) {
	t.Parallel()

	accounts := &seedAccountRepoMock{
		AdminExistsFunc: func(ctx context.Context) (bool, error) { return false, nil },
	}
	rules := &seedRuleRepoMock{}

	err := seed(context.Background(), seedLogger(), seedConfig(), accounts, rules, seedTxManagerMock{})
	require.NoError(t, err)

	require.Len(t, accounts.created, 1)
	admin := accounts.created[0]
	assert.Equal(t, "admin", admin.Username)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, 1000, admin.Credits)
	assert.Equal(t, "admin-secret-key", admin.APIKey)

	require.Len(t, rules.created, len(defaultRules))
	// Rejections come before acceptances in the bootstrap order.
	assert.Equal(t, domain.RuleActionAutoReject, rules.created[0].Action)
	assert.Equal(t, domain.RuleActionAutoAccept, rules.created[len(rules.created)-1].Action)
}

func TestSeed_AdminAlreadyExists(t *testing.T) {
	t.Parallel()

	accounts := &seedAccountRepoMock{
		AdminExistsFunc: func(ctx context.Context) (bool, error) { return true, nil },
	}
	rules := &seedRuleRepoMock{}

	err := seed(context.Background(), seedLogger(), seedConfig(), accounts, rules, seedTxManagerMock{})
	require.NoError(t, err)

	assert.Empty(t, accounts.created)
	assert.Empty(t, rules.created)
}

func TestSeed_GeneratesKeyWhenUnconfigured(t *testing.T) {
	t.Parallel()

	cfg := seedConfig()
	cfg.SeedAdminKey = ""

	accounts := &seedAccountRepoMock{
		AdminExistsFunc: func(ctx context.Context) (bool, error) { return false, nil },
	}

	err := seed(context.Background(), seedLogger(), cfg, accounts, &seedRuleRepoMock{}, seedTxManagerMock{})
	require.NoError(t, err)

	require.Len(t, accounts.created, 1)
	assert.NotEmpty(t, accounts.created[0].APIKey)
}

func TestSeed_DefaultRulesCompile(t *testing.T) {
	t.Parallel()

	for _, dr := range defaultRules {
		assert.True(t, dr.action.IsValid(), dr.pattern)
	}
}
