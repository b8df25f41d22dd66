package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/cmdgate/internal/config"
	"github.com/heartmarshall/cmdgate/internal/domain"
	"github.com/heartmarshall/cmdgate/internal/service/account"
)

// defaultRules is the bootstrap rule set installed alongside the first admin
// account. Order matters: rejections are checked before acceptances.
var defaultRules = []struct {
	pattern string
	action  domain.RuleAction
}{
	{`:\(\)\{ :\|:& \};:`, domain.RuleActionAutoReject},
	{`rm\s+-rf\s+/`, domain.RuleActionAutoReject},
	{`mkfs\.`, domain.RuleActionAutoReject},
	{`git\s+(status|log|diff)`, domain.RuleActionAutoAccept},
	{`^(ls|cat|pwd|echo)`, domain.RuleActionAutoAccept},
}

type seedAccountRepo interface {
	AdminExists(ctx context.Context) (bool, error)
	Create(ctx context.Context, a *domain.Account) (*domain.Account, error)
}

type seedRuleRepo interface {
	Create(ctx context.Context, r *domain.Rule) (*domain.Rule, error)
}

type seedTxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// seed provisions the bootstrap admin and the default rule set on first
// start. It is idempotent: when any admin account already exists, nothing
// happens. The whole seed runs in one transaction so a crash mid-seed
// cannot leave an admin without rules.
func seed(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.GatewayConfig,
	accounts seedAccountRepo,
	rules seedRuleRepo,
	tx seedTxManager,
) error {
	exists, err := accounts.AdminExists(ctx)
	if err != nil {
		return fmt.Errorf("seed: check admin: %w", err)
	}
	if exists {
		return nil
	}

	key := cfg.SeedAdminKey
	generated := false
	if key == "" {
		key, err = account.GenerateAPIKey()
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		generated = true
	}

	now := time.Now().UTC()
	err = tx.RunInTx(ctx, func(ctx context.Context) error {
		admin := &domain.Account{
			ID:        uuid.New(),
			Username:  "admin",
			APIKey:    key,
			Role:      domain.RoleAdmin,
			Credits:   cfg.SeedAdminCredits,
			CreatedAt: now,
		}
		if _, err := accounts.Create(ctx, admin); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}

		for _, dr := range defaultRules {
			rule := &domain.Rule{
				ID:        uuid.New(),
				Pattern:   dr.pattern,
				Action:    dr.action,
				CreatedAt: now,
			}
			if _, err := rules.Create(ctx, rule); err != nil {
				return fmt.Errorf("create rule %q: %w", dr.pattern, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	if generated {
		// The only place the generated key is ever shown.
		logger.Info("bootstrap admin created", slog.String("api_key", key))
	} else {
		logger.Info("bootstrap admin created with configured key")
	}
	logger.Info("default rules installed", slog.Int("count", len(defaultRules)))

	return nil
}
