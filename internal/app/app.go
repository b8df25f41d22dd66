// Package app wires configuration, storage, services, and transport into a
// running HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/heartmarshall/cmdgate/internal/adapter/postgres"
	accountrepo "github.com/heartmarshall/cmdgate/internal/adapter/postgres/account"
	approvalrepo "github.com/heartmarshall/cmdgate/internal/adapter/postgres/approval"
	auditrepo "github.com/heartmarshall/cmdgate/internal/adapter/postgres/audit"
	rulerepo "github.com/heartmarshall/cmdgate/internal/adapter/postgres/rule"
	"github.com/heartmarshall/cmdgate/internal/config"
	accountsvc "github.com/heartmarshall/cmdgate/internal/service/account"
	approvalsvc "github.com/heartmarshall/cmdgate/internal/service/approval"
	auditsvc "github.com/heartmarshall/cmdgate/internal/service/audit"
	"github.com/heartmarshall/cmdgate/internal/service/gateway"
	rulessvc "github.com/heartmarshall/cmdgate/internal/service/rules"
	"github.com/heartmarshall/cmdgate/internal/transport/middleware"
	"github.com/heartmarshall/cmdgate/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, runs migrations and seeding, builds the service graph, and
// serves HTTP until the context is cancelled or a shutdown signal arrives.
func Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting command gateway",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	accounts := accountrepo.New(pool)
	rules := rulerepo.New(pool)
	approvals := approvalrepo.New(pool)
	audit := auditrepo.New(pool)

	if err := seed(ctx, logger, cfg.Gateway, accounts, rules, txManager); err != nil {
		return err
	}

	gatewaySvc := gateway.NewService(logger, accounts, rules, approvals, audit, txManager, cfg.Gateway.TxRetries)
	accountSvc := accountsvc.NewService(logger, accounts, cfg.Gateway.DefaultCredits)
	rulesSvc := rulessvc.NewService(logger, rules)
	approvalSvc := approvalsvc.NewService(logger, approvals)
	auditSvc := auditsvc.NewService(logger, audit, cfg.Gateway.AuditLimit)

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimitPerMin > 0 {
		limiter = middleware.NewRateLimiter(time.Minute)
		defer limiter.Stop()
	}

	router := rest.NewRouter(cfg, logger, rest.RouterDeps{
		Gateway:   gatewaySvc,
		Accounts:  accountSvc,
		Provision: accountSvc,
		Rules:     rulesSvc,
		Audit:     auditSvc,
		AuditAll:  auditSvc,
		Approvals: approvalSvc,
		Resolver:  accountSvc,
		DB:        pool,
		Version:   BuildVersion(),
		RateLimit: limiter,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}
