package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/cmdgate/internal/config"
	"github.com/heartmarshall/cmdgate/internal/domain"
	"github.com/heartmarshall/cmdgate/internal/transport/middleware"
)

// KeyResolver resolves opaque API keys for the auth middleware.
type KeyResolver interface {
	ResolveAPIKey(ctx context.Context, apiKey string) (*domain.Account, error)
}

// RouterDeps collects everything the router wires together.
type RouterDeps struct {
	Gateway   gatewayService
	Accounts  accountService
	Provision provisioningService
	Rules     rulesService
	Audit     auditService
	AuditAll  globalAuditService
	Approvals approvalService
	Resolver  KeyResolver
	DB        dbPinger
	Version   string
	RateLimit *middleware.RateLimiter
}

// NewRouter builds the HTTP handler tree: health probes are open, everything
// under /api/ requires an API key, admin routes additionally check the role
// inside the handler.
func NewRouter(cfg *config.Config, logger *slog.Logger, deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	health := NewHealthHandler(deps.DB, deps.Version)
	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /live", health.Live)

	commands := NewCommandHandler(deps.Gateway, deps.Accounts, deps.Audit, logger)
	admin := NewAdminHandler(deps.Rules, deps.Provision, deps.AuditAll, deps.Approvals, logger)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/commands", commands.Submit)
	api.HandleFunc("GET /api/me", commands.Me)
	api.HandleFunc("GET /api/history", commands.History)

	api.HandleFunc("GET /api/admin/rules", admin.ListRules)
	api.HandleFunc("POST /api/admin/rules", admin.AddRule)
	api.HandleFunc("DELETE /api/admin/rules/{id}", admin.DeleteRule)
	api.HandleFunc("POST /api/admin/users", admin.CreateUser)
	api.HandleFunc("GET /api/admin/audit", admin.ListAudit)
	api.HandleFunc("GET /api/admin/approvals", admin.ListApprovals)
	api.HandleFunc("POST /api/admin/approvals/{id}/{action}", admin.DecideApproval)

	mux.Handle("/api/", middleware.Auth(deps.Resolver)(api))

	mws := []middleware.Middleware{
		middleware.Middleware(middleware.RequestID),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	}
	if deps.RateLimit != nil && cfg.Server.RateLimitPerMin > 0 {
		mws = append(mws, deps.RateLimit.Limit(cfg.Server.RateLimitPerMin))
	}

	return middleware.Chain(mws...)(mux)
}
