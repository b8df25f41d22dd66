package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/cmdgate/internal/domain"
	"github.com/heartmarshall/cmdgate/internal/transport/middleware"
)

type rulesService interface {
	List(ctx context.Context) ([]domain.Rule, error)
	Add(ctx context.Context, pattern string, action domain.RuleAction) (*domain.Rule, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type provisioningService interface {
	Create(ctx context.Context, username string, role domain.Role) (*domain.Account, error)
}

type globalAuditService interface {
	ListAll(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

type approvalService interface {
	ListPending(ctx context.Context) ([]domain.PendingApproval, error)
	Decide(ctx context.Context, id uuid.UUID, approve bool) error
}

// AdminHandler serves the admin endpoints: rule management, user
// provisioning, the global audit log, and the approval queue.
type AdminHandler struct {
	rules     rulesService
	accounts  provisioningService
	audit     globalAuditService
	approvals approvalService
	log       *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	rules rulesService,
	accounts provisioningService,
	audit globalAuditService,
	approvals approvalService,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		rules:     rules,
		accounts:  accounts,
		audit:     audit,
		approvals: approvals,
		log:       logger.With("handler", "admin"),
	}
}

type ruleResponse struct {
	ID        string    `json:"id"`
	SortOrder int64     `json:"sort_order"`
	Pattern   string    `json:"pattern"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

type addRuleRequest struct {
	Pattern string `json:"pattern"`
	Action  string `json:"action"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type createUserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Credits  int    `json:"credits"`
	// APIKey is shown exactly once, at creation.
	APIKey string `json:"api_key"`
}

type auditEntryResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	CommandText string    `json:"command_text"`
	Action      string    `json:"action"`
	CreatedAt   time.Time `json:"created_at"`
}

type pendingApprovalResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	CommandText string    `json:"command_text"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListRules handles GET /api/admin/rules.
func (h *AdminHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	rules, err := h.rules.List(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]ruleResponse, len(rules))
	for i, rl := range rules {
		out[i] = toRuleResponse(rl)
	}
	writeJSON(w, http.StatusOK, out)
}

// AddRule handles POST /api/admin/rules.
func (h *AdminHandler) AddRule(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req addRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.rules.Add(r.Context(), req.Pattern, domain.RuleAction(req.Action))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRuleResponse(*created))
}

// DeleteRule handles DELETE /api/admin/rules/{id}. Deleting an unknown rule
// succeeds.
func (h *AdminHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rule id")
		return
	}

	if err := h.rules.Delete(r.Context(), id); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CreateUser handles POST /api/admin/users.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.accounts.Create(r.Context(), req.Username, domain.Role(req.Role))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createUserResponse{
		ID:       created.ID.String(),
		Username: created.Username,
		Role:     created.Role.String(),
		Credits:  created.Credits,
		APIKey:   created.APIKey,
	})
}

// ListAudit handles GET /api/admin/audit?limit=.
func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.audit.ListAll(r.Context(), limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = auditEntryResponse{
			ID:          e.ID.String(),
			Username:    e.Username,
			CommandText: e.CommandText,
			Action:      e.Action.String(),
			CreatedAt:   e.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// ListApprovals handles GET /api/admin/approvals.
func (h *AdminHandler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	pending, err := h.approvals.ListPending(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]pendingApprovalResponse, len(pending))
	for i, p := range pending {
		out[i] = pendingApprovalResponse{
			ID:          p.ID.String(),
			Username:    p.Username,
			CommandText: p.CommandText,
			CreatedAt:   p.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// DecideApproval handles POST /api/admin/approvals/{id}/{action} where
// action is approve or reject.
func (h *AdminHandler) DecideApproval(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid approval id")
		return
	}

	var approve bool
	switch r.PathValue("action") {
	case "approve":
		approve = true
	case "reject":
		approve = false
	default:
		writeError(w, http.StatusBadRequest, "action must be approve or reject")
		return
	}

	if err := h.approvals.Decide(r.Context(), id, approve); err != nil {
		handleError(h.log, w, r, err)
		return
	}

	status := "rejected"
	if approve {
		status = "approved"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		writeError(w, http.StatusForbidden, "admin access required")
		return false
	}
	return true
}

func toRuleResponse(rl domain.Rule) ruleResponse {
	return ruleResponse{
		ID:        rl.ID.String(),
		SortOrder: rl.SortOrder,
		Pattern:   rl.Pattern,
		Action:    rl.Action.String(),
		CreatedAt: rl.CreatedAt,
	}
}
