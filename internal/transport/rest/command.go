// Package rest implements the HTTP API surface.
package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/cmdgate/internal/domain"
	"github.com/heartmarshall/cmdgate/pkg/ctxutil"
)

type gatewayService interface {
	EvaluateCommand(ctx context.Context, accountID uuid.UUID, commandText string) (*domain.Outcome, error)
}

type accountService interface {
	WhoAmI(ctx context.Context) (*domain.Account, error)
}

type auditService interface {
	History(ctx context.Context) ([]domain.AuditRecord, error)
}

// CommandHandler serves the member-facing endpoints: command submission,
// own account, own history.
type CommandHandler struct {
	gateway  gatewayService
	accounts accountService
	audit    auditService
	log      *slog.Logger
}

// NewCommandHandler creates a CommandHandler.
func NewCommandHandler(gateway gatewayService, accounts accountService, audit auditService, logger *slog.Logger) *CommandHandler {
	return &CommandHandler{
		gateway:  gateway,
		accounts: accounts,
		audit:    audit,
		log:      logger.With("handler", "command"),
	}
}

type submitCommandRequest struct {
	CommandText string `json:"command_text"`
}

type outcomeResponse struct {
	Status     string `json:"status"`
	NewBalance int    `json:"new_balance"`
	Message    string `json:"message"`
}

type accountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Credits  int    `json:"credits"`
}

type historyEntryResponse struct {
	ID          string    `json:"id"`
	CommandText string    `json:"command_text"`
	Action      string    `json:"action"`
	CreatedAt   time.Time `json:"created_at"`
}

// Submit handles POST /api/commands.
func (h *CommandHandler) Submit(w http.ResponseWriter, r *http.Request) {
	accountID, ok := ctxutil.AccountIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req submitCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	outcome, err := h.gateway.EvaluateCommand(r.Context(), accountID, req.CommandText)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, outcomeResponse{
		Status:     outcome.Status.String(),
		NewBalance: outcome.NewBalance,
		Message:    outcome.Message,
	})
}

// Me handles GET /api/me.
func (h *CommandHandler) Me(w http.ResponseWriter, r *http.Request) {
	acc, err := h.accounts.WhoAmI(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{
		ID:       acc.ID.String(),
		Username: acc.Username,
		Role:     acc.Role.String(),
		Credits:  acc.Credits,
	})
}

// History handles GET /api/history.
func (h *CommandHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.audit.History(r.Context())
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]historyEntryResponse, len(records))
	for i, rec := range records {
		out[i] = historyEntryResponse{
			ID:          rec.ID.String(),
			CommandText: rec.CommandText,
			Action:      rec.Action.String(),
			CreatedAt:   rec.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, out)
}
