// Package account implements account provisioning and identity resolution.
package account

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/cmdgate/internal/domain"
	"github.com/heartmarshall/cmdgate/pkg/ctxutil"
)

const apiKeyBytes = 16

// accountRepo defines the account operations needed by the service.
type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
}

// Service manages accounts.
type Service struct {
	log            *slog.Logger
	accounts       accountRepo
	defaultCredits int
}

// NewService creates a new account service instance. defaultCredits is the
// starting balance for newly provisioned accounts.
func NewService(logger *slog.Logger, accounts accountRepo, defaultCredits int) *Service {
	return &Service{
		log:            logger.With("service", "account"),
		accounts:       accounts,
		defaultCredits: defaultCredits,
	}
}

// ResolveAPIKey looks up the account owning the given API key. Any lookup
// failure surfaces as ErrUnauthorized so a probing caller cannot tell a
// missing key from a malformed one.
func (s *Service) ResolveAPIKey(ctx context.Context, apiKey string) (*domain.Account, error) {
	if apiKey == "" {
		return nil, domain.ErrUnauthorized
	}

	acc, err := s.accounts.GetByAPIKey(ctx, apiKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("account.ResolveAPIKey: %w", err)
	}

	return acc, nil
}

// WhoAmI returns the account of the caller identified by the context.
func (s *Service) WhoAmI(ctx context.Context) (*domain.Account, error) {
	id, ok := ctxutil.AccountIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("account.WhoAmI: %w", err)
	}

	return acc, nil
}

// Create provisions a new account with the default credit balance and a
// freshly generated opaque API key. The key is returned on the account and
// is not retrievable later.
func (s *Service) Create(ctx context.Context, username string, role domain.Role) (*domain.Account, error) {
	username = strings.TrimSpace(username)

	var fields []domain.FieldError
	if username == "" {
		fields = append(fields, domain.FieldError{Field: "username", Message: "required"})
	}
	if !role.IsValid() {
		fields = append(fields, domain.FieldError{Field: "role", Message: "must be one of admin, member"})
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Errors: fields}
	}

	key, err := GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("account.Create: %w", err)
	}

	acc := &domain.Account{
		ID:        uuid.New(),
		Username:  username,
		APIKey:    key,
		Role:      role,
		Credits:   s.defaultCredits,
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.accounts.Create(ctx, acc)
	if err != nil {
		return nil, fmt.Errorf("account.Create: %w", err)
	}

	s.log.InfoContext(ctx, "account created",
		slog.String("account_id", created.ID.String()),
		slog.String("username", created.Username),
		slog.String("role", created.Role.String()),
	)
	return created, nil
}

// GenerateAPIKey returns a fresh URL-safe opaque key.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
