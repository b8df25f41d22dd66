// Package rules implements administration of the ordered rule list.
package rules

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/cmdgate/internal/domain"
)

// ruleRepo defines the rule operations needed by the service.
type ruleRepo interface {
	List(ctx context.Context) ([]domain.Rule, error)
	Create(ctx context.Context, rule *domain.Rule) (*domain.Rule, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service manages gating rules.
type Service struct {
	log   *slog.Logger
	rules ruleRepo
}

// NewService creates a new rules service instance.
func NewService(logger *slog.Logger, rules ruleRepo) *Service {
	return &Service{
		log:   logger.With("service", "rules"),
		rules: rules,
	}
}

// List returns all rules in evaluation order.
func (s *Service) List(ctx context.Context) ([]domain.Rule, error) {
	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("rules.List: %w", err)
	}
	return rules, nil
}

// Add appends a rule to the end of the evaluation order. The pattern must
// compile so a new rule cannot be dead on arrival; rules that predate a
// syntax change are still skipped at evaluation time instead.
func (s *Service) Add(ctx context.Context, pattern string, action domain.RuleAction) (*domain.Rule, error) {
	pattern = strings.TrimSpace(pattern)

	var fields []domain.FieldError
	if pattern == "" {
		fields = append(fields, domain.FieldError{Field: "pattern", Message: "required"})
	} else if _, err := regexp.Compile(pattern); err != nil {
		fields = append(fields, domain.FieldError{Field: "pattern", Message: "invalid regular expression"})
	}
	if !action.IsValid() {
		fields = append(fields, domain.FieldError{Field: "action", Message: "must be one of AUTO_ACCEPT, AUTO_REJECT, REQUIRE_APPROVAL"})
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Errors: fields}
	}

	rule := &domain.Rule{
		ID:        uuid.New(),
		Pattern:   pattern,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.rules.Create(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("rules.Add: %w", err)
	}

	s.log.InfoContext(ctx, "rule added",
		slog.String("rule_id", created.ID.String()),
		slog.String("action", created.Action.String()),
	)
	return created, nil
}

// Delete removes a rule. Deleting an unknown id is a no-op.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.rules.Delete(ctx, id); err != nil {
		return fmt.Errorf("rules.Delete: %w", err)
	}
	s.log.InfoContext(ctx, "rule deleted", slog.String("rule_id", id.String()))
	return nil
}
