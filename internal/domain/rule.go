package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rule classifies commands by regular-expression search.
// Rules are evaluated in SortOrder (creation order); the first rule whose
// pattern matches anywhere in the command text wins.
type Rule struct {
	ID        uuid.UUID
	SortOrder int64
	Pattern   string
	Action    RuleAction
	CreatedAt time.Time
}
