package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditRecord is an immutable record of one evaluation outcome.
// Records are append-only; nothing in the system updates or deletes them.
type AuditRecord struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	CommandText string
	Action      AuditAction
	CreatedAt   time.Time
}

// AuditEntry is an audit record joined with the acting account's username,
// as returned by the admin global audit listing.
type AuditEntry struct {
	ID          uuid.UUID
	Username    string
	CommandText string
	Action      AuditAction
	CreatedAt   time.Time
}
