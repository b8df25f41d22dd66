package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalRequest tracks whether a specific account may execute a specific
// literal command pending human sign-off. Matching is by exact command text,
// never by pattern, so an approval for "sudo reboot" does not authorize any
// other sudo command.
type ApprovalRequest struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	CommandText string
	Status      ApprovalStatus
	CreatedAt   time.Time
	DecidedAt   *time.Time
}

// PendingApproval is an approval request joined with the requester's
// username, as shown in the admin queue.
type PendingApproval struct {
	ID          uuid.UUID
	Username    string
	CommandText string
	CreatedAt   time.Time
}
