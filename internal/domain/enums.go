package domain

// Role represents the access level of an account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	}
	return false
}

// RuleAction is the classification a rule assigns to a matching command.
type RuleAction string

const (
	RuleActionAutoAccept      RuleAction = "AUTO_ACCEPT"
	RuleActionAutoReject      RuleAction = "AUTO_REJECT"
	RuleActionRequireApproval RuleAction = "REQUIRE_APPROVAL"
)

func (a RuleAction) String() string { return string(a) }

func (a RuleAction) IsValid() bool {
	switch a {
	case RuleActionAutoAccept, RuleActionAutoReject, RuleActionRequireApproval:
		return true
	}
	return false
}

// ApprovalStatus represents the lifecycle state of an approval request.
//
// Transitions: PENDING → APPROVED | REJECTED (admin decision),
// APPROVED → USED (consumed by a matching submission).
// REJECTED and USED are terminal.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
	ApprovalStatusUsed     ApprovalStatus = "USED"
)

func (s ApprovalStatus) String() string { return string(s) }

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected, ApprovalStatusUsed:
		return true
	}
	return false
}

// AuditAction is the outcome recorded for one command evaluation.
type AuditAction string

const (
	AuditActionExecuted        AuditAction = "executed"
	AuditActionRejected        AuditAction = "rejected"
	AuditActionPendingApproval AuditAction = "pending_approval"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionExecuted, AuditActionRejected, AuditActionPendingApproval:
		return true
	}
	return false
}

// CommandStatus is the status field of an evaluation outcome returned to
// the caller.
type CommandStatus string

const (
	CommandStatusExecuted CommandStatus = "executed"
	CommandStatusRejected CommandStatus = "rejected"
	CommandStatusPending  CommandStatus = "pending"
)

func (s CommandStatus) String() string { return string(s) }
