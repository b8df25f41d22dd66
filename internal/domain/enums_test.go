package domain

import "testing"

func TestRole_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleMember, true},
		{Role("root"), false},
		{Role(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			t.Parallel()
			if got := tt.role.IsValid(); got != tt.want {
				t.Errorf("Role(%q).IsValid() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestRuleAction_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action RuleAction
		want   bool
	}{
		{RuleActionAutoAccept, true},
		{RuleActionAutoReject, true},
		{RuleActionRequireApproval, true},
		{RuleAction("AUTO_ALLOW"), false},
		{RuleAction(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			t.Parallel()
			if got := tt.action.IsValid(); got != tt.want {
				t.Errorf("RuleAction(%q).IsValid() = %v, want %v", tt.action, got, tt.want)
			}
		})
	}
}

func TestApprovalStatus_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ApprovalStatus
		want   bool
	}{
		{ApprovalStatusPending, true},
		{ApprovalStatusApproved, true},
		{ApprovalStatusRejected, true},
		{ApprovalStatusUsed, true},
		{ApprovalStatus("EXPIRED"), false},
		{ApprovalStatus(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			if got := tt.status.IsValid(); got != tt.want {
				t.Errorf("ApprovalStatus(%q).IsValid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestAuditAction_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action AuditAction
		want   bool
	}{
		{AuditActionExecuted, true},
		{AuditActionRejected, true},
		{AuditActionPendingApproval, true},
		{AuditAction("approved"), false},
		{AuditAction(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			t.Parallel()
			if got := tt.action.IsValid(); got != tt.want {
				t.Errorf("AuditAction(%q).IsValid() = %v, want %v", tt.action, got, tt.want)
			}
		})
	}
}

func TestAccount_IsAdmin(t *testing.T) {
	t.Parallel()

	admin := Account{Role: RoleAdmin}
	member := Account{Role: RoleMember}

	if !admin.IsAdmin() {
		t.Error("admin account should be admin")
	}
	if member.IsAdmin() {
		t.Error("member account should not be admin")
	}
}

func TestAccount_HasCredits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		credits int
		want    bool
	}{
		{100, true},
		{1, true},
		{0, false},
		{-1, false},
	}
	for _, tt := range tests {
		a := Account{Credits: tt.credits}
		if got := a.HasCredits(); got != tt.want {
			t.Errorf("Account{Credits: %d}.HasCredits() = %v, want %v", tt.credits, got, tt.want)
		}
	}
}
