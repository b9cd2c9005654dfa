package interfaces

import "ui_automation/domain/entities"

// ActionGuard decides which actions need the user's approval
type ActionGuard interface {
	// RequiresApproval returns the pending action when action against the
	// element described by meta must be confirmed, or nil
	RequiresApproval(action entities.Action, meta *entities.Metadata) *entities.PendingAction

	// RiskLevel grades action against the element described by meta
	RiskLevel(action entities.Action, meta *entities.Metadata) entities.RiskLevel
}
