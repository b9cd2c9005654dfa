package entities

// RiskLevel grades how much an action can change application state.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// PendingAction is an action held back until the user confirms it.
type PendingAction struct {
	Action  Action    `json:"action"`
	Element string    `json:"element"` // metadata path of the target
	Risk    RiskLevel `json:"risk"`
	Reason  string    `json:"reason"`
}
