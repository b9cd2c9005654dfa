package entities

// ActionType represents the type of action a session can perform
type ActionType string

const (
	ActionClick ActionType = "click"
	ActionFill  ActionType = "fill"
	ActionText  ActionType = "text"
	ActionSize  ActionType = "size"
	ActionGet   ActionType = "get"
	ActionAt    ActionType = "at"
	ActionFirst ActionType = "first"
	ActionLast  ActionType = "last"
	ActionDump  ActionType = "dump"
	ActionWait  ActionType = "wait"
)

// Action represents a single action against a named field of a wired page.
// Target is a dotted field path ("results" or "header.search").
type Action struct {
	Type   ActionType `json:"type"`
	Target string     `json:"target"`
	Arg    string     `json:"arg,omitempty"`
}

// ActionResult represents the result of an action
type ActionResult struct {
	Action  Action `json:"action"`
	Success bool   `json:"success"`
	Data    string `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}
