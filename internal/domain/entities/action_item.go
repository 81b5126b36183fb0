package entities

// ActionItem is a follow-up task extracted from a meeting transcript.
// Empty strings mean the field was not provided.
type ActionItem struct {
	Title          string `json:"title"`
	Owner          string `json:"owner,omitempty"`
	Due            string `json:"due_date,omitempty"` // ISO date or free-text phrase such as "by Friday"
	Details        string `json:"details,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
	Priority       string `json:"priority"`
	TaskID         string `json:"task_id,omitempty"`
}

// ActionItemPriority constants
const (
	ActionItemPriorityLow    = "low"
	ActionItemPriorityMedium = "medium"
	ActionItemPriorityHigh   = "high"
	ActionItemPriorityUrgent = "urgent"
)

// DefaultActionTitle is used when an item arrives without a title
const DefaultActionTitle = "Follow-up from meeting"

// Insights is the structured analysis of one transcript
type Insights struct {
	Summary     string       `json:"summary"`
	Decisions   []string     `json:"decisions"`
	ActionItems []ActionItem `json:"action_items"`
}

// DispatchResult is the outcome of dispatching one action item.
// ICSPath is empty exactly when no concrete date could be resolved.
type DispatchResult struct {
	Title    string `json:"title"`
	IssueURL string `json:"issue_url"`
	ICSPath  string `json:"ics_path,omitempty"`
	ICSURL   string `json:"ics_url,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
}
