package dto

// CreateTaskRequest creates a tracker issue and, when the due date resolves,
// a calendar artifact. DueDate, when sent, must be YYYY-MM-DD and wins over Due.
type CreateTaskRequest struct {
	Title          string `json:"title" validate:"required"`
	Due            string `json:"due,omitempty"`
	DueDate        string `json:"due_date,omitempty" validate:"omitempty,isodate"`
	Owner          string `json:"owner,omitempty"`
	Details        string `json:"details,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// CreateEventRequest writes a calendar artifact only
type CreateEventRequest struct {
	Subject        string   `json:"subject" validate:"required"`
	Start          string   `json:"start" validate:"required"`
	End            string   `json:"end,omitempty"`
	Attendees      []string `json:"attendees,omitempty"`
	IdempotencyKey string   `json:"idempotency_key,omitempty"`
}

// ActionRaw is the dispatch outcome behind an ActionResponse.
// Absent values render as null.
type ActionRaw struct {
	Title    string  `json:"title"`
	IssueURL *string `json:"issue_url"`
	ICSPath  *string `json:"ics_path"`
	ICSURL   string  `json:"ics_url,omitempty"`
	DueDate  string  `json:"due_date,omitempty"`
}

// ActionResponse is the envelope returned by the action endpoints
type ActionResponse struct {
	ID  string    `json:"id"`
	URL string    `json:"url"`
	Raw ActionRaw `json:"raw"`
}
