package domain

import (
	"time"

	"github.com/google/uuid"
)

// Priority values accepted on a ticket.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// StatusOpen is the status assigned when a source value cannot be mapped
// onto the configured vocabulary.
const StatusOpen = "open"

// DefaultDepartment is assigned when no department can be resolved.
const DefaultDepartment = "General"

// Priorities is the closed priority vocabulary in display order.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

// DefaultStatuses is the default status vocabulary. Deployments that track
// "pending" instead of "resolved" override it via pipeline.statuses.
var DefaultStatuses = []string{"open", "in_progress", "resolved", "closed"}

// TicketDraft is a normalized audit finding ready for persistence. Once a
// draft passes validation it is never mutated.
type TicketDraft struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	Department         string `json:"department"`
	Priority           string `json:"priority"`
	Status             string `json:"status"`
	DueDate            string `json:"due_date,omitempty"`
	Recommendations    string `json:"recommendations,omitempty"`
	ManagementResponse string `json:"management_response,omitempty"`
	RiskLevel          string `json:"risk_level,omitempty"`
	FindingStatus      string `json:"finding_status,omitempty"`
	Responsibility     string `json:"responsibility,omitempty"`
	Followup           string `json:"followup,omitempty"`
	FollowupResponse   string `json:"followup_response,omitempty"`
	ManagementUpdates  string `json:"management_updates,omitempty"`
}

// Ticket is a persisted draft. The repository assigns the identifier and
// the sequential ticket number.
type Ticket struct {
	ID           uuid.UUID `json:"id"`
	TicketNumber int64     `json:"ticket_number"`
	UploadID     uuid.UUID `json:"upload_id"`
	TicketDraft
	CreatedAt time.Time `json:"created_at"`
}

// RawRow holds one parsed data line keyed by normalized header. Column
// order lives on the parsed table; the row itself is discarded once its
// draft is resolved.
type RawRow struct {
	Index  int
	Fields map[string]string
}

// Value returns the trimmed cell for a normalized header, or "".
func (r RawRow) Value(header string) string {
	return r.Fields[header]
}
