package events

import (
	"time"

	"github.com/ticketdesk/complain-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintReplied       EventType = "complaint_replied"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
)

// Actor identifies who triggered the event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	ComplaintID   string    `json:"complaint_id"`
	ComplaintCode string    `json:"complaint_code"`
	Actor         Actor     `json:"actor"`
	Timestamp     time.Time `json:"timestamp"`
	Payload       any       `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	Title    string                   `json:"title"`
	Priority domain.ComplaintPriority `json:"priority"`
}

// ComplaintRepliedPayload payload.
type ComplaintRepliedPayload struct {
	ReplyID     string `json:"reply_id"`
	OwnerID     string `json:"owner_id"`
	BodyPreview string `json:"body_preview"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	OwnerID   string                 `json:"owner_id"`
}
