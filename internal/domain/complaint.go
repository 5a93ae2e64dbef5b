package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "open"
	ComplaintStatusOnProgress ComplaintStatus = "onprogres"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusRejected   ComplaintStatus = "rejected"
)

// ComplaintStatuses lists every status in display order.
var ComplaintStatuses = []ComplaintStatus{
	ComplaintStatusOpen,
	ComplaintStatusOnProgress,
	ComplaintStatusResolved,
	ComplaintStatusRejected,
}

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	for _, candidate := range ComplaintStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ComplaintPriority enumerates urgency levels.
type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "low"
	ComplaintPriorityMedium ComplaintPriority = "medium"
	ComplaintPriorityHigh   ComplaintPriority = "high"
)

// Valid reports whether p is a known priority.
func (p ComplaintPriority) Valid() bool {
	switch p {
	case ComplaintPriorityLow, ComplaintPriorityMedium, ComplaintPriorityHigh:
		return true
	}
	return false
}

// Complaint is the aggregate for support tickets.
// User and Replies are only populated by the explicit fetches that load them.
type Complaint struct {
	ID          string
	UserID      string
	Code        string
	Title       string
	Description string
	Status      ComplaintStatus
	Priority    ComplaintPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time

	User    *User
	Replies []Reply
}
