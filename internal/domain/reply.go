package domain

import "time"

// Reply captures a message in a complaint thread.
type Reply struct {
	ID          string
	ComplaintID string
	UserID      string
	Content     string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User *User
}
