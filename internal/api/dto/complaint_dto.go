package dto

import (
	"strings"
	"time"

	"github.com/ticketdesk/complain-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	Priority    string `json:"priority" validate:"required,oneof=low medium high"`
}

// Normalize trims text fields so blank input fails required.
func (r *CreateComplaintRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

// UserReplyRequest is the reply payload accepted from regular users.
type UserReplyRequest struct {
	Content string `json:"content" validate:"required,min=20,max=1000"`
}

// Normalize trims the reply body.
func (r *UserReplyRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
}

// AdminReplyRequest is the reply payload accepted from admins.
type AdminReplyRequest struct {
	Content string `json:"content" validate:"required,min=20,max=1000"`
	Status  string `json:"status" validate:"required,oneof=open onprogres resolved rejected"`
}

// Normalize trims the reply body and status.
func (r *AdminReplyRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
	r.Status = strings.TrimSpace(r.Status)
}

// ComplaintResponse represents a complaint. User and Replies are present
// only when the endpoint loads them.
type ComplaintResponse struct {
	ID          string                   `json:"id"`
	User        *UserResponse            `json:"user,omitempty"`
	Code        string                   `json:"code"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Status      domain.ComplaintStatus   `json:"status"`
	Priority    domain.ComplaintPriority `json:"priority"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	CompletedAt *time.Time               `json:"completed_at"`
	Replies     []ReplyResponse          `json:"replies,omitempty"`
}

// ReplyResponse represents a thread reply.
type ReplyResponse struct {
	ID        string        `json:"id"`
	User      *UserResponse `json:"user,omitempty"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
