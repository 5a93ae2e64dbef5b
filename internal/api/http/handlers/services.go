package handlers

import (
	"context"

	"github.com/ticketdesk/complain-service/internal/auth"
	"github.com/ticketdesk/complain-service/internal/domain"
	"github.com/ticketdesk/complain-service/internal/service"
)

// AuthService is the subset of the auth service used by handlers.
type AuthService interface {
	Register(ctx context.Context, input service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Logout(ctx context.Context, principal *auth.Principal) error
}

// ComplaintService is the subset of the complaint service used by handlers.
type ComplaintService interface {
	Create(ctx context.Context, principal *domain.User, input service.CreateComplaintInput) (*domain.Complaint, error)
	List(ctx context.Context, principal *domain.User, input service.ListComplaintsInput) ([]domain.Complaint, error)
	GetByCode(ctx context.Context, principal *domain.User, code string) (*domain.Complaint, error)
	Reply(ctx context.Context, principal *domain.User, code string, input service.ReplyInput) (*domain.Complaint, error)
}

// StatisticsService provides dashboard figures.
type StatisticsService interface {
	GetStatistics(ctx context.Context) (*domain.Statistics, error)
}

// Validator checks decoded payloads.
type Validator interface {
	Struct(payload any) error
}
