package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketdesk/complain-service/internal/domain"
	"github.com/ticketdesk/complain-service/internal/events"
	"github.com/ticketdesk/complain-service/internal/policy"
	"github.com/ticketdesk/complain-service/internal/repository"
	apperrors "github.com/ticketdesk/complain-service/pkg/util/errorutil"
)

const (
	codePrefix  = "TIC-"
	codeMin     = 1000
	codeMax     = 999999
	previewSize = 80
)

// ComplaintService coordinates complaint workflows.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	replies    repository.ReplyRepository
	transactor repository.Transactor
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	newCode    func() string
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	ReplyRepo     repository.ReplyRepository
	Transactor    repository.Transactor
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// CreateComplaintInput describes complaint creation payload.
type CreateComplaintInput struct {
	Title       string
	Description string
	Priority    domain.ComplaintPriority
}

// ListComplaintsInput describes optional listing filters.
type ListComplaintsInput struct {
	Search   string
	Status   *domain.ComplaintStatus
	Priority *domain.ComplaintPriority
}

// ReplyInput carries a reply. Status is only honored for admins.
type ReplyInput struct {
	Content string
	Status  *domain.ComplaintStatus
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		replies:    deps.ReplyRepo,
		transactor: deps.Transactor,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
		newCode:    generateComplaintCode,
	}
}

// Create opens a complaint owned by principal. A code collision is reported
// as a conflict; no retry is attempted.
func (s *ComplaintService) Create(ctx context.Context, principal *domain.User, input CreateComplaintInput) (*domain.Complaint, error) {
	complaint := &domain.Complaint{
		UserID:      principal.ID,
		Code:        s.newCode(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      domain.ComplaintStatusOpen,
		Priority:    input.Priority,
	}

	err := s.transactor.WithinTx(ctx, func(repos repository.Repositories) error {
		return repos.Complaints.Create(ctx, complaint)
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("Complaint code already exists", map[string]any{"code": complaint.Code})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:          events.EventComplaintCreated,
		ComplaintID:   complaint.ID,
		ComplaintCode: complaint.Code,
		Actor:         actorOf(principal),
		Payload: events.ComplaintCreatedPayload{
			Title:    complaint.Title,
			Priority: complaint.Priority,
		},
	})
	return complaint, nil
}

// List returns complaints newest first. Non-admins only ever see their own.
func (s *ComplaintService) List(ctx context.Context, principal *domain.User, input ListComplaintsInput) ([]domain.Complaint, error) {
	filter := repository.ComplaintFilter{
		Search:   input.Search,
		Status:   input.Status,
		Priority: input.Priority,
	}
	if !policy.CanListAll(principal) {
		filter.UserID = principal.ID
	}

	complaints, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// GetByCode returns a complaint with its owner and reply thread.
func (s *ComplaintService) GetByCode(ctx context.Context, principal *domain.User, code string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByCode(ctx, code)
	if err != nil {
		return nil, complaintLookupError(err)
	}
	if err := policy.CanView(principal, complaint); err != nil {
		return nil, err
	}

	replies, err := s.replies.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	complaint.Replies = replies
	return complaint, nil
}

// Reply appends to the complaint thread. Admin replies also apply the
// requested status; resolving stamps completed_at on every such reply.
func (s *ComplaintService) Reply(ctx context.Context, principal *domain.User, code string, input ReplyInput) (*domain.Complaint, error) {
	var (
		complaint *domain.Complaint
		reply     *domain.Reply
		oldStatus domain.ComplaintStatus
	)

	err := s.transactor.WithinTx(ctx, func(repos repository.Repositories) error {
		found, err := repos.Complaints.GetByCode(ctx, code)
		if err != nil {
			return complaintLookupError(err)
		}
		if err := policy.CanReply(principal, found); err != nil {
			return err
		}

		reply = &domain.Reply{
			ComplaintID: found.ID,
			UserID:      principal.ID,
			Content:     input.Content,
		}
		if err := repos.Replies.Create(ctx, reply); err != nil {
			return err
		}

		oldStatus = found.Status
		if policy.CanSetStatus(principal) {
			if input.Status == nil || !input.Status.Valid() {
				return apperrors.NewValidationError("Validation error", map[string][]string{
					"status": {"The status field is required."},
				})
			}
			found.Status = *input.Status
			if found.Status == domain.ComplaintStatusResolved {
				completedAt := s.now()
				found.CompletedAt = &completedAt
			}
			if err := repos.Complaints.Update(ctx, found); err != nil {
				return err
			}
		}

		complaint = found
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	actor := actorOf(principal)
	s.publishEvent(ctx, events.Event{
		Type:          events.EventComplaintReplied,
		ComplaintID:   complaint.ID,
		ComplaintCode: complaint.Code,
		Actor:         actor,
		Payload: events.ComplaintRepliedPayload{
			ReplyID:     reply.ID,
			OwnerID:     complaint.UserID,
			BodyPreview: preview(reply.Content),
		},
	})
	if complaint.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:          events.EventComplaintStatusChanged,
			ComplaintID:   complaint.ID,
			ComplaintCode: complaint.Code,
			Actor:         actor,
			Payload: events.ComplaintStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: complaint.Status,
				OwnerID:   complaint.UserID,
			},
		})
	}
	return complaint, nil
}

func complaintLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("Complaint", nil)
	}
	return err
}

func generateComplaintCode() string {
	return fmt.Sprintf("%s%d", codePrefix, codeMin+rand.IntN(codeMax-codeMin+1))
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewSize {
		return content
	}
	return string(runes[:previewSize]) + "..."
}

func actorOf(user *domain.User) events.Actor {
	return events.Actor{UserID: user.ID, Role: user.Role}
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_code", event.ComplaintCode),
			zap.Error(err))
	}
}
