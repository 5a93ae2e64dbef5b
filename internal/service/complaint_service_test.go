package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ticketdesk/complain-service/internal/domain"
	"github.com/ticketdesk/complain-service/internal/events"
	"github.com/ticketdesk/complain-service/internal/repository"
	apperrors "github.com/ticketdesk/complain-service/pkg/util/errorutil"
)

var (
	owner    = &domain.User{ID: "user-1", Name: "Ann", Role: domain.RoleUser}
	stranger = &domain.User{ID: "user-2", Name: "Bob", Role: domain.RoleUser}
	admin    = &domain.User{ID: "admin-1", Name: "Root", Role: domain.RoleAdmin}
)

type complaintFixture struct {
	service    *ComplaintService
	complaints *fakeComplaintRepo
	replies    *fakeReplyRepo
	published  []events.Event
}

func newComplaintFixture(t *testing.T, seed ...*domain.Complaint) *complaintFixture {
	t.Helper()
	f := &complaintFixture{
		complaints: newFakeComplaintRepo(seed...),
		replies:    &fakeReplyRepo{},
	}
	dispatcher := events.NewInMemoryDispatcher()
	record := func(_ context.Context, e events.Event) error {
		f.published = append(f.published, e)
		return nil
	}
	dispatcher.Subscribe(events.EventComplaintCreated, record)
	dispatcher.Subscribe(events.EventComplaintReplied, record)
	dispatcher.Subscribe(events.EventComplaintStatusChanged, record)

	f.service = NewComplaintService(ComplaintDependencies{
		ComplaintRepo: f.complaints,
		ReplyRepo:     f.replies,
		Transactor: &fakeTransactor{repos: repository.Repositories{
			Complaints: f.complaints,
			Replies:    f.replies,
		}},
		Dispatcher: dispatcher,
	})
	return f
}

func seededComplaint() *domain.Complaint {
	created := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	return &domain.Complaint{
		ID:        "complaint-1",
		UserID:    owner.ID,
		Code:      "TIC-4321",
		Title:     "Printer jam",
		Status:    domain.ComplaintStatusOpen,
		Priority:  domain.ComplaintPriorityMedium,
		CreatedAt: created,
		UpdatedAt: created,
		User:      owner,
	}
}

func statusPtr(s domain.ComplaintStatus) *domain.ComplaintStatus { return &s }

func TestCreateComplaint(t *testing.T) {
	f := newComplaintFixture(t)

	complaint, err := f.service.Create(context.Background(), owner, CreateComplaintInput{
		Title:       "  Broken chair ",
		Description: "Leg fell off",
		Priority:    domain.ComplaintPriorityHigh,
	})
	require.NoError(t, err)
	assert.Regexp(t, `^TIC-\d{4,6}$`, complaint.Code)
	assert.Equal(t, domain.ComplaintStatusOpen, complaint.Status)
	assert.Equal(t, owner.ID, complaint.UserID)
	assert.Equal(t, "Broken chair", complaint.Title)
	assert.Nil(t, complaint.CompletedAt)

	require.Len(t, f.published, 1)
	assert.Equal(t, events.EventComplaintCreated, f.published[0].Type)
	assert.NotEmpty(t, f.published[0].ID)

	mine, err := f.service.List(context.Background(), owner, ListComplaintsInput{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.service.List(context.Background(), stranger, ListComplaintsInput{})
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestCreateComplaintCodeCollision(t *testing.T) {
	f := newComplaintFixture(t)
	f.complaints.createErr = &pgconn.PgError{Code: "23505"}

	_, err := f.service.Create(context.Background(), owner, CreateComplaintInput{Title: "t", Description: "d", Priority: domain.ComplaintPriorityLow})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Empty(t, f.published)
}

func TestCreateComplaintStoreFailure(t *testing.T) {
	f := newComplaintFixture(t)
	f.complaints.createErr = errors.New("connection reset")

	_, err := f.service.Create(context.Background(), owner, CreateComplaintInput{Title: "t", Description: "d", Priority: domain.ComplaintPriorityLow})
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeInternal, de.Code)
	assert.Equal(t, "connection reset", de.Cause())
}

func TestGenerateComplaintCodeRange(t *testing.T) {
	pattern := regexp.MustCompile(`^TIC-(\d{4,6})$`)
	for i := 0; i < 500; i++ {
		assert.Regexp(t, pattern, generateComplaintCode())
	}
}

func TestListScopesNonAdmins(t *testing.T) {
	f := newComplaintFixture(t, seededComplaint())
	status := domain.ComplaintStatusOpen

	_, err := f.service.List(context.Background(), stranger, ListComplaintsInput{Search: "TIC", Status: &status})
	require.NoError(t, err)
	assert.Equal(t, stranger.ID, f.complaints.lastFilter.UserID)
	assert.Equal(t, "TIC", f.complaints.lastFilter.Search)

	all, err := f.service.List(context.Background(), admin, ListComplaintsInput{Search: "TIC"})
	require.NoError(t, err)
	assert.Empty(t, f.complaints.lastFilter.UserID)
	assert.Len(t, all, 1)
}

func TestGetByCode(t *testing.T) {
	f := newComplaintFixture(t, seededComplaint())
	ctx := context.Background()

	_, err := f.service.GetByCode(ctx, owner, "TIC-0000")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.service.GetByCode(ctx, stranger, "TIC-4321")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = f.service.Reply(ctx, owner, "TIC-4321", ReplyInput{Content: "Any update on this one please?"})
	require.NoError(t, err)

	complaint, err := f.service.GetByCode(ctx, admin, "TIC-4321")
	require.NoError(t, err)
	require.NotNil(t, complaint.User)
	assert.Equal(t, owner.ID, complaint.User.ID)
	assert.Len(t, complaint.Replies, 1)
}

func TestNonAdminReplyNeverChangesStatus(t *testing.T) {
	f := newComplaintFixture(t, seededComplaint())

	complaint, err := f.service.Reply(context.Background(), owner, "TIC-4321", ReplyInput{
		Content: "I would like this closed as resolved.",
		Status:  statusPtr(domain.ComplaintStatusResolved),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ComplaintStatusOpen, complaint.Status)
	assert.Nil(t, complaint.CompletedAt)
	assert.Zero(t, f.complaints.updates)
	require.Len(t, f.replies.created, 1)
	assert.Equal(t, owner.ID, f.replies.created[0].UserID)

	require.Len(t, f.published, 1)
	assert.Equal(t, events.EventComplaintReplied, f.published[0].Type)
}

func TestReplyForbiddenForStranger(t *testing.T) {
	f := newComplaintFixture(t, seededComplaint())

	_, err := f.service.Reply(context.Background(), stranger, "TIC-4321", ReplyInput{Content: "Let me in on this complaint."})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Empty(t, f.replies.created)

	_, err = f.service.Reply(context.Background(), stranger, "TIC-9999", ReplyInput{Content: "Let me in on this complaint."})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestAdminResolveStampsCompletedAtEveryTime(t *testing.T) {
	f := newComplaintFixture(t, seededComplaint())
	clock := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	f.service.now = func() time.Time { return clock }

	first, err := f.service.Reply(context.Background(), admin, "TIC-4321", ReplyInput{
		Content: "Fixed the printer feed rollers.",
		Status:  statusPtr(domain.ComplaintStatusResolved),
	})
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)
	assert.Equal(t, clock, *first.CompletedAt)
	assert.False(t, first.CompletedAt.Before(first.CreatedAt))

	types := []events.EventType{f.published[0].Type, f.published[1].Type}
	assert.Equal(t, []events.EventType{events.EventComplaintReplied, events.EventComplaintStatusChanged}, types)

	clock = clock.Add(time.Hour)
	second, err := f.service.Reply(context.Background(), admin, "TIC-4321", ReplyInput{
		Content: "Confirmed again after a retest.",
		Status:  statusPtr(domain.ComplaintStatusResolved),
	})
	require.NoError(t, err)
	assert.Equal(t, clock, *second.CompletedAt)
	assert.Equal(t, 2, f.complaints.updates)
	assert.Len(t, f.published, 3, "unchanged status emits no status event")
}

func TestAdminReplyRequiresStatus(t *testing.T) {
	f := newComplaintFixture(t, seededComplaint())

	_, err := f.service.Reply(context.Background(), admin, "TIC-4321", ReplyInput{Content: "Looking into this right away."})
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, de.Code)
	assert.Contains(t, de.Fields, "status")
}

func TestReplyRollsBackWhenStatusUpdateFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.code=$1")).
		WithArgs("TIC-4321").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "code", "title", "description", "status", "priority", "created_at", "updated_at", "completed_at",
			"uid", "name", "email", "role", "ucreated", "uupdated",
		}).AddRow(
			"complaint-1", owner.ID, "TIC-4321", "Printer jam", "desc", domain.ComplaintStatusOpen, domain.ComplaintPriorityMedium, now, now, (*time.Time)(nil),
			owner.ID, "Ann", "ann@example.com", domain.RoleUser, now, now,
		))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO complain_replies")).
		WithArgs("complaint-1", admin.ID, "Fixed the printer feed rollers.").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("reply-1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE complains SET")).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	svc := NewComplaintService(ComplaintDependencies{
		ComplaintRepo: repository.NewComplaintRepository(mock),
		ReplyRepo:     repository.NewReplyRepository(mock),
		Transactor:    repository.NewTransactor(mock),
	})

	_, err = svc.Reply(context.Background(), admin, "TIC-4321", ReplyInput{
		Content: "Fixed the printer feed rollers.",
		Status:  statusPtr(domain.ComplaintStatusResolved),
	})
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeInternal, de.Code)
	assert.Equal(t, "deadlock detected", de.Cause())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventDeliveryFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventComplaintCreated, func(context.Context, events.Event) error {
		return errors.New("broker down")
	})

	complaints := newFakeComplaintRepo()
	svc := NewComplaintService(ComplaintDependencies{
		ComplaintRepo: complaints,
		Transactor:    &fakeTransactor{repos: repository.Repositories{Complaints: complaints}},
		Dispatcher:    dispatcher,
		Logger:        zap.New(core),
	})

	_, err := svc.Create(context.Background(), owner, CreateComplaintInput{Title: "t", Description: "d", Priority: domain.ComplaintPriorityLow})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("event delivery failed").Len())
}
