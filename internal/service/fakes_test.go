package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ticketdesk/complain-service/internal/domain"
	"github.com/ticketdesk/complain-service/internal/repository"
)

type fakeUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	createErr error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{byID: map[string]*domain.User{}}
	for _, u := range users {
		repo.byID[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	user.ID = fmt.Sprintf("user-%d", len(r.byID)+1)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.byID[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeComplaintRepo struct {
	byCode     map[string]*domain.Complaint
	createErr  error
	updateErr  error
	lastFilter repository.ComplaintFilter
	updates    int
	stats      *domain.Statistics
	statsFrom  time.Time
	statsTo    time.Time
}

func newFakeComplaintRepo(complaints ...*domain.Complaint) *fakeComplaintRepo {
	repo := &fakeComplaintRepo{byCode: map[string]*domain.Complaint{}}
	for _, c := range complaints {
		repo.byCode[c.Code] = c
	}
	return repo
}

func (r *fakeComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	if r.createErr != nil {
		return r.createErr
	}
	complaint.ID = fmt.Sprintf("complaint-%d", len(r.byCode)+1)
	complaint.CreatedAt = time.Now()
	complaint.UpdatedAt = complaint.CreatedAt
	copied := *complaint
	r.byCode[complaint.Code] = &copied
	return nil
}

func (r *fakeComplaintRepo) Update(_ context.Context, complaint *domain.Complaint) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	copied := *complaint
	r.byCode[complaint.Code] = &copied
	return nil
}

func (r *fakeComplaintRepo) GetByCode(_ context.Context, code string) (*domain.Complaint, error) {
	if c, ok := r.byCode[code]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeComplaintRepo) List(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	r.lastFilter = filter
	result := []domain.Complaint{}
	for _, c := range r.byCode {
		if filter.UserID != "" && c.UserID != filter.UserID {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

func (r *fakeComplaintRepo) Statistics(_ context.Context, from, to time.Time) (*domain.Statistics, error) {
	r.statsFrom, r.statsTo = from, to
	if r.stats == nil {
		return &domain.Statistics{PeriodStart: from, PeriodEnd: to}, nil
	}
	copied := *r.stats
	return &copied, nil
}

type fakeReplyRepo struct {
	created []domain.Reply
}

func (r *fakeReplyRepo) Create(_ context.Context, reply *domain.Reply) error {
	reply.ID = fmt.Sprintf("reply-%d", len(r.created)+1)
	reply.CreatedAt = time.Now()
	r.created = append(r.created, *reply)
	return nil
}

func (r *fakeReplyRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.Reply, error) {
	result := []domain.Reply{}
	for _, reply := range r.created {
		if reply.ComplaintID == complaintID {
			result = append(result, reply)
		}
	}
	return result, nil
}

// fakeTransactor runs fn against in-memory repositories without rollback.
type fakeTransactor struct {
	repos repository.Repositories
	calls int
}

func (t *fakeTransactor) WithinTx(_ context.Context, fn func(repository.Repositories) error) error {
	t.calls++
	return fn(t.repos)
}
