package repository

import (
	"context"

	"github.com/ticketdesk/complain-service/internal/domain"
)

// ReplyRepository manages complaint thread replies.
type ReplyRepository interface {
	Create(ctx context.Context, reply *domain.Reply) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.Reply, error)
}

type replyRepository struct {
	db DBTX
}

// NewReplyRepository builds repository.
func NewReplyRepository(db DBTX) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) Create(ctx context.Context, reply *domain.Reply) error {
	const query = `
        INSERT INTO complain_replies (complain_id, user_id, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		reply.ComplaintID,
		reply.UserID,
		reply.Content,
	).Scan(&reply.ID, &reply.CreatedAt, &reply.UpdatedAt)
}

// ListByComplaint returns the thread oldest first, each reply with its author.
func (r *replyRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.Reply, error) {
	const query = `
        SELECT r.id, r.complain_id, r.user_id, r.content, r.created_at, r.updated_at,
               u.id, u.name, u.email, u.role, u.created_at, u.updated_at
        FROM complain_replies r
        JOIN users u ON u.id = r.user_id
        WHERE r.complain_id=$1
        ORDER BY r.created_at ASC, r.id ASC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Reply{}
	for rows.Next() {
		var (
			reply  domain.Reply
			author domain.User
		)
		if err := rows.Scan(
			&reply.ID,
			&reply.ComplaintID,
			&reply.UserID,
			&reply.Content,
			&reply.CreatedAt,
			&reply.UpdatedAt,
			&author.ID,
			&author.Name,
			&author.Email,
			&author.Role,
			&author.CreatedAt,
			&author.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reply.User = &author
		result = append(result, reply)
	}
	return result, rows.Err()
}
