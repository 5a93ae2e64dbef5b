package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ticketdesk/complain-service/internal/domain"
)

// ComplaintFilter captures listing parameters. A non-empty UserID restricts
// results to that owner regardless of the other fields.
type ComplaintFilter struct {
	UserID   string
	Search   string
	Status   *domain.ComplaintStatus
	Priority *domain.ComplaintPriority
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByCode(ctx context.Context, code string) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	Statistics(ctx context.Context, from, to time.Time) (*domain.Statistics, error)
}

type complaintRepository struct {
	db DBTX
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(db DBTX) ComplaintRepository {
	return &complaintRepository{db: db}
}

const complaintColumns = `c.id, c.user_id, c.code, c.title, c.description, c.status, c.priority,
               c.created_at, c.updated_at, c.completed_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complains (user_id, code, title, description, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		complaint.UserID,
		complaint.Code,
		complaint.Title,
		complaint.Description,
		complaint.Status,
		complaint.Priority,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

// Update persists status, priority and completion, refreshing updated_at.
func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complains SET title=$1, description=$2, status=$3, priority=$4, completed_at=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		complaint.Title,
		complaint.Description,
		complaint.Status,
		complaint.Priority,
		complaint.CompletedAt,
		complaint.ID,
	).Scan(&complaint.UpdatedAt)
	return err
}

// GetByCode loads a complaint together with its owner.
func (r *complaintRepository) GetByCode(ctx context.Context, code string) (*domain.Complaint, error) {
	const query = `
        SELECT ` + complaintColumns + `,
               u.id, u.name, u.email, u.role, u.created_at, u.updated_at
        FROM complains c
        JOIN users u ON u.id = c.user_id
        WHERE c.code=$1`

	var (
		complaint domain.Complaint
		owner     domain.User
	)
	if err := r.db.QueryRow(ctx, query, code).Scan(
		&complaint.ID,
		&complaint.UserID,
		&complaint.Code,
		&complaint.Title,
		&complaint.Description,
		&complaint.Status,
		&complaint.Priority,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
		&complaint.CompletedAt,
		&owner.ID,
		&owner.Name,
		&owner.Email,
		&owner.Role,
		&owner.CreatedAt,
		&owner.UpdatedAt,
	); err != nil {
		return nil, err
	}
	complaint.User = &owner
	return &complaint, nil
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := `SELECT ` + complaintColumns + ` FROM complains c`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(c.code LIKE %s OR c.title LIKE %s)", placeholder, placeholder))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("c.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("c.priority=$%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		clauses = append(clauses, fmt.Sprintf("c.user_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.created_at DESC, c.id DESC`, base, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

// Statistics aggregates complaints created in [from, to]. The average is the
// mean of whole elapsed hours per resolved complaint, unrounded.
func (r *complaintRepository) Statistics(ctx context.Context, from, to time.Time) (*domain.Statistics, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status <> 'resolved'),
               COUNT(*) FILTER (WHERE status = 'resolved'),
               COALESCE(AVG(FLOOR(EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600))
                   FILTER (WHERE status = 'resolved'), 0)::float8,
               COUNT(*) FILTER (WHERE status = 'open'),
               COUNT(*) FILTER (WHERE status = 'onprogres'),
               COUNT(*) FILTER (WHERE status = 'resolved'),
               COUNT(*) FILTER (WHERE status = 'rejected')
        FROM complains
        WHERE created_at BETWEEN $1 AND $2`

	stats := domain.Statistics{PeriodStart: from, PeriodEnd: to}
	var open, onProgress, resolved, rejected int64
	if err := r.db.QueryRow(ctx, query, from, to).Scan(
		&stats.Total,
		&stats.Active,
		&stats.Resolved,
		&stats.AvgResolutionHours,
		&open,
		&onProgress,
		&resolved,
		&rejected,
	); err != nil {
		return nil, err
	}
	stats.StatusDistribution = map[domain.ComplaintStatus]int64{
		domain.ComplaintStatusOpen:       open,
		domain.ComplaintStatusOnProgress: onProgress,
		domain.ComplaintStatusResolved:   resolved,
		domain.ComplaintStatusRejected:   rejected,
	}
	return &stats, nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	result := []domain.Complaint{}
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(
			&complaint.ID,
			&complaint.UserID,
			&complaint.Code,
			&complaint.Title,
			&complaint.Description,
			&complaint.Status,
			&complaint.Priority,
			&complaint.CreatedAt,
			&complaint.UpdatedAt,
			&complaint.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}
