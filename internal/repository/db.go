package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxStarter is a DBTX that can open transactions.
type TxStarter interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repositories groups the repositories bound to one DBTX.
type Repositories struct {
	Users      UserRepository
	Complaints ComplaintRepository
	Replies    ReplyRepository
}

// NewRepositories binds every repository to db.
func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Users:      NewUserRepository(db),
		Complaints: NewComplaintRepository(db),
		Replies:    NewReplyRepository(db),
	}
}

// Transactor runs units of work atomically.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}

type pgTransactor struct {
	db TxStarter
}

// NewTransactor builds a Transactor over a pool.
func NewTransactor(db TxStarter) Transactor {
	return &pgTransactor{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
// The error from fn is returned unchanged.
func (t *pgTransactor) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(NewRepositories(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
