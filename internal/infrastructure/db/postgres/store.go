package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hbnb/marketplace/internal/core/ports"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories run
// unchanged inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements ports.Store on a pgx pool. Views returned to Atomic
// callbacks run every query on the open transaction.
type Store struct {
	pool *pgxpool.Pool
	q    querier
	tx   pgx.Tx
}

var _ ports.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

func (s *Store) Users() ports.UserRepository { return &UserRepository{s} }
func (s *Store) Amenities() ports.AmenityRepository { return &AmenityRepository{s} }
func (s *Store) Places() ports.PlaceRepository { return &PlaceRepository{s} }
func (s *Store) Reviews() ports.ReviewRepository { return &ReviewRepository{s} }

// Audit returns the repository the audit dispatcher writes to.
func (s *Store) Audit() ports.AuditRepository { return &AuditRepository{s} }

// Atomic runs fn in a transaction that commits when fn returns nil. A nested
// call joins the enclosing transaction.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Store{pool: s.pool, q: tx, tx: tx})
	})
}

// within runs fn on the current transaction, or opens one for the duration
// of fn. Repositories use it for writes that touch more than one table.
func (s *Store) within(ctx context.Context, fn func(q querier) error) error {
	if s.tx != nil {
		return fn(s.q)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(tx)
	})
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}
