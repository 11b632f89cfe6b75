package repository

import (
	"context"
	"errors"
	"fmt"

	"kushklicker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on top of pgx. A store returned to a
// WithPlayerLock callback is bound to that transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
	q    querier
	tx   pgx.Tx
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, q: pool}
}

func (s *PostgresStore) withTx(tx pgx.Tx) *PostgresStore {
	return &PostgresStore{pool: s.pool, q: tx, tx: tx}
}

// inTx runs fn in the current transaction or, outside one, in a new one.
func (s *PostgresStore) inTx(ctx context.Context, fn func(q querier) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) WithPlayerLock(ctx context.Context, playerID string, fn func(Store) error) error {
	return s.inTx(ctx, func(q querier) error {
		var id string
		err := q.QueryRow(ctx, `SELECT id FROM players WHERE id = $1 FOR UPDATE`, playerID).Scan(&id)
		if err != nil {
			return mapError(err, domain.ErrPlayerNotFound)
		}

		tx, ok := q.(pgx.Tx)
		if !ok {
			return errors.New("player lock requires a transaction")
		}
		return fn(s.withTx(tx))
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// mapError translates pgx errors into domain errors.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.TableName == "players" {
		return domain.ErrDuplicateUsername
	}
	return fmt.Errorf("postgres: %w", err)
}
