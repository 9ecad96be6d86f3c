package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AlefLorenzo/DeliveryFoods/internal/models"
	"github.com/AlefLorenzo/DeliveryFoods/internal/repositories"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type Store struct {
	pool      *pgxpool.Pool
	db        querier
	inTx      bool
	txMaxWait time.Duration
	txTimeout time.Duration
}

func Connect(ctx context.Context, cfg models.StoreConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Printf("[store] connected to postgres at %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return pool, nil
}

func NewStore(pool *pgxpool.Pool, txMaxWait, txTimeout time.Duration) *Store {
	return &Store{pool: pool, db: pool, txMaxWait: txMaxWait, txTimeout: txTimeout}
}

// WithinTx acquires a connection within txMaxWait and bounds the whole transaction by txTimeout.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repositories.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	waitCtx, cancelWait := context.WithTimeout(ctx, s.txMaxWait)
	conn, err := s.pool.Acquire(waitCtx)
	cancelWait()
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &Store{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	if !s.inTx {
		s.pool.Close()
	}
}

func (s *Store) Users() repositories.UserRepository { return &UserRepository{db: s.db} }
func (s *Store) Restaurants() repositories.RestaurantRepository { return &RestaurantRepository{db: s.db} }
func (s *Store) Products() repositories.ProductRepository { return &ProductRepository{db: s.db} }
func (s *Store) Orders() repositories.OrderRepository { return &OrderRepository{db: s.db} }
func (s *Store) Chat() repositories.ChatRepository { return &ChatRepository{db: s.db} }
func (s *Store) QuickMessages() repositories.QuickMessageRepository {
	return &QuickMessageRepository{db: s.db}
}
func (s *Store) Earnings() repositories.EarningsRepository { return &EarningsRepository{db: s.db} }
func (s *Store) CourierStatus() repositories.CourierStatusRepository {
	return &CourierStatusRepository{db: s.db}
}
func (s *Store) Audit() repositories.AuditRepository { return &AuditRepository{db: s.db} }

const uniqueViolation = "23505"

// mapError turns driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repositories.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, repositories.ErrDuplicate)
	}
	return err
}
