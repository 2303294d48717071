package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUnavailable is returned when no connection could be checked out of
	// the pool within the configured wait, or the server is unreachable.
	ErrUnavailable = errors.New("persistence unavailable")
	// ErrConflict marks unique constraint violations.
	ErrConflict = errors.New("unique constraint violation")
)

// PoolOptions sizes the connection pool. Size connections are kept idle,
// Size+Overflow is the hard ceiling, and Timeout bounds a checkout.
type PoolOptions struct {
	Size     int
	Overflow int
	Timeout  time.Duration
}

func Open(dsn string, opts PoolOptions) (*sqlx.DB, error) {
	database, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	database.SetMaxIdleConns(opts.Size)
	database.SetMaxOpenConns(opts.Size + opts.Overflow)
	database.SetConnMaxLifetime(30 * time.Minute)
	database.SetConnMaxIdleTime(5 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, err
	}
	return database, nil
}

// Store hands out per-request sessions over a shared pool.
type Store struct {
	DB      *sqlx.DB
	Timeout time.Duration
}

func NewStore(database *sqlx.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Store{DB: database, Timeout: timeout}
}

// Queryer is the session contract offered to query code: parameterised
// reads and writes bound to one checked-out connection or transaction.
type Queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

// checkout acquires a connection, pinging it first, waiting at most s.Timeout.
func (s *Store) checkout(ctx context.Context) (*sqlx.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	conn, err := s.DB.Connx(acquireCtx)
	if err != nil {
		return nil, Classify(err)
	}
	if err := conn.PingContext(acquireCtx); err != nil {
		_ = conn.Close()
		return nil, Classify(err)
	}
	return conn, nil
}

// Session runs fn against a single pooled connection that is released on
// every exit path. Reads run at the server's default isolation.
func (s *Store) Session(ctx context.Context, fn func(q Queryer) error) error {
	conn, err := s.checkout(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}

// Tx runs fn inside an explicit transaction. It commits when fn returns nil
// and rolls back when fn returns an error or panics.
func (s *Store) Tx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	conn, err := s.checkout(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return Classify(err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logrus.WithError(rbErr).Warn("transaction rollback failed")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return Classify(err)
	}
	return nil
}

// Classify maps driver errors onto the sentinel errors above. Errors it
// does not recognise are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrConflict) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08":
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		case pgErr.Code == "57P01" || pgErr.Code == "53300":
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return err
}

// IsNoRows reports whether err is sql.ErrNoRows.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
