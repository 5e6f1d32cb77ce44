package docstore

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"cinebooking/internal/pkg/errs"
	"cinebooking/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
	pgErrCodeUniqueViolation      = "23505"
)

const (
	defaultMaxRetries = 3
	defaultRetryBase  = 100 * time.Millisecond
)

// Store runs optimistic transactions over the document collections.
type Store struct {
	backend    backend
	maxRetries int
	retryBase  time.Duration
	logger     *slog.Logger
}

type Option func(*Store)

func WithMaxRetries(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

func WithRetryBase(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.retryBase = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func newStore(b backend, opts ...Option) *Store {
	s := &Store{
		backend:    b,
		maxRetries: defaultMaxRetries,
		retryBase:  defaultRetryBase,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewMemoryStore keeps everything in process memory. Used by tests and local runs.
func NewMemoryStore(opts ...Option) *Store {
	return newStore(newMemoryBackend(), opts...)
}

// NewPostgresStore expects the schema to be in place (see Migrate).
func NewPostgresStore(pool *pgxpool.Pool, opts ...Option) *Store {
	return newStore(newPostgresBackend(pool), opts...)
}

// Within runs fn in a fresh transaction and commits it. When another writer got
// there first the whole attempt is thrown away and fn runs again after a backoff.
// Once retries are exhausted the error is marked with shared.ErrConflict.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		var sess session
		sess, err = s.backend.begin(ctx)
		if err != nil {
			return err
		}

		err = fn(ctx, newTx(sess))
		if err == nil {
			if err = sess.commit(ctx); err == nil {
				return nil
			}
		}
		sess.rollback(ctx)

		if !isRetryableError(err) {
			return err
		}
		if attempt == s.maxRetries {
			break
		}

		waitTime := calculateBackoff(attempt, s.retryBase)

		s.logger.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	s.logger.Error("transaction failed after max retries",
		"attempts", s.maxRetries+1,
		"error", err.Error())
	return errs.Mark(errs.Wrap(err, "transaction failed after max retries"), shared.ErrConflict)
}

func (s *Store) Reads() shared.Reads {
	return &reads{b: s.backend}
}

func (s *Store) Close() {
	s.backend.close()
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- masked to a non-negative value
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	if errs.Is(err, errWriteConflict) {
		return true
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected, pgErrCodeUniqueViolation:
		return true
	default:
		return false
	}
}

type docTx struct {
	sess session

	// Lazy-initialized repositories
	showtimeRepo *showtimeRepository
	bookingRepo  *bookingRepository
	voucherRepo  *voucherRepository
	customerRepo *customerRepository
}

func newTx(sess session) *docTx {
	return &docTx{sess: sess}
}

func (t *docTx) Showtimes() shared.ShowtimeRepository {
	if t.showtimeRepo == nil {
		t.showtimeRepo = &showtimeRepository{sess: t.sess}
	}
	return t.showtimeRepo
}

func (t *docTx) Bookings() shared.BookingRepository {
	if t.bookingRepo == nil {
		t.bookingRepo = &bookingRepository{sess: t.sess}
	}
	return t.bookingRepo
}

func (t *docTx) Vouchers() shared.VoucherRepository {
	if t.voucherRepo == nil {
		t.voucherRepo = &voucherRepository{sess: t.sess}
	}
	return t.voucherRepo
}

func (t *docTx) Customers() shared.CustomerRepository {
	if t.customerRepo == nil {
		t.customerRepo = &customerRepository{sess: t.sess}
	}
	return t.customerRepo
}
