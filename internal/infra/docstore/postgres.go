package docstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cinebooking/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

var (
	errTransactionBegin  = errs.New("failed to begin transaction")
	errTransactionCommit = errs.New("failed to commit transaction")
	errUnknownCollection = errs.New("unknown collection")
)

// Migrate creates the document tables if they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return errs.Wrap(err, "apply document schema")
		}
	}
	return nil
}

// postgresBackend stores each collection as a table of versioned JSONB documents.
// Writes are compare-and-swap on the version column.
type postgresBackend struct {
	pool *pgxpool.Pool
}

func newPostgresBackend(pool *pgxpool.Pool) *postgresBackend {
	return &postgresBackend{pool: pool}
}

func table(coll Collection) (string, error) {
	if !coll.valid() {
		return "", errs.Wrapf(errUnknownCollection, "%q", coll)
	}
	return string(coll), nil
}

func (p *postgresBackend) begin(ctx context.Context) (session, error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, errs.Mark(err, errTransactionBegin)
	}
	return &postgresSession{
		tx:      tx,
		reads:   make(map[docKey]int64),
		written: make(map[docKey]bool),
	}, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getDocument(ctx context.Context, q querier, coll Collection, id string) (document, bool, error) {
	t, err := table(coll)
	if err != nil {
		return document{}, false, err
	}

	d := document{id: id}
	err = q.QueryRow(ctx, fmt.Sprintf("SELECT version, body FROM %s WHERE id = $1", t), id).Scan(&d.version, &d.body)
	if errors.Is(err, pgx.ErrNoRows) {
		return document{}, false, nil
	}
	if err != nil {
		return document{}, false, err
	}
	return d, true, nil
}

func (p *postgresBackend) get(ctx context.Context, coll Collection, id string) (document, bool, error) {
	return getDocument(ctx, p.pool, coll, id)
}

func (p *postgresBackend) queryDocs(ctx context.Context, sql string, args ...any) ([]document, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []document
	for rows.Next() {
		var d document
		if err := rows.Scan(&d.id, &d.version, &d.body); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *postgresBackend) bookingsByCustomer(ctx context.Context, customerID string, limit int) ([]document, error) {
	return p.queryDocs(ctx, `
		SELECT id, version, body FROM bookings
		WHERE customer_id = $1
		ORDER BY created_at_ms DESC, id
		LIMIT $2`, customerID, pgLimit(limit))
}

func (p *postgresBackend) expiredPending(ctx context.Context, before time.Time, limit int) ([]document, error) {
	return p.queryDocs(ctx, `
		SELECT id, version, body FROM bookings
		WHERE status = 'PENDING' AND expires_at_ms < $1
		ORDER BY expires_at_ms, id
		LIMIT $2`, before.UnixMilli(), pgLimit(limit))
}

// activeVouchers leaves the end-date check to the caller, which owns the clock.
func (p *postgresBackend) activeVouchers(ctx context.Context) ([]document, error) {
	return p.queryDocs(ctx, `
		SELECT id, version, body FROM vouchers
		WHERE (body->>'isActive')::BOOLEAN
		ORDER BY id`)
}

func pgLimit(limit int) any {
	if limit <= 0 {
		return nil // LIMIT NULL is no limit
	}
	return limit
}

func (p *postgresBackend) upsert(ctx context.Context, coll Collection, id string, body []byte) error {
	t, err := table(coll)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %[1]s (id, version, body) VALUES ($1, nextval('document_versions'), $2)
		ON CONFLICT (id) DO UPDATE
		SET body = EXCLUDED.body, version = EXCLUDED.version, updated_at = now()`, t), id, body)
	return err
}

func (p *postgresBackend) remove(ctx context.Context, coll Collection, id string) error {
	t, err := table(coll)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t), id)
	return err
}

func (p *postgresBackend) close() {
	p.pool.Close()
}

type postgresSession struct {
	tx      pgx.Tx
	reads   map[docKey]int64
	written map[docKey]bool
}

func (s *postgresSession) get(ctx context.Context, coll Collection, id string) (document, bool, error) {
	d, ok, err := getDocument(ctx, s.tx, coll, id)
	if err != nil {
		return document{}, false, err
	}
	key := docKey{coll, id}
	if _, seen := s.reads[key]; !seen {
		s.reads[key] = d.version
	}
	return d, ok, nil
}

// put applies the write immediately inside the transaction. The row lock it takes
// is held until commit, and the version guard turns a lost race into errWriteConflict.
func (s *postgresSession) put(ctx context.Context, coll Collection, id string, body []byte) error {
	t, err := table(coll)
	if err != nil {
		return err
	}
	key := docKey{coll, id}
	expected := s.reads[key]

	var sql string
	var args []any
	if expected == 0 {
		sql = fmt.Sprintf(`INSERT INTO %s (id, version, body) VALUES ($1, nextval('document_versions'), $2)
			ON CONFLICT (id) DO NOTHING RETURNING version`, t)
		args = []any{id, body}
	} else {
		sql = fmt.Sprintf(`UPDATE %s SET body = $2, version = nextval('document_versions'), updated_at = now()
			WHERE id = $1 AND version = $3 RETURNING version`, t)
		args = []any{id, body, expected}
	}

	var version int64
	err = s.tx.QueryRow(ctx, sql, args...).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return errWriteConflict
	}
	if err != nil {
		return err
	}
	s.reads[key] = version
	s.written[key] = true
	return nil
}

// commit re-checks documents that were only read. FOR SHARE keeps them stable until COMMIT.
func (s *postgresSession) commit(ctx context.Context) error {
	for key, version := range s.reads {
		if s.written[key] {
			continue
		}
		t, err := table(key.coll)
		if err != nil {
			return err
		}
		var current int64
		err = s.tx.QueryRow(ctx, fmt.Sprintf("SELECT version FROM %s WHERE id = $1 FOR SHARE", t), key.id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != version {
			return errWriteConflict
		}
	}

	if err := s.tx.Commit(ctx); err != nil {
		return errs.Mark(err, errTransactionCommit)
	}
	return nil
}

func (s *postgresSession) rollback(ctx context.Context) {
	if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("rollback failed", "error", err.Error())
	}
}
