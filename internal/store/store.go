// Package store is a thin convenience layer over a single MySQL session:
// schema management, parameterized CRUD, simple aggregates, introspection,
// and manually controlled nested transactions. Structural names are always
// identifier-escaped and values always travel as bound parameters.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// conn is the subset of sqlx operations the store issues against either the
// base connection or an open transaction.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
}

// txConn is a conn that can also end the transaction it belongs to.
type txConn interface {
	conn
	Commit() error
	Rollback() error
}

// Store is the single point of access to one database session. Concurrent
// use is serialized only for the store's own bookkeeping; the design assumes
// one logical caller, as with the prepared-statement handle it wraps.
type Store struct {
	db  *sqlx.DB
	log zerolog.Logger

	// beginTx opens the engine-level transaction; swapped out in tests.
	beginTx func(ctx context.Context) (txConn, error)

	mu           sync.Mutex
	tx           txConn // nil outside a transaction
	depth        int
	lastQuery    string
	lastInsertID int64
}

// Close releases the underlying session.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping probes liveness. The underlying error is swallowed by contract.
func (s *Store) Ping(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

// LastQuery returns the text of the most recently issued statement.
func (s *Store) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// LastInsertID returns the auto-increment id produced by the most recent
// write, or 0 when none was produced.
func (s *Store) LastInsertID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastInsertID
}

// handle returns the transaction when one is open, the base session
// otherwise. All statement traffic goes through it.
func (s *Store) handle() conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Store) record(query string) {
	s.mu.Lock()
	s.lastQuery = query
	s.mu.Unlock()
}

// Query prepares and runs a statement, returning a forward-only cursor over
// its rows. Every public read operation funnels through here.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	s.record(query)
	start := time.Now()
	rows, err := s.handle().QueryxContext(ctx, query, args...)
	s.log.Debug().Str("query", query).Int("args", len(args)).Dur("took", time.Since(start)).Err(err).Msg("query")
	if err != nil {
		return nil, &ErrQuery{Query: query, Cause: err}
	}
	return &Rows{rows: rows}, nil
}

// execute prepares and runs a statement that returns no rows. Every public
// mutation funnels through here.
func (s *Store) execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	s.record(query)
	start := time.Now()
	res, err := s.handle().ExecContext(ctx, query, args...)
	s.log.Debug().Str("query", query).Int("args", len(args)).Dur("took", time.Since(start)).Err(err).Msg("exec")
	if err != nil {
		return nil, &ErrQuery{Query: query, Cause: err}
	}
	if id, idErr := res.LastInsertId(); idErr == nil && id != 0 {
		s.mu.Lock()
		s.lastInsertID = id
		s.mu.Unlock()
	}
	return res, nil
}

// scanRow runs a single-row query and scans it into dest.
func (s *Store) scanRow(ctx context.Context, query string, args []any, dest ...any) error {
	s.record(query)
	row := s.handle().QueryRowxContext(ctx, query, args...)
	if err := row.Scan(dest...); err != nil {
		return &ErrQuery{Query: query, Cause: err}
	}
	return nil
}

// queryStrings runs a query and collects its first column as strings.
func (s *Store) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.rows.Scan(&v); err != nil {
			return nil, &ErrQuery{Query: query, Cause: err}
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Quote renders a value as a MySQL literal. Prefer bound parameters; this
// exists for the rare spot where a literal is unavoidable, such as DDL
// defaults.
func (s *Store) Quote(v any) string {
	return quoteLiteral(v)
}

func quoteLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if t {
			return "1"
		}
		return "0"
	case string:
		return "'" + escapeString(t) + "'"
	case []byte:
		return "'" + escapeString(string(t)) + "'"
	case time.Time:
		return "'" + t.Format("2006-01-02 15:04:05") + "'"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", t)
	default:
		return "'" + escapeString(fmt.Sprintf("%v", t)) + "'"
	}
}

// escapeString backslash-escapes the characters MySQL treats specially
// inside a single-quoted literal.
func escapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		case 0x1a:
			b.WriteString(`\Z`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
