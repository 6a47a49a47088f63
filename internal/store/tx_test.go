package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
)

type fakeResult struct{}

func (fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (fakeResult) RowsAffected() (int64, error) { return 0, nil }

// fakeTx records the statements a transaction sees.
type fakeTx struct {
	stmts     []string
	commits   int
	rollbacks int
}

func (f *fakeTx) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	f.stmts = append(f.stmts, query)
	return fakeResult{}, nil
}

func (f *fakeTx) QueryxContext(context.Context, string, ...any) (*sqlx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeTx) QueryRowxContext(context.Context, string, ...any) *sqlx.Row {
	return nil
}

func (f *fakeTx) Commit() error {
	f.commits++
	return nil
}

func (f *fakeTx) Rollback() error {
	f.rollbacks++
	return nil
}

func newTestStore() (*Store, *fakeTx) {
	tx := &fakeTx{}
	s := &Store{
		beginTx: func(context.Context) (txConn, error) { return tx, nil },
	}
	return s, tx
}

func TestNestedCommitsIssueOneRealCommit(t *testing.T) {
	ctx := context.Background()
	s, tx := newTestStore()

	const n = 4
	for i := 0; i < n; i++ {
		if err := s.Begin(ctx); err != nil {
			t.Fatalf("begin %d: %v", i, err)
		}
	}
	for i := 0; i < n; i++ {
		if err := s.Commit(); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}

	if tx.commits != 1 {
		t.Errorf("real commits = %d, want 1", tx.commits)
	}
	want := []string{"SAVEPOINT LEVEL1", "SAVEPOINT LEVEL2", "SAVEPOINT LEVEL3"}
	if len(tx.stmts) != len(want) {
		t.Fatalf("stmts = %v, want %v", tx.stmts, want)
	}
	for i := range want {
		if tx.stmts[i] != want[i] {
			t.Errorf("stmt %d = %q, want %q", i, tx.stmts[i], want[i])
		}
	}
	// Savepoints are never explicitly released.
	for _, stmt := range tx.stmts {
		if stmt == "RELEASE SAVEPOINT LEVEL1" || stmt == "RELEASE SAVEPOINT LEVEL2" {
			t.Errorf("unexpected release: %q", stmt)
		}
	}
	if s.InTransaction() {
		t.Error("still in transaction after final commit")
	}
}

func TestRollbackAtDepthZeroIsNoop(t *testing.T) {
	s, tx := newTestStore()
	if err := s.Rollback(context.Background()); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if tx.rollbacks != 0 || tx.commits != 0 || len(tx.stmts) != 0 {
		t.Errorf("engine was touched: %+v", tx)
	}
	if s.InTransaction() {
		t.Error("unexpected open transaction")
	}
}

func TestNestedRollbackTargetsSavepoint(t *testing.T) {
	ctx := context.Background()
	s, tx := newTestStore()

	if err := s.Begin(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Begin(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Rollback(ctx); err != nil {
		t.Fatal(err)
	}

	last := tx.stmts[len(tx.stmts)-1]
	if last != "ROLLBACK TO SAVEPOINT LEVEL1" {
		t.Errorf("last stmt = %q", last)
	}
	if tx.rollbacks != 0 {
		t.Errorf("full rollbacks = %d, want 0", tx.rollbacks)
	}
	if !s.InTransaction() {
		t.Error("outer transaction should still be open")
	}

	if err := s.Rollback(ctx); err != nil {
		t.Fatal(err)
	}
	if tx.rollbacks != 1 {
		t.Errorf("full rollbacks = %d, want 1", tx.rollbacks)
	}
	if s.InTransaction() {
		t.Error("transaction should be closed")
	}
}

func TestBeginFailureWrapsCause(t *testing.T) {
	cause := errors.New("gone away")
	s := &Store{
		beginTx: func(context.Context) (txConn, error) { return nil, cause },
	}

	err := s.Begin(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var qe *ErrQuery
	if !errors.As(err, &qe) {
		t.Fatalf("error type %T", err)
	}
	if !errors.Is(err, cause) {
		t.Error("driver cause was lost")
	}
	if s.InTransaction() {
		t.Error("depth should not advance on failed begin")
	}
}
