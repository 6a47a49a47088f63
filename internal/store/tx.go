package store

import (
	"context"
	"strconv"
)

// savepointName maps a nesting level to its savepoint.
func savepointName(level int) string {
	return "LEVEL" + strconv.Itoa(level)
}

// Begin opens a transaction, or a savepoint when one is already open.
// Nesting is reference-counted: only the first Begin talks to the engine
// with a real BEGIN; level n issues SAVEPOINT LEVELn.
func (s *Store) Begin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.depth == 0 {
		tx, err := s.beginTx(ctx)
		if err != nil {
			return &ErrQuery{Query: "BEGIN", Cause: err}
		}
		s.tx = tx
		s.lastQuery = "BEGIN"
	} else {
		stmt := "SAVEPOINT " + savepointName(s.depth)
		if _, err := s.tx.ExecContext(ctx, stmt); err != nil {
			return &ErrQuery{Query: stmt, Cause: err}
		}
		s.lastQuery = stmt
	}
	s.depth++
	return nil
}

// Commit closes one nesting level. Only the outermost Commit performs a
// real commit; intermediate levels just decrement, leaving their savepoints
// in place. Calling Commit with no open transaction is a no-op.
func (s *Store) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.depth == 0:
		return nil
	case s.depth == 1:
		err := s.tx.Commit()
		s.tx = nil
		s.depth = 0
		s.lastQuery = "COMMIT"
		if err != nil {
			return &ErrQuery{Query: "COMMIT", Cause: err}
		}
	default:
		s.depth--
	}
	return nil
}

// Rollback undoes one nesting level: a full rollback at the outermost
// level, otherwise a rollback to the corresponding savepoint. With no open
// transaction it is a no-op.
func (s *Store) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.depth == 0:
		return nil
	case s.depth == 1:
		err := s.tx.Rollback()
		s.tx = nil
		s.depth = 0
		s.lastQuery = "ROLLBACK"
		if err != nil {
			return &ErrQuery{Query: "ROLLBACK", Cause: err}
		}
	default:
		stmt := "ROLLBACK TO SAVEPOINT " + savepointName(s.depth-1)
		if _, err := s.tx.ExecContext(ctx, stmt); err != nil {
			return &ErrQuery{Query: stmt, Cause: err}
		}
		s.lastQuery = stmt
		s.depth--
	}
	return nil
}

// InTransaction reports whether a transaction is currently open.
func (s *Store) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth > 0
}
