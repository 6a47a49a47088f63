package store

import (
	"context"
	"errors"
	"sort"
	"strings"
)

// Insert writes one row and returns the generated auto-increment id, or 0
// when the table has none.
func (s *Store) Insert(ctx context.Context, table string, row map[string]any) (int64, error) {
	return s.insert(ctx, "INSERT INTO", table, row)
}

// InsertIgnore writes one row, silently skipping duplicate-key conflicts.
func (s *Store) InsertIgnore(ctx context.Context, table string, row map[string]any) (int64, error) {
	return s.insert(ctx, "INSERT IGNORE INTO", table, row)
}

// Replace writes one row, deleting any conflicting row first.
func (s *Store) Replace(ctx context.Context, table string, row map[string]any) (int64, error) {
	return s.insert(ctx, "REPLACE INTO", table, row)
}

func (s *Store) insert(ctx context.Context, verb, table string, row map[string]any) (int64, error) {
	stmt, args, err := buildInsert(verb, table, row)
	if err != nil {
		return 0, err
	}
	res, err := s.execute(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// InsertBatch writes many rows in a single statement and returns the number
// of rows affected. An empty input issues no statement and affects nothing.
// The column set comes from the first row; keys missing from later rows
// bind NULL.
func (s *Store) InsertBatch(ctx context.Context, table string, rows []map[string]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, args, err := buildInsertBatch(table, rows)
	if err != nil {
		return 0, err
	}
	res, err := s.execute(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Update rewrites matching rows and returns the number affected. A nil
// predicate updates every row.
func (s *Store) Update(ctx context.Context, table string, set map[string]any, where Predicate) (int64, error) {
	stmt, args, err := buildUpdate(table, set, where)
	if err != nil {
		return 0, err
	}
	res, err := s.execute(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes matching rows and returns the number affected. A nil
// predicate deletes every row.
func (s *Store) Delete(ctx context.Context, table string, where Predicate) (int64, error) {
	stmt, args := buildDelete(table, where)
	res, err := s.execute(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// sortedColumns returns a row's column names in a stable order so the
// generated SQL is deterministic.
func sortedColumns(row map[string]any) []string {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func buildInsert(verb, table string, row map[string]any) (string, []any, error) {
	if len(row) == 0 {
		return "", nil, errors.New("insert: no columns")
	}
	cols := sortedColumns(row)

	idents := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		idents[i] = EscapeIdentifier(c)
		args[i] = row[c]
	}

	stmt := verb + " " + escapeQualified(table) +
		" (" + strings.Join(idents, ", ") + ") VALUES " + placeholderRow(len(cols))
	return stmt, args, nil
}

func buildInsertBatch(table string, rows []map[string]any) (string, []any, error) {
	cols := sortedColumns(rows[0])
	if len(cols) == 0 {
		return "", nil, errors.New("insert batch: no columns")
	}

	idents := make([]string, len(cols))
	for i, c := range cols {
		idents[i] = EscapeIdentifier(c)
	}

	values := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(cols))
	for i, row := range rows {
		values[i] = placeholderRow(len(cols))
		for _, c := range cols {
			args = append(args, row[c])
		}
	}

	stmt := "INSERT INTO " + escapeQualified(table) +
		" (" + strings.Join(idents, ", ") + ") VALUES " + strings.Join(values, ", ")
	return stmt, args, nil
}

func buildUpdate(table string, set map[string]any, where Predicate) (string, []any, error) {
	if len(set) == 0 {
		return "", nil, errors.New("update: no columns")
	}
	cols := sortedColumns(set)

	assigns := make([]string, len(cols))
	args := make([]any, 0, len(cols))
	for i, c := range cols {
		assigns[i] = EscapeIdentifier(c) + " = ?"
		args = append(args, set[c])
	}

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(escapeQualified(table))
	b.WriteString(" SET ")
	b.WriteString(strings.Join(assigns, ", "))
	writeWhere(&b, &args, where)
	return b.String(), args, nil
}

func buildDelete(table string, where Predicate) (string, []any) {
	var b strings.Builder
	var args []any
	b.WriteString("DELETE FROM ")
	b.WriteString(escapeQualified(table))
	writeWhere(&b, &args, where)
	return b.String(), args
}

func placeholderRow(n int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}
