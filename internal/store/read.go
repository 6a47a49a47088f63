package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// Direction orders a sort ascending or descending.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

type selectClauses struct {
	orderBy []string
	groupBy []string
	limit   int
	offset  int
	hasLim  bool
	hasOff  bool
}

// SelectOption tunes a read operation.
type SelectOption func(*selectClauses)

// OrderBy appends a sort key. Repeat for secondary keys.
func OrderBy(column string, dir Direction) SelectOption {
	return func(c *selectClauses) {
		c.orderBy = append(c.orderBy, escapeQualified(column)+" "+string(dir))
	}
}

// GroupBy groups the result by the given columns.
func GroupBy(columns ...string) SelectOption {
	return func(c *selectClauses) {
		for _, col := range columns {
			c.groupBy = append(c.groupBy, escapeQualified(col))
		}
	}
}

// Limit caps the number of returned rows.
func Limit(n int) SelectOption {
	return func(c *selectClauses) { c.limit, c.hasLim = n, true }
}

// Offset skips the first n rows.
func Offset(n int) SelectOption {
	return func(c *selectClauses) { c.offset, c.hasOff = n, true }
}

func (c *selectClauses) write(b *strings.Builder) {
	if len(c.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(c.groupBy, ", "))
	}
	if len(c.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(c.orderBy, ", "))
	}
	if c.hasLim {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(c.limit))
	}
	if c.hasOff {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(c.offset))
	}
}

// Select reads matching rows. Empty columns means all columns; a nil
// predicate matches every row.
func (s *Store) Select(ctx context.Context, table string, columns []string, where Predicate, opts ...SelectOption) (*Rows, error) {
	stmt, args := buildSelect(false, table, columns, where, opts)
	return s.Query(ctx, stmt, args...)
}

// SelectDistinct reads matching rows with duplicates removed.
func (s *Store) SelectDistinct(ctx context.Context, table string, columns []string, where Predicate, opts ...SelectOption) (*Rows, error) {
	stmt, args := buildSelect(true, table, columns, where, opts)
	return s.Query(ctx, stmt, args...)
}

// SelectWithCount reads one page of matching rows plus the total number of
// rows matching the predicate regardless of limit and offset.
func (s *Store) SelectWithCount(ctx context.Context, table string, columns []string, where Predicate, opts ...SelectOption) ([]map[string]any, int64, error) {
	total, err := s.Count(ctx, table, where)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.Select(ctx, table, columns, where, opts...)
	if err != nil {
		return nil, 0, err
	}
	page, err := rows.Collect()
	if err != nil {
		return nil, 0, err
	}
	return page, total, nil
}

// RandomSelect reads up to n matching rows in random order.
func (s *Store) RandomSelect(ctx context.Context, table string, columns []string, where Predicate, n int) (*Rows, error) {
	var b strings.Builder
	var args []any
	b.WriteString("SELECT ")
	b.WriteString(escapeColumnList(columns))
	b.WriteString(" FROM ")
	b.WriteString(escapeQualified(table))
	writeWhere(&b, &args, where)
	b.WriteString(" ORDER BY RAND() LIMIT ")
	b.WriteString(strconv.Itoa(n))
	return s.Query(ctx, b.String(), args...)
}

// JoinKind selects the join flavor.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
	RightJoin JoinKind = "RIGHT JOIN"
	CrossJoin JoinKind = "CROSS JOIN"
)

// JoinSpec describes a two-table join. On is typically EqCol; it is ignored
// for cross joins.
type JoinSpec struct {
	Kind  JoinKind
	Left  string
	Right string
	On    Predicate
}

// Join reads from a two-table join. Column names should be qualified
// ("table.column") when ambiguous.
func (s *Store) Join(ctx context.Context, spec JoinSpec, columns []string, where Predicate, opts ...SelectOption) (*Rows, error) {
	stmt, args := buildJoin(spec, columns, where, opts)
	return s.Query(ctx, stmt, args...)
}

// Count returns the number of matching rows.
func (s *Store) Count(ctx context.Context, table string, where Predicate) (int64, error) {
	stmt, args := buildAggregate("COUNT", "*", table, where)
	var n int64
	if err := s.scanRow(ctx, stmt, args, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// Sum returns the sum of a column over matching rows, 0 when none match.
func (s *Store) Sum(ctx context.Context, table, column string, where Predicate) (float64, error) {
	return s.aggregate(ctx, "SUM", table, column, where)
}

// Avg returns the average of a column over matching rows, 0 when none match.
func (s *Store) Avg(ctx context.Context, table, column string, where Predicate) (float64, error) {
	return s.aggregate(ctx, "AVG", table, column, where)
}

// Min returns the minimum of a column over matching rows, 0 when none match.
func (s *Store) Min(ctx context.Context, table, column string, where Predicate) (float64, error) {
	return s.aggregate(ctx, "MIN", table, column, where)
}

// Max returns the maximum of a column over matching rows, 0 when none match.
func (s *Store) Max(ctx context.Context, table, column string, where Predicate) (float64, error) {
	return s.aggregate(ctx, "MAX", table, column, where)
}

func (s *Store) aggregate(ctx context.Context, fn, table, column string, where Predicate) (float64, error) {
	stmt, args := buildAggregate(fn, column, table, where)
	var v sql.NullFloat64
	if err := s.scanRow(ctx, stmt, args, &v); err != nil {
		return 0, err
	}
	return v.Float64, nil
}

func buildSelect(distinct bool, table string, columns []string, where Predicate, opts []SelectOption) (string, []any) {
	var clauses selectClauses
	for _, opt := range opts {
		opt(&clauses)
	}

	var b strings.Builder
	var args []any
	b.WriteString("SELECT ")
	if distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(escapeColumnList(columns))
	b.WriteString(" FROM ")
	b.WriteString(escapeQualified(table))
	writeWhere(&b, &args, where)
	clauses.write(&b)
	return b.String(), args
}

func buildJoin(spec JoinSpec, columns []string, where Predicate, opts []SelectOption) (string, []any) {
	var clauses selectClauses
	for _, opt := range opts {
		opt(&clauses)
	}

	var b strings.Builder
	var args []any
	b.WriteString("SELECT ")
	b.WriteString(escapeColumnList(columns))
	b.WriteString(" FROM ")
	b.WriteString(escapeQualified(spec.Left))
	b.WriteString(" ")
	b.WriteString(string(spec.Kind))
	b.WriteString(" ")
	b.WriteString(escapeQualified(spec.Right))
	if spec.Kind != CrossJoin && spec.On != nil {
		onSQL, onArgs := lowerPredicate(spec.On)
		b.WriteString(" ON ")
		b.WriteString(onSQL)
		args = append(args, onArgs...)
	}
	writeWhere(&b, &args, where)
	clauses.write(&b)
	return b.String(), args
}

func buildAggregate(fn, column, table string, where Predicate) (string, []any) {
	col := "*"
	if column != "*" && column != "" {
		col = escapeQualified(column)
	}

	var b strings.Builder
	var args []any
	b.WriteString("SELECT ")
	b.WriteString(fn)
	b.WriteString("(")
	b.WriteString(col)
	b.WriteString(") FROM ")
	b.WriteString(escapeQualified(table))
	writeWhere(&b, &args, where)
	return b.String(), args
}
