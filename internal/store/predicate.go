package store

import "strings"

// Predicate is a composable WHERE/ON condition that always lowers to
// parameter-bound SQL. Column names are identifier-escaped; values become
// placeholders. A nil Predicate means "match everything".
type Predicate interface {
	build(b *strings.Builder, args *[]any)
}

// lowerPredicate renders a predicate to SQL text plus its bound arguments.
// The returned text is empty for a nil predicate.
func lowerPredicate(p Predicate) (string, []any) {
	if p == nil {
		return "", nil
	}
	var b strings.Builder
	var args []any
	p.build(&b, &args)
	return b.String(), args
}

// writeWhere appends a WHERE clause for p, if any, to b.
func writeWhere(b *strings.Builder, args *[]any, p Predicate) {
	sql, a := lowerPredicate(p)
	if sql == "" {
		return
	}
	b.WriteString(" WHERE ")
	b.WriteString(sql)
	*args = append(*args, a...)
}

type cmp struct {
	column string
	op     string
	value  any
}

func (c cmp) build(b *strings.Builder, args *[]any) {
	b.WriteString(escapeQualified(c.column))
	b.WriteString(" ")
	b.WriteString(c.op)
	b.WriteString(" ?")
	*args = append(*args, c.value)
}

// Eq matches column = value.
func Eq(column string, value any) Predicate { return cmp{column, "=", value} }

// Ne matches column <> value.
func Ne(column string, value any) Predicate { return cmp{column, "<>", value} }

// Gt matches column > value.
func Gt(column string, value any) Predicate { return cmp{column, ">", value} }

// Gte matches column >= value.
func Gte(column string, value any) Predicate { return cmp{column, ">=", value} }

// Lt matches column < value.
func Lt(column string, value any) Predicate { return cmp{column, "<", value} }

// Lte matches column <= value.
func Lte(column string, value any) Predicate { return cmp{column, "<=", value} }

// Like matches column LIKE pattern. The pattern is the caller's: wildcards
// are not escaped here.
func Like(column string, pattern string) Predicate { return cmp{column, "LIKE", pattern} }

type inPred struct {
	column string
	values []any
}

func (p inPred) build(b *strings.Builder, args *[]any) {
	if len(p.values) == 0 {
		// IN over the empty set matches nothing.
		b.WriteString("0 = 1")
		return
	}
	b.WriteString(escapeQualified(p.column))
	b.WriteString(" IN (")
	b.WriteString(strings.TrimSuffix(strings.Repeat("?, ", len(p.values)), ", "))
	b.WriteString(")")
	*args = append(*args, p.values...)
}

// In matches column IN (values...). With no values it matches nothing.
func In(column string, values ...any) Predicate { return inPred{column, values} }

type betweenPred struct {
	column   string
	lo, hi   any
}

func (p betweenPred) build(b *strings.Builder, args *[]any) {
	b.WriteString(escapeQualified(p.column))
	b.WriteString(" BETWEEN ? AND ?")
	*args = append(*args, p.lo, p.hi)
}

// Between matches column BETWEEN lo AND hi.
func Between(column string, lo, hi any) Predicate { return betweenPred{column, lo, hi} }

type nullPred struct {
	column string
	not    bool
}

func (p nullPred) build(b *strings.Builder, args *[]any) {
	b.WriteString(escapeQualified(p.column))
	if p.not {
		b.WriteString(" IS NOT NULL")
	} else {
		b.WriteString(" IS NULL")
	}
}

// IsNull matches column IS NULL.
func IsNull(column string) Predicate { return nullPred{column: column} }

// NotNull matches column IS NOT NULL.
func NotNull(column string) Predicate { return nullPred{column: column, not: true} }

type colCmp struct {
	left, right string
}

func (p colCmp) build(b *strings.Builder, _ *[]any) {
	b.WriteString(escapeQualified(p.left))
	b.WriteString(" = ")
	b.WriteString(escapeQualified(p.right))
}

// EqCol matches two columns against each other, e.g. a join condition
// users.id = orders.user_id. Both sides are escaped as identifiers.
func EqCol(left, right string) Predicate { return colCmp{left, right} }

type boolPred struct {
	op    string
	parts []Predicate
}

func (p boolPred) build(b *strings.Builder, args *[]any) {
	wrote := 0
	for _, part := range p.parts {
		if part == nil {
			continue
		}
		if wrote > 0 {
			b.WriteString(" ")
			b.WriteString(p.op)
			b.WriteString(" ")
		}
		b.WriteString("(")
		part.build(b, args)
		b.WriteString(")")
		wrote++
	}
}

// And combines predicates conjunctively. Nil parts are skipped.
func And(parts ...Predicate) Predicate { return boolPred{"AND", parts} }

// Or combines predicates disjunctively. Nil parts are skipped.
func Or(parts ...Predicate) Predicate { return boolPred{"OR", parts} }

type notPred struct {
	inner Predicate
}

func (p notPred) build(b *strings.Builder, args *[]any) {
	b.WriteString("NOT (")
	p.inner.build(b, args)
	b.WriteString(")")
}

// Not negates a predicate. Negating nil stays nil: "match everything"
// has no useful complement here, and And/Or already treat nil parts as
// absent.
func Not(inner Predicate) Predicate {
	if inner == nil {
		return nil
	}
	return notPred{inner}
}

type rawPred struct {
	sql  string
	args []any
}

func (p rawPred) build(b *strings.Builder, args *[]any) {
	b.WriteString(p.sql)
	*args = append(*args, p.args...)
}

// Raw injects a caller-supplied SQL fragment with its placeholder values.
// The fragment is concatenated verbatim, so it must never carry untrusted
// text; use the typed predicates wherever possible.
func Raw(sql string, args ...any) Predicate { return rawPred{sql, args} }
