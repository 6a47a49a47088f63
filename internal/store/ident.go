package store

import "strings"

// EscapeIdentifier makes a table or column name syntactically inert by
// doubling embedded backticks and wrapping the result in backticks.
func EscapeIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// escapeQualified escapes a possibly qualified name such as "db.table" or
// "table.column" per segment. A bare or trailing "*" is passed through.
func escapeQualified(name string) string {
	if name == "*" {
		return name
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "*" {
			continue
		}
		parts[i] = EscapeIdentifier(p)
	}
	return strings.Join(parts, ".")
}

// escapeColumnList renders a SELECT column list. An empty list means all
// columns.
func escapeColumnList(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = escapeQualified(c)
	}
	return strings.Join(out, ", ")
}

// escapeLikePattern escapes LIKE metacharacters so a name can be matched
// literally in e.g. SHOW TABLES LIKE ?.
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
