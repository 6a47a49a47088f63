package store

import (
	"strings"
	"testing"
)

// unescapeIdentifier reverses EscapeIdentifier the way the server's parser
// would: strip the enclosing backticks, collapse doubled ones.
func unescapeIdentifier(s string) string {
	s = strings.TrimPrefix(s, "`")
	s = strings.TrimSuffix(s, "`")
	return strings.ReplaceAll(s, "``", "`")
}

func TestEscapeIdentifierRoundTrip(t *testing.T) {
	names := []string{
		"users",
		"weird name",
		"back`tick",
		"``",
		"a`b`c",
		"drop table; --",
	}
	for _, name := range names {
		escaped := EscapeIdentifier(name)
		if !strings.HasPrefix(escaped, "`") || !strings.HasSuffix(escaped, "`") {
			t.Errorf("EscapeIdentifier(%q) = %q, not backtick-wrapped", name, escaped)
		}
		if got := unescapeIdentifier(escaped); got != name {
			t.Errorf("round trip of %q: got %q", name, got)
		}
	}
}

func TestEscapeQualified(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"users", "`users`"},
		{"shop.users", "`shop`.`users`"},
		{"users.*", "`users`.*"},
		{"*", "*"},
		{"we`ird.col", "`we``ird`.`col`"},
	}
	for _, tt := range tests {
		if got := escapeQualified(tt.in); got != tt.want {
			t.Errorf("escapeQualified(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeColumnList(t *testing.T) {
	if got := escapeColumnList(nil); got != "*" {
		t.Errorf("empty list = %q, want *", got)
	}
	if got := escapeColumnList([]string{"id", "u.name"}); got != "`id`, `u`.`name`" {
		t.Errorf("got %q", got)
	}
}

func TestEscapeLikePattern(t *testing.T) {
	if got := escapeLikePattern(`100%_done\`); got != `100\%\_done\\` {
		t.Errorf("got %q", got)
	}
}
