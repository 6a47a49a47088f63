package store

import (
	"context"
	"reflect"
	"testing"
)

func TestBuildInsert(t *testing.T) {
	stmt, args, err := buildInsert("INSERT INTO", "users", map[string]any{
		"name": "ada",
		"age":  36,
	})
	if err != nil {
		t.Fatalf("buildInsert: %v", err)
	}
	// Columns come out sorted so the statement is deterministic.
	if want := "INSERT INTO `users` (`age`, `name`) VALUES (?, ?)"; stmt != want {
		t.Errorf("stmt = %q, want %q", stmt, want)
	}
	if !reflect.DeepEqual(args, []any{36, "ada"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildInsertEmptyRow(t *testing.T) {
	if _, _, err := buildInsert("INSERT INTO", "users", nil); err == nil {
		t.Error("expected error for empty row")
	}
}

func TestBuildInsertBatch(t *testing.T) {
	rows := []map[string]any{
		{"a": 1, "b": 2},
		{"a": 3}, // missing key binds NULL
	}
	stmt, args, err := buildInsertBatch("t", rows)
	if err != nil {
		t.Fatalf("buildInsertBatch: %v", err)
	}
	if want := "INSERT INTO `t` (`a`, `b`) VALUES (?, ?), (?, ?)"; stmt != want {
		t.Errorf("stmt = %q, want %q", stmt, want)
	}
	if !reflect.DeepEqual(args, []any{1, 2, 3, nil}) {
		t.Errorf("args = %v", args)
	}
}

func TestInsertBatchEmptyIssuesNoStatement(t *testing.T) {
	s := &Store{} // no connection; any statement would panic
	n, err := s.InsertBatch(context.Background(), "t", nil)
	if err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if n != 0 {
		t.Errorf("affected = %d, want 0", n)
	}
	if got := s.LastQuery(); got != "" {
		t.Errorf("a statement was recorded: %q", got)
	}
}

func TestBuildUpdate(t *testing.T) {
	stmt, args, err := buildUpdate("users", map[string]any{"name": "bob", "age": 9}, Eq("id", 5))
	if err != nil {
		t.Fatalf("buildUpdate: %v", err)
	}
	if want := "UPDATE `users` SET `age` = ?, `name` = ? WHERE `id` = ?"; stmt != want {
		t.Errorf("stmt = %q, want %q", stmt, want)
	}
	if !reflect.DeepEqual(args, []any{9, "bob", 5}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildUpdateNoWhere(t *testing.T) {
	stmt, _, err := buildUpdate("users", map[string]any{"x": 1}, nil)
	if err != nil {
		t.Fatalf("buildUpdate: %v", err)
	}
	if want := "UPDATE `users` SET `x` = ?"; stmt != want {
		t.Errorf("stmt = %q, want %q", stmt, want)
	}
}

func TestBuildDelete(t *testing.T) {
	stmt, args := buildDelete("users", In("id", 1, 2))
	if want := "DELETE FROM `users` WHERE `id` IN (?, ?)"; stmt != want {
		t.Errorf("stmt = %q, want %q", stmt, want)
	}
	if !reflect.DeepEqual(args, []any{1, 2}) {
		t.Errorf("args = %v", args)
	}
}
