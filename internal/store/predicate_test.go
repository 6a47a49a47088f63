package store

import (
	"reflect"
	"testing"
)

func TestPredicateLowering(t *testing.T) {
	tests := []struct {
		name     string
		pred     Predicate
		wantSQL  string
		wantArgs []any
	}{
		{"nil", nil, "", nil},
		{"eq", Eq("status", "active"), "`status` = ?", []any{"active"}},
		{"ne", Ne("id", 3), "`id` <> ?", []any{3}},
		{"gt", Gt("age", 21), "`age` > ?", []any{21}},
		{"lte", Lte("price", 9.99), "`price` <= ?", []any{9.99}},
		{"like", Like("name", "jo%"), "`name` LIKE ?", []any{"jo%"}},
		{"in", In("id", 1, 2, 3), "`id` IN (?, ?, ?)", []any{1, 2, 3}},
		{"in empty", In("id"), "0 = 1", nil},
		{"between", Between("ts", 10, 20), "`ts` BETWEEN ? AND ?", []any{10, 20}},
		{"is null", IsNull("deleted_at"), "`deleted_at` IS NULL", nil},
		{"not null", NotNull("deleted_at"), "`deleted_at` IS NOT NULL", nil},
		{"eq col", EqCol("users.id", "orders.user_id"), "`users`.`id` = `orders`.`user_id`", nil},
		{"qualified", Eq("u.id", 7), "`u`.`id` = ?", []any{7}},
		{
			"and",
			And(Eq("a", 1), Eq("b", 2)),
			"(`a` = ?) AND (`b` = ?)",
			[]any{1, 2},
		},
		{
			"or with nil part",
			Or(nil, Eq("a", 1), Gt("b", 2)),
			"(`a` = ?) OR (`b` > ?)",
			[]any{1, 2},
		},
		{
			"nested",
			And(Eq("status", "active"), Or(Lt("age", 18), Gt("age", 65))),
			"(`status` = ?) AND ((`age` < ?) OR (`age` > ?))",
			[]any{"active", 18, 65},
		},
		{"not", Not(Eq("a", 1)), "NOT (`a` = ?)", []any{1}},
		{"not nil", Not(nil), "", nil},
		{"and with not nil part", And(Eq("a", 1), Not(nil)), "(`a` = ?)", []any{1}},
		{"raw", Raw("a = ? OR b = ?", 1, 2), "a = ? OR b = ?", []any{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := lowerPredicate(tt.pred)
			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}
