package store

import (
	"reflect"
	"testing"
)

func TestBuildSelect(t *testing.T) {
	stmt, args := buildSelect(false, "users", []string{"id", "name"}, Eq("status", "active"),
		[]SelectOption{OrderBy("id", Desc), Limit(10), Offset(20)})

	want := "SELECT `id`, `name` FROM `users` WHERE `status` = ? ORDER BY `id` DESC LIMIT 10 OFFSET 20"
	if stmt != want {
		t.Errorf("stmt = %q, want %q", stmt, want)
	}
	if !reflect.DeepEqual(args, []any{"active"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildSelectDefaults(t *testing.T) {
	stmt, args := buildSelect(false, "users", nil, nil, nil)
	if want := "SELECT * FROM `users`"; stmt != want {
		t.Errorf("stmt = %q, want %q", stmt, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuildSelectDistinctGroupBy(t *testing.T) {
	stmt, _ := buildSelect(true, "orders", []string{"customer_id"}, nil,
		[]SelectOption{GroupBy("customer_id")})
	if want := "SELECT DISTINCT `customer_id` FROM `orders` GROUP BY `customer_id`"; stmt != want {
		t.Errorf("stmt = %q, want %q", stmt, want)
	}
}

func TestBuildJoin(t *testing.T) {
	spec := JoinSpec{
		Kind:  LeftJoin,
		Left:  "users",
		Right: "orders",
		On:    EqCol("users.id", "orders.user_id"),
	}
	stmt, args := buildJoin(spec, []string{"users.name", "orders.total"}, Gt("orders.total", 100), nil)

	want := "SELECT `users`.`name`, `orders`.`total` FROM `users` LEFT JOIN `orders`" +
		" ON `users`.`id` = `orders`.`user_id` WHERE `orders`.`total` > ?"
	if stmt != want {
		t.Errorf("stmt = %q, want %q", stmt, want)
	}
	if !reflect.DeepEqual(args, []any{100}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildJoinCrossHasNoOn(t *testing.T) {
	spec := JoinSpec{Kind: CrossJoin, Left: "a", Right: "b", On: EqCol("a.x", "b.y")}
	stmt, _ := buildJoin(spec, nil, nil, nil)
	if want := "SELECT * FROM `a` CROSS JOIN `b`"; stmt != want {
		t.Errorf("stmt = %q, want %q", stmt, want)
	}
}

func TestBuildAggregate(t *testing.T) {
	stmt, args := buildAggregate("COUNT", "*", "users", nil)
	if want := "SELECT COUNT(*) FROM `users`"; stmt != want {
		t.Errorf("stmt = %q, want %q", stmt, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}

	stmt, args = buildAggregate("SUM", "total", "orders", Eq("status", "paid"))
	if want := "SELECT SUM(`total`) FROM `orders` WHERE `status` = ?"; stmt != want {
		t.Errorf("stmt = %q, want %q", stmt, want)
	}
	if !reflect.DeepEqual(args, []any{"paid"}) {
		t.Errorf("args = %v", args)
	}
}
