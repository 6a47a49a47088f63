package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// stubRows is a fixed result set served by the stub driver.
type stubRows struct {
	cols []string
	vals [][]driver.Value
	i    int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.i >= len(r.vals) {
		return io.EOF
	}
	copy(dest, r.vals[r.i])
	r.i++
	return nil
}

// stubConn answers every query with a canned result or error.
type stubConn struct {
	query func() (driver.Rows, error)
}

func (c *stubConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	return c.query()
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("prepare unsupported") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return nil, errors.New("begin unsupported") }

type stubConnector struct{ conn *stubConn }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, errors.New("open unsupported") }

func rowsResult(cols []string, rows ...[]driver.Value) func() (driver.Rows, error) {
	return func() (driver.Rows, error) {
		return &stubRows{cols: cols, vals: rows}, nil
	}
}

func errResult(err error) func() (driver.Rows, error) {
	return func() (driver.Rows, error) { return nil, err }
}

func newIntrospectStore(query func() (driver.Rows, error)) *Store {
	conn := &stubConn{query: query}
	db := sqlx.NewDb(sql.OpenDB(stubConnector{conn}), "mysql")
	return &Store{db: db}
}

func TestColumnExistsClassifiesErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing column is not an error", func(t *testing.T) {
		s := newIntrospectStore(errResult(&mysql.MySQLError{Number: 1054, Message: "Unknown column 'ghost'"}))
		found, err := s.ColumnExists(ctx, "users", "ghost")
		if err != nil {
			t.Fatalf("err = %v, want nil", err)
		}
		if found {
			t.Error("missing column reported as present")
		}
	})

	t.Run("missing table is an error", func(t *testing.T) {
		s := newIntrospectStore(errResult(&mysql.MySQLError{Number: 1146, Message: "Table 'db.ghost' doesn't exist"}))
		_, err := s.ColumnExists(ctx, "ghost", "id")
		if err == nil {
			t.Fatal("expected error")
		}
		var myErr *mysql.MySQLError
		if !errors.As(err, &myErr) || myErr.Number != 1146 {
			t.Errorf("server cause was lost: %v", err)
		}
	})

	t.Run("driver failure is an error", func(t *testing.T) {
		cause := errors.New("connection reset")
		s := newIntrospectStore(errResult(cause))
		_, err := s.ColumnExists(ctx, "users", "id")
		if !errors.Is(err, cause) {
			t.Errorf("err = %v, want wrapped %v", err, cause)
		}
	})

	t.Run("present column", func(t *testing.T) {
		s := newIntrospectStore(rowsResult([]string{"id"}, []driver.Value{int64(1)}))
		found, err := s.ColumnExists(ctx, "users", "id")
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if !found {
			t.Error("existing column reported as missing")
		}
	})
}

func TestTableExistsClassifiesErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no match is not an error", func(t *testing.T) {
		s := newIntrospectStore(rowsResult([]string{"Tables_in_db (ghost)"}))
		found, err := s.TableExists(ctx, "ghost")
		if err != nil {
			t.Fatalf("err = %v, want nil", err)
		}
		if found {
			t.Error("missing table reported as present")
		}
	})

	t.Run("match", func(t *testing.T) {
		s := newIntrospectStore(rowsResult([]string{"Tables_in_db (users)"}, []driver.Value{"users"}))
		found, err := s.TableExists(ctx, "users")
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if !found {
			t.Error("existing table reported as missing")
		}
	})

	t.Run("driver failure is an error", func(t *testing.T) {
		cause := errors.New("server has gone away")
		s := newIntrospectStore(errResult(cause))
		_, err := s.TableExists(ctx, "users")
		if !errors.Is(err, cause) {
			t.Errorf("err = %v, want wrapped %v", err, cause)
		}
	})
}

func TestTableSchemaParsesDescribe(t *testing.T) {
	cols := []string{"Field", "Type", "Null", "Key", "Default", "Extra"}
	s := newIntrospectStore(rowsResult(cols,
		[]driver.Value{"id", "int", "NO", "PRI", nil, "auto_increment"},
		[]driver.Value{"email", "varchar(255)", "YES", "UNI", "none@example.com", ""},
	))

	schema, err := s.TableSchema(context.Background(), "users")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if len(schema) != 2 {
		t.Fatalf("columns = %d, want 2", len(schema))
	}

	id := schema[0]
	if id.Name != "id" || id.DataType != "int" || id.Nullable || id.Key != "PRI" || id.Extra != "auto_increment" {
		t.Errorf("id column = %+v", id)
	}
	if id.Default.Valid {
		t.Error("id default should be NULL")
	}

	email := schema[1]
	if email.Name != "email" || !email.Nullable || email.Key != "UNI" {
		t.Errorf("email column = %+v", email)
	}
	if !email.Default.Valid || email.Default.String != "none@example.com" {
		t.Errorf("email default = %+v", email.Default)
	}
}
