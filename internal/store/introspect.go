package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// mysqlErrBadField is the server error for a column that does not exist.
const mysqlErrBadField = 1054

// ColumnInfo describes one column as reported by DESCRIBE.
type ColumnInfo struct {
	Name     string
	DataType string
	Nullable bool
	Key      string // PRI, UNI, MUL or empty
	Default  sql.NullString
	Extra    string // e.g. auto_increment
}

// ListDatabases returns the databases visible to the session.
func (s *Store) ListDatabases(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "SHOW DATABASES")
}

// ListTables returns the tables of the current database.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "SHOW TABLES")
}

// ListTablesIn returns the tables of a named database.
func (s *Store) ListTablesIn(ctx context.Context, database string) ([]string, error) {
	return s.queryStrings(ctx, "SHOW TABLES FROM "+EscapeIdentifier(database))
}

// TableExists reports whether a table exists in the current database.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := s.scanRow(ctx, "SHOW TABLES LIKE ?", []any{escapeLikePattern(name)}, &found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ColumnExists reports whether a column exists on a table. A missing column
// yields (false, nil); any other failure, such as a missing table or a lost
// connection, is returned as an error rather than conflated with absence.
func (s *Store) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	stmt := "SELECT " + EscapeIdentifier(column) + " FROM " + escapeQualified(table) + " LIMIT 1"
	rows, err := s.Query(ctx, stmt)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlErrBadField {
			return false, nil
		}
		return false, err
	}
	rows.Close()
	return true, nil
}

// TableSchema returns column metadata for a table via DESCRIBE.
func (s *Store) TableSchema(ctx context.Context, table string) ([]ColumnInfo, error) {
	stmt := "DESCRIBE " + escapeQualified(table)
	rows, err := s.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var (
			info     ColumnInfo
			nullable string
		)
		if err := rows.rows.Scan(&info.Name, &info.DataType, &nullable, &info.Key, &info.Default, &info.Extra); err != nil {
			return nil, &ErrQuery{Query: stmt, Cause: err}
		}
		info.Nullable = nullable == "YES"
		cols = append(cols, info)
	}
	return cols, rows.Err()
}
