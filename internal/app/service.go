package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mariner-db/mariner/internal/config"
	"github.com/mariner-db/mariner/internal/store"
)

// systemDatabases are hidden from the explorer tree.
var systemDatabases = map[string]bool{
	"information_schema": true,
	"performance_schema": true,
	"mysql":              true,
	"sys":                true,
}

// SchemaTree represents the loaded server hierarchy for the explorer.
type SchemaTree struct {
	Server    string
	Databases []DatabaseNode
}

// DatabaseNode holds a database name and its tables.
type DatabaseNode struct {
	Name   string
	Tables []string
}

// Grid is a fully materialized, display-ready result set.
type Grid struct {
	Columns  []string
	Rows     [][]string
	RowCount int
	Duration time.Duration
}

// Service coordinates application-level operations between the TUI and the
// store.
type Service struct {
	st   *store.Store
	conn config.Connection
}

// NewService creates a new application service.
func NewService() *Service {
	return &Service{}
}

// Connect parses a mysql:// DSN and opens the session. A profile password
// missing from the DSN is looked up in the keyring.
func (s *Service) Connect(ctx context.Context, dsn string) error {
	conn, err := config.ParseDSN(dsn)
	if err != nil {
		return &ErrConfig{Cause: err}
	}
	if conn.Password == "" {
		if pw, err := config.GetPassword(conn.Name); err == nil {
			conn.Password = pw
		}
	}

	st, err := store.Open(ctx, store.Config{
		Host:      conn.Host,
		Port:      conn.Port,
		User:      conn.Username,
		Password:  conn.Password,
		Database:  conn.Database,
		Collation: conn.Collation,
	})
	if err != nil {
		return err
	}

	s.st = st
	s.conn = conn
	return nil
}

// Disconnect closes the session.
func (s *Service) Disconnect() error {
	if s.st == nil {
		return nil
	}
	return s.st.Close()
}

// Store exposes the underlying session for typed operations.
func (s *Service) Store() *store.Store {
	return s.st
}

// DatabaseName returns the current database name, or the host when the
// session has no initial database.
func (s *Service) DatabaseName() string {
	if s.conn.Database != "" {
		return s.conn.Database
	}
	return s.conn.Host
}

// LoadSchemaTree fetches the visible databases and their tables.
func (s *Service) LoadSchemaTree(ctx context.Context) (*SchemaTree, error) {
	dbs, err := s.st.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}

	tree := &SchemaTree{Server: s.conn.Host}
	for _, db := range dbs {
		if systemDatabases[db] {
			continue
		}
		tables, err := s.st.ListTablesIn(ctx, db)
		if err != nil {
			return nil, err
		}
		tree.Databases = append(tree.Databases, DatabaseNode{
			Name:   db,
			Tables: tables,
		})
	}

	return tree, nil
}

// LoadColumns fetches column metadata for a specific table.
func (s *Service) LoadColumns(ctx context.Context, database, table string) ([]store.ColumnInfo, error) {
	return s.st.TableSchema(ctx, database+"."+table)
}

// TableRowCount returns the row count for a table.
func (s *Service) TableRowCount(ctx context.Context, database, table string) (int64, error) {
	return s.st.Count(ctx, database+"."+table, nil)
}

// ExecuteQuery runs raw SQL from the editor and materializes the result.
func (s *Service) ExecuteQuery(ctx context.Context, query string) (*Grid, error) {
	start := time.Now()

	rows, err := s.st.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &store.ErrQuery{Query: query, Cause: err}
	}

	var grid [][]string
	for rows.Next() {
		m, err := rows.Scan()
		if err != nil {
			return nil, &store.ErrQuery{Query: query, Cause: err}
		}
		row := make([]string, len(columns))
		for i, col := range columns {
			v, ok := m[col]
			if !ok || v == nil {
				row[i] = "NULL"
				continue
			}
			row[i] = fmt.Sprintf("%v", v)
		}
		grid = append(grid, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &store.ErrQuery{Query: query, Cause: err}
	}

	return &Grid{
		Columns:  columns,
		Rows:     grid,
		RowCount: len(grid),
		Duration: time.Since(start),
	}, nil
}

// AllTableNames flattens the tree's table names for editor completion.
func (s *Service) AllTableNames(tree *SchemaTree) []string {
	var names []string
	for _, db := range tree.Databases {
		names = append(names, db.Tables...)
	}
	return names
}
