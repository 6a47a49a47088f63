package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ReferenceAction is a foreign-key ON DELETE / ON UPDATE action.
type ReferenceAction string

const (
	Restrict ReferenceAction = "RESTRICT"
	Cascade  ReferenceAction = "CASCADE"
	SetNull  ReferenceAction = "SET NULL"
	NoAction ReferenceAction = "NO ACTION"
)

// ForeignKey describes the target of a column-level reference. Unset
// actions default to ON DELETE RESTRICT and ON UPDATE CASCADE.
type ForeignKey struct {
	Table    string
	Column   string
	OnDelete ReferenceAction
	OnUpdate ReferenceAction
}

// Column describes one column for CreateTable. Columns are an ordered slice
// rather than a map so the generated DDL is deterministic.
type Column struct {
	Name          string
	Type          string // e.g. "INT", "VARCHAR"
	Length        int    // 0 = no length suffix
	Nullable      bool
	Default       any // nil = no default clause
	Primary       bool
	Unique        bool
	Index         bool
	AutoIncrement bool
	References    *ForeignKey
}

const (
	defaultEngine  = "InnoDB"
	defaultCharset = "utf8mb4"
)

// CreateDatabase creates a database if it does not exist. An empty
// collation leaves the server default in place.
func (s *Store) CreateDatabase(ctx context.Context, name, collation string) error {
	stmt := "CREATE DATABASE IF NOT EXISTS " + EscapeIdentifier(name)
	if collation != "" {
		stmt += " COLLATE " + quoteLiteral(collation)
	}
	_, err := s.execute(ctx, stmt)
	return err
}

// DropDatabase drops a database if it exists.
func (s *Store) DropDatabase(ctx context.Context, name string) error {
	_, err := s.execute(ctx, "DROP DATABASE IF EXISTS "+EscapeIdentifier(name))
	return err
}

// CreateTable creates a table if it does not exist. Primary, unique,
// index, and foreign-key clauses are derived from the per-column flags; all
// columns flagged Primary form one composite primary key in declaration
// order. An empty engine means InnoDB.
func (s *Store) CreateTable(ctx context.Context, name string, columns []Column, engine string) error {
	stmt, err := buildCreateTable(name, columns, engine)
	if err != nil {
		return err
	}
	_, err = s.execute(ctx, stmt)
	return err
}

// DropTable drops a table if it exists.
func (s *Store) DropTable(ctx context.Context, name string) error {
	_, err := s.execute(ctx, "DROP TABLE IF EXISTS "+escapeQualified(name))
	return err
}

// Truncate empties a table.
func (s *Store) Truncate(ctx context.Context, name string) error {
	_, err := s.execute(ctx, "TRUNCATE TABLE "+escapeQualified(name))
	return err
}

func buildCreateTable(name string, columns []Column, engine string) (string, error) {
	if len(columns) == 0 {
		return "", errors.New("create table: no columns")
	}
	if engine == "" {
		engine = defaultEngine
	}

	var defs []string
	var primary []string
	var keys []string

	for _, col := range columns {
		if col.Name == "" || col.Type == "" {
			return "", fmt.Errorf("create table: column %q needs a name and a type", col.Name)
		}
		defs = append(defs, columnDef(col))

		ident := EscapeIdentifier(col.Name)
		if col.Primary {
			primary = append(primary, ident)
		}
		if col.Unique {
			keys = append(keys, "UNIQUE KEY "+EscapeIdentifier("uniq_"+col.Name)+" ("+ident+")")
		}
		if col.Index {
			keys = append(keys, "KEY "+EscapeIdentifier("idx_"+col.Name)+" ("+ident+")")
		}
		if fk := col.References; fk != nil {
			keys = append(keys, foreignKeyDef(name, col.Name, fk))
		}
	}

	if len(primary) > 0 {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(primary, ", ")+")")
	}
	defs = append(defs, keys...)

	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(escapeQualified(name))
	b.WriteString(" (")
	b.WriteString(strings.Join(defs, ", "))
	b.WriteString(") ENGINE=")
	b.WriteString(engine)
	b.WriteString(" DEFAULT CHARSET=")
	b.WriteString(defaultCharset)
	return b.String(), nil
}

func columnDef(col Column) string {
	var b strings.Builder
	b.WriteString(EscapeIdentifier(col.Name))
	b.WriteString(" ")
	b.WriteString(strings.ToUpper(col.Type))
	if col.Length > 0 {
		fmt.Fprintf(&b, "(%d)", col.Length)
	}
	if !col.Nullable {
		b.WriteString(" NOT NULL")
	}
	if col.AutoIncrement {
		b.WriteString(" AUTO_INCREMENT")
	}
	if col.Default != nil {
		// DDL cannot carry bound parameters, so the default is quoted here.
		b.WriteString(" DEFAULT ")
		b.WriteString(quoteLiteral(col.Default))
	}
	return b.String()
}

func foreignKeyDef(table, column string, fk *ForeignKey) string {
	onDelete := fk.OnDelete
	if onDelete == "" {
		onDelete = Restrict
	}
	onUpdate := fk.OnUpdate
	if onUpdate == "" {
		onUpdate = Cascade
	}
	return "CONSTRAINT " + EscapeIdentifier("fk_"+table+"_"+column) +
		" FOREIGN KEY (" + EscapeIdentifier(column) + ")" +
		" REFERENCES " + escapeQualified(fk.Table) + " (" + EscapeIdentifier(fk.Column) + ")" +
		" ON DELETE " + string(onDelete) +
		" ON UPDATE " + string(onUpdate)
}
