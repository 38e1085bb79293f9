// Package objects checks the tables of a SQLite results database.
//
// Only the shape of the check exists: the required tables are located by
// schema introspection and the rows of "objects" are handed to a
// RowValidator. Placeholder, the only validator so far, accepts any rows.
package objects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/idelchi/extcheck/internal/logger"
)

// Names of the tables a results database must contain.
const (
	ObjectsTable     = "objects"
	CardinalityTable = "cardinality"
	ChecksumsTable   = "checksums"
)

// RequiredTables lists the tables loaded before validation, in load order.
//
//nolint:gochecknoglobals // Config constant
var RequiredTables = []string{ObjectsTable, CardinalityTable, ChecksumsTable}

// SchemaError is returned when a required table does not exist.
type SchemaError struct {
	Table string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("cannot read %s table from db", e.Table)
}

// ValidationError is returned by a RowValidator for rows that fail the check.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid objects data: " + e.Reason
}

// Column describes one column of a table as reported by SQLite.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is a table found in the database.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// RowScanner is the subset of *sql.Rows a validator sees.
type RowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
}

// RowValidator validates the rows of the objects table.
type RowValidator interface {
	ValidateObjects(rows RowScanner) error
}

// Placeholder is a RowValidator that accepts every row without reading it.
//
// TODO: Check object rows against the cardinality and checksums tables.
type Placeholder struct{}

// ValidateObjects always succeeds.
func (Placeholder) ValidateObjects(RowScanner) error {
	return nil
}

// Store is an open results database.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

// Open opens the SQLite database at path. The file must exist.
func Open(ctx context.Context, path string, log logger.Logger) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("accessing database %q: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("connecting to database %q: %w", path, err)
	}

	log.Printf("opened database %s", path)

	return &Store{db: db, log: log}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadTable introspects the named table. A missing table yields *SchemaError.
func (s *Store) LoadTable(ctx context.Context, name string) (Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, type FROM pragma_table_info(?)", name)
	if err != nil {
		return Table{}, fmt.Errorf("introspecting table %q: %w", name, err)
	}
	defer rows.Close()

	table := Table{Name: name}

	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return Table{}, fmt.Errorf("reading columns of %q: %w", name, err)
		}

		table.Columns = append(table.Columns, col)
	}

	if err := rows.Err(); err != nil {
		return Table{}, fmt.Errorf("reading columns of %q: %w", name, err)
	}

	if len(table.Columns) == 0 {
		return Table{}, &SchemaError{Table: name}
	}

	s.log.Printf("loaded table %s with %d columns", name, len(table.Columns))

	return table, nil
}

// LoadTables loads every named table in order and stops at the first failure.
func (s *Store) LoadTables(ctx context.Context, names ...string) ([]Table, error) {
	tables := make([]Table, 0, len(names))

	for _, name := range names {
		table, err := s.LoadTable(ctx, name)
		if err != nil {
			s.log.Printf("loading table %s failed after %d of %d tables", name, len(tables), len(names))

			return nil, err
		}

		tables = append(tables, table)
	}

	return tables, nil
}

// Objects selects every row of the objects table and passes the result set to fn.
// The rows are closed when fn returns.
func (s *Store) Objects(ctx context.Context, fn func(RowScanner) error) error {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(ObjectsTable))
	if err != nil {
		return fmt.Errorf("selecting from %s: %w", ObjectsTable, err)
	}
	defer rows.Close()

	if err := fn(rows); err != nil {
		return err
	}

	return rows.Err()
}

// Check opens the database at path, loads the required tables and validates
// the objects table with validator. A *ValidationError is logged and
// reported as false; every other failure is returned.
func Check(ctx context.Context, path string, validator RowValidator, log logger.Logger) (bool, error) {
	store, err := Open(ctx, path, log)
	if err != nil {
		return false, err
	}
	defer store.Close()

	if _, err := store.LoadTables(ctx, RequiredTables...); err != nil {
		return false, err
	}

	if err := store.Objects(ctx, validator.ValidateObjects); err != nil {
		var invalid *ValidationError
		if errors.As(err, &invalid) {
			log.Errorf("%s", invalid.Error())

			return false, nil
		}

		return false, fmt.Errorf("validating %s: %w", ObjectsTable, err)
	}

	return true, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
