// Package dbmanager provides the relational helpers that data-layer tests
// use, over an embedded SQLite engine (modernc.org/sqlite, no cgo).
//
// Each operation opens a connection, executes, commits, and closes the
// connection within the call. That trades throughput for a guarantee that a
// test can never leak a connection. The one exception is an in-memory
// database, which only exists as long as a connection to it does; for those
// the manager pins a single shared connection for its lifetime.
//
// Table and column names are interpolated into SQL text as-is. This is a
// deliberate trust boundary: identifiers come from test code, which already
// has full control of the database. Row values always go through bound
// parameters.
package dbmanager

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/testhive/app-test-harness/framework"
)

// Row is a single result row, keyed by column name.
type Row map[string]interface{}

// Schema maps column names to their SQL type declarations, e.g.
// {"id": "INTEGER PRIMARY KEY", "name": "TEXT"}.
type Schema map[string]string

// Manager executes queries against the database at a fixed path.
type Manager struct {
	path   string
	logger framework.Logger
	shared *sql.DB // non-nil only for in-memory databases
}

// New creates a Manager for the database file at path. The special path
// ":memory:" selects a private in-memory database.
func New(path string, logger framework.Logger) (*Manager, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	m := &Manager{path: path, logger: logger}
	if isMemoryPath(path) {
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return nil, fmt.Errorf("cannot open in-memory database: %w", err)
		}
		// An in-memory database vanishes when its last connection closes, and
		// every new pool connection would get a fresh empty one. One pinned
		// connection keeps the data alive across calls.
		db.SetMaxOpenConns(1)
		m.shared = db
	}
	return m, nil
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// Path returns the database path this manager is bound to.
func (m *Manager) Path() string { return m.path }

// open returns a database handle and a release function to be called when the
// operation is done.
func (m *Manager) open() (*sql.DB, func(), error) {
	if m.shared != nil {
		return m.shared, func() {}, nil
	}
	db, err := sql.Open("sqlite", m.path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open database %s: %w", m.path, err)
	}
	return db, func() { _ = db.Close() }, nil
}

// Execute runs a statement that returns no rows. Values are bound; the query
// text itself is caller-trusted.
func (m *Manager) Execute(query string, params ...interface{}) error {
	db, release, err := m.open()
	if err != nil {
		return err
	}
	defer release()
	if _, err := db.Exec(query, params...); err != nil {
		return fmt.Errorf("execute failed: %w", err)
	}
	return nil
}

// FetchOne returns the first matching row, or nil (and no error) when the
// result set is empty.
func (m *Manager) FetchOne(query string, params ...interface{}) (Row, error) {
	rows, err := m.FetchAll(query, params...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// FetchAll returns every matching row as a named-field record.
func (m *Manager) FetchAll(query string, params ...interface{}) ([]Row, error) {
	db, release, err := m.open()
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		record := make(Row, len(columns))
		for i, col := range columns {
			record[col] = normalizeValue(values[i])
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// The driver hands TEXT columns back as either string or []byte depending on
// how the value was bound; tests want a single representation.
func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// CreateTable creates the table if it does not already exist. Columns appear
// in sorted name order so the generated SQL is deterministic.
func (m *Manager) CreateTable(name string, schema Schema) error {
	if len(schema) == 0 {
		return errors.New("table schema must have at least one column")
	}
	cols := maps.Keys(schema)
	slices.Sort(cols)
	defs := make([]string, 0, len(cols))
	for _, col := range cols {
		defs = append(defs, fmt.Sprintf("%s %s", col, schema[col]))
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", name, strings.Join(defs, ", "))
	if err := m.Execute(query); err != nil {
		return err
	}
	m.logger.Printf("Table %s created or verified", name)
	return nil
}

// Insert adds one record to the table. Column names come from the record's
// keys; values are bound parameters.
func (m *Manager) Insert(name string, record Row) error {
	if len(record) == 0 {
		return errors.New("insert record must have at least one column")
	}
	cols := maps.Keys(record)
	slices.Sort(cols)
	placeholders := make([]string, 0, len(cols))
	values := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		placeholders = append(placeholders, "?")
		values = append(values, record[col])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		name, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if err := m.Execute(query, values...); err != nil {
		return err
	}
	m.logger.Printf("Data inserted into %s", name)
	return nil
}

// DeleteAll removes every row from the table.
func (m *Manager) DeleteAll(name string) error {
	if err := m.Execute(fmt.Sprintf("DELETE FROM %s", name)); err != nil {
		return err
	}
	m.logger.Printf("All data deleted from %s", name)
	return nil
}

// DropTable drops the table if it exists.
func (m *Manager) DropTable(name string) error {
	if err := m.Execute(fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
		return err
	}
	m.logger.Printf("Table %s dropped", name)
	return nil
}

// Close releases the pinned connection of an in-memory database. For
// file-backed databases it is a no-op, since no connection outlives a call.
func (m *Manager) Close() error {
	if m.shared == nil {
		return nil
	}
	err := m.shared.Close()
	m.shared = nil
	return err
}
