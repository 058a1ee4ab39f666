package dbmanager

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usersSchema = Schema{
	"id":   "INTEGER PRIMARY KEY",
	"name": "TEXT",
}

func newMemoryManager(t *testing.T) *Manager {
	m, err := New(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	require.NoError(t, m.CreateTable("users", usersSchema))
	return m
}

func TestInsertAndFetchRoundTrip(t *testing.T) {
	m := newMemoryManager(t)

	require.NoError(t, m.Insert("users", Row{"id": 1, "name": "alice"}))
	require.NoError(t, m.Insert("users", Row{"id": 2, "name": "bob"}))

	rows, err := m.FetchAll("SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 1, rows[0]["id"])
	assert.Equal(t, "alice", rows[0]["name"])
	assert.EqualValues(t, 2, rows[1]["id"])
	assert.Equal(t, "bob", rows[1]["name"])
}

func TestFetchOneReturnsFirstMatch(t *testing.T) {
	m := newMemoryManager(t)
	require.NoError(t, m.Insert("users", Row{"id": 1, "name": "alice"}))

	row, err := m.FetchOne("SELECT name FROM users WHERE id = ?", 1)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "alice", row["name"])
}

func TestFetchOneReturnsNilWhenAbsent(t *testing.T) {
	m := newMemoryManager(t)

	row, err := m.FetchOne("SELECT name FROM users WHERE id = ?", 99)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestDeleteAllEmptiesTable(t *testing.T) {
	m := newMemoryManager(t)
	require.NoError(t, m.Insert("users", Row{"id": 1, "name": "alice"}))
	require.NoError(t, m.DeleteAll("users"))

	rows, err := m.FetchAll("SELECT * FROM users")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDropTableRemovesTable(t *testing.T) {
	m := newMemoryManager(t)
	require.NoError(t, m.DropTable("users"))

	_, err := m.FetchAll("SELECT * FROM users")
	assert.Error(t, err)
}

func TestCreateTableIsIdempotent(t *testing.T) {
	m := newMemoryManager(t)
	require.NoError(t, m.Insert("users", Row{"id": 1, "name": "alice"}))

	// a second create must not disturb existing data
	require.NoError(t, m.CreateTable("users", usersSchema))
	rows, err := m.FetchAll("SELECT * FROM users")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFileBackedDatabasePersistsAcrossCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	m, err := New(path, nil)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.CreateTable("users", usersSchema))
	require.NoError(t, m.Insert("users", Row{"id": 7, "name": "grace"}))

	// a fresh manager for the same file sees the data
	m2, err := New(path, nil)
	require.NoError(t, err)
	defer m2.Close()

	row, err := m2.FetchOne("SELECT name FROM users WHERE id = ?", 7)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "grace", row["name"])
}

func TestExecuteRunsArbitraryStatements(t *testing.T) {
	m := newMemoryManager(t)
	require.NoError(t, m.Insert("users", Row{"id": 1, "name": "alice"}))
	require.NoError(t, m.Execute("UPDATE users SET name = ? WHERE id = ?", "alicia", 1))

	row, err := m.FetchOne("SELECT name FROM users WHERE id = ?", 1)
	require.NoError(t, err)
	assert.Equal(t, "alicia", row["name"])
}

func TestSchemaValidation(t *testing.T) {
	m, err := New(":memory:", nil)
	require.NoError(t, err)
	defer m.Close()

	assert.Error(t, m.CreateTable("empty", Schema{}))
	assert.Error(t, m.Insert("users", Row{}))
}

func TestNormalizeValueConvertsBytesToString(t *testing.T) {
	assert.Equal(t, "abc", normalizeValue([]byte("abc")))
	assert.Equal(t, int64(5), normalizeValue(int64(5)))
	assert.Nil(t, normalizeValue(nil))
}

func TestCloseIsSafeForFileBackedManager(t *testing.T) {
	m, err := New(filepath.Join(t.TempDir(), "x.db"), nil)
	require.NoError(t, err)
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}
