package suites

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testhive/app-test-harness/dbmanager"
	"github.com/testhive/app-test-harness/framework/apptest"
	"github.com/testhive/app-test-harness/resources"
)

var usersSchema = dbmanager.Schema{
	"id":     "INTEGER PRIMARY KEY",
	"name":   "TEXT",
	"email":  "TEXT",
	"active": "INTEGER",
}

func doDatabaseTests(t *apptest.T, mgr *resources.Manager) {
	db, err := mgr.Database(t, resources.ScopeSession)
	require.NoError(t, err)

	const table = "harness_users"
	require.NoError(t, db.CreateTable(table, usersSchema))
	t.Defer(func() { _ = db.DropTable(table) })

	t.Run("insert and fetch round trip", func(t *apptest.T) {
		require.NoError(t, db.DeleteAll(table))
		record := dbmanager.Row{"id": 1, "name": "a", "email": "a@example.com", "active": 1}
		require.NoError(t, db.Insert(table, record))

		rows, err := db.FetchAll("SELECT * FROM " + table)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.EqualValues(t, 1, rows[0]["id"])
		assert.Equal(t, "a", rows[0]["name"])
		assert.Equal(t, "a@example.com", rows[0]["email"])
		assert.EqualValues(t, 1, rows[0]["active"])
	})

	t.Run("fetch one returns the matching row", func(t *apptest.T) {
		require.NoError(t, db.DeleteAll(table))
		require.NoError(t, db.Insert(table, dbmanager.Row{"id": 2, "name": "b"}))

		row, err := db.FetchOne("SELECT id, name FROM "+table+" WHERE id = ?", 2)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.EqualValues(t, 2, row["id"])
		assert.Equal(t, "b", row["name"])
	})

	t.Run("fetch one on an empty result is absence, not an error", func(t *apptest.T) {
		row, err := db.FetchOne("SELECT * FROM "+table+" WHERE id = ?", 987654)
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("delete all empties the table", func(t *apptest.T) {
		require.NoError(t, db.Insert(table, dbmanager.Row{"id": 3, "name": "c"}))
		require.NoError(t, db.DeleteAll(table))
		rows, err := db.FetchAll("SELECT * FROM " + table)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("drop table removes it", func(t *apptest.T) {
		const scratch = "harness_scratch"
		require.NoError(t, db.CreateTable(scratch, dbmanager.Schema{"id": "INTEGER"}))
		require.NoError(t, db.DropTable(scratch))
		_, err := db.FetchAll("SELECT * FROM " + scratch)
		assert.Error(t, err)
	})
}
