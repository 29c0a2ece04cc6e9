package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestConfigDSN(t *testing.T) {
	dsn := Config{Path: "/tmp/x.db"}.DSN()
	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "busy_timeout%285000%29")
	assert.Contains(t, dsn, "journal_mode%28WAL%29")
	assert.Contains(t, dsn, "foreign_keys%281%29")
	assert.Contains(t, dsn, "_txlock=immediate")
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, MigrateUp(db))
	require.NoError(t, MigrateUp(db))

	version, dirty, err := MigrateVersion(db)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	for _, table := range []string{"trips", "regions", "places", "place_visit_candidates", "place_visit_events", "detection_settings"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, MigrateUp(db))
	require.NoError(t, MigrateDown(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'places'`).Scan(&n))
	assert.Zero(t, n)
}

func TestOpenVisitUniqueIndex(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, MigrateUp(db))

	_, err := db.Exec(`INSERT INTO trips (id, user_id, name, created_at) VALUES (1, 'u', 't', 0)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO regions (id, trip_id, name) VALUES (1, 1, 'r')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO places (id, region_id, name, latitude, longitude, cell_id) VALUES (1, 1, 'p', 0, 0, 0)`)
	require.NoError(t, err)

	insert := `INSERT INTO place_visit_events (id, user_id, place_id, arrived_at, last_seen_at, ended_at, created_at, updated_at)
		VALUES (?, 'u', 1, 0, 0, ?, 0, 0)`
	_, err = db.Exec(insert, "a", nil)
	require.NoError(t, err)
	_, err = db.Exec(insert, "b", nil)
	assert.Error(t, err, "second open visit for the same place")
	_, err = db.Exec(insert, "c", 10)
	assert.NoError(t, err, "closed visits are not constrained")
}

func TestTransaction(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`CREATE TABLE kv (k TEXT PRIMARY KEY)`)
	require.NoError(t, err)
	ctx := context.Background()

	boom := errors.New("boom")
	err = Transaction(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO kv VALUES ('rolled-back')`); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, Transaction(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO kv VALUES ('kept')`)
		return err
	}))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
	assert.Equal(t, 1, n)
}
