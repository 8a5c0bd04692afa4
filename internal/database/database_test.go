package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringside/simulator/internal/model"
)

func TestGetSqliteDB_InMemoryIsPrivate(t *testing.T) {
	a, err := GetSqliteDB("")
	require.NoError(t, err)
	b, err := GetSqliteDB("")
	require.NoError(t, err)

	require.NoError(t, Migrate(a))

	assert.True(t, a.Migrator().HasTable(&model.Match{}))
	assert.False(t, b.Migrator().HasTable(&model.Match{}), "each in-memory DB is separate")
}

func TestMigrateCreatesAllTables(t *testing.T) {
	db, err := GetSqliteDB("")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range model.DatabaseModels {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := GetSqliteDB("")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Create(&model.Match{MatchID: "dumped"}).Error)

	path := filepath.Join(t.TempDir(), "ringside.db")
	require.NoError(t, DumpMemoryDBToDisk(db, path))
	// a second dump replaces the first
	require.NoError(t, DumpMemoryDBToDisk(db, path))

	disk, err := GetSqliteDB(path)
	require.NoError(t, err)
	var count int64
	require.NoError(t, disk.Model(&model.Match{}).Where("match_id = ?", "dumped").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	db, err := GetSqliteDB("")
	require.NoError(t, err)
	assert.Error(t, DumpMemoryDBToDisk(db, ""))
}

func TestGetBackupDBPaths(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.db", "b.db", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.db"), 0755))

	paths, err := GetBackupDBPaths(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.db"), filepath.Join(dir, "b.db")}, paths)

	_, err = GetBackupDBPaths(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("db.host", "db.internal")
	viper.Set("db.port", "6543")
	viper.Set("db.username", "ringside")
	viper.Set("db.password", "secret")
	viper.Set("db.database", "matches")

	assert.Equal(t,
		"host=db.internal port=6543 user=ringside password=secret dbname=matches sslmode=disable",
		PostgresDSN())
}

func TestManagerSetup(t *testing.T) {
	db, err := GetSqliteDB("")
	require.NoError(t, err)

	m := NewManager(zerolog.Nop())
	m.DB = db
	m.SqlDB, err = db.DB()
	require.NoError(t, err)

	require.NoError(t, m.Setup())
	assert.True(t, db.Migrator().HasTable(&model.RoundResult{}))
	assert.NoError(t, m.Close())
}
