package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectorFor(t *testing.T) {
	assert.Equal(t, "postgres", dialectorFor("postgres://user:pw@localhost/db").Name())
	assert.Equal(t, "postgres", dialectorFor("postgresql://localhost/db").Name())
	assert.Equal(t, "sqlite", dialectorFor("file:scoreboard.db").Name())
	assert.Equal(t, "sqlite", dialectorFor(":memory:").Name())
}

func TestNewConnectionSQLiteMemory(t *testing.T) {
	db, err := NewConnection(":memory:", false)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Exec("CREATE TABLE probe (id INTEGER PRIMARY KEY)").Error)
	require.NoError(t, db.Exec("INSERT INTO probe (id) VALUES (1)").Error)

	var count int64
	require.NoError(t, db.Table("probe").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
