package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresClient_OpenRequiresConnectionString(t *testing.T) {
	client := NewPostgresClient("")
	err := client.Open(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection string is required")
	assert.False(t, client.IsOpen())
}

func TestPostgresClient_OpenRejectsInvalidConnectionString(t *testing.T) {
	client := NewPostgresClient("postgres://user@localhost:notaport/db")
	err := client.Open(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid connection string")
	assert.False(t, client.IsOpen())
}

func TestPostgresClient_OwnedLifecycle(t *testing.T) {
	conn, mock, err := sqlmock.NewWithDSN("postgres_client_lifecycle")
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	mock.ExpectClose()

	client := &PostgresClient{connString: "postgres_client_lifecycle", driverName: "sqlmock"}
	require.NoError(t, client.Open(context.Background()))
	assert.True(t, client.IsOpen())
	assert.NotNil(t, client.GetConnection())

	require.NoError(t, client.Close())
	assert.False(t, client.IsOpen())
	assert.Nil(t, client.GetConnection())
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.NoError(t, client.Close(), "closing twice is a no-op")
}

func TestPostgresClient_BorrowedConnectionIsNotClosed(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	client := NewPostgresClientFromDB(conn)
	assert.True(t, client.IsOpen())
	require.NoError(t, client.Open(context.Background()))
	require.NoError(t, client.Close())

	assert.True(t, client.IsOpen())
	assert.Same(t, conn, client.GetConnection())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCapabilitiesFor(t *testing.T) {
	old := CapabilitiesFor(90624)
	assert.Equal(t, 90624, old.ServerVersion)
	assert.False(t, old.IdentityColumns)
	assert.False(t, old.CoveringIndexes)
	assert.False(t, old.GeneratedColumns)
	assert.False(t, old.DeclarativePartitioning)
	assert.False(t, old.ExactDescendingMinimum)

	v11 := CapabilitiesFor(110005)
	assert.True(t, v11.IdentityColumns)
	assert.True(t, v11.CoveringIndexes)
	assert.False(t, v11.GeneratedColumns)

	current := CapabilitiesFor(170000)
	assert.True(t, current.GeneratedColumns)
	assert.True(t, current.ExactDescendingMinimum)
}

func TestDefaultsForSequence(t *testing.T) {
	current := CapabilitiesFor(150000)
	old := CapabilitiesFor(90600)

	d, ok := defaultsForSequence("int4", 1, current)
	require.True(t, ok)
	assert.Equal(t, sequenceDefaults{start: 1, min: 1, max: 2147483647}, d)

	d, ok = defaultsForSequence("smallint", -2, current)
	require.True(t, ok)
	assert.Equal(t, sequenceDefaults{start: -1, min: -32768, max: -1}, d)

	d, ok = defaultsForSequence("smallint", -2, old)
	require.True(t, ok)
	assert.Equal(t, int64(-32767), d.min)

	_, ok = defaultsForSequence("numeric", 1, current)
	assert.False(t, ok)
}
