package database_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantnet/plantnet/pkg/database"
)

func TestOpenSQLite(t *testing.T) {
	db, err := database.OpenSQL("sqlite", "file::memory:?cache=shared")
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestOpenSQLUnsupported(t *testing.T) {
	_, err := database.OpenSQL("oracle", "")
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestConnectMongo(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	m, err := database.ConnectMongo(context.Background(), uri, "plantnet_test")
	require.NoError(t, err)
	defer m.Close(context.Background())

	assert.NoError(t, m.Ping(context.Background()))
	assert.Equal(t, "plantnet_test", m.DB.Name())
}
