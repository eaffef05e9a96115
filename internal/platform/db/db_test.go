package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_InMemory(t *testing.T) {
	db, err := OpenSQLite(t.Context(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var one int
	require.NoError(t, db.QueryRowContext(t.Context(), "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestOpenPool_RejectsMalformedURL(t *testing.T) {
	_, err := OpenPool(t.Context(), "postgres://%zz")
	assert.Error(t, err)
}
