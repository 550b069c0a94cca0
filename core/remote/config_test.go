package remote

import (
	"context"
	"testing"
	"time"

	"fieldsync/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	memDB := database.Config{Driver: database.DriverSQLite, Name: ":memory:"}

	t.Run("empty mode is rejected", func(t *testing.T) {
		backend, closeFn, err := Open(ctx, Config{}, memDB)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "remote.mode is required")
		assert.Nil(t, backend)
		assert.Nil(t, closeFn)
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		_, _, err := Open(ctx, Config{Mode: "carrier-pigeon"}, memDB)
		assert.Error(t, err)
	})

	t.Run("http needs a base url", func(t *testing.T) {
		_, _, err := Open(ctx, Config{Mode: ModeHTTP}, memDB)
		assert.Error(t, err)

		backend, closeFn, err := Open(ctx, Config{Mode: ModeHTTP, BaseURL: "http://backend:8081"}, memDB)
		require.NoError(t, err)
		assert.IsType(t, &HTTPClient{}, backend)
		assert.NoError(t, closeFn())
	})

	t.Run("memory is opt-in", func(t *testing.T) {
		backend, closeFn, err := Open(ctx, Config{Mode: ModeMemory}, memDB)
		require.NoError(t, err)
		assert.IsType(t, &MemoryBackend{}, backend)
		assert.NoError(t, closeFn())
	})

	t.Run("db migrates the backend schema", func(t *testing.T) {
		backend, closeFn, err := Open(ctx, Config{Mode: ModeDB}, memDB)
		require.NoError(t, err)
		t.Cleanup(func() { _ = closeFn() })

		_, err = backend.Get(ctx, CollectionWorkOrders, "W1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestConfig_Timeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, Config{}.Timeout())
	assert.Equal(t, 3*time.Second, Config{TimeoutSeconds: 3}.Timeout())
}
