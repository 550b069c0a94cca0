package backend

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fieldsync/core/database"
	"fieldsync/core/remote"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store, err := remote.NewDBBackend(db, nil)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	f := NewFeature(store, zap.NewNop(), true)
	assert.Equal(t, "backend", f.Name())
	assert.True(t, f.IsEnabled())

	app := fiber.New()
	require.NoError(t, f.Load(app))
	return app
}

func request(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestRecordsAPI(t *testing.T) {
	app := setupTestApp(t)

	code, _ := request(t, app, "GET", "/records/work_orders/W1", "")
	assert.Equal(t, fiber.StatusNotFound, code)

	code, body := request(t, app, "PATCH", "/records/work_orders/W1", `{"status":"open","priority":"high"}`)
	require.Equal(t, fiber.StatusOK, code, string(body))

	code, body = request(t, app, "PATCH", "/records/work_orders/W1", `{"status":"completed"}`)
	require.Equal(t, fiber.StatusOK, code, string(body))
	var rec remote.Record
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.Equal(t, "completed", rec.Fields["status"])
	assert.Equal(t, "high", rec.Fields["priority"])
	assert.WithinDuration(t, time.Now(), rec.UpdatedAt, time.Minute)

	code, _ = request(t, app, "PATCH", "/records/work_orders/W1", `{"colour":"red"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, body = request(t, app, "POST", "/records/hazard_reports", `{"description":"gas smell","reported_by":"tech-7"}`)
	require.Equal(t, fiber.StatusCreated, code, string(body))
	require.NoError(t, json.Unmarshal(body, &rec))
	assert.NotEmpty(t, rec.ID)

	code, _ = request(t, app, "POST", "/records/invoices", `{}`)
	assert.Equal(t, fiber.StatusNotFound, code)
}

// The engine's HTTP client and this API agree on the wire format.
func TestHTTPClientAgainstRecordsAPI(t *testing.T) {
	app := setupTestApp(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	client := remote.NewHTTPClient("http://"+ln.Addr().String(), "", 2*time.Second)
	ctx := context.Background()

	_, err = client.Get(ctx, remote.CollectionWorkOrders, "W9")
	assert.ErrorIs(t, err, remote.ErrNotFound)

	rec, err := client.Patch(ctx, remote.CollectionWorkOrders, "W9", map[string]any{"status": "completed"})
	require.NoError(t, err)
	assert.Equal(t, "W9", rec.ID)

	got, err := client.Get(ctx, remote.CollectionWorkOrders, "W9")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Fields["status"])
	assert.True(t, got.UpdatedAt.Equal(rec.UpdatedAt))

	_, err = client.Insert(ctx, remote.CollectionInspections, map[string]any{"bogus": 1})
	assert.ErrorIs(t, err, remote.ErrValidation)
}
