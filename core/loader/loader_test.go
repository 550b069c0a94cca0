package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeature struct {
	name    string
	enabled bool
	err     error
	loads   int
}

func (f *fakeFeature) Name() string    { return f.name }
func (f *fakeFeature) IsEnabled() bool { return f.enabled }
func (f *fakeFeature) Load(fiber.Router) error {
	f.loads++
	return f.err
}

func TestManager_LoadAll(t *testing.T) {
	on := &fakeFeature{name: "offline", enabled: true}
	off := &fakeFeature{name: "backend", enabled: false}

	mgr := NewManager()
	mgr.Register(on)
	mgr.Register(off)
	mgr.Register(nil)
	assert.Len(t, mgr.Features(), 2)

	loaded, err := mgr.LoadAll(fiber.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"offline"}, loaded)
	assert.Equal(t, 1, on.loads)
	assert.Equal(t, 0, off.loads)
}

func TestManager_LoadAllStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	mgr := NewManager()
	mgr.Register(&fakeFeature{name: "broken", enabled: true, err: boom})
	after := &fakeFeature{name: "after", enabled: true}
	mgr.Register(after)

	_, err := mgr.LoadAll(fiber.New())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, 0, after.loads)
}
