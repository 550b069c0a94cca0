package backend

import (
	"fieldsync/core/remote"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
	enabled bool
}

// NewFeature creates the records feature.
func NewFeature(store remote.Backend, logger *zap.Logger, enabled bool) *Feature {
	return &Feature{handler: NewHandler(NewService(store, logger)), enabled: enabled}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "backend"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
