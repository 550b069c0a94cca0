package offline

import (
	"fieldsync/core/queue"
	"fieldsync/core/syncengine"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	enabled bool
}

// NewFeature creates the offline queue feature.
func NewFeature(mgr *queue.Manager, dispatcher *syncengine.Dispatcher, resolver *syncengine.Resolver, network Reachability, logger *zap.Logger, enabled bool) *Feature {
	svc := NewService(mgr, dispatcher, resolver, network, logger)
	return &Feature{service: svc, handler: NewHandler(svc), enabled: enabled}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "offline"
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

// Service exposes the feature's service to commands that share it.
func (f *Feature) Service() *Service {
	return f.service
}
