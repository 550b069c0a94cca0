// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which names it, reports
// whether it is enabled and registers its routes.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps the registered features and mounts the enabled ones with
// LoadAll. The start command registers the offline queue API and the records
// API this way, and the server role decides which of them are enabled.
package loader
