package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// Role selects which features the server exposes (engine, backend, all).
	Role string `mapstructure:"role" default:"engine"`
}

const (
	// RoleEngine serves the offline queue API on a technician device.
	RoleEngine = "engine"
	// RoleBackend serves the remote records API the engine syncs against.
	RoleBackend = "backend"
	// RoleAll serves both, useful for demos and local development.
	RoleAll = "all"
)

// IsValidRole checks if the configured role is valid.
func (c Config) IsValidRole() bool {
	switch c.Role {
	case RoleEngine, RoleBackend, RoleAll:
		return true
	default:
		return false
	}
}

// ServesEngine reports whether the queue API should be mounted.
func (c Config) ServesEngine() bool {
	return c.Role == RoleEngine || c.Role == RoleAll
}

// ServesBackend reports whether the records API should be mounted.
func (c Config) ServesBackend() bool {
	return c.Role == RoleBackend || c.Role == RoleAll
}
