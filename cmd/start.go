package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fieldsync/core/config"
	"fieldsync/core/loader"
	"fieldsync/core/logger"
	"fieldsync/core/middleware/auth"
	"fieldsync/core/middleware/rayid"
	"fieldsync/core/remote"

	"fieldsync/feature/backend"
	"fieldsync/feature/offline"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "fieldsync/docs/swagger"
)

var startOffline bool

// @title Field Sync API
// @version 1.0
// @description Offline mutation queue and sync engine for field technicians.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the field sync server",
	Long: `Starts the HTTP server. The engine role serves the offline queue API,
the backend role serves the records API engines sync against, and all serves both.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		if !cfg.Server.IsValidRole() {
			log.Fatalf("Invalid server role %q", cfg.Server.Role)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)
		logg = logg.With(zap.String("role", cfg.Server.Role))

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 4. Initialize Feature Loader
		mgr := loader.NewManager()

		if cfg.Server.ServesEngine() {
			eng, err := openEngine(ctx, cfg, logg, !startOffline)
			if err != nil {
				logg.Fatal("Failed to start sync engine", zap.Error(err))
			}
			defer eng.Close()
			mgr.Register(offline.NewFeature(eng.queue, eng.dispatcher, eng.resolver, eng.network, logg.Named("offline"), true))
		}

		if cfg.Server.ServesBackend() {
			records, closeRecords, err := openRecords(ctx, cfg)
			if err != nil {
				logg.Fatal("Failed to open records database", zap.Error(err))
			}
			defer closeRecords()
			mgr.Register(backend.NewFeature(records, logg.Named("backend"), true))
		}

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Auth
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Skip: []string{"/swagger"}}))

		// 5. Load Features
		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

// openRecords opens the database behind the records API.
func openRecords(ctx context.Context, cfg *config.Config) (remote.Backend, func() error, error) {
	return remote.Open(ctx, remote.Config{Mode: remote.ModeDB}, cfg.Backend)
}

func init() {
	startCmd.Flags().BoolVar(&startOffline, "offline", false, "Start with the network flag off; PUT /queue/network to go online")
	RootCmd.AddCommand(startCmd)
}
