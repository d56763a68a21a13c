package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cigali/cigali/internal/config"
	"github.com/cigali/cigali/internal/domain/account"
	"github.com/cigali/cigali/internal/domain/appointment"
	"github.com/cigali/cigali/internal/domain/billing"
	"github.com/cigali/cigali/internal/domain/medication"
	"github.com/cigali/cigali/internal/domain/patient"
	"github.com/cigali/cigali/internal/domain/staff"
	"github.com/cigali/cigali/internal/platform/auth"
	"github.com/cigali/cigali/internal/platform/db"
	"github.com/cigali/cigali/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cigali-server",
		Short: "Clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Store connector. A failed connect is not fatal: the server comes up
	// degraded and the connector keeps retrying in the background.
	connector := db.NewConnector(db.ConnectorConfig{
		PrimaryURL:     cfg.DatabaseURL,
		FallbackURL:    cfg.FallbackDatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		MinConns:       cfg.DBMinConns,
		ConnectTimeout: cfg.DBConnectTimeout,
	}, logger)
	defer connector.Close()

	ctx := context.Background()
	if connector.Connect(ctx) {
		logger.Info().Str("endpoint", connector.State().ActiveEndpoint).Msg("connected to store")
	} else {
		logger.Warn().Msg("store unreachable at startup, running degraded")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth guard
	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTExpiresIn)
	userRepo := account.NewUserRepoPG(connector)
	guard := auth.NewGuard(codec, account.NewGuardStore(userRepo), connector, logger)

	// Health check
	e.GET("/health", db.HealthHandler(connector))

	// API group; login, register and public profiles bypass the guard
	apiV1 := e.Group("/api/v1")
	apiV1.Use(auth.Middleware(guard, auth.Skipper))

	// Domain handlers
	providerRepo := account.NewProviderRepoPG(connector)
	accountSvc := account.NewService(providerRepo, userRepo, codec, connector, cfg.BcryptCost, cfg.DemoLoginEnabled)
	account.NewHandler(accountSvc, guard).RegisterRoutes(apiV1)

	patientSvc := patient.NewService(patient.NewRepoPG(connector))
	patient.NewHandler(patientSvc, guard).RegisterRoutes(apiV1)

	apptSvc := appointment.NewService(appointment.NewRepoPG(connector))
	appointment.NewHandler(apptSvc, guard).RegisterRoutes(apiV1)

	medSvc := medication.NewService(
		medication.NewMedicationRepoPG(connector),
		medication.NewInventoryRepoPG(connector),
	)
	medication.NewHandler(medSvc, guard).RegisterRoutes(apiV1)

	billingSvc := billing.NewService(billing.NewRepoPG(connector))
	billing.NewHandler(billingSvc, guard).RegisterRoutes(apiV1)

	staffSvc := staff.NewService(staff.NewRepoPG(connector))
	staff.NewHandler(staffSvc, guard).RegisterRoutes(apiV1)

	// Bind, probing upward when the configured port is taken
	ln, port, err := listenWithRetry(cfg.Host, cfg.Port, cfg.PortProbeAttempts)
	if err != nil {
		logger.Fatal().Err(err).Msg("no available port")
	}
	if port != cfg.Port {
		logger.Warn().Int("configured", cfg.Port).Int("actual", port).Msg("configured port taken, using next free port")
	}
	e.Listener = ln

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	logger.Info().Int("port", port).Str("env", cfg.Env).Msg("server listening")
	if err := e.Start(""); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
