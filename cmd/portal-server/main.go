package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carebridge/portal/internal/config"
	"github.com/carebridge/portal/internal/domain/admin"
	"github.com/carebridge/portal/internal/domain/appointments"
	"github.com/carebridge/portal/internal/domain/billing"
	"github.com/carebridge/portal/internal/domain/directory"
	"github.com/carebridge/portal/internal/domain/medical"
	"github.com/carebridge/portal/internal/platform/auth"
	"github.com/carebridge/portal/internal/platform/db"
	"github.com/carebridge/portal/internal/platform/envelope"
	"github.com/carebridge/portal/internal/platform/kvstore"
	"github.com/carebridge/portal/internal/platform/middleware"
	"github.com/carebridge/portal/internal/platform/session"
	"github.com/carebridge/portal/internal/platform/upstream"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portal-server",
		Short: "CareBridge patient portal API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal API server",
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
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
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
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
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
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := runSeed(ctx, pool); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Println("Demo data loaded.")
			return nil
		},
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	store := kvstore.NewPGStore(pool)
	sessions := session.NewManager(store)

	var clinicalAPI *upstream.Client
	if cfg.UpstreamBaseURL != "" {
		clinicalAPI = upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, logger)
		logger.Info().Str("base_url", cfg.UpstreamBaseURL).Msg("clinical API configured")
	} else {
		logger.Warn().Msg("UPSTREAM_BASE_URL not set; medical history serves sample data")
	}

	// Services
	apptSvc := appointments.NewService(appointments.NewRepoPG(pool))
	dirSvc := directory.NewService(directory.NewRepoPG(pool))
	billSvc := billing.NewService(billing.NewRepoPG(pool))
	adminSvc := admin.NewService(admin.NewUserRepoPG(pool), admin.NewAuditRepoPG(pool))
	medSvc := medical.NewService(clinicalAPI, store, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// Health and metrics
	e.GET("/healthz", db.HealthHandler(pool))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public auth endpoints
	adminHandler := admin.NewHandler(adminSvc, issuer, sessions)
	adminHandler.RegisterPublicRoutes(e.Group(""))

	// Authenticated API
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	api := e.Group("/api")
	api.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(middleware.RequestTimeout(30 * time.Second))
	api.Use(auth.JWTMiddleware(issuer))
	api.Use(middleware.Audit(logger, adminSvc.Recorder()))

	adminHandler.RegisterRoutes(api)
	appointments.NewHandler(apptSvc).RegisterRoutes(api)
	directory.NewHandler(dirSvc).RegisterRoutes(api)
	billing.NewHandler(billSvc).RegisterRoutes(api)
	medical.NewHandler(medSvc).RegisterRoutes(api)

	// Role home pages. Cross-role navigation redirects to the caller's
	// own home; unauthenticated browsers land on /login.
	e.GET("/login", func(c echo.Context) error {
		return c.JSON(http.StatusOK, envelope.OKWithMessage(nil, "please sign in"))
	})
	for _, role := range []string{auth.RoleAdmin, auth.RoleDoctor, auth.RolePatient} {
		role := role
		page := e.Group(auth.HomePath(role), auth.RoleGuard(issuer, role))
		page.GET("", func(c echo.Context) error {
			return c.JSON(http.StatusOK, envelope.OK(map[string]string{
				"role": role,
				"name": auth.UserNameFromContext(c.Request().Context()),
			}))
		})
	}

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting portal server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
