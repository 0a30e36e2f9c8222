package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/casetrack/casetrack/internal/config"
	"github.com/casetrack/casetrack/internal/domain/admin"
	"github.com/casetrack/casetrack/internal/domain/batch"
	"github.com/casetrack/casetrack/internal/domain/doctor"
	"github.com/casetrack/casetrack/internal/domain/identity"
	"github.com/casetrack/casetrack/internal/domain/opening"
	"github.com/casetrack/casetrack/internal/domain/patient"
	"github.com/casetrack/casetrack/internal/domain/returns"
	"github.com/casetrack/casetrack/internal/domain/tracking"
	"github.com/casetrack/casetrack/internal/platform/auth"
	"github.com/casetrack/casetrack/internal/platform/db"
	"github.com/casetrack/casetrack/internal/platform/middleware"
	"github.com/casetrack/casetrack/internal/platform/session"
)

func main() {
	root := &cobra.Command{
		Use:   "casetrack-server",
		Short: "Hospital case-note request tracking service",
	}

	root.AddCommand(serveCmd(), migrateCmd(), userCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, pool, err := connect(cmd.Context())
				if err != nil {
					return err
				}
				defer pool.Close()

				count, err := db.NewMigrator(pool, cfg.MigrationsDir).Up(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("applied %d migration(s)\n", count)
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, pool, err := connect(cmd.Context())
				if err != nil {
					return err
				}
				defer pool.Close()

				statuses, err := db.NewMigrator(pool, cfg.MigrationsDir).Status(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied " + s.AppliedAt.Format(time.RFC3339)
					}
					fmt.Printf("%03d %-40s %s\n", s.Version, s.Name, state)
				}
				return nil
			},
		},
	)
	return migrate
}

func userCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}

	var username, password, displayName, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, pool, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLHours)*time.Hour)
			svc := identity.NewService(identity.NewUserRepo(pool), issuer, nil)

			u, err := svc.CreateUser(cmd.Context(), username, password, displayName, role)
			if err != nil {
				return err
			}
			fmt.Printf("created user %s (%s) with role %s\n", u.Username, u.ID, u.Role)
			return nil
		},
	}
	create.Flags().StringVar(&username, "username", "", "login username")
	create.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	create.Flags().StringVar(&displayName, "display-name", "", "display name (defaults to username)")
	create.Flags().StringVar(&role, "role", auth.RoleMRStaff, "role: admin, mr_staff, or ca")
	create.MarkFlagRequired("username")
	create.MarkFlagRequired("password")

	user.AddCommand(create)
	return user
}

func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info().Msg("database connected")

	// Redis is optional: without it, login error persistence is disabled.
	var errStore *session.ErrorStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		defer rdb.Close()
		errStore = session.NewErrorStore(rdb, session.DefaultErrorTTL)
		logger.Info().Msg("redis connected, login error store enabled")
	} else {
		logger.Warn().Msg("REDIS_URL not set, login error store disabled")
	}

	inTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.RunInTx(ctx, pool, fn)
	}

	// Services
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLHours)*time.Hour)
	identitySvc := identity.NewService(identity.NewUserRepo(pool), issuer, errStore)
	patientSvc := patient.NewService(patient.NewRepo(pool))
	adminSvc := admin.NewService(admin.NewDepartmentRepo(pool), admin.NewLocationRepo(pool))
	doctorRepo := doctor.NewRepo(pool)
	doctorSvc := doctor.NewService(doctorRepo, doctorRepo)
	trackingSvc := tracking.NewService(tracking.NewRepo(pool))
	batchRepo := batch.NewRepo(pool)
	batchSvc := batch.NewService(batchRepo, batchRepo, trackingSvc, inTx)
	returnsSvc := returns.NewService(returns.NewRepo(pool), trackingSvc, inTx)
	openingRepo := opening.NewRepo(pool)
	openingSvc := opening.NewService(openingRepo, openingRepo, trackingSvc, inTx)

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/health", db.HealthHandler(pool))

	identityHandler := identity.NewHandler(identitySvc)
	public := e.Group("/api/v1")
	identityHandler.RegisterRoutes(public)

	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware([]byte(cfg.JWTSecret)))
	} else {
		apiV1.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}

	identityHandler.RegisterAdminRoutes(apiV1)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	admin.NewHandler(adminSvc).RegisterRoutes(apiV1)
	doctor.NewHandler(doctorSvc).RegisterRoutes(apiV1)
	batch.NewHandler(batchSvc).RegisterRoutes(apiV1)
	returns.NewHandler(returnsSvc).RegisterRoutes(apiV1)
	opening.NewHandler(openingSvc).RegisterRoutes(apiV1)
	tracking.NewHandler(trackingSvc).RegisterRoutes(apiV1)

	// Serve with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
