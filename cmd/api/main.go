package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cmozaiq-saas/mvp-booster/internal/cache"
	"github.com/cmozaiq-saas/mvp-booster/internal/config"
	"github.com/cmozaiq-saas/mvp-booster/internal/database"
	"github.com/cmozaiq-saas/mvp-booster/internal/handler"
	"github.com/cmozaiq-saas/mvp-booster/internal/middleware"
	"github.com/cmozaiq-saas/mvp-booster/internal/repository"
	"github.com/cmozaiq-saas/mvp-booster/internal/service"
	"github.com/cmozaiq-saas/mvp-booster/internal/session"
	"github.com/cmozaiq-saas/mvp-booster/internal/worker"
	"github.com/cmozaiq-saas/mvp-booster/web"
)

// main is the application entrypoint for the admin panel server.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting admin panel")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 4. Initialize repositories and stores
	adminRepo := repository.NewAdminUserRepository(db)
	sessionStore := session.NewRedisStore(redisClient.Client())

	// 5. Initialize services
	adminAuthSvc := service.NewAdminAuthService(adminRepo, sessionStore, cfg.Session.TTL)
	adminUserSvc := service.NewAdminUserService(adminRepo, sessionStore)

	// 6. Initialize handlers
	handlers := &Handlers{
		Health:        handler.NewHealthHandler(db, redisClient),
		Auth:          handler.NewAuthHandler(adminAuthSvc, cfg.Session),
		Home:          handler.NewHomeHandler(),
		Users:         handler.NewAdminUserHandler(adminUserSvc),
		PasswordReset: handler.NewPasswordResetHandler(adminAuthSvc),
	}

	// 7. Initialize middleware
	sessionMw := middleware.NewSessionMiddleware(adminAuthSvc, cfg.Session.CookieName)

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.SetHTMLTemplate(web.Templates())
	setupRoutes(router, handlers, sessionMw)

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start workers
	go worker.NewSessionReaper(sessionStore, cfg.Worker.SessionReapInterval).Start(ctx)

	// 11. Start HTTP server. The method-override wrapper lets HTML forms
	// express PATCH and DELETE.
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middleware.MethodOverride(router),
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	Home          *handler.HomeHandler
	Users         *handler.AdminUserHandler
	PasswordReset *handler.PasswordResetHandler
}

// setupRoutes registers all routes. Everything under /admin except the
// sign-in endpoints sits behind the session gate.
func setupRoutes(router *gin.Engine, handlers *Handlers, sessionMw *middleware.SessionMiddleware) {
	router.GET("/healthz", handlers.Health.GetHealth)

	admin := router.Group("/admin")
	admin.GET("/sign_in", handlers.Auth.ShowSignIn)
	admin.POST("/sign_in", handlers.Auth.SignIn)
	admin.DELETE("/sign_out", handlers.Auth.SignOut)

	protected := admin.Group("")
	protected.Use(sessionMw.Handle())
	{
		protected.GET("/", handlers.Home.Home)

		// Admin user management
		protected.GET("/users", handlers.Users.Index)
		protected.GET("/users/new", handlers.Users.New)
		protected.POST("/users", handlers.Users.Create)
		protected.GET("/users/:id", handlers.Users.Show)
		protected.GET("/users/:id/edit", handlers.Users.Edit)
		protected.PATCH("/users/:id", handlers.Users.Update)
		protected.DELETE("/users/:id", handlers.Users.Delete)

		// Password reset (singleton, scoped to the signed-in principal)
		protected.GET("/password_reset", handlers.PasswordReset.Show)
		protected.POST("/password_reset", handlers.PasswordReset.Update)
		protected.PATCH("/password_reset", handlers.PasswordReset.Update)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
