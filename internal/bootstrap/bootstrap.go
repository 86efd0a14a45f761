// Package bootstrap wires configuration, storage and the dependency graph
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/elihudev/elihudroom/docs" // Import generated swagger docs
	appAuth "github.com/elihudev/elihudroom/internal/app/auth"
	appControllers "github.com/elihudev/elihudroom/internal/app/controllers"
	appMigrations "github.com/elihudev/elihudroom/internal/app/migrations"
	appRepos "github.com/elihudev/elihudroom/internal/app/repositories"
	appRoutes "github.com/elihudev/elihudroom/internal/app/routes"
	appServices "github.com/elihudev/elihudroom/internal/app/services"
	"github.com/elihudev/elihudroom/internal/config"
	"github.com/elihudev/elihudroom/internal/db"
	appMiddleware "github.com/elihudev/elihudroom/internal/middleware"
	pkgAuth "github.com/elihudev/elihudroom/internal/pkg/auth"
	"github.com/elihudev/elihudroom/internal/pkg/feed"
	"github.com/elihudev/elihudroom/internal/pkg/helpers"
	"github.com/elihudev/elihudroom/internal/pkg/logger"
	pkgWebsocket "github.com/elihudev/elihudroom/internal/pkg/websocket"
	"github.com/elihudev/elihudroom/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService       appServices.AuthService
	ClassService      appServices.ClassService
	EnrollmentService appServices.EnrollmentService
	PostService       appServices.PostService
	AuthController    *appControllers.AuthController
	ClassController   *appControllers.ClassController
	PostController    *appControllers.PostController
	FeedHandler       *pkgWebsocket.Handler
	AuthMiddleware    *appMiddleware.AuthMiddleware
	Repos             *appRepos.Repositories
	JWTService        *pkgAuth.JWTService
	AuthzService      *appAuth.AuthorizationService
	FeedHub           *feed.Hub
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	// Demo data is opt-in
	if config.GetEnvAsBool("SEED_DB", false) {
		if err := seed.CreateDemoData(ctx, dbPool, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create demo data, proceeding anyway...")
		}
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.ClassRepository,
		deps.Repos.EnrollmentRepository,
	)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.FeedHub = feed.NewHub(lgr)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
	)
	deps.ClassService = appServices.NewClassService(
		deps.Repos.ClassRepository,
		deps.Repos.EnrollmentRepository,
		deps.AuthzService,
		deps.FeedHub,
	)
	deps.EnrollmentService = appServices.NewEnrollmentService(
		deps.Repos.ClassRepository,
		deps.Repos.EnrollmentRepository,
	)
	deps.PostService = appServices.NewPostService(
		deps.Repos.PostRepository,
		deps.AuthzService,
		deps.FeedHub,
	)

	// Consumed refresh tokens are deleted on rotation; expired ones linger
	// until a restart sweeps them out.
	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if purged, err := deps.Repos.TokenRepository.DeleteExpiredTokens(startupCtx); err != nil {
		lgr.Warn().Err(err).Msg("Failed to purge expired refresh tokens")
	} else if purged > 0 {
		lgr.Info().Int64("purged", purged).Msg("Expired refresh tokens purged")
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.ClassController = appControllers.NewClassController(deps.ClassService, deps.EnrollmentService, lgr)
	deps.PostController = appControllers.NewPostController(deps.PostService, lgr)
	deps.FeedHandler = pkgWebsocket.NewHandler(deps.PostService, deps.AuthzService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()
	router.Use(appMiddleware.BodyLimitMiddleware())

	// Setup Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json"), ginSwagger.DefaultModelsExpandDepth(1)))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.ClassController,
		deps.PostController,
		deps.FeedHandler,
		deps.AuthMiddleware,
	)

	return router
}
