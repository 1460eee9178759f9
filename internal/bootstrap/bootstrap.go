package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yeegr/singular/internal/app/controllers"
	appMigrations "github.com/yeegr/singular/internal/app/migrations"
	appRepos "github.com/yeegr/singular/internal/app/repositories"
	appRoutes "github.com/yeegr/singular/internal/app/routes"
	appServices "github.com/yeegr/singular/internal/app/services"
	"github.com/yeegr/singular/internal/config"
	"github.com/yeegr/singular/internal/db"
	appMiddleware "github.com/yeegr/singular/internal/middleware"
	pkgAuth "github.com/yeegr/singular/internal/pkg/auth"
	"github.com/yeegr/singular/internal/pkg/logger"
	"github.com/yeegr/singular/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	LedgerService      *appServices.LedgerService
	CounterService     *appServices.CounterService
	CommentService     *appServices.CommentService
	GroupService       *appServices.GroupService
	WorkflowService    *appServices.WorkflowService
	ContentService     *appServices.ContentService
	ConsumerService    *appServices.ConsumerService
	ActionController   *appControllers.ActionController
	CommentController  *appControllers.CommentController
	ContentController  *appControllers.ContentController
	GroupController    *appControllers.GroupController
	ProcessController  *appControllers.ProcessController
	ConsumerController *appControllers.ConsumerController
	AuthMiddleware     *appMiddleware.AuthMiddleware
	Repos              *appRepos.Repositories
	JWTService         *pkgAuth.JWTService
	Logger             zerolog.Logger
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenIssuer: cfg.JWT.Issuer,
	})

	deps.CounterService = appServices.NewCounterService(
		deps.Repos.TargetRegistry,
		deps.Repos.ConsumerRepository,
		lgr,
	)
	deps.LedgerService = appServices.NewLedgerService(
		deps.Repos.ActionRepository,
		deps.Repos.TargetRegistry,
		deps.CounterService,
		deps.Repos.AuditRepository,
		lgr,
	)
	deps.CommentService = appServices.NewCommentService(
		deps.Repos.CommentRepository,
		deps.Repos.TargetRegistry,
		deps.CounterService,
		deps.CounterService,
		lgr,
	)
	deps.GroupService = appServices.NewGroupService(deps.Repos.GroupRepository, lgr)
	deps.WorkflowService = appServices.NewWorkflowService(
		deps.Repos.ProcessRepository,
		deps.Repos.ActivityRepository,
		deps.Repos.TargetRegistry,
		lgr,
	)
	deps.ContentService = appServices.NewContentService(
		deps.Repos.ContentRepository,
		deps.WorkflowService,
		deps.CounterService,
		lgr,
	)
	deps.ConsumerService = appServices.NewConsumerService(deps.Repos.ConsumerRepository, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.ActionController = appControllers.NewActionController(deps.LedgerService)
	deps.CommentController = appControllers.NewCommentController(deps.CommentService)
	deps.ContentController = appControllers.NewContentController(deps.ContentService)
	deps.GroupController = appControllers.NewGroupController(deps.GroupService)
	deps.ProcessController = appControllers.NewProcessController(deps.WorkflowService)
	deps.ConsumerController = appControllers.NewConsumerController(deps.ConsumerService)

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

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router,
		deps.ActionController,
		deps.CommentController,
		deps.ContentController,
		deps.GroupController,
		deps.ProcessController,
		deps.ConsumerController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
