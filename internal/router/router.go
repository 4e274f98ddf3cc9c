package router

import (
	"context"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/culta-app/backend/internal/catalog"
	"github.com/culta-app/backend/internal/handlers"
	"github.com/culta-app/backend/internal/middleware"
	"github.com/culta-app/backend/internal/models"
	"github.com/culta-app/backend/internal/repositories"
	"github.com/culta-app/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.Logger())
}

// SetupRoutes configures all application routes and injects dependencies.
// firebaseAuthClient may be nil when Firebase login is not configured.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client, cfg *config.Config, logger *zap.Logger) error {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
	); err != nil {
		return err
	}
	logger.Info("PostgreSQL auto-migrations completed")

	mongoDB := mgClient.Database(cfg.MongoDBName)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repositories.EnsureIndexes(ctx, mongoDB); err != nil {
		return err
	}
	logger.Info("MongoDB indexes ensured")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	contentRepo := repositories.NewMongoContentRepository(mongoDB)
	reviewRepo := repositories.NewMongoReviewRepository(mongoDB)
	activityRepo := repositories.NewMongoActivityRepository(mongoDB)
	interactionRepo := repositories.NewMongoInteractionRepository(mongoDB)
	libraryRepo := repositories.NewMongoLibraryRepository(mongoDB)
	listRepo := repositories.NewMongoListRepository(mongoDB)

	// --- External catalog sources ---
	movieSource := catalog.NewTMDBSource(cfg.TMDBAPIKey)
	bookSource := catalog.NewGoogleBooksSource()

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret)
	userHandler := handlers.NewUserHandler(userRepo, followRepo)
	contentHandler := handlers.NewContentHandler(contentRepo, movieSource, bookSource, logger)
	reviewHandler := handlers.NewReviewHandler(reviewRepo, activityRepo, contentRepo, userRepo, logger)
	libraryHandler := handlers.NewLibraryHandler(libraryRepo, activityRepo, contentRepo)
	listHandler := handlers.NewListHandler(listRepo, contentRepo)
	interactionHandler := handlers.NewInteractionHandler(interactionRepo, activityRepo, userRepo, logger)
	feedHandler := handlers.NewFeedHandler(activityRepo, contentRepo, userRepo, followRepo)

	// --- Unprotected routes ---
	authGroup := e.Group("/api/v1/auth")
	authHandler.RegisterAuthRoutes(authGroup)

	public := e.Group("/api/v1")
	userHandler.RegisterPublicUserRoutes(public)
	contentHandler.RegisterContentRoutes(public)
	reviewHandler.RegisterPublicReviewRoutes(public)
	libraryHandler.RegisterPublicLibraryRoutes(public)
	interactionHandler.RegisterPublicInteractionRoutes(public)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	userHandler.RegisterUserRoutes(api)
	contentHandler.RegisterProtectedContentRoutes(api)
	reviewHandler.RegisterReviewRoutes(api)
	libraryHandler.RegisterLibraryRoutes(api)
	listHandler.RegisterListRoutes(api)
	interactionHandler.RegisterInteractionRoutes(api)
	feedHandler.RegisterFeedRoutes(api)

	logger.Info("All routes configured")
	return nil
}
