package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"library-backend/internal/config"
	infraCache "library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/database"
	"library-backend/pkg/cache"
	"library-backend/pkg/jwt"

	catalogHandler "library-backend/internal/domains/catalog/handler"
	catalogRepo "library-backend/internal/domains/catalog/repository"
	catalogService "library-backend/internal/domains/catalog/service"
	"library-backend/internal/domains/notification"
	notificationHandler "library-backend/internal/domains/notification/handler"
	"library-backend/internal/domains/user"
	userHandler "library-backend/internal/domains/user/handler"
	userRepo "library-backend/internal/domains/user/repository"
	userService "library-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every application dependency. It is the root of the
// dependency graph; everything in it is a singleton for the app lifetime.
type Container struct {
	// Infrastructure
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Hub        *notification.Hub

	// Repositories
	CatalogRepo catalogRepo.RepositoryInterface
	UserRepo    user.Repository

	// Services
	CatalogService catalogService.ServiceInterface
	UserService    user.Service

	// Handlers
	CatalogHandler *catalogHandler.CatalogHandler
	UserHandler    *userHandler.UserHandler
	EventsHandler  *notificationHandler.EventsHandler
}

// NewContainer builds the full dependency graph in order:
// config -> infrastructure -> repositories -> services -> handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err := redisCache.Connect(context.Background()); err != nil {
		// Redis failure is non-critical: list snapshots fall back to the DB
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// ========================================
	// STEP 4: NOTIFICATION HUB
	// ========================================
	// Shared between the catalog service (publisher) and the SSE handler
	c.Hub = notification.NewHub(cfg.Hub.SubscriberBuffer)
	log.Println("✅ Notification hub ready")

	// ========================================
	// STEP 5: REPOSITORIES
	// ========================================
	log.Println("📦 Initializing repositories...")

	pool := c.DB.Pool
	c.CatalogRepo = catalogRepo.NewPostgresRepository(pool, c.Cache)
	c.UserRepo = userRepo.NewPostgresRepository(pool)

	// ========================================
	// STEP 6: SERVICES
	// ========================================
	log.Println("⚙️  Initializing services...")

	c.CatalogService = catalogService.NewCatalogService(c.CatalogRepo, c.Hub)
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)

	// ========================================
	// STEP 7: HANDLERS
	// ========================================
	log.Println("🎯 Initializing handlers...")

	c.CatalogHandler = catalogHandler.NewCatalogHandler(c.CatalogService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.EventsHandler = notificationHandler.NewEventsHandler(c.Hub)

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// Cleanup releases resources on shutdown; called from the server's
// graceful-shutdown path.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.Hub != nil {
		c.Hub.Close()
	}

	if c.DB != nil {
		c.DB.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("⚠️  Failed to close Redis: %v", err)
			} else {
				log.Println("✅ Redis connections closed")
			}
		}
	}

	log.Println("✅ Container cleanup completed")
}
