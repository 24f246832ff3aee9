package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"bloghub-backend/internal/config"
	"bloghub-backend/internal/infrastructure/ai"
	infraCache "bloghub-backend/internal/infrastructure/cache"
	"bloghub-backend/internal/infrastructure/database"
	"bloghub-backend/internal/infrastructure/storage"
	"bloghub-backend/pkg/auth"
	"bloghub-backend/pkg/cache"

	"bloghub-backend/internal/domains/author"
	authorRepo "bloghub-backend/internal/domains/author/repository"
	authorService "bloghub-backend/internal/domains/author/service"
	"bloghub-backend/internal/domains/generator"
	postHandler "bloghub-backend/internal/domains/post/handler"
	postRepo "bloghub-backend/internal/domains/post/repository"
	postService "bloghub-backend/internal/domains/post/service"
)

// Container holds the full dependency graph.
// Initialization order matters: config → infrastructure → repositories →
// services → handlers. Everything is a singleton for the process lifetime.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	Storage     *storage.MinIOStorage
	Images      *storage.ImageProcessor
	AuthManager *auth.Manager
	AI          *ai.Client

	// ========================================
	// REPOSITORY LAYER (DATA ACCESS)
	// ========================================
	AuthorRepo author.Repository
	PostRepo   postRepo.PostRepository

	// ========================================
	// SERVICE LAYER (BUSINESS LOGIC)
	// ========================================
	AuthorService    author.Service
	PostService      postService.ServiceInterface
	GeneratorService *generator.Service

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================
	PostHandler      *postHandler.Handler
	GeneratorHandler *generator.Handler
}

// NewContainer builds and initializes the whole dependency graph.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
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

	db := database.NewPostgresDB(cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	if err := db.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
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

	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			// Redis failure is non-critical: reads fall through to postgres.
			log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}
	c.Cache = redisCache

	// ========================================
	// STEP 4: INITIALIZE OBJECT STORAGE
	// ========================================
	log.Println("🪣 Connecting to MinIO...")

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = minioStorage
	c.Images = storage.NewImageProcessor()
	log.Println("✅ Object storage ready")

	// ========================================
	// STEP 5: AUTH + AI CLIENTS
	// ========================================
	c.AuthManager = auth.NewManager(cfg.Auth.SessionSecret)
	c.AI = ai.NewClient(cfg.OpenAI)

	// ========================================
	// STEP 6: REPOSITORIES
	// ========================================
	c.initRepositories()

	// ========================================
	// STEP 7: SERVICES
	// ========================================
	c.initServices()

	// ========================================
	// STEP 8: HANDLERS
	// ========================================
	c.initHandlers()

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.AuthorRepo = authorRepo.NewPostgresRepository(pool)
	c.PostRepo = postRepo.NewPostgresRepository(pool, c.Cache)
}

func (c *Container) initServices() {
	c.AuthorService = authorService.NewAuthorService(c.AuthorRepo)

	c.PostService = postService.NewPostService(
		c.PostRepo,
		c.AuthorService,
		c.Storage,
		c.Images,
	)

	c.GeneratorService = generator.NewService(c.AI)
}

func (c *Container) initHandlers() {
	c.PostHandler = postHandler.NewHandler(c.PostService)
	c.GeneratorHandler = generator.NewHandler(c.GeneratorService)
}

// Cleanup releases resources on shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

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
