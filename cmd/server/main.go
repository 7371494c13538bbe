package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"coach-backend/internal/catalog"
	"coach-backend/internal/config"
	"coach-backend/internal/database"
	"coach-backend/internal/handlers"
	"coach-backend/internal/middleware"
	"coach-backend/internal/repository"
	"coach-backend/internal/router"
	"coach-backend/internal/services"
	"coach-backend/internal/storage"
	"coach-backend/internal/websocket"
	"coach-backend/internal/worker"
	"coach-backend/migrations"
)

func main() {
	log.Println("🚀 Starting Coach Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("⚠ Unknown timezone %q, using UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL, 20)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Run Database Migrations ────
	if err := database.RunMigrations(context.Background(), pool, migrations.FS); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Step 4: Initialize Redis Clients (optional) ────
	var queue, pubsub *redis.Client
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	switch {
	case errors.Is(err, database.ErrRedisDisabled):
		log.Println("⚠ REDIS_URL not set: coach turns run inline, events stay on this instance")
	case err != nil:
		log.Fatalf("✗ Redis connection failed: %v", err)
	default:
		defer redisClients.Close()
		queue, pubsub = redisClients.Queue, redisClients.PubSub
		log.Println("✓ Redis connected")
	}

	// ──── Step 5: Initialize LLM Provider ────
	var llm services.Completer
	switch {
	case cfg.LLMAPIKey() == "":
		log.Printf("⚠ No API key for LLM provider %q: coach replies will be the apology message", cfg.LLMProvider)
	case cfg.LLMProvider == "gemini":
		gemini, err := services.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTemperature, cfg.LLMMaxConcurrent)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer gemini.Close()
		llm = gemini
		log.Printf("✓ Gemini client initialized (%s)", cfg.GeminiModel)
	default:
		llm = services.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.LLMTemperature, cfg.LLMMaxConcurrent)
		log.Printf("✓ OpenAI-compatible client initialized (%s)", cfg.OpenAIModel)
	}

	// ──── Step 6: Load Catalog and Image URLs ────
	cat, err := catalog.Load()
	if err != nil {
		log.Fatalf("✗ Catalog failed to load: %v", err)
	}
	log.Printf("✓ Catalog loaded (%d products)", cat.Len())

	var images storage.ImageURLs = storage.StaticURLs{BaseURL: cfg.AssetBaseURL}
	if cfg.S3Bucket != "" {
		images, err = storage.NewS3ImageURLs(context.Background(), storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			BucketName:      cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			log.Fatalf("✗ S3 client initialization failed: %v", err)
		}
		log.Println("✓ Product images served from S3")
	}

	// ──── Initialize Repositories ────
	conversationRepo := repository.NewConversationRepo(pool)
	programRepo := repository.NewProgramRepo(pool)
	profileRepo := repository.NewProfileRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Step 7: Start WebSocket Hub ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	wsHub := websocket.NewHub(pubsub, jwtAuth)
	var publisher services.Publisher = wsHub
	if queue != nil {
		publisher = services.NewRedisPublisher(queue)
	}
	log.Println("✓ WebSocket hub started")

	// ──── Initialize Services ────
	coachService := services.NewCoachService(conversationRepo, programRepo, profileRepo, llm, cat, publisher, loc)
	programService := services.NewProgramService(programRepo, conversationRepo, publisher, loc)
	profileService := services.NewProfileService(profileRepo)

	// ──── Step 8: Start Job Worker Pool ────
	var workerPool *worker.Pool
	if queue != nil {
		workerPool = worker.NewPool(queue, coachService, jobRepo, publisher, cfg.WorkerCount)
		workerPool.Start()
		log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)
	}

	// ──── Step 9: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		router.Handlers{
			Chat:    handlers.NewChatHandler(coachService),
			Coach:   handlers.NewCoachHandler(coachService, jobRepo, queue),
			Program: handlers.NewProgramHandler(programService, loc),
			Profile: handlers.NewProfileHandler(profileService, coachService),
			Product: handlers.NewProductHandler(cat, images),
			Job:     handlers.NewJobHandler(jobRepo),
		},
		wsHub,
		cfg.CORSOrigin,
		cfg.RateLimitPerMin,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // inline coach turns wait on the completion provider
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		if workerPool != nil {
			workerPool.Stop()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Coach Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
