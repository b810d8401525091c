package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogsmith-backend/internal/config"
	"blogsmith-backend/internal/database"
	"blogsmith-backend/internal/handlers"
	"blogsmith-backend/internal/middleware"
	"blogsmith-backend/internal/repository"
	"blogsmith-backend/internal/router"
	"blogsmith-backend/internal/services"
	"blogsmith-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Blogsmith Backend...")
	ctx := context.Background()

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	blogPostRepo := repository.NewBlogPostRepo(pool)

	// ──── Step 5: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer geminiService.Close()
	log.Printf("✓ Gemini client initialized (%s)", cfg.GeminiModel)

	// ──── Step 6: Pick Transcription Provider ────
	var transcriber services.Transcriber
	switch cfg.TranscriptionProvider {
	case "gemini":
		transcriber = geminiService
	default:
		transcriber = services.NewAssemblyAIService(cfg.AssemblyAIAPIKey, cfg.AssemblyAIBaseURL, cfg.AssemblyAIPoll)
	}
	log.Printf("✓ Transcription provider: %s", cfg.TranscriptionProvider)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	youtubeService := services.NewYouTubeService()
	audioService := services.NewAudioService(
		services.NewFFmpegTranscoder(cfg.FFmpegPath, cfg.AudioBitrate),
		cfg.MediaRoot,
	)
	authService := services.NewAuthService(userRepo, services.NewRedisRefreshStore(redisClients.Main), jwtAuth)
	blogService := services.NewBlogService(
		youtubeService,
		audioService,
		transcriber,
		geminiService,
		blogPostRepo,
		services.NewRedisProgressPublisher(redisClients.Main),
	)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	blogHandler := handlers.NewBlogHandler(blogService)

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth, cfg.FrontendURL)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	r := router.New(jwtAuth, authLimiter, authHandler, blogHandler, wsHub, cfg.FrontendURL)

	// The whole pipeline runs inside the request, so the write timeout has to
	// cover download, transcription and generation.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	idle := make(chan struct{})
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		authLimiter.Stop()
		wsHub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPWriteTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("✗ HTTP shutdown: %v", err)
		}
		close(idle)
	}()

	log.Printf("✓ Blogsmith Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	<-idle
}
