// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskhub/taskhub/internal/config"
	"github.com/taskhub/taskhub/internal/database"
	"github.com/taskhub/taskhub/internal/handlers"
	"github.com/taskhub/taskhub/internal/repository"
	"github.com/taskhub/taskhub/internal/server"
	"github.com/taskhub/taskhub/internal/service"
	"github.com/taskhub/taskhub/pkg/auth"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println("Connecting to PostgreSQL...")
	db, err := database.Connect(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database connection: %v", err)
		}
	}()

	if cfg.Server.AutoMigrate {
		log.Println("Running schema migration...")
		if err := database.Migrate(context.Background(), db); err != nil {
			log.Fatalf("Failed to run migration: %v", err)
		}
	}

	tokenManager := auth.NewTokenManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenDuration,
		cfg.JWT.RefreshTokenDuration,
	)

	userRepo := repository.NewPostgresUserRepository(db)
	taskRepo := repository.NewPostgresTaskRepository(db)
	commentRepo := repository.NewPostgresCommentRepository(db)
	eventRepo := repository.NewPostgresSecurityEventRepository(db)

	securityLogger := service.NewSecurityLogger(eventRepo)
	authService := service.NewAuthService(userRepo, tokenManager, securityLogger, cfg.Security, cfg.JWT.RefreshTokenDuration)
	userService := service.NewUserService(userRepo, eventRepo, securityLogger)
	taskService := service.NewTaskService(taskRepo, userRepo)
	commentService := service.NewCommentService(commentRepo, taskRepo)

	router := server.NewRouter(server.Deps{
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUserHandler(userService),
		Tasks:          handlers.NewTaskHandler(taskService),
		Comments:       handlers.NewCommentHandler(commentService),
		TokenManager:   tokenManager,
		UserRepo:       userRepo,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on :%s (environment: %s)", cfg.Server.HTTPPort, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
