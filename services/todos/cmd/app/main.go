package main

import (
	"os"

	"todos/pkg/cache"
	"todos/pkg/config"
	"todos/pkg/database"
	"todos/pkg/logger"
	"todos/pkg/queue"
	"todos/pkg/s3"
	todosApp "todos/services/todos/internal/app"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @title           Todos API
// @version         1.0
// @description     Multi-tenant todos with live notifications over SSE and WebSocket.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func init() {
	gin.SetMode(gin.ReleaseMode)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewWithOptions(os.Stdout, cfg.LogLevel, gin.Mode() == gin.ReleaseMode)

	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Error("JWT_SECRET is not set; refusing to start with the placeholder secret")
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	storage, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to initialize S3 client: %v", err)
		panic(err)
	}

	var relay *queue.Relay
	if cfg.RelayEnabled() {
		relay, err = queue.NewRabbitMQRelay(cfg, uuid.NewString(), log)
		if err != nil {
			log.Error("Failed to connect to RabbitMQ: %v", err)
			panic(err)
		}
	} else {
		log.Info("RABBITMQ_HOST not set; notifications stay within this instance")
	}

	todosApp.Run(cfg, log, db, redisClient, storage, relay)
}
