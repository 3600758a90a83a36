package internal

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todos/pkg/config"
	"todos/pkg/eventbus"
	"todos/pkg/jwt"
	"todos/pkg/logger"
	"todos/pkg/metrics"
	"todos/pkg/queue"
	"todos/pkg/session"
	todosHTTP "todos/services/todos/internal/controller/http"
	"todos/services/todos/internal/repo/persistent"
	"todos/services/todos/internal/usecase"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Run wires the service and blocks until SIGINT or SIGTERM. relay may be nil,
// in which case notifications stay within this process.
func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client, storage usecase.AvatarStorage, relay *queue.Relay) {
	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTTTL)
	sessions := session.NewStore(redisClient)
	prom := metrics.NewProm()

	bus := eventbus.New(eventbus.Options{
		BufferSize: cfg.EventBufferSize,
		Metrics:    prom,
	})

	// Initialize Repositories
	userRepo := persistent.NewUserRepository(db)
	orgRepo := persistent.NewOrganizationRepository(db)
	todoRepo := persistent.NewTodoRepository(db)
	notificationRepo := persistent.NewNotificationRepository(db)

	// Initialize UseCases
	var eventRelay usecase.EventRelay
	if relay != nil {
		eventRelay = relay
	}
	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, bus, eventRelay, log.With("component", "notifications"))
	authUseCase := usecase.NewAuthUseCase(userRepo, orgRepo, jwtService, sessions, log)
	organizationUseCase := usecase.NewOrganizationUseCase(orgRepo, userRepo, jwtService, log)
	profileUseCase := usecase.NewProfileUseCase(userRepo, storage, log)
	todoUseCase := usecase.NewTodoUseCase(todoRepo, orgRepo, notificationUseCase, log)

	// Initialize HTTP handlers
	router := NewRouter(RouterDeps{
		Config:      cfg,
		JWT:         jwtService,
		Revocations: sessions,
		Redis:       redisClient,
		Metrics:     prom,
	}, Handlers{
		Auth:          todosHTTP.NewAuthHandler(authUseCase, log),
		Organizations: todosHTTP.NewOrganizationHandler(organizationUseCase, log),
		Profile:       todosHTTP.NewProfileHandler(profileUseCase, log),
		Todos:         todosHTTP.NewTodoHandler(todoUseCase, log),
		Notifications: todosHTTP.NewNotificationHandler(notificationUseCase, log, todosHTTP.DefaultKeepAlive),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	if relay != nil {
		// Foreign events go straight to the local bus. The publishing
		// instance has already stored them.
		go func() {
			log.Info("Notification relay consuming as instance %s", relay.InstanceID())
			relay.Supervise(relayCtx, bus.Publish)
		}()
	}

	go func() {
		log.Info("Todos service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down todos service...")

	// Closing the bus ends every open stream so Shutdown does not wait on them.
	bus.Close()
	stopRelay()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if relay != nil {
		if err := relay.Close(); err != nil {
			log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Info("Todos service exited")
}
