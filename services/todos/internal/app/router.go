package internal

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"todos/pkg/config"
	"todos/pkg/jwt"
	"todos/pkg/metrics"
	"todos/pkg/middleware"
	todosHTTP "todos/services/todos/internal/controller/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "todos/services/todos/docs" // Swagger docs
)

type Handlers struct {
	Auth          *todosHTTP.AuthHandler
	Organizations *todosHTTP.OrganizationHandler
	Profile       *todosHTTP.ProfileHandler
	Todos         *todosHTTP.TodoHandler
	Notifications *todosHTTP.NotificationHandler
}

// RouterDeps are the cross-cutting pieces the router needs besides handlers.
// Redis and Revocations may be nil, which disables rate limiting and logout
// checks respectively.
type RouterDeps struct {
	Config      *config.Config
	JWT         *jwt.Service
	Revocations middleware.RevocationChecker
	Redis       *redis.Client
	Metrics     *metrics.Prom
}

// redactQuery masks the token query parameter that stream clients send in
// place of an Authorization header.
func redactQuery(path string) string {
	base, rawQuery, found := strings.Cut(path, "?")
	if !found {
		return path
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return base
	}
	if _, ok := query["token"]; !ok {
		return path
	}
	query.Set("token", "REDACTED")
	return base + "?" + query.Encode()
}

// accessLogFormatter is gin's default access log line with the path passed
// through redactQuery.
func accessLogFormatter(param gin.LogFormatterParams) string {
	if param.Latency > time.Minute {
		param.Latency = param.Latency.Truncate(time.Second)
	}
	return fmt.Sprintf("[GIN] %v | %3d | %13v | %15s | %-7s %#v\n%s",
		param.TimeStamp.Format("2006/01/02 - 15:04:05"),
		param.StatusCode,
		param.Latency,
		param.ClientIP,
		param.Method,
		redactQuery(param.Path),
		param.ErrorMessage,
	)
}

func NewRouter(deps RouterDeps, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{Formatter: accessLogFormatter}), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "Last-Event-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(deps.Metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	rateLimit := middleware.RateLimitMiddleware(deps.Redis, deps.Config.RateLimitPerMinute, time.Minute)
	auth := middleware.AuthMiddleware(deps.JWT, deps.Revocations)

	api := r.Group("/api/v1")

	public := api.Group("/auth", rateLimit)
	{
		public.POST("/register", h.Auth.Register)
		public.POST("/login", h.Auth.Login)
	}

	// Streams stay open for hours, so they are not rate limited. Browsers
	// cannot set headers on EventSource or WebSocket requests, hence ?token=.
	streams := api.Group("/notifications", middleware.StreamAuthMiddleware(deps.JWT, deps.Revocations))
	{
		streams.GET("/subscribe", h.Notifications.Subscribe)
		streams.GET("/ws", h.Notifications.HandleWebSocket)
	}

	protected := api.Group("", auth, rateLimit)
	{
		protected.POST("/auth/logout", h.Auth.Logout)

		protected.GET("/me", h.Profile.Me)
		protected.PUT("/me", h.Profile.UpdateProfile)
		protected.POST("/me/avatar", h.Profile.UploadAvatar)

		protected.GET("/organizations", h.Organizations.ListOrganizations)
		protected.POST("/organizations", h.Organizations.CreateOrganization)
		protected.POST("/organizations/:id/switch", h.Organizations.SwitchOrganization)
		protected.GET("/organizations/current/members", h.Organizations.ListMembers)

		managers := protected.Group("/organizations/current/members", middleware.RequireRole("owner", "admin"))
		managers.POST("", h.Organizations.AddMember)
		managers.DELETE("/:user_id", h.Organizations.RemoveMember)

		protected.GET("/todos", h.Todos.ListTodos)
		protected.POST("/todos", h.Todos.CreateTodo)
		protected.GET("/todos/:id", h.Todos.GetTodo)
		protected.PUT("/todos/:id", h.Todos.UpdateTodo)
		protected.DELETE("/todos/:id", h.Todos.DeleteTodo)
		protected.POST("/todos/:id/toggle", h.Todos.ToggleTodo)

		protected.GET("/notifications", h.Notifications.GetNotifications)
		protected.POST("/notifications/:id/read", h.Notifications.MarkRead)
		protected.POST("/notifications/read-all", h.Notifications.MarkAllRead)
	}

	return r
}
