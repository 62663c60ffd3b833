package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/comitanigiacomo/kanso-progress/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-progress/internal/adapters/metrics"
	"github.com/comitanigiacomo/kanso-progress/internal/core/services"
)

type RouterDependencies struct {
	AuthHandler    *AuthHandler
	HabitHandler   *HabitHandler
	TaskHandler    *TaskHandler
	GoalHandler    *GoalHandler
	XPHandler      *XPHandler
	FinanceHandler *FinanceHandler
	TokenService   *services.TokenService
	DB             *sqlx.DB
	Redis          *redis.Client
	Metrics        *metrics.Metrics
	Logger         *logrus.Logger
	RateLimit      int
	StartTime      time.Time
}

// requestLogger writes one entry per request and attaches the errors
// handlers pushed with c.Error.
func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		})
		if userID, ok := middleware.GetUserID(c); ok {
			entry = entry.WithField("user_id", userID)
		}

		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("request failed")
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		default:
			entry.Debug("request served")
		}
	}
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"POST", "GET", "OPTIONS", "PUT", "PATCH", "DELETE"},
		AllowHeaders:    []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	if deps.Redis != nil {
		limit := deps.RateLimit
		if limit <= 0 {
			limit = 100
		}
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, middleware.RateLimit{
			Scope:  "api",
			Limit:  limit,
			Window: time.Minute,
		}, log))
	}

	router.GET("/health", func(c *gin.Context) {
		dbStatus := "in-memory"
		if deps.DB != nil {
			dbStatus = "connected"
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				log.WithError(err).Warn("health check: database unreachable")
				dbStatus = "unreachable"
			}
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if err := deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
				log.WithError(err).Warn("health check: redis unreachable")
				redisStatus = "unreachable"
			}
		}

		statusCode := http.StatusOK
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	deps.AuthHandler.RegisterRoutes(apiV1)
	deps.XPHandler.RegisterPublicRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))
	{
		deps.HabitHandler.RegisterRoutes(protected)
		deps.TaskHandler.RegisterRoutes(protected)
		deps.GoalHandler.RegisterRoutes(protected)
		deps.XPHandler.RegisterRoutes(protected)
		deps.FinanceHandler.RegisterRoutes(protected)
	}

	return router
}
