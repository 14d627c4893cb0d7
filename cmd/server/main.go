package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/streamcam/backend/internal/config"
	"github.com/streamcam/backend/internal/httputil"
	"github.com/streamcam/backend/internal/jwt"
	"github.com/streamcam/backend/internal/log"
	"github.com/streamcam/backend/internal/otel"
	intredis "github.com/streamcam/backend/internal/redis"
	"github.com/streamcam/backend/internal/workflow"
	"github.com/streamcam/backend/rooms/service"
	"github.com/streamcam/backend/rooms/store"
	roomstransport "github.com/streamcam/backend/rooms/transport"
	"github.com/streamcam/backend/signaling/broadcast"
	"github.com/streamcam/backend/signaling/queue"
	sigtransport "github.com/streamcam/backend/signaling/transport"
)

const (
	redisRetryInitial = 100 * time.Millisecond
	redisRetryMax     = 10 * time.Second
)

type Config struct {
	App            config.App      `mapstructure:"app"`
	HTTP           httputil.Config `mapstructure:"http"`
	Redis          intredis.Config `mapstructure:"redis"`
	Otel           otel.Config     `mapstructure:"otel"`
	Queue          queue.Config    `mapstructure:"queue"`
	JWTSecret      string          `mapstructure:"jwt_secret"`
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
}

func loadConfig() (*Config, error) {
	return config.Load(&Config{}, func(v *viper.Viper) {
		v.SetDefault("jwt_secret", "")
		v.SetDefault("allowed_origins", []string{"*"})

		config.Setup(v, "app")
		httputil.Setup(v, "http")
		intredis.Setup(v, "redis")
		otel.Setup(v, "otel")
		queue.Setup(v, "queue")

		v.SetDefault("http.addr", "0.0.0.0:3000")
	})
}

func main() {
	config, err := loadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration", err)
	}
	if config.JWTSecret == "" {
		log.Fatal("jwt_secret is required")
	}

	logger, err := log.NewLogger(config.App.LogConfigFile)
	if err != nil {
		log.Fatal("Failed to create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	// global background context
	ctx := context.Background()

	otelShutdown, err := otel.Init(ctx, &config.Otel, logger)
	if err != nil {
		logger.Fatal("Failed to initialize OTEL provider", log.Error(err))
	}

	logger.Info("Starting signaling service",
		log.String("addr", config.HTTP.Addr),
		log.String("redisAddr", config.Redis.Addr))

	redisClient := intredis.NewClient(&config.Redis)
	if err := intredis.Ping(redisClient); err != nil {
		// Forever retries later; a dead Redis at boot is worth a warning only
		logger.Warn("Redis not reachable yet", log.Error(err))
	}

	forever := intredis.NewForever(
		redisClient,
		redisRetryInitial,
		redisRetryMax,
		logger.Module("Redis"),
	)

	// Components
	auth := jwt.NewAuth(config.JWTSecret)

	roomStore := store.NewRoomStore(redisClient, forever, logger.Module("RoomStore"))

	manager := broadcast.NewManager(logger.Module("Broadcast"))
	roomService := service.NewRoomService(roomStore, manager, logger.Module("RoomSvc"))
	wsServer := broadcast.NewServer(
		manager,
		auth,
		roomService,
		config.AllowedOrigins,
		logger.Module("Broadcast"),
	)

	clock := clockwork.NewRealClock()
	relay := queue.NewRelay(clock, logger.Module("Queue"))
	sweeper := queue.NewSweeper(relay, clock, &config.Queue, logger.Module("Queue"))
	sweeper.Start(ctx)

	engine := newEngine(config, logger)
	engine.GET("/api/health", healthCheck)

	api := engine.Group("/api", jwt.Middleware(auth))
	sigtransport.NewRouter(relay, wsServer, logger.Module("Signaling")).Register(api)
	roomstransport.NewRouter(roomService, logger.Module("Rooms")).Register(api)

	server := httputil.NewServer(&config.HTTP, engine)

	go func() {
		logger.Info("Starting HTTP server", log.String("addr", config.HTTP.Addr))
		if err := server.Listen(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", log.Error(err))
		}
	}()

	logger.Info("Signaling service started")

	cleanup := func(ctx context.Context) {
		_ = server.Shutdown(ctx)

		sweeper.Stop()

		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close Redis client", log.Error(err))
		}
		if err := otelShutdown(ctx); err != nil {
			logger.Error("Failed to shutdown OTEL", log.Error(err))
		}
	}
	workflow.WaitGracefulShutdown(ctx, logger.Module("CleanUp"), cleanup, config.App.ShutdownTimeout)
}

func newEngine(config *Config, logger *log.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware(config.AllowedOrigins))
	engine.Use(otelgin.Middleware(config.Otel.ServiceName))

	requestLogger := logger.Module("HTTP")
	engine.Use(func(c *gin.Context) {
		requestLogger.Info("Incoming request",
			log.String("method", c.Request.Method),
			log.String("url", c.Request.URL.String()))
		c.Next()
	})

	return engine
}

// corsMiddleware allows credentialed requests; with the wildcard default
// the origin is reflected, matching the frontend's cookie usage.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "signaling",
		"timestamp": time.Now().Unix(),
	})
}
