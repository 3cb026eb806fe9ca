package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/flowuphq/flowup/internal/cache"
	"github.com/flowuphq/flowup/internal/config"
	"github.com/flowuphq/flowup/internal/models"
	"github.com/flowuphq/flowup/internal/service"
	"github.com/flowuphq/flowup/internal/service/google"
	"github.com/flowuphq/flowup/internal/service/publisher"
	"github.com/flowuphq/flowup/internal/service/publisher/facebook"
	"github.com/flowuphq/flowup/internal/service/publisher/graph"
	"github.com/flowuphq/flowup/internal/service/publisher/instagram"
	"github.com/flowuphq/flowup/pkg/storage"
)

// postStore is the slice of PostService the HTTP handlers need.
type postStore interface {
	Create(userID string, input service.CreatePostInput) (*models.Post, error)
	List(userID string) ([]models.Post, error)
	Get(userID, publicID string) (*models.Post, error)
	Delete(userID, publicID string) error
	Republish(userID, publicID string, scheduledAt time.Time) (*models.Post, error)
}

// publishRunner triggers one orchestrator pass; the cron route and the
// scheduler share the same implementation.
type publishRunner interface {
	ProcessDuePosts(ctx context.Context) error
}

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	Posts        postStore
	Connections  *service.ConnectionService
	Manager      *publisher.Manager
	Orchestrator publishRunner
	Scheduler    *service.Scheduler
	StatsUpdater *service.StatsUpdater
	Monitoring   *service.MonitoringService
	Auth         *service.AuthService
	Generator    *service.GeneratorService
	Graph        *graph.Client
	Google       *google.Client
	Cache        *cache.Cache
	Storage      *storage.Client

	insightsTTL time.Duration
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	postService := service.NewPostService(db, logger)
	connectionService := service.NewConnectionService(db, logger)
	monitoringService := service.NewMonitoringService(db, logger)

	graphClient := graph.NewClient(cfg.Meta.BaseURL, cfg.Meta.GraphVersion, logger)
	googleClient := google.NewClient(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURI, logger)

	manager := publisher.NewManager(logger)
	if err := manager.Register(instagram.New(logger, graphClient)); err != nil {
		return nil, err
	}
	if err := manager.Register(facebook.New(logger, graphClient)); err != nil {
		return nil, err
	}

	orchestrator := service.NewOrchestrator(logger, postService, connectionService, manager, monitoringService)
	scheduler := service.NewScheduler(&cfg.Scheduler, logger, orchestrator)
	statsUpdater := service.NewStatsUpdater(monitoringService, logger, 5*time.Minute)

	authService, err := service.NewAuthService(&cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	storageClient, err := storage.NewClient(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}

	insightsTTL, err := time.ParseDuration(cfg.Cache.InsightsTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid insights TTL: %w", err)
	}

	// Create router
	router := gin.New()

	// Create server
	srv := &Server{
		Config:       cfg,
		DB:           db,
		Router:       router,
		Logger:       logger,
		Posts:        postService,
		Connections:  connectionService,
		Manager:      manager,
		Orchestrator: orchestrator,
		Scheduler:    scheduler,
		StatsUpdater: statsUpdater,
		Monitoring:   monitoringService,
		Auth:         authService,
		Generator:    service.NewGeneratorService(&cfg.Generator, logger),
		Graph:        graphClient,
		Google:       googleClient,
		Cache:        cache.New(&cfg.Cache, logger),
		Storage:      storageClient,
		insightsTTL:  insightsTTL,
	}

	// Setup middleware and routes
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// API routes
	api := s.Router.Group("/api/v1")
	{
		posts := api.Group("/posts")
		{
			posts.GET("", s.handleListPosts)
			posts.POST("", s.handleCreatePost)
			posts.GET("/:id", s.handleGetPost)
			posts.DELETE("/:id", s.handleDeletePost)
			posts.POST("/:id/republish", s.handleRepublishPost)
		}

		connections := api.Group("/connections")
		{
			connections.GET("", s.handleListConnections)
			connections.POST("/:platform/disconnect", s.handleDisconnect)
		}

		meta := api.Group("/meta")
		{
			meta.POST("/callback", s.handleMetaCallback)
			meta.GET("/insights", s.handleMetaInsights)
		}

		api.POST("/instagram/publish", s.handleInstagramPublish)

		googleGroup := api.Group("/google")
		{
			googleGroup.POST("/callback", s.handleGoogleCallback)
			googleGroup.POST("/media", s.handleGoogleMedia)
			googleGroup.POST("/search-keywords", s.handleGoogleSearchKeywords)
			googleGroup.GET("/reviews", s.handleGoogleReviews)
		}

		generate := api.Group("/generate")
		{
			generate.POST("/text", s.handleGenerateText)
			generate.POST("/images", s.handleGenerateImages)
		}

		api.POST("/media", s.handleMediaUpload)

		api.POST("/cron/publish-posts", s.handleCronPublish)

		dashboard := api.Group("/dashboard")
		{
			dashboard.POST("/login", s.handleDashboardLogin)

			protected := dashboard.Group("", s.Auth.Middleware())
			{
				protected.GET("/summary", s.handleDashboardSummary)
				protected.GET("/errors", s.handleDashboardErrors)
			}
		}
	}
}

func (s *Server) Start(ctx context.Context) error {
	// Start scheduler
	if err := s.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	s.StatsUpdater.Start(ctx)

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop background workers first
	s.Scheduler.Stop()
	s.StatsUpdater.Stop()
	s.Cache.Close()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
