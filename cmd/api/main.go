package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"reelgo/internal/api/handler"
	"reelgo/internal/api/middleware"
	"reelgo/internal/api/router"
	"reelgo/internal/config"
	"reelgo/internal/infra/database"
	infraES "reelgo/internal/infra/elasticsearch"
	infraKafka "reelgo/internal/infra/kafka"
	infraMinio "reelgo/internal/infra/minio"
	infraRedis "reelgo/internal/infra/redis"
	"reelgo/internal/model"
	"reelgo/internal/repository"
	"reelgo/internal/service"
	"reelgo/pkg/logger"

	_ "reelgo/api/openapi"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title ReelGo API
// @version 1.0
// @description 短视频社区 API 服务
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@reelgo.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host 127.0.0.1:8000
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	closeInfra, err := initInfra(cfg)
	if err != nil {
		logger.Fatal("Failed to init infrastructure", zap.Error(err))
	}
	defer closeInfra()

	engine, videoService := buildRouter(cfg)

	// 优化结果消费者随服务一起退出
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	if topic, ok := cfg.Kafka.Topics["video_optimized"]; ok {
		go infraKafka.StartOptimizeResultConsumer(
			consumerCtx,
			cfg.Kafka.Brokers,
			topic,
			"reelgo-optimize-result",
			videoService.HandleOptimizeResult,
		)
	}

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.String("redis", cfg.Redis.Addr()),
		zap.String("minio", cfg.MinIO.Endpoint),
		zap.Int("ad_daily_limit", cfg.Ads.DailyViewLimit),
		zap.Float64("ad_show_probability", cfg.Ads.ShowProbability),
	)

	serve(engine, addr)
}

// initInfra 按依赖顺序初始化基础设施，返回反序关闭函数
// Elasticsearch 是可选依赖，连不上时搜索自动降级到数据库
func initInfra(cfg *config.Config) (func(), error) {
	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrate(
		&model.User{},
		&model.Video{},
		&model.Comment{},
		&model.Relation{},
		&model.Ad{},
		&model.AdView{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	if err := infraRedis.Init(&cfg.Redis); err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	if err := infraMinio.Init(&cfg.MinIO); err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		return nil, fmt.Errorf("init kafka producer: %w", err)
	}

	esReady := false
	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Warn("Elasticsearch init failed, search will fallback to DB", zap.Error(err))
	} else {
		esReady = true
		if err := infraES.InitIndexes(); err != nil {
			logger.Warn("Elasticsearch index init failed", zap.Error(err))
		}
	}

	return func() {
		if esReady {
			_ = infraES.Close()
		}
		_ = infraKafka.CloseProducer()
		_ = infraRedis.Close()
		_ = database.Close()
	}, nil
}

// buildRouter 组装仓储、服务、路由，返回引擎和优化结果消费者需要的视频服务
func buildRouter(cfg *config.Config) (*gin.Engine, *service.VideoService) {
	gin.SetMode(cfg.App.Mode)

	engine := gin.New()
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	db := database.Get()
	userRepo := repository.NewUserRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	adRepo := repository.NewAdRepository(db)
	adViewRepo := repository.NewAdViewRepository(db)

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, relationRepo)
	relationService := service.NewRelationService(relationRepo, userRepo)
	videoService := service.NewVideoService(videoRepo)
	commentService := service.NewCommentService(commentRepo, videoRepo)
	searchService := service.NewSearchService(videoRepo)
	adService := service.NewAdService(adRepo, adViewRepo, cfg.Ads.DailyViewLimit, cfg.Ads.ShowProbability)
	feedService := service.NewFeedService(
		videoRepo,
		adService,
		infraRedis.Get(),
		cfg.Feed.DefaultPageSize,
		cfg.Feed.MaxPageSize,
		cfg.Feed.CacheTTL(),
		cfg.Ads.Cooldown(),
	)

	// 管理员角色实时查库
	adminMiddleware := middleware.AdminRequired(func(userID int64) (string, error) {
		user, err := userRepo.GetByID(userID)
		if err != nil {
			return "", err
		}
		return user.UserRole, nil
	})

	engine.GET("/healthz", healthCheckHandler)
	engine.GET("/", rootHandler)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.Setup(engine, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		User:     handler.NewUserHandler(userService, authService),
		Relation: handler.NewRelationHandler(relationService),
		Feed:     handler.NewFeedHandler(feedService),
		Video:    handler.NewVideoHandler(videoService),
		Comment:  handler.NewCommentHandler(commentService),
		Ad:       handler.NewAdHandler(adService),
		Search:   handler.NewSearchHandler(searchService),
		Admin:    adminMiddleware,
	})

	return engine, videoService
}

// serve 启动 HTTP 服务并在收到退出信号后优雅关停
func serve(engine *gin.Engine, addr string) {
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

// healthCheckHandler 健康检查，数据库不可达时报 degraded
func healthCheckHandler(c *gin.Context) {
	cfg := config.Get()

	status, httpStatus := "ok", http.StatusOK
	if sqlDB, err := database.Get().DB(); err != nil {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			status, httpStatus = "degraded", http.StatusServiceUnavailable
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   cfg.App.Name,
		"version":   cfg.App.Version,
		"mode":      cfg.App.Mode,
	})
}

// rootHandler 服务自述
func rootHandler(c *gin.Context) {
	cfg := config.Get()

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Welcome to %s API", cfg.App.Name),
		"project": cfg.App.Name,
		"version": cfg.App.Version,
		"mode":    cfg.App.Mode,
		"docs":    fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.App.Port),
	})
}
