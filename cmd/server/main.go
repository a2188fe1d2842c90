package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/middleware"
	"taskboard/internal/monitoring"
	"taskboard/internal/services"
	"taskboard/internal/store"
	"taskboard/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := store.OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("database pool: %v", err)
	}
	defer sqlDB.Close()

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		return sqlDB.PingContext(ctx)
	})

	taskStore := store.NewGormStore(db)
	var taskService services.TaskService = services.NewTaskService(taskStore)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		defer redisClient.Close()

		monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})

		boardCache := cache.NewMultiLevelCache(cache.NewRedisCache(redisClient))
		taskService = services.NewCachedTaskService(taskService, boardCache)
	}

	if redisClient != nil && cfg.Worker.Enabled {
		w := worker.NewWorker(redisClient, cfg.Worker.Queue)
		w.RegisterHandler(worker.JobTypeRolloverSweep, func(ctx context.Context, job *worker.Job) error {
			archived, err := taskService.RunRollover(ctx, job.Owner)
			if err != nil {
				return err
			}
			if archived > 0 {
				log.Printf("rollover sweep archived %d tasks for %s", archived, job.Owner)
			}
			return nil
		})
		w.Start(cfg.Worker.Concurrency)
		defer w.Stop()

		if cfg.Board.AuthMode == config.AuthModeShared {
			sched := worker.NewScheduler(redisClient, cfg.Worker.Queue, cfg.Board.Owner, cfg.Worker.RolloverInterval)
			sched.Start()
			defer sched.Stop()
		}
	}

	router := setupRouter(cfg, taskService)

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("task board listening on %s", cfg.GetServerAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}

func setupRouter(cfg *config.Config, taskService services.TaskService) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RecoveryWithLog())
	router.Use(monitoring.MetricsMiddleware())
	router.Use(cors.Default())
	router.Use(middleware.RateLimiter(cfg))

	router.GET("/health", monitoring.HealthHandler())
	router.GET("/ready", monitoring.ReadinessHandler())
	router.GET("/live", monitoring.LivenessHandler())
	router.GET("/metrics", monitoring.MetricsHandler())

	api := router.Group("/api")
	api.Use(middleware.OwnerResolver(cfg))
	handlers.NewTaskHandler(taskService).Register(api)

	return router
}
