package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskdeck/backend/api/handler"
	"github.com/taskdeck/backend/internal/cache"
	"github.com/taskdeck/backend/internal/config"
	"github.com/taskdeck/backend/internal/infrastructure/journal"
	"github.com/taskdeck/backend/internal/infrastructure/monitor"
	pgInfra "github.com/taskdeck/backend/internal/infrastructure/postgres"
	redisInfra "github.com/taskdeck/backend/internal/infrastructure/redis"
	"github.com/taskdeck/backend/internal/middleware"
	"github.com/taskdeck/backend/internal/router"
	"github.com/taskdeck/backend/internal/services"
	"github.com/taskdeck/backend/internal/services/lifecycle"
	"github.com/taskdeck/backend/pkg/clock"
	"github.com/taskdeck/backend/pkg/httpcontext"
	"github.com/taskdeck/backend/pkg/logger"
	"github.com/taskdeck/backend/repository/postgres"
	redisRepo "github.com/taskdeck/backend/repository/redis"
	accountUC "github.com/taskdeck/backend/usecase/account"
	authUC "github.com/taskdeck/backend/usecase/auth"
	categoryUC "github.com/taskdeck/backend/usecase/category"
	taskUC "github.com/taskdeck/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	journalStore, err := journal.Open(cfg.Journal.Path, "mutations")
	if err != nil {
		zapLogger.Fatal("failed to open mutation journal", zap.Error(err))
	}
	manager.Register("journal", func(ctx context.Context) error {
		return journalStore.Close()
	})

	mon := monitor.New(pool, redisClient, journalStore, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	pruner := services.NewJournalPruner(journalStore, zapLogger, services.PrunerConfig{
		Interval:  cfg.Journal.PruneInterval,
		Retention: cfg.Journal.Retention,
	})
	pruner.Start()
	manager.Register("journal_pruner", func(ctx context.Context) error {
		pruner.Stop(ctx)
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Session.DefaultTTL)

	queryCache := cache.NewRedisQueryCache(redisClient, cfg.Cache.TTL, zapLogger)
	recorder := services.NewJournalRecorder(journalStore)
	jst := clock.NewJST()

	authUseCase := authUC.New(userRepo, sessionRepo, cfg.JWT.Secret, zapLogger)
	accountUseCase := accountUC.New(userRepo, sessionRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, categoryRepo, jst, queryCache, recorder, zapLogger)
	categoryUseCase := categoryUC.New(categoryRepo, queryCache, recorder, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.Session.DefaultTTL),
		Account:  apiHandler.NewAccountHandler(accountUseCase, ctxAdapter, zapLogger),
		Task:     apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Category: apiHandler.NewCategoryHandler(categoryUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
