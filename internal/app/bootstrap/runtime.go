package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	httpadapter "github.com/Vishwanathanf22labs/queue-dashboard/internal/adapters/http"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/adapters/postgres"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/adapters/rediscache"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/adapters/redisqueue"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/application"
	"github.com/Vishwanathanf22labs/queue-dashboard/internal/domain"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	refresher  *application.Refresher
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping queue dashboard", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := redisqueue.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("init redis client: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	queueStore := redisqueue.NewStore(redisClient, cfg.QueuePrefix, map[domain.QueueName]string{
		domain.QueueRegular:   cfg.RegularQueueKey,
		domain.QueueWatchlist: cfg.WatchlistQueueKey,
	}, int64(cfg.ScanCount))

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			IndexMaxAge:      cfg.IndexMaxAge,
			BrandCacheMaxAge: cfg.BrandCacheMaxAge,
			PageCacheTTL:     cfg.PageCacheTTL,
			FetchBatchSize:   cfg.FetchBatchSize,
			StoreTimeout:     cfg.StoreTimeout,
			DefaultPageLimit: cfg.DefaultPageLimit,
			MaxPageLimit:     cfg.MaxPageLimit,
			HotPages:         cfg.HotPages,
			HotPageLimit:     cfg.HotPageLimit,
		},
		Store:     queueStore,
		Brands:    postgres.NewBrandRepository(db),
		PageStore: rediscache.NewPageStore(redisClient),
		Logger:    logger,
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	refresher := application.NewRefresher(logger, svc, cfg.RefreshInterval)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		refresher:  refresher,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("background refresher started", "interval", r.cfg.RefreshInterval.String())
		if err := r.refresher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Error("refresher stopped", "error", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}
