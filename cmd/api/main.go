package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api/handler"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/application"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/config"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-cinema-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/worker"
)

func main() {
	// .env は任意（本番では環境変数を直接使う）
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.Env))
	defer logger.Sync()

	m := metrics.Init()

	// DB接続とマイグレーション
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("DB接続エラー", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	seatRepo := postgres.NewSeatRepository(db)

	// Redis は任意。使えない場合は分散ロックとキャッシュなしで動かす
	var (
		redisClient *goredis.Client
		lockManager redisinfra.LockManagerInterface
		catalog     seat.Catalog = seatRepo
	)
	redisClient, err = redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("Redisに接続できません。分散ロックと座席キャッシュを無効化します", zap.Error(err))
	} else {
		defer redisClient.Close()
		lockManager = redisinfra.NewLockManager(redisClient)
		catalog = redisinfra.NewCachedCatalog(seatRepo, redisinfra.NewSeatCatalogCache(redisClient), cfg.Booking.CatalogCacheTTL)
	}

	opts := []application.Option{
		application.WithLocation(cfg.Booking.Location()),
		application.WithLockTTL(cfg.Booking.LockTTL),
		application.WithMaxSeats(cfg.Booking.MaxSeatsPerLock),
		application.WithScheduleLockTTL(cfg.Booking.ScheduleLockTTL),
		application.WithMetrics(m),
	}

	// ロックイベントの送信先（任意）
	if cfg.RabbitMQ.Enabled() {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			logger.Warn("RabbitMQに接続できません。イベント送信を無効化します", zap.Error(err))
		} else {
			defer pub.Close()
			opts = append(opts, application.WithPublisher(pub))
		}
	}

	// リポジトリとサービス
	txManager := postgres.NewTxManager(db)
	showtimeRepo := postgres.NewShowtimeRepository(db)
	movieRepo := postgres.NewMovieRepository(db)
	lockRepo := postgres.NewSeatLockRepository(db)

	scheduleService := application.NewScheduleService(showtimeRepo, movieRepo, lockManager, opts...)
	seatLockService := application.NewSeatLockService(txManager, lockRepo, showtimeRepo, catalog, opts...)
	bookingService := application.NewBookingService(txManager, lockRepo, opts...)

	// ヘルスチェック
	checks := map[string]handler.Checker{
		"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) }
	}

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	middleware.SetupMiddleware(e, cfg.Auth.JWTSecret)
	e.Use(middleware.PrometheusMiddleware(m))

	e.GET("/health", handler.NewHealthHandler(checks).Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(cfg.Metrics))

	handler.RegisterRoutes(e.Group("/api/v1"), handler.Handlers{
		Showtime: handler.NewShowtimeHandler(scheduleService),
		SeatLock: handler.NewSeatLockHandler(seatLockService),
		Booking:  handler.NewBookingHandler(bookingService),
	})

	// 期限切れロックのスイーパー
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper := worker.NewExpiredLockSweeper(seatLockService, cfg.Booking.SweepInterval, cfg.Booking.SweepBatchSize)
	go sweeper.Start(ctx)

	// Graceful shutdown
	go func() {
		logger.Info("サーバー起動", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")
	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
