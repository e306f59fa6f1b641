package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"

	bookingpb "github.com/Leganyst/room-booking/internal/api/booking/v1"
	"github.com/Leganyst/room-booking/internal/booking"
	"github.com/Leganyst/room-booking/internal/config"
	"github.com/Leganyst/room-booking/internal/db"
	"github.com/Leganyst/room-booking/internal/delivery/rest"
	"github.com/Leganyst/room-booking/internal/events"
	"github.com/Leganyst/room-booking/internal/logger"
	"github.com/Leganyst/room-booking/internal/model"
	"github.com/Leganyst/room-booking/internal/repository"
	"github.com/Leganyst/room-booking/internal/service"
)

func main() {
	// 1. Конфиг из env (.env, если есть).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Хранилище бронирований.
	store, gormDB, closeStore, err := openStore(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("open booking store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeStore()
	zapLogger.Info("booking store ready",
		zap.String("backend", cfg.Store.Backend),
		zap.Bool("networked", store.Networked()),
	)

	// 3. События: лог, журнал аудита (SQL), RabbitMQ.
	publishers := events.Multi{events.NewLogPublisher(zapLogger)}
	var history repository.EventRepository
	if gormDB != nil {
		history = repository.NewGormEventRepository(gormDB)
		publishers = append(publishers, events.NewAuditPublisher(history))
	}
	if cfg.RabbitMQ.URL != "" {
		conn, err := amqp091.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			zapLogger.Fatal("connect to rabbitMQ", zap.Error(err))
		}
		defer conn.Close()
		amqpPub, err := events.NewAMQPPublisher(conn, cfg.RabbitMQ.Exchange)
		if err != nil {
			zapLogger.Fatal("init rabbitMQ publisher", zap.Error(err))
		}
		defer amqpPub.Close()
		publishers = append(publishers, amqpPub)
	}

	// 4. Планировщик.
	auth, err := newAuthorizer(cfg.App)
	if err != nil {
		zapLogger.Fatal("init cancel authorizer", zap.Error(err))
	}
	validator, err := booking.NewValidator(cfg.Catalog)
	if err != nil {
		zapLogger.Fatal("init booking validator", zap.Error(err))
	}
	scheduler := service.NewScheduler(
		store,
		auth,
		validator,
		publishers,
		zapLogger,
		service.SchedulerConfig{Location: cfg.App.Location, StoreTimeout: cfg.Store.Timeout},
	)
	if err := scheduler.Start(ctx); err != nil {
		// Работаем дальше с пустым набором, ошибка видна в /healthz и логах.
		zapLogger.Error("initial bookings load failed", zap.Error(err))
	}
	defer scheduler.Close()

	// 5. gRPC-сервер.
	grpcServer := grpc.NewServer()
	bookingpb.RegisterBookingServiceServer(grpcServer, service.NewBookingService(scheduler))
	healthServer := health.NewServer()
	healthServer.SetServingStatus(bookingpb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.App.GRPCAddr)
	if err != nil {
		zapLogger.Fatal("listen grpc", zap.String("addr", cfg.App.GRPCAddr), zap.Error(err))
	}
	go func() {
		zapLogger.Info("gRPC server listening", zap.String("addr", cfg.App.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			zapLogger.Error("grpc serve", zap.Error(err))
			stop()
		}
	}()

	// 6. HTTP-сервер.
	handler := rest.NewBookingHandler(zapLogger, scheduler)
	handler.History = history
	httpServer := &http.Server{
		Addr: cfg.App.HTTPAddr,
		Handler: rest.NewRouter(handler, rest.RouterConfig{
			AllowedOrigins:  cfg.App.CORSOrigins,
			CancelRateLimit: cfg.App.CancelRateLimit,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLogger.Info("HTTP server listening", zap.String("addr", cfg.App.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("http serve", zap.Error(err))
			stop()
		}
	}()

	// 7. Грейсфул-шатдаун по сигналу.
	<-ctx.Done()
	zapLogger.Info("shutting down")

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Warn("http shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
}

// openStore подключает выбранный бэкенд. gormDB != nil только для SQL-бэкендов.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, *gorm.DB, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout)
	defer cancel()

	switch cfg.Store.Backend {
	case config.BackendPostgres, config.BackendSQLite:
		var (
			gormDB *gorm.DB
			err    error
		)
		if cfg.Store.Backend == config.BackendPostgres {
			gormDB, err = db.NewGormDB(&cfg.DB)
		} else {
			gormDB, err = db.NewSQLiteDB(cfg.DB.SQLitePath)
		}
		if err != nil {
			return nil, nil, nil, err
		}
		if err := model.AutoMigrate(gormDB); err != nil {
			return nil, nil, nil, err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, nil, err
		}
		repo := repository.NewGormBookingRepository(gormDB, cfg.Store.PollInterval, logger)
		return repo, gormDB, func() { sqlDB.Close() }, nil

	case config.BackendMongo:
		client, err := db.NewMongoClient(connectCtx, cfg.Mongo)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := repository.NewMongoBookingRepository(client, cfg.Mongo.Database, cfg.Mongo.Collection, logger)
		return repo, nil, func() { client.Disconnect(context.Background()) }, nil

	case config.BackendRedis:
		client, err := db.NewRedisClient(connectCtx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := repository.NewRedisBookingRepository(client, cfg.Redis.Prefix, logger)
		return repo, nil, func() { client.Close() }, nil

	default:
		return repository.NewLocalBookingRepository(cfg.Store.LocalPath), nil, func() {}, nil
	}
}

func newAuthorizer(app config.AppConfig) (booking.Authorizer, error) {
	if app.CancelSecretBcrypt != "" {
		return booking.NewBcryptSecret(app.CancelSecretBcrypt)
	}
	return booking.SharedSecret(app.CancelSecret), nil
}
