package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/khushalb002/MMSpace-sub000/internal/api"
	"github.com/khushalb002/MMSpace-sub000/internal/auth"
	"github.com/khushalb002/MMSpace-sub000/internal/cache"
	"github.com/khushalb002/MMSpace-sub000/internal/config"
	"github.com/khushalb002/MMSpace-sub000/internal/events"
	"github.com/khushalb002/MMSpace-sub000/internal/logger"
	"github.com/khushalb002/MMSpace-sub000/internal/metrics"
	"github.com/khushalb002/MMSpace-sub000/internal/middleware"
	"github.com/khushalb002/MMSpace-sub000/internal/repository"
	"github.com/khushalb002/MMSpace-sub000/internal/service"
	"github.com/khushalb002/MMSpace-sub000/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zl, err := logger.New(cfg.App.Development())
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	mc, err := repository.NewMongoClient(cfg.Mongo.URI)
	if err != nil {
		zl.Fatalw("mongo init", "error", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	db := mc.Database(cfg.Mongo.DB)
	msgRepo := repository.NewMessageRepository(db.Collection("messages"))
	profRepo := repository.NewProfileRepository(db)

	identity := service.NewIdentityResolver(profRepo)
	authz := service.NewAuthorizer(profRepo, identity)
	norm := service.NewNormalizer(profRepo)

	presence := cache.NewPresenceStore(rdb, cfg.Redis.Prefix)
	wsrv := ws.NewServer(identity, authz, presence, zl, cfg.PingInterval, cfg.WriteDeadline, cfg.WS.MaxMessageSizeBytes)

	instanceID := uuid.NewString()
	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, instanceID)
	consumer := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, instanceID, wsrv.Hub, zl)

	fanout := service.NewDispatcher(profRepo, wsrv.Hub, zl)
	svc := service.NewMessageService(msgRepo, authz, norm, fanout, producer, zl)

	jv := auth.NewValidator(cfg.JWT.Secret)
	limiter := middleware.NewRateLimiter(rdb, cfg.Redis.Prefix+":ratelimit", cfg.App.RateLimitPerMin, time.Minute)

	app := api.NewServer(svc, wsrv, jv, presence, limiter, zl)

	consumeCtx, stopConsumer := context.WithCancel(context.Background())
	go consumer.Start(consumeCtx)

	metricsSrv := &http.Server{Addr: ":" + strconv.Itoa(cfg.App.MetricsPort), Handler: metrics.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Errorw("metrics server", "error", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.App.PortString()); err != nil {
			zl.Fatalw("server listen", "error", err)
		}
	}()
	zl.Infow("messaging service started", "port", cfg.App.Port, "instance", instanceID)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = app.ShutdownWithContext(ctx)
	stopConsumer()
	_ = consumer.Close()
	_ = producer.Close()
	_ = metricsSrv.Shutdown(ctx)
	zl.Info("messaging service stopped")
}
