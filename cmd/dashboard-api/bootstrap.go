package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/StoreDash/config"
	dashboardapi "github.com/BearBump/StoreDash/internal/api/dashboard_api"
	"github.com/BearBump/StoreDash/internal/auth"
	"github.com/BearBump/StoreDash/internal/broker/kafka"
	"github.com/BearBump/StoreDash/internal/cache/rediscache"
	"github.com/BearBump/StoreDash/internal/integrations/backend/httpapi"
	"github.com/BearBump/StoreDash/internal/integrations/backend/synthetic"
	"github.com/BearBump/StoreDash/internal/services/deliveries"
	"github.com/BearBump/StoreDash/internal/session"
	"github.com/redis/go-redis/v9"
)

type dashboardAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     dashboardAPIOpts
	api      *dashboardapi.DashboardAPI
	handle   func(key, value []byte) error
	consumer *kafka.Consumer
	producer *kafka.Producer
	redis    *redis.Client
}

func mustBootstrapDashboardAPI() *dashboardAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}
	swaggerPath := os.Getenv("swaggerPath")
	if swaggerPath == "" {
		panic("swaggerPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("config parse error, %v", err))
	}
	setupLogger(cfg.Dashboard.LogLevel)

	httpAddr := cfg.Dashboard.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.Dashboard.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "dashboard-api"
	}
	refreshedTopic := cfg.Kafka.DeliveriesRefreshedTopicName
	if refreshedTopic == "" {
		refreshedTopic = "deliveries.refreshed"
	}
	statusTopic := cfg.Kafka.StatusChangedTopicName
	if statusTopic == "" {
		statusTopic = "delivery.status_changed"
	}
	mode, err := deliveries.ParseMode(cfg.Dashboard.DataSourceMode)
	if err != nil {
		panic(err)
	}

	rc := rediscache.NewClient(cfg.Redis.Addr())
	cache := rediscache.NewWithClient(rc)
	limiter := rediscache.NewRateLimiterWithClient(rc)

	producer := kafka.NewProducer(cfg.Kafka.Brokers())
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers(), refreshedTopic, consumerGroup)

	client := httpapi.New(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)
	snapshots := deliveries.NewSnapshotStore(cache, time.Duration(cfg.Dashboard.SnapshotTTLSeconds)*time.Second)

	svc := deliveries.New(client, synthetic.New(cfg.Dashboard.FallbackCount), producer, limiter, deliveries.Options{
		Mode:          mode,
		FallbackCount: cfg.Dashboard.FallbackCount,
		StatusTopic:   statusTopic,
		NotifyLimit:   int64(cfg.Dashboard.NotifyLimitPerMinute),
	}).WithSnapshots(snapshots)

	var defaultToken auth.TokenSource
	creds, err := auth.ServiceCredentials(cfg.Backend.Token, cfg.Backend.TokenFile)
	if err != nil {
		panic(err)
	}
	if creds != nil {
		defaultToken = creds
	}

	api := dashboardapi.New(dashboardapi.Deps{
		Deliveries:   svc,
		Orders:       client,
		Profile:      client,
		Sessions:     session.NewStore(cache, time.Duration(cfg.Dashboard.SessionTTLSeconds)*time.Second),
		DefaultToken: defaultToken,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &dashboardAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: dashboardAPIOpts{
			httpAddr:      httpAddr,
			swaggerPath:   swaggerPath,
			topic:         refreshedTopic,
			consumerGroup: consumerGroup,
		},
		api:      api,
		handle:   snapshots.HandleMessage(ctx),
		consumer: consumer,
		producer: producer,
		redis:    rc,
	}
}

func (a *dashboardAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.consumer != nil {
		_ = a.consumer.Close()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func (a *dashboardAPIApp) Run() error {
	return runDashboardAPI(a.ctx, a.opts, a.api, a.consumer, a.handle)
}
