package main

import (
	"context"
	"time"

	"github.com/BearBump/StoreDash/config"
	"github.com/BearBump/StoreDash/internal/auth"
	"github.com/BearBump/StoreDash/internal/broker/kafka"
	"github.com/BearBump/StoreDash/internal/cache/rediscache"
	"github.com/BearBump/StoreDash/internal/integrations/backend/httpapi"
	"github.com/BearBump/StoreDash/internal/integrations/backend/synthetic"
	"github.com/BearBump/StoreDash/internal/services/deliveries"
	"github.com/BearBump/StoreDash/internal/services/refresher"
	"github.com/pkg/errors"
)

type refresherFactories struct {
	newProducer    func(cfg *config.Config) refresher.Producer
	newRateLimiter func(cfg *config.Config) refresher.RateLimiter
	newFetcher     func(cfg *config.Config) (refresher.Fetcher, error)
}

func defaultRefresherFactories() refresherFactories {
	return refresherFactories{
		newProducer: func(cfg *config.Config) refresher.Producer {
			return kafka.NewProducer(cfg.Kafka.Brokers())
		},
		newRateLimiter: func(cfg *config.Config) refresher.RateLimiter {
			return rediscache.NewRateLimiter(cfg.Redis.Addr())
		},
		newFetcher: func(cfg *config.Config) (refresher.Fetcher, error) {
			mode, err := deliveries.ParseMode(cfg.Dashboard.DataSourceMode)
			if err != nil {
				return nil, err
			}
			client := httpapi.New(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutSeconds)*time.Second)
			return deliveries.New(client, synthetic.New(cfg.Dashboard.FallbackCount), nil, nil, deliveries.Options{
				Mode:          mode,
				FallbackCount: cfg.Dashboard.FallbackCount,
			}), nil
		},
	}
}

func buildRefresher(cfg *config.Config, f refresherFactories) (*refresher.Refresher, error) {
	topic := cfg.Kafka.DeliveriesRefreshedTopicName
	if topic == "" {
		topic = "deliveries.refreshed"
	}
	interval := time.Duration(cfg.Refresher.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = refresher.DefaultInterval
	}

	fetcher, err := f.newFetcher(cfg)
	if err != nil {
		return nil, err
	}

	r := refresher.New(fetcher, f.newProducer(cfg), f.newRateLimiter(cfg), topic, cfg.Refresher.StoreIDs).
		WithSettings(interval, cfg.Refresher.Concurrency, int64(cfg.Refresher.RateLimitPerMinute)).
		WithPlanner(refresher.PlannerConfig{
			Backoff1: time.Duration(cfg.Refresher.Backoff1Seconds) * time.Second,
			Backoff2: time.Duration(cfg.Refresher.Backoff2Seconds) * time.Second,
			Backoff3: time.Duration(cfg.Refresher.Backoff3Seconds) * time.Second,
			Backoff4: time.Duration(cfg.Refresher.Backoff4Seconds) * time.Second,
		})
	return r, nil
}

// RunRefresher runs r until ctx is done. Backend calls authenticate with the
// configured service token, refreshed from backend.token_file when set.
func RunRefresher(ctx context.Context, cfg *config.Config, r *refresher.Refresher) error {
	creds, err := auth.ServiceCredentials(cfg.Backend.Token, cfg.Backend.TokenFile)
	if err != nil {
		return errors.Wrap(err, "service credentials")
	}
	if creds != nil {
		ctx = auth.WithTokenSource(ctx, creds)
	}
	return r.Run(ctx)
}
