package refresher

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/StoreDash/internal/broker/messages"
	"github.com/BearBump/StoreDash/internal/cache/rediscache"
	"github.com/BearBump/StoreDash/internal/metrics"
	"github.com/BearBump/StoreDash/internal/services/deliveries"
	"github.com/BearBump/StoreDash/internal/viewmodel"
	"github.com/pkg/errors"
)

const DefaultInterval = 2 * time.Minute

type Fetcher interface {
	FetchActive(ctx context.Context, storeID string) (deliveries.Result, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// Refresher periodically re-fetches the active deliveries of the configured
// stores and publishes each result as a DeliveriesRefreshed snapshot.
type Refresher struct {
	fetcher  Fetcher
	producer Producer
	rl       RateLimiter

	topic    string
	storeIDs []string

	planner *Planner

	interval           time.Duration
	concurrency        int
	rateLimitPerMinute int64
	publishAttempts    int

	now       func() time.Time
	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalCycles         atomic.Int64
	totalRefreshed      atomic.Int64
	totalSkipped        atomic.Int64
	totalErrors         atomic.Int64
	inFlight            atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(fetcher Fetcher, producer Producer, rl RateLimiter, topic string, storeIDs []string) *Refresher {
	return &Refresher{
		fetcher: fetcher, producer: producer, rl: rl, topic: topic,
		storeIDs:           storeIDs,
		planner:            NewPlanner(DefaultPlannerConfig()),
		interval:           DefaultInterval,
		concurrency:        4,
		rateLimitPerMinute: 60,
		publishAttempts:    5,
		now:                func() time.Time { return time.Now().UTC() },
		triggerCh:          make(chan struct{}, 1),
		startedAtUnixNano:  time.Now().UTC().UnixNano(),
	}
}

func (r *Refresher) WithSettings(interval time.Duration, concurrency int, rlPerMin int64) *Refresher {
	if interval > 0 {
		r.interval = interval
	}
	if concurrency > 0 {
		r.concurrency = concurrency
	}
	if rlPerMin > 0 {
		r.rateLimitPerMinute = rlPerMin
	}
	return r
}

func (r *Refresher) WithPlanner(cfg PlannerConfig) *Refresher {
	r.planner = NewPlanner(cfg)
	return r
}

// Trigger forces an immediate cycle over every store, ignoring backoff.
// Non-blocking; concurrent triggers collapse into one.
func (r *Refresher) Trigger() {
	r.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt      time.Time  `json:"startedAt"`
	LastCycleAt    *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt  *time.Time `json:"lastTriggerAt,omitempty"`
	Stores         int        `json:"stores"`
	TotalCycles    int64      `json:"totalCycles"`
	TotalRefreshed int64      `json:"totalRefreshed"`
	TotalSkipped   int64      `json:"totalSkipped"`
	TotalErrors    int64      `json:"totalErrors"`
	InFlight       int64      `json:"inFlight"`
	LastError      string     `json:"lastError,omitempty"`
}

func (r *Refresher) Stats() Stats {
	st := Stats{
		StartedAt:      time.Unix(0, r.startedAtUnixNano).UTC(),
		Stores:         len(r.storeIDs),
		TotalCycles:    r.totalCycles.Load(),
		TotalRefreshed: r.totalRefreshed.Load(),
		TotalSkipped:   r.totalSkipped.Load(),
		TotalErrors:    r.totalErrors.Load(),
		InFlight:       r.inFlight.Load(),
	}
	if n := r.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := r.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	r.lastErrorMu.Lock()
	st.LastError = r.lastError
	r.lastErrorMu.Unlock()
	return st
}

// Run refreshes once immediately, then on every tick until ctx ends.
func (r *Refresher) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()

	r.runOnce(ctx, false)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			r.runOnce(ctx, false)
		case <-r.triggerCh:
			r.runOnce(ctx, true)
		}
	}
}

func (r *Refresher) runOnce(ctx context.Context, force bool) {
	now := r.now()
	r.lastCycleUnixNano.Store(now.UnixNano())
	defer func() {
		r.totalCycles.Add(1)
		metrics.RefreshCyclesTotal.Inc()
	}()

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
	for _, storeID := range r.storeIDs {
		if !force && !r.planner.Due(storeID, now) {
			r.totalSkipped.Add(1)
			continue
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}
		storeID := storeID
		wg.Add(1)
		r.inFlight.Add(1)
		go func() {
			defer func() {
				r.inFlight.Add(-1)
				<-sem
				wg.Done()
			}()
			if err := r.refreshStore(ctx, storeID); err != nil {
				r.totalErrors.Add(1)
				r.setLastError(err)
				next := r.planner.Failure(storeID, r.now())
				slog.Error("refresh store", "store_id", storeID, "next_attempt", next, "error", err.Error())
				return
			}
			r.planner.Success(storeID)
		}()
	}
	wg.Wait()
}

func (r *Refresher) refreshStore(ctx context.Context, storeID string) error {
	now := r.now()

	if r.rl != nil && r.rateLimitPerMinute > 0 {
		key := rediscache.WindowKey("rl:backend", "refresher", now)
		allowed, n, err := r.rl.Allow(ctx, key, r.rateLimitPerMinute, 70*time.Second)
		if err != nil {
			metrics.RefreshErrorsTotal.WithLabelValues("ratelimit").Inc()
			return err
		}
		if !allowed {
			slog.Warn("refresh rate limit exceeded", "store_id", storeID, "count", n)
			r.totalSkipped.Add(1)
			return nil
		}
	}

	res, err := r.fetcher.FetchActive(ctx, storeID)
	if err != nil && !res.Synthetic {
		metrics.RefreshErrorsTotal.WithLabelValues("fetch").Inc()
		return err
	}

	msg := messages.DeliveriesRefreshed{
		StoreID:     storeID,
		RefreshedAt: now,
		Synthetic:   res.Synthetic,
		Summary:     viewmodel.Summarize(res.Records),
		Deliveries:  res.Records,
	}
	if err != nil {
		e := err.Error()
		msg.Error = &e
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal kafka msg")
	}
	if err := r.publish(ctx, []byte(storeID), b); err != nil {
		metrics.RefreshErrorsTotal.WithLabelValues("publish").Inc()
		return err
	}
	r.totalRefreshed.Add(1)
	return nil
}

// publish retries because the broker may not be ready right after startup.
func (r *Refresher) publish(ctx context.Context, key, value []byte) error {
	var pubErr error
	for i := 0; i < r.publishAttempts; i++ {
		if pubErr = r.producer.Publish(ctx, r.topic, key, value); pubErr == nil {
			return nil
		}
		if i == r.publishAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(pubErr, ctx.Err().Error())
		case <-time.After(time.Duration(150*(i+1)) * time.Millisecond):
		}
	}
	return pubErr
}

func (r *Refresher) setLastError(err error) {
	r.lastErrorMu.Lock()
	r.lastError = err.Error()
	r.lastErrorMu.Unlock()
}
