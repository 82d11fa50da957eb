package refresher

import (
	"sync"
	"time"
)

type PlannerConfig struct {
	Backoff1 time.Duration // default: 5 minutes
	Backoff2 time.Duration // default: 15 minutes
	Backoff3 time.Duration // default: 30 minutes
	Backoff4 time.Duration // default: 60 minutes
}

func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		Backoff1: 5 * time.Minute,
		Backoff2: 15 * time.Minute,
		Backoff3: 30 * time.Minute,
		Backoff4: 60 * time.Minute,
	}
}

// Planner tracks per-store failures. A store whose refresh failed is not
// due again until its backoff delay has passed; a success resets it.
type Planner struct {
	cfg PlannerConfig

	mu    sync.Mutex
	fails map[string]int
	next  map[string]time.Time
}

func NewPlanner(cfg PlannerConfig) *Planner {
	def := DefaultPlannerConfig()
	if cfg.Backoff1 <= 0 {
		cfg.Backoff1 = def.Backoff1
	}
	if cfg.Backoff2 <= 0 {
		cfg.Backoff2 = def.Backoff2
	}
	if cfg.Backoff3 <= 0 {
		cfg.Backoff3 = def.Backoff3
	}
	if cfg.Backoff4 <= 0 {
		cfg.Backoff4 = def.Backoff4
	}
	return &Planner{cfg: cfg, fails: make(map[string]int), next: make(map[string]time.Time)}
}

func (p *Planner) BackoffDelay(failCount int) time.Duration {
	switch {
	case failCount <= 1:
		return p.cfg.Backoff1
	case failCount == 2:
		return p.cfg.Backoff2
	case failCount == 3:
		return p.cfg.Backoff3
	default:
		return p.cfg.Backoff4
	}
}

func (p *Planner) Due(storeID string, now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	next, ok := p.next[storeID]
	return !ok || !now.Before(next)
}

func (p *Planner) Success(storeID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.fails, storeID)
	delete(p.next, storeID)
}

// Failure records a failed refresh and returns when the store is due again.
func (p *Planner) Failure(storeID string, now time.Time) time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fails[storeID]++
	next := now.Add(p.BackoffDelay(p.fails[storeID]))
	p.next[storeID] = next
	return next
}

func (p *Planner) Failures(storeID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fails[storeID]
}
