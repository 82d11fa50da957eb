package deliveries

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BearBump/StoreDash/internal/integrations/backend"
	"github.com/BearBump/StoreDash/internal/metrics"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/BearBump/StoreDash/internal/viewmodel"
	"github.com/pkg/errors"
)

// ErrStale is returned to a Reload that a newer Reload superseded.
var ErrStale = errors.New("superseded by a newer request")

// Snapshot is the view state after a Reload.
type Snapshot struct {
	StoreID    string
	Generation uint64
	Records    []*models.DeliveryRecord
	Synthetic  bool
	LoadedAt   time.Time
	Err        error
}

// View is the delivery list of one store as one dashboard sees it. Only
// the latest Reload may publish its result; earlier in-flight requests are
// cancelled and their responses dropped.
type View struct {
	svc     *Service
	storeID string

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	state   Snapshot
	history map[string][]*models.TrackingEvent
}

func NewView(svc *Service, storeID string) *View {
	return &View{
		svc:     svc,
		storeID: storeID,
		state:   Snapshot{StoreID: storeID},
		history: make(map[string][]*models.TrackingEvent),
	}
}

func (v *View) Reload(ctx context.Context, p backend.FilterParams) (Snapshot, error) {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	if v.cancel != nil {
		v.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.mu.Unlock()

	res, err := v.svc.FetchCollection(reqCtx, v.storeID, p)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		cancel()
		metrics.StaleResponsesTotal.Inc()
		slog.Warn("stale deliveries response dropped", "store_id", v.storeID, "generation", gen, "current", v.gen)
		return Snapshot{}, ErrStale
	}
	cancel()
	v.cancel = nil

	v.state = Snapshot{
		StoreID:    v.storeID,
		Generation: gen,
		Records:    res.Records,
		Synthetic:  res.Synthetic,
		LoadedAt:   v.svc.now(),
		Err:        err,
	}
	return v.state, err
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Visible applies the free-text search and then the structured filters
// to the records of this snapshot.
func (s Snapshot) Visible(query string, f viewmodel.Filters) []*models.DeliveryRecord {
	return viewmodel.ApplyFilters(viewmodel.FilterCollection(s.Records, query), f)
}

func (v *View) Visible(query string, f viewmodel.Filters) []*models.DeliveryRecord {
	return v.Snapshot().Visible(query, f)
}

func (v *View) Summary() models.Summary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return viewmodel.Summarize(v.state.Records)
}

func (v *View) History(id string) ([]*models.TrackingEvent, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	h, ok := v.history[id]
	return h, ok
}

// UpdateStatus applies a workflow transition to a delivery of this view.
// On success the record is replaced in place and its history re-fetched;
// on failure the view is left untouched.
func (v *View) UpdateStatus(ctx context.Context, id string, next models.DeliveryStatus) (*models.DeliveryRecord, []*models.TrackingEvent, error) {
	d := v.find(id)
	if d == nil {
		var err error
		if d, err = v.svc.GetDelivery(ctx, id); err != nil {
			return nil, nil, err
		}
	}

	updated, err := v.svc.UpdateStatus(ctx, d, next)
	if err != nil {
		return nil, nil, err
	}
	if updated == d {
		h, _ := v.History(id)
		return d, h, nil
	}

	v.mu.Lock()
	recs := make([]*models.DeliveryRecord, len(v.state.Records))
	for i, r := range v.state.Records {
		if r != nil && r.ID == id {
			r = updated
		}
		recs[i] = r
	}
	v.state.Records = recs
	v.mu.Unlock()

	history, err := v.svc.GetHistory(ctx, id)
	if err != nil {
		slog.Warn("history refetch failed", "delivery_id", id, "err", err)
		return updated, nil, nil
	}
	v.mu.Lock()
	v.history[id] = history
	v.mu.Unlock()
	return updated, history, nil
}

func (v *View) find(id string) *models.DeliveryRecord {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, r := range v.state.Records {
		if r != nil && r.ID == id {
			return r
		}
	}
	return nil
}

// Views holds one View per (owner, store). Owners are dashboard sessions.
type Views struct {
	svc *Service
	max int

	mu    sync.Mutex
	views map[string]*View
}

func NewViews(svc *Service, max int) *Views {
	if max <= 0 {
		max = 1024
	}
	return &Views{svc: svc, max: max, views: make(map[string]*View)}
}

func (vs *Views) For(owner, storeID string) *View {
	key := owner + "|" + storeID
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if v, ok := vs.views[key]; ok {
		return v
	}
	if len(vs.views) >= vs.max {
		for k := range vs.views {
			delete(vs.views, k)
			break
		}
	}
	v := NewView(vs.svc, storeID)
	vs.views[key] = v
	return v
}

func (vs *Views) Len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.views)
}
