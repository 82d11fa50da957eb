package deliveries

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/BearBump/StoreDash/internal/broker/messages"
	"github.com/BearBump/StoreDash/internal/cache"
	"github.com/BearBump/StoreDash/internal/metrics"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/BearBump/StoreDash/internal/viewmodel"
	"github.com/pkg/errors"
)

// SnapshotStore keeps the latest refresher snapshot per store.
type SnapshotStore struct {
	cache cache.BytesCache
	ttl   time.Duration
}

func NewSnapshotStore(c cache.BytesCache, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SnapshotStore{cache: c, ttl: ttl}
}

func (st *SnapshotStore) Save(ctx context.Context, snap messages.DeliveriesRefreshed) error {
	if snap.StoreID == "" {
		return errors.Wrap(models.ErrValidation, "store_id is required")
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}
	if err := st.cache.Set(ctx, snapshotKey(snap.StoreID), b, st.ttl); err != nil {
		return errors.Wrap(err, "store snapshot")
	}
	return nil
}

func (st *SnapshotStore) Load(ctx context.Context, storeID string) (*messages.DeliveriesRefreshed, bool, error) {
	b, ok, err := st.cache.Get(ctx, snapshotKey(storeID))
	if err != nil || !ok {
		return nil, false, err
	}
	var snap messages.DeliveriesRefreshed
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, false, errors.Wrap(err, "unmarshal snapshot")
	}
	return &snap, true, nil
}

// HandleMessage is the Kafka handler for the deliveries-refreshed topic.
// Malformed payloads are logged and skipped so the partition keeps moving.
func (st *SnapshotStore) HandleMessage(ctx context.Context) func(key, value []byte) error {
	return func(_, value []byte) error {
		var snap messages.DeliveriesRefreshed
		if err := json.Unmarshal(value, &snap); err != nil {
			slog.Error("bad deliveries-refreshed message", "err", err)
			return nil
		}
		if snap.StoreID == "" {
			slog.Error("deliveries-refreshed message without store_id")
			return nil
		}
		if err := st.Save(ctx, snap); err != nil {
			return err
		}
		metrics.SnapshotsStoredTotal.Inc()
		return nil
	}
}

func snapshotKey(storeID string) string {
	return fmt.Sprintf("deliveries:%s:active", storeID)
}

// Active is what GET /stores/{storeID}/deliveries/active serves.
type Active struct {
	StoreID      string                   `json:"storeId"`
	RefreshedAt  time.Time                `json:"refreshedAt"`
	FromSnapshot bool                     `json:"fromSnapshot"`
	Synthetic    bool                     `json:"synthetic"`
	Summary      models.Summary           `json:"summary"`
	Deliveries   []*models.DeliveryRecord `json:"deliveries"`
}

// ActiveDeliveries answers from the cached refresher snapshot when one is
// present and fetches live otherwise.
func (s *Service) ActiveDeliveries(ctx context.Context, storeID string) (*Active, error) {
	if storeID == "" {
		return nil, errors.Wrap(models.ErrValidation, "storeId is required")
	}
	if s.snapshots != nil {
		snap, ok, err := s.snapshots.Load(ctx, storeID)
		if err != nil {
			slog.Warn("snapshot read failed", "store_id", storeID, "err", err)
		}
		if ok {
			return &Active{
				StoreID:      storeID,
				RefreshedAt:  snap.RefreshedAt,
				FromSnapshot: true,
				Synthetic:    snap.Synthetic,
				Summary:      snap.Summary,
				Deliveries:   snap.Deliveries,
			}, nil
		}
	}

	res, err := s.FetchActive(ctx, storeID)
	out := &Active{
		StoreID:     storeID,
		RefreshedAt: s.now(),
		Synthetic:   res.Synthetic,
		Summary:     viewmodel.Summarize(res.Records),
		Deliveries:  res.Records,
	}
	return out, err
}
