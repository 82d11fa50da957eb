package deliveries

import (
	"context"
	"log/slog"
	"time"

	"github.com/BearBump/StoreDash/internal/integrations/backend"
	"github.com/BearBump/StoreDash/internal/metrics"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/pkg/errors"
)

// Mode selects where delivery collections are read from.
type Mode string

const (
	// ModeBackend reads from the store backend only.
	ModeBackend Mode = "backend"
	// ModeDevelopment reads from the store backend and falls back to
	// synthetic records when it fails.
	ModeDevelopment Mode = "development"
	// ModeSynthetic never calls the store backend.
	ModeSynthetic Mode = "synthetic"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeBackend, ModeDevelopment, ModeSynthetic:
		return m, nil
	case "":
		return ModeBackend, nil
	}
	return "", errors.Wrapf(models.ErrValidation, "unknown data source mode %q", s)
}

type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, v any) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type Options struct {
	Mode          Mode
	FallbackCount int
	// StatusTopic receives DeliveryStatusChanged; empty disables publishing.
	StatusTopic string
	// NotifyLimit caps customer notifications per delivery per minute; 0 disables.
	NotifyLimit int64
}

// Result is one fetched collection. Synthetic marks placeholder data.
type Result struct {
	Records   []*models.DeliveryRecord
	Synthetic bool
}

type Service struct {
	primary   backend.DeliveryBackend
	synthetic backend.DeliveryBackend
	publisher Publisher
	limiter   RateLimiter
	snapshots *SnapshotStore
	opts      Options
	now       func() time.Time
}

func New(primary, synthetic backend.DeliveryBackend, publisher Publisher, limiter RateLimiter, opts Options) *Service {
	if opts.Mode == "" {
		opts.Mode = ModeBackend
	}
	return &Service{
		primary:   primary,
		synthetic: synthetic,
		publisher: publisher,
		limiter:   limiter,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithSnapshots lets ActiveDeliveries answer from refresher snapshots.
func (s *Service) WithSnapshots(st *SnapshotStore) *Service {
	s.snapshots = st
	return s
}

func (s *Service) Mode() Mode { return s.opts.Mode }

var errNoBackend = errors.Wrap(models.ErrBackend, "no store backend configured")

// source is the backend used for single-delivery reads and writes. Only
// synthetic mode reads synthetic records; a missing source is an error.
func (s *Service) source() (backend.DeliveryBackend, error) {
	if s.opts.Mode == ModeSynthetic {
		if s.synthetic == nil {
			return nil, errors.Wrap(models.ErrBackend, "no synthetic source configured")
		}
		return s.synthetic, nil
	}
	if s.primary == nil {
		return nil, errNoBackend
	}
	return s.primary, nil
}

// FetchCollection makes exactly one primary call. In development mode a
// failed call is answered with synthetic records and the wrapped primary
// error is returned alongside them.
func (s *Service) FetchCollection(ctx context.Context, storeID string, p backend.FilterParams) (Result, error) {
	if storeID == "" {
		return Result{}, errors.Wrap(models.ErrValidation, "storeId is required")
	}
	if p.Status != "" && !p.Status.Valid() {
		return Result{}, errors.Wrapf(models.ErrValidation, "unknown status %q", p.Status)
	}

	if s.opts.Mode == ModeSynthetic {
		if s.synthetic == nil {
			return Result{Records: []*models.DeliveryRecord{}}, errors.Wrap(models.ErrBackend, "no synthetic source configured")
		}
		recs, err := s.synthetic.ListDeliveries(ctx, storeID, s.syntheticParams(p))
		observeFetch("synthetic", err)
		if err != nil {
			return Result{Records: []*models.DeliveryRecord{}}, errors.Wrap(err, "synthetic deliveries")
		}
		return Result{Records: recs, Synthetic: true}, nil
	}

	var recs []*models.DeliveryRecord
	err := errNoBackend
	if s.primary != nil {
		recs, err = s.primary.ListDeliveries(ctx, storeID, p)
		observeFetch("backend", err)
	}
	if err == nil {
		if recs == nil {
			recs = []*models.DeliveryRecord{}
		}
		return Result{Records: recs}, nil
	}
	err = errors.Wrap(err, "fetch deliveries")

	if s.opts.Mode != ModeDevelopment || s.synthetic == nil || ctx.Err() != nil {
		return Result{Records: []*models.DeliveryRecord{}}, err
	}

	slog.Warn("backend unavailable, serving synthetic deliveries", "store_id", storeID, "status", p.Status, "err", err)
	metrics.FallbacksTotal.Inc()
	fallback, ferr := s.synthetic.ListDeliveries(ctx, storeID, s.syntheticParams(p))
	observeFetch("synthetic", ferr)
	if ferr != nil {
		return Result{Records: []*models.DeliveryRecord{}}, err
	}
	return Result{Records: fallback, Synthetic: true}, err
}

func (s *Service) syntheticParams(p backend.FilterParams) backend.FilterParams {
	return backend.FilterParams{Status: p.Status, Count: s.opts.FallbackCount}
}

func observeFetch(source string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.FetchesTotal.WithLabelValues(source, result).Inc()
}

// FetchActive returns the non-terminal deliveries of a store using a
// single unfiltered fetch.
func (s *Service) FetchActive(ctx context.Context, storeID string) (Result, error) {
	res, err := s.FetchCollection(ctx, storeID, backend.FilterParams{})
	active := make([]*models.DeliveryRecord, 0, len(res.Records))
	for _, d := range res.Records {
		if d != nil && d.Status.Active() {
			active = append(active, d)
		}
	}
	res.Records = active
	return res, err
}

func (s *Service) GetDelivery(ctx context.Context, id string) (*models.DeliveryRecord, error) {
	if id == "" {
		return nil, errors.Wrap(models.ErrValidation, "delivery id is required")
	}
	src, err := s.source()
	if err != nil {
		return nil, err
	}
	d, err := src.GetDelivery(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get delivery")
	}
	return d, nil
}

func (s *Service) GetHistory(ctx context.Context, id string) ([]*models.TrackingEvent, error) {
	if id == "" {
		return nil, errors.Wrap(models.ErrValidation, "delivery id is required")
	}
	src, err := s.source()
	if err != nil {
		return nil, err
	}
	evs, err := src.GetHistory(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get history")
	}
	return evs, nil
}

func (s *Service) MapDeliveries(ctx context.Context, storeID string, status models.DeliveryStatus) ([]*models.MapPoint, error) {
	if storeID == "" {
		return nil, errors.Wrap(models.ErrValidation, "storeId is required")
	}
	if status != "" && !status.Valid() {
		return nil, errors.Wrapf(models.ErrValidation, "unknown status %q", status)
	}
	src, err := s.source()
	if err != nil {
		return nil, err
	}
	pts, err := src.MapDeliveries(ctx, storeID, status)
	if err != nil {
		return nil, errors.Wrap(err, "map deliveries")
	}
	return pts, nil
}

func (s *Service) Partners(ctx context.Context, storeID string) ([]*models.DeliveryPartner, error) {
	if storeID == "" {
		return nil, errors.Wrap(models.ErrValidation, "storeId is required")
	}
	src, err := s.source()
	if err != nil {
		return nil, err
	}
	ps, err := src.Partners(ctx, storeID)
	if err != nil {
		return nil, errors.Wrap(err, "delivery partners")
	}
	return ps, nil
}
