package deliveries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/StoreDash/internal/broker/messages"
	"github.com/BearBump/StoreDash/internal/cache/rediscache"
	"github.com/BearBump/StoreDash/internal/metrics"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/pkg/errors"
)

// UpdateStatus moves d to next through the backend and returns the updated
// copy; d itself is never modified. Illegal transitions are rejected before
// any backend call and a same-state request is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, d *models.DeliveryRecord, next models.DeliveryStatus) (*models.DeliveryRecord, error) {
	if d == nil || d.ID == "" {
		return nil, errors.Wrap(models.ErrValidation, "delivery is required")
	}
	if !next.Valid() {
		metrics.StatusUpdatesTotal.WithLabelValues("invalid").Inc()
		return nil, errors.Wrapf(models.ErrValidation, "unknown status %q", next)
	}
	if d.Status == next {
		metrics.StatusUpdatesTotal.WithLabelValues("noop").Inc()
		return d, nil
	}
	if !models.CanTransition(d.Status, next) {
		metrics.StatusUpdatesTotal.WithLabelValues("illegal").Inc()
		return nil, errors.Wrapf(models.ErrIllegalTransition, "%s -> %s", d.Status, next)
	}

	src, err := s.source()
	if err != nil {
		return nil, err
	}
	if err := src.UpdateStatus(ctx, d.ID, next); err != nil {
		metrics.StatusUpdatesTotal.WithLabelValues("error").Inc()
		return nil, errors.Wrap(err, "update status")
	}
	metrics.StatusUpdatesTotal.WithLabelValues("ok").Inc()

	now := s.now()
	updated := *d
	updated.Status = next
	if next == models.DeliveryStatusDelivered && updated.ActualDelivery == nil {
		updated.ActualDelivery = &now
	}

	s.publishStatusChanged(ctx, messages.DeliveryStatusChanged{
		DeliveryID: d.ID,
		StoreID:    d.StoreID,
		OldStatus:  d.Status,
		NewStatus:  next,
		ChangedAt:  now,
	})
	return &updated, nil
}

// ChangeStatus loads the delivery, applies UpdateStatus and re-reads its
// history. A failed history read does not undo the accepted update.
func (s *Service) ChangeStatus(ctx context.Context, id string, next models.DeliveryStatus) (*models.DeliveryRecord, []*models.TrackingEvent, error) {
	d, err := s.GetDelivery(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	updated, err := s.UpdateStatus(ctx, d, next)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.GetHistory(ctx, id)
	if err != nil {
		slog.Warn("history refetch failed", "delivery_id", id, "err", err)
		return updated, nil, nil
	}
	return updated, history, nil
}

func (s *Service) publishStatusChanged(ctx context.Context, msg messages.DeliveryStatusChanged) {
	if s.publisher == nil || s.opts.StatusTopic == "" {
		return
	}
	if err := s.publisher.PublishJSON(ctx, s.opts.StatusTopic, msg.DeliveryID, msg); err != nil {
		slog.Error("publish status change", "delivery_id", msg.DeliveryID, "err", err)
	}
}

// Notify asks the backend to message the customer. Requests beyond the
// per-minute limit for one delivery fail with ErrRateLimited.
func (s *Service) Notify(ctx context.Context, id, notificationType string) error {
	if id == "" {
		return errors.Wrap(models.ErrValidation, "delivery id is required")
	}
	notificationType = strings.TrimSpace(notificationType)
	if notificationType == "" {
		return errors.Wrap(models.ErrValidation, "notificationType is required")
	}

	if s.limiter != nil && s.opts.NotifyLimit > 0 {
		key := rediscache.WindowKey("rl:notify", id, s.now())
		ok, n, err := s.limiter.Allow(ctx, key, s.opts.NotifyLimit, time.Minute)
		switch {
		case err != nil:
			slog.Warn("notify rate limiter unavailable", "delivery_id", id, "err", err)
		case !ok:
			slog.Warn("notify rate limited", "delivery_id", id, "count", n)
			return errors.Wrapf(models.ErrRateLimited, "delivery %s", id)
		}
	}

	src, err := s.source()
	if err != nil {
		return err
	}
	if err := src.Notify(ctx, id, notificationType); err != nil {
		return errors.Wrap(err, "notify customer")
	}
	return nil
}
