package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/BearBump/StoreDash/internal/integrations/backend"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/pkg/errors"
)

// listEnvelope accepts both a bare JSON array and {"data": [...]} style bodies.
type listEnvelope[T any] struct {
	items []T
}

func (e *listEnvelope[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &e.items)
	}
	var wrapped struct {
		Data       []T `json:"data"`
		Deliveries []T `json:"deliveries"`
		Events     []T `json:"events"`
		History    []T `json:"history"`
		Partners   []T `json:"partners"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return err
	}
	for _, l := range [][]T{wrapped.Data, wrapped.Deliveries, wrapped.Events, wrapped.History, wrapped.Partners} {
		if l != nil {
			e.items = l
			return nil
		}
	}
	e.items = []T{}
	return nil
}

func (c *Client) ListDeliveries(ctx context.Context, storeID string, p backend.FilterParams) ([]*models.DeliveryRecord, error) {
	if storeID == "" {
		return nil, errors.Wrap(models.ErrValidation, "storeId is required")
	}
	var env listEnvelope[*models.DeliveryRecord]
	if err := c.getJSON(ctx, pathf("/delivery/store/%s", storeID), p.Query(), &env); err != nil {
		return nil, err
	}
	for _, d := range env.items {
		if d != nil && d.StoreID == "" {
			d.StoreID = storeID
		}
	}
	return env.items, nil
}

func (c *Client) GetDelivery(ctx context.Context, id string) (*models.DeliveryRecord, error) {
	var d models.DeliveryRecord
	if err := c.getJSON(ctx, pathf("/delivery/%s", id), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) GetHistory(ctx context.Context, id string) ([]*models.TrackingEvent, error) {
	var env listEnvelope[*models.TrackingEvent]
	if err := c.getJSON(ctx, pathf("/delivery/%s/history", id), nil, &env); err != nil {
		return nil, err
	}
	return env.items, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, status models.DeliveryStatus) error {
	body := struct {
		Status models.DeliveryStatus `json:"status"`
	}{Status: status}
	return c.sendJSON(ctx, http.MethodPut, pathf("/delivery/%s/status", id), body, nil)
}

func (c *Client) Notify(ctx context.Context, id string, notificationType string) error {
	body := struct {
		NotificationType string `json:"notificationType"`
	}{NotificationType: notificationType}
	return c.sendJSON(ctx, http.MethodPost, pathf("/delivery/%s/notify", id), body, nil)
}

func (c *Client) MapDeliveries(ctx context.Context, storeID string, status models.DeliveryStatus) ([]*models.MapPoint, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	var env listEnvelope[*models.MapPoint]
	if err := c.getJSON(ctx, pathf("/delivery/store/%s/map", storeID), q, &env); err != nil {
		return nil, err
	}
	return env.items, nil
}

func (c *Client) Partners(ctx context.Context, storeID string) ([]*models.DeliveryPartner, error) {
	var env listEnvelope[*models.DeliveryPartner]
	if err := c.getJSON(ctx, pathf("/delivery/partners/%s", storeID), nil, &env); err != nil {
		return nil, err
	}
	return env.items, nil
}
