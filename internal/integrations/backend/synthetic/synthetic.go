// Package synthetic generates placeholder delivery data for development
// dashboards running without a backend.
package synthetic

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/BearBump/StoreDash/internal/integrations/backend"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/pkg/errors"
)

const (
	DefaultCount = 10
	// MaxCount bounds both listings and addressable record numbers.
	MaxCount = 1000
)

var (
	firstNames = []string{"Alice", "Bob", "Carla", "Dmitri", "Emma", "Farid", "Grace", "Hiro", "Ines", "Jonas"}
	lastNames  = []string{"Smith", "Novak", "Garcia", "Ivanov", "Brown", "Haddad", "Lee", "Tanaka", "Silva", "Berg"}
	carriers   = []string{"DHL", "FedEx", "UPS", "USPS", "DPD"}
	products   = []string{"T-Shirt", "Sneakers", "Backpack", "Headphones", "Coffee Mug", "Notebook", "Desk Lamp"}
	cities     = []struct {
		name     string
		lat, lng float64
	}{
		{"New York, NY", 40.7128, -74.0060},
		{"Chicago, IL", 41.8781, -87.6298},
		{"Austin, TX", 30.2672, -97.7431},
		{"Seattle, WA", 47.6062, -122.3321},
		{"Miami, FL", 25.7617, -80.1918},
	}
	eventLabels = map[models.DeliveryStatus][]models.EventLabel{
		models.DeliveryStatusPending:   {"Order received"},
		models.DeliveryStatusInTransit: {"Order received", "Picked up", "In transit"},
		models.DeliveryStatusDelivered: {"Order received", "Picked up", "In transit", "Out for delivery", "Delivered"},
		models.DeliveryStatusCancelled: {"Order received", "Cancelled"},
		models.DeliveryStatusReturned:  {"Order received", "Picked up", "In transit", "Returned to sender"},
	}
)

// Source is a deterministic-shaped generator: the same (store, status, count)
// always yields the same records relative to its clock.
type Source struct {
	count int
	now   func() time.Time
}

func New(count int) *Source {
	if count <= 0 {
		count = DefaultCount
	}
	return &Source{count: count, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock pins the generator's notion of "now".
func (s *Source) WithClock(now func() time.Time) *Source {
	s.now = now
	return s
}

func (s *Source) ListDeliveries(ctx context.Context, storeID string, p backend.FilterParams) ([]*models.DeliveryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := p.Count
	if n <= 0 {
		n = s.count
	}
	n = min(n, MaxCount)
	now := s.now()

	out := make([]*models.DeliveryRecord, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, s.generate(storeID, p.Status, i, now))
	}
	return out, nil
}

// generate builds record i of the (store, status filter) listing. Each
// record has its own seed, so a single record can be rebuilt from its id.
func (s *Source) generate(storeID string, filter models.DeliveryStatus, i int, now time.Time) *models.DeliveryRecord {
	r := rand.New(rand.NewSource(seed(storeID, string(filter), strconv.Itoa(i))))
	status := filter
	if status == "" {
		status = models.DeliveryStatuses[r.Intn(len(models.DeliveryStatuses))]
	}
	d := s.record(r, storeID, i, status, now)
	d.ID = formatID(storeID, filter, i)
	return d
}

func (s *Source) record(r *rand.Rand, storeID string, i int, status models.DeliveryStatus, now time.Time) *models.DeliveryRecord {
	created := now.Add(-time.Duration(1+r.Intn(14*24)) * time.Hour)
	eta := created.Add(time.Duration(48+r.Intn(96)) * time.Hour)
	first := firstNames[r.Intn(len(firstNames))]
	last := lastNames[r.Intn(len(lastNames))]
	city := cities[r.Intn(len(cities))]

	d := &models.DeliveryRecord{
		ID:             strconv.Itoa(i),
		StoreID:        storeID,
		TrackingNumber: fmt.Sprintf("TRK-%06d", 100000+r.Intn(900000)),
		OrderNumber:    fmt.Sprintf("ORD-%05d", 10000+i),
		Customer: &models.Customer{
			Name:  first + " " + last,
			Email: strings.ToLower(first+"."+last) + "@example.com",
			Phone: fmt.Sprintf("+1-555-%04d", r.Intn(10000)),
		},
		CarrierName:       carriers[r.Intn(len(carriers))],
		Status:            status,
		CreatedAt:         created,
		EstimatedDelivery: &eta,
	}

	if status == models.DeliveryStatusDelivered {
		actual := eta.Add(-time.Duration(r.Intn(24)) * time.Hour)
		if actual.After(now) {
			actual = now
		}
		d.ActualDelivery = &actual
	}
	if status == models.DeliveryStatusInTransit || status == models.DeliveryStatusDelivered {
		upd := now.Add(-time.Duration(r.Intn(180)) * time.Minute)
		d.CurrentLocation = &models.Location{
			Latitude:    city.lat + (r.Float64()-0.5)/10,
			Longitude:   city.lng + (r.Float64()-0.5)/10,
			Address:     city.name,
			LastUpdated: &upd,
		}
	}

	items := 1 + r.Intn(3)
	for j := 0; j < items; j++ {
		d.Items = append(d.Items, models.DeliveryItem{
			ProductName: products[r.Intn(len(products))],
			Quantity:    1 + r.Intn(4),
			Weight:      float64(1+r.Intn(50)) / 10,
		})
	}
	return d
}

// GetDelivery rebuilds the listed record addressed by id.
func (s *Source) GetDelivery(ctx context.Context, id string) (*models.DeliveryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	storeID, filter, idx, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.generate(storeID, filter, idx, s.now()), nil
}

func (s *Source) GetHistory(ctx context.Context, id string) ([]*models.TrackingEvent, error) {
	d, err := s.GetDelivery(ctx, id)
	if err != nil {
		return nil, err
	}
	labels := eventLabels[d.Status]
	end := s.now()
	if d.CurrentLocation != nil && d.CurrentLocation.LastUpdated != nil {
		end = *d.CurrentLocation.LastUpdated
	}
	span := end.Sub(d.CreatedAt)
	out := make([]*models.TrackingEvent, 0, len(labels))
	for i, l := range labels {
		ts := d.CreatedAt
		if len(labels) > 1 {
			ts = d.CreatedAt.Add(span * time.Duration(i) / time.Duration(len(labels)-1))
		}
		loc := "Warehouse"
		if d.CurrentLocation != nil && i > 0 {
			loc = d.CurrentLocation.Address
		}
		out = append(out, &models.TrackingEvent{
			ID:          fmt.Sprintf("%s-ev%d", id, i+1),
			Timestamp:   ts,
			Status:      l,
			Location:    loc,
			Description: string(l),
		})
	}
	return out, nil
}

func (s *Source) UpdateStatus(ctx context.Context, id string, status models.DeliveryStatus) error {
	if !status.Valid() {
		return errors.Wrapf(models.ErrValidation, "unknown status %q", status)
	}
	return ctx.Err()
}

func (s *Source) Notify(ctx context.Context, id string, notificationType string) error {
	return ctx.Err()
}

func (s *Source) MapDeliveries(ctx context.Context, storeID string, status models.DeliveryStatus) ([]*models.MapPoint, error) {
	ds, err := s.ListDeliveries(ctx, storeID, backend.FilterParams{Status: status})
	if err != nil {
		return nil, err
	}
	out := make([]*models.MapPoint, 0, len(ds))
	for _, d := range ds {
		if d.CurrentLocation == nil {
			continue
		}
		out = append(out, &models.MapPoint{
			DeliveryID:     d.ID,
			TrackingNumber: d.TrackingNumber,
			Status:         d.Status,
			Latitude:       d.CurrentLocation.Latitude,
			Longitude:      d.CurrentLocation.Longitude,
			Address:        d.CurrentLocation.Address,
		})
	}
	return out, nil
}

func (s *Source) Partners(ctx context.Context, storeID string) ([]*models.DeliveryPartner, error) {
	out := make([]*models.DeliveryPartner, 0, len(carriers))
	for i, c := range carriers {
		out = append(out, &models.DeliveryPartner{
			ID:     fmt.Sprintf("partner-%d", i+1),
			Name:   c,
			Code:   strings.ToLower(c),
			Active: true,
		})
	}
	return out, ctx.Err()
}

func seed(parts ...string) int64 {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte("|"))
	}
	return int64(h.Sum64() & (1<<63 - 1))
}

// Ids are "<storeID>:<n>" for unfiltered listings and
// "<storeID>:<STATUS>:<n>" for listings filtered by status; the store part
// is omitted when empty. n runs from 1 to MaxCount.
func formatID(storeID string, filter models.DeliveryStatus, n int) string {
	parts := make([]string, 0, 3)
	if storeID != "" {
		parts = append(parts, storeID)
	}
	if filter != "" {
		parts = append(parts, string(filter))
	}
	return strings.Join(append(parts, strconv.Itoa(n)), ":")
}

func parseID(id string) (string, models.DeliveryStatus, int, error) {
	rest, num := "", id
	if i := strings.LastIndexByte(id, ':'); i >= 0 {
		rest, num = id[:i], id[i+1:]
	}
	n, err := strconv.Atoi(num)
	if err != nil || n <= 0 || n > MaxCount {
		return "", "", 0, errors.Wrapf(models.ErrNotFound, "synthetic delivery %q", id)
	}

	storeID, tail := "", rest
	if i := strings.LastIndexByte(rest, ':'); i >= 0 {
		storeID, tail = rest[:i], rest[i+1:]
	}
	filter := models.DeliveryStatus(tail)
	if !filter.Valid() {
		storeID, filter = rest, ""
	}
	return storeID, filter, n, nil
}
