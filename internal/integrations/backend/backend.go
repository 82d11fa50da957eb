package backend

import (
	"context"
	"net/url"
	"time"

	"github.com/BearBump/StoreDash/internal/models"
)

// FilterParams are the server-side list filters of GET /delivery/store/{storeId}.
type FilterParams struct {
	Status models.DeliveryStatus
	Search string
	// Count is a hint for synthetic sources; the real backend ignores it.
	Count int
}

func (p FilterParams) Query() url.Values {
	q := url.Values{}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

// DataSource is what the deliveries service reads collections from.
// Both the REST client and the synthetic generator implement it.
type DataSource interface {
	ListDeliveries(ctx context.Context, storeID string, p FilterParams) ([]*models.DeliveryRecord, error)
}

// DeliveryBackend is the full delivery surface of the store backend.
type DeliveryBackend interface {
	DataSource
	GetDelivery(ctx context.Context, id string) (*models.DeliveryRecord, error)
	GetHistory(ctx context.Context, id string) ([]*models.TrackingEvent, error)
	UpdateStatus(ctx context.Context, id string, status models.DeliveryStatus) error
	Notify(ctx context.Context, id string, notificationType string) error
	MapDeliveries(ctx context.Context, storeID string, status models.DeliveryStatus) ([]*models.MapPoint, error)
	Partners(ctx context.Context, storeID string) ([]*models.DeliveryPartner, error)
}

// OrdersBackend covers order analytics and exports.
type OrdersBackend interface {
	OrderStats(ctx context.Context, storeID, timeRange string) (*models.OrderStats, error)
	ExportOrders(ctx context.Context, storeID string, format models.ExportFormat, filters url.Values) (*Export, error)
}

// ProfileBackend covers the signed-in user's profile.
type ProfileBackend interface {
	GetProfile(ctx context.Context) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, p models.UserProfile) (*models.UserProfile, error)
	UpdateProfilePicture(ctx context.Context, filename string, content []byte) (*models.UserProfile, error)
}

// Export is a downloaded binary blob.
type Export struct {
	ContentType string
	Filename    string
	Data        []byte
	FetchedAt   time.Time
}
