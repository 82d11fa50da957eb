package messages

import (
	"time"

	"github.com/BearBump/StoreDash/internal/models"
)

// DeliveriesRefreshed carries a store's active deliveries as seen by the
// refresher at RefreshedAt.
type DeliveriesRefreshed struct {
	StoreID     string                   `json:"store_id"`
	RefreshedAt time.Time                `json:"refreshed_at"`
	Synthetic   bool                     `json:"synthetic,omitempty"`
	Summary     models.Summary           `json:"summary"`
	Deliveries  []*models.DeliveryRecord `json:"deliveries"`

	Error *string `json:"error,omitempty"`
}
