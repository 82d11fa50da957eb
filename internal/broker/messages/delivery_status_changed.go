package messages

import (
	"time"

	"github.com/BearBump/StoreDash/internal/models"
)

// DeliveryStatusChanged is published after the backend accepted a status update.
type DeliveryStatusChanged struct {
	DeliveryID string                `json:"delivery_id"`
	StoreID    string                `json:"store_id,omitempty"`
	OldStatus  models.DeliveryStatus `json:"old_status"`
	NewStatus  models.DeliveryStatus `json:"new_status"`
	ChangedAt  time.Time             `json:"changed_at"`
}
