package viewmodel

import (
	"strings"
	"time"

	"github.com/BearBump/StoreDash/internal/models"
)

// FilterCollection narrows records by a free-text query over tracking number,
// order number, customer name and carrier name. Input order is kept; an empty
// query returns the input as is.
func FilterCollection(records []*models.DeliveryRecord, query string) []*models.DeliveryRecord {
	if query == "" {
		return records
	}
	q := strings.ToLower(query)
	out := make([]*models.DeliveryRecord, 0, len(records))
	for _, r := range records {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r *models.DeliveryRecord, q string) bool {
	if r == nil {
		return false
	}
	for _, f := range [...]string{r.TrackingNumber, r.OrderNumber, r.CustomerName(), r.CarrierName} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Filters are the structured narrowing options. Zero fields do not filter.
type Filters struct {
	Status  models.DeliveryStatus
	Partner string
	From    time.Time
	To      time.Time
}

func (f Filters) IsZero() bool {
	return f.Status == "" && f.Partner == "" && f.From.IsZero() && f.To.IsZero()
}

// ApplyFilters keeps records matching every non-zero filter. From/To bound
// CreatedAt inclusively.
func ApplyFilters(records []*models.DeliveryRecord, f Filters) []*models.DeliveryRecord {
	if f.IsZero() {
		return records
	}
	out := make([]*models.DeliveryRecord, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Partner != "" && !strings.EqualFold(r.CarrierName, f.Partner) {
			continue
		}
		if !f.From.IsZero() && r.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && r.CreatedAt.After(f.To) {
			continue
		}
		out = append(out, r)
	}
	return out
}
