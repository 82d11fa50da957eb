package viewmodel

import (
	"fmt"
	"slices"
	"time"

	"github.com/BearBump/StoreDash/internal/models"
)

const (
	UnknownTime = "Unknown"
	DateLayout  = "Jan 2, 2006"
)

// TimeSince renders how long ago t happened relative to now.
// Future timestamps are treated as "Just now"; a day or more shows the date.
func TimeSince(t *time.Time, now time.Time) string {
	if t == nil || t.IsZero() {
		return UnknownTime
	}
	minutes := int(now.Sub(*t) / time.Minute)
	switch {
	case minutes < 1:
		return "Just now"
	case minutes == 1:
		return "1 minute ago"
	case minutes < 60:
		return fmt.Sprintf("%d minutes ago", minutes)
	case minutes < 120:
		return "1 hour ago"
	case minutes < 24*60:
		return fmt.Sprintf("%d hours ago", minutes/60)
	default:
		return FormatDate(*t)
	}
}

// TimeSinceString accepts an RFC3339 timestamp; anything unparsable is Unknown.
func TimeSinceString(raw string, now time.Time) string {
	if raw == "" {
		return UnknownTime
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return UnknownTime
	}
	return TimeSince(&t, now)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Summarize counts records per status. Every workflow status is present;
// missing or unrecognised statuses go to the UNKNOWN bucket, which only
// appears when non-empty. The counts always add up to Total.
func Summarize(records []*models.DeliveryRecord) models.Summary {
	counts := make(map[models.DeliveryStatus]int, len(models.DeliveryStatuses)+1)
	for _, s := range models.DeliveryStatuses {
		counts[s] = 0
	}
	for _, r := range records {
		if r == nil || !r.Status.Valid() {
			counts[models.DeliveryStatusUnknown]++
			continue
		}
		counts[r.Status]++
	}
	return models.Summary{Total: len(records), PerStatusCounts: counts}
}

// DeliveryRow is one rendered line of the deliveries table.
type DeliveryRow struct {
	*models.DeliveryRecord
	Badge       Badge  `json:"badge"`
	LastUpdated string `json:"lastUpdated"`
	CreatedOn   string `json:"createdOn"`
}

func Rows(records []*models.DeliveryRecord, now time.Time) []DeliveryRow {
	out := make([]DeliveryRow, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		row := DeliveryRow{
			DeliveryRecord: r,
			Badge:          BadgeFor(string(r.Status)),
			LastUpdated:    TimeSince(r.LastUpdated(), now),
		}
		if !r.CreatedAt.IsZero() {
			row.CreatedOn = FormatDate(r.CreatedAt)
		}
		out = append(out, row)
	}
	return out
}

// TimelineEntry is one rendered history milestone.
type TimelineEntry struct {
	models.TrackingEvent
	Ago string `json:"ago"`
}

// Timeline orders events oldest first.
func Timeline(events []*models.TrackingEvent, now time.Time) []TimelineEntry {
	out := make([]TimelineEntry, 0, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		ts := e.Timestamp
		out = append(out, TimelineEntry{TrackingEvent: *e, Ago: TimeSince(&ts, now)})
	}
	slices.SortStableFunc(out, func(a, b TimelineEntry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}
