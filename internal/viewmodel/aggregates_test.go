package viewmodel

import (
	"testing"
	"time"

	"github.com/BearBump/StoreDash/internal/models"
	"github.com/stretchr/testify/require"
)

func ago(now time.Time, d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func TestTimeSince_Bands(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "Just now"},
		{59 * time.Second, "Just now"},
		{60 * time.Second, "1 minute ago"},
		{119 * time.Second, "1 minute ago"},
		{2 * time.Minute, "2 minutes ago"},
		{59*time.Minute + 59*time.Second, "59 minutes ago"},
		{time.Hour, "1 hour ago"},
		{7199 * time.Second, "1 hour ago"},
		{2 * time.Hour, "2 hours ago"},
		{23*time.Hour + 59*time.Minute, "23 hours ago"},
		{24 * time.Hour, "Jun 14, 2025"},
		{40 * 24 * time.Hour, "May 6, 2025"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, TimeSince(ago(now, c.d), now), c.d.String())
	}
}

func TestTimeSince_FutureClampsToJustNow(t *testing.T) {
	now := time.Now()
	require.Equal(t, "Just now", TimeSince(ago(now, -10*time.Minute), now))
	require.Equal(t, "Just now", TimeSince(ago(now, -72*time.Hour), now))
}

func TestTimeSince_Unknown(t *testing.T) {
	require.Equal(t, UnknownTime, TimeSince(nil, time.Now()))
	require.Equal(t, UnknownTime, TimeSince(&time.Time{}, time.Now()))
	require.Equal(t, UnknownTime, TimeSinceString("", time.Now()))
	require.Equal(t, UnknownTime, TimeSinceString("yesterday", time.Now()))
}

func TestTimeSinceString(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	require.Equal(t, "5 minutes ago", TimeSinceString("2025-06-15T11:55:00Z", now))
	require.Equal(t, "Jun 1, 2025", TimeSinceString("2025-06-01T08:00:00Z", now))
}

func TestTimeSince_DayOrMoreNeverRelative(t *testing.T) {
	now := time.Now()
	for h := 24; h < 24*400; h += 37 {
		s := TimeSince(ago(now, time.Duration(h)*time.Hour), now)
		require.NotContains(t, s, "ago")
		require.NotEqual(t, "Just now", s)
	}
}

func recordsWith(statuses ...models.DeliveryStatus) []*models.DeliveryRecord {
	out := make([]*models.DeliveryRecord, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, &models.DeliveryRecord{Status: s})
	}
	return out
}

func sum(m map[models.DeliveryStatus]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

func TestSummarize_Scenario(t *testing.T) {
	var in []*models.DeliveryRecord
	for i := 0; i < 3; i++ {
		in = append(in, recordsWith(models.DeliveryStatusDelivered)...)
	}
	for i := 0; i < 4; i++ {
		in = append(in, recordsWith(models.DeliveryStatusInTransit)...)
	}
	for i := 0; i < 3; i++ {
		in = append(in, recordsWith(models.DeliveryStatusPending)...)
	}

	got := Summarize(in)
	require.Equal(t, models.Summary{
		Total: 10,
		PerStatusCounts: map[models.DeliveryStatus]int{
			models.DeliveryStatusDelivered: 3,
			models.DeliveryStatusInTransit: 4,
			models.DeliveryStatusPending:   3,
			models.DeliveryStatusCancelled: 0,
			models.DeliveryStatusReturned:  0,
		},
	}, got)
}

func TestSummarize_Reconciles(t *testing.T) {
	cases := [][]*models.DeliveryRecord{
		nil,
		{},
		recordsWith(models.DeliveryStatusPending, "weird", "", models.DeliveryStatusReturned),
		append(recordsWith(models.DeliveryStatusCancelled), nil),
	}
	for _, in := range cases {
		s := Summarize(in)
		require.Equal(t, len(in), s.Total)
		require.Equal(t, s.Total, sum(s.PerStatusCounts))
	}

	s := Summarize(recordsWith("weird", ""))
	require.Equal(t, 2, s.PerStatusCounts[models.DeliveryStatusUnknown])
}

func TestRows(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	upd := now.Add(-3 * time.Minute)
	in := []*models.DeliveryRecord{
		{ID: "1", Status: models.DeliveryStatusInTransit, CreatedAt: now.Add(-48 * time.Hour),
			CurrentLocation: &models.Location{LastUpdated: &upd}},
		nil,
		{ID: "2", Status: "odd"},
	}
	rows := Rows(in, now)
	require.Len(t, rows, 2)
	require.Equal(t, "3 minutes ago", rows[0].LastUpdated)
	require.Equal(t, "Jun 13, 2025", rows[0].CreatedOn)
	require.Equal(t, "truck", rows[0].Badge.Icon)
	require.Equal(t, UnknownTime, rows[1].LastUpdated)
	require.Equal(t, "Odd", rows[1].Badge.Label)
}

func TestTimeline_SortedAscending(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	in := []*models.TrackingEvent{
		{ID: "b", Timestamp: now.Add(-time.Minute), Status: "Out for delivery"},
		nil,
		{ID: "a", Timestamp: now.Add(-2 * time.Hour), Status: "Picked up"},
	}
	out := Timeline(in, now)
	require.Len(t, out, 2)
	require.Equal(t, "a", out[0].ID)
	require.Equal(t, "2 hours ago", out[0].Ago)
	require.Equal(t, "1 minute ago", out[1].Ago)
}
