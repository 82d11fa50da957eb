package dashboard_api

import (
	"net/http"
	"time"

	"github.com/BearBump/StoreDash/internal/integrations/backend"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/BearBump/StoreDash/internal/services/deliveries"
	"github.com/BearBump/StoreDash/internal/viewmodel"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

type listResponse struct {
	StoreID    string                  `json:"storeId"`
	Generation uint64                  `json:"generation"`
	Synthetic  bool                    `json:"synthetic"`
	Error      string                  `json:"error,omitempty"`
	Total      int                     `json:"total"`
	Summary    models.Summary          `json:"summary"`
	Visible    int                     `json:"visible"`
	Rows       []viewmodel.DeliveryRow `json:"rows"`
}

// listDeliveries reloads the caller's view of the store (status goes to the
// backend) and narrows it locally by q, partner and the created-at range.
func (a *DashboardAPI) listDeliveries(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")
	q := r.URL.Query()

	status, err := parseStatus(q.Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	from, err := parseDate(q.Get("from"), false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := parseDate(q.Get("to"), true)
	if err != nil {
		writeError(w, r, err)
		return
	}

	v := a.views.For(owner(r), storeID)
	snap, err := v.Reload(r.Context(), backend.FilterParams{Status: status})
	if err != nil && !snap.Synthetic {
		writeError(w, r, err)
		return
	}

	visible := snap.Visible(q.Get("q"), viewmodel.Filters{Partner: q.Get("partner"), From: from, To: to})
	writeJSON(w, http.StatusOK, listResponse{
		StoreID:    storeID,
		Generation: snap.Generation,
		Synthetic:  snap.Synthetic,
		Error:      errString(err),
		Total:      len(snap.Records),
		Summary:    viewmodel.Summarize(visible),
		Visible:    len(visible),
		Rows:       viewmodel.Rows(visible, a.now()),
	})
}

func (a *DashboardAPI) activeDeliveries(w http.ResponseWriter, r *http.Request) {
	active, err := a.svc.ActiveDeliveries(r.Context(), chi.URLParam(r, "storeID"))
	if err != nil && (active == nil || !active.Synthetic) {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activeResponse{
		Active: active,
		Error:  errString(err),
		Rows:   viewmodel.Rows(active.Deliveries, a.now()),
	})
}

type activeResponse struct {
	*deliveries.Active
	Error string                  `json:"error,omitempty"`
	Rows  []viewmodel.DeliveryRow `json:"rows"`
}

func (a *DashboardAPI) mapDeliveries(w http.ResponseWriter, r *http.Request) {
	status, err := parseStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	pts, err := a.svc.MapDeliveries(r.Context(), chi.URLParam(r, "storeID"), status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": pts})
}

func (a *DashboardAPI) partners(w http.ResponseWriter, r *http.Request) {
	ps, err := a.svc.Partners(r.Context(), chi.URLParam(r, "storeID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"partners": ps})
}

type deliveryResponse struct {
	Delivery     viewmodel.DeliveryRow     `json:"delivery"`
	NextStatuses []models.DeliveryStatus   `json:"nextStatuses"`
	History      []viewmodel.TimelineEntry `json:"history,omitempty"`
}

func (a *DashboardAPI) deliveryResponse(d *models.DeliveryRecord, history []*models.TrackingEvent) deliveryResponse {
	now := a.now()
	return deliveryResponse{
		Delivery:     viewmodel.Rows([]*models.DeliveryRecord{d}, now)[0],
		NextStatuses: models.NextStatuses(d.Status),
		History:      viewmodel.Timeline(history, now),
	}
}

func (a *DashboardAPI) getDelivery(w http.ResponseWriter, r *http.Request) {
	d, err := a.svc.GetDelivery(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.deliveryResponse(d, nil))
}

func (a *DashboardAPI) history(w http.ResponseWriter, r *http.Request) {
	evs, err := a.svc.GetHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": viewmodel.Timeline(evs, a.now())})
}

type statusRequest struct {
	Status  string `json:"status"`
	StoreID string `json:"storeId,omitempty"`
}

// updateStatus goes through the caller's store view when storeId is given
// so the cached list reflects the change.
func (a *DashboardAPI) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req statusRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	next, ok := models.ParseDeliveryStatus(req.Status)
	if !ok {
		writeError(w, r, errors.Wrapf(models.ErrValidation, "unknown status %q", req.Status))
		return
	}

	var (
		d       *models.DeliveryRecord
		history []*models.TrackingEvent
		err     error
	)
	if req.StoreID != "" {
		d, history, err = a.views.For(owner(r), req.StoreID).UpdateStatus(r.Context(), id, next)
	} else {
		d, history, err = a.svc.ChangeStatus(r.Context(), id, next)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.deliveryResponse(d, history))
}

func (a *DashboardAPI) notify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NotificationType string `json:"notificationType"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.svc.Notify(r.Context(), chi.URLParam(r, "id"), req.NotificationType); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"notified": true})
}

func parseStatus(raw string) (models.DeliveryStatus, error) {
	if raw == "" {
		return "", nil
	}
	st, ok := models.ParseDeliveryStatus(raw)
	if !ok {
		return "", errors.Wrapf(models.ErrValidation, "unknown status %q", raw)
	}
	return st, nil
}

// parseDate accepts YYYY-MM-DD or RFC3339. A bare date used as an upper
// bound covers the whole day.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.Wrapf(models.ErrValidation, "invalid date %q", raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
