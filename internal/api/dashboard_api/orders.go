package dashboard_api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/BearBump/StoreDash/internal/models"
	"github.com/BearBump/StoreDash/internal/viewmodel"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

type orderStatsResponse struct {
	*models.OrderStats
	Badges map[models.OrderStatus]viewmodel.Badge `json:"badges"`
}

func (a *DashboardAPI) orderStats(w http.ResponseWriter, r *http.Request) {
	if a.orders == nil {
		writeError(w, r, errors.Wrap(models.ErrBackend, "orders backend not configured"))
		return
	}
	timeRange := r.URL.Query().Get("timeRange")
	if timeRange == "" {
		timeRange = "week"
	}
	st, err := a.orders.OrderStats(r.Context(), chi.URLParam(r, "storeID"), timeRange)
	if err != nil {
		writeError(w, r, err)
		return
	}
	badges := make(map[models.OrderStatus]viewmodel.Badge, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		badges[s] = viewmodel.BadgeFor(string(s))
	}
	writeJSON(w, http.StatusOK, orderStatsResponse{OrderStats: st, Badges: badges})
}

// exportOrders streams the backend's csv/excel export. Query parameters are
// forwarded as export filters.
func (a *DashboardAPI) exportOrders(w http.ResponseWriter, r *http.Request) {
	if a.orders == nil {
		writeError(w, r, errors.Wrap(models.ErrBackend, "orders backend not configured"))
		return
	}
	format := models.ExportFormat(chi.URLParam(r, "format"))
	if !format.Valid() {
		writeError(w, r, errors.Wrapf(models.ErrValidation, "unknown export format %q", format))
		return
	}
	exp, err := a.orders.ExportOrders(r.Context(), chi.URLParam(r, "storeID"), format, r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Data)
}
