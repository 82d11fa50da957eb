// Package dashboard_api serves the delivery dashboard view model over HTTP.
package dashboard_api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/BearBump/StoreDash/internal/auth"
	"github.com/BearBump/StoreDash/internal/integrations/backend"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/BearBump/StoreDash/internal/services/deliveries"
	"github.com/BearBump/StoreDash/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderSession   = "X-Session-ID"

	anonymousOwner = "anonymous"
)

type Deps struct {
	Deliveries *deliveries.Service
	Views      *deliveries.Views
	Orders     backend.OrdersBackend
	Profile    backend.ProfileBackend
	Sessions   *session.Store
	// DefaultToken is used when a request carries neither a bearer token
	// nor a session. May be nil.
	DefaultToken auth.TokenSource
	Now          func() time.Time
}

type DashboardAPI struct {
	svc          *deliveries.Service
	views        *deliveries.Views
	orders       backend.OrdersBackend
	profile      backend.ProfileBackend
	sessions     *session.Store
	defaultToken auth.TokenSource
	now          func() time.Time
}

func New(d Deps) *DashboardAPI {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.Views == nil && d.Deliveries != nil {
		d.Views = deliveries.NewViews(d.Deliveries, 0)
	}
	return &DashboardAPI{
		svc:          d.Deliveries,
		views:        d.Views,
		orders:       d.Orders,
		profile:      d.Profile,
		sessions:     d.Sessions,
		defaultToken: d.DefaultToken,
		now:          d.Now,
	}
}

// Register mounts the dashboard routes on r.
func (a *DashboardAPI) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recoverer)
		r.Use(requestID)
		r.Use(a.withAuth)

		r.Route("/stores/{storeID}", func(r chi.Router) {
			r.Get("/deliveries", a.listDeliveries)
			r.Get("/deliveries/active", a.activeDeliveries)
			r.Get("/map", a.mapDeliveries)
			r.Get("/partners", a.partners)
			r.Get("/orders/stats", a.orderStats)
			r.Get("/orders/export/{format}", a.exportOrders)
		})

		r.Route("/deliveries/{id}", func(r chi.Router) {
			r.Get("/", a.getDelivery)
			r.Get("/history", a.history)
			r.Put("/status", a.updateStatus)
			r.Post("/notify", a.notify)
		})

		r.Get("/profile", a.getProfile)
		r.Put("/profile", a.updateProfile)
		r.Put("/profile/picture", a.updateProfilePicture)

		r.Post("/session", a.createSession)
		r.Get("/session", a.getSession)
		r.Delete("/session", a.deleteSession)
		r.Put("/session/theme", a.setTheme)
	})
}

func (a *DashboardAPI) Handler() http.Handler {
	r := chi.NewRouter()
	a.Register(r)
	return r
}

type requestIDKey struct{}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withAuth resolves the backend token source: an explicit bearer header
// wins over the session, which wins over the configured default.
func (a *DashboardAPI) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if tok, ok := auth.ParseBearer(r.Header.Get("Authorization")); ok {
			ctx = auth.WithToken(ctx, tok)
		} else if id := r.Header.Get(HeaderSession); id != "" && a.sessions != nil {
			ctx = auth.WithTokenSource(ctx, a.sessions.TokenSource(id))
		} else if a.defaultToken != nil {
			ctx = auth.WithTokenSource(ctx, a.defaultToken)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func owner(r *http.Request) string {
	if id := r.Header.Get(HeaderSession); id != "" {
		return id
	}
	return anonymousOwner
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()), "error", err.Error())
	}
	writeJSON(w, status, errorBody{Error: err.Error(), RequestID: RequestIDFromContext(r.Context())})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrIllegalTransition), errors.Is(err, deliveries.ErrStale):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, models.ErrBackend):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		return errors.Wrapf(models.ErrValidation, "invalid json body: %v", err)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
