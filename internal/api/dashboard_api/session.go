package dashboard_api

import (
	"net/http"

	"github.com/BearBump/StoreDash/internal/auth"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/BearBump/StoreDash/internal/session"
	"github.com/pkg/errors"
)

// createSession stores the caller's backend token and returns the session
// id to send back as X-Session-ID.
func (a *DashboardAPI) createSession(w http.ResponseWriter, r *http.Request) {
	if a.sessions == nil {
		writeError(w, r, errors.New("sessions not configured"))
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.Token == "" {
		if tok, ok := auth.ParseBearer(r.Header.Get("Authorization")); ok {
			req.Token = tok
		}
	}
	if req.Token == "" {
		writeError(w, r, errors.Wrap(models.ErrValidation, "token is required"))
		return
	}
	id, err := a.sessions.Create(r.Context(), req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := a.sessions.State(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set(HeaderSession, id)
	writeJSON(w, http.StatusCreated, st)
}

func (a *DashboardAPI) getSession(w http.ResponseWriter, r *http.Request) {
	id, ok := a.sessionID(w, r)
	if !ok {
		return
	}
	st, err := a.sessions.State(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *DashboardAPI) setTheme(w http.ResponseWriter, r *http.Request) {
	id, ok := a.sessionID(w, r)
	if !ok {
		return
	}
	var req struct {
		Theme session.Theme `json:"theme"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.sessions.SetTheme(r.Context(), id, req.Theme); err != nil {
		writeError(w, r, err)
		return
	}
	st, err := a.sessions.State(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *DashboardAPI) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := a.sessionID(w, r)
	if !ok {
		return
	}
	if err := a.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *DashboardAPI) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if a.sessions == nil {
		writeError(w, r, errors.New("sessions not configured"))
		return "", false
	}
	id := r.Header.Get(HeaderSession)
	if id == "" {
		writeError(w, r, errors.Wrap(models.ErrUnauthenticated, "X-Session-ID header is required"))
		return "", false
	}
	return id, true
}
