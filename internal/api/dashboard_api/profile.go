package dashboard_api

import (
	"io"
	"net/http"

	"github.com/BearBump/StoreDash/internal/models"
	"github.com/pkg/errors"
)

const maxPictureBytes = 5 << 20

func (a *DashboardAPI) getProfile(w http.ResponseWriter, r *http.Request) {
	if a.profile == nil {
		writeError(w, r, errors.Wrap(models.ErrBackend, "profile backend not configured"))
		return
	}
	p, err := a.profile.GetProfile(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *DashboardAPI) updateProfile(w http.ResponseWriter, r *http.Request) {
	if a.profile == nil {
		writeError(w, r, errors.Wrap(models.ErrBackend, "profile backend not configured"))
		return
	}
	var in models.UserProfile
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Name == "" && in.Email == "" && in.Phone == "" {
		writeError(w, r, errors.Wrap(models.ErrValidation, "nothing to update"))
		return
	}
	p, err := a.profile.UpdateProfile(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// updateProfilePicture expects multipart form field "profilePicture".
func (a *DashboardAPI) updateProfilePicture(w http.ResponseWriter, r *http.Request) {
	if a.profile == nil {
		writeError(w, r, errors.Wrap(models.ErrBackend, "profile backend not configured"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxPictureBytes+1<<10)
	if err := r.ParseMultipartForm(maxPictureBytes); err != nil {
		writeError(w, r, errors.Wrapf(models.ErrValidation, "invalid upload: %v", err))
		return
	}
	f, hdr, err := r.FormFile("profilePicture")
	if err != nil {
		writeError(w, r, errors.Wrap(models.ErrValidation, "profilePicture is required"))
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		writeError(w, r, errors.Wrapf(models.ErrValidation, "read upload: %v", err))
		return
	}
	if len(content) == 0 {
		writeError(w, r, errors.Wrap(models.ErrValidation, "profilePicture is empty"))
		return
	}
	p, err := a.profile.UpdateProfilePicture(r.Context(), hdr.Filename, content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
