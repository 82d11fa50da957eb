package httpapi

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"

	"github.com/BearBump/StoreDash/internal/models"
	"github.com/pkg/errors"
)

func (c *Client) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := c.getJSON(ctx, "/user/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, p models.UserProfile) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.sendJSON(ctx, http.MethodPut, "/user/profile", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfilePicture uploads the image as multipart field "profilePicture".
func (c *Client) UpdateProfilePicture(ctx context.Context, filename string, content []byte) (*models.UserProfile, error) {
	if len(content) == 0 {
		return nil, errors.Wrap(models.ErrValidation, "picture is empty")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("profilePicture", filename)
	if err != nil {
		return nil, errors.Wrap(err, "multipart part")
	}
	if _, err := fw.Write(content); err != nil {
		return nil, errors.Wrap(err, "multipart write")
	}
	if err := mw.Close(); err != nil {
		return nil, errors.Wrap(err, "multipart close")
	}

	resp, err := c.send(ctx, http.MethodPut, "/user/update-profile-picture", nil, buf.Bytes(), mw.FormDataContentType(), "")
	if err != nil {
		return nil, err
	}
	var out models.UserProfile
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
