package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BearBump/StoreDash/internal/auth"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/pkg/errors"
)

// Client talks to the store backend REST API. The bearer token is taken
// from the request context (see auth.WithTokenSource).
type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:5000/api"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) endpoint(path string, q url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", errors.Wrap(err, "parse base url")
	}
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body []byte, contentType, token string) (*http.Request, error) {
	u, err := c.endpoint(path, q)
	if err != nil {
		return nil, err
	}
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// send performs one backend call with the context's token. A 401 is retried
// exactly once when the token source can refresh; the body is replayed from
// its bytes. Non-2xx responses are mapped to model errors.
func (c *Client) send(ctx context.Context, method, path string, q url.Values, body []byte, contentType, accept string) (*http.Response, error) {
	ts, ok := auth.FromContext(ctx)
	if !ok {
		return nil, models.ErrUnauthenticated
	}
	token, err := ts.Token(ctx)
	if err != nil {
		return nil, err
	}

	attempt := func(token string) (*http.Request, *http.Response, error) {
		req, err := c.newRequest(ctx, method, path, q, body, contentType, token)
		if err != nil {
			return nil, nil, err
		}
		if accept != "" {
			req.Header.Set("Accept", accept)
		}
		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, nil, errors.Wrapf(models.ErrBackend, "%s %s: %v", req.Method, req.URL.Path, err)
		}
		return req, resp, nil
	}

	req, resp, err := attempt(token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		if r, ok := ts.(auth.Refresher); ok {
			fresh, rerr := r.Refresh(ctx, token)
			if rerr != nil {
				drain(resp)
				return nil, errors.Wrapf(models.ErrUnauthenticated, "%s %s: http 401: %v", req.Method, req.URL.Path, rerr)
			}
			drain(resp)
			if req, resp, err = attempt(fresh); err != nil {
				return nil, err
			}
		}
	}
	return check(req, resp)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}

// check passes 2xx responses through and maps the rest to model errors.
func check(req *http.Request, resp *http.Response) (*http.Response, error) {
	if resp.StatusCode/100 == 2 {
		return resp, nil
	}
	defer resp.Body.Close()
	msg := readError(resp.Body)
	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, errors.Wrapf(models.ErrNotFound, "%s %s: %s", req.Method, req.URL.Path, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, errors.Wrapf(models.ErrUnauthenticated, "%s %s: http %d", req.Method, req.URL.Path, resp.StatusCode)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return nil, errors.Wrapf(models.ErrValidation, "%s %s: %s", req.Method, req.URL.Path, msg)
	case http.StatusTooManyRequests:
		return nil, errors.Wrapf(models.ErrRateLimited, "%s %s", req.Method, req.URL.Path)
	}
	return nil, errors.Wrapf(models.ErrBackend, "%s %s: http %d: %s", req.Method, req.URL.Path, resp.StatusCode, msg)
}

// readError pulls {"message": ...} out of an error body, falling back to raw text.
func readError(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(b))
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	resp, err := c.send(ctx, http.MethodGet, path, q, nil, "", "")
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "marshal body")
	}
	resp, err := c.send(ctx, method, path, nil, b, "application/json", "")
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode")
	}
	return nil
}

func pathf(format string, args ...string) string {
	esc := make([]any, 0, len(args))
	for _, a := range args {
		esc = append(esc, url.PathEscape(a))
	}
	return fmt.Sprintf(format, esc...)
}
