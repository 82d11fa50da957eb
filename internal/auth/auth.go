// Package auth carries the caller's bearer token explicitly through
// context instead of reading it from ambient storage.
package auth

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/BearBump/StoreDash/internal/models"
	"github.com/pkg/errors"
)

// TokenSource yields the bearer token for outgoing backend calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Refresher is a TokenSource that can replace a token the backend rejected.
type Refresher interface {
	TokenSource
	Refresh(ctx context.Context, stale string) (string, error)
}

// RefreshFunc obtains a new token once the current one was rejected.
type RefreshFunc func(ctx context.Context, stale string) (string, error)

// Credentials is a TokenSource holding one token with optional refresh.
type Credentials struct {
	mu      sync.RWMutex
	token   string
	refresh RefreshFunc
}

func NewCredentials(token string, refresh RefreshFunc) *Credentials {
	return &Credentials{token: token, refresh: refresh}
}

func (c *Credentials) Token(ctx context.Context) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return "", models.ErrUnauthenticated
	}
	return c.token, nil
}

// Refresh replaces stale via the refresh func. A caller holding an already
// superseded token gets the current one without another refresh. Without a
// refresh func ErrUnauthenticated is returned and the token is kept.
func (c *Credentials) Refresh(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.token != stale {
		return c.token, nil
	}
	if c.refresh == nil {
		return "", models.ErrUnauthenticated
	}
	tok, err := c.refresh(ctx, stale)
	if err != nil {
		return "", errors.Wrap(err, "refresh token")
	}
	if tok == "" || tok == stale {
		return "", errors.Wrap(models.ErrUnauthenticated, "refresh token: no new token")
	}
	c.token = tok
	return tok, nil
}

// FileRefresh re-reads a token file that an external rotator keeps current.
func FileRefresh(path string) RefreshFunc {
	return func(ctx context.Context, stale string) (string, error) {
		return readTokenFile(path)
	}
}

func readTokenFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "read token file")
	}
	return strings.TrimSpace(string(b)), nil
}

// ServiceCredentials builds the process-wide token source from a static
// token and/or a token file. The file, when set, supplies the initial token
// if none is given and is re-read whenever the backend rejects the token.
// Both empty yields nil.
func ServiceCredentials(token, tokenFile string) (*Credentials, error) {
	if tokenFile == "" {
		if token == "" {
			return nil, nil
		}
		return NewCredentials(token, nil), nil
	}
	if token == "" {
		tok, err := readTokenFile(tokenFile)
		if err != nil {
			return nil, err
		}
		token = tok
	}
	return NewCredentials(token, FileRefresh(tokenFile)), nil
}

type ctxKey struct{}

// WithTokenSource attaches ts to ctx for the backend client.
func WithTokenSource(ctx context.Context, ts TokenSource) context.Context {
	return context.WithValue(ctx, ctxKey{}, ts)
}

// WithToken is shorthand for a static, non-refreshable token.
func WithToken(ctx context.Context, token string) context.Context {
	return WithTokenSource(ctx, NewCredentials(token, nil))
}

func FromContext(ctx context.Context) (TokenSource, bool) {
	ts, ok := ctx.Value(ctxKey{}).(TokenSource)
	return ts, ok && ts != nil
}

// TokenFromContext resolves the token or returns ErrUnauthenticated.
func TokenFromContext(ctx context.Context) (string, error) {
	ts, ok := FromContext(ctx)
	if !ok {
		return "", models.ErrUnauthenticated
	}
	return ts.Token(ctx)
}

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}
