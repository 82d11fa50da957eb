// Package session persists per-browser dashboard state: the bearer token
// and the light/dark theme preference.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/BearBump/StoreDash/internal/cache"
	"github.com/BearBump/StoreDash/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

type State struct {
	ID    string `json:"id"`
	Theme Theme  `json:"theme"`
	// HasToken only reports presence; the token itself is never echoed.
	HasToken bool `json:"hasToken"`
}

type Store struct {
	c   cache.BytesCache
	ttl time.Duration
}

func NewStore(c cache.BytesCache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{c: c, ttl: ttl}
}

// Create opens a session holding token and returns its id.
func (s *Store) Create(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errors.Wrap(models.ErrValidation, "token is required")
	}
	id := uuid.NewString()
	if err := s.c.Set(ctx, tokenKey(id), []byte(token), s.ttl); err != nil {
		return "", errors.Wrap(err, "save session token")
	}
	if err := s.c.Set(ctx, themeKey(id), []byte(ThemeLight), s.ttl); err != nil {
		return "", errors.Wrap(err, "save session theme")
	}
	return id, nil
}

// Token returns the session's bearer token or ErrUnauthenticated.
func (s *Store) Token(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", models.ErrUnauthenticated
	}
	b, ok, err := s.c.Get(ctx, tokenKey(id))
	if err != nil {
		return "", errors.Wrap(err, "load session token")
	}
	if !ok || len(b) == 0 {
		return "", models.ErrUnauthenticated
	}
	return string(b), nil
}

// Theme defaults to light when unset or garbled.
func (s *Store) Theme(ctx context.Context, id string) (Theme, error) {
	b, ok, err := s.c.Get(ctx, themeKey(id))
	if err != nil {
		return "", errors.Wrap(err, "load session theme")
	}
	t := Theme(b)
	if !ok || !t.Valid() {
		return ThemeLight, nil
	}
	return t, nil
}

func (s *Store) SetTheme(ctx context.Context, id string, t Theme) error {
	if !t.Valid() {
		return errors.Wrapf(models.ErrValidation, "theme must be %q or %q", ThemeLight, ThemeDark)
	}
	if _, err := s.Token(ctx, id); err != nil {
		return err
	}
	return errors.Wrap(s.c.Set(ctx, themeKey(id), []byte(t), s.ttl), "save session theme")
}

func (s *Store) State(ctx context.Context, id string) (State, error) {
	_, err := s.Token(ctx, id)
	if err != nil {
		return State{}, err
	}
	t, err := s.Theme(ctx, id)
	if err != nil {
		return State{}, err
	}
	return State{ID: id, Theme: t, HasToken: true}, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.c.Delete(ctx, tokenKey(id)); err != nil {
		return errors.Wrap(err, "delete session token")
	}
	return errors.Wrap(s.c.Delete(ctx, themeKey(id)), "delete session theme")
}

// TokenSource adapts a session to auth.TokenSource.
func (s *Store) TokenSource(id string) *SessionToken {
	return &SessionToken{store: s, id: id}
}

type SessionToken struct {
	store *Store
	id    string
}

func (t *SessionToken) Token(ctx context.Context) (string, error) {
	return t.store.Token(ctx, t.id)
}

func tokenKey(id string) string { return fmt.Sprintf("session:%s:token", id) }
func themeKey(id string) string { return fmt.Sprintf("session:%s:theme", id) }
