// Package settings stores global preferences shared by every user.
package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/storage"
)

// Theme names.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ErrInvalidTheme is returned for unknown theme names.
var ErrInvalidTheme = fmt.Errorf("%w: theme must be light or dark", model.ErrValidation)

// Settings reads and writes global preference keys.
type Settings struct {
	store storage.Store
}

// New returns Settings backed by store.
func New(store storage.Store) *Settings {
	return &Settings{store: store}
}

// Theme returns the stored theme, or light when unset or unknown.
func (s *Settings) Theme(ctx context.Context) (string, error) {
	raw, err := s.store.Get(ctx, storage.ThemeKey)
	if storage.IsNotFound(err) {
		return ThemeLight, nil
	}
	if err != nil {
		return "", fmt.Errorf("loading theme: %w", err)
	}
	if theme := string(raw); theme == ThemeDark {
		return theme, nil
	}
	return ThemeLight, nil
}

// SetTheme stores theme.
func (s *Settings) SetTheme(ctx context.Context, theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	if err := s.store.Set(ctx, storage.ThemeKey, []byte(theme)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

// ToggleTheme switches between light and dark and returns the new theme.
func (s *Settings) ToggleTheme(ctx context.Context) (string, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
