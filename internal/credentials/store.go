package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ziadkadry99/promptforge/internal/db"
	"github.com/ziadkadry99/promptforge/internal/provider"
)

// ErrNotConfigured indicates no provider is selected, or the selected
// provider has no stored API key. Callers route the user to setup instead
// of showing a generic failure.
var ErrNotConfigured = errors.New("no provider configured")

const selectedKey = "selected_provider"

// Store persists per-provider API keys and the selected-provider pointer.
// Writes are last-write-wins; key management is a rare user-driven action.
type Store struct {
	db *db.DB
}

// NewStore creates a credential store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// SetKey saves or replaces the API key for a provider.
func (s *Store) SetKey(ctx context.Context, id provider.ID, key string) error {
	if !provider.Valid(id) {
		return fmt.Errorf("unknown provider %q", id)
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("api key must not be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_keys (provider, api_key, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(provider) DO UPDATE SET api_key = excluded.api_key, updated_at = datetime('now')`,
		string(id), key,
	)
	if err != nil {
		return fmt.Errorf("saving api key: %w", err)
	}
	return nil
}

// DeleteKey removes the stored key for a provider. Deleting a key that is
// not stored is not an error.
func (s *Store) DeleteKey(ctx context.Context, id provider.ID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM api_keys WHERE provider = ?`, string(id))
	if err != nil {
		return fmt.Errorf("deleting api key: %w", err)
	}
	return nil
}

// Key returns the stored API key for a provider, if any.
func (s *Store) Key(ctx context.Context, id provider.ID) (string, bool, error) {
	var key string
	err := s.db.QueryRowContext(ctx,
		`SELECT api_key FROM api_keys WHERE provider = ?`, string(id),
	).Scan(&key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading api key: %w", err)
	}
	return key, true, nil
}

// SelectProvider records the active provider. A provider may be selected
// before its key is stored; Active treats that as not configured.
func (s *Store) SelectProvider(ctx context.Context, id provider.ID) error {
	if !provider.Valid(id) {
		return fmt.Errorf("unknown provider %q", id)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		selectedKey, string(id),
	)
	if err != nil {
		return fmt.Errorf("selecting provider: %w", err)
	}
	return nil
}

// Selected returns the currently selected provider id, if any.
func (s *Store) Selected(ctx context.Context) (provider.ID, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, selectedKey,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading selected provider: %w", err)
	}
	id := provider.ID(value)
	if !provider.Valid(id) {
		// A stale selection (e.g. from an older build) counts as unset.
		return "", false, nil
	}
	return id, true, nil
}

// Active resolves the selected provider and its API key. Returns
// ErrNotConfigured when either is missing.
func (s *Store) Active(ctx context.Context) (provider.Config, string, error) {
	id, ok, err := s.Selected(ctx)
	if err != nil {
		return provider.Config{}, "", err
	}
	if !ok {
		return provider.Config{}, "", ErrNotConfigured
	}
	key, ok, err := s.Key(ctx, id)
	if err != nil {
		return provider.Config{}, "", err
	}
	if !ok {
		return provider.Config{}, "", fmt.Errorf("%s selected but has no key: %w", id, ErrNotConfigured)
	}
	return provider.Lookup(id), key, nil
}

// Status describes one provider's credential state for display. The full
// key is never exposed.
type Status struct {
	ID         provider.ID `json:"id"`
	Name       string      `json:"name"`
	Configured bool        `json:"configured"`
	MaskedKey  string      `json:"masked_key,omitempty"`
	Selected   bool        `json:"selected"`
}

// StatusAll reports the credential state of every provider.
func (s *Store) StatusAll(ctx context.Context) ([]Status, error) {
	selected, _, err := s.Selected(ctx)
	if err != nil {
		return nil, err
	}

	var statuses []Status
	for _, cfg := range provider.All() {
		key, ok, err := s.Key(ctx, cfg.ID)
		if err != nil {
			return nil, err
		}
		st := Status{
			ID:         cfg.ID,
			Name:       cfg.Name,
			Configured: ok,
			Selected:   cfg.ID == selected,
		}
		if ok {
			st.MaskedKey = MaskKey(key)
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// MaskKey renders an API key for display, keeping only the first and last
// four characters when the key is long enough.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
