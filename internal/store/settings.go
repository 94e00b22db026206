package store

import "fmt"

// Preference keys the client persists between runs. Values are kept as the
// strings the settings form collected and parsed only at the point of use.
const (
	PrefServerURL      = "server_url"
	PrefPollForeground = "poll_foreground"
	PrefPollBackground = "poll_background"
	PrefSyncCooldown   = "sync_cooldown"
	PrefSyncPacing     = "sync_pacing"
)

// Pref is one persisted client preference.
type Pref struct {
	Key   string
	Value string
}

// PrefOr returns the stored value for key, falling back when the key is
// absent or stored empty. Config defaults flow through the fallback.
func (s *Store) PrefOr(key, fallback string) string {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil || value == "" {
		return fallback
	}
	return value
}

func (s *Store) SetPref(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set pref %q: %w", key, err)
	}
	return nil
}

// SavePrefs upserts a batch of preferences in one transaction, so a partial
// write never leaves the form half-applied.
func (s *Store) SavePrefs(prefs []Pref) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save prefs: %w", err)
	}
	for _, p := range prefs {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			p.Key, p.Value,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("save pref %q: %w", p.Key, err)
		}
	}
	return tx.Commit()
}

// Prefs lists every stored preference sorted by key.
func (s *Store) Prefs() ([]Pref, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list prefs: %w", err)
	}
	defer rows.Close()

	var prefs []Pref
	for rows.Next() {
		var p Pref
		if err := rows.Scan(&p.Key, &p.Value); err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}
