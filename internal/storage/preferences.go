package storage

import "fyne.io/fyne/v2"

// PreferencesStore adapts fyne's per-app preference store. fyne cannot tell
// an empty string from a missing key, so empty values read as missing.
type PreferencesStore struct {
	prefs fyne.Preferences
}

// NewPreferencesStore wraps prefs.
func NewPreferencesStore(prefs fyne.Preferences) *PreferencesStore {
	return &PreferencesStore{prefs: prefs}
}

func (store *PreferencesStore) Get(key string) (string, bool, error) {
	value := store.prefs.String(key)
	return value, value != "", nil
}

func (store *PreferencesStore) Set(key, value string) error {
	store.prefs.SetString(key, value)
	return nil
}
