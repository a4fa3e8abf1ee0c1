package services

import (
	"context"
	"encoding/json"
	"strconv"

	"food-storefront/kv"
	"food-storefront/models"
)

func SettingsKey(userID int64) string {
	return "settings:" + strconv.FormatInt(userID, 10)
}

// LoadSettings returns the stored settings, or the defaults when none were saved.
func LoadSettings(ctx context.Context, store kv.Store, userID int64) (models.Settings, error) {
	key := SettingsKey(userID)
	v, ok, err := store.Get(ctx, key)
	if err != nil {
		return models.DefaultSettings(), &StorageError{Op: "read", Key: key, Err: err}
	}
	s := models.DefaultSettings()
	if !ok {
		return s, nil
	}
	if err := json.Unmarshal([]byte(v), &s); err != nil {
		return models.DefaultSettings(), &StorageError{Op: "read", Key: key, Err: err}
	}
	return s, nil
}

func SaveSettings(ctx context.Context, store kv.Store, userID int64, s models.Settings) error {
	key := SettingsKey(userID)
	b, err := json.Marshal(s)
	if err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	if err := store.Set(ctx, key, string(b)); err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	return nil
}

func updateSettings(ctx context.Context, store kv.Store, userID int64, fn func(*models.Settings)) (models.Settings, error) {
	s, err := LoadSettings(ctx, store, userID)
	if err != nil {
		return s, err
	}
	fn(&s)
	if err := SaveSettings(ctx, store, userID, s); err != nil {
		return s, err
	}
	return s, nil
}

// ToggleDarkMode flips and persists the dark mode flag.
func ToggleDarkMode(ctx context.Context, store kv.Store, userID int64) (models.Settings, error) {
	return updateSettings(ctx, store, userID, func(s *models.Settings) { s.DarkMode = !s.DarkMode })
}

// ToggleNotifications flips and persists the notifications flag.
func ToggleNotifications(ctx context.Context, store kv.Store, userID int64) (models.Settings, error) {
	return updateSettings(ctx, store, userID, func(s *models.Settings) { s.Notifications = !s.Notifications })
}
