package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/docbridge/internal/core/domain"
	"github.com/custodia-labs/docbridge/internal/core/ports/driven"
)

// Configuration keys for the sync channel and local persistence.
const (
	keyServerURL         = "sync.server_url"
	keyAuthToken         = "sync.auth_token"
	keyHeartbeatSeconds  = "sync.heartbeat_seconds"
	keyReconnectBaseMS   = "sync.reconnect_base_ms"
	keyReconnectAttempts = "sync.max_reconnect_attempts"
	keySendRate          = "sync.send_rate"
	keySendBurst         = "sync.send_burst"
	keyWatchDir          = "watch.dir"
	keyDataDir           = "storage.data_dir"
)

// SettingsService materialises SyncSettings from the config store,
// falling back to defaults for anything unset.
type SettingsService struct {
	config driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(config driven.ConfigStore) *SettingsService {
	return &SettingsService{config: config}
}

// SyncSettings returns the effective sync settings.
func (s *SettingsService) SyncSettings() domain.SyncSettings {
	settings := domain.DefaultSyncSettings()
	if s.config == nil {
		return settings
	}

	if v := s.config.GetString(keyServerURL); v != "" {
		settings.ServerURL = v
	}
	if v := s.config.GetString(keyAuthToken); v != "" {
		settings.AuthToken = v
	}
	if v := s.config.GetInt(keyHeartbeatSeconds); v > 0 {
		settings.HeartbeatInterval = time.Duration(v) * time.Second
	}
	if v := s.config.GetInt(keyReconnectBaseMS); v > 0 {
		settings.ReconnectBaseDelay = time.Duration(v) * time.Millisecond
	}
	if v := s.config.GetInt(keyReconnectAttempts); v > 0 {
		settings.MaxReconnectAttempts = v
	}
	if v := s.config.GetFloat(keySendRate); v > 0 {
		settings.SendRate = v
	}
	if v := s.config.GetInt(keySendBurst); v > 0 {
		settings.SendBurst = v
	}
	if v := s.config.GetString(keyWatchDir); v != "" {
		settings.WatchDir = v
	}
	if v := s.config.GetString(keyDataDir); v != "" {
		settings.DataDir = v
	}
	return settings
}

// SetServerURL persists the backend endpoint.
func (s *SettingsService) SetServerURL(url string) error {
	if url == "" {
		return fmt.Errorf("server url: %w", domain.ErrInvalidInput)
	}
	return s.config.Set(keyServerURL, url)
}

// SetAuthToken persists the bearer token presented on dial.
func (s *SettingsService) SetAuthToken(token string) error {
	return s.config.Set(keyAuthToken, token)
}

// SetWatchDir persists the ingest watch directory.
func (s *SettingsService) SetWatchDir(dir string) error {
	return s.config.Set(keyWatchDir, dir)
}
