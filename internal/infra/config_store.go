package infra

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// legacyKeys maps each field to the key name used by the older auto-shutdown config file
// (~/.auto_shutdown_config.json).
var legacyKeys = map[string]string{
	"shutdown_enabled":   "shutdown_active",
	"shutdown_minutes":   "shutdown_time",
	"screen_off_enabled": "screen_active",
	"screen_off_minutes": "screen_off_time",
}

// FileConfigStore implements domain.ConfigStore using a JSON file.
type FileConfigStore struct {
	path       string
	legacyPath string
	logger     *zap.Logger
}

// NewFileConfigStore creates a config store at path.
func NewFileConfigStore(path string, logger *zap.Logger) *FileConfigStore {
	return &FileConfigStore{path: path, logger: logger}
}

// NewFileConfigStoreWithLegacy creates a config store that reads legacyPath while
// path does not exist yet. The first Save moves the state over to path.
func NewFileConfigStoreWithLegacy(path, legacyPath string, logger *zap.Logger) *FileConfigStore {
	return &FileConfigStore{path: path, legacyPath: legacyPath, logger: logger}
}

// Path returns the config file path.
func (s *FileConfigStore) Path() string {
	return s.path
}

// Load reads the config. Missing or malformed fields fall back to their defaults;
// a missing or unparseable file yields DefaultConfig.
func (s *FileConfigStore) Load() domain.Config {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) && s.legacyPath != "" {
		return s.loadLegacy()
	}
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("cannot read config, using defaults",
				zap.String("path", s.path), zap.Error(err))
		}
		return domain.DefaultConfig()
	}

	cfg, err := decodeConfig(data)
	if err != nil {
		s.logger.Warn("config corrupt, using defaults",
			zap.String("path", s.path), zap.Error(err))
		return domain.DefaultConfig()
	}
	return cfg
}

func (s *FileConfigStore) loadLegacy() domain.Config {
	data, err := os.ReadFile(s.legacyPath)
	if err != nil {
		return domain.DefaultConfig()
	}

	cfg, err := decodeConfig(data)
	if err != nil {
		s.logger.Warn("legacy config corrupt, using defaults",
			zap.String("path", s.legacyPath), zap.Error(err))
		return domain.DefaultConfig()
	}
	s.logger.Info("using legacy config until the next save",
		zap.String("legacy", s.legacyPath),
		zap.String("path", s.path))
	return cfg
}

// Save writes the config atomically after clamping durations.
func (s *FileConfigStore) Save(cfg domain.Config) error {
	data, err := json.MarshalIndent(cfg.Normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistFailed, err)
	}
	if err := atomicWriteFile(s.path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrPersistFailed, s.path, err)
	}
	return nil
}

// decodeConfig decodes each field on its own so one bad value does not discard the rest.
func decodeConfig(data []byte) (domain.Config, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Config{}, fmt.Errorf("%w: %v", domain.ErrConfigCorrupt, err)
	}
	if raw == nil {
		return domain.Config{}, fmt.Errorf("%w: not a JSON object", domain.ErrConfigCorrupt)
	}

	def := domain.DefaultConfig()
	return domain.Config{
		ShutdownEnabled:  decodeBool(raw, "shutdown_enabled", def.ShutdownEnabled),
		ShutdownMinutes:  decodeMinutes(raw, "shutdown_minutes", domain.ActionShutdown),
		ScreenOffEnabled: decodeBool(raw, "screen_off_enabled", def.ScreenOffEnabled),
		ScreenOffMinutes: decodeMinutes(raw, "screen_off_minutes", domain.ActionScreenOff),
	}, nil
}

func lookup(raw map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	if v, ok := raw[key]; ok {
		return v, true
	}
	v, ok := raw[legacyKeys[key]]
	return v, ok
}

func decodeBool(raw map[string]json.RawMessage, key string, def bool) bool {
	v, ok := lookup(raw, key)
	if !ok {
		return def
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return def
	}
	return b
}

// decodeMinutes falls back to the action's default when the value is outside
// what the action's helper accepts.
func decodeMinutes(raw map[string]json.RawMessage, key string, id domain.ActionID) int {
	def := domain.DefaultMinutes(id)
	v, ok := lookup(raw, key)
	if !ok {
		return def
	}
	var n int
	if err := json.Unmarshal(v, &n); err != nil || n <= 0 || n > domain.MaxMinutesFor(id) {
		return def
	}
	return n
}

// Ensure FileConfigStore implements domain.ConfigStore.
var _ domain.ConfigStore = (*FileConfigStore)(nil)
