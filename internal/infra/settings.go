package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/eliteGoblin/focusd/idlectl/internal/domain"
)

// Environment overrides for the settings file.
const (
	EnvNotify = "IDLECTL_NOTIFY"
	EnvScript = "IDLECTL_SCRIPT"
)

// DefaultSettleDelay is how long to wait after starting a helper before checking it is alive.
const DefaultSettleDelay = 500 * time.Millisecond

// Settings tune the supervisor. They are separate from the persisted desired state.
type Settings struct {
	Notify      bool                                  `yaml:"notify"`
	SettleDelay time.Duration                         `yaml:"settle_delay" validate:"gte=0,lte=1m"`
	ScriptPath  string                                `yaml:"script_path"`
	Helpers     map[domain.ActionID]domain.HelperSpec `yaml:"helpers" validate:"dive,keys,oneof=shutdown screen_off,endkeys"`
}

// DefaultSettings returns the settings used without a settings file.
func DefaultSettings() Settings {
	return Settings{
		Notify:      true,
		SettleDelay: DefaultSettleDelay,
		ScriptPath:  "~/auto_off.sh",
	}
}

// LoadSettings resolves settings from the YAML file, then the environment.
// A missing file is not an error. On a parse or validation error the defaults
// are returned together with the error so the caller can report it and continue.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	// 1. Settings file as base
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return DefaultSettings(), fmt.Errorf("parse settings %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return DefaultSettings(), fmt.Errorf("read settings %s: %w", path, err)
	}

	// 2. Environment variables override the file
	if v := os.Getenv(EnvNotify); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Notify = b
		}
	}
	if v := os.Getenv(EnvScript); v != "" {
		s.ScriptPath = v
	}

	if err := validator.New().Struct(s); err != nil {
		return DefaultSettings(), fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return s, nil
}
