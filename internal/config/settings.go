package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Picker modes.
const (
	PickerAuto = "auto"
	PickerFzf  = "fzf"
	PickerTUI  = "tui"
	PickerNone = "none"
)

var (
	errInvalidPicker   = errors.New("picker must be one of auto, fzf, tui, none")
	errInvalidLogLevel = errors.New("log.level must be one of debug, info, warn, error")
)

// HistoryConfig controls the SQLite audit trail.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Settings are the user-tunable options.
type Settings struct {
	PreserveRoot bool          `yaml:"preserve_root" json:"preserve_root"` // Refuse to bury / (cannot be forced)
	Picker       string        `yaml:"picker" json:"picker"`               // Interactive picker: auto, fzf, tui, none
	VerifyCopies bool          `yaml:"verify_copies" json:"verify_copies"` // Compare digests after a cross-device copy
	History      HistoryConfig `yaml:"history" json:"history"`
	Log          LogConfig     `yaml:"log" json:"log"`
}

// envOverrides are read from RIP_* variables. Unset variables leave the
// file value alone.
type envOverrides struct {
	PreserveRoot *bool   `envconfig:"PRESERVE_ROOT"`
	Picker       *string `envconfig:"PICKER"`
	VerifyCopies *bool   `envconfig:"VERIFY_COPIES"`
	History      *bool   `envconfig:"HISTORY"`
	LogLevel     *string `envconfig:"LOG_LEVEL"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		PreserveRoot: true,
		Picker:       PickerAuto,
		VerifyCopies: true,
		History:      HistoryConfig{Enabled: true},
		Log:          LogConfig{Level: "warn"},
	}
}

// LoadSettings reads the YAML settings file at path, applies RIP_*
// environment overrides and validates the result. A missing file yields the
// defaults.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := decode(f, s); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("open config: %w", err)
	}

	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	if err := s.validateAndDefault(); err != nil {
		return nil, err
	}
	return s, nil
}

func decode(r io.Reader, s *Settings) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func (s *Settings) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process("RIP", &env); err != nil {
		return fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if env.PreserveRoot != nil {
		s.PreserveRoot = *env.PreserveRoot
	}
	if env.Picker != nil {
		s.Picker = *env.Picker
	}
	if env.VerifyCopies != nil {
		s.VerifyCopies = *env.VerifyCopies
	}
	if env.History != nil {
		s.History.Enabled = *env.History
	}
	if env.LogLevel != nil {
		s.Log.Level = *env.LogLevel
	}
	return nil
}

func (s *Settings) validateAndDefault() error {
	s.Picker = strings.ToLower(strings.TrimSpace(s.Picker))
	if s.Picker == "" {
		s.Picker = PickerAuto
	}
	switch s.Picker {
	case PickerAuto, PickerFzf, PickerTUI, PickerNone:
	default:
		return fmt.Errorf("%w (got %q)", errInvalidPicker, s.Picker)
	}

	s.Log.Level = strings.ToLower(strings.TrimSpace(s.Log.Level))
	if s.Log.Level == "" {
		s.Log.Level = "warn"
	}
	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w (got %q)", errInvalidLogLevel, s.Log.Level)
	}
	return nil
}
