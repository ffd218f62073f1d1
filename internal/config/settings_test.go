package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearRipEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"RIP_PRESERVE_ROOT", "RIP_PICKER", "RIP_VERIFY_COPIES", "RIP_HISTORY", "RIP_LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	clearRipEnv(t)

	s, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_File(t *testing.T) {
	clearRipEnv(t)
	path := writeSettings(t, `
preserve_root: false
picker: TUI
verify_copies: false
history:
  enabled: false
log:
  level: debug
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.False(t, s.PreserveRoot)
	assert.Equal(t, PickerTUI, s.Picker)
	assert.False(t, s.VerifyCopies)
	assert.False(t, s.History.Enabled)
	assert.Equal(t, "debug", s.Log.Level)
}

func TestLoadSettings_PartialFileKeepsDefaults(t *testing.T) {
	clearRipEnv(t)
	path := writeSettings(t, "picker: fzf\n")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, PickerFzf, s.Picker)
	assert.True(t, s.PreserveRoot)
	assert.True(t, s.VerifyCopies)
	assert.True(t, s.History.Enabled)
}

func TestLoadSettings_EmptyFile(t *testing.T) {
	clearRipEnv(t)
	s, err := LoadSettings(writeSettings(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	clearRipEnv(t)
	path := writeSettings(t, "picker: fzf\nhistory:\n  enabled: true\n")
	t.Setenv("RIP_PICKER", "none")
	t.Setenv("RIP_HISTORY", "false")
	t.Setenv("RIP_LOG_LEVEL", "ERROR")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, PickerNone, s.Picker)
	assert.False(t, s.History.Enabled)
	assert.Equal(t, "error", s.Log.Level)
	assert.True(t, s.VerifyCopies, "unset variables leave the value alone")
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "unknown picker", content: "picker: dmenu\n"},
		{name: "unknown log level", content: "log:\n  level: loud\n"},
		{name: "unknown field", content: "preserve_rot: true\n"},
		{name: "malformed yaml", content: "picker: [\n"},
		{name: "bad bool in env", env: map[string]string{"RIP_VERIFY_COPIES": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearRipEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadSettings(writeSettings(t, tt.content))
			assert.Error(t, err)
		})
	}
}
