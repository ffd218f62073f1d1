package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPaths(t *testing.T) {
	t.Run("returns paths based on XDG_DATA_HOME", func(t *testing.T) {
		base := t.TempDir()
		t.Setenv("RIP_DATA_DIR", "")
		t.Setenv("XDG_DATA_HOME", base)

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths failed: %v", err)
		}

		if paths.Root != filepath.Join(base, "rip") {
			t.Errorf("Root incorrect: got %s", paths.Root)
		}
		if paths.Graveyard != filepath.Join(paths.Root, "graveyard") {
			t.Errorf("Graveyard path incorrect: got %s", paths.Graveyard)
		}
		if paths.Catalog != filepath.Join(paths.Root, "index.json") {
			t.Errorf("Catalog path incorrect: got %s", paths.Catalog)
		}
		if paths.Lock != filepath.Join(paths.Root, ".index.lock") {
			t.Errorf("Lock path incorrect: got %s", paths.Lock)
		}
		if paths.Journal != filepath.Join(paths.Graveyard, ".journal") {
			t.Errorf("Journal path incorrect: got %s", paths.Journal)
		}
		if paths.History != filepath.Join(paths.Root, "history.db") {
			t.Errorf("History path incorrect: got %s", paths.History)
		}
	})

	t.Run("falls back to ~/.local/share/rip", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("RIP_DATA_DIR", "")
		t.Setenv("XDG_DATA_HOME", "")
		t.Setenv("RIP_CONFIG", "")
		t.Setenv("XDG_CONFIG_HOME", "")

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths failed: %v", err)
		}

		if paths.Root != filepath.Join(home, ".local", "share", "rip") {
			t.Errorf("Root incorrect: got %s", paths.Root)
		}
		if paths.ConfigFile != filepath.Join(home, ".config", "rip", "config.yaml") {
			t.Errorf("ConfigFile incorrect: got %s", paths.ConfigFile)
		}
	})

	t.Run("respects RIP_DATA_DIR environment variable (highest priority)", func(t *testing.T) {
		customRoot := filepath.Join(t.TempDir(), "custom")
		t.Setenv("XDG_DATA_HOME", t.TempDir())
		t.Setenv("RIP_DATA_DIR", customRoot)

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths failed: %v", err)
		}

		if paths.Root != customRoot {
			t.Errorf("Expected root %s, got %s", customRoot, paths.Root)
		}
		if paths.Graveyard != filepath.Join(customRoot, "graveyard") {
			t.Errorf("Graveyard should be under custom root, got: %s", paths.Graveyard)
		}
	})

	t.Run("relative RIP_DATA_DIR is made absolute", func(t *testing.T) {
		t.Setenv("RIP_DATA_DIR", "relative-data")

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths failed: %v", err)
		}
		if !filepath.IsAbs(paths.Root) {
			t.Errorf("Root should be absolute, got %s", paths.Root)
		}
	})

	t.Run("respects RIP_CONFIG", func(t *testing.T) {
		t.Setenv("RIP_CONFIG", "/etc/rip.yaml")
		t.Setenv("XDG_CONFIG_HOME", "/somewhere")

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths failed: %v", err)
		}
		if paths.ConfigFile != "/etc/rip.yaml" {
			t.Errorf("Expected RIP_CONFIG to take precedence, got %s", paths.ConfigFile)
		}
	})
}

func TestPaths_EnsureDirectories(t *testing.T) {
	t.Run("creates all necessary directories", func(t *testing.T) {
		paths := NewPaths(filepath.Join(t.TempDir(), "a", "b", "rip"))

		if err := paths.EnsureDirectories(); err != nil {
			t.Fatalf("EnsureDirectories failed: %v", err)
		}

		for _, dir := range []string{paths.Root, paths.Graveyard} {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				t.Errorf("Directory %s was not created", dir)
			}
		}
		if _, err := os.Stat(paths.Catalog); !os.IsNotExist(err) {
			t.Error("EnsureDirectories should not create the catalog")
		}
	})

	t.Run("succeeds if directories already exist", func(t *testing.T) {
		paths := NewPaths(t.TempDir())
		if err := os.MkdirAll(paths.Graveyard, 0755); err != nil {
			t.Fatalf("failed to pre-create graveyard: %v", err)
		}

		if err := paths.EnsureDirectories(); err != nil {
			t.Errorf("EnsureDirectories should succeed with existing dirs: %v", err)
		}
	})
}
