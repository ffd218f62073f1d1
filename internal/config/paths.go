// Package config manages rip's filesystem paths and user settings.
//
// All data lives under one data directory: the catalog (index.json), its
// lock file, the history database and the graveyard directory, which also
// holds the journal. The data directory defaults to $XDG_DATA_HOME/rip and
// can be moved with RIP_DATA_DIR. Settings are read from a YAML file under
// $XDG_CONFIG_HOME/rip and overridden by RIP_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/rip/internal/safety"
)

// Paths contains all the filesystem paths used by rip.
type Paths struct {
	// Root is the data directory (default: ~/.local/share/rip)
	Root string

	// Graveyard is the directory holding buried entries
	Graveyard string

	// Catalog is the path to index.json
	Catalog string

	// Lock is the path to the catalog lock file
	Lock string

	// Journal is the path to the write-ahead journal inside the graveyard
	Journal string

	// History is the path to the SQLite history database
	History string

	// ConfigFile is the path to the settings file
	ConfigFile string
}

// NewPaths derives every data path from root. ConfigFile is left as given by
// DefaultPaths.
func NewPaths(root string) *Paths {
	graveyard := filepath.Join(root, "graveyard")
	return &Paths{
		Root:      root,
		Graveyard: graveyard,
		Catalog:   filepath.Join(root, safety.CatalogFileName),
		Lock:      filepath.Join(root, safety.LockFileName),
		Journal:   filepath.Join(graveyard, safety.JournalFileName),
		History:   filepath.Join(root, "history.db"),
	}
}

// DefaultPaths returns the default paths for rip.
// Paths can be overridden with environment variables:
// - RIP_DATA_DIR: Override the data directory
// - XDG_DATA_HOME: Base for the data directory when RIP_DATA_DIR is unset
// - RIP_CONFIG: Override the settings file
// - XDG_CONFIG_HOME: Base for the settings file when RIP_CONFIG is unset
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("RIP_DATA_DIR")
	if root == "" {
		base := os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get user home directory: %w", err)
			}
			base = filepath.Join(home, ".local", "share")
		}
		root = filepath.Join(base, "rip")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory %s: %w", root, err)
	}

	paths := NewPaths(abs)

	paths.ConfigFile = os.Getenv("RIP_CONFIG")
	if paths.ConfigFile == "" {
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get user home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
		paths.ConfigFile = filepath.Join(base, "rip", "config.yaml")
	}

	return paths, nil
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.Root,
		p.Graveyard,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
