// Package integration exercises rip's graveyard end to end on the real
// filesystem, with the history database and several independent graveyard
// instances sharing one data directory.
package integration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/danieljhkim/rip/internal/catalog"
	"github.com/danieljhkim/rip/internal/clock"
	"github.com/danieljhkim/rip/internal/config"
	"github.com/danieljhkim/rip/internal/fsops"
	"github.com/danieljhkim/rip/internal/graveyard"
	"github.com/danieljhkim/rip/internal/hash"
	"github.com/danieljhkim/rip/internal/history"
	"github.com/danieljhkim/rip/internal/journal"
)

// fixture is a data directory plus a work tree to bury from.
type fixture struct {
	paths *config.Paths
	work  string
	clock *clock.FakeClock
	db    *history.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tmpDir := t.TempDir()
	paths := config.NewPaths(filepath.Join(tmpDir, "data"))
	if err := paths.EnsureDirectories(); err != nil {
		t.Fatalf("failed to create data directories: %v", err)
	}
	work := filepath.Join(tmpDir, "work")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatalf("failed to create work dir: %v", err)
	}

	db, err := history.Open(paths.History)
	if err != nil {
		t.Fatalf("failed to open history: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return &fixture{
		paths: paths,
		work:  work,
		clock: clock.NewFakeClock(time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)),
		db:    db,
	}
}

// graveyard builds an independent graveyard over the fixture's data
// directory, as a separate rip process would.
func (f *fixture) graveyard(runID string, prompter graveyard.Prompter) *graveyard.Graveyard {
	fs := fsops.NewRealFS()
	return graveyard.New(
		catalog.NewStore(fs, f.paths.Catalog, f.paths.Lock),
		journal.New(fs, f.paths.Journal),
		fsops.NewMover(fs, f.clock, fsops.WithVerifier(hash.NewSHA256Hasher())),
		f.clock,
		*f.paths,
		graveyard.Options{
			PreserveRoot: true,
			Prompter:     prompter,
			History:      f.db,
			Logger:       zap.NewNop(),
			RunID:        runID,
		},
	)
}

func (f *fixture) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(f.work, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

func (f *fixture) catalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.NewStore(fsops.NewRealFS(), f.paths.Catalog, f.paths.Lock).Load()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	return cat
}
