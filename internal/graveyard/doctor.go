package graveyard

import (
	"path/filepath"
	"strings"

	"github.com/danieljhkim/rip/internal/catalog"
	"github.com/danieljhkim/rip/internal/fsops"
	"github.com/danieljhkim/rip/internal/journal"
	"github.com/danieljhkim/rip/internal/safety"
)

// Report is the result of Doctor. Nothing in it is repaired automatically.
type Report struct {
	// Unmatched are journal intents without a completion marker
	Unmatched []journal.Record `json:"unmatched"`

	// SkippedLines counts journal lines that could not be parsed
	SkippedLines int `json:"skipped_lines"`

	// Copying are interrupted cross-device copies left in the graveyard
	Copying []string `json:"copying"`

	// Missing are entries whose trashed path no longer exists
	Missing []catalog.Entry `json:"missing"`

	// Untracked are graveyard children no entry refers to
	Untracked []string `json:"untracked"`
}

// Healthy reports whether the report found nothing.
func (r *Report) Healthy() bool {
	return len(r.Unmatched) == 0 && r.SkippedLines == 0 && len(r.Copying) == 0 &&
		len(r.Missing) == 0 && len(r.Untracked) == 0
}

// Doctor inspects the journal, catalog and graveyard for leftovers of
// interrupted operations.
func (g *Graveyard) Doctor() (*Report, error) {
	report := &Report{}

	records, skipped, err := g.journal.Read()
	if err != nil {
		return nil, err
	}
	report.Unmatched = journal.Unmatched(records)
	report.SkippedLines = skipped

	cat, err := g.store.Load()
	if err != nil {
		return nil, err
	}
	for _, e := range cat.Items {
		exists, err := fsops.Exists(g.fs, e.TrashedPath)
		if err != nil {
			return nil, &IOError{Op: "stat", Path: e.TrashedPath, Err: err}
		}
		if !exists {
			report.Missing = append(report.Missing, e)
		}
	}

	children, err := g.fs.ReadDir(g.paths.Graveyard)
	if err != nil && !isGone(err) {
		return nil, &IOError{Op: "read", Path: g.paths.Graveyard, Err: err}
	}
	for _, child := range children {
		name := child.Name()
		switch name {
		case safety.JournalFileName, safety.LockFileName, safety.CatalogFileName:
			continue
		}
		path := filepath.Join(g.paths.Graveyard, name)
		if strings.HasSuffix(name, fsops.CopyingSuffix) {
			report.Copying = append(report.Copying, path)
			continue
		}
		if cat.Find(path) < 0 {
			report.Untracked = append(report.Untracked, path)
		}
	}
	return report, nil
}
