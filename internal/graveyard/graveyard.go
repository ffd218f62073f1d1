// Package graveyard provides the core logic for rip operations.
//
// The graveyard package is the orchestration layer between CLI commands and
// the durable primitives. It coordinates the safety guard, the catalog
// transaction, the journal and the move primitive for every operation.
//
// Key components:
//   - Graveyard: Main orchestrator that coordinates all operations
//   - Bury: Guarded moves into the graveyard, recorded in one transaction
//   - Resurrect: Selection, parent closure and ordered restore
//   - Prune: Permanent removal of selected entries
//   - List/Candidates/Doctor: Read-only views of the catalog and graveyard
package graveyard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/danieljhkim/rip/internal/catalog"
	"github.com/danieljhkim/rip/internal/clock"
	"github.com/danieljhkim/rip/internal/config"
	"github.com/danieljhkim/rip/internal/fsops"
	"github.com/danieljhkim/rip/internal/history"
	"github.com/danieljhkim/rip/internal/journal"
	"github.com/danieljhkim/rip/internal/picker"
)

// Options holds the optional collaborators of a Graveyard. Zero values are
// replaced with inert defaults.
type Options struct {
	// PreserveRoot refuses to bury the filesystem root, even with force
	PreserveRoot bool

	// Picker selects entries when no target is given
	Picker picker.Picker

	// Prompter asks the user to confirm a plan
	Prompter Prompter

	// History records completed items
	History history.Recorder

	// Logger receives diagnostics
	Logger *zap.Logger

	// RunID identifies this invocation in logs and history
	RunID string
}

// Graveyard orchestrates all rip operations.
// It is the main API surface called by the CLI.
type Graveyard struct {
	store        *catalog.Store
	journal      *journal.Journal
	mover        *fsops.Mover
	fs           fsops.FS
	clock        clock.Clock
	paths        config.Paths
	preserveRoot bool
	picker       picker.Picker
	prompter     Prompter
	history      history.Recorder
	logger       *zap.Logger
	runID        string
}

// New creates a new Graveyard with the given dependencies.
func New(
	store *catalog.Store,
	jrnl *journal.Journal,
	mover *fsops.Mover,
	clk clock.Clock,
	paths config.Paths,
	opts Options,
) *Graveyard {
	g := &Graveyard{
		store:        store,
		journal:      jrnl,
		mover:        mover,
		fs:           mover.FS(),
		clock:        clk,
		paths:        paths,
		preserveRoot: opts.PreserveRoot,
		picker:       opts.Picker,
		prompter:     opts.Prompter,
		history:      opts.History,
		logger:       opts.Logger,
		runID:        opts.RunID,
	}
	if g.picker == nil {
		g.picker = picker.None{}
	}
	if g.prompter == nil {
		g.prompter = declinePrompter{}
	}
	if g.history == nil {
		g.history = history.Nop{}
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	g.logger = g.logger.With(zap.String("run_id", g.runID))
	return g
}

// Paths returns the paths the graveyard operates on.
func (g *Graveyard) Paths() config.Paths {
	return g.paths
}

// record writes history events. History is informational, so failures are
// only logged.
func (g *Graveyard) record(ctx context.Context, action string, entries []catalog.Entry, sizes map[string]int64, failures []error) {
	now := g.clock.Now()
	events := make([]history.Event, 0, len(entries)+len(failures))
	for _, e := range entries {
		events = append(events, history.Event{
			RunID:        g.runID,
			Action:       action,
			OriginalPath: e.OriginalPath,
			TrashedPath:  e.TrashedPath,
			Kind:         e.Kind.String(),
			SizeBytes:    sizes[e.TrashedPath],
			At:           now,
		})
	}
	for _, err := range failures {
		ev := history.Event{RunID: g.runID, Action: action, At: now, Error: err.Error()}
		if ioErr, ok := err.(*IOError); ok {
			ev.OriginalPath = ioErr.Path
		}
		if te, ok := err.(*TargetExistsError); ok {
			ev.OriginalPath = te.Path
			ev.TrashedPath = te.Trashed
		}
		events = append(events, ev)
	}
	if err := g.history.Record(ctx, events...); err != nil {
		g.logger.Warn("failed to record history", zap.String("action", action), zap.Error(err))
	}
}

// age returns how long ago an entry was buried.
func (g *Graveyard) age(e catalog.Entry) time.Duration {
	d := g.clock.Now().Sub(time.Unix(e.DeletedAt, 0))
	if d < 0 {
		return 0
	}
	return d
}
