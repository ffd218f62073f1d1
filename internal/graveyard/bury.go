package graveyard

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/danieljhkim/rip/internal/catalog"
	"github.com/danieljhkim/rip/internal/fsops"
	"github.com/danieljhkim/rip/internal/history"
	"github.com/danieljhkim/rip/internal/journal"
	"github.com/danieljhkim/rip/internal/safety"
)

// Bury moves every path into the graveyard and records it in the catalog.
//
// Every path is guarded before anything moves; a forbidden path returns its
// *safety.ForbiddenError and nothing is changed. Items are then moved one by
// one inside a single catalog transaction. A failing item is reported in
// Failures and later items are still attempted; every item that moved is
// committed.
func (g *Graveyard) Bury(ctx context.Context, req BuryRequest) (*BuryResult, error) {
	guardCtx := safety.Context{
		DataDir:      g.paths.Root,
		Graveyard:    g.paths.Graveyard,
		PreserveRoot: g.preserveRoot,
		Force:        req.Force,
	}
	for _, p := range req.Paths {
		if err := safety.Guard(p, guardCtx); err != nil {
			return nil, err
		}
	}

	tx, err := g.store.Begin()
	if err != nil {
		return nil, err
	}

	result := &BuryResult{}
	sizes := make(map[string]int64)
	for _, raw := range req.Paths {
		entry, size, err := g.buryOne(raw)
		if entry != nil {
			tx.Catalog.Append(*entry)
			result.Buried = append(result.Buried, *entry)
			sizes[entry.TrashedPath] = size
		}
		if err != nil {
			g.logger.Warn("bury failed", zap.String("original", raw), zap.Error(err))
			result.Failures = append(result.Failures, err)
		}
	}

	if len(result.Buried) == 0 {
		if err := tx.Abort(); err != nil {
			return result, err
		}
		g.record(ctx, history.ActionBury, nil, nil, result.Failures)
		return result, nil
	}
	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to record %d buried item(s): %w", len(result.Buried), err)
	}
	g.logger.Debug("catalog committed", zap.Int("buried", len(result.Buried)))

	g.record(ctx, history.ActionBury, result.Buried, sizes, result.Failures)
	return result, nil
}

// buryOne moves a single path. A non-nil entry means the path is now in the
// graveyard and must be recorded, even when an error is also returned.
func (g *Graveyard) buryOne(raw string) (*catalog.Entry, int64, error) {
	abs, err := filepath.Abs(raw)
	if err != nil {
		return nil, 0, &IOError{Op: "resolve", Path: raw, Err: err}
	}
	basename := filepath.Base(filepath.Clean(raw))

	// Captured before the move; the tree may change underneath us.
	info, err := g.fs.Lstat(abs)
	if err != nil {
		return nil, 0, &IOError{Op: "stat", Path: abs, Err: err}
	}
	kind := catalog.KindOf(info)
	var size int64
	if info.Mode().IsRegular() {
		size = info.Size()
	}

	if err := g.journal.Append(journal.Record{State: journal.StatePending, Key: abs, Path: basename}); err != nil {
		return nil, 0, &IOError{Op: "journal", Path: abs, Err: err}
	}

	trashed, moveErr := g.mover.SafeMoveUnique(abs, g.paths.Graveyard, basename)
	if moveErr != nil && !fsops.Moved(moveErr) {
		return nil, 0, &IOError{Op: "bury", Path: abs, Err: moveErr}
	}

	if err := g.journal.Append(journal.Record{State: journal.StateDone, Key: abs, Path: trashed}); err != nil {
		g.logger.Warn("failed to append journal completion", zap.String("original", abs), zap.Error(err))
	}
	g.logger.Debug("buried", zap.String("original", abs), zap.String("trashed", trashed), zap.Stringer("kind", kind))

	entry := &catalog.Entry{
		OriginalPath: abs,
		TrashedPath:  trashed,
		DeletedAt:    g.clock.Now().Unix(),
		Kind:         kind,
	}
	if moveErr != nil {
		return entry, size, &IOError{Op: "bury", Path: abs, Err: moveErr}
	}
	return entry, size, nil
}
