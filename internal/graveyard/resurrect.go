package graveyard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/danieljhkim/rip/internal/catalog"
	"github.com/danieljhkim/rip/internal/fsops"
	"github.com/danieljhkim/rip/internal/history"
	"github.com/danieljhkim/rip/internal/journal"
)

// Resurrect restores the entries selected by req.Target to their original
// paths.
//
// Buried parents of the selected entries are added to the plan and restored
// first. A *SelectionError is returned when the target matches nothing, or
// matches several entries without AssumeYes. Per-item failures (an occupied
// destination, an I/O error) leave that entry buried and are reported in
// Failures.
func (g *Graveyard) Resurrect(ctx context.Context, req ResurrectRequest) (*ResurrectResult, error) {
	snapshot, err := g.store.Load()
	if err != nil {
		return nil, err
	}

	sel, err := g.selectEntries(ctx, snapshot, req.Target, selectOptions{assumeYes: req.AssumeYes})
	if err != nil {
		return nil, err
	}
	result := &ResurrectResult{}
	if len(sel.indices) == 0 {
		result.Aborted = true
		return result, nil
	}

	plan := g.plan(snapshot, sel, true)
	plan.Confirm = confirmation(plan, req.AssumeYes)
	result.Plan = plan

	if req.DryRun {
		result.DryRun = true
		return result, nil
	}

	proceed, prompted, err := g.confirm(ctx, plan)
	result.Prompted = prompted
	if err != nil {
		return result, err
	}
	if !proceed {
		result.Aborted = true
		return result, nil
	}

	tx, err := g.store.Begin()
	if err != nil {
		return result, err
	}

	for _, e := range plan.Entries {
		if tx.Catalog.Find(e.TrashedPath) < 0 {
			g.logger.Info("entry no longer in catalog", zap.String("trashed", e.TrashedPath))
			result.Gone = append(result.Gone, e)
			continue
		}

		restored, err := g.restoreOne(e)
		if restored {
			tx.Catalog.Remove(e.TrashedPath)
			result.Restored = append(result.Restored, e)
		}
		if err != nil {
			g.logger.Warn("restore failed", zap.String("original", e.OriginalPath), zap.Error(err))
			result.Failures = append(result.Failures, err)
		}
	}

	if len(result.Restored) == 0 {
		if err := tx.Abort(); err != nil {
			return result, err
		}
	} else if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to remove %d restored item(s) from the catalog: %w", len(result.Restored), err)
	}

	g.record(ctx, history.ActionResurrect, result.Restored, nil, result.Failures)
	return result, nil
}

// restoreOne moves e back to its original path. It reports whether the entry
// left the graveyard, which can be true alongside an error when the move
// completed but the trashed tree could not be fully removed or the directory
// fsync failed.
func (g *Graveyard) restoreOne(e catalog.Entry) (bool, error) {
	parent := filepath.Dir(e.OriginalPath)
	if err := g.fs.MkdirAll(parent, 0o755); err != nil {
		return false, &IOError{Op: "mkdir", Path: parent, Err: err}
	}

	exists, err := fsops.Exists(g.fs, e.OriginalPath)
	if err != nil {
		return false, &IOError{Op: "stat", Path: e.OriginalPath, Err: err}
	}
	if exists {
		return false, &TargetExistsError{Path: e.OriginalPath, Trashed: e.TrashedPath}
	}

	if err := g.journal.Append(journal.Record{State: journal.StateRestorePending, Key: e.TrashedPath, Path: e.OriginalPath}); err != nil {
		return false, &IOError{Op: "journal", Path: e.TrashedPath, Err: err}
	}

	moveErr := g.mover.MoveBack(e.TrashedPath, e.OriginalPath)
	if errors.Is(moveErr, os.ErrExist) {
		// Created after the existence check.
		return false, &TargetExistsError{Path: e.OriginalPath, Trashed: e.TrashedPath}
	}
	if moveErr != nil && !fsops.Moved(moveErr) {
		return false, &IOError{Op: "restore", Path: e.OriginalPath, Err: moveErr}
	}

	if err := g.journal.Append(journal.Record{State: journal.StateRestoreDone, Key: e.TrashedPath, Path: e.OriginalPath}); err != nil {
		g.logger.Warn("failed to append journal completion", zap.String("trashed", e.TrashedPath), zap.Error(err))
	}
	g.logger.Debug("restored", zap.String("original", e.OriginalPath), zap.String("trashed", e.TrashedPath))

	if moveErr != nil {
		return true, &IOError{Op: "restore", Path: e.OriginalPath, Err: moveErr}
	}
	return true, nil
}
