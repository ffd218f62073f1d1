package graveyard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/danieljhkim/rip/internal/catalog"
	"github.com/danieljhkim/rip/internal/history"
	"github.com/danieljhkim/rip/internal/safety"
)

// Prune permanently deletes the entries selected by req.Target.
//
// With no target the picker selects; without a picker the whole catalog is
// selected. The selection is checked again against the catalog inside the
// transaction. A trashed path that is already gone counts as removed; an entry
// whose removal fails stays in the catalog. Pruning everything also sweeps
// untracked files from the graveyard, sparing the journal and lock files.
func (g *Graveyard) Prune(ctx context.Context, req PruneRequest) (*PruneResult, error) {
	snapshot, err := g.store.Load()
	if err != nil {
		return nil, err
	}

	sel, err := g.selectEntries(ctx, snapshot, req.Target, selectOptions{
		assumeYes:        req.AssumeYes,
		allWithoutPicker: true,
	})
	if err != nil {
		return nil, err
	}
	result := &PruneResult{}
	if len(sel.indices) == 0 {
		result.Aborted = true
		return result, nil
	}

	plan := g.plan(snapshot, sel, false)
	plan.Confirm = confirmation(plan, req.AssumeYes)
	plan.TotalBytes = g.treeSize(ctx, plan.Entries)
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
			continue
		}
		if err := g.mover.RemoveTree(e.TrashedPath); err != nil && !isGone(err) {
			g.logger.Warn("prune failed", zap.String("trashed", e.TrashedPath), zap.Error(err))
			result.Failures = append(result.Failures, &IOError{Op: "remove", Path: e.TrashedPath, Err: err})
			continue
		}
		tx.Catalog.Remove(e.TrashedPath)
		result.Removed = append(result.Removed, e)
		g.logger.Debug("pruned", zap.String("original", e.OriginalPath), zap.String("trashed", e.TrashedPath))
	}

	if plan.All {
		result.Swept = g.sweep(tx.Catalog)
	}

	if len(result.Removed) == 0 {
		if err := tx.Abort(); err != nil {
			return result, err
		}
	} else if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to remove %d pruned item(s) from the catalog: %w", len(result.Removed), err)
	}

	g.record(ctx, history.ActionPrune, result.Removed, nil, result.Failures)
	return result, nil
}

// sweep removes graveyard children that no remaining entry refers to. The
// journal and lock files are never touched. Failures are logged and skipped.
func (g *Graveyard) sweep(kept *catalog.Catalog) []string {
	children, err := g.fs.ReadDir(g.paths.Graveyard)
	if err != nil {
		if !isGone(err) {
			g.logger.Warn("failed to read graveyard", zap.String("path", g.paths.Graveyard), zap.Error(err))
		}
		return nil
	}

	var swept []string
	for _, child := range children {
		switch child.Name() {
		case safety.JournalFileName, safety.LockFileName, safety.CatalogFileName:
			continue
		}
		path := filepath.Join(g.paths.Graveyard, child.Name())
		if kept.Find(path) >= 0 {
			continue
		}
		if err := g.mover.RemoveTree(path); err != nil && !isGone(err) {
			g.logger.Warn("failed to sweep", zap.String("path", path), zap.Error(err))
			continue
		}
		swept = append(swept, path)
	}
	return swept
}

// treeSize sums the sizes of regular files under each entry's trashed path.
// Unreadable paths are skipped; the result is an estimate for the summary.
func (g *Graveyard) treeSize(ctx context.Context, entries []catalog.Entry) int64 {
	var total atomic.Int64
	conf := fastwalk.Config{
		Follow: false,
	}

	for _, e := range entries {
		info, err := g.fs.Lstat(e.TrashedPath)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			if info.Mode().IsRegular() {
				total.Add(info.Size())
			}
			continue
		}

		err = fastwalk.Walk(&conf, e.TrashedPath, func(path string, d os.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil || !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			total.Add(info.Size())
			return nil
		})
		if err != nil {
			g.logger.Debug("size walk incomplete", zap.String("path", e.TrashedPath), zap.Error(err))
		}
	}
	return total.Load()
}
