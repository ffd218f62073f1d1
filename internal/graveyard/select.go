package graveyard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/danieljhkim/rip/internal/catalog"
	"github.com/danieljhkim/rip/internal/picker"
)

// selection is the outcome of matching a target against a catalog snapshot.
type selection struct {
	indices []int
	all     bool
}

// selectOptions controls how an empty target is resolved.
type selectOptions struct {
	assumeYes bool

	// allWithoutPicker selects the whole catalog when no target is given and
	// no picker is available
	allWithoutPicker bool
}

// selectEntries resolves target against cat. The returned indices are in
// catalog order.
func (g *Graveyard) selectEntries(ctx context.Context, cat *catalog.Catalog, target string, opts selectOptions) (*selection, error) {
	if cat.Len() == 0 {
		return nil, ErrEmpty
	}

	if strings.TrimSpace(target) == "" {
		return g.pick(ctx, cat, opts)
	}

	if i := cat.Find(target); i >= 0 {
		return &selection{indices: []int{i}}, nil
	}
	if abs, err := filepath.Abs(target); err == nil {
		if i := cat.Find(abs); i >= 0 {
			return &selection{indices: []int{i}}, nil
		}
	}

	matches, err := matchTarget(cat, target)
	if err != nil {
		return nil, err
	}
	switch {
	case len(matches) == 0:
		return nil, &SelectionError{Target: target}
	case len(matches) > 1 && !opts.assumeYes:
		candidates := make([]ListEntry, len(matches))
		for n, i := range matches {
			candidates[n] = g.listEntry(cat.Items[i])
		}
		return nil, &SelectionError{Target: target, Candidates: candidates}
	}
	return &selection{indices: matches}, nil
}

// pick asks the picker for a selection.
func (g *Graveyard) pick(ctx context.Context, cat *catalog.Catalog, opts selectOptions) (*selection, error) {
	if _, none := g.picker.(picker.None); none {
		if opts.allWithoutPicker {
			all := make([]int, cat.Len())
			for i := range all {
				all[i] = i
			}
			return &selection{indices: all, all: true}, nil
		}
		return nil, &SelectionError{Reason: "no target given and no interactive picker available"}
	}

	picked, err := g.picker.Pick(ctx, cat.Items)
	if err != nil {
		return nil, fmt.Errorf("picker failed: %w", err)
	}
	return &selection{indices: picked}, nil
}

// hasGlobMeta reports whether target should be matched as a glob.
func hasGlobMeta(target string) bool {
	return strings.ContainsAny(target, "*?[{")
}

// matchTarget returns the indices of entries matching target. A glob is
// matched against the basename; anything else matches a basename substring or
// a short-id prefix. Matching is case-insensitive.
func matchTarget(cat *catalog.Catalog, target string) ([]int, error) {
	needle := strings.ToLower(target)
	glob := hasGlobMeta(target)
	if glob && !doublestar.ValidatePattern(needle) {
		return nil, &SelectionError{Target: target, Reason: fmt.Sprintf("invalid pattern '%s'", target)}
	}

	var matches []int
	for i, e := range cat.Items {
		base := strings.ToLower(e.Basename())
		if glob {
			ok, err := doublestar.Match(needle, base)
			if err != nil {
				return nil, &SelectionError{Target: target, Reason: err.Error()}
			}
			if ok {
				matches = append(matches, i)
			}
			continue
		}
		id := strings.ToLower(e.ShortID())
		if strings.Contains(base, needle) || (id != "-" && strings.HasPrefix(id, needle)) {
			matches = append(matches, i)
		}
	}
	return matches, nil
}

// closeOverParents adds every buried ancestor of the selected entries until
// no more are found. It returns the full set in catalog order and the
// original paths of the entries it added.
func closeOverParents(cat *catalog.Catalog, indices []int) ([]int, []string) {
	byOriginal := cat.ByOriginal()
	selected := make(map[int]bool, len(indices))
	for _, i := range indices {
		selected[i] = true
	}

	var added []string
	queue := append([]int(nil), indices...)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]

		for dir := filepath.Dir(cat.Items[i].OriginalPath); ; dir = filepath.Dir(dir) {
			if j, ok := byOriginal[dir]; ok && !selected[j] {
				selected[j] = true
				added = append(added, dir)
				queue = append(queue, j)
			}
			if parent := filepath.Dir(dir); parent == dir {
				break
			}
		}
	}

	all := make([]int, 0, len(selected))
	for i := range selected {
		all = append(all, i)
	}
	sort.Ints(all)
	sort.Strings(added)
	return all, added
}

// depth counts the separators in a clean absolute path.
func depth(path string) int {
	return strings.Count(filepath.Clean(path), string(os.PathSeparator))
}

// byDepth orders entries parents first. Burial order is kept among entries of
// equal depth.
func byDepth(entries []catalog.Entry) {
	sort.SliceStable(entries, func(a, b int) bool {
		return depth(entries[a].OriginalPath) < depth(entries[b].OriginalPath)
	})
}

// plan builds the ordered plan for the selected indices.
func (g *Graveyard) plan(cat *catalog.Catalog, sel *selection, closure bool) *Plan {
	p := &Plan{Explicit: len(sel.indices)}

	indices := sel.indices
	if closure {
		indices, p.AutoAdded = closeOverParents(cat, indices)
	}

	p.Entries = make([]catalog.Entry, len(indices))
	for n, i := range indices {
		p.Entries[n] = cat.Items[i]
	}
	byDepth(p.Entries)
	p.All = sel.all || (len(p.Entries) > 0 && len(p.Entries) == cat.Len())
	return p
}

// confirmation decides what the user must answer before p is applied.
func confirmation(p *Plan, assumeYes bool) Confirmation {
	switch {
	case assumeYes:
		return ConfirmNone
	case p.All:
		return ConfirmToken
	case p.Explicit == 1:
		return ConfirmYesNo
	default:
		return ConfirmNone
	}
}

// confirm asks the prompter when p needs it. It reports whether to proceed
// and whether a question was asked.
func (g *Graveyard) confirm(ctx context.Context, p *Plan) (proceed, prompted bool, err error) {
	if p.Confirm == ConfirmNone {
		return true, false, nil
	}
	answer, err := g.prompter.Ask(ctx, p, p.Confirm.Prompt())
	if err != nil {
		return false, true, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if p.Confirm == ConfirmToken {
		return answer == ConfirmWord, true, nil
	}
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes"), true, nil
}

// isGone reports whether err means the path no longer exists.
func isGone(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
