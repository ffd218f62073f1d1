// Package picker lets the user choose catalog entries interactively.
//
// A Picker receives a catalog snapshot and returns the indices of the chosen
// entries, sorted and without duplicates. An empty result means the user
// cancelled.
package picker

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"time"

	"github.com/danieljhkim/rip/internal/catalog"
)

// ErrUnavailable is returned when no interactive picker can run.
var ErrUnavailable = errors.New("no interactive picker available")

// Picker selects entries from a snapshot.
type Picker interface {
	Pick(ctx context.Context, entries []catalog.Entry) ([]int, error)
}

// None never picks; callers fall back to non-interactive behaviour.
type None struct{}

// Pick returns ErrUnavailable.
func (None) Pick(context.Context, []catalog.Entry) ([]int, error) {
	return nil, ErrUnavailable
}

// New returns the picker for mode ("auto", "fzf", "tui" or "none").
// Auto prefers fzf when it is on PATH and the built-in TUI otherwise.
func New(mode string) (Picker, error) {
	switch mode {
	case "none":
		return None{}, nil
	case "tui":
		return NewTUI(), nil
	case "fzf":
		path, err := exec.LookPath("fzf")
		if err != nil {
			return nil, fmt.Errorf("%w: fzf not found on PATH", ErrUnavailable)
		}
		return NewFzf(path), nil
	case "", "auto":
		if path, err := exec.LookPath("fzf"); err == nil {
			return NewFzf(path), nil
		}
		return NewTUI(), nil
	default:
		return nil, fmt.Errorf("unknown picker %q", mode)
	}
}

// formatWhen renders an epoch timestamp in local time.
func formatWhen(epoch int64) string {
	return time.Unix(epoch, 0).Local().Format("2006-01-02 15:04:05")
}

// normalize sorts indices, drops duplicates and anything out of range.
func normalize(picks []int, n int) []int {
	seen := make(map[int]bool, len(picks))
	out := make([]int, 0, len(picks))
	for _, i := range picks {
		if i < 0 || i >= n || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
