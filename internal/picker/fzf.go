package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/danieljhkim/rip/internal/catalog"
)

// Fzf runs the external fzf binary in multi-select mode.
type Fzf struct {
	// Path is the fzf executable.
	Path string

	// Stderr receives fzf's interface; defaults to os.Stderr.
	Stderr io.Writer
}

// NewFzf creates an Fzf picker for the executable at path.
func NewFzf(path string) *Fzf {
	return &Fzf{Path: path, Stderr: os.Stderr}
}

// Pick feeds one line per entry to fzf and maps the chosen lines back to
// indices. fzf exiting with 1 (no match) or 130 (interrupted) is a cancel.
func (f *Fzf) Pick(ctx context.Context, entries []catalog.Entry) ([]int, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	cmd := exec.CommandContext(ctx, f.Path,
		"--multi",
		"--height=40%",
		"--layout=reverse",
		"--border",
		"--print0",
		"--delimiter", "\t",
		"--with-nth", "2..",
	)
	cmd.Stdin = strings.NewReader(fzfInput(entries))
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = f.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			switch exitErr.ExitCode() {
			case 1, 130:
				return nil, nil
			}
		}
		return nil, fmt.Errorf("fzf failed: %w", err)
	}

	return parseSelection(out.Bytes(), len(entries)), nil
}

// fzfInput renders "<index>\t<when>\t<original>\t->\t<trashed>" lines. The
// index column is hidden from display by --with-nth.
func fzfInput(entries []catalog.Entry) string {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d\t%s\t%s\t->\t%s\n", i, formatWhen(e.DeletedAt), e.OriginalPath, e.TrashedPath)
	}
	return b.String()
}

// parseSelection reads NUL-separated selected lines and returns their
// leading index field.
func parseSelection(out []byte, n int) []int {
	var picks []int
	for _, rec := range bytes.Split(out, []byte{0}) {
		line := strings.TrimSpace(string(rec))
		if line == "" {
			continue
		}
		field, _, _ := strings.Cut(line, "\t")
		i, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		picks = append(picks, i)
	}
	return normalize(picks, n)
}
