//go:build unix

package picker

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFzf writes an executable script standing in for fzf.
func fakeFzf(t *testing.T, body string) *Fzf {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fzf")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return &Fzf{Path: path, Stderr: io.Discard}
}

func TestFzf_Pick(t *testing.T) {
	// Select the second and third input lines, NUL-terminated like --print0.
	f := fakeFzf(t, `sed -n '2,3p' | tr '\n' '\000'`)

	picks, err := f.Pick(context.Background(), sampleEntries())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, picks)
}

func TestFzf_CancelIsEmpty(t *testing.T) {
	for _, code := range []string{"1", "130"} {
		f := fakeFzf(t, "cat >/dev/null; exit "+code)
		picks, err := f.Pick(context.Background(), sampleEntries())
		require.NoError(t, err, code)
		assert.Empty(t, picks, code)
	}
}

func TestFzf_OtherFailure(t *testing.T) {
	f := fakeFzf(t, "cat >/dev/null; exit 2")
	_, err := f.Pick(context.Background(), sampleEntries())
	assert.Error(t, err)
}

func TestFzf_NoEntries(t *testing.T) {
	f := &Fzf{Path: "/nonexistent/fzf"}
	picks, err := f.Pick(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, picks)
}
