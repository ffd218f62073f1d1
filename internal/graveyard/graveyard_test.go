package graveyard

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/rip/internal/catalog"
	"github.com/danieljhkim/rip/internal/clock"
	"github.com/danieljhkim/rip/internal/config"
	"github.com/danieljhkim/rip/internal/fsops"
	"github.com/danieljhkim/rip/internal/journal"
	"github.com/danieljhkim/rip/internal/picker"
)

// scriptedPrompter answers questions from a fixed list.
type scriptedPrompter struct {
	answers []string
	asked   []string
}

func (p *scriptedPrompter) Ask(_ context.Context, _ *Plan, question string) (string, error) {
	p.asked = append(p.asked, question)
	if len(p.answers) == 0 {
		return "", nil
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

// fakePicker returns fixed indices.
type fakePicker struct {
	picks []int
	seen  int
}

func (p *fakePicker) Pick(_ context.Context, entries []catalog.Entry) ([]int, error) {
	p.seen = len(entries)
	return p.picks, nil
}

type testEnv struct {
	g        *Graveyard
	paths    *config.Paths
	work     string
	clock    *clock.FakeClock
	prompter *scriptedPrompter
}

type envOption func(*Options, *[]fsops.MoverOption, *fsops.FS)

func withPicker(p picker.Picker) envOption {
	return func(o *Options, _ *[]fsops.MoverOption, _ *fsops.FS) { o.Picker = p }
}

// withFixedIDs makes every short id "0000000" so fuzzy targets never hit an id.
func withFixedIDs() envOption {
	return func(_ *Options, m *[]fsops.MoverOption, _ *fsops.FS) {
		*m = append(*m, fsops.WithRandom(bytes.NewReader(bytes.Repeat([]byte{0xd3, 0x4d, 0x34}, 2*64))))
	}
}

func withFS(fs fsops.FS) envOption {
	return func(_ *Options, _ *[]fsops.MoverOption, f *fsops.FS) { *f = fs }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	tmp := t.TempDir()
	paths := config.NewPaths(filepath.Join(tmp, "data"))
	require.NoError(t, paths.EnsureDirectories())
	work := filepath.Join(tmp, "work")
	require.NoError(t, os.MkdirAll(work, 0o755))

	prompter := &scriptedPrompter{}
	o := Options{PreserveRoot: true, Prompter: prompter, RunID: "test-run"}
	var moverOpts []fsops.MoverOption
	var fs fsops.FS = fsops.NewRealFS()
	for _, opt := range opts {
		opt(&o, &moverOpts, &fs)
	}

	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 8, 30, 0, 0, time.Local))
	g := New(
		catalog.NewStore(fs, paths.Catalog, paths.Lock),
		journal.New(fs, paths.Journal),
		fsops.NewMover(fs, clk, moverOpts...),
		clk,
		*paths,
		o,
	)
	return &testEnv{g: g, paths: paths, work: work, clock: clk, prompter: prompter}
}

func (e *testEnv) file(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(e.work, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (e *testEnv) bury(t *testing.T, paths ...string) []catalog.Entry {
	t.Helper()
	res, err := e.g.Bury(context.Background(), BuryRequest{Paths: paths})
	require.NoError(t, err)
	require.Empty(t, res.Failures)
	return res.Buried
}

func (e *testEnv) catalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.NewStore(fsops.NewRealFS(), e.paths.Catalog, e.paths.Lock).Load()
	require.NoError(t, err)
	return cat
}

func TestNew_Defaults(t *testing.T) {
	fs := fsops.NewRealFS()
	clk := clock.NewFakeClock(time.Now())
	paths := config.NewPaths(t.TempDir())
	g := New(catalog.NewStore(fs, paths.Catalog, paths.Lock), journal.New(fs, paths.Journal), fsops.NewMover(fs, clk), clk, *paths, Options{})

	assert.IsType(t, picker.None{}, g.picker)
	assert.IsType(t, declinePrompter{}, g.prompter)
	assert.NotNil(t, g.history)
	assert.NotNil(t, g.logger)
	assert.Equal(t, paths.Graveyard, g.Paths().Graveyard)
}

func TestConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		plan      Plan
		assumeYes bool
		want      Confirmation
	}{
		{"everything", Plan{All: true, Explicit: 3}, false, ConfirmToken},
		{"everything single", Plan{All: true, Explicit: 1}, false, ConfirmToken},
		{"one item", Plan{Explicit: 1}, false, ConfirmYesNo},
		{"several items", Plan{Explicit: 2}, false, ConfirmNone},
		{"assume yes", Plan{All: true, Explicit: 1}, true, ConfirmNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, confirmation(&tt.plan, tt.assumeYes))
		})
	}

	assert.Equal(t, "Type YES to confirm: ", ConfirmToken.Prompt())
	assert.Equal(t, "Confirm (y/N): ", ConfirmYesNo.Prompt())
	assert.Empty(t, ConfirmNone.Prompt())
}

func TestCloseOverParents(t *testing.T) {
	cat := &catalog.Catalog{Items: []catalog.Entry{
		{OriginalPath: "/home/u/a/b/c.txt", TrashedPath: "/g/3"},
		{OriginalPath: "/home/u/a", TrashedPath: "/g/1"},
		{OriginalPath: "/home/u/a/b", TrashedPath: "/g/2"},
		{OriginalPath: "/home/u/other", TrashedPath: "/g/4"},
	}}

	indices, added := closeOverParents(cat, []int{0})
	assert.Equal(t, []int{0, 1, 2}, indices)
	assert.Equal(t, []string{"/home/u/a", "/home/u/a/b"}, added)

	entries := []catalog.Entry{cat.Items[0], cat.Items[1], cat.Items[2]}
	byDepth(entries)
	assert.Equal(t, "/home/u/a", entries[0].OriginalPath)
	assert.Equal(t, "/home/u/a/b", entries[1].OriginalPath)
	assert.Equal(t, "/home/u/a/b/c.txt", entries[2].OriginalPath)

	indices, added = closeOverParents(cat, []int{3})
	assert.Equal(t, []int{3}, indices)
	assert.Empty(t, added)
}

func TestCompactAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{42 * time.Second, "42s"},
		{time.Minute + 47*time.Second, "1m47s"},
		{3*time.Hour + 12*time.Minute + 5*time.Second, "3h12m"},
		{48 * time.Hour, "2d"},
		{9*24*time.Hour + 5*time.Hour, "1w2d"},
		{7*24*time.Hour + 5*time.Hour, "1w5h"},
		{time.Hour + 30*time.Second, "1h30s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompactAge(tt.d), tt.d.String())
	}
}

func TestSelectionError(t *testing.T) {
	err := &SelectionError{Target: "x"}
	assert.Equal(t, "no graveyard entry matches 'x'", err.Error())
	assert.False(t, err.Ambiguous())
	assert.ErrorIs(t, err, ErrSelection)

	err = &SelectionError{Target: "x", Candidates: []ListEntry{{ID: "aaa"}, {ID: "bbb"}}}
	assert.True(t, err.Ambiguous())
	assert.Contains(t, err.Error(), "aaa, bbb")
}
