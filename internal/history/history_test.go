package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

	require.NoError(t, db.Record(ctx,
		Event{RunID: "r1", Action: ActionBury, OriginalPath: "/a", TrashedPath: "/gy/1__x__a", Kind: "File", SizeBytes: 4, At: base},
		Event{RunID: "r1", Action: ActionBury, OriginalPath: "/b", TrashedPath: "/gy/1__y__b", Kind: "Dir", At: base},
	))
	require.NoError(t, db.Record(ctx,
		Event{RunID: "r2", Action: ActionPrune, OriginalPath: "/a", TrashedPath: "/gy/1__x__a", Kind: "File", At: base.Add(time.Minute), Error: "permission denied"},
	))

	events, err := db.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, ActionPrune, events[0].Action, "newest first")
	assert.Equal(t, "permission denied", events[0].Error)
	assert.True(t, events[0].At.Equal(base.Add(time.Minute)))
	assert.Equal(t, "/b", events[1].OriginalPath, "same timestamp falls back to insertion order")
	assert.Equal(t, int64(4), events[2].SizeBytes)

	limited, err := db.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecord_NoEvents(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Record(context.Background()))
	events, err := db.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Record(context.Background(), Event{RunID: "r", Action: ActionResurrect, OriginalPath: "/a", TrashedPath: "/gy/a", Kind: "File", At: time.Now()}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	events, err := db.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NoError(t, r.Record(context.Background(), Event{}))
}
