// Package journal is the append-only intent log that brackets moves in and
// out of the graveyard.
//
// Each line is "<STATE>\t<key>\t<path>". A bury writes PENDING before the
// move and DONE after it; a resurrect writes RESTORE_PENDING and
// RESTORE_DONE. The journal is never replayed: it exists so that an
// interrupted operation can be diagnosed (see Unmatched).
package journal

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/danieljhkim/rip/internal/fsops"
)

// State is the marker at the start of a journal line.
type State string

const (
	StatePending        State = "PENDING"
	StateDone           State = "DONE"
	StateRestorePending State = "RESTORE_PENDING"
	StateRestoreDone    State = "RESTORE_DONE"
)

// ErrMalformed is returned for a journal line that cannot be parsed.
var ErrMalformed = errors.New("malformed journal line")

// Record is one journal line.
type Record struct {
	State State
	Key   string
	Path  string
}

// String formats the record as a journal line without the newline.
func (r Record) String() string {
	return string(r.State) + "\t" + r.Key + "\t" + r.Path
}

// ParseRecord parses one journal line.
func ParseRecord(line string) (Record, error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return Record{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	st := State(parts[0])
	switch st {
	case StatePending, StateDone, StateRestorePending, StateRestoreDone:
	default:
		return Record{}, fmt.Errorf("%w: unknown state %q", ErrMalformed, parts[0])
	}
	return Record{State: st, Key: parts[1], Path: parts[2]}, nil
}

// completes maps each intent to the marker that closes it.
var completes = map[State]State{
	StatePending:        StateDone,
	StateRestorePending: StateRestoreDone,
}

// Journal appends records to a single file.
type Journal struct {
	fs   fsops.FS
	path string
}

// New creates a Journal writing to path. The file is created on first append.
func New(fs fsops.FS, path string) *Journal {
	return &Journal{fs: fs, path: path}
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// Append writes one record and fsyncs the file before returning.
func (j *Journal) Append(r Record) error {
	f, err := j.fs.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	if _, err := f.WriteString(r.String() + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to journal: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync journal: %w", err)
	}
	return f.Close()
}

// Read returns every record in the journal, oldest first. A missing journal
// has no records. Lines that do not parse are skipped and counted.
func (j *Journal) Read() ([]Record, int, error) {
	data, err := j.fs.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("failed to read journal: %w", err)
	}

	var records []Record
	skipped := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to scan journal: %w", err)
	}
	return records, skipped, nil
}

// Unmatched returns the intents that were never followed by their
// completion marker for the same key, in journal order.
func Unmatched(records []Record) []Record {
	type slot struct {
		rec   Record
		order int
	}
	open := make(map[string]slot)
	for i, r := range records {
		if _, ok := completes[r.State]; ok {
			open[string(r.State)+"\x00"+r.Key] = slot{rec: r, order: i}
			continue
		}
		for intent, done := range completes {
			if done == r.State {
				delete(open, string(intent)+"\x00"+r.Key)
			}
		}
	}

	slots := make([]slot, 0, len(open))
	for _, s := range open {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(a, b int) bool { return slots[a].order < slots[b].order })

	out := make([]Record, len(slots))
	for i, s := range slots {
		out[i] = s.rec
	}
	return out
}
