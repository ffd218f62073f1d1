package fsops

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/rip/internal/clock"
	"github.com/danieljhkim/rip/internal/hash"
)

const (
	// NameSeparator separates the timestamp, random id and basename of a
	// trashed filename.
	NameSeparator = "__"

	// CopyingSuffix marks the temporary sibling used by a cross-device copy.
	CopyingSuffix = ".copying"

	randomBytes = 6
)

// Mover relocates filesystem entries durably.
type Mover struct {
	fs     FS
	clock  clock.Clock
	rand   io.Reader
	verify hash.Hasher
}

// MoverOption configures a Mover.
type MoverOption func(*Mover)

// WithVerifier makes cross-device copies verify each regular file's digest
// before the source is removed.
func WithVerifier(h hash.Hasher) MoverOption {
	return func(m *Mover) { m.verify = h }
}

// WithRandom replaces the source of random name suffixes.
func WithRandom(r io.Reader) MoverOption {
	return func(m *Mover) { m.rand = r }
}

// NewMover creates a Mover over fsys.
func NewMover(fsys FS, clk clock.Clock, opts ...MoverOption) *Mover {
	m := &Mover{fs: fsys, clock: clk, rand: rand.Reader}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FS returns the filesystem the mover operates on.
func (m *Mover) FS() FS {
	return m.fs
}

// UniqueName builds "<stamp>__<random>__<basename>" from the mover's clock
// and random source. The random part is 6 bytes in unpadded URL-safe base64.
func (m *Mover) UniqueName(basename string) (string, error) {
	var b [randomBytes]byte
	if _, err := io.ReadFull(m.rand, b[:]); err != nil {
		return "", fmt.Errorf("failed to read random suffix: %w", err)
	}
	return strings.Join([]string{
		clock.Stamp(m.clock.Now()),
		base64.RawURLEncoding.EncodeToString(b[:]),
		basename,
	}, NameSeparator), nil
}

// SafeMoveUnique moves source into destDir under a fresh unique name derived
// from basename and returns the final path.
//
// Once the entry has reached the final path, the path is returned even when
// an error is also returned: a *SourceLeftError when the source could not be
// removed, or a *NotDurableError when the directory fsync failed. Moved
// reports whether an error still leaves the entry at the destination.
//
// A same-filesystem rename is attempted first. On EXDEV the tree is copied to
// "<final>.copying", fsynced, renamed onto the final name, and only then is
// the source removed. Any other rename error is returned with both paths.
func (m *Mover) SafeMoveUnique(source, destDir, basename string) (string, error) {
	if err := m.fs.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destDir, err)
	}
	_ = BestEffortSyncDir(m.fs, filepath.Dir(destDir))

	name, err := m.UniqueName(basename)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(destDir, name)

	if err := m.relocate(source, dst); err != nil {
		if Moved(err) {
			return dst, err
		}
		return "", err
	}
	return dst, nil
}

// MoveBack moves source to destination, which must not exist. It is the
// reverse of SafeMoveUnique and shares its cross-device fallback. An
// occupied destination yields an error matching os.ErrExist and is never
// replaced.
func (m *Mover) MoveBack(source, destination string) error {
	return m.relocate(source, destination)
}

// RemoveTree removes path through the mover's filesystem.
func (m *Mover) RemoveTree(path string) error {
	return RemoveTree(m.fs, path)
}

func (m *Mover) relocate(source, dst string) error {
	err := m.fs.RenameNoReplace(source, dst)
	if err == nil {
		return m.syncMoved(dst)
	}
	if !IsCrossDevice(err) {
		return fmt.Errorf("rename %s -> %s: %w", source, dst, err)
	}

	tmp := dst + CopyingSuffix
	if err := CopyTree(m.fs, source, tmp, m.verify); err != nil {
		_ = RemoveTree(m.fs, tmp)
		return fmt.Errorf("copy %s -> %s: %w", source, tmp, err)
	}
	if err := m.fs.RenameNoReplace(tmp, dst); err != nil {
		_ = RemoveTree(m.fs, tmp)
		return fmt.Errorf("rename %s -> %s: %w", tmp, dst, err)
	}
	syncErr := m.syncMoved(dst)

	if err := RemoveTree(m.fs, source); err != nil {
		return &SourceLeftError{Source: source, Destination: dst, Err: err}
	}
	return syncErr
}

// syncMoved fsyncs the directory holding a path that has already been
// renamed into place.
func (m *Mover) syncMoved(dst string) error {
	dir := filepath.Dir(dst)
	if err := BestEffortSyncDir(m.fs, dir); err != nil {
		return &NotDurableError{Destination: dst, Err: fmt.Errorf("failed to sync %s: %w", dir, err)}
	}
	return nil
}

// Moved reports whether err comes from a move that nevertheless left the
// entry at its destination.
func Moved(err error) bool {
	var left *SourceLeftError
	var durable *NotDurableError
	return errors.As(err, &left) || errors.As(err, &durable)
}

// NotDurableError reports a move that reached its destination but whose
// directory entry could not be fsynced.
type NotDurableError struct {
	Destination string
	Err         error
}

func (e *NotDurableError) Error() string {
	return fmt.Sprintf("moved to %s but it may not survive a crash: %v", e.Destination, e.Err)
}

func (e *NotDurableError) Unwrap() error {
	return e.Err
}

// SourceLeftError reports a cross-device move whose destination is complete
// and durable but whose source could not be fully removed.
type SourceLeftError struct {
	Source      string
	Destination string
	Err         error
}

func (e *SourceLeftError) Error() string {
	return fmt.Sprintf("copied %s to %s but failed to remove the source: %v", e.Source, e.Destination, e.Err)
}

func (e *SourceLeftError) Unwrap() error {
	return e.Err
}
