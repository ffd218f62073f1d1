package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/rip/internal/fsops"
)

// ErrTxClosed is returned when a finished transaction is used again.
var ErrTxClosed = errors.New("catalog transaction already finished")

// Store loads and rewrites the catalog under an advisory lock.
type Store struct {
	fs       fsops.FS
	path     string
	lockPath string
}

// NewStore creates a Store for the catalog at path, locked through lockPath.
func NewStore(fs fsops.FS, path, lockPath string) *Store {
	return &Store{
		fs:       fs,
		path:     path,
		lockPath: lockPath,
	}
}

// Path returns the canonical catalog path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the catalog under a shared lock. A missing catalog is empty.
func (s *Store) Load() (*Catalog, error) {
	lock, err := s.lock(false)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = lock.release()
	}()

	return s.read()
}

// Begin acquires the exclusive lock, blocking until it is available, and
// loads the current catalog. The caller must finish the transaction with
// Commit or Abort.
func (s *Store) Begin() (*Tx, error) {
	lock, err := s.lock(true)
	if err != nil {
		return nil, err
	}

	cat, err := s.read()
	if err != nil {
		_ = lock.release()
		return nil, err
	}

	return &Tx{Catalog: cat, store: s, lock: lock}, nil
}

// Transact runs fn against the current catalog inside an exclusive
// transaction. The catalog is written only if fn returns nil; the lock is
// released on every path.
func (s *Store) Transact(fn func(*Catalog) error) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx.Catalog); err != nil {
		_ = tx.Abort()
		return err
	}
	return tx.Commit()
}

func (s *Store) lock(exclusive bool) (*fileLock, error) {
	if err := s.fs.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	lock, err := acquireLock(s.lockPath, exclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to lock catalog: %w", err)
	}
	return lock, nil
}

func (s *Store) read() (*Catalog, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	cat := NewCatalog()
	if err := json.Unmarshal(data, cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", s.path, err)
	}
	if cat.Items == nil {
		cat.Items = []Entry{}
	}
	return cat, nil
}

func (s *Store) write(cat *Catalog) error {
	if cat.Items == nil {
		cat.Items = []Entry{}
	}
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := fsops.AtomicWrite(s.fs, s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// Tx is an open exclusive catalog transaction.
type Tx struct {
	// Catalog is the in-memory catalog to mutate before Commit.
	Catalog *Catalog

	store *Store
	lock  *fileLock
	done  bool
}

// Commit writes the catalog atomically and releases the lock.
func (tx *Tx) Commit() error {
	if tx.done {
		return ErrTxClosed
	}
	tx.done = true

	werr := tx.store.write(tx.Catalog)
	if err := tx.lock.release(); err != nil && werr == nil {
		return fmt.Errorf("failed to unlock catalog: %w", err)
	}
	return werr
}

// Abort releases the lock without writing.
func (tx *Tx) Abort() error {
	if tx.done {
		return ErrTxClosed
	}
	tx.done = true
	return tx.lock.release()
}
