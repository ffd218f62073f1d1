package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ShortIDLen is the number of characters of the random name segment shown
// as an entry's id.
const ShortIDLen = 7

// Kind is the type of a buried filesystem entry, captured before it moved.
type Kind int

const (
	// KindOther is the zero value so entries written without a kind decode as Other.
	KindOther Kind = iota
	KindFile
	KindDir
	KindSymlink
)

// KindOf classifies file info obtained with Lstat.
func KindOf(info os.FileInfo) Kind {
	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return KindSymlink
	case mode.IsDir():
		return KindDir
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "File"
	case KindDir:
		return "Dir"
	case KindSymlink:
		return "Symlink"
	default:
		return "Other"
	}
}

// Letter is the one-character form used in listings.
func (k Kind) Letter() string {
	switch k {
	case KindFile:
		return "F"
	case KindDir:
		return "D"
	case KindSymlink:
		return "L"
	default:
		return "?"
	}
}

// MarshalText encodes the kind as its name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "File":
		*k = KindFile
	case "Dir":
		*k = KindDir
	case "Symlink":
		*k = KindSymlink
	case "Other", "":
		*k = KindOther
	default:
		return fmt.Errorf("unknown entry kind %q", text)
	}
	return nil
}

// Entry is one buried filesystem entry.
type Entry struct {
	// OriginalPath is the absolute path the entry was buried from
	OriginalPath string `json:"original_path"`

	// TrashedPath is the absolute path of the entry inside the graveyard
	TrashedPath string `json:"trashed_path"`

	// DeletedAt is when the entry was buried, in epoch seconds
	DeletedAt int64 `json:"deleted_at"`

	// Kind is the entry type at burial time
	Kind Kind `json:"kind"`
}

// Basename returns the last element of the original path.
func (e Entry) Basename() string {
	return filepath.Base(e.OriginalPath)
}

// ShortID returns the first ShortIDLen characters of the random segment of
// the trashed filename, or "-" when the name does not have that shape.
func (e Entry) ShortID() string {
	parts := strings.Split(filepath.Base(e.TrashedPath), "__")
	if len(parts) < 2 || parts[1] == "" {
		return "-"
	}
	id := parts[1]
	if len(id) > ShortIDLen {
		id = id[:ShortIDLen]
	}
	return id
}

// Catalog is the ordered list of buried entries.
type Catalog struct {
	Items []Entry `json:"items"`
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{Items: []Entry{}}
}

// Append adds an entry at the end of the catalog.
func (c *Catalog) Append(e Entry) {
	c.Items = append(c.Items, e)
}

// Find returns the index of the entry with the given trashed path, or -1.
func (c *Catalog) Find(trashedPath string) int {
	for i, e := range c.Items {
		if e.TrashedPath == trashedPath {
			return i
		}
	}
	return -1
}

// Remove deletes the entry with the given trashed path and reports whether
// one was found.
func (c *Catalog) Remove(trashedPath string) bool {
	i := c.Find(trashedPath)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// ByOriginal maps each original path to the index of its entry. When the same
// path was buried more than once the latest burial wins.
func (c *Catalog) ByOriginal() map[string]int {
	m := make(map[string]int, len(c.Items))
	for i, e := range c.Items {
		m[e.OriginalPath] = i
	}
	return m
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.Items)
}
