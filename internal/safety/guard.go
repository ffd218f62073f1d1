// Package safety decides which paths rip refuses to bury.
package safety

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Reserved filenames inside the data directory.
const (
	CatalogFileName = "index.json"
	LockFileName    = ".index.lock"
	JournalFileName = ".journal"
)

// ErrForbidden is wrapped by every ForbiddenError.
var ErrForbidden = errors.New("forbidden path")

// Reason identifies why a path is forbidden.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonEmpty
	ReasonDot
	ReasonDotDot
	ReasonRoot
	ReasonGraveyard
	ReasonInsideGraveyard
	ReasonCatalogFile
	ReasonJournalFile
	ReasonDataDir
)

func (r Reason) String() string {
	switch r {
	case ReasonEmpty:
		return "empty path"
	case ReasonDot:
		return "'.' is not allowed"
	case ReasonDotDot:
		return "'..' is not allowed"
	case ReasonRoot:
		return "/ is protected (cannot be overridden)"
	case ReasonGraveyard:
		return "target is the graveyard itself"
	case ReasonInsideGraveyard:
		return "item is inside the graveyard"
	case ReasonCatalogFile:
		return "target is " + CatalogFileName + "/" + LockFileName
	case ReasonJournalFile:
		return "target is " + JournalFileName
	case ReasonDataDir:
		return "target is rip's data directory or a file in it"
	default:
		return "allowed"
	}
}

// Bypassable reports whether force may override the reason.
func (r Reason) Bypassable() bool {
	return r != ReasonRoot
}

// Context carries what the guard needs to know about the current invocation.
type Context struct {
	// DataDir holds the catalog, its lock and the history database.
	DataDir      string
	Graveyard    string
	PreserveRoot bool
	Force        bool
}

// ForbiddenError is returned by Guard.
type ForbiddenError struct {
	Path   string
	Reason Reason
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("denied: %s: %s", e.Reason, e.Path)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// Classify returns the first reason path is forbidden, in priority order,
// and false when it is allowed. The raw argument is checked for empty and
// dot forms before it is made absolute for the remaining checks.
func Classify(path string, ctx Context) (Reason, bool) {
	if strings.TrimSpace(path) == "" {
		return ReasonEmpty, true
	}

	cleaned := filepath.Clean(path)
	if cleaned == "." {
		return ReasonDot, true
	}
	if cleaned == ".." || strings.HasSuffix(cleaned, string(os.PathSeparator)+"..") {
		return ReasonDotDot, true
	}

	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return ReasonEmpty, true
	}

	if ctx.PreserveRoot && isRoot(abs) {
		return ReasonRoot, true
	}

	if ctx.Graveyard != "" {
		gy := filepath.Clean(ctx.Graveyard)
		if abs == gy {
			return ReasonGraveyard, true
		}
		if IsWithin(abs, gy) {
			return ReasonInsideGraveyard, true
		}
	}

	switch filepath.Base(abs) {
	case CatalogFileName, LockFileName:
		return ReasonCatalogFile, true
	case JournalFileName:
		return ReasonJournalFile, true
	}

	if ctx.DataDir != "" {
		data := filepath.Clean(ctx.DataDir)
		if abs == data || filepath.Dir(abs) == data {
			return ReasonDataDir, true
		}
	}
	return ReasonNone, false
}

// Guard returns a *ForbiddenError unless path is allowed, or forbidden for a
// bypassable reason with ctx.Force set.
func Guard(path string, ctx Context) error {
	reason, forbidden := Classify(path, ctx)
	if !forbidden {
		return nil
	}
	if ctx.Force && reason.Bypassable() {
		return nil
	}
	return &ForbiddenError{Path: path, Reason: reason}
}

// IsWithin reports whether path is strictly below dir. Both must be clean.
func IsWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator)) && !filepath.IsAbs(rel)
}

func isRoot(abs string) bool {
	return abs == filepath.VolumeName(abs)+string(os.PathSeparator)
}
