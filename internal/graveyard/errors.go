package graveyard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmpty indicates the catalog has no entries.
	ErrEmpty = errors.New("graveyard is empty")

	// ErrSelection is wrapped by every SelectionError.
	ErrSelection = errors.New("selection failed")

	// ErrTargetExists is wrapped by every TargetExistsError.
	ErrTargetExists = errors.New("target already exists")
)

// SelectionError reports a target that matched nothing, or matched several
// entries without assume-yes. It is reported to the user, not fatal.
type SelectionError struct {
	Target     string
	Candidates []ListEntry
	Reason     string
}

func (e *SelectionError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("no graveyard entry matches '%s'", e.Target)
	}
	ids := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		ids[i] = c.ID
	}
	return fmt.Sprintf("'%s' matches %d entries (%s)", e.Target, len(e.Candidates), strings.Join(ids, ", "))
}

func (e *SelectionError) Unwrap() error {
	return ErrSelection
}

// Ambiguous reports whether the target matched more than one entry.
func (e *SelectionError) Ambiguous() bool {
	return len(e.Candidates) > 1
}

// TargetExistsError reports a restore whose original path is occupied. The
// entry stays buried.
type TargetExistsError struct {
	Path    string
	Trashed string
}

func (e *TargetExistsError) Error() string {
	return "target already exists: " + e.Path
}

func (e *TargetExistsError) Unwrap() error {
	return ErrTargetExists
}

// IOError wraps a filesystem failure with the operation and path. It aborts
// only the item it belongs to.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
