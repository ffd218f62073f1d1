package graveyard

import (
	"context"
	"time"

	"github.com/danieljhkim/rip/internal/catalog"
)

// Confirmation is the kind of confirmation a plan needs.
type Confirmation int

const (
	// ConfirmNone proceeds without asking.
	ConfirmNone Confirmation = iota

	// ConfirmYesNo asks a y/N question.
	ConfirmYesNo

	// ConfirmToken requires the literal ConfirmWord.
	ConfirmToken
)

// ConfirmWord is the token required before acting on every entry.
const ConfirmWord = "YES"

// Prompt returns the question shown for c.
func (c Confirmation) Prompt() string {
	switch c {
	case ConfirmToken:
		return "Type " + ConfirmWord + " to confirm: "
	case ConfirmYesNo:
		return "Confirm (y/N): "
	default:
		return ""
	}
}

// Prompter reads the user's answer to a confirmation question. The plan is
// passed so the prompter can describe what is about to happen.
type Prompter interface {
	Ask(ctx context.Context, plan *Plan, question string) (string, error)
}

// declinePrompter answers nothing, which declines every confirmation.
type declinePrompter struct{}

func (declinePrompter) Ask(context.Context, *Plan, string) (string, error) {
	return "", nil
}

// BuryRequest represents a request to bury paths.
type BuryRequest struct {
	// Paths are the targets as given by the user
	Paths []string

	// Force bypasses every safety reason except root protection
	Force bool
}

// BuryResult represents the result of a bury.
type BuryResult struct {
	// Buried are the entries recorded in the catalog
	Buried []catalog.Entry

	// Failures are per-item errors (*IOError)
	Failures []error
}

// ResurrectRequest represents a request to restore entries.
type ResurrectRequest struct {
	// Target is a trashed path, id prefix, basename fragment or glob; empty
	// means interactive selection
	Target string

	// AssumeYes skips confirmation and accepts multiple matches
	AssumeYes bool

	// DryRun reports the plan without changing anything
	DryRun bool
}

// PruneRequest represents a request to permanently delete entries.
type PruneRequest struct {
	// Target selects entries like ResurrectRequest.Target; empty means
	// interactive selection, or everything when no picker is available
	Target string

	// AssumeYes skips confirmation and accepts multiple matches
	AssumeYes bool

	// DryRun reports the plan without changing anything
	DryRun bool
}

// Plan is the resolved selection of a resurrect or prune.
type Plan struct {
	// Entries are the selected entries in execution order
	Entries []catalog.Entry `json:"entries"`

	// Explicit is the number of entries the user selected directly
	Explicit int `json:"explicit"`

	// AutoAdded are original paths of buried parents added to the selection
	AutoAdded []string `json:"auto_added,omitempty"`

	// All is set when the selection covers the whole catalog
	All bool `json:"all"`

	// TotalBytes is the size of the selected trees (prune only)
	TotalBytes int64 `json:"total_bytes,omitempty"`

	// Confirm is the confirmation the plan requires
	Confirm Confirmation `json:"-"`
}

// ResurrectResult represents the result of a resurrect.
type ResurrectResult struct {
	Plan *Plan

	// DryRun is set when nothing was changed on request
	DryRun bool

	// Aborted is set when the user cancelled or declined
	Aborted bool

	// Prompted is set when the user was asked to confirm
	Prompted bool

	// Restored are the entries moved back and removed from the catalog
	Restored []catalog.Entry

	// Gone are planned entries no longer in the catalog when the transaction ran
	Gone []catalog.Entry

	// Failures are per-item errors (*TargetExistsError, *IOError)
	Failures []error
}

// PruneResult represents the result of a prune.
type PruneResult struct {
	Plan *Plan

	// DryRun is set when nothing was changed on request
	DryRun bool

	// Aborted is set when the user cancelled or declined
	Aborted bool

	// Prompted is set when the user was asked to confirm
	Prompted bool

	// Removed are the entries deleted from disk and catalog
	Removed []catalog.Entry

	// Swept are untracked graveyard paths removed by a full prune
	Swept []string

	// Failures are per-item errors (*IOError)
	Failures []error
}

// ListEntry is a catalog entry with its derived display fields.
type ListEntry struct {
	catalog.Entry

	// ID is the short id derived from the trashed name
	ID string `json:"id"`

	// Basename is the last element of the original path
	Basename string `json:"basename"`

	// Age is the time since burial
	Age time.Duration `json:"-"`
}
