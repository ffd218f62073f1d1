package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/rip/internal/graveyard"
)

// maxAutoAddedShown caps the parent paths listed in a plan summary.
const maxAutoAddedShown = 10

// reportSelection prints selection outcomes that end a command without
// failing it. It returns false for any other error.
func reportSelection(w io.Writer, err error) bool {
	if errors.Is(err, graveyard.ErrEmpty) {
		PrintEmptyState(w, "Graveyard is empty.")
		return true
	}

	var sel *graveyard.SelectionError
	if !errors.As(err, &sel) {
		return false
	}
	switch {
	case sel.Reason != "":
		PrintWarning(w, sel.Reason)
	case sel.Ambiguous():
		PrintInfo(w, "Multiple matches (use TAB completion or add -y to restore/prune all of them):")
		for _, c := range sel.Candidates {
			PrintInfo(w, fmt.Sprintf("  %s  %s", idColor.Sprintf("%-7s", c.ID), c.Basename))
		}
	default:
		PrintWarning(w, fmt.Sprintf("No graveyard entry matches '%s'.", sel.Target))
	}
	return true
}

// reportFailures prints per-item failures. Occupied restore targets are
// conflicts and do not fail the command.
func reportFailures(cmd *cobra.Command, failures []error) error {
	hard := 0
	for _, f := range failures {
		var exists *graveyard.TargetExistsError
		if errors.As(f, &exists) {
			PrintWarning(cmd.OutOrStdout(), fmt.Sprintf("%s (still buried as %s)", exists.Error(), exists.Trashed))
			continue
		}
		PrintError(cmd.ErrOrStderr(), f.Error())
		hard++
	}
	if hard > 0 {
		return &itemsFailedError{count: hard}
	}
	return nil
}

// printAutoAdded lists the buried parents pulled into a plan.
func printAutoAdded(w io.Writer, paths []string) {
	if len(paths) == 0 {
		return
	}
	PrintInfo(w, fmt.Sprintf("Including %d parent path(s) for consistency:", len(paths)))
	for i, p := range paths {
		if i == maxAutoAddedShown {
			PrintInfo(w, "  ...")
			break
		}
		PrintInfo(w, "  "+p)
	}
}

func targetArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// completeTargets completes resurrect and prune targets from the catalog.
func completeTargets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	a, err := newApp(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer a.Close()

	candidates, err := a.graveyard.Candidates(toComplete)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return candidates, cobra.ShellCompDirectiveNoFileComp
}
