package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/rip/internal/graveyard"
)

var (
	resurrectYes    bool
	resurrectDryRun bool
)

var resurrectCmd = &cobra.Command{
	Use:     "resurrect [target]",
	Aliases: []string{"r"},
	Short:   "Restore buried entries to their original paths",
	Long: `Restore buried entries to where they were buried from.

The target may be a trashed path, a short id prefix, part of a basename, or a
glob matched against basenames. Without a target an interactive picker opens.
Buried parent directories of the selection are restored first.

Restoring everything asks you to type YES; restoring a single item asks y/N.
Use -y to skip confirmation and accept multiple matches.
Use --dry-run to preview without restoring.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeTargets,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if !jsonOutput {
			a.prompter.describe = func(p *graveyard.Plan) { describeRestore(out, p) }
		}

		result, err := a.graveyard.Resurrect(cmd.Context(), graveyard.ResurrectRequest{
			Target:    targetArg(args),
			AssumeYes: resurrectYes,
			DryRun:    resurrectDryRun,
		})
		if err != nil {
			if reportSelection(out, err) {
				return nil
			}
			return err
		}

		if jsonOutput {
			if err := outputJSON(out, map[string]any{
				"dry_run":  result.DryRun,
				"aborted":  result.Aborted,
				"plan":     result.Plan,
				"restored": result.Restored,
				"failures": errorStrings(result.Failures),
			}); err != nil {
				return err
			}
			return reportFailures(cmd, result.Failures)
		}

		a.prompter.describePlan(result.Plan)
		switch {
		case result.DryRun:
			PrintInfo(out, "--dry-run: nothing restored.")
			return nil
		case result.Aborted:
			PrintInfo(out, "Aborted.")
			return nil
		}

		for _, e := range result.Gone {
			PrintWarning(out, "No longer in the graveyard: "+e.OriginalPath)
		}
		if len(result.Restored) > 0 {
			PrintSuccess(out, fmt.Sprintf("Restored %d item(s).", len(result.Restored)))
		}
		return reportFailures(cmd, result.Failures)
	},
}

// describeRestore prints what a resurrect plan is about to do.
func describeRestore(w io.Writer, p *graveyard.Plan) {
	printAutoAdded(w, p.AutoAdded)
	if p.All {
		PrintInfo(w, fmt.Sprintf("About to restore ALL graveyard items: %d item(s).", len(p.Entries)))
		return
	}
	PrintInfo(w, fmt.Sprintf("About to restore %d item(s).", len(p.Entries)))
}

func init() {
	resurrectCmd.Flags().BoolVarP(&resurrectYes, "yes", "y", false, "Skip confirmation and accept multiple matches")
	resurrectCmd.Flags().BoolVar(&resurrectDryRun, "dry-run", false, "Preview what would be restored")
}
