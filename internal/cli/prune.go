package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/rip/internal/graveyard"
)

var (
	pruneYes    bool
	pruneDryRun bool
)

var pruneCmd = &cobra.Command{
	Use:     "prune [target]",
	Aliases: []string{"p"},
	Short:   "Permanently delete buried entries",
	Long: `Permanently delete entries from the graveyard.

Targets are matched like resurrect. Without a target an interactive picker
opens; when no picker is available the whole graveyard is selected. Pruning
everything also removes stray files from the graveyard directory.

Pruning everything asks you to type YES; pruning a single item asks y/N.
Use -y to skip confirmation and accept multiple matches.
Use --dry-run to preview what would be deleted without deleting.`,
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
			a.prompter.describe = func(p *graveyard.Plan) { describePrune(out, p) }
		}

		result, err := a.graveyard.Prune(cmd.Context(), graveyard.PruneRequest{
			Target:    targetArg(args),
			AssumeYes: pruneYes,
			DryRun:    pruneDryRun,
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
				"removed":  result.Removed,
				"swept":    result.Swept,
				"failures": errorStrings(result.Failures),
			}); err != nil {
				return err
			}
			return reportFailures(cmd, result.Failures)
		}

		a.prompter.describePlan(result.Plan)
		switch {
		case result.DryRun:
			PrintInfo(out, "--dry-run: nothing deleted.")
			return nil
		case result.Aborted:
			PrintInfo(out, "Aborted.")
			return nil
		}

		if len(result.Removed) > 0 {
			PrintSuccess(out, fmt.Sprintf("Removed %d item(s).", len(result.Removed)))
		}
		if len(result.Swept) > 0 {
			PrintInfo(out, fmt.Sprintf("Swept %s from the graveyard.", PrintCount(len(result.Swept), "stray path", "stray paths")))
		}
		return reportFailures(cmd, result.Failures)
	},
}

// describePrune prints what a prune plan is about to delete.
func describePrune(w io.Writer, p *graveyard.Plan) {
	if p.All {
		PrintInfo(w, fmt.Sprintf("About to remove ALL graveyard items: %d items (~%s)", len(p.Entries), formatMiB(p.TotalBytes)))
		return
	}
	PrintInfo(w, fmt.Sprintf("About to remove %d item(s) (~%s).", len(p.Entries), formatMiB(p.TotalBytes)))
}

func init() {
	pruneCmd.Flags().BoolVarP(&pruneYes, "yes", "y", false, "Skip confirmation and accept multiple matches")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "Preview what would be deleted without deleting")
}
