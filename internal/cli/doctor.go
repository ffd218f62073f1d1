package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/rip/internal/exitcodes"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the graveyard for leftovers of interrupted operations",
	Long: `Inspect the journal, catalog and graveyard directory and report:

  - journal intents without a completion marker
  - interrupted cross-device copies (*.copying)
  - catalog entries whose trashed path is missing
  - graveyard files the catalog does not know about

Nothing is repaired. Exits 1 when anything is found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.graveyard.Doctor()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			if err := outputJSON(out, report); err != nil {
				return err
			}
		} else if report.Healthy() {
			PrintSuccess(out, "Graveyard is consistent.")
		} else {
			if len(report.Unmatched) > 0 {
				PrintSection(out, "Interrupted operations (journal)")
				items := make([]string, len(report.Unmatched))
				for i, r := range report.Unmatched {
					items[i] = fmt.Sprintf("%s %s %s", r.State, r.Key, r.Path)
				}
				PrintList(out, items, 1)
			}
			if report.SkippedLines > 0 {
				PrintWarning(out, fmt.Sprintf("Skipped %s in the journal.", PrintCount(report.SkippedLines, "unreadable line", "unreadable lines")))
			}
			if len(report.Copying) > 0 {
				PrintSection(out, "Interrupted copies")
				PrintList(out, report.Copying, 1)
			}
			if len(report.Missing) > 0 {
				PrintSection(out, "Catalog entries with missing files")
				items := make([]string, len(report.Missing))
				for i, e := range report.Missing {
					items[i] = fmt.Sprintf("%s (%s)", e.TrashedPath, e.OriginalPath)
				}
				PrintList(out, items, 1)
			}
			if len(report.Untracked) > 0 {
				PrintSection(out, "Untracked graveyard files")
				PrintList(out, report.Untracked, 1)
			}
		}

		if !report.Healthy() {
			return &silentExit{code: exitcodes.Failure}
		}
		return nil
	},
}
