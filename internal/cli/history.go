package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent bury, resurrect and prune events",
	Long: `Display the most recent events from the history database.

History is recorded when history.enabled is set in the settings file
(the default) or RIP_HISTORY=true.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if a.history == nil {
			PrintEmptyState(out, "History is disabled.")
			return nil
		}

		events, err := a.history.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(out, events)
		}
		if len(events) == 0 {
			PrintEmptyState(out, "No history yet.")
			return nil
		}

		rows := make([][]string, len(events))
		for i, e := range events {
			size := ""
			if e.SizeBytes > 0 {
				size = strconv.FormatInt(e.SizeBytes, 10)
			}
			rows[i] = []string{e.At.Local().Format(listTimeLayout), e.Action, e.OriginalPath, size, e.Error}
		}
		PrintTable(out, []string{"TIME", "ACTION", "PATH", "BYTES", "ERROR"}, rows)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of events to show")
}
