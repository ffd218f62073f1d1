package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/rip/internal/graveyard"
)

// listTimeLayout formats burial times in local time.
const listTimeLayout = "2006-01-02 15:04:05"

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List buried entries",
	Long:    `Display every entry in the graveyard, oldest first.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.graveyard.List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			type jsonEntry struct {
				graveyard.ListEntry
				Age string `json:"age"`
			}
			items := make([]jsonEntry, len(entries))
			for i, e := range entries {
				items[i] = jsonEntry{ListEntry: e, Age: graveyard.CompactAge(e.Age)}
			}
			return outputJSON(out, items)
		}

		if len(entries) == 0 {
			PrintEmptyState(out, "Graveyard is empty.")
			return nil
		}

		for _, e := range entries {
			when := time.Unix(e.DeletedAt, 0).Local().Format(listTimeLayout)
			_, _ = fmt.Fprintf(out, "%s %s (%s) %s %s (%s)\n",
				idColor.Sprintf("%-7s", e.ID),
				e.Kind.Letter(),
				when,
				e.Basename,
				dimColor.Sprint(e.OriginalPath),
				graveyard.CompactAge(e.Age),
			)
		}
		return nil
	},
}
