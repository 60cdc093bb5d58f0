package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/updatewatch/internal/output"
)

var (
	checksLimit int

	checksCmd = &cobra.Command{
		Use:   "checks",
		Short: "Show past update check passes",
		Long: `Show the check history: one row per completed check pass, manual or
timed, with the number of programs checked and the updates found.`,
		Example: `  updatewatch checks
  updatewatch checks --limit 20`,
		RunE: runChecks,
	}
)

func init() {
	checksCmd.Flags().IntVar(&checksLimit, "limit", 0, "maximum entries to show (default 100)")

	RootCmd.AddCommand(checksCmd)
}

func runChecks(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.ListCheckEntries(checksLimit)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderCheckHistoryTable(entries))
	return nil
}
