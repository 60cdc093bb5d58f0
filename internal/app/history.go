package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/updatewatch/internal/output"
)

var (
	historyLimit int
	historyPrune int

	historyCmd = &cobra.Command{
		Use:   "history [name]",
		Short: "Show or prune the update history",
		Long: `Show the recorded updates, newest first. With a program name the list
is filtered to that program.

--prune deletes all but the N most recent entries for the named
program. Pruning requires a program name.`,
		Example: `  # All recorded updates
  updatewatch history

  # Updates of one program
  updatewatch history alpha_tui

  # Keep only the 10 most recent entries for alpha_tui
  updatewatch history alpha_tui --prune 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "maximum entries to show (default 100)")
	historyCmd.Flags().IntVar(&historyPrune, "prune", -1, "keep only the N most recent entries for the named program")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	if cmd.Flags().Changed("prune") {
		if name == "" {
			return fmt.Errorf("pruning requires a program name")
		}
		deleted, err := st.PruneUpdates(name, historyPrune)
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d entries for %s\n", deleted, name)
		return nil
	}

	entries, err := st.ListUpdates(name, historyLimit)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderUpdateHistoryTable(entries))
	return nil
}
