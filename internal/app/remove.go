package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Stop tracking a program",
	Long: `Remove a program from the database so it is no longer checked for
updates. Its update history is kept.`,
	Example: `  updatewatch remove alpha_tui`,
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	RootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	name := args[0]
	if err := st.DeleteProgram(name); err != nil {
		return err
	}

	fmt.Printf("Removed %s\n", name)
	return nil
}
