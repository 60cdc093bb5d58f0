package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/updatewatch/internal/output"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all tracked programs",
	Example: `  updatewatch list`,
	RunE:    runList,
}

func init() {
	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	programs, err := st.ListPrograms()
	if err != nil {
		return err
	}

	fmt.Print(output.RenderProgramTable(programs))
	return nil
}
