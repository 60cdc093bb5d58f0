package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var updatedCmd = &cobra.Command{
	Use:   "updated <name>",
	Short: "Record that a program was updated to its latest version",
	Long: `Mark a program as updated: its current version becomes the latest known
version and one entry is written to the update history.

updatewatch does not perform the update itself - run this after you
updated the program by whatever means it is installed with.`,
	Example: `  updatewatch updated alpha_tui`,
	Args:    cobra.ExactArgs(1),
	RunE:    runUpdated,
}

func init() {
	RootCmd.AddCommand(updatedCmd)
}

func runUpdated(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	name := args[0]
	entry, err := st.MarkUpdated(name, time.Now().UTC())
	if err != nil {
		return err
	}

	if entry.OldVersion.Equal(entry.UpdatedTo) {
		fmt.Printf("%s was already at %s\n", name, entry.UpdatedTo)
	} else {
		fmt.Printf("Recorded update of %s: %s -> %s\n", name, entry.OldVersion, entry.UpdatedTo)
	}
	return nil
}
