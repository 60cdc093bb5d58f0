package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/updatewatch/internal/checker"
	"github.com/blackwell-systems/updatewatch/internal/output"
	"github.com/blackwell-systems/updatewatch/internal/store"
)

var (
	checkNotify bool
	checkTopic  string

	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Check all programs once for updates",
		Long: `Check every tracked program for a new release and show the result.

Without --notify, the updates are only displayed - and each displayed
(program, version) pair is remembered as seen, so the watch loop will
not push a notification for it later. With --notify, a push
notification is sent per update that has not been seen or notified
before.`,
		Example: `  # Quiet check: show updates, suppress future pushes for them
  updatewatch check

  # Check and push notifications for anything new
  updatewatch check --notify --topic my-updates`,
		RunE: runCheck,
	}
)

func init() {
	checkCmd.Flags().BoolVar(&checkNotify, "notify", false, "send push notifications for unseen updates")
	checkCmd.Flags().StringVar(&checkTopic, "topic", "", "ntfy topic to publish to (default: config ntfy.topic)")

	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	opts := checker.PassOptions{Type: store.CheckManual}
	if checkNotify {
		topic, err := resolveTopic(checkTopic, cfg)
		if err != nil {
			return err
		}
		opts.Notify = true
		opts.Topic = topic
	}

	c := checker.New(st, newGitHubProvider(cfg), newNotifier(cfg))
	summary, err := c.RunPass(context.Background(), opts)
	if err != nil {
		return err
	}

	fmt.Printf("Checked %d programs, %d updates available\n\n", summary.ProgramsChecked, summary.UpdatesFound())
	fmt.Print(output.RenderPendingTable(summary.Updates))
	if table := output.RenderFailedTable(summary.Failed); table != "" {
		fmt.Println()
		fmt.Print(table)
	}
	if opts.Notify {
		fmt.Printf("\nSent %d notifications\n", summary.Notified)
	}
	return nil
}
