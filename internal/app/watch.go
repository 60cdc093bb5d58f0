package app

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/updatewatch/internal/checker"
	"github.com/blackwell-systems/updatewatch/internal/config"
	"github.com/blackwell-systems/updatewatch/internal/output"
	"github.com/blackwell-systems/updatewatch/internal/scheduler"
)

var (
	watchTopic    string
	watchInterval int

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Periodically check all programs and push notifications",
		Long: `Run the update check loop: every interval, check all tracked programs
and push a notification to the ntfy topic for each update that has not
been seen or notified before.

The loop runs until SIGINT or SIGTERM. A failed pass is reported as an
error notification and the loop keeps running; the in-flight pass is
allowed to finish cleanly on shutdown.

Changes to the ntfy topic in the config file are picked up without a
restart.`,
		Example: `  # Check every hour (the default), pushing to topic my-updates
  updatewatch watch --topic my-updates

  # Check every 5 minutes
  updatewatch watch --topic my-updates --interval 300`,
		RunE: runWatchLoop,
	}
)

func init() {
	watchCmd.Flags().StringVar(&watchTopic, "topic", "", "ntfy topic to publish to (default: config ntfy.topic)")
	watchCmd.Flags().IntVar(&watchInterval, "interval", 0, "seconds between checks (default: config check.interval-seconds)")

	RootCmd.AddCommand(watchCmd)
}

func runWatchLoop(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	topic, err := resolveTopic(watchTopic, cfg)
	if err != nil {
		return err
	}

	interval := watchInterval
	if interval <= 0 {
		interval = cfg.CheckIntervalSeconds()
	}
	if interval <= 0 {
		return fmt.Errorf("check interval must be positive, got %d", interval)
	}

	// Show what will be watched before entering the loop.
	programs, err := st.ListPrograms()
	if err != nil {
		return err
	}
	fmt.Printf("Watching %d programs for updates (press Ctrl+C to stop)\n\n", len(programs))
	fmt.Print(output.RenderProgramTable(programs))
	fmt.Println()

	notifier := newNotifier(cfg)
	c := checker.New(st, newGitHubProvider(cfg), notifier)
	sched := scheduler.New(c, notifier, topic, time.Duration(interval)*time.Second)

	// Pick up a changed topic from the config file without a restart. The
	// --topic flag wins while set.
	if watchTopic == "" {
		cfg.Watch(func(updated *config.Config) {
			if newTopic := updated.NtfyTopic(); newTopic != "" && newTopic != sched.Topic() {
				log.Printf("watch: config changed, switching topic to %s", newTopic)
				sched.SetTopic(newTopic)
			}
		})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return sched.Run(ctx)
}
