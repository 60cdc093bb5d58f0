// Package output provides terminal output utilities for updatewatch.
//
// Table rendering uses ASCII characters and ANSI color codes; color is
// suppressed when stdout is not a TTY or NO_COLOR is set.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/updatewatch/internal/checker"
	"github.com/blackwell-systems/updatewatch/internal/store"
)

// ANSI color codes for update status display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderProgramTable renders a table of tracked programs. Programs arrive
// pre-sorted by name from the store.
func RenderProgramTable(programs []*store.Program) string {
	if len(programs) == 0 {
		return "No programs tracked. Add one with 'updatewatch add github'.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-24s %-12s %-12s %-16s %-14s\n",
		"Program", "Current", "Latest", "Status", "Last Checked"))
	sb.WriteString(strings.Repeat("─", 82))
	sb.WriteString("\n")

	for _, p := range programs {
		status := colorize(colorGreen, "up to date")
		if p.HasPendingUpdate() {
			status = colorize(colorYellow, "update available")
		}

		sb.WriteString(fmt.Sprintf("%-24s %-12s %-12s %-16s %-14s\n",
			truncate(p.Name, 24),
			truncate(p.CurrentVersion.String(), 12),
			truncate(p.LatestVersion.String(), 12),
			status,
			formatRelativeTime(p.LatestVersionUpdatedAt)))
	}

	return sb.String()
}

// RenderPendingTable renders the pending updates found by a check pass.
func RenderPendingTable(updates []checker.PendingUpdate) string {
	if len(updates) == 0 {
		return "All programs are up to date.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-24s %-14s %-14s\n", "Program", "Current", "Latest"))
	sb.WriteString(strings.Repeat("─", 54))
	sb.WriteString("\n")

	for _, u := range updates {
		sb.WriteString(fmt.Sprintf("%-24s %-14s %-14s\n",
			truncate(u.Name, 24),
			truncate(u.CurrentVersion.String(), 14),
			truncate(u.LatestVersion.String(), 14)))
	}

	return sb.String()
}

// RenderFailedTable renders the programs whose check failed during a pass.
func RenderFailedTable(failed []checker.FailedCheck) string {
	if len(failed) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(colorize(colorRed, "Failed checks:"))
	sb.WriteString("\n")
	for _, f := range failed {
		sb.WriteString(fmt.Sprintf("  %-24s %v\n", truncate(f.Name, 24), f.Err))
	}

	return sb.String()
}

// RenderUpdateHistoryTable renders acknowledged updates, newest first.
func RenderUpdateHistoryTable(entries []*store.UpdateHistoryEntry) string {
	if len(entries) == 0 {
		return "No updates recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-20s %-24s %-14s %-14s\n", "Date", "Program", "From", "To"))
	sb.WriteString(strings.Repeat("─", 74))
	sb.WriteString("\n")

	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%-20s %-24s %-14s %-14s\n",
			e.Date.Local().Format("2006-01-02 15:04:05"),
			truncate(e.Name, 24),
			truncate(e.OldVersion.String(), 14),
			truncate(e.UpdatedTo.String(), 14)))
	}

	return sb.String()
}

// RenderCheckHistoryTable renders check-pass summaries, newest first.
func RenderCheckHistoryTable(entries []*store.UpdateCheckHistoryEntry) string {
	if len(entries) == 0 {
		return "No checks recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-20s %-8s %-9s %-8s %s\n",
		"Date", "Type", "Checked", "Updates", "Programs"))
	sb.WriteString(strings.Repeat("─", 78))
	sb.WriteString("\n")

	for _, e := range entries {
		var names []string
		for _, p := range e.Programs {
			names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.LatestVersion))
		}
		programs := strings.Join(names, ", ")
		if programs == "" {
			programs = "—"
		}

		sb.WriteString(fmt.Sprintf("%-20s %-8s %-9d %-8d %s\n",
			e.Date.Local().Format("2006-01-02 15:04:05"),
			string(e.Type),
			e.ProgramsChecked,
			e.UpdatesFound,
			truncate(programs, 40)))
	}

	return sb.String()
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	now := time.Now()
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}

// truncate shortens a string to maxLen, appending "..." when it was cut.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
