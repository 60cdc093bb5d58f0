// Package checker implements the update check engine: the decision logic that
// determines, for every tracked program, whether a newer release exists,
// whether the operator already knows about it, and whether a push
// notification may go out.
package checker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/blackwell-systems/updatewatch/internal/notify"
	"github.com/blackwell-systems/updatewatch/internal/provider"
	"github.com/blackwell-systems/updatewatch/internal/store"
	"github.com/blackwell-systems/updatewatch/internal/version"
)

// checkTimeout bounds the provider call for a single program so one hung
// repository cannot stall the whole pass.
const checkTimeout = 30 * time.Second

// Checker runs update check passes over all stored programs.
type Checker struct {
	store     *store.Store
	providers map[store.ProviderKind]provider.Provider
	notifier  notify.Notifier
}

// New creates a Checker. The notifier may be nil when the caller never runs
// notifying passes (plain manual checks).
func New(st *store.Store, gh provider.Provider, n notify.Notifier) *Checker {
	return &Checker{
		store: st,
		providers: map[store.ProviderKind]provider.Provider{
			store.ProviderGitHub: gh,
		},
		notifier: n,
	}
}

// PassOptions controls one check pass.
type PassOptions struct {
	// Type is recorded in the check history row.
	Type store.CheckType

	// Notify dispatches push notifications for eligible updates. When false
	// (a manual check without the notify flag), every discovered pending
	// update is instead marked as seen: the operator is looking at the
	// result right now, so the scheduler must not re-notify for these exact
	// versions later.
	Notify bool

	// Topic is the notification topic. Required when Notify is set.
	Topic string
}

// PendingUpdate is a program whose latest known version differs from the
// version the operator runs.
type PendingUpdate struct {
	Name           string
	Provider       store.ProviderKind
	CurrentVersion version.Version
	LatestVersion  version.Version

	// Eligible is true when no earlier manual check suppressed notification
	// for this exact (name, latest version) pair.
	Eligible bool
}

// FailedCheck records a program whose provider fetch or store update failed.
// Failed programs are not counted in ProgramsChecked.
type FailedCheck struct {
	Name string
	Err  error
}

// PassSummary aggregates the outcome of one complete check pass.
type PassSummary struct {
	Date            time.Time
	Type            store.CheckType
	ProgramsChecked int
	Updates         []PendingUpdate
	Failed          []FailedCheck
	Notified        int
}

// UpdatesFound returns the number of pending updates.
func (s *PassSummary) UpdatesFound() int {
	return len(s.Updates)
}

// RunPass checks every stored program once, applies the notification
// eligibility rules, and appends exactly one check history row. Per-program
// failures are collected in the summary and never abort the pass.
func (c *Checker) RunPass(ctx context.Context, opts PassOptions) (*PassSummary, error) {
	programs, err := c.store.ListPrograms()
	if err != nil {
		return nil, fmt.Errorf("failed to load programs: %w", err)
	}

	summary := &PassSummary{
		Date: time.Now().UTC(),
		Type: opts.Type,
	}

	for _, p := range programs {
		update, err := c.checkProgram(ctx, p)
		if err != nil {
			log.Printf("checker: %s: %v", p.Name, err)
			summary.Failed = append(summary.Failed, FailedCheck{Name: p.Name, Err: err})
			continue
		}
		summary.ProgramsChecked++
		if update != nil {
			summary.Updates = append(summary.Updates, *update)
		}
	}

	if opts.Notify {
		summary.Notified = c.dispatch(ctx, opts.Topic, summary.Updates)
	} else {
		c.markSeen(summary.Updates)
	}

	if err := c.store.InsertCheckEntry(summary.historyEntry()); err != nil {
		return summary, fmt.Errorf("failed to record check pass: %w", err)
	}
	return summary, nil
}

// checkProgram fetches the latest release for one program, persists a changed
// version, and reports the program's pending update, if any. A pending update
// can exist even when this fetch found nothing new: an earlier check may have
// advanced latest_version past the version the operator acknowledged.
func (c *Checker) checkProgram(ctx context.Context, p *store.Program) (*PendingUpdate, error) {
	prov, ok := c.providers[p.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider type %q", p.Provider)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	fetched, err := prov.LatestVersion(fetchCtx, p.Repository)
	if err != nil {
		return nil, fmt.Errorf("fetch latest version: %w", err)
	}

	if version.Changed(p.LatestVersion, fetched) {
		if err := c.store.UpdateLatestVersion(p.Name, fetched, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("persist latest version: %w", err)
		}
		p.LatestVersion = fetched
	}

	if !p.HasPendingUpdate() {
		return nil, nil
	}

	state, err := c.store.GetNotificationState(p.Name)
	if err != nil {
		return nil, fmt.Errorf("load notification state: %w", err)
	}

	return &PendingUpdate{
		Name:           p.Name,
		Provider:       p.Provider,
		CurrentVersion: p.CurrentVersion,
		LatestVersion:  p.LatestVersion,
		Eligible:       !state.Sent,
	}, nil
}

// dispatch sends one push notification per eligible update and marks each
// successfully delivered one as sent. A transport failure is logged and does
// not block the remaining messages; the undelivered update stays eligible for
// the next pass.
func (c *Checker) dispatch(ctx context.Context, topic string, updates []PendingUpdate) int {
	notified := 0
	for _, u := range updates {
		if !u.Eligible {
			continue
		}

		message := fmt.Sprintf("%s: %s -> %s", u.Name, u.CurrentVersion, u.LatestVersion)
		sendCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := c.notifier.Send(sendCtx, topic, message)
		cancel()
		if err != nil {
			log.Printf("checker: notification for %s failed: %v", u.Name, err)
			continue
		}

		if err := c.store.MarkNotificationSent(u.Name, time.Now().UTC()); err != nil {
			log.Printf("checker: failed to mark notification sent for %s: %v", u.Name, err)
			continue
		}
		notified++
	}
	return notified
}

// markSeen records every pending update of a quiet manual check as observed.
func (c *Checker) markSeen(updates []PendingUpdate) {
	for _, u := range updates {
		if err := c.store.MarkNotificationSeen(u.Name); err != nil {
			log.Printf("checker: failed to mark %s as seen: %v", u.Name, err)
		}
	}
}

func (s *PassSummary) historyEntry() *store.UpdateCheckHistoryEntry {
	entry := &store.UpdateCheckHistoryEntry{
		Date:            s.Date,
		Type:            s.Type,
		ProgramsChecked: s.ProgramsChecked,
		UpdatesFound:    len(s.Updates),
	}
	for _, u := range s.Updates {
		entry.Programs = append(entry.Programs, store.CheckedProgram{
			Name:          u.Name,
			LatestVersion: u.LatestVersion.String(),
		})
	}
	return entry
}
