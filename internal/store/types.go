package store

import (
	"time"

	"github.com/blackwell-systems/updatewatch/internal/version"
)

// ProviderKind identifies the release source a program is tracked from.
type ProviderKind string

// ProviderGitHub is currently the only release source.
const ProviderGitHub ProviderKind = "github"

// Program is a tracked piece of software: the version the operator runs
// (current) and the newest version the provider has published (latest).
type Program struct {
	Name                    string
	Provider                ProviderKind
	Repository              string // provider detail, e.g. "LMH01/alpha_tui" for github
	CurrentVersion          version.Version
	CurrentVersionUpdatedAt time.Time
	LatestVersion           version.Version
	LatestVersionUpdatedAt  time.Time
}

// HasPendingUpdate reports whether the latest known version differs from the
// version the operator acknowledged. String identity only, no ordering.
func (p *Program) HasPendingUpdate() bool {
	return version.Changed(p.CurrentVersion, p.LatestVersion)
}

// NotificationState records whether the operator already knows about the
// program's current latest_version. Sent without SentOn means a manual check
// surfaced the update on a terminal; Sent with SentOn means a push
// notification went out at that time. The state is implicitly keyed on
// latest_version: advancing to a new version clears it.
type NotificationState struct {
	Sent   bool
	SentOn *time.Time
}

// UpdateHistoryEntry records one acknowledged update ("updated" command).
type UpdateHistoryEntry struct {
	ID         int64
	Date       time.Time
	Name       string
	OldVersion version.Version
	UpdatedTo  version.Version
}

// CheckType distinguishes operator-invoked checks from scheduler ticks.
type CheckType string

const (
	CheckManual CheckType = "manual"
	CheckTimed  CheckType = "timed"
)

// CheckedProgram is one program for which a check pass found an update.
type CheckedProgram struct {
	Name          string `json:"name"`
	LatestVersion string `json:"latest_version"`
}

// UpdateCheckHistoryEntry summarizes one completed check pass. Programs whose
// provider fetch failed are not part of ProgramsChecked.
type UpdateCheckHistoryEntry struct {
	ID              int64
	Date            time.Time
	Type            CheckType
	ProgramsChecked int
	UpdatesFound    int
	Programs        []CheckedProgram
}
