package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/blackwell-systems/updatewatch/internal/version"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.CreateSchema(); err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	return s
}

func testProgram(name, repo string) *Program {
	now := time.Date(2025, 3, 10, 10, 50, 0, 0, time.UTC)
	return &Program{
		Name:                    name,
		Provider:                ProviderGitHub,
		Repository:              repo,
		CurrentVersion:          "v0.1.0",
		CurrentVersionUpdatedAt: now,
		LatestVersion:           "v0.1.0",
		LatestVersionUpdatedAt:  now,
	}
}

func TestInsertProgram_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := testProgram("alpha_tui", "LMH01/alpha_tui")
	if err := s.InsertProgram(want); err != nil {
		t.Fatalf("InsertProgram() failed: %v", err)
	}

	got, err := s.GetProgram("alpha_tui")
	if err != nil {
		t.Fatalf("GetProgram() failed: %v", err)
	}
	if got.Name != want.Name || got.Repository != want.Repository ||
		got.Provider != want.Provider ||
		got.CurrentVersion != want.CurrentVersion ||
		got.LatestVersion != want.LatestVersion {
		t.Errorf("GetProgram() = %+v, want %+v", got, want)
	}
	if !got.CurrentVersionUpdatedAt.Equal(want.CurrentVersionUpdatedAt) {
		t.Errorf("CurrentVersionUpdatedAt = %v, want %v", got.CurrentVersionUpdatedAt, want.CurrentVersionUpdatedAt)
	}
}

func TestInsertProgram_DuplicateName(t *testing.T) {
	s := newTestStore(t)

	if err := s.InsertProgram(testProgram("alpha_tui", "LMH01/alpha_tui")); err != nil {
		t.Fatalf("InsertProgram() failed: %v", err)
	}

	err := s.InsertProgram(testProgram("alpha_tui", "other/alpha_tui"))
	if !errors.Is(err, ErrDuplicateName) {
		t.Errorf("InsertProgram() error = %v, want ErrDuplicateName", err)
	}
}

func TestGetProgram_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetProgram("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProgram() error = %v, want ErrNotFound", err)
	}
}

func TestListPrograms_SortedByName(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"zebra", "alpha_tui", "mango"} {
		if err := s.InsertProgram(testProgram(name, "o/"+name)); err != nil {
			t.Fatalf("InsertProgram(%s) failed: %v", name, err)
		}
	}

	programs, err := s.ListPrograms()
	if err != nil {
		t.Fatalf("ListPrograms() failed: %v", err)
	}
	want := []string{"alpha_tui", "mango", "zebra"}
	if len(programs) != len(want) {
		t.Fatalf("ListPrograms() returned %d programs, want %d", len(programs), len(want))
	}
	for i, name := range want {
		if programs[i].Name != name {
			t.Errorf("programs[%d].Name = %s, want %s", i, programs[i].Name, name)
		}
	}
}

func TestDeleteProgram(t *testing.T) {
	s := newTestStore(t)

	if err := s.InsertProgram(testProgram("alpha_tui", "LMH01/alpha_tui")); err != nil {
		t.Fatalf("InsertProgram() failed: %v", err)
	}
	if err := s.DeleteProgram("alpha_tui"); err != nil {
		t.Fatalf("DeleteProgram() failed: %v", err)
	}
	if _, err := s.GetProgram("alpha_tui"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProgram() after delete error = %v, want ErrNotFound", err)
	}

	if err := s.DeleteProgram("alpha_tui"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteProgram() on missing program error = %v, want ErrNotFound", err)
	}
}

func TestUpdateLatestVersion_SameVersionIsNoop(t *testing.T) {
	s := newTestStore(t)

	p := testProgram("alpha_tui", "LMH01/alpha_tui")
	if err := s.InsertProgram(p); err != nil {
		t.Fatalf("InsertProgram() failed: %v", err)
	}

	later := p.LatestVersionUpdatedAt.Add(24 * time.Hour)
	if err := s.UpdateLatestVersion("alpha_tui", p.LatestVersion, later); err != nil {
		t.Fatalf("UpdateLatestVersion() failed: %v", err)
	}

	got, err := s.GetProgram("alpha_tui")
	if err != nil {
		t.Fatalf("GetProgram() failed: %v", err)
	}
	if !got.LatestVersionUpdatedAt.Equal(p.LatestVersionUpdatedAt) {
		t.Errorf("same-version update touched timestamp: got %v, want %v",
			got.LatestVersionUpdatedAt, p.LatestVersionUpdatedAt)
	}
}

func TestUpdateLatestVersion_NewVersionResetsSeenState(t *testing.T) {
	s := newTestStore(t)

	p := testProgram("alpha_tui", "LMH01/alpha_tui")
	if err := s.InsertProgram(p); err != nil {
		t.Fatalf("InsertProgram() failed: %v", err)
	}
	if err := s.MarkNotificationSeen("alpha_tui"); err != nil {
		t.Fatalf("MarkNotificationSeen() failed: %v", err)
	}

	at := p.LatestVersionUpdatedAt.Add(24 * time.Hour)
	if err := s.UpdateLatestVersion("alpha_tui", "v0.2.0", at); err != nil {
		t.Fatalf("UpdateLatestVersion() failed: %v", err)
	}

	got, err := s.GetProgram("alpha_tui")
	if err != nil {
		t.Fatalf("GetProgram() failed: %v", err)
	}
	if got.LatestVersion != "v0.2.0" {
		t.Errorf("LatestVersion = %s, want v0.2.0", got.LatestVersion)
	}
	if !got.LatestVersionUpdatedAt.Equal(at) {
		t.Errorf("LatestVersionUpdatedAt = %v, want %v", got.LatestVersionUpdatedAt, at)
	}

	state, err := s.GetNotificationState("alpha_tui")
	if err != nil {
		t.Fatalf("GetNotificationState() failed: %v", err)
	}
	if state.Sent {
		t.Error("seen-state should be cleared when latest_version advances")
	}
}

func TestUpdateLatestVersion_NotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateLatestVersion("missing", "v1.0.0", time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateLatestVersion() error = %v, want ErrNotFound", err)
	}
}

func TestMarkUpdated(t *testing.T) {
	s := newTestStore(t)

	p := testProgram("alpha_tui", "LMH01/alpha_tui")
	if err := s.InsertProgram(p); err != nil {
		t.Fatalf("InsertProgram() failed: %v", err)
	}
	at := time.Date(2025, 3, 12, 13, 45, 0, 0, time.UTC)
	if err := s.UpdateLatestVersion("alpha_tui", "v0.2.0", at); err != nil {
		t.Fatalf("UpdateLatestVersion() failed: %v", err)
	}

	now := at.Add(time.Hour)
	entry, err := s.MarkUpdated("alpha_tui", now)
	if err != nil {
		t.Fatalf("MarkUpdated() failed: %v", err)
	}
	if entry.OldVersion != "v0.1.0" || entry.UpdatedTo != "v0.2.0" {
		t.Errorf("history entry = %s -> %s, want v0.1.0 -> v0.2.0", entry.OldVersion, entry.UpdatedTo)
	}

	got, err := s.GetProgram("alpha_tui")
	if err != nil {
		t.Fatalf("GetProgram() failed: %v", err)
	}
	if got.CurrentVersion != "v0.2.0" {
		t.Errorf("CurrentVersion = %s, want v0.2.0", got.CurrentVersion)
	}
	if !got.CurrentVersionUpdatedAt.Equal(now) {
		t.Errorf("CurrentVersionUpdatedAt = %v, want %v", got.CurrentVersionUpdatedAt, now)
	}

	updates, err := s.ListUpdates("alpha_tui", 0)
	if err != nil {
		t.Fatalf("ListUpdates() failed: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("ListUpdates() returned %d entries, want 1", len(updates))
	}
}

func TestMarkUpdated_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.MarkUpdated("missing", time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkUpdated() error = %v, want ErrNotFound", err)
	}
}

func TestNotificationState(t *testing.T) {
	s := newTestStore(t)

	if err := s.InsertProgram(testProgram("alpha_tui", "LMH01/alpha_tui")); err != nil {
		t.Fatalf("InsertProgram() failed: %v", err)
	}

	state, err := s.GetNotificationState("alpha_tui")
	if err != nil {
		t.Fatalf("GetNotificationState() failed: %v", err)
	}
	if state.Sent || state.SentOn != nil {
		t.Errorf("fresh program state = %+v, want unsent", state)
	}

	// Manual check marks seen without a send timestamp.
	if err := s.MarkNotificationSeen("alpha_tui"); err != nil {
		t.Fatalf("MarkNotificationSeen() failed: %v", err)
	}
	state, err = s.GetNotificationState("alpha_tui")
	if err != nil {
		t.Fatalf("GetNotificationState() failed: %v", err)
	}
	if !state.Sent || state.SentOn != nil {
		t.Errorf("seen state = %+v, want Sent with nil SentOn", state)
	}

	// A dispatched push records the send time.
	at := time.Date(2025, 3, 12, 13, 45, 0, 0, time.UTC)
	if err := s.MarkNotificationSent("alpha_tui", at); err != nil {
		t.Fatalf("MarkNotificationSent() failed: %v", err)
	}
	state, err = s.GetNotificationState("alpha_tui")
	if err != nil {
		t.Fatalf("GetNotificationState() failed: %v", err)
	}
	if !state.Sent || state.SentOn == nil || !state.SentOn.Equal(at) {
		t.Errorf("sent state = %+v, want Sent with SentOn %v", state, at)
	}
}

func TestNotificationState_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetNotificationState("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetNotificationState() error = %v, want ErrNotFound", err)
	}
	if err := s.MarkNotificationSeen("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkNotificationSeen() error = %v, want ErrNotFound", err)
	}
}

func TestInsertCheckEntry_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	entry := &UpdateCheckHistoryEntry{
		Date:            time.Date(2025, 3, 12, 13, 45, 0, 0, time.UTC),
		Type:            CheckManual,
		ProgramsChecked: 3,
		UpdatesFound:    1,
		Programs:        []CheckedProgram{{Name: "alpha_tui", LatestVersion: "v0.2.0"}},
	}
	if err := s.InsertCheckEntry(entry); err != nil {
		t.Fatalf("InsertCheckEntry() failed: %v", err)
	}
	if entry.ID == 0 {
		t.Error("InsertCheckEntry() should assign a row id")
	}

	got, err := s.LatestCheckEntry()
	if err != nil {
		t.Fatalf("LatestCheckEntry() failed: %v", err)
	}
	if got == nil {
		t.Fatal("LatestCheckEntry() returned nil")
	}
	if got.Type != CheckManual || got.ProgramsChecked != 3 || got.UpdatesFound != 1 {
		t.Errorf("LatestCheckEntry() = %+v, want %+v", got, entry)
	}
	if len(got.Programs) != 1 || got.Programs[0].Name != "alpha_tui" {
		t.Errorf("Programs = %+v, want one entry for alpha_tui", got.Programs)
	}
}

func TestInsertCheckEntry_EmptyPass(t *testing.T) {
	s := newTestStore(t)

	entry := &UpdateCheckHistoryEntry{
		Date: time.Now().UTC().Truncate(time.Second),
		Type: CheckTimed,
	}
	if err := s.InsertCheckEntry(entry); err != nil {
		t.Fatalf("InsertCheckEntry() failed: %v", err)
	}

	entries, err := s.ListCheckEntries(0)
	if err != nil {
		t.Fatalf("ListCheckEntries() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ListCheckEntries() returned %d rows, want 1", len(entries))
	}
	if entries[0].ProgramsChecked != 0 || entries[0].UpdatesFound != 0 {
		t.Errorf("empty pass entry = %+v, want zero counts", entries[0])
	}
	if len(entries[0].Programs) != 0 {
		t.Errorf("empty pass Programs = %+v, want empty", entries[0].Programs)
	}
}

func TestListCheckEntries_NewestFirstAndLimited(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := &UpdateCheckHistoryEntry{
			Date:            base.Add(time.Duration(i) * time.Hour),
			Type:            CheckTimed,
			ProgramsChecked: i,
		}
		if err := s.InsertCheckEntry(entry); err != nil {
			t.Fatalf("InsertCheckEntry() failed: %v", err)
		}
	}

	entries, err := s.ListCheckEntries(2)
	if err != nil {
		t.Fatalf("ListCheckEntries() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListCheckEntries(2) returned %d rows, want 2", len(entries))
	}
	if entries[0].ProgramsChecked != 2 || entries[1].ProgramsChecked != 1 {
		t.Errorf("entries not newest first: got checked counts %d, %d",
			entries[0].ProgramsChecked, entries[1].ProgramsChecked)
	}
}

func TestPruneUpdates_KeepsMostRecent(t *testing.T) {
	s := newTestStore(t)

	p := testProgram("alpha_tui", "LMH01/alpha_tui")
	if err := s.InsertProgram(p); err != nil {
		t.Fatalf("InsertProgram() failed: %v", err)
	}

	// Five acknowledged updates, one per day.
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		v := version.Version(fmt.Sprintf("v0.%d.0", i+1))
		if err := s.UpdateLatestVersion("alpha_tui", v, base.Add(time.Duration(i)*24*time.Hour)); err != nil {
			t.Fatalf("UpdateLatestVersion() failed: %v", err)
		}
		if _, err := s.MarkUpdated("alpha_tui", base.Add(time.Duration(i)*24*time.Hour)); err != nil {
			t.Fatalf("MarkUpdated() failed: %v", err)
		}
	}

	deleted, err := s.PruneUpdates("alpha_tui", 2)
	if err != nil {
		t.Fatalf("PruneUpdates() failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("PruneUpdates() deleted %d rows, want 3", deleted)
	}

	entries, err := s.ListUpdates("alpha_tui", 0)
	if err != nil {
		t.Fatalf("ListUpdates() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListUpdates() returned %d entries, want 2", len(entries))
	}
	// Newest first: the two most recent by date survive.
	if entries[0].UpdatedTo != "v0.5.0" || entries[1].UpdatedTo != "v0.4.0" {
		t.Errorf("surviving entries = %s, %s; want v0.5.0, v0.4.0",
			entries[0].UpdatedTo, entries[1].UpdatedTo)
	}

	// Pruning again with a higher keep count affects nothing.
	deleted, err = s.PruneUpdates("alpha_tui", 10)
	if err != nil {
		t.Fatalf("PruneUpdates() failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("PruneUpdates() deleted %d rows, want 0", deleted)
	}
}

func TestListUpdates_AllPrograms(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"a", "b"} {
		if err := s.InsertProgram(testProgram(name, "o/"+name)); err != nil {
			t.Fatalf("InsertProgram(%s) failed: %v", name, err)
		}
		at := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		if err := s.UpdateLatestVersion(name, "v0.2.0", at); err != nil {
			t.Fatalf("UpdateLatestVersion(%s) failed: %v", name, err)
		}
		if _, err := s.MarkUpdated(name, at); err != nil {
			t.Fatalf("MarkUpdated(%s) failed: %v", name, err)
		}
	}

	entries, err := s.ListUpdates("", 0)
	if err != nil {
		t.Fatalf("ListUpdates() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("ListUpdates(\"\") returned %d entries, want 2", len(entries))
	}
}
