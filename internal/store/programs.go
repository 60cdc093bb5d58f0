package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/blackwell-systems/updatewatch/internal/version"
)

// Program operations

// InsertProgram adds a program together with its provider detail row.
// Returns ErrDuplicateName if the name is already taken.
func (s *Store) InsertProgram(p *Program) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT COUNT(*) FROM programs WHERE name = ?`, p.Name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check for existing program %s: %w", p.Name, err)
	}
	if exists > 0 {
		return fmt.Errorf("program %s: %w", p.Name, ErrDuplicateName)
	}

	query := `
		INSERT INTO programs
		(name, provider, current_version, current_version_updated_at, latest_version, latest_version_updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query,
		p.Name,
		string(p.Provider),
		p.CurrentVersion.String(),
		p.CurrentVersionUpdatedAt.Format(time.RFC3339),
		p.LatestVersion.String(),
		p.LatestVersionUpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert program %s: %w", p.Name, err)
	}

	// Provider-specific detail row, joined by name.
	switch p.Provider {
	case ProviderGitHub:
		_, err = tx.Exec(`INSERT INTO github_programs (name, repository) VALUES (?, ?)`,
			p.Name, p.Repository)
		if err != nil {
			return fmt.Errorf("failed to insert github detail for %s: %w", p.Name, err)
		}
	default:
		return fmt.Errorf("unknown provider type %q for program %s", p.Provider, p.Name)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit program %s: %w", p.Name, err)
	}
	return nil
}

const programColumns = `
	p.name, p.provider, p.current_version, p.current_version_updated_at,
	p.latest_version, p.latest_version_updated_at, g.repository
`

// GetProgram retrieves a program by name. Returns ErrNotFound if the name is
// unknown.
func (s *Store) GetProgram(name string) (*Program, error) {
	query := `
		SELECT ` + programColumns + `
		FROM programs p
		LEFT JOIN github_programs g ON g.name = p.name
		WHERE p.name = ?
	`

	p, err := scanProgram(s.db.QueryRow(query, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("program %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get program %s: %w", name, err)
	}
	return p, nil
}

// ListPrograms returns all programs sorted by name ascending.
func (s *Store) ListPrograms() ([]*Program, error) {
	query := `
		SELECT ` + programColumns + `
		FROM programs p
		LEFT JOIN github_programs g ON g.name = p.name
		ORDER BY p.name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	defer rows.Close()

	var programs []*Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan program row: %w", err)
		}
		programs = append(programs, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating programs: %w", err)
	}
	return programs, nil
}

// DeleteProgram removes a program and its provider detail row. History rows
// for the name are kept as an audit trail. Returns ErrNotFound if the name is
// unknown.
func (s *Store) DeleteProgram(name string) error {
	result, err := s.db.Exec(`DELETE FROM programs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete program %s: %w", name, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("program %s: %w", name, ErrNotFound)
	}
	return nil
}

// UpdateLatestVersion records a newly fetched latest version. When the fetched
// version equals the stored one this is a no-op and the timestamp is left
// untouched. When it differs, the version and timestamp are overwritten and
// the notification seen-state is cleared: the old state was keyed on a version
// that no longer matters.
func (s *Store) UpdateLatestVersion(name string, v version.Version, at time.Time) error {
	p, err := s.GetProgram(name)
	if err != nil {
		return err
	}
	if p.LatestVersion.Equal(v) {
		return nil
	}

	query := `
		UPDATE programs
		SET latest_version = ?, latest_version_updated_at = ?,
		    notification_sent = 0, notification_sent_on = NULL
		WHERE name = ?
	`
	if _, err := s.db.Exec(query, v.String(), at.Format(time.RFC3339), name); err != nil {
		return fmt.Errorf("failed to update latest version for %s: %w", name, err)
	}
	return nil
}

// MarkUpdated sets current_version to latest_version and writes one
// update_history row recording the transition. Returns the written entry.
func (s *Store) MarkUpdated(name string, now time.Time) (*UpdateHistoryEntry, error) {
	p, err := s.GetProgram(name)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE programs SET current_version = ?, current_version_updated_at = ? WHERE name = ?`
	if _, err := tx.Exec(query, p.LatestVersion.String(), now.Format(time.RFC3339), name); err != nil {
		return nil, fmt.Errorf("failed to update current version for %s: %w", name, err)
	}

	entry := &UpdateHistoryEntry{
		Date:       now,
		Name:       name,
		OldVersion: p.CurrentVersion,
		UpdatedTo:  p.LatestVersion,
	}
	result, err := tx.Exec(
		`INSERT INTO update_history (date, name, old_version, updated_to) VALUES (?, ?, ?, ?)`,
		now.Format(time.RFC3339), name, entry.OldVersion.String(), entry.UpdatedTo.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert update history for %s: %w", name, err)
	}
	entry.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get update history id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update for %s: %w", name, err)
	}
	return entry, nil
}

// Notification seen-state operations

// GetNotificationState returns the seen-state for the program's current
// latest_version. Returns ErrNotFound if the name is unknown.
func (s *Store) GetNotificationState(name string) (*NotificationState, error) {
	query := `SELECT notification_sent, notification_sent_on FROM programs WHERE name = ?`

	var state NotificationState
	var sentOn sql.NullString
	err := s.db.QueryRow(query, name).Scan(&state.Sent, &sentOn)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("program %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification state for %s: %w", name, err)
	}

	if sentOn.Valid {
		t, err := time.Parse(time.RFC3339, sentOn.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse notification_sent_on for %s: %w", name, err)
		}
		state.SentOn = &t
	}
	return &state, nil
}

// MarkNotificationSeen records that the operator observed the program's
// pending update via a manual check; no push notification will be sent for
// this latest_version.
func (s *Store) MarkNotificationSeen(name string) error {
	return s.setNotificationState(name, `UPDATE programs SET notification_sent = 1, notification_sent_on = NULL WHERE name = ?`)
}

// MarkNotificationSent records that a push notification for the program's
// pending update went out at the given time.
func (s *Store) MarkNotificationSent(name string, at time.Time) error {
	query := `UPDATE programs SET notification_sent = 1, notification_sent_on = ? WHERE name = ?`
	result, err := s.db.Exec(query, at.Format(time.RFC3339), name)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent for %s: %w", name, err)
	}
	return requireRow(result, name)
}

func (s *Store) setNotificationState(name, query string) error {
	result, err := s.db.Exec(query, name)
	if err != nil {
		return fmt.Errorf("failed to set notification state for %s: %w", name, err)
	}
	return requireRow(result, name)
}

func requireRow(result sql.Result, name string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("program %s: %w", name, ErrNotFound)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanProgram.
type scanner interface {
	Scan(dest ...any) error
}

func scanProgram(row scanner) (*Program, error) {
	var p Program
	var provider string
	var currentVersion, latestVersion string
	var currentAt, latestAt string
	var repository sql.NullString

	err := row.Scan(&p.Name, &provider, &currentVersion, &currentAt,
		&latestVersion, &latestAt, &repository)
	if err != nil {
		return nil, err
	}

	p.Provider = ProviderKind(provider)
	p.CurrentVersion = version.Version(currentVersion)
	p.LatestVersion = version.Version(latestVersion)
	p.Repository = repository.String

	// A program row always has exactly one provider detail row.
	if p.Provider == ProviderGitHub && !repository.Valid {
		return nil, fmt.Errorf("github repository entry missing for program %s", p.Name)
	}

	p.CurrentVersionUpdatedAt, err = time.Parse(time.RFC3339, currentAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse current_version_updated_at for %s: %w", p.Name, err)
	}
	p.LatestVersionUpdatedAt, err = time.Parse(time.RFC3339, latestAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse latest_version_updated_at for %s: %w", p.Name, err)
	}

	return &p, nil
}
