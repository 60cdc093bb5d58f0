package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackwell-systems/updatewatch/internal/version"
)

const defaultHistoryLimit = 100

// Update check history operations

// InsertCheckEntry appends one check-pass summary row. Exactly one row is
// written per completed pass, even when zero programs were checked.
func (s *Store) InsertCheckEntry(e *UpdateCheckHistoryEntry) error {
	programsJSON, err := json.Marshal(e.Programs)
	if err != nil {
		return fmt.Errorf("failed to marshal checked programs: %w", err)
	}

	query := `
		INSERT INTO update_check_history (date, type, programs_checked, updates_found, programs)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.Exec(query,
		e.Date.Format(time.RFC3339),
		string(e.Type),
		e.ProgramsChecked,
		e.UpdatesFound,
		string(programsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert check history entry: %w", err)
	}

	e.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get check history id: %w", err)
	}
	return nil
}

// ListCheckEntries returns check-pass summaries, newest first. A limit <= 0
// falls back to the default of 100.
func (s *Store) ListCheckEntries(limit int) ([]*UpdateCheckHistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	query := `
		SELECT id, date, type, programs_checked, updates_found, programs
		FROM update_check_history
		ORDER BY date DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list check history: %w", err)
	}
	defer rows.Close()

	var entries []*UpdateCheckHistoryEntry
	for rows.Next() {
		var e UpdateCheckHistoryEntry
		var date, checkType, programsJSON string

		if err := rows.Scan(&e.ID, &date, &checkType, &e.ProgramsChecked, &e.UpdatesFound, &programsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan check history row: %w", err)
		}

		e.Type = CheckType(checkType)
		e.Date, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse check history date: %w", err)
		}
		if err := json.Unmarshal([]byte(programsJSON), &e.Programs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal checked programs: %w", err)
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating check history: %w", err)
	}
	return entries, nil
}

// LatestCheckEntry returns the most recent check-pass summary, or nil when no
// pass has run yet.
func (s *Store) LatestCheckEntry() (*UpdateCheckHistoryEntry, error) {
	entries, err := s.ListCheckEntries(1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[0], nil
}

// Update history operations

// ListUpdates returns acknowledged updates, newest first. An empty name
// returns entries for all programs. A limit <= 0 falls back to the default
// of 100.
func (s *Store) ListUpdates(name string, limit int) ([]*UpdateHistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	query := `
		SELECT id, date, name, old_version, updated_to
		FROM update_history
		WHERE (? = '' OR name = ?)
		ORDER BY date DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.Query(query, name, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list update history: %w", err)
	}
	defer rows.Close()

	var entries []*UpdateHistoryEntry
	for rows.Next() {
		e, err := scanUpdateEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating update history: %w", err)
	}
	return entries, nil
}

// PruneUpdates deletes all but the keepLastN most recent update_history
// entries for the program, ordered by date descending. Deleting when fewer
// than keepLastN entries exist affects zero rows and is not an error.
// Returns the number of deleted rows.
func (s *Store) PruneUpdates(name string, keepLastN int) (int64, error) {
	if keepLastN < 0 {
		return 0, fmt.Errorf("keep count must not be negative, got %d", keepLastN)
	}

	query := `
		DELETE FROM update_history
		WHERE name = ? AND id NOT IN (
			SELECT id FROM update_history
			WHERE name = ?
			ORDER BY date DESC, id DESC
			LIMIT ?
		)
	`
	result, err := s.db.Exec(query, name, name, keepLastN)
	if err != nil {
		return 0, fmt.Errorf("failed to prune update history for %s: %w", name, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

func scanUpdateEntry(row scanner) (*UpdateHistoryEntry, error) {
	var e UpdateHistoryEntry
	var date, oldVersion, updatedTo string

	if err := row.Scan(&e.ID, &date, &e.Name, &oldVersion, &updatedTo); err != nil {
		return nil, fmt.Errorf("failed to scan update history row: %w", err)
	}

	var err error
	e.Date, err = time.Parse(time.RFC3339, date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse update history date: %w", err)
	}
	e.OldVersion = version.Version(oldVersion)
	e.UpdatedTo = version.Version(updatedTo)
	return &e, nil
}
