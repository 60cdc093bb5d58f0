package store

// History tables use a synthetic autoincrement id rather than keying on the
// timestamp itself: two rows written within the same clock resolution (or
// after a clock step) must not collide.
const schema = `
CREATE TABLE IF NOT EXISTS programs (
    name TEXT PRIMARY KEY,
    provider TEXT NOT NULL,
    current_version TEXT NOT NULL,
    current_version_updated_at TIMESTAMP NOT NULL,
    latest_version TEXT NOT NULL,
    latest_version_updated_at TIMESTAMP NOT NULL,
    notification_sent BOOLEAN NOT NULL DEFAULT 0,
    notification_sent_on TIMESTAMP
);

CREATE TABLE IF NOT EXISTS github_programs (
    name TEXT PRIMARY KEY,
    repository TEXT NOT NULL UNIQUE,
    FOREIGN KEY (name) REFERENCES programs(name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS update_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TIMESTAMP NOT NULL,
    name TEXT NOT NULL,
    old_version TEXT NOT NULL,
    updated_to TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS update_check_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TIMESTAMP NOT NULL,
    type TEXT NOT NULL,
    programs_checked INTEGER NOT NULL,
    updates_found INTEGER NOT NULL,
    programs TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_update_history_name ON update_history(name);
CREATE INDEX IF NOT EXISTS idx_update_history_date ON update_history(date);
CREATE INDEX IF NOT EXISTS idx_update_check_history_date ON update_check_history(date);
`
