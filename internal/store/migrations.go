package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per run of the recognition loop
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			mirror INTEGER NOT NULL DEFAULT 1,
			thumb_direction TEXT NOT NULL DEFAULT 'left',
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Transitions table - every emitted gesture change
		`CREATE TABLE IF NOT EXISTS transitions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			label TEXT NOT NULL,
			finger_status TEXT NOT NULL,
			handedness TEXT NOT NULL DEFAULT '',
			emitted_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transitions_session_id ON transitions(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_label ON transitions(label)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
