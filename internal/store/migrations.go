package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Exercises table - custom exercise definitions added by the operator
		`CREATE TABLE IF NOT EXISTS exercises (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			joint_a TEXT NOT NULL,
			joint_vertex TEXT NOT NULL,
			joint_b TEXT NOT NULL,
			contracted_threshold REAL NOT NULL,
			extended_threshold REAL NOT NULL,
			direction TEXT NOT NULL CHECK(direction IN ('ANGLE_DECREASES', 'ANGLE_INCREASES')),
			initial_phase TEXT NOT NULL CHECK(initial_phase IN ('EXTENDED', 'CONTRACTED')),
			label_extended TEXT NOT NULL DEFAULT '',
			label_contracted TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_exercises_created_at ON exercises(created_at)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
