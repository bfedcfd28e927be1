package migration

import "context"

// Migrator brings a database schema up to date
type Migrator interface {
	Run(ctx context.Context) error
}

// Migration is one versioned schema change. Up holds the statements per driver.
type Migration struct {
	Version int
	Name    string
	Up      map[string][]string
}

// Migrations are the archive schema changes in the order they apply
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "create runs",
		Up: map[string][]string{
			"sqlite": {`CREATE TABLE IF NOT EXISTS runs (
				id TEXT PRIMARY KEY,
				started_at TEXT NOT NULL,
				duration_seconds REAL NOT NULL,
				workers INTEGER NOT NULL,
				n_tests INTEGER NOT NULL,
				n_pass INTEGER NOT NULL,
				n_failed INTEGER NOT NULL,
				n_warning INTEGER NOT NULL,
				n_error INTEGER NOT NULL
			)`},
			"mysql": {"CREATE TABLE IF NOT EXISTS runs (" +
				"id VARCHAR(64) PRIMARY KEY," +
				"started_at VARCHAR(40) NOT NULL," +
				"duration_seconds DOUBLE NOT NULL," +
				"workers INT NOT NULL," +
				"n_tests INT NOT NULL," +
				"n_pass INT NOT NULL," +
				"n_failed INT NOT NULL," +
				"n_warning INT NOT NULL," +
				"n_error INT NOT NULL" +
				") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"},
		},
	},
	{
		Version: 2,
		Name:    "create diagnostics",
		Up: map[string][]string{
			"sqlite": {`CREATE TABLE IF NOT EXISTS diagnostics (
				run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				kind TEXT NOT NULL,
				alias_name TEXT NOT NULL,
				description TEXT NOT NULL,
				source_file TEXT NOT NULL,
				source_line INTEGER NOT NULL,
				test_name TEXT NOT NULL,
				unit_name TEXT NOT NULL,
				unit_path TEXT NOT NULL,
				PRIMARY KEY (run_id, position)
			)`},
			"mysql": {"CREATE TABLE IF NOT EXISTS diagnostics (" +
				"run_id VARCHAR(64) NOT NULL," +
				"position INT NOT NULL," +
				"kind VARCHAR(16) NOT NULL," +
				"alias_name VARCHAR(255) NOT NULL," +
				"description TEXT NOT NULL," +
				"source_file VARCHAR(1024) NOT NULL," +
				"source_line INT NOT NULL," +
				"test_name VARCHAR(255) NOT NULL," +
				"unit_name VARCHAR(255) NOT NULL," +
				"unit_path VARCHAR(1024) NOT NULL," +
				"PRIMARY KEY (run_id, position)," +
				"FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE" +
				") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"},
		},
	},
	{
		Version: 3,
		Name:    "index runs by start time",
		Up: map[string][]string{
			"sqlite": {`CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at)`},
			"mysql":  {`CREATE INDEX runs_started_at ON runs (started_at)`},
		},
	},
}
