package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"jet/internal/config"
	"jet/internal/domain"
)

// Archive keeps the history of runs in a SQL database. The schema is created by
// the migration package.
type Archive struct {
	db     *sql.DB
	driver string
}

// RunEntry is one archived run
type RunEntry struct {
	Meta    domain.RunMeta
	Summary domain.RunSummary
}

// OpenArchive opens the history database configured in cfg
func OpenArchive(cfg *config.Config) (*Archive, error) {
	return OpenArchiveAt(cfg.History.Driver, cfg.GetHistoryDSN())
}

// OpenArchiveAt opens a history database with an explicit driver and DSN
func OpenArchiveAt(driver, dsn string) (*Archive, error) {
	switch driver {
	case "sqlite":
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create history dir: %w", err)
			}
		}
	case "mysql":
	default:
		return nil, fmt.Errorf("unsupported history driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	if driver == "sqlite" {
		// Pragmas are per connection
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
	}

	return &Archive{db: db, driver: driver}, nil
}

// DB returns the underlying database handle
func (a *Archive) DB() *sql.DB {
	return a.db
}

// Driver returns the name of the SQL driver in use
func (a *Archive) Driver() string {
	return a.driver
}

// Close closes the database
func (a *Archive) Close() error {
	return a.db.Close()
}

// Record stores a run and its diagnostics. A run without an id gets a new one,
// which is returned.
func (a *Archive) Record(ctx context.Context, record domain.ResultRecord) (string, error) {
	meta := record.Meta
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("archive run: %w", err)
	}
	defer tx.Rollback()

	s := record.Summary
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, duration_seconds, workers, n_tests, n_pass, n_failed, n_warning, n_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.RunID, meta.Timestamp, meta.DurationSeconds, meta.Workers,
		s.NTests, s.Pass, s.Failed, s.Warning, s.Error)
	if err != nil {
		return "", fmt.Errorf("archive run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO diagnostics (run_id, position, kind, alias_name, description, source_file, source_line, test_name, unit_name, unit_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("archive diagnostics: %w", err)
	}
	defer stmt.Close()

	for i, d := range record.Diagnostics {
		if _, err := stmt.ExecContext(ctx, meta.RunID, i, string(d.Kind), d.AliasName, d.Description,
			d.SourceFile, d.SourceLine, d.TestName, d.UnitName, d.UnitPath); err != nil {
			return "", fmt.Errorf("archive diagnostic %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("archive run: %w", err)
	}
	return meta.RunID, nil
}

// Runs returns up to limit runs, newest first
func (a *Archive) Runs(ctx context.Context, limit int) ([]RunEntry, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, started_at, duration_seconds, workers, n_tests, n_pass, n_failed, n_warning, n_error
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunEntry
	for rows.Next() {
		var e RunEntry
		if err := rows.Scan(&e.Meta.RunID, &e.Meta.Timestamp, &e.Meta.DurationSeconds, &e.Meta.Workers,
			&e.Summary.NTests, &e.Summary.Pass, &e.Summary.Failed, &e.Summary.Warning, &e.Summary.Error); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, e)
	}
	return runs, rows.Err()
}

// Diagnostics returns the archived diagnostics of a run in their original order.
// Captured output, docs and local variables are not archived.
func (a *Archive) Diagnostics(ctx context.Context, runID string) ([]domain.Diagnostic, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT kind, alias_name, description, source_file, source_line, test_name, unit_name, unit_path
		FROM diagnostics WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list diagnostics: %w", err)
	}
	defer rows.Close()

	var diags []domain.Diagnostic
	for rows.Next() {
		var d domain.Diagnostic
		var kind string
		if err := rows.Scan(&kind, &d.AliasName, &d.Description, &d.SourceFile, &d.SourceLine,
			&d.TestName, &d.UnitName, &d.UnitPath); err != nil {
			return nil, fmt.Errorf("list diagnostics: %w", err)
		}
		d.Kind = domain.Kind(kind)
		diags = append(diags, d)
	}
	return diags, rows.Err()
}
