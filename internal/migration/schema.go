package migration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

const versionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at VARCHAR(40) NOT NULL
)`

// SchemaMigrator applies Migrations that have not run yet on the archive database
type SchemaMigrator struct {
	db         *sql.DB
	driver     string
	migrations []Migration
	out        io.Writer
	logger     *zap.Logger
}

// NewSchemaMigrator creates a new SchemaMigrator. Progress is written to out.
func NewSchemaMigrator(db *sql.DB, driver string, out io.Writer, logger *zap.Logger) *SchemaMigrator {
	return &SchemaMigrator{
		db:         db,
		driver:     driver,
		migrations: Migrations,
		out:        out,
		logger:     logger,
	}
}

// Pending returns the migrations that have not been applied
func (m *SchemaMigrator) Pending(ctx context.Context) ([]Migration, error) {
	if _, err := m.db.ExecContext(ctx, versionTable); err != nil {
		return nil, fmt.Errorf("create version table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("read applied migrations: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}

	var pending []Migration
	for _, mig := range m.migrations {
		if !applied[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending, nil
}

// Run applies every pending migration in version order
func (m *SchemaMigrator) Run(ctx context.Context) error {
	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		m.logger.Debug("archive schema is up to date", zap.String("driver", m.driver))
		return nil
	}

	cyan := color.New(color.FgCyan)
	cyan.Fprintf(m.out, "Migrating %s archive: %d pending\n", m.driver, len(pending))

	bar := progressbar.NewOptions(len(pending),
		progressbar.OptionSetDescription(color.CyanString("Migrating: ")),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(m.out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(m.out, "\n")
		}),
	)

	startTime := time.Now()
	for _, mig := range pending {
		if err := m.apply(ctx, mig); err != nil {
			color.New(color.FgRed).Fprintf(m.out, "✗ Migration %d (%s) failed: %v\n", mig.Version, mig.Name, err)
			return fmt.Errorf("migration %d %s: %w", mig.Version, mig.Name, err)
		}
		m.logger.Info("applied migration", zap.Int("version", mig.Version), zap.String("name", mig.Name))
		bar.Add(1)
	}
	bar.Finish()

	color.New(color.FgGreen).Fprintf(m.out, "✓ Applied %d migration(s) in %s\n", len(pending), time.Since(startTime).Round(time.Millisecond))
	return nil
}

func (m *SchemaMigrator) apply(ctx context.Context, mig Migration) error {
	statements, ok := mig.Up[m.driver]
	if !ok {
		return fmt.Errorf("no statements for driver %s", m.driver)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		mig.Version, mig.Name, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}
