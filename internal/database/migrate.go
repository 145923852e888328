package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/garage-api/internal/logger"
)

//go:embed migrations
var migrationFS embed.FS

// Migration is a single versioned schema change for one dialect.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// MigrationRunner applies embedded migrations that have not been recorded
// in schema_migrations yet.
type MigrationRunner struct {
	db  *sqlx.DB
	log *logger.Logger
}

func NewMigrationRunner(db *sqlx.DB, log *logger.Logger) *MigrationRunner {
	if log == nil {
		log = logger.Nop()
	}
	return &MigrationRunner{db: db, log: log.WithComponent("migrations")}
}

// Migrate is a convenience wrapper used by tests and the CLI.
func Migrate(ctx context.Context, db *sqlx.DB, log *logger.Logger) error {
	return NewMigrationRunner(db, log).Run(ctx)
}

// LoadMigrations returns the migrations for driver ordered by version.
// Files are named NNNN_description.sql.
func LoadMigrations(driver string) ([]Migration, error) {
	dir := path.Join("migrations", driver)
	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %q: %w", driver, err)
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		prefix, _, _ := strings.Cut(e.Name(), "_")
		v, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("bad migration file name %q", e.Name())
		}
		body, err := fs.ReadFile(migrationFS, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Version: v, Name: strings.TrimSuffix(e.Name(), ".sql"), Up: string(body)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (mr *MigrationRunner) ensureMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)`
	if _, err := mr.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

func (mr *MigrationRunner) applied(ctx context.Context) (map[int]bool, error) {
	var versions []int
	if err := mr.db.SelectContext(ctx, &versions, "SELECT version FROM schema_migrations"); err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	m := make(map[int]bool, len(versions))
	for _, v := range versions {
		m[v] = true
	}
	return m, nil
}

// Run applies all pending migrations in version order.
func (mr *MigrationRunner) Run(ctx context.Context) error {
	all, err := LoadMigrations(mr.db.DriverName())
	if err != nil {
		return err
	}
	if err := mr.ensureMigrationsTable(ctx); err != nil {
		return err
	}
	done, err := mr.applied(ctx)
	if err != nil {
		return err
	}

	n := 0
	for _, m := range all {
		if done[m.Version] {
			continue
		}
		if err := mr.apply(ctx, m); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.Version, err)
		}
		n++
	}
	if n == 0 {
		mr.log.Debugw("Database schema is up to date")
		return nil
	}
	mr.log.Infow("Migrations applied", "count", n)
	return nil
}

func (mr *MigrationRunner) apply(ctx context.Context, m Migration) error {
	mr.log.Infow("Applying migration", "version", m.Version, "name", m.Name)

	// MySQL commits DDL implicitly; the transaction still groups the
	// bookkeeping insert with the statements on the other dialects.
	tx, err := mr.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range splitStatements(m.Up) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", m.Name, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		tx.Rebind("INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)"),
		m.Version, m.Name, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// splitStatements splits a script on semicolons.  Migrations must not
// contain semicolons inside string literals or procedure bodies.
func splitStatements(script string) []string {
	var out []string
	for _, s := range strings.Split(script, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
