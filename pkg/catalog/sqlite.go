package catalog

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/libmirror/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const entryColumns = `run_id, group_id, artifact, version, name, packaging, category,
    artifact_path, descriptor_path, size, mirrored_at`

// SQLiteStore keeps the catalog in a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the catalog database at path and applies
// pending migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalog, err, "create catalog directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalog, err, "open sqlite db")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, errors.Wrap(errors.ErrCodeCatalog, execErr, "apply pragma %q", pragma)
		}
	}

	store := &SQLiteStore{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// Record inserts e or replaces the entry with the same coordinate.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	if e.MirroredAt.IsZero() {
		e.MirroredAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO libraries (`+entryColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (group_id, artifact, version) DO UPDATE SET
            run_id = excluded.run_id,
            name = excluded.name,
            packaging = excluded.packaging,
            category = excluded.category,
            artifact_path = excluded.artifact_path,
            descriptor_path = excluded.descriptor_path,
            size = excluded.size,
            mirrored_at = excluded.mirrored_at`,
		e.RunID,
		e.Group,
		e.Artifact,
		e.Version,
		e.Name,
		e.Packaging,
		e.Category,
		e.ArtifactPath,
		e.DescriptorPath,
		e.Size,
		e.MirroredAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCatalog, err, "record %s", e.Coordinate())
	}
	return nil
}

// List returns entries matching f.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	for _, cond := range []struct {
		column, value string
	}{
		{"group_id", f.Group},
		{"artifact", f.Artifact},
		{"version", f.Version},
		{"run_id", f.RunID},
	} {
		if cond.value != "" {
			where = append(where, cond.column+" = ?")
			args = append(args, cond.value)
		}
	}

	query := `SELECT ` + entryColumns + ` FROM libraries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY group_id, artifact, version"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalog, err, "list entries")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			mirroredAt string
		)
		if err := rows.Scan(
			&e.RunID, &e.Group, &e.Artifact, &e.Version, &e.Name, &e.Packaging, &e.Category,
			&e.ArtifactPath, &e.DescriptorPath, &e.Size, &mirroredAt,
		); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCatalog, err, "scan entry")
		}
		if t, err := time.Parse(time.RFC3339Nano, mirroredAt); err == nil {
			e.MirroredAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalog, err, "iterate entries")
	}
	return entries, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	migrations := make([]migration, 0, len(names))
	for _, name := range names {
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{version: strings.TrimSuffix(name, ".sql"), sql: string(data)})
	}
	return migrations, nil
}

func (s *SQLiteStore) applyMigrations(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return errors.Wrap(errors.ErrCodeCatalog, err, "load migrations")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeCatalog, err, "begin migration tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return errors.Wrap(errors.ErrCodeCatalog, err, "ensure schema_migrations")
	}

	for _, m := range migrations {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", m.version).Scan(&count); err != nil {
			return errors.Wrap(errors.ErrCodeCatalog, err, "scan migration version")
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return errors.Wrap(errors.ErrCodeCatalog, err, "apply migration %s", m.version)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return errors.Wrap(errors.ErrCodeCatalog, err, "record migration %s", m.version)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeCatalog, err, "commit migrations")
	}
	return nil
}
