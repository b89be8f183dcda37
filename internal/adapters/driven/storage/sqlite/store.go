package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/jelly-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.JellyStore = (*Store)(nil)

const jellyColumns = `id, emoji, title, tags, description, start_time, end_time,
	reference_path, creator_name, latitude, longitude, created_at, updated_at`

// Store is a SQLite-backed JellyStore.
type Store struct {
	db   *sql.DB
	path string

	// writeMu serialises writers so a Create and an AppendImages for the
	// same jelly never interleave.
	writeMu sync.Mutex
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.jelly/data/jellies.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".jelly", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "jellies.db")

	// foreign_keys is a per-connection pragma, so it goes in the DSN.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Create stores or replaces a jelly. Images attached to a previous version
// are left in place and the original created_at is kept.
func (s *Store) Create(ctx context.Context, jelly *domain.Jelly) error {
	tagsJSON, err := json.Marshal(nonNilTags(jelly.Tags))
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	now := formatTime(time.Now())

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jellies (`+jellyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			emoji = excluded.emoji,
			title = excluded.title,
			tags = excluded.tags,
			description = excluded.description,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			reference_path = excluded.reference_path,
			creator_name = excluded.creator_name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			updated_at = excluded.updated_at
	`, jelly.ID, jelly.Emoji, jelly.Title, string(tagsJSON), jelly.Description,
		formatTime(jelly.StartTime), formatTime(jelly.EndTime),
		jelly.ReferencePath, jelly.CreatorName, jelly.Latitude, jelly.Longitude,
		now, now)
	if err != nil {
		return fmt.Errorf("saving jelly: %w", err)
	}
	return nil
}

// AppendImages attaches images to a stored jelly in one transaction.
func (s *Store) AppendImages(ctx context.Context, jellyID string, images []domain.StorageItem) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var position int
	row := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM jelly_images WHERE jelly_id = ?", jellyID)
	if err := row.Scan(&position); err != nil {
		return fmt.Errorf("reading image position: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE jellies SET updated_at = ? WHERE id = ?", formatTime(time.Now()), jellyID)
	if err != nil {
		return fmt.Errorf("touching jelly: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO jelly_images (jelly_id, path, data, position)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(jelly_id, path) DO UPDATE SET data = excluded.data
	`)
	if err != nil {
		return fmt.Errorf("preparing image insert: %w", err)
	}
	defer stmt.Close()

	for _, img := range images {
		if _, err := stmt.ExecContext(ctx, jellyID, img.Path, nonNilBytes(img.Data), position); err != nil {
			return fmt.Errorf("saving image %s: %w", img.Path, err)
		}
		position++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing images: %w", err)
	}
	return nil
}

// Get retrieves a jelly with its images in attach order.
func (s *Store) Get(ctx context.Context, id string) (*domain.Jelly, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+jellyColumns+" FROM jellies WHERE id = ?", id)
	jelly, err := scanJelly(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT path, data FROM jelly_images WHERE jelly_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("querying images: %w", err)
	}
	defer rows.Close()

	jelly.Images = []domain.StorageItem{}
	for rows.Next() {
		var item domain.StorageItem
		if err := rows.Scan(&item.Path, &item.Data); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		jelly.Images = append(jelly.Images, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating images: %w", err)
	}

	return jelly, nil
}

// List returns every jelly ordered by start time.
func (s *Store) List(ctx context.Context) ([]domain.Jelly, error) {
	return s.query(ctx, "SELECT "+jellyColumns+" FROM jellies ORDER BY start_time, id", nil)
}

// ListInRegion returns jellies inside region ordered by start time.
// Latitude is filtered in SQL; longitude wraps, so it is checked here.
func (s *Store) ListInRegion(ctx context.Context, region domain.Region) ([]domain.Jelly, error) {
	b := region.Bounds()
	return s.query(ctx, `SELECT `+jellyColumns+` FROM jellies
		WHERE latitude BETWEEN ? AND ?
		ORDER BY start_time, id`,
		func(j *domain.Jelly) bool { return region.Contains(j.Latitude, j.Longitude) },
		b.South, b.North)
}

// Delete removes a jelly; its images cascade.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM jellies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting jelly: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) query(
	ctx context.Context,
	query string,
	keep func(*domain.Jelly) bool,
	args ...any,
) ([]domain.Jelly, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jellies: %w", err)
	}
	defer rows.Close()

	jellies := []domain.Jelly{}
	for rows.Next() {
		jelly, err := scanJelly(rows)
		if err != nil {
			return nil, err
		}
		if keep != nil && !keep(jelly) {
			continue
		}
		jellies = append(jellies, *jelly)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jellies: %w", err)
	}
	return jellies, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJelly(row scanner) (*domain.Jelly, error) {
	var (
		jelly                            domain.Jelly
		tagsJSON                         string
		start, end, createdAt, updatedAt string
	)
	if err := row.Scan(&jelly.ID, &jelly.Emoji, &jelly.Title, &tagsJSON, &jelly.Description,
		&start, &end, &jelly.ReferencePath, &jelly.CreatorName,
		&jelly.Latitude, &jelly.Longitude, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning jelly: %w", err)
	}

	if err := json.Unmarshal([]byte(tagsJSON), &jelly.Tags); err != nil {
		return nil, fmt.Errorf("unmarshalling tags: %w", err)
	}

	var err error
	for _, t := range []struct {
		dst *time.Time
		src string
	}{
		{&jelly.StartTime, start},
		{&jelly.EndTime, end},
		{&jelly.CreatedAt, createdAt},
		{&jelly.UpdatedAt, updatedAt},
	} {
		if *t.dst, err = time.Parse(time.RFC3339Nano, t.src); err != nil {
			return nil, fmt.Errorf("parsing time %q: %w", t.src, err)
		}
	}

	return &jelly, nil
}

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nonNilBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
