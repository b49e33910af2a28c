package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps validated records in a SQLite index so the server does
// not have to parse markdown on every cache miss.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path, ensures the data
// directory exists, and runs schema migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the server read while import rewrites a collection.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS records (
    collection TEXT NOT NULL,
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    author TEXT NOT NULL,
    publish_date TEXT NOT NULL,
    tags TEXT NOT NULL,
    PRIMARY KEY (collection, slug)
);
`)
	return err
}

const recordColumns = `slug, title, description, author, publish_date, tags`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(c Collection, row rowScanner) (Record, error) {
	var slug, title, description, author, date, tags string
	if err := row.Scan(&slug, &title, &description, &author, &date, &tags); err != nil {
		return Record{}, err
	}
	published, err := time.Parse(time.RFC3339Nano, date)
	if err != nil {
		return Record{}, fmt.Errorf("record %s/%s: publish date: %w", c, slug, err)
	}
	var tagList []string
	if err := json.Unmarshal([]byte(tags), &tagList); err != nil {
		return Record{}, fmt.Errorf("record %s/%s: tags: %w", c, slug, err)
	}
	return Record{
		Collection: c,
		Slug:       slug,
		Data: Data{
			Title:       title,
			Description: description,
			Author:      author,
			PublishDate: published,
			Tags:        tagList,
		},
	}, nil
}

// GetCollection returns every record of c ordered by slug.
func (s *SQLiteStore) GetCollection(ctx context.Context, c Collection) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM records WHERE collection = ? ORDER BY slug`, string(c))
	if err != nil {
		return nil, Unavailable(c, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(c, rows)
		if err != nil {
			return nil, Unavailable(c, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, Unavailable(c, err)
	}
	return records, nil
}

// GetRecord returns a single record, or ErrNotFound.
func (s *SQLiteStore) GetRecord(ctx context.Context, c Collection, slug string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE collection = ? AND slug = ?`, string(c), slug)
	r, err := scanRecord(c, row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveRecord(ctx context.Context, db execer, r Record) error {
	if !r.Collection.Valid() {
		return fmt.Errorf("save record: unknown collection %q", r.Collection)
	}
	if r.Slug == "" {
		return errors.New("save record: slug is required")
	}
	tags := r.Data.Tags
	if tags == nil {
		tags = []string{}
	}
	tagJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO records (collection, slug, title, description, author, publish_date, tags) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(r.Collection), r.Slug, r.Data.Title, r.Data.Description, r.Data.Author,
		r.Data.PublishDate.UTC().Format(time.RFC3339Nano), string(tagJSON))
	return err
}

// SaveRecord upserts a record.
func (s *SQLiteStore) SaveRecord(ctx context.Context, r Record) error {
	return saveRecord(ctx, s.db, r)
}

// DeleteRecord removes a record by collection and slug.
func (s *SQLiteStore) DeleteRecord(ctx context.Context, c Collection, slug string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND slug = ?`, string(c), slug)
	return err
}

// ReplaceCollection swaps the full contents of c for records in a single
// transaction, so readers never observe a half-imported collection.
func (s *SQLiteStore) ReplaceCollection(ctx context.Context, c Collection, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, string(c)); err != nil {
		return err
	}
	for _, r := range records {
		if r.Collection != c {
			return fmt.Errorf("replace %s: record %s belongs to %s", c, r.Slug, r.Collection)
		}
		if err := saveRecord(ctx, tx, r); err != nil {
			return err
		}
	}
	return tx.Commit()
}
