package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/technews/article"
)

// unsafeIdent matches characters not allowed in a table name.
var unsafeIdent = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SQLiteStore keeps documents in a SQLite table named after the collection
// and uploaded files in a files table.
type SQLiteStore struct {
	db    *sql.DB
	table string
	now   func() time.Time
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath, collection string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite store requires a database path")
	}

	table := unsafeIdent.ReplaceAllString(collection, "_")
	if table == "" {
		table = "articles"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db, table: table, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the document and file tables if they don't exist.
func (s *SQLiteStore) initSchema() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		title_translated TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		summary_translated TEXT NOT NULL DEFAULT '',
		content_translated TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		published_date TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		scraped_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_scraped_at ON %[1]s(scraped_at);
	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		data BLOB NOT NULL,
		created_at TEXT NOT NULL
	);
	`, s.table)

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const documentColumns = `id, title, title_translated, url, summary, summary_translated,
	content_translated, source, image_url, published_date, category, status,
	scraped_at, created_at, updated_at`

// Create inserts doc with a new id. Empty status defaults to scraped.
func (s *SQLiteStore) Create(ctx context.Context, doc article.Document) (string, error) {
	now := s.now().UTC()
	doc.ID = uuid.New().String()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = article.StatusScraped
	}
	if doc.ScrapedAt.IsZero() {
		doc.ScrapedAt = now
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.table, documentColumns)

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.Title,
		doc.TitleTranslated,
		doc.URL,
		doc.Summary,
		doc.SummaryTranslated,
		doc.ContentTranslated,
		doc.Source,
		doc.ImageURL,
		doc.PublishedDate,
		doc.Category,
		doc.Status,
		formatTime(doc.ScrapedAt),
		formatTime(doc.CreatedAt),
		formatTime(doc.UpdatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	return doc.ID, nil
}

// Get retrieves a document by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*article.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, documentColumns, s.table)

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return doc, nil
}

// List returns documents ordered by scraped_at, newest first. A limit of
// zero or less returns every document.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]article.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY scraped_at DESC, created_at DESC`,
		documentColumns, s.table)

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", offset)
		}
	} else if offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", offset)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []article.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// Update sets the given fields and bumps updated_at.
func (s *SQLiteStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := validateFields(fields); err != nil {
		return err
	}

	// Sort the column names so the statement is deterministic
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	setClauses := []string{"updated_at = ?"}
	args := []any{formatTime(s.now().UTC())}
	for _, name := range names {
		setClauses = append(setClauses, name+" = ?")
		args = append(args, fields[name])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", s.table, strings.Join(setClauses, ", "))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a document.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.table), id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// UploadFile stores data in the files table.
func (s *SQLiteStore) UploadFile(ctx context.Context, data []byte, name string) (string, error) {
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO files (id, name, data, created_at) VALUES (?, ?, ?, ?)",
		id, name, data, formatTime(s.now().UTC()))
	if err != nil {
		return "", fmt.Errorf("failed to insert file: %w", err)
	}

	return id, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument reads one row selected with documentColumns.
func scanDocument(row rowScanner) (*article.Document, error) {
	var doc article.Document
	var scrapedAtStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&doc.ID, &doc.Title, &doc.TitleTranslated, &doc.URL,
		&doc.Summary, &doc.SummaryTranslated, &doc.ContentTranslated,
		&doc.Source, &doc.ImageURL, &doc.PublishedDate, &doc.Category, &doc.Status,
		&scrapedAtStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	doc.ScrapedAt = parseTime(scrapedAtStr)
	doc.CreatedAt = parseTime(createdAtStr)
	doc.UpdatedAt = parseTime(updatedAtStr)

	return &doc, nil
}

// Helper functions for time formatting. Times are stored as UTC
// RFC3339Nano strings with a fixed-width fraction so they sort correctly as
// text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Truncate(0).Format(timeLayout)
}

func parseTime(s string) time.Time {
	// Try the storage layout first, fall back to RFC3339 for compatibility
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	// Strip monotonic clock for consistent comparisons
	return t.Truncate(0)
}
