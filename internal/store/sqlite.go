package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
)

// SQLiteStore implements DocumentStore and JobStore on a single
// sqlite database file.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ DocumentStore = (*SQLiteStore)(nil)
	_ JobStore      = (*SQLiteStore)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	title       TEXT NOT NULL,
	body        TEXT NOT NULL,
	url         TEXT NOT NULL,
	fetched_at  TIMESTAMP NOT NULL,
	metadata    TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_documents_fetched ON documents(fetched_at DESC);

CREATE TABLE IF NOT EXISTS crawl_jobs (
	id                  TEXT PRIMARY KEY,
	source              TEXT NOT NULL,
	config              TEXT NOT NULL,
	status              TEXT NOT NULL,
	error               TEXT NOT NULL DEFAULT '',
	documents_found     INTEGER NOT NULL DEFAULT 0,
	documents_ingested  INTEGER NOT NULL DEFAULT 0,
	created_at          TIMESTAMP NOT NULL,
	started_at          TIMESTAMP,
	completed_at        TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_jobs_created ON crawl_jobs(created_at DESC);
`

// OpenSQLite opens (creating if needed) the database at path.
// Pass ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, seekerrors.New(seekerrors.ErrCodeStoreFailed, "cannot open database", err)
	}

	// sqlite allows one writer; serialize access through the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, seekerrors.New(seekerrors.ErrCodeStoreFailed, "cannot initialize schema", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put inserts a document.
func (s *SQLiteStore) Put(ctx context.Context, doc *Document) error {
	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeStoreFailed, "cannot encode metadata", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, source, title, body, url, fetched_at, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		doc.ID, string(doc.Source), doc.Title, doc.Body, doc.URL, doc.FetchedAt.UTC(), string(meta))
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeStoreFailed, "insert document failed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return seekerrors.Conflict("document", doc.ID)
	}
	return nil
}

// Get returns a document by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, title, body, url, fetched_at, metadata
		 FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, seekerrors.NotFound("document", id)
	}
	if err != nil {
		return nil, seekerrors.New(seekerrors.ErrCodeStoreFailed, "read document failed", err)
	}
	return doc, nil
}

// Delete removes a document by id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeStoreFailed, "delete document failed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return seekerrors.NotFound("document", id)
	}
	return nil
}

// List returns documents newest first.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Document, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, title, body, url, fetched_at, metadata
		 FROM documents ORDER BY fetched_at DESC, id ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, seekerrors.New(seekerrors.ErrCodeStoreFailed, "list documents failed", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, seekerrors.New(seekerrors.ErrCodeStoreFailed, "scan document failed", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Count returns the number of stored documents.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	if err != nil {
		return 0, seekerrors.New(seekerrors.ErrCodeStoreFailed, "count documents failed", err)
	}
	return n, nil
}

// CreateJob inserts a new job record.
func (s *SQLiteStore) CreateJob(ctx context.Context, job *CrawlJob) error {
	cfg, err := json.Marshal(job.Config)
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeStoreFailed, "cannot encode job config", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO crawl_jobs (id, source, config, status, error,
		    documents_found, documents_ingested, created_at, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, string(job.Source), string(cfg), string(job.Status), job.Error,
		job.DocumentsFound, job.DocumentsIngested, job.CreatedAt.UTC(),
		nullTime(job.StartedAt), nullTime(job.CompletedAt))
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeStoreFailed, "insert job failed", err)
	}
	return nil
}

// UpdateJob overwrites an existing job record.
func (s *SQLiteStore) UpdateJob(ctx context.Context, job *CrawlJob) error {
	cfg, err := json.Marshal(job.Config)
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeStoreFailed, "cannot encode job config", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE crawl_jobs SET status = ?, error = ?, documents_found = ?,
		    documents_ingested = ?, started_at = ?, completed_at = ?, config = ?
		 WHERE id = ?`,
		string(job.Status), job.Error, job.DocumentsFound, job.DocumentsIngested,
		nullTime(job.StartedAt), nullTime(job.CompletedAt), string(cfg), job.ID)
	if err != nil {
		return seekerrors.New(seekerrors.ErrCodeStoreFailed, "update job failed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return seekerrors.NotFound("job", job.ID)
	}
	return nil
}

// GetJob returns a job by id.
func (s *SQLiteStore) GetJob(ctx context.Context, id string) (*CrawlJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, config, status, error, documents_found,
		    documents_ingested, created_at, started_at, completed_at
		 FROM crawl_jobs WHERE id = ?`, id)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, seekerrors.NotFound("job", id)
	}
	if err != nil {
		return nil, seekerrors.New(seekerrors.ErrCodeStoreFailed, "read job failed", err)
	}
	return job, nil
}

// ListJobs returns jobs newest first.
func (s *SQLiteStore) ListJobs(ctx context.Context, limit, offset int) ([]*CrawlJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, config, status, error, documents_found,
		    documents_ingested, created_at, started_at, completed_at
		 FROM crawl_jobs ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, seekerrors.New(seekerrors.ErrCodeStoreFailed, "list jobs failed", err)
	}
	defer rows.Close()

	var jobs []*CrawlJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, seekerrors.New(seekerrors.ErrCodeStoreFailed, "scan job failed", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*Document, error) {
	var doc Document
	var source, meta string
	if err := row.Scan(&doc.ID, &source, &doc.Title, &doc.Body, &doc.URL,
		&doc.FetchedAt, &meta); err != nil {
		return nil, err
	}
	doc.Source = Source(source)
	if meta != "" && meta != "{}" {
		if err := json.Unmarshal([]byte(meta), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &doc, nil
}

func scanJob(row scanner) (*CrawlJob, error) {
	var job CrawlJob
	var source, status, cfg string
	var started, completed sql.NullTime
	if err := row.Scan(&job.ID, &source, &cfg, &status, &job.Error,
		&job.DocumentsFound, &job.DocumentsIngested, &job.CreatedAt,
		&started, &completed); err != nil {
		return nil, err
	}
	job.Source = Source(source)
	job.Status = JobStatus(status)
	if err := json.Unmarshal([]byte(cfg), &job.Config); err != nil {
		return nil, fmt.Errorf("decode job config: %w", err)
	}
	if started.Valid {
		t := started.Time
		job.StartedAt = &t
	}
	if completed.Valid {
		t := completed.Time
		job.CompletedAt = &t
	}
	return &job, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
