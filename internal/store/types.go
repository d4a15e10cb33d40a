// Package store holds the persistent document and crawl-job records
// plus the vector index backing semantic search.
package store

import (
	"context"
	"time"
)

// Source identifies where a document was crawled from.
type Source string

const (
	SourceEncyclopedia Source = "encyclopedia"
	SourceForum        Source = "forum"
	SourceTechNews     Source = "tech-news"
	SourceCustomURL    Source = "custom-url"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceEncyclopedia, SourceForum, SourceTechNews, SourceCustomURL:
		return true
	}
	return false
}

// Document is one crawled item. Immutable once indexed; a re-crawl of
// the same id replaces the whole record (delete then insert).
type Document struct {
	ID        string            `json:"id"`
	Source    Source            `json:"source"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	URL       string            `json:"url"`
	FetchedAt time.Time         `json:"fetched_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// JobStatus is the crawl job lifecycle state.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// JobConfig carries the source-specific crawl parameters. Which fields
// matter depends on the source; adapters validate their own subset.
type JobConfig struct {
	// Query is the search term for API-backed sources.
	Query string `json:"query,omitempty"`
	// Subreddit scopes forum searches. Empty searches all.
	Subreddit string `json:"subreddit,omitempty"`
	// StartURLs seeds the custom-url crawler.
	StartURLs []string `json:"start_urls,omitempty"`
	// MaxPages caps pages fetched (API pages or crawled pages).
	MaxPages int `json:"max_pages,omitempty"`
	// MaxDepth caps link-following depth for the custom-url crawler.
	MaxDepth int `json:"max_depth,omitempty"`
}

// CrawlJob tracks one crawl request through its lifecycle. Only the
// orchestrator executing the job mutates it after creation.
type CrawlJob struct {
	ID                string     `json:"id"`
	Source            Source     `json:"source"`
	Config            JobConfig  `json:"config"`
	Status            JobStatus  `json:"status"`
	Error             string     `json:"error,omitempty"`
	DocumentsFound    int        `json:"documents_found"`
	DocumentsIngested int        `json:"documents_ingested"`
	CreatedAt         time.Time  `json:"created_at"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// DocumentStore persists documents.
type DocumentStore interface {
	// Put inserts a document. Returns a conflict error if the id exists.
	Put(ctx context.Context, doc *Document) error
	// Get returns a document by id, or a not-found error.
	Get(ctx context.Context, id string) (*Document, error)
	// Delete removes a document by id, or returns a not-found error.
	Delete(ctx context.Context, id string) error
	// List returns documents ordered by fetch time descending.
	List(ctx context.Context, limit, offset int) ([]*Document, error)
	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}

// JobStore persists crawl jobs.
type JobStore interface {
	// CreateJob inserts a new job record.
	CreateJob(ctx context.Context, job *CrawlJob) error
	// UpdateJob overwrites an existing job record.
	UpdateJob(ctx context.Context, job *CrawlJob) error
	// GetJob returns a job by id, or a not-found error.
	GetJob(ctx context.Context, id string) (*CrawlJob, error)
	// ListJobs returns jobs ordered by creation time descending.
	ListJobs(ctx context.Context, limit, offset int) ([]*CrawlJob, error)
}

// VectorResult is one semantic search hit.
type VectorResult struct {
	ID    string
	Score float64
}

// VectorStore indexes embedding vectors for similarity search.
type VectorStore interface {
	// Upsert adds or replaces the vector for id.
	Upsert(ctx context.Context, id string, vector []float32) error
	// Delete removes the vector for id. Unknown ids are ignored.
	Delete(ctx context.Context, id string) error
	// Query returns up to k ids most similar to the query vector,
	// best first.
	Query(ctx context.Context, vector []float32, k int) ([]VectorResult, error)
	// Len returns the number of live vectors.
	Len() int
}
