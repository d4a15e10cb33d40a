// Package crawl runs crawl jobs across the source adapters and feeds
// fetched documents into the search engine.
package crawl

import (
	"context"

	"github.com/hyperseek/hyperseek/internal/store"
)

// EmitFunc receives each fetched document as the adapter produces it.
// Returning an error aborts the fetch.
type EmitFunc func(doc *store.Document) error

// Adapter fetches documents from one source kind.
type Adapter interface {
	// Source identifies the source this adapter serves.
	Source() store.Source

	// Validate rejects malformed configs before a job is created.
	Validate(cfg store.JobConfig) error

	// Fetch produces a finite sequence of documents, calling emit for
	// each one as it is fetched. All outbound requests go through
	// client so the per-job rate policy applies uniformly.
	Fetch(ctx context.Context, client *Client, cfg store.JobConfig, emit EmitFunc) error
}
