package crawl

import (
	"context"
	"fmt"
	"net/url"
	"time"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
	"github.com/hyperseek/hyperseek/internal/store"
)

// encyclopediaPageSize is the MediaWiki search batch size.
const encyclopediaPageSize = 10

// EncyclopediaAdapter paginates a MediaWiki search API and fetches the
// plain-text extract for each hit.
type EncyclopediaAdapter struct {
	baseURL string
}

var _ Adapter = (*EncyclopediaAdapter)(nil)

// NewEncyclopediaAdapter creates an adapter against a MediaWiki API
// endpoint such as https://en.wikipedia.org/w/api.php.
func NewEncyclopediaAdapter(baseURL string) *EncyclopediaAdapter {
	return &EncyclopediaAdapter{baseURL: baseURL}
}

// Source identifies this adapter.
func (a *EncyclopediaAdapter) Source() store.Source { return store.SourceEncyclopedia }

// Validate requires a search query.
func (a *EncyclopediaAdapter) Validate(cfg store.JobConfig) error {
	if cfg.Query == "" {
		return seekerrors.InvalidConfig("encyclopedia crawl requires a query")
	}
	if cfg.MaxPages < 0 {
		return seekerrors.InvalidConfig("max_pages must not be negative")
	}
	return nil
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			PageID int    `json:"pageid"`
			Title  string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type wikiExtractResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int    `json:"pageid"`
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Fetch searches page by page, bounded by MaxPages, and emits one
// document per article.
func (a *EncyclopediaAdapter) Fetch(ctx context.Context, client *Client, cfg store.JobConfig, emit EmitFunc) error {
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	for page := 0; page < maxPages; page++ {
		searchURL := fmt.Sprintf(
			"%s?action=query&list=search&format=json&srlimit=%d&sroffset=%d&srsearch=%s",
			a.baseURL, encyclopediaPageSize, page*encyclopediaPageSize, url.QueryEscape(cfg.Query))

		var search wikiSearchResponse
		if err := client.GetJSON(ctx, searchURL, &search); err != nil {
			return err
		}
		if len(search.Query.Search) == 0 {
			return nil
		}

		for _, hit := range search.Query.Search {
			doc, err := a.fetchArticle(ctx, client, hit.PageID)
			if err != nil {
				// One unreachable article skips the item; only the
				// listing call can fail the job.
				if ctx.Err() != nil {
					return ctx.Err()
				}
				continue
			}
			if doc == nil {
				continue
			}
			if err := emit(doc); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *EncyclopediaAdapter) fetchArticle(ctx context.Context, client *Client, pageID int) (*store.Document, error) {
	extractURL := fmt.Sprintf(
		"%s?action=query&prop=extracts&explaintext=1&format=json&pageids=%d",
		a.baseURL, pageID)

	var extract wikiExtractResponse
	if err := client.GetJSON(ctx, extractURL, &extract); err != nil {
		return nil, err
	}

	page, ok := extract.Query.Pages[fmt.Sprintf("%d", pageID)]
	if !ok || page.Extract == "" {
		return nil, nil
	}

	return &store.Document{
		ID:        fmt.Sprintf("wiki-%d", pageID),
		Source:    store.SourceEncyclopedia,
		Title:     page.Title,
		Body:      page.Extract,
		URL:       fmt.Sprintf("%s?curid=%d", a.baseURL, pageID),
		FetchedAt: time.Now().UTC(),
		Metadata:  map[string]string{"pageid": fmt.Sprintf("%d", pageID)},
	}, nil
}
