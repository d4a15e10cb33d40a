package crawl

import (
	"context"
	"fmt"
	"net/url"
	"time"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
	"github.com/hyperseek/hyperseek/internal/store"
	"github.com/hyperseek/hyperseek/internal/textproc"
)

// TechNewsAdapter searches an Algolia-style story API and, for stories
// linking an external page, enriches the body with that page's text.
type TechNewsAdapter struct {
	baseURL string
}

var _ Adapter = (*TechNewsAdapter)(nil)

// NewTechNewsAdapter creates an adapter against an Algolia-style
// search host.
func NewTechNewsAdapter(baseURL string) *TechNewsAdapter {
	return &TechNewsAdapter{baseURL: baseURL}
}

// Source identifies this adapter.
func (a *TechNewsAdapter) Source() store.Source { return store.SourceTechNews }

// Validate requires a search query.
func (a *TechNewsAdapter) Validate(cfg store.JobConfig) error {
	if cfg.Query == "" {
		return seekerrors.InvalidConfig("tech-news crawl requires a query")
	}
	return nil
}

type newsSearchResponse struct {
	Hits []struct {
		ObjectID  string `json:"objectID"`
		Title     string `json:"title"`
		URL       string `json:"url"`
		StoryText string `json:"story_text"`
		Points    int    `json:"points"`
		Author    string `json:"author"`
	} `json:"hits"`
	NbPages int `json:"nbPages"`
}

// Fetch searches page by page and emits one document per story. The
// linked external page is fetched best-effort: a failure there only
// means the story goes out without body enrichment.
func (a *TechNewsAdapter) Fetch(ctx context.Context, client *Client, cfg store.JobConfig, emit EmitFunc) error {
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	for page := 0; page < maxPages; page++ {
		searchURL := fmt.Sprintf("%s/api/v1/search?query=%s&page=%d",
			a.baseURL, url.QueryEscape(cfg.Query), page)

		var resp newsSearchResponse
		if err := client.GetJSON(ctx, searchURL, &resp); err != nil {
			return err
		}
		if len(resp.Hits) == 0 {
			return nil
		}

		for _, hit := range resp.Hits {
			body := hit.StoryText
			docURL := hit.URL
			if docURL == "" {
				docURL = fmt.Sprintf("%s/item?id=%s", a.baseURL, hit.ObjectID)
			} else if linked, err := client.GetText(ctx, hit.URL); err == nil {
				if text := textproc.ExtractText(linked); text != "" {
					body = text
				}
			}

			doc := &store.Document{
				ID:        "news-" + hit.ObjectID,
				Source:    store.SourceTechNews,
				Title:     hit.Title,
				Body:      body,
				URL:       docURL,
				FetchedAt: time.Now().UTC(),
				Metadata: map[string]string{
					"points": fmt.Sprintf("%d", hit.Points),
					"author": hit.Author,
				},
			}
			if err := emit(doc); err != nil {
				return err
			}
		}

		if resp.NbPages > 0 && page+1 >= resp.NbPages {
			return nil
		}
	}
	return nil
}
