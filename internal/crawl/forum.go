package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
	"github.com/hyperseek/hyperseek/internal/store"
)

// forumSearchLimit is how many posts one search page returns.
const forumSearchLimit = 25

// ForumAdapter searches a Reddit-style API and enriches each post with
// its top-level comments.
type ForumAdapter struct {
	baseURL string
}

var _ Adapter = (*ForumAdapter)(nil)

// NewForumAdapter creates an adapter against a Reddit-style API host.
func NewForumAdapter(baseURL string) *ForumAdapter {
	return &ForumAdapter{baseURL: baseURL}
}

// Source identifies this adapter.
func (a *ForumAdapter) Source() store.Source { return store.SourceForum }

// Validate requires a search query.
func (a *ForumAdapter) Validate(cfg store.JobConfig) error {
	if cfg.Query == "" {
		return seekerrors.InvalidConfig("forum crawl requires a query")
	}
	return nil
}

type forumListing struct {
	Data struct {
		Children []struct {
			Data forumItem `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type forumItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	SelfText  string `json:"selftext"`
	Body      string `json:"body"`
	Permalink string `json:"permalink"`
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"`
}

// Fetch searches for posts, then fetches each post's top-level
// comments and emits the combined text as one document.
func (a *ForumAdapter) Fetch(ctx context.Context, client *Client, cfg store.JobConfig, emit EmitFunc) error {
	searchURL := a.searchURL(cfg)

	var listing forumListing
	if err := client.GetJSON(ctx, searchURL, &listing); err != nil {
		return err
	}

	maxPosts := len(listing.Data.Children)
	if cfg.MaxPages > 0 && cfg.MaxPages < maxPosts {
		maxPosts = cfg.MaxPages
	}

	for _, child := range listing.Data.Children[:maxPosts] {
		post := child.Data
		if post.Permalink == "" {
			continue
		}

		comments, err := a.fetchComments(ctx, client, post.Permalink)
		if err != nil {
			// Comments are best-effort enrichment; the post still
			// indexes on its own text.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			comments = nil
		}

		body := post.SelfText
		if len(comments) > 0 {
			body = strings.TrimSpace(body + "\n\n" + strings.Join(comments, "\n\n"))
		}

		doc := &store.Document{
			ID:        "forum-" + post.ID,
			Source:    store.SourceForum,
			Title:     post.Title,
			Body:      body,
			URL:       a.baseURL + post.Permalink,
			FetchedAt: time.Now().UTC(),
			Metadata: map[string]string{
				"subreddit": post.Subreddit,
				"score":     fmt.Sprintf("%d", post.Score),
			},
		}
		if err := emit(doc); err != nil {
			return err
		}
	}
	return nil
}

func (a *ForumAdapter) searchURL(cfg store.JobConfig) string {
	q := url.QueryEscape(cfg.Query)
	if cfg.Subreddit != "" {
		return fmt.Sprintf("%s/r/%s/search.json?q=%s&restrict_sr=1&limit=%d",
			a.baseURL, url.PathEscape(cfg.Subreddit), q, forumSearchLimit)
	}
	return fmt.Sprintf("%s/search.json?q=%s&limit=%d", a.baseURL, q, forumSearchLimit)
}

// fetchComments returns the top-level comment bodies for a post.
func (a *ForumAdapter) fetchComments(ctx context.Context, client *Client, permalink string) ([]string, error) {
	// A post endpoint returns two listings: the post itself, then the
	// comment tree.
	var listings []forumListing
	if err := client.GetJSON(ctx, a.baseURL+permalink+".json", &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var comments []string
	for _, child := range listings[1].Data.Children {
		if body := strings.TrimSpace(child.Data.Body); body != "" {
			comments = append(comments, body)
		}
	}
	return comments, nil
}
