package crawl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
	"github.com/hyperseek/hyperseek/internal/store"
	"github.com/hyperseek/hyperseek/internal/textproc"
)

// Defaults for the custom-url crawler.
const (
	defaultCrawlDepth = 1
	defaultCrawlPages = 10
)

// GenericAdapter crawls arbitrary URLs breadth-first, within the
// start hosts, honoring each host's robots.txt.
type GenericAdapter struct {
	userAgent string
}

var _ Adapter = (*GenericAdapter)(nil)

// NewGenericAdapter creates a custom-url crawler identifying as
// userAgent to robots.txt.
func NewGenericAdapter(userAgent string) *GenericAdapter {
	return &GenericAdapter{userAgent: userAgent}
}

// Source identifies this adapter.
func (a *GenericAdapter) Source() store.Source { return store.SourceCustomURL }

// Validate requires at least one absolute http(s) start URL.
func (a *GenericAdapter) Validate(cfg store.JobConfig) error {
	if len(cfg.StartURLs) == 0 {
		return seekerrors.InvalidConfig("custom-url crawl requires start_urls")
	}
	for _, raw := range cfg.StartURLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return seekerrors.InvalidConfig("start url must be absolute http(s): " + raw)
		}
	}
	if cfg.MaxDepth < 0 || cfg.MaxPages < 0 {
		return seekerrors.InvalidConfig("max_depth and max_pages must not be negative")
	}
	return nil
}

type crawlTarget struct {
	url   string
	depth int
}

// Fetch walks pages breadth-first from the start URLs up to MaxDepth
// and MaxPages, deduplicating by normalized URL within the job.
// Robots rules are fetched once per host and held for the job's
// duration; a disallowed URL is skipped, never an error.
func (a *GenericAdapter) Fetch(ctx context.Context, client *Client, cfg store.JobConfig, emit EmitFunc) error {
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultCrawlDepth
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultCrawlPages
	}

	robots := NewRobotsCache(client, a.userAgent)

	hosts := make(map[string]struct{})
	var queue []crawlTarget
	visited := make(map[string]struct{})

	for _, raw := range cfg.StartURLs {
		norm, ok := NormalizeURL(raw)
		if !ok {
			continue
		}
		if _, seen := visited[norm]; seen {
			continue
		}
		visited[norm] = struct{}{}
		queue = append(queue, crawlTarget{url: norm, depth: 0})
		if u, err := url.Parse(norm); err == nil {
			hosts[u.Host] = struct{}{}
		}
	}

	fetched := 0
	for len(queue) > 0 && fetched < maxPages {
		if err := ctx.Err(); err != nil {
			return err
		}

		target := queue[0]
		queue = queue[1:]

		if !robots.Allowed(ctx, target.url) {
			continue
		}

		page, err := client.GetText(ctx, target.url)
		if err != nil {
			// A start page that cannot be fetched fails the job; a
			// linked page is best-effort.
			if target.depth == 0 {
				return err
			}
			continue
		}
		fetched++

		title := textproc.ExtractTitle(page)
		body := textproc.ExtractText(page)
		if title == "" {
			title = target.url
		}

		doc := &store.Document{
			ID:        urlDocID(target.url),
			Source:    store.SourceCustomURL,
			Title:     title,
			Body:      body,
			URL:       target.url,
			FetchedAt: time.Now().UTC(),
			Metadata:  map[string]string{"depth": strconv.Itoa(target.depth)},
		}
		if err := emit(doc); err != nil {
			return err
		}

		if target.depth >= maxDepth {
			continue
		}
		for _, link := range textproc.ExtractLinks(page) {
			norm, ok := resolveLink(target.url, link)
			if !ok {
				continue
			}
			if u, err := url.Parse(norm); err != nil {
				continue
			} else if _, sameHost := hosts[u.Host]; !sameHost {
				continue
			}
			if _, seen := visited[norm]; seen {
				continue
			}
			visited[norm] = struct{}{}
			queue = append(queue, crawlTarget{url: norm, depth: target.depth + 1})
		}
	}
	return nil
}

// NormalizeURL canonicalizes a URL to scheme://host/path, dropping
// query and fragment, so re-crawls of the same page resolve to the
// same document identity.
func NormalizeURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	path := strings.TrimSuffix(u.Path, "/")
	return u.Scheme + "://" + strings.ToLower(u.Host) + path, true
}

// resolveLink resolves href against base and normalizes the result.
func resolveLink(base, href string) (string, bool) {
	b, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return NormalizeURL(b.ResolveReference(ref).String())
}

// urlDocID derives a stable document id from a normalized URL.
func urlDocID(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return "url-" + hex.EncodeToString(sum[:8])
}
