package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
	"github.com/hyperseek/hyperseek/internal/store"
)

// crawlSite serves a small site and records which paths were fetched.
type crawlSite struct {
	mu      sync.Mutex
	fetched []string
	srv     *httptest.Server
}

func newCrawlSite(t *testing.T, pages map[string]string, robots string) *crawlSite {
	t.Helper()
	site := &crawlSite{}
	site.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.fetched = append(site.fetched, r.URL.Path)
		site.mu.Unlock()

		if r.URL.Path == "/robots.txt" {
			if robots == "" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, robots)
			return
		}
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, page)
	}))
	t.Cleanup(site.srv.Close)
	return site
}

func (s *crawlSite) sawPath(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.fetched {
		if p == path {
			return true
		}
	}
	return false
}

func page(title string, links ...string) string {
	body := fmt.Sprintf("<html><head><title>%s</title></head><body><p>Content of %s page with enough words to index.</p>", title, title)
	for _, l := range links {
		body += fmt.Sprintf(`<a href=%q>link</a>`, l)
	}
	return body + "</body></html>"
}

func TestGenericAdapter_BreadthFirstCrawl(t *testing.T) {
	site := newCrawlSite(t, map[string]string{
		"/":     page("Home", "/a", "/b"),
		"/a":    page("A", "/deep"),
		"/b":    page("B"),
		"/deep": page("Deep"),
	}, "")

	a := NewGenericAdapter("HyperSeekBot/1.0")
	var docs []*store.Document
	err := a.Fetch(context.Background(), NewClient(0, "HyperSeekBot/1.0"),
		store.JobConfig{StartURLs: []string{site.srv.URL + "/"}, MaxDepth: 1, MaxPages: 10},
		func(doc *store.Document) error {
			docs = append(docs, doc)
			return nil
		})
	require.NoError(t, err)

	// Depth 1 reaches /a and /b but not /deep.
	require.Len(t, docs, 3)
	assert.Equal(t, "Home", docs[0].Title)
	assert.False(t, site.sawPath("/deep"))
	assert.Equal(t, store.SourceCustomURL, docs[0].Source)
}

func TestGenericAdapter_NeverFetchesDisallowedURL(t *testing.T) {
	site := newCrawlSite(t, map[string]string{
		"/":          page("Home", "/private/x", "/open"),
		"/open":      page("Open"),
		"/private/x": page("Private"),
	}, "User-agent: *\nDisallow: /private/\n")

	a := NewGenericAdapter("HyperSeekBot/1.0")
	var docs []*store.Document
	err := a.Fetch(context.Background(), NewClient(0, "HyperSeekBot/1.0"),
		store.JobConfig{StartURLs: []string{site.srv.URL + "/"}, MaxDepth: 2, MaxPages: 10},
		func(doc *store.Document) error {
			docs = append(docs, doc)
			return nil
		})
	require.NoError(t, err)

	assert.False(t, site.sawPath("/private/x"))
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.NotContains(t, d.URL, "/private/")
	}
}

func TestGenericAdapter_DeduplicatesByNormalizedURL(t *testing.T) {
	site := newCrawlSite(t, map[string]string{
		"/":  page("Home", "/a", "/a/", "/a?utm=1", "/a#section"),
		"/a": page("A"),
	}, "")

	a := NewGenericAdapter("HyperSeekBot/1.0")
	var docs []*store.Document
	err := a.Fetch(context.Background(), NewClient(0, "HyperSeekBot/1.0"),
		store.JobConfig{StartURLs: []string{site.srv.URL + "/"}, MaxDepth: 1, MaxPages: 10},
		func(doc *store.Document) error {
			docs = append(docs, doc)
			return nil
		})
	require.NoError(t, err)

	// All four hrefs normalize to the same URL and are crawled once.
	require.Len(t, docs, 2)
}

func TestGenericAdapter_MaxPagesBoundsCrawl(t *testing.T) {
	site := newCrawlSite(t, map[string]string{
		"/":  page("Home", "/a", "/b", "/c"),
		"/a": page("A"),
		"/b": page("B"),
		"/c": page("C"),
	}, "")

	a := NewGenericAdapter("HyperSeekBot/1.0")
	count := 0
	err := a.Fetch(context.Background(), NewClient(0, "HyperSeekBot/1.0"),
		store.JobConfig{StartURLs: []string{site.srv.URL + "/"}, MaxDepth: 3, MaxPages: 2},
		func(doc *store.Document) error {
			count++
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGenericAdapter_StaysOnStartHosts(t *testing.T) {
	other := newCrawlSite(t, map[string]string{"/": page("Other")}, "")
	site := newCrawlSite(t, map[string]string{
		"/":      page("Home", other.srv.URL+"/", "/local"),
		"/local": page("Local"),
	}, "")

	a := NewGenericAdapter("HyperSeekBot/1.0")
	var urls []string
	err := a.Fetch(context.Background(), NewClient(0, "HyperSeekBot/1.0"),
		store.JobConfig{StartURLs: []string{site.srv.URL + "/"}, MaxDepth: 2, MaxPages: 10},
		func(doc *store.Document) error {
			urls = append(urls, doc.URL)
			return nil
		})
	require.NoError(t, err)

	assert.False(t, other.sawPath("/"))
	assert.Len(t, urls, 2)
}

func TestGenericAdapter_Validate(t *testing.T) {
	a := NewGenericAdapter("HyperSeekBot/1.0")

	err := a.Validate(store.JobConfig{})
	assert.Equal(t, seekerrors.ErrCodeInvalidConfig, seekerrors.GetCode(err))

	err = a.Validate(store.JobConfig{StartURLs: []string{"ftp://example.org"}})
	assert.Equal(t, seekerrors.ErrCodeInvalidConfig, seekerrors.GetCode(err))

	err = a.Validate(store.JobConfig{StartURLs: []string{"not a url"}})
	assert.Equal(t, seekerrors.ErrCodeInvalidConfig, seekerrors.GetCode(err))

	assert.NoError(t, a.Validate(store.JobConfig{StartURLs: []string{"https://example.org/docs"}}))
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"https://Example.org/Path/", "https://example.org/Path", true},
		{"https://example.org/p?q=1#frag", "https://example.org/p", true},
		{"https://example.org", "https://example.org", true},
		{"ftp://example.org/x", "", false},
		{"/relative/only", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeURL(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
