package crawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRobots_WildcardGroup(t *testing.T) {
	rules := parseRobots(`
User-agent: *
Disallow: /private/
Disallow: /tmp
`, "HyperSeekBot/1.0")

	assert.True(t, rules.allows("/public/page"))
	assert.False(t, rules.allows("/private/page"))
	assert.False(t, rules.allows("/tmp"))
	assert.False(t, rules.allows("/tmpfiles"))
}

func TestParseRobots_SpecificGroupWins(t *testing.T) {
	rules := parseRobots(`
User-agent: *
Disallow: /

User-agent: HyperSeekBot
Disallow: /admin/
`, "HyperSeekBot/1.0")

	assert.True(t, rules.allows("/anything"))
	assert.False(t, rules.allows("/admin/settings"))
}

func TestParseRobots_SpecificEmptyDisallowOverridesWildcard(t *testing.T) {
	rules := parseRobots(`
User-agent: HyperSeekBot
Disallow:

User-agent: *
Disallow: /
`, "HyperSeekBot/1.0")

	assert.True(t, rules.allows("/anything"))
}

func TestParseRobots_CommentsAndCase(t *testing.T) {
	rules := parseRobots(`
# global rules
USER-AGENT: *
DISALLOW: /secret # hidden area
`, "HyperSeekBot/1.0")

	assert.False(t, rules.allows("/secret/doc"))
	assert.True(t, rules.allows("/open"))
}

func TestRobotsCache_FetchedOncePerHost(t *testing.T) {
	var fetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fetches.Add(1)
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /blocked/\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	rc := NewRobotsCache(NewClient(0, "HyperSeekBot/1.0"), "HyperSeekBot/1.0")
	ctx := context.Background()

	assert.True(t, rc.Allowed(ctx, srv.URL+"/ok"))
	assert.False(t, rc.Allowed(ctx, srv.URL+"/blocked/page"))
	assert.True(t, rc.Allowed(ctx, srv.URL+"/other"))
	assert.Equal(t, int32(1), fetches.Load())
}

func TestRobotsCache_FetchFailureAllowsAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	rc := NewRobotsCache(NewClient(0, "HyperSeekBot/1.0"), "HyperSeekBot/1.0")
	assert.True(t, rc.Allowed(context.Background(), srv.URL+"/anything"))
}

func TestRobotsCache_MalformedURL(t *testing.T) {
	rc := NewRobotsCache(NewClient(0, "HyperSeekBot/1.0"), "HyperSeekBot/1.0")
	assert.False(t, rc.Allowed(context.Background(), "not a url"))
}
