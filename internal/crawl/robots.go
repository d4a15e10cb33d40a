package crawl

import (
	"context"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// robotsCacheSize bounds hosts cached per job.
const robotsCacheSize = 128

// robotsRules is the disallow set that applies to our user agent on
// one host.
type robotsRules struct {
	disallow []string
}

// allows reports whether path is permitted. Any matching disallow
// prefix blocks the path; an empty Disallow value permits everything.
func (r *robotsRules) allows(path string) bool {
	if path == "" {
		path = "/"
	}
	for _, prefix := range r.disallow {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// RobotsCache fetches and caches robots.txt rules per host. Rules are
// fetched once per host for the cache's lifetime; a fetch failure is
// treated as allow-all.
type RobotsCache struct {
	client    *Client
	userAgent string
	cache     *lru.Cache[string, *robotsRules]
}

// NewRobotsCache creates a cache that evaluates rules for userAgent.
func NewRobotsCache(client *Client, userAgent string) *RobotsCache {
	cache, _ := lru.New[string, *robotsRules](robotsCacheSize)
	return &RobotsCache{client: client, userAgent: userAgent, cache: cache}
}

// Allowed reports whether rawURL may be fetched under its host's
// robots rules.
func (rc *RobotsCache) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	origin := u.Scheme + "://" + u.Host
	rules, ok := rc.cache.Get(origin)
	if !ok {
		rules = rc.fetch(ctx, origin)
		rc.cache.Add(origin, rules)
	}
	return rules.allows(u.Path)
}

func (rc *RobotsCache) fetch(ctx context.Context, origin string) *robotsRules {
	body, err := rc.client.GetText(ctx, origin+"/robots.txt")
	if err != nil {
		// Unreachable or missing robots.txt permits everything.
		return &robotsRules{}
	}
	return parseRobots(body, rc.userAgent)
}

// parseRobots extracts the disallow rules from the most specific
// user-agent group matching agent, falling back to the wildcard group.
func parseRobots(body, agent string) *robotsRules {
	agent = strings.ToLower(agent)

	var specific, wildcard []string
	var currentAgents []string
	inGroup := false
	specificSeen := false

	for _, line := range strings.Split(body, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			currentAgents = nil
			inGroup = false
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			if inGroup {
				// A user-agent line after rules starts a new group.
				currentAgents = nil
				inGroup = false
			}
			currentAgents = append(currentAgents, strings.ToLower(value))
		case "disallow":
			inGroup = true
			for _, a := range currentAgents {
				switch {
				case a == "*":
					if value != "" {
						wildcard = append(wildcard, value)
					}
				case strings.Contains(agent, a):
					specificSeen = true
					if value != "" {
						specific = append(specific, value)
					}
				}
			}
		}
	}

	// A group naming our agent overrides the wildcard group even when
	// it disallows nothing.
	if specificSeen {
		return &robotsRules{disallow: specific}
	}
	return &robotsRules{disallow: wildcard}
}
