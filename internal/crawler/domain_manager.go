package crawler

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

const robotsCacheSize = 256

// DomainManager keeps crawls polite: one rate limiter per host and a cached
// robots.txt verdict per host.
type DomainManager struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration

	agent         string
	respectRobots bool
	client        *http.Client
	robotsCache   *lru.Cache[string, *robotstxt.Group]
}

func NewDomainManager(agent string, interval time.Duration, respectRobots bool, client *http.Client) *DomainManager {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	// Only fails for a non-positive size.
	cache, _ := lru.New[string, *robotstxt.Group](robotsCacheSize)
	return &DomainManager{
		limiters:      make(map[string]*rate.Limiter),
		interval:      interval,
		agent:         agent,
		respectRobots: respectRobots,
		client:        client,
		robotsCache:   cache,
	}
}

// Wait blocks until the host of targetURL may be hit again.
func (d *DomainManager) Wait(ctx context.Context, targetURL string) error {
	u, err := url.Parse(targetURL)
	if err != nil {
		return err
	}
	if d.interval <= 0 {
		return nil
	}
	domain := u.Host

	d.mu.Lock()
	limiter, exists := d.limiters[domain]
	if !exists {
		// 1 = burst size (allow 1 request immediately, then wait)
		limiter = rate.NewLimiter(rate.Every(d.interval), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// IsAllowed reports whether robots.txt lets the agent fetch link. A missing or
// unreadable robots.txt allows everything.
func (d *DomainManager) IsAllowed(ctx context.Context, link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	if !d.respectRobots {
		return true
	}

	group, cached := d.robotsCache.Get(u.Host)
	if !cached {
		group = d.fetchGroup(ctx, u)
		if ctx.Err() == nil {
			d.robotsCache.Add(u.Host, group)
		}
	}

	if group == nil {
		return true // No robots.txt or parse error = Allowed
	}
	return group.Test(u.RequestURI())
}

func (d *DomainManager) fetchGroup(ctx context.Context, u *url.URL) *robotstxt.Group {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.Scheme+"://"+u.Host+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", d.agent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data.FindGroup(d.agent)
}
