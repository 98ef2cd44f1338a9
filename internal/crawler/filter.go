package crawler

import (
	"net/url"
	"strings"
)

// HostFilter admits links on one of Domains or any subdomain of them. An
// empty filter admits everything.
type HostFilter struct {
	Domains []string
}

func NewHostFilter(domains []string) HostFilter {
	var filter HostFilter
	for _, d := range domains {
		// Strip "www." so subdomains of the bare domain match too
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www.")
		if d != "" {
			filter.Domains = append(filter.Domains, d)
		}
	}
	return filter
}

func (filter HostFilter) Allow(link string) bool {
	if len(filter.Domains) == 0 {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	for _, d := range filter.Domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
