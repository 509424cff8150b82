package scraper

import (
	"fmt"
	"net/url"
)

// ListingURL returns base with the General Assembly parameter set.
// An empty assembly returns base unchanged.
func ListingURL(base, assembly string) (string, error) {
	if assembly == "" {
		return base, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse listing URL: %w", err)
	}
	q := u.Query()
	q.Set(AssemblyParam, assembly)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DetailURL builds a member's bills URL from the href found on the listing page.
// The href is concatenated as is, without resolution or escaping.
func DetailURL(href string) string {
	return joinDetailURL(DetailBaseURL, href)
}

func joinDetailURL(base, href string) string {
	return base + href + DetailQuerySuffix
}
