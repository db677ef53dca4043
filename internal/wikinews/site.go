// Package wikinews encodes the parts of the scraper that are specific to
// the MediaWiki deployment at en.wikinews.org: how category listing URLs
// are built and how discovered links are classified. The page structure
// itself is an uncontrolled external contract and may drift; everything
// here is the URL-level half of that contract.
package wikinews

import (
	"fmt"
	"net/url"
	"strings"
)

// CategoryPrefix is the wiki path prefix for category listing pages.
const CategoryPrefix = "/wiki/Category:"

// CategoryURL builds the canonical listing URL for a named category,
// e.g. CategoryURL("https://en.wikinews.org", "Health") ->
// "https://en.wikinews.org/wiki/Category:Health".
func CategoryURL(baseURL, category string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	// MediaWiki titles use underscores for spaces in the path.
	title := strings.ReplaceAll(strings.TrimSpace(category), " ", "_")
	if title == "" {
		return "", fmt.Errorf("category name must not be empty")
	}
	ref := &url.URL{Path: CategoryPrefix + title}
	return base.ResolveReference(ref).String(), nil
}

// IsCategoryURL reports whether a discovered member link points at another
// category listing page rather than an article.
func IsCategoryURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasPrefix(u.Path, CategoryPrefix)
}

// Domain returns the scheme://host portion of an article URL, used as the
// record's metadata domain field. Empty on unparseable input.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host)
}
