package types

import "encoding/json"

// ArticleMetadata holds the publication metadata extracted from an
// article page's byline, language tags, license links, and category box.
type ArticleMetadata struct {
	// AccessedDate is the UTC timestamp at which the page was parsed.
	AccessedDate string `json:"accessed_date"`

	// Domain is the scheme://host portion of the article URL.
	Domain string `json:"domain,omitempty"`

	// Languages lists the lang attributes found on the parser output blocks.
	Languages []string `json:"languages"`

	// Licenses lists the hrefs of rel="license" links on the page.
	Licenses []string `json:"licenses"`

	// PublishedDate is the article's publication date, empty when the
	// byline date element is missing.
	PublishedDate string `json:"published_date,omitempty"`

	// WikinewsCategories lists the category URLs from the page footer's
	// category box, sorted.
	WikinewsCategories []string `json:"wikinews_categories"`
}

// ArticleRecord is the output unit: one JSON object per scraped article.
// A record is immutable once constructed and written exactly once.
type ArticleRecord struct {
	URL      string          `json:"url"`
	Title    string          `json:"title"`
	Text     string          `json:"text"`
	Metadata ArticleMetadata `json:"metadata"`
}

// ToJSON serializes the record to a single JSON line (no trailing newline).
func (r *ArticleRecord) ToJSON() ([]byte, error) {
	// Keep list fields as [] rather than null on empty.
	if r.Metadata.Languages == nil {
		r.Metadata.Languages = []string{}
	}
	if r.Metadata.Licenses == nil {
		r.Metadata.Licenses = []string{}
	}
	if r.Metadata.WikinewsCategories == nil {
		r.Metadata.WikinewsCategories = []string{}
	}
	return json.Marshal(r)
}
