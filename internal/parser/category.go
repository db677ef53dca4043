package parser

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wikiharvest/wikiharvest/internal/types"
	"github.com/wikiharvest/wikiharvest/internal/wikinews"
)

// CategoryPage is the parsed form of one category listing page.
type CategoryPage struct {
	// ArticleLinks are absolute URLs of article pages listed on this page.
	ArticleLinks []string

	// SubcategoryLinks are absolute URLs of sub-category listing pages.
	SubcategoryLinks []string

	// NextPage is the pagination continuation URL, empty on the last page.
	NextPage string
}

// CategoryParser extracts member links and pagination from category
// listing pages using CSS selectors via goquery.
type CategoryParser struct {
	logger *slog.Logger
}

// NewCategoryParser creates a new category listing parser.
func NewCategoryParser(logger *slog.Logger) *CategoryParser {
	return &CategoryParser{
		logger: logger.With("component", "category_parser"),
	}
}

// Parse extracts article links, sub-category links, and the next-page link
// from a category listing response. A category with no members yields empty
// slices and no error; that simply terminates the branch.
func (p *CategoryParser) Parse(resp *types.Response) (*CategoryPage, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.Request.URLString(), Err: err}
	}

	base, err := url.Parse(pageURL(resp))
	if err != nil {
		return nil, &types.ParseError{URL: resp.Request.URLString(), Err: err}
	}

	page := &CategoryPage{}
	seen := make(map[string]bool)

	// Member entries live under the mw-category listing block. Sub-category
	// entries are distinguished from articles by their Category: path.
	doc.Find(".mw-category li a").Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		abs := resolveLink(base, href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true

		if wikinews.IsCategoryURL(abs) {
			page.SubcategoryLinks = append(page.SubcategoryLinks, abs)
		} else {
			page.ArticleLinks = append(page.ArticleLinks, abs)
		}
	})

	// Truncated listings expose a "next page" anchor; its absence marks the
	// last page for this category node.
	doc.Find("a").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if strings.TrimSpace(sel.Text()) != "next page" {
			return true
		}
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		page.NextPage = resolveLink(base, href)
		return false
	})

	p.logger.Debug("category page parsed",
		"url", pageURL(resp),
		"articles", len(page.ArticleLinks),
		"subcategories", len(page.SubcategoryLinks),
		"has_next", page.NextPage != "",
	)

	return page, nil
}

// pageURL prefers the post-redirect URL for resolving relative links.
func pageURL(resp *types.Response) string {
	if resp.FinalURL != "" {
		return resp.FinalURL
	}
	return resp.Request.URLString()
}

// resolveLink turns an href into an absolute http(s) URL, dropping
// fragments and non-web schemes. Returns "" for unusable hrefs.
func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}
