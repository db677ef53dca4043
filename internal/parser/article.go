package parser

import (
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/wikiharvest/wikiharvest/internal/types"
	"github.com/wikiharvest/wikiharvest/internal/wikinews"
)

// Section anchors that mark the end of the article body. Everything from
// the first of these onward is boilerplate (sources, navigation, siblings).
var trailingSectionIDs = []string{
	"External_link",
	"External_links",
	"References",
	"Related_Stories",
	"Related_news",
	"Related_stories",
	"See_also",
	"Sister_links",
	"Sources",
}

// ArticleResult carries a best-effort ArticleRecord plus one warning per
// field that could not be located. The record is emitted regardless of
// warnings.
type ArticleResult struct {
	Record   types.ArticleRecord
	Warnings []string
}

// ArticleParser extracts the structured fields of one article page.
// Body text and categories come from CSS selectors (goquery); the byline
// date and license links come from XPath lookups (htmlquery).
type ArticleParser struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewArticleParser creates a new article page parser.
func NewArticleParser(logger *slog.Logger) *ArticleParser {
	return &ArticleParser{
		logger: logger.With("component", "article_parser"),
		now:    time.Now,
	}
}

// Parse extracts an ArticleRecord from an article page response.
// Missing fields produce warnings, never errors; the only error case is
// HTML that cannot be tokenized at all.
func (p *ArticleParser) Parse(resp *types.Response) (*ArticleResult, error) {
	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: resp.Request.URLString(), Err: err}
	}

	root, err := html.Parse(strings.NewReader(string(resp.Body)))
	if err != nil {
		return nil, &types.ParseError{URL: resp.Request.URLString(), Err: err}
	}

	articleURL := pageURL(resp)
	base, err := url.Parse(articleURL)
	if err != nil {
		return nil, &types.ParseError{URL: resp.Request.URLString(), Err: err}
	}

	result := &ArticleResult{
		Record: types.ArticleRecord{
			URL: articleURL,
			Metadata: types.ArticleMetadata{
				AccessedDate: p.now().UTC().Format(time.RFC3339),
				Domain:       wikinews.Domain(articleURL),
			},
		},
	}

	result.Record.Title = strings.TrimSpace(doc.Find("#firstHeading").First().Text())
	if result.Record.Title == "" {
		p.warn(result, articleURL, "title")
	}

	result.Record.Text = p.extractBody(doc)
	if result.Record.Text == "" {
		p.warn(result, articleURL, "body text")
	}

	if date := htmlquery.FindOne(root, `//*[@id='publishDate']`); date != nil {
		result.Record.Metadata.PublishedDate = htmlquery.SelectAttr(date, "title")
	}
	if result.Record.Metadata.PublishedDate == "" {
		p.warn(result, articleURL, "published date")
	}

	for _, n := range htmlquery.Find(root, `//*[@rel='license']`) {
		if href := htmlquery.SelectAttr(n, "href"); href != "" {
			result.Record.Metadata.Licenses = append(result.Record.Metadata.Licenses, href)
		}
	}

	result.Record.Metadata.Languages = p.extractLanguages(doc)

	catBox := doc.Find("#mw-normal-catlinks")
	if catBox.Length() == 0 {
		p.warn(result, articleURL, "category box")
	} else {
		result.Record.Metadata.WikinewsCategories = extractCategoryLinks(catBox, base)
	}

	return result, nil
}

// extractBody walks the direct children of the parser output container,
// keeping paragraph-level content blocks and stopping at the first
// trailing-section anchor. Output is plain text, paragraphs separated by
// blank lines.
func (p *ArticleParser) extractBody(doc *goquery.Document) string {
	container := doc.Find("#mw-content-text .mw-parser-output").First()
	if container.Length() == 0 {
		return ""
	}

	var paragraphs []string
	container.Children().EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if hasTrailingSectionMarker(sel) {
			return false
		}
		if !isContentBlock(sel) {
			return true
		}
		// The byline block carries the publish date, not body prose.
		if sel.Find(".published").Length() > 0 || sel.HasClass("published") {
			return true
		}
		if sel.Closest("div.infobox").Length() > 0 {
			return true
		}

		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
		return true
	})

	if len(paragraphs) == 0 {
		return ""
	}
	return strings.Join(paragraphs, "\n\n") + "\n"
}

// isContentBlock reports whether a parser-output child holds body prose:
// plain paragraphs, definition lists (old-style indents), and pull quotes.
func isContentBlock(sel *goquery.Selection) bool {
	switch goquery.NodeName(sel) {
	case "p", "dl":
		return true
	}
	return sel.HasClass("cquote")
}

// hasTrailingSectionMarker reports whether this element starts (or contains)
// one of the known end-of-article sections.
func hasTrailingSectionMarker(sel *goquery.Selection) bool {
	id, _ := sel.Attr("id")
	for _, stop := range trailingSectionIDs {
		if id == stop {
			return true
		}
		if sel.Find(`[id="`+stop+`"]`).Length() > 0 {
			return true
		}
	}
	return false
}

// extractLanguages collects the lang attributes of the parser output blocks.
func (p *ArticleParser) extractLanguages(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var langs []string
	doc.Find(".mw-parser-output").Each(func(i int, sel *goquery.Selection) {
		lang, ok := sel.Attr("lang")
		if !ok || lang == "" || seen[lang] {
			return
		}
		seen[lang] = true
		langs = append(langs, lang)
	})
	sort.Strings(langs)
	return langs
}

// extractCategoryLinks reads the footer category box, returning sorted
// absolute category URLs.
func extractCategoryLinks(catBox *goquery.Selection, base *url.URL) []string {
	seen := make(map[string]bool)
	var cats []string
	catBox.Find("ul li a").Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		abs := resolveLink(base, href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		cats = append(cats, abs)
	})
	sort.Strings(cats)
	return cats
}

func (p *ArticleParser) warn(result *ArticleResult, articleURL, field string) {
	result.Warnings = append(result.Warnings, "missing "+field)
	p.logger.Warn("field extraction shortfall", "url", articleURL, "field", field)
}
