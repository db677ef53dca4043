// Package engine implements the crawl driver: breadth-first traversal of
// the category graph, per-run dedup of listing pages and articles, and
// emission of one record per article. The driver owns all traversal state;
// parsers stay pure and the fetcher/emitter are injected interfaces.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wikiharvest/wikiharvest/internal/config"
	"github.com/wikiharvest/wikiharvest/internal/parser"
	"github.com/wikiharvest/wikiharvest/internal/types"
	"github.com/wikiharvest/wikiharvest/internal/wikinews"
)

// Fetcher is the interface the driver needs for page retrieval.
type Fetcher interface {
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)
	Close() error
}

// Emitter is the interface the driver needs for record output.
type Emitter interface {
	Emit(record *types.ArticleRecord) error
	Close() error
}

// Stats tracks one run's counters. The run is single-threaded, so plain
// ints suffice.
type Stats struct {
	PagesFetched       int
	PagesFailed        int
	ArticlesEmitted    int
	ArticlesFailed     int
	ExtractionWarnings int
}

// Snapshot returns the stats as a loggable map.
func (s *Stats) Snapshot() map[string]any {
	return map[string]any{
		"pages_fetched":       s.PagesFetched,
		"pages_failed":        s.PagesFailed,
		"articles_emitted":    s.ArticlesEmitted,
		"articles_failed":     s.ArticlesFailed,
		"extraction_warnings": s.ExtractionWarnings,
	}
}

// Driver orchestrates the scrape: enumerate listing pages, dedupe and
// fetch articles, emit records.
type Driver struct {
	cfg        *config.Config
	logger     *slog.Logger
	fetcher    Fetcher
	emitter    Emitter
	categories *parser.CategoryParser
	articles   *parser.ArticleParser

	frontier    *Frontier
	visited     *Deduplicator // category listing pages
	articleSeen *Deduplicator // article URLs
	stats       Stats
}

// New creates a Driver with fresh traversal state.
func New(cfg *config.Config, logger *slog.Logger, f Fetcher, e Emitter) *Driver {
	return &Driver{
		cfg:         cfg,
		logger:      logger.With("component", "driver"),
		fetcher:     f,
		emitter:     e,
		categories:  parser.NewCategoryParser(logger),
		articles:    parser.NewArticleParser(logger),
		frontier:    NewFrontier(),
		visited:     NewDeduplicator(1024),
		articleSeen: NewDeduplicator(4096),
	}
}

// Stats returns the run counters.
func (d *Driver) Stats() *Stats {
	return &d.stats
}

// Run crawls the named category to completion. Individual page failures
// are logged and skipped; only a failed seed fetch (nothing to traverse)
// or a broken output stream aborts the run.
func (d *Driver) Run(ctx context.Context, category string) error {
	seedURL, err := wikinews.CategoryURL(d.cfg.Scraper.BaseURL, category)
	if err != nil {
		return fmt.Errorf("build category URL: %w", err)
	}

	d.logger.Info("begin scraping category", "category", category, "url", seedURL)
	d.frontier.Push(seedURL)

	seed := true
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		listingURL, ok := d.frontier.Pop()
		if !ok {
			break
		}
		if d.cfg.Scraper.MaxPages > 0 && d.stats.PagesFetched >= d.cfg.Scraper.MaxPages {
			d.logger.Info("page cap reached", "max_pages", d.cfg.Scraper.MaxPages)
			break
		}
		if !d.visited.MarkIfNew(listingURL) {
			// Reachable via multiple parent categories; already processed.
			continue
		}

		page, err := d.processListing(ctx, listingURL)
		if err != nil {
			if seed {
				return fmt.Errorf("fetch seed category page: %w", err)
			}
			d.stats.PagesFailed++
			d.logger.Warn("category page dropped", "url", listingURL, "error", err)
			continue
		}
		seed = false

		for _, sub := range page.SubcategoryLinks {
			if !d.visited.IsSeen(sub) {
				d.frontier.Push(sub)
			}
		}
		if page.NextPage != "" && !d.visited.IsSeen(page.NextPage) {
			d.frontier.Push(page.NextPage)
		}

		var worklist []string
		for _, articleURL := range page.ArticleLinks {
			if d.articleSeen.MarkIfNew(articleURL) {
				worklist = append(worklist, articleURL)
			}
		}

		done, err := d.drainArticles(ctx, worklist)
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	stats := d.stats.Snapshot()
	d.logger.Info("scrape complete",
		"category", category,
		"pages_fetched", stats["pages_fetched"],
		"pages_failed", stats["pages_failed"],
		"articles_emitted", stats["articles_emitted"],
		"articles_failed", stats["articles_failed"],
		"extraction_warnings", stats["extraction_warnings"],
	)
	return nil
}

// processListing fetches and parses one category listing page.
func (d *Driver) processListing(ctx context.Context, listingURL string) (*parser.CategoryPage, error) {
	req, err := types.NewRequest(listingURL, "category")
	if err != nil {
		return nil, err
	}
	resp, err := d.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	d.stats.PagesFetched++
	return d.categories.Parse(resp)
}

// drainArticles fetches, parses, and emits each pending article. A fetch
// failure drops that article only; an emit failure is fatal (the output
// stream is gone). Returns done=true once the article cap is hit.
func (d *Driver) drainArticles(ctx context.Context, worklist []string) (bool, error) {
	for _, articleURL := range worklist {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		req, err := types.NewRequest(articleURL, "article")
		if err != nil {
			d.stats.ArticlesFailed++
			d.logger.Warn("article skipped", "url", articleURL, "error", err)
			continue
		}

		resp, err := d.fetcher.Fetch(ctx, req)
		if err != nil {
			d.stats.ArticlesFailed++
			d.logger.Warn("article skipped", "url", articleURL, "error", err)
			continue
		}

		result, err := d.articles.Parse(resp)
		if err != nil {
			d.stats.ArticlesFailed++
			d.logger.Warn("article unparseable", "url", articleURL, "error", err)
			continue
		}
		d.stats.ExtractionWarnings += len(result.Warnings)

		// Emission is not gated on completeness: a near-empty record with
		// warnings still goes out.
		if err := d.emitter.Emit(&result.Record); err != nil {
			return false, &types.EmitError{Sink: "jsonl", Err: err}
		}
		d.stats.ArticlesEmitted++

		if d.cfg.Scraper.MaxArticles > 0 && d.stats.ArticlesEmitted >= d.cfg.Scraper.MaxArticles {
			d.logger.Info("article cap reached", "max_articles", d.cfg.Scraper.MaxArticles)
			return true, nil
		}
	}
	return false, nil
}
