package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/wikiharvest/wikiharvest/internal/config"
	"github.com/wikiharvest/wikiharvest/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 8}))

// --- Fakes ---

// fakeFetcher serves canned HTML by URL and records fetch counts.
type fakeFetcher struct {
	pages      map[string]string
	fail       map[string]bool
	fetchCount map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages:      make(map[string]string),
		fail:       make(map[string]bool),
		fetchCount: make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	u := req.URLString()
	f.fetchCount[u]++
	if f.fail[u] {
		return nil, &types.FetchError{URL: u, StatusCode: 500, Err: errors.New("injected failure"), Retryable: true}
	}
	body, ok := f.pages[u]
	if !ok {
		return nil, &types.FetchError{URL: u, StatusCode: 404, Err: errors.New("no such fixture")}
	}
	return &types.Response{
		Request:     req,
		StatusCode:  200,
		Body:        []byte(body),
		ContentType: "text/html",
		FinalURL:    u,
	}, nil
}

func (f *fakeFetcher) Close() error { return nil }

// fakeEmitter records emitted article records.
type fakeEmitter struct {
	records []*types.ArticleRecord
	emitErr error
}

func (e *fakeEmitter) Emit(record *types.ArticleRecord) error {
	if e.emitErr != nil {
		return e.emitErr
	}
	e.records = append(e.records, record)
	return nil
}

func (e *fakeEmitter) Close() error { return nil }

// --- Fixture builders ---

const base = "https://en.wikinews.org"

func catURL(name string) string { return base + "/wiki/Category:" + name }

func artURL(name string) string { return base + "/wiki/" + name }

// categoryHTML builds a listing page from wiki-relative member hrefs.
func categoryHTML(memberPaths []string, nextPage string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if nextPage != "" {
		fmt.Fprintf(&b, `<a href=%q>next page</a>`, nextPage)
	}
	b.WriteString(`<div class="mw-category"><ul>`)
	for _, p := range memberPaths {
		fmt.Fprintf(&b, `<li><a href=%q>%s</a></li>`, p, p)
	}
	b.WriteString("</ul></div></body></html>")
	return b.String()
}

func articleHTML(title string) string {
	return `<html><body><h1 id="firstHeading">` + title + `</h1>
	<div id="mw-content-text"><div class="mw-parser-output">
	<p><span class="published"><span id="publishDate" title="2020-01-01">January 1, 2020</span></span></p>
	<p>Body of ` + title + `.</p>
	</div></div>
	<div id="catlinks"><div id="mw-normal-catlinks"><ul>
	<li><a href="/wiki/Category:Published">Published</a></li>
	</ul></div></div>
	</body></html>`
}

func newDriver(f Fetcher, e Emitter) *Driver {
	cfg := config.DefaultConfig()
	return New(cfg, testLogger, f, e)
}

func emittedURLs(e *fakeEmitter) []string {
	urls := make([]string, 0, len(e.records))
	for _, r := range e.records {
		urls = append(urls, r.URL)
	}
	return urls
}

// --- Driver tests ---

func TestDriverSinglePageCategory(t *testing.T) {
	f := newFakeFetcher()
	f.pages[catURL("Health")] = categoryHTML([]string{"/wiki/Story_one", "/wiki/Story_two"}, "")
	f.pages[artURL("Story_one")] = articleHTML("Story one")
	f.pages[artURL("Story_two")] = articleHTML("Story two")
	e := &fakeEmitter{}

	d := newDriver(f, e)
	if err := d.Run(context.Background(), "Health"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(e.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(e.records))
	}
	if d.Stats().ArticlesEmitted != 2 {
		t.Errorf("expected 2 emitted in stats, got %d", d.Stats().ArticlesEmitted)
	}
}

func TestDriverPaginationFollowed(t *testing.T) {
	page2 := "/w/index.php?title=Category:Health&pagefrom=Story_two"
	f := newFakeFetcher()
	f.pages[catURL("Health")] = categoryHTML([]string{"/wiki/Story_one"}, page2)
	f.pages[base+page2] = categoryHTML([]string{"/wiki/Story_two"}, "")
	f.pages[artURL("Story_one")] = articleHTML("Story one")
	f.pages[artURL("Story_two")] = articleHTML("Story two")
	e := &fakeEmitter{}

	if err := newDriver(f, e).Run(context.Background(), "Health"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(e.records) != 2 {
		t.Fatalf("expected articles from both pages, got %v", emittedURLs(e))
	}
}

func TestDriverDiamondEmitsOnce(t *testing.T) {
	// Seed lists two sub-categories; both list the same grandchild
	// category, which holds one article. The article must be emitted
	// exactly once and the shared category fetched exactly once.
	f := newFakeFetcher()
	f.pages[catURL("Seed")] = categoryHTML([]string{"/wiki/Category:Left", "/wiki/Category:Right"}, "")
	f.pages[catURL("Left")] = categoryHTML([]string{"/wiki/Category:Shared", "/wiki/Common_story"}, "")
	f.pages[catURL("Right")] = categoryHTML([]string{"/wiki/Category:Shared", "/wiki/Common_story"}, "")
	f.pages[catURL("Shared")] = categoryHTML([]string{"/wiki/Common_story"}, "")
	f.pages[artURL("Common_story")] = articleHTML("Common story")
	e := &fakeEmitter{}

	if err := newDriver(f, e).Run(context.Background(), "Seed"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(e.records) != 1 {
		t.Fatalf("expected exactly 1 record, got %d: %v", len(e.records), emittedURLs(e))
	}
	if got := f.fetchCount[catURL("Shared")]; got != 1 {
		t.Errorf("shared category fetched %d times, want 1", got)
	}
	if got := f.fetchCount[artURL("Common_story")]; got != 1 {
		t.Errorf("common article fetched %d times, want 1", got)
	}
}

func TestDriverCategoryCycleTerminates(t *testing.T) {
	f := newFakeFetcher()
	f.pages[catURL("A")] = categoryHTML([]string{"/wiki/Category:B", "/wiki/A_story"}, "")
	f.pages[catURL("B")] = categoryHTML([]string{"/wiki/Category:A", "/wiki/B_story"}, "")
	f.pages[artURL("A_story")] = articleHTML("A story")
	f.pages[artURL("B_story")] = articleHTML("B story")
	e := &fakeEmitter{}

	if err := newDriver(f, e).Run(context.Background(), "A"); err != nil {
		t.Fatalf("cycle must terminate cleanly: %v", err)
	}

	if got := f.fetchCount[catURL("A")]; got != 1 {
		t.Errorf("category A fetched %d times, want 1", got)
	}
	if got := f.fetchCount[catURL("B")]; got != 1 {
		t.Errorf("category B fetched %d times, want 1", got)
	}
	if len(e.records) != 2 {
		t.Errorf("expected 2 records, got %d", len(e.records))
	}
}

func TestDriverArticleFetchFailureSkipsOnlyThatArticle(t *testing.T) {
	f := newFakeFetcher()
	var members []string
	for i := 0; i < 10; i++ {
		name := fmt.Sprintf("Story_%d", i)
		members = append(members, "/wiki/"+name)
		f.pages[artURL(name)] = articleHTML(name)
	}
	f.pages[catURL("Flaky")] = categoryHTML(members, "")
	f.fail[artURL("Story_4")] = true
	e := &fakeEmitter{}

	d := newDriver(f, e)
	if err := d.Run(context.Background(), "Flaky"); err != nil {
		t.Fatalf("one failed article must not fail the run: %v", err)
	}

	if len(e.records) != 9 {
		t.Fatalf("expected 9 records, got %d", len(e.records))
	}
	for _, u := range emittedURLs(e) {
		if u == artURL("Story_4") {
			t.Error("failed article must not be emitted")
		}
	}
	if d.Stats().ArticlesFailed != 1 {
		t.Errorf("expected 1 failed article in stats, got %d", d.Stats().ArticlesFailed)
	}
}

func TestDriverSeedFetchFailureIsFatal(t *testing.T) {
	f := newFakeFetcher()
	f.fail[catURL("Gone")] = true
	e := &fakeEmitter{}

	err := newDriver(f, e).Run(context.Background(), "Gone")
	if err == nil {
		t.Fatal("expected error when the seed category cannot be fetched")
	}
	var fetchErr *types.FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("expected a FetchError in the chain, got %v", err)
	}
}

func TestDriverSubCategoryFetchFailureIsNotFatal(t *testing.T) {
	f := newFakeFetcher()
	f.pages[catURL("Seed")] = categoryHTML([]string{"/wiki/Category:Broken", "/wiki/Good_story"}, "")
	f.fail[catURL("Broken")] = true
	f.pages[artURL("Good_story")] = articleHTML("Good story")
	e := &fakeEmitter{}

	d := newDriver(f, e)
	if err := d.Run(context.Background(), "Seed"); err != nil {
		t.Fatalf("a failed sub-category must not fail the run: %v", err)
	}
	if len(e.records) != 1 {
		t.Errorf("expected 1 record, got %d", len(e.records))
	}
	if d.Stats().PagesFailed != 1 {
		t.Errorf("expected 1 failed page in stats, got %d", d.Stats().PagesFailed)
	}
}

func TestDriverEmitsPartialRecords(t *testing.T) {
	f := newFakeFetcher()
	f.pages[catURL("Thin")] = categoryHTML([]string{"/wiki/Bare_page"}, "")
	f.pages[artURL("Bare_page")] = "<html><body></body></html>"
	e := &fakeEmitter{}

	d := newDriver(f, e)
	if err := d.Run(context.Background(), "Thin"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(e.records) != 1 {
		t.Fatalf("a near-empty record must still be emitted, got %d records", len(e.records))
	}
	if d.Stats().ExtractionWarnings == 0 {
		t.Error("expected extraction warnings for the bare page")
	}
}

func TestDriverEmitFailureIsFatal(t *testing.T) {
	f := newFakeFetcher()
	f.pages[catURL("Out")] = categoryHTML([]string{"/wiki/Story"}, "")
	f.pages[artURL("Story")] = articleHTML("Story")
	e := &fakeEmitter{emitErr: errors.New("pipe closed")}

	err := newDriver(f, e).Run(context.Background(), "Out")
	if err == nil {
		t.Fatal("expected a broken output stream to abort the run")
	}
	var emitErr *types.EmitError
	if !errors.As(err, &emitErr) {
		t.Errorf("expected an EmitError in the chain, got %v", err)
	}
}

func TestDriverMaxArticlesCap(t *testing.T) {
	f := newFakeFetcher()
	var members []string
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("Story_%d", i)
		members = append(members, "/wiki/"+name)
		f.pages[artURL(name)] = articleHTML(name)
	}
	f.pages[catURL("Capped")] = categoryHTML(members, "")
	e := &fakeEmitter{}

	cfg := config.DefaultConfig()
	cfg.Scraper.MaxArticles = 3
	d := New(cfg, testLogger, f, e)
	if err := d.Run(context.Background(), "Capped"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(e.records) != 3 {
		t.Errorf("expected 3 records under cap, got %d", len(e.records))
	}
}

func TestDriverContextCancellation(t *testing.T) {
	f := newFakeFetcher()
	f.pages[catURL("Big")] = categoryHTML([]string{"/wiki/Story"}, "")
	f.pages[artURL("Story")] = articleHTML("Story")
	e := &fakeEmitter{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := newDriver(f, e).Run(ctx, "Big"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// --- Frontier tests ---

func TestFrontierFIFO(t *testing.T) {
	fr := NewFrontier()
	fr.Push("https://example.org/a")
	fr.Push("https://example.org/b")

	if fr.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", fr.Len())
	}
	if u, ok := fr.Pop(); !ok || u != "https://example.org/a" {
		t.Errorf("expected first pushed URL, got %q (ok=%v)", u, ok)
	}
	if u, ok := fr.Pop(); !ok || u != "https://example.org/b" {
		t.Errorf("expected second pushed URL, got %q (ok=%v)", u, ok)
	}
	if !fr.IsEmpty() {
		t.Error("expected empty frontier")
	}
}

func TestFrontierPopEmpty(t *testing.T) {
	fr := NewFrontier()
	if _, ok := fr.Pop(); ok {
		t.Error("expected ok=false from empty frontier")
	}
}

// --- Deduplicator tests ---

func TestDeduplicatorMarkIfNew(t *testing.T) {
	d := NewDeduplicator(8)
	if !d.MarkIfNew("https://en.wikinews.org/wiki/Story") {
		t.Error("first mark should be new")
	}
	if d.MarkIfNew("https://en.wikinews.org/wiki/Story") {
		t.Error("second mark should not be new")
	}
	if d.Count() != 1 {
		t.Errorf("expected 1 unique URL, got %d", d.Count())
	}
}

func TestDeduplicatorCanonicalEquivalence(t *testing.T) {
	d := NewDeduplicator(8)
	d.MarkSeen("HTTPS://EN.Wikinews.ORG:443/wiki/Story#Sources")
	if !d.IsSeen("https://en.wikinews.org/wiki/Story") {
		t.Error("expected canonically equal URLs to collide")
	}
}

func TestCanonicalizeURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://en.wikinews.org/wiki/Story#frag", "https://en.wikinews.org/wiki/Story"},
		{"HTTP://Example.COM:80/path/", "http://example.com/path"},
		{"https://example.com", "https://example.com/"},
		{"https://example.com/x?b=2&a=1", "https://example.com/x?a=1&b=2"},
	}
	for _, tc := range cases {
		if got := CanonicalizeURL(tc.in); got != tc.want {
			t.Errorf("CanonicalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
