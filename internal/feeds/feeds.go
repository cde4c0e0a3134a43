// Package feeds fetches RSS and Atom sources and normalizes entries into
// NewsItems. Feed failures are isolated per source so one dead endpoint
// never blanks a whole category.
package feeds

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/mhollis/beacon/internal/htmlutil"
)

// News categories. Items carry the category of the feed they came from
// until downstream filtering reassigns them.
const (
	CategoryAI       = "ai"
	CategoryMacro    = "macro"
	CategoryEarnings = "earnings"
	CategoryGeneral  = "general"
)

const summaryLimit = 500

// NewsItem is a normalized feed entry.
type NewsItem struct {
	ID          string   `json:"id"`
	Source      string   `json:"source"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"published_at,omitempty"`
	Tickers     []string `json:"tickers,omitempty"`
	ImpactScore int      `json:"impact_score"`
	Tags        []string `json:"tags,omitempty"`
}

// NewsID derives a stable id from the entry URL and title so the same
// story is deduplicated across runs even when feeds re-emit it.
func NewsID(url, title string) string {
	sum := sha256.Sum256([]byte(url + "|" + title))
	return hex.EncodeToString(sum[:])[:16]
}

// Source is a single feed endpoint.
type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// DefaultSources returns the built-in feed catalog keyed by category.
func DefaultSources() map[string][]Source {
	return map[string][]Source{
		CategoryAI: {
			{Name: "Google AI Blog", URL: "https://blog.google/technology/ai/rss/", Category: CategoryAI},
			{Name: "OpenAI Blog", URL: "https://openai.com/blog/rss.xml", Category: CategoryAI},
			{Name: "TechCrunch AI", URL: "https://techcrunch.com/category/artificial-intelligence/feed/", Category: CategoryAI},
			{Name: "Ars Technica AI", URL: "https://arstechnica.com/tag/artificial-intelligence/feed/", Category: CategoryAI},
		},
		CategoryMacro: {
			{Name: "Fed Reserve News", URL: "https://www.federalreserve.gov/feeds/press_all.xml", Category: CategoryMacro},
			{Name: "Reuters Business", URL: "https://www.reutersagency.com/feed/?best-sectors=business-finance&post_type=best", Category: CategoryMacro},
		},
		CategoryEarnings: {
			{Name: "SEC EDGAR Filings", URL: "https://www.sec.gov/cgi-bin/browse-edgar?action=getcurrent&type=8-K&company=&dateb=&owner=include&count=40&output=atom", Category: CategoryEarnings},
		},
		CategoryGeneral: {
			{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/news/rssindex", Category: CategoryGeneral},
		},
	}
}

// Fetcher downloads and parses feeds.
type Fetcher struct {
	parser  *gofeed.Parser
	sources map[string][]Source
	timeout time.Duration
}

// NewFetcher creates a fetcher over the given catalog. A nil catalog uses
// the built-in sources.
func NewFetcher(sources map[string][]Source) *Fetcher {
	if sources == nil {
		sources = DefaultSources()
	}
	return &Fetcher{
		parser:  gofeed.NewParser(),
		sources: sources,
		timeout: 30 * time.Second,
	}
}

// FetchFeed fetches one feed and normalizes its entries. Errors are logged
// and yield an empty slice; a broken feed is not worth failing a run over.
func (f *Fetcher) FetchFeed(ctx context.Context, src Source) []NewsItem {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		log.Printf("beacon: feed %s failed: %v", src.Name, err)
		return nil
	}

	items := make([]NewsItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if item, ok := normalizeEntry(entry, src); ok {
			items = append(items, item)
		}
	}
	log.Printf("beacon: fetched %d items from %s", len(items), src.Name)
	return items
}

// normalizeEntry converts a parsed entry into a NewsItem. Entries missing
// a title or link are skipped.
func normalizeEntry(entry *gofeed.Item, src Source) (NewsItem, bool) {
	title := htmlutil.Strip(entry.Title)
	if title == "" || entry.Link == "" {
		return NewsItem{}, false
	}

	summary := entry.Description
	if summary == "" {
		summary = entry.Content
	}
	summary = htmlutil.Snippet(summary, summaryLimit)

	published := ""
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed.UTC().Format(time.RFC3339)
	} else if entry.Published != "" {
		published = entry.Published
	}

	return NewsItem{
		ID:          NewsID(entry.Link, title),
		Source:      src.Name,
		Category:    src.Category,
		Title:       title,
		Summary:     summary,
		URL:         entry.Link,
		PublishedAt: published,
		ImpactScore: 50,
	}, true
}

// FetchCategory fetches every feed in a category concurrently and returns
// the combined items ordered by source name so output is deterministic.
func (f *Fetcher) FetchCategory(ctx context.Context, category string) []NewsItem {
	sources := f.sources[category]
	if len(sources) == 0 {
		return nil
	}

	var (
		mu  sync.Mutex
		all []NewsItem
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		g.Go(func() error {
			items := f.FetchFeed(ctx, src)
			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	sort.SliceStable(all, func(i, j int) bool { return all[i].Source < all[j].Source })
	return all
}

// FetchAll fetches every configured category.
func (f *Fetcher) FetchAll(ctx context.Context) map[string][]NewsItem {
	results := make(map[string][]NewsItem, len(f.sources))
	for category := range f.sources {
		results[category] = f.FetchCategory(ctx, category)
	}
	return results
}

// Combined is the text the filters match against.
func (n NewsItem) Combined() string {
	return fmt.Sprintf("%s %s", n.Title, n.Summary)
}
