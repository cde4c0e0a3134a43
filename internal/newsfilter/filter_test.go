package newsfilter

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mhollis/beacon/internal/feeds"
)

func TestIsNoise(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"Fed enforcement action terminates", true},
		{"Board requests comment on staff manual", true},
		{"Changes to debit card pricing announced", true},
		{"Federal Reserve facilitates new program", true}, // "facilitat" prefix
		{"NVIDIA launches new GPU", false},
		{"Apple reports record revenue", false},
	}
	for _, tc := range cases {
		if got := IsNoise(tc.text); got != tc.want {
			t.Errorf("IsNoise(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestNoiseScoresZero(t *testing.T) {
	item := feeds.NewsItem{
		Title:    "Fed enforcement action terminates",
		Category: feeds.CategoryMacro,
		Source:   "reuters.com",
	}
	w := DefaultWatchlists()
	if score := ImpactScore(item, w); score != 0 {
		t.Errorf("noise item scored %d, want exactly 0", score)
	}
	if ShouldPost(&item, w, DefaultMinScore) {
		t.Error("noise item must never be posted")
	}
	if item.ImpactScore != 0 {
		t.Errorf("stamped score = %d, want 0", item.ImpactScore)
	}
}

func TestExtractTickers(t *testing.T) {
	watchlist := []string{"AAPL", "META", "TSLA", "NVDA"}
	cases := []struct {
		text string
		want []string
	}{
		{"$AAPL rallies after hours", []string{"AAPL"}},
		{"NVIDIA (NVDA) beats estimates", []string{"NVDA"}},
		{"TSLA shares jump", []string{"TSLA"}},
		{"Shares of AAPL, up today", []string{"AAPL"}},
		{"The metadata problem in databases", nil},
		{"No symbols here", nil},
	}
	for _, tc := range cases {
		got := ExtractTickers(tc.text, watchlist)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ExtractTickers(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestMatchKeywords(t *testing.T) {
	got := MatchKeywords("OpenAI releases a new LLM", []string{"LLM", "GPU", "OpenAI"})
	want := []string{"LLM", "OpenAI"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MatchKeywords = %v, want %v", got, want)
	}
}

func TestImpactScoreAccrual(t *testing.T) {
	w := DefaultWatchlists()

	// Base only: no tickers, no keywords, general category, plain source,
	// one action word.
	plain := feeds.NewsItem{
		Title:    "Company announces new product",
		Category: feeds.CategoryGeneral,
		Source:   "Yahoo Finance",
	}
	if score := ImpactScore(plain, w); score != 40 {
		t.Errorf("plain item score = %d, want 40 (base 30 + action 10)", score)
	}

	// Everything at once clamps to 100.
	loaded := feeds.NewsItem{
		Title:    "NVIDIA (NVDA) launches new GPU for AI training",
		Summary:  "OpenAI partnership announced",
		Category: feeds.CategoryAI,
		Source:   "reuters.com",
	}
	if score := ImpactScore(loaded, w); score != 100 {
		t.Errorf("loaded item score = %d, want 100", score)
	}
}

func TestImpactScoreKeywordCap(t *testing.T) {
	w := Watchlists{AIKeywords: []string{"AI", "GPU", "LLM", "GPT", "inference"}}
	item := feeds.NewsItem{
		Title:    "AI GPU LLM GPT inference",
		Category: feeds.CategoryGeneral,
	}
	// 5 matches would be +50 uncapped; the cap holds it to +30.
	if score := ImpactScore(item, w); score != 60 {
		t.Errorf("score = %d, want 60 (base 30 + capped 30)", score)
	}
}

func TestShouldPostEarningsGate(t *testing.T) {
	w := DefaultWatchlists()
	item := feeds.NewsItem{
		Title:    "AAPL reports quarterly earnings beat",
		Category: feeds.CategoryEarnings,
		Source:   "sec.gov",
	}
	if !ShouldPost(&item, w, DefaultMinScore) {
		t.Errorf("watchlist earnings story rejected, score = %d", item.ImpactScore)
	}

	// Same story about an off-watchlist company.
	other := feeds.NewsItem{
		Title:    "ACME reports quarterly earnings beat on strong revenue from billion dollar deal",
		Category: feeds.CategoryEarnings,
		Source:   "sec.gov",
	}
	if ShouldPost(&other, w, DefaultMinScore) {
		t.Error("earnings story without a watchlist ticker should not post")
	}
}

func TestShouldPostAIGate(t *testing.T) {
	w := DefaultWatchlists()

	item := feeds.NewsItem{
		Title:    "OpenAI launches new GPT model",
		Category: feeds.CategoryAI,
	}
	if !ShouldPost(&item, w, DefaultMinScore) {
		t.Errorf("major AI launch rejected, score = %d", item.ImpactScore)
	}

	// Keyword match but no major action word.
	commentary := feeds.NewsItem{
		Title:    "Opinion: what AI means for GPU makers and LLM startups",
		Category: feeds.CategoryAI,
	}
	if ShouldPost(&commentary, w, DefaultMinScore) {
		t.Error("AI commentary without a major action should not post")
	}
}

func TestShouldPostMacroGate(t *testing.T) {
	w := DefaultWatchlists()
	item := feeds.NewsItem{
		Title:    "CPI inflation data release",
		Category: feeds.CategoryMacro,
	}
	if !ShouldPost(&item, w, DefaultMinScore) {
		t.Errorf("macro data release rejected, score = %d", item.ImpactScore)
	}
}

func TestShouldPostGeneralGate(t *testing.T) {
	w := DefaultWatchlists()

	// Scores 40: below both the minimum and the general threshold.
	item := feeds.NewsItem{
		Title:    "Company announces new product",
		Category: feeds.CategoryGeneral,
		Source:   "Yahoo Finance",
	}
	if ShouldPost(&item, w, DefaultMinScore) {
		t.Error("low-scoring general story should not post")
	}
}

func TestFilterSortsByImpact(t *testing.T) {
	w := DefaultWatchlists()
	items := []feeds.NewsItem{
		{Title: "CPI inflation data release", Category: feeds.CategoryMacro},
		{Title: "NVIDIA (NVDA) launches new GPU for AI training", Summary: "OpenAI partnership announced", Category: feeds.CategoryAI, Source: "reuters.com"},
		{Title: "Fed enforcement action terminates", Category: feeds.CategoryMacro},
	}

	kept := Filter(items, w, DefaultMinScore)
	if len(kept) != 2 {
		t.Fatalf("kept %d items, want 2", len(kept))
	}
	if kept[0].ImpactScore < kept[1].ImpactScore {
		t.Errorf("not sorted by impact: %d then %d", kept[0].ImpactScore, kept[1].ImpactScore)
	}
	if kept[0].Tickers == nil {
		t.Error("tickers not stamped on filtered item")
	}
}

func TestCategorize(t *testing.T) {
	w := DefaultWatchlists()
	cases := []struct {
		item feeds.NewsItem
		want string
	}{
		{feeds.NewsItem{Category: feeds.CategoryEarnings}, "earnings"},
		{feeds.NewsItem{Category: feeds.CategoryMacro}, "macro"},
		{feeds.NewsItem{Category: feeds.CategoryAI}, "ai"},
		{feeds.NewsItem{Category: feeds.CategoryGeneral, Title: "Fed weighs interest rate path"}, "macro"},
		{feeds.NewsItem{Category: feeds.CategoryGeneral, Title: "New LLM benchmark released"}, "ai"},
		{feeds.NewsItem{Category: feeds.CategoryGeneral, Title: "$AAPL hits all-time high"}, "earnings"},
		{feeds.NewsItem{Category: feeds.CategoryGeneral, Title: "Oil prices steady"}, "market_alerts"},
	}
	for _, tc := range cases {
		if got := Categorize(tc.item, w); got != tc.want {
			t.Errorf("Categorize(%q) = %q, want %q", tc.item.Title, got, tc.want)
		}
	}
}

func TestLoadWatchlistsFromTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlists.toml")
	content := `
tickers = ["AMD", "INTC"]
ai_keywords = ["robotics"]
macro_keywords = ["tariff"]
trusted_sources = ["ft.com"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	w := LoadWatchlists(path)
	if !reflect.DeepEqual(w.Tickers, []string{"AMD", "INTC"}) {
		t.Errorf("tickers = %v", w.Tickers)
	}
	if !reflect.DeepEqual(w.TrustedSources, []string{"ft.com"}) {
		t.Errorf("trusted sources = %v", w.TrustedSources)
	}
}

func TestLoadWatchlistsMissingUsesDefaults(t *testing.T) {
	w := LoadWatchlists(filepath.Join(t.TempDir(), "nope.toml"))
	if !reflect.DeepEqual(w, DefaultWatchlists()) {
		t.Errorf("missing file should yield defaults, got %+v", w)
	}
}

func TestLoadWatchlistsMalformedUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlists.toml")
	if err := os.WriteFile(path, []byte("tickers = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := LoadWatchlists(path)
	if !reflect.DeepEqual(w, DefaultWatchlists()) {
		t.Errorf("malformed file should yield defaults, got %+v", w)
	}
}
