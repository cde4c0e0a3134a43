// Package newsfilter scores news items against watchlists and decides
// what is worth posting. The filters are strict: only major announcements
// clear the bar, and routine administrative items are rejected outright.
package newsfilter

import (
	"log"
	"os"

	"github.com/BurntSushi/toml"
)

// Watchlists holds the tickers, keywords, and sources the filters match
// against.
type Watchlists struct {
	Tickers        []string `toml:"tickers"`
	AIKeywords     []string `toml:"ai_keywords"`
	MacroKeywords  []string `toml:"macro_keywords"`
	TrustedSources []string `toml:"trusted_sources"`
}

// DefaultWatchlists returns the built-in watchlist used when no config
// file is present.
func DefaultWatchlists() Watchlists {
	return Watchlists{
		Tickers: []string{"AAPL", "MSFT", "NVDA", "GOOGL", "AMZN", "META", "TSLA"},
		AIKeywords: []string{
			"AI", "artificial intelligence", "LLM", "GPT", "ChatGPT",
			"OpenAI", "Anthropic", "NVIDIA", "GPU", "inference", "training",
		},
		MacroKeywords: []string{
			"CPI", "FOMC", "Fed", "interest rate", "Treasury", "inflation",
		},
		TrustedSources: []string{"reuters.com", "bloomberg.com", "sec.gov"},
	}
}

// LoadWatchlists reads a TOML watchlist file. A missing or malformed file
// falls back to the defaults; a bad watchlist should degrade filtering,
// not stop the news job.
func LoadWatchlists(path string) Watchlists {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("beacon: failed to read watchlists %s: %v", path, err)
		} else {
			log.Printf("beacon: watchlists not found at %s, using defaults", path)
		}
		return DefaultWatchlists()
	}

	var w Watchlists
	if err := toml.Unmarshal(data, &w); err != nil {
		log.Printf("beacon: invalid watchlists %s: %v", path, err)
		return DefaultWatchlists()
	}
	return w
}
