package newsfilter

import (
	"sort"
	"strings"

	"github.com/mhollis/beacon/internal/feeds"
)

// DefaultMinScore is the posting threshold for impact scores.
const DefaultMinScore = 50

// Phrases marking routine administrative items. Anything matching one is
// noise and scores zero no matter what else the text contains.
var noiseKeywords = []string{
	"enforcement action", "enforcement actions", "terminates enforcement",
	"application", "approval", "announces approval",
	"staff manual", "supervision", "supervising",
	"former employee", "issues enforcement",
	"pricing", "payment services", "check services", "debit card",
	"reappointment", "reserve bank president", "first vice president",
	"public input", "request comment", "requests comment",
	"biennial report", "request public input",
	"bank holding company", "eligible financial institutions",
	"withdraws", "policy statement regarding", "responsible innovation",
	"supervised banks", "facilitat",
}

var actionWords = []string{
	"launches", "announces", "releases", "acquires", "reports", "warns",
}

// Words that mark a story as a major announcement rather than commentary.
var majorActionWords = []string{
	"launches", "announces", "releases", "unveils", "introduces",
	"acquires", "merger", "ipo", "earnings", "quarterly results",
	"beats", "misses", "guidance", "layoffs", "cuts jobs",
	"breakthrough", "partnership", "deal", "billion", "million",
}

// IsNoise reports whether text contains any routine-administrative phrase.
func IsNoise(text string) bool {
	lower := strings.ToLower(text)
	for _, noise := range noiseKeywords {
		if strings.Contains(lower, noise) {
			return true
		}
	}
	return false
}

// ExtractTickers returns the watchlist tickers mentioned in text, in
// watchlist order. A ticker counts only when it appears delimited the way
// financial text writes symbols, so "META" in "metadata" does not match.
func ExtractTickers(text string, watchlist []string) []string {
	upper := strings.ToUpper(text)
	var found []string

	for _, ticker := range watchlist {
		t := strings.ToUpper(ticker)
		patterns := []string{
			"$" + t,
			"(" + t + ")",
			" " + t + " ",
			" " + t + ".",
			" " + t + ",",
			" " + t + "'",
		}
		for _, p := range patterns {
			if strings.Contains(upper, p) || strings.HasPrefix(upper, t+" ") {
				found = append(found, ticker)
				break
			}
		}
	}
	return found
}

// MatchKeywords returns the keywords present in text, case-insensitively.
func MatchKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// ImpactScore scores an item 0-100. Noise scores exactly 0. Everything
// else starts at 30 and accrues bonuses for tickers, keywords, category,
// trusted sources, and action words, clamped to 100.
func ImpactScore(item feeds.NewsItem, w Watchlists) int {
	combined := item.Combined()
	if IsNoise(combined) {
		return 0
	}

	score := 30

	score += len(ExtractTickers(combined, w.Tickers)) * 15

	if n := len(MatchKeywords(combined, w.AIKeywords)) * 10; n > 30 {
		score += 30
	} else {
		score += n
	}
	if n := len(MatchKeywords(combined, w.MacroKeywords)) * 10; n > 30 {
		score += 30
	} else {
		score += n
	}

	switch item.Category {
	case feeds.CategoryEarnings:
		score += 15
	case feeds.CategoryMacro, feeds.CategoryAI:
		score += 10
	}

	source := strings.ToLower(item.Source)
	for _, trusted := range w.TrustedSources {
		if strings.Contains(source, trusted) {
			score += 10
			break
		}
	}

	lower := strings.ToLower(combined)
	for _, word := range actionWords {
		if strings.Contains(lower, word) {
			score += 10
			break
		}
	}

	if score > 100 {
		return 100
	}
	return score
}

func hasAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// ShouldPost decides whether an item clears the posting bar and stamps
// its impact score. Each category has its own gate on top of the minimum
// score.
func ShouldPost(item *feeds.NewsItem, w Watchlists, minScore int) bool {
	score := ImpactScore(*item, w)
	item.ImpactScore = score

	if score < minScore {
		return false
	}

	combined := item.Combined()
	lower := strings.ToLower(combined)
	hasMajorAction := hasAny(lower, majorActionWords)

	switch item.Category {
	case feeds.CategoryEarnings:
		tickers := ExtractTickers(combined, w.Tickers)
		earningsWords := []string{"earnings", "revenue", "eps", "quarterly", "guidance", "beats", "misses"}
		return len(tickers) > 0 && hasAny(lower, earningsWords)
	case feeds.CategoryAI:
		return len(MatchKeywords(combined, w.AIKeywords)) > 0 && hasMajorAction && score >= 60
	case feeds.CategoryMacro:
		return len(MatchKeywords(combined, w.MacroKeywords)) > 0 && score >= 55
	default:
		return score >= 70 && hasMajorAction
	}
}

// Filter returns the items worth posting, tickers stamped, sorted by
// impact score descending. Order among equal scores is input order.
func Filter(items []feeds.NewsItem, w Watchlists, minScore int) []feeds.NewsItem {
	var kept []feeds.NewsItem
	for _, item := range items {
		if ShouldPost(&item, w, minScore) {
			item.Tickers = ExtractTickers(item.Combined(), w.Tickers)
			kept = append(kept, item)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ImpactScore > kept[j].ImpactScore
	})
	return kept
}

// Categorize routes an item to a posting channel. Explicit categories win;
// otherwise keyword matches, then ticker mentions, then the catch-all.
func Categorize(item feeds.NewsItem, w Watchlists) string {
	switch item.Category {
	case feeds.CategoryEarnings, feeds.CategoryMacro, feeds.CategoryAI:
		return item.Category
	}

	combined := item.Combined()
	if len(MatchKeywords(combined, w.MacroKeywords)) > 0 {
		return feeds.CategoryMacro
	}
	if len(MatchKeywords(combined, w.AIKeywords)) > 0 {
		return feeds.CategoryAI
	}
	if len(item.Tickers) > 0 || len(ExtractTickers(combined, w.Tickers)) > 0 {
		return feeds.CategoryEarnings
	}
	return "market_alerts"
}
