package newsfilter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mhollis/beacon/internal/feeds"
)

var earningsKeywords = []string{
	"earnings", "quarterly results", "Q1", "Q2", "Q3", "Q4",
	"revenue", "EPS", "guidance", "outlook", "reports",
	"8-K", "10-Q", "10-K", "financial results",
}

// IsEarningsRelated reports whether a story is about earnings.
func IsEarningsRelated(title, summary string) bool {
	combined := strings.ToLower(title + " " + summary)
	for _, kw := range earningsKeywords {
		if strings.Contains(combined, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// DetectSurprise classifies an earnings story as "beat", "miss", or "".
// A story mentioning both directions is ambiguous and stays unclassified.
func DetectSurprise(title, summary string) string {
	combined := strings.ToLower(title + " " + summary)

	beat := hasAny(combined, []string{"beats", "exceeds", "surpasses", "better than expected", "tops"})
	miss := hasAny(combined, []string{"misses", "falls short", "worse than expected", "below"})

	switch {
	case beat && !miss:
		return "beat"
	case miss && !beat:
		return "miss"
	}
	return ""
}

// EarningsMetrics is per-share and revenue detail parsed out of a story.
type EarningsMetrics struct {
	EPS             float64
	HasEPS          bool
	RevenueBillions float64
	RevenueMillions float64
}

var epsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$(\d+\.?\d*)\s*(?:per share|eps)`),
	regexp.MustCompile(`eps\s*(?:of\s*)?\$(\d+\.?\d*)`),
	regexp.MustCompile(`earnings?\s*of\s*\$(\d+\.?\d*)\s*per share`),
}

var revenuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$(\d+\.?\d*)\s*(b|m|billion|million)\s*(?:in\s*)?revenue`),
	regexp.MustCompile(`revenue\s*(?:of\s*)?\$(\d+\.?\d*)\s*(b|m|billion|million)`),
}

// ExtractEarningsMetrics pulls EPS and revenue figures from text.
func ExtractEarningsMetrics(text string) EarningsMetrics {
	lower := strings.ToLower(text)
	var metrics EarningsMetrics

	for _, p := range epsPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			if v, ok := parseFloat(m[1]); ok {
				metrics.EPS = v
				metrics.HasEPS = true
			}
			break
		}
	}

	for _, p := range revenuePatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			v, ok := parseFloat(m[1])
			if !ok {
				break
			}
			switch m[2] {
			case "b", "billion":
				metrics.RevenueBillions = v
			default:
				metrics.RevenueMillions = v
			}
			break
		}
	}
	return metrics
}

// EarningsItem is a story confirmed as watchlist-relevant earnings news.
type EarningsItem struct {
	feeds.NewsItem
	Surprise string // "beat", "miss", or ""
	Metrics  EarningsMetrics
}

// DetectEarningsItems returns earnings stories that mention at least one
// watchlist ticker, enriched with surprise direction and parsed metrics.
func DetectEarningsItems(items []feeds.NewsItem, tickers []string) []EarningsItem {
	var out []EarningsItem
	for _, item := range items {
		if !IsEarningsRelated(item.Title, item.Summary) {
			continue
		}

		combined := item.Combined()
		upper := strings.ToUpper(combined)
		var mentioned []string
		for _, t := range tickers {
			tu := strings.ToUpper(t)
			if strings.Contains(upper, tu) || strings.Contains(upper, "$"+tu) {
				mentioned = append(mentioned, tu)
			}
		}
		if len(mentioned) == 0 {
			continue
		}

		item.Tickers = mentioned
		item.Category = feeds.CategoryEarnings
		out = append(out, EarningsItem{
			NewsItem: item,
			Surprise: DetectSurprise(item.Title, item.Summary),
			Metrics:  ExtractEarningsMetrics(combined),
		})
	}
	return out
}

// Summary renders the headline block for an earnings post.
func (e EarningsItem) Summary() string {
	tickers := "Company"
	if len(e.Tickers) > 0 {
		tickers = strings.Join(e.Tickers, ", ")
	}

	parts := []string{fmt.Sprintf("**%s** earnings:", tickers)}
	switch e.Surprise {
	case "beat":
		parts = append(parts, "📈 *Beat expectations*")
	case "miss":
		parts = append(parts, "📉 *Missed expectations*")
	}
	if e.Metrics.HasEPS {
		parts = append(parts, fmt.Sprintf("• EPS: $%.2f", e.Metrics.EPS))
	}
	if e.Metrics.RevenueBillions > 0 {
		parts = append(parts, fmt.Sprintf("• Revenue: $%.1fB", e.Metrics.RevenueBillions))
	} else if e.Metrics.RevenueMillions > 0 {
		parts = append(parts, fmt.Sprintf("• Revenue: $%.0fM", e.Metrics.RevenueMillions))
	}
	return strings.Join(parts, "\n")
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}
