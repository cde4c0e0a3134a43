package newsfilter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mhollis/beacon/internal/feeds"
)

// MacroEvent describes one class of high-impact economic announcement.
// Primary keywords flag the topic; a required keyword must also appear,
// filtering vague mentions down to actual releases and decisions.
type MacroEvent struct {
	Keywords         []string
	RequiredKeywords []string
	Emoji            string
	Importance       string
}

// macroEvents is ordered: the first matching event type wins.
var macroEventOrder = []string{"FOMC", "CPI", "PCE", "JOBS", "GDP", "FED_RATE"}

var macroEvents = map[string]MacroEvent{
	"FOMC": {
		Keywords:         []string{"fomc", "federal open market", "rate decision", "interest rate decision"},
		RequiredKeywords: []string{"rate", "decision", "projections", "statement"},
		Emoji:            "🏦",
		Importance:       "high",
	},
	"CPI": {
		Keywords:         []string{"cpi", "consumer price index", "inflation"},
		RequiredKeywords: []string{"report", "data", "release", "rose", "fell", "percent"},
		Emoji:            "📊",
		Importance:       "high",
	},
	"PCE": {
		Keywords:         []string{"pce", "personal consumption expenditures"},
		RequiredKeywords: []string{"report", "data", "release", "rose", "fell", "percent"},
		Emoji:            "📊",
		Importance:       "high",
	},
	"JOBS": {
		Keywords:         []string{"nonfarm payroll", "jobs report", "employment report"},
		RequiredKeywords: []string{"added", "jobs", "unemployment", "report"},
		Emoji:            "👷",
		Importance:       "high",
	},
	"GDP": {
		Keywords:         []string{"gdp", "gross domestic product"},
		RequiredKeywords: []string{"growth", "percent", "quarter", "annual"},
		Emoji:            "📈",
		Importance:       "high",
	},
	"FED_RATE": {
		Keywords:         []string{"fed", "federal reserve"},
		RequiredKeywords: []string{"rate cut", "rate hike", "basis points", "bps"},
		Emoji:            "🏦",
		Importance:       "high",
	},
}

// DetectMacroEventType classifies a story as a major macro announcement,
// or returns "" for everything else. Noise is rejected first.
func DetectMacroEventType(title, summary string) string {
	combined := strings.ToLower(title + " " + summary)

	if IsNoise(combined) {
		return ""
	}

	for _, name := range macroEventOrder {
		event := macroEvents[name]
		if hasAny(combined, event.Keywords) && hasAny(combined, event.RequiredKeywords) {
			return name
		}
	}
	return ""
}

// IsMacroNews reports whether a story is a major macro announcement.
func IsMacroNews(title, summary string) bool {
	return DetectMacroEventType(title, summary) != ""
}

// RateInfo is interest-rate detail parsed out of a story.
type RateInfo struct {
	RatesMentioned  []float64
	Action          string // "hike", "cut", "hold", or ""
	HasExpectations bool
}

var ratePattern = regexp.MustCompile(`(\d+\.?\d*)\s*(?:percent|%|basis points|bps)`)

// ExtractRateInfo pulls rate figures and the policy action from text.
func ExtractRateInfo(text string) RateInfo {
	lower := strings.ToLower(text)
	var info RateInfo

	for _, m := range ratePattern.FindAllStringSubmatch(lower, -1) {
		if v, ok := parseFloat(m[1]); ok {
			info.RatesMentioned = append(info.RatesMentioned, v)
		}
	}

	switch {
	case hasAny(lower, []string{"hike", "raise", "increase"}):
		info.Action = "hike"
	case hasAny(lower, []string{"cut", "lower", "reduce"}):
		info.Action = "cut"
	case hasAny(lower, []string{"hold", "unchanged", "steady", "pause"}):
		info.Action = "hold"
	}

	info.HasExpectations = strings.Contains(lower, "expected") || strings.Contains(lower, "forecast")
	return info
}

// MacroItem is a story confirmed as a macro event, with parsed detail.
type MacroItem struct {
	feeds.NewsItem
	EventType  string
	Emoji      string
	Importance string
	Rate       RateInfo
}

// DetectMacroItems scans items for major macro announcements and returns
// them enriched, in input order.
func DetectMacroItems(items []feeds.NewsItem) []MacroItem {
	var out []MacroItem
	for _, item := range items {
		eventType := DetectMacroEventType(item.Title, item.Summary)
		if eventType == "" {
			continue
		}
		event := macroEvents[eventType]
		item.Category = feeds.CategoryMacro
		out = append(out, MacroItem{
			NewsItem:   item,
			EventType:  eventType,
			Emoji:      event.Emoji,
			Importance: event.Importance,
			Rate:       ExtractRateInfo(item.Combined()),
		})
	}
	return out
}

// Summary renders the headline block for a macro event post.
func (m MacroItem) Summary() string {
	parts := []string{fmt.Sprintf("%s **%s**", m.Emoji, m.EventType)}

	switch m.Rate.Action {
	case "hike":
		parts = append(parts, "📈 Rate hike")
	case "cut":
		parts = append(parts, "📉 Rate cut")
	case "hold":
		parts = append(parts, "➡️ Rate hold")
	}
	if len(m.Rate.RatesMentioned) > 0 {
		parts = append(parts, fmt.Sprintf("• Figures: %.2f", m.Rate.RatesMentioned[0]))
	}
	return strings.Join(parts, "\n")
}

// WhyItMatters returns one line of market context for a macro event.
func WhyItMatters(eventType string, rate RateInfo) string {
	context := map[string]string{
		"FOMC":     "Fed policy directly impacts equity valuations through discount rates and liquidity.",
		"CPI":      "Inflation data drives Fed policy expectations and real returns.",
		"PCE":      "Core PCE is the Fed's preferred inflation gauge for policy decisions.",
		"JOBS":     "Employment strength signals economic health and wage inflation pressures.",
		"GDP":      "GDP growth affects corporate earnings expectations and recession risk.",
		"FED_RATE": "Fed communication guides market expectations for future policy.",
	}

	base, ok := context[eventType]
	if !ok {
		base = "This development could impact market sentiment."
	}

	switch rate.Action {
	case "hike":
		base += " Rate hikes typically pressure growth stocks and increase borrowing costs."
	case "cut":
		base += " Rate cuts generally support equity valuations and economic activity."
	}
	return base
}
