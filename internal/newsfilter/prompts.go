package newsfilter

import (
	"fmt"
	"strings"

	"github.com/mhollis/beacon/internal/feeds"
)

// Prompt is a structured "if I were an analyst" worksheet for one story.
// Templates are fixed per event class; no model call is involved.
type Prompt struct {
	Title     string
	Questions []string
	Checklist []string
}

var earningsPrompts = map[string]Prompt{
	"default": {
		Title: "📊 If I Were an Analyst: {ticker} Earnings",
		Questions: []string{
			"1. **Revenue Quality**: Was growth organic or acquisition-driven?",
			"2. **Margin Trajectory**: Are operating margins expanding or compressing?",
			"3. **Guidance Signal**: Did management raise, maintain, or lower guidance?",
			"4. **Segment Mix**: Which business units are driving results?",
		},
		Checklist: []string{
			"☐ Compare EPS beat/miss to whisper numbers",
			"☐ Review guidance vs. consensus",
			"☐ Check for one-time items affecting results",
			"☐ Evaluate management tone on call",
		},
	},
	"beat": {
		Title: "📈 Earnings Beat: {ticker}",
		Questions: []string{
			"1. **Sustainability**: Is this beat repeatable or one-time?",
			"2. **Street Reaction**: Are estimates being revised up?",
			"3. **Multiple Implications**: Does this justify current valuation?",
			"4. **Guidance Quality**: Did guidance beat as much as results?",
		},
		Checklist: []string{
			"☐ Check magnitude of beat vs. normal variance",
			"☐ Review guidance vs. new consensus",
			"☐ Look for analyst upgrades",
			"☐ Assess buy-the-dip vs. trap risk",
		},
	},
	"miss": {
		Title: "📉 Earnings Miss: {ticker}",
		Questions: []string{
			"1. **Nature of Miss**: Temporary headwind or structural issue?",
			"2. **Management Response**: Is there a credible turnaround plan?",
			"3. **Balance Sheet Impact**: Does this strain liquidity or covenants?",
			"4. **Competitive Position**: Is market share at risk?",
		},
		Checklist: []string{
			"☐ Identify root cause of miss",
			"☐ Assess guidance credibility",
			"☐ Check for buying opportunity vs. value trap",
			"☐ Review analyst downgrades",
		},
	},
}

var macroPrompts = map[string]Prompt{
	"FOMC": {
		Title: "🏦 FOMC Analysis",
		Questions: []string{
			"1. **Rate Path**: How has the dot plot shifted?",
			"2. **QT Pace**: Any changes to balance sheet policy?",
			"3. **Inflation View**: Are they more hawkish or dovish?",
			"4. **Labor Market**: How do they characterize employment?",
		},
		Checklist: []string{
			"☐ Compare statement to previous meeting",
			"☐ Note any dissenting votes",
			"☐ Track fed funds futures reaction",
			"☐ Assess sector implications",
		},
	},
	"CPI": {
		Title: "📊 CPI Analysis",
		Questions: []string{
			"1. **Core vs. Headline**: What's driving the divergence?",
			"2. **Shelter Component**: Is rent inflation peaking?",
			"3. **Services Inflation**: What's the stickiness risk?",
			"4. **Fed Implications**: Does this change rate expectations?",
		},
		Checklist: []string{
			"☐ Break down by category",
			"☐ Compare to Cleveland Fed Nowcast",
			"☐ Assess real yield implications",
			"☐ Check Treasury reaction",
		},
	},
	"JOBS": {
		Title: "👷 Jobs Report Analysis",
		Questions: []string{
			"1. **Payroll Quality**: Full-time vs. part-time composition?",
			"2. **Wage Growth**: Is it above productivity growth?",
			"3. **Participation Rate**: Any hidden slack?",
			"4. **Sector Trends**: Where are gains/losses concentrated?",
		},
		Checklist: []string{
			"☐ Watch for revisions to prior months",
			"☐ Compare to ADP and JOLTS",
			"☐ Assess Fed reaction function",
			"☐ Consider sector implications",
		},
	},
	"default": {
		Title: "📰 Macro Event Analysis",
		Questions: []string{
			"1. **Market Impact**: How is this priced into expectations?",
			"2. **Policy Implications**: Does this change Fed/fiscal trajectory?",
			"3. **Sector Effects**: Who are the winners and losers?",
			"4. **Duration**: Is this a short-term or persistent shift?",
		},
		Checklist: []string{
			"☐ Compare to consensus expectations",
			"☐ Assess cross-asset implications",
			"☐ Review historical analogs",
			"☐ Monitor follow-through",
		},
	},
}

var aiPrompts = map[string]Prompt{
	"model_release": {
		Title: "🤖 AI Model Analysis",
		Questions: []string{
			"1. **Capability Jump**: What new capabilities does this unlock?",
			"2. **Cost Structure**: How does it affect inference economics?",
			"3. **Competitive Impact**: Who gains/loses market position?",
			"4. **Adoption Curve**: What's the path to revenue?",
		},
		Checklist: []string{
			"☐ Compare to existing models (benchmarks)",
			"☐ Assess compute requirements",
			"☐ Identify enterprise use cases",
			"☐ Consider regulatory implications",
		},
	},
	"default": {
		Title: "🤖 AI/Tech Development Analysis",
		Questions: []string{
			"1. **Strategic Significance**: Is this incremental or transformative?",
			"2. **TAM Impact**: Does this expand addressable market?",
			"3. **Competitive Moat**: How defensible is this advantage?",
			"4. **Investment Implications**: Who benefits in the value chain?",
		},
		Checklist: []string{
			"☐ Identify public company exposure",
			"☐ Assess infrastructure needs",
			"☐ Consider regulatory risk",
			"☐ Review sell-side reactions",
		},
	},
}

// AnalystPrompt selects the worksheet for a story. Earnings stories pick
// by surprise direction, macro stories by event type, and everything else
// gets the AI/tech template (the model-release variant when the event
// type names a model or release).
func AnalystPrompt(category, eventType, ticker, surprise string) Prompt {
	var p Prompt
	var ok bool
	switch category {
	case feeds.CategoryEarnings:
		if p, ok = earningsPrompts[surprise]; !ok {
			p = earningsPrompts["default"]
		}
	case feeds.CategoryMacro:
		if p, ok = macroPrompts[eventType]; !ok {
			p = macroPrompts["default"]
		}
	default:
		lower := strings.ToLower(eventType)
		if strings.Contains(lower, "model") || strings.Contains(lower, "release") {
			p = aiPrompts["model_release"]
		} else {
			p = aiPrompts["default"]
		}
	}

	if ticker == "" {
		ticker = "Event"
	}
	p.Title = strings.ReplaceAll(p.Title, "{ticker}", ticker)
	return p
}

// Body renders the questions and checklist as one message block.
func (p Prompt) Body() string {
	lines := []string{"**Questions to Answer:**"}
	lines = append(lines, p.Questions...)
	lines = append(lines, "", "**Checklist:**")
	lines = append(lines, p.Checklist...)
	return strings.Join(lines, "\n")
}

// Lens classifies which part of a valuation a story moves.
type Lens struct {
	Impact      string
	Emoji       string
	Description string
	Metrics     []string
}

var lenses = map[string]Lens{
	"revenue": {
		Impact:      "Revenue Driver",
		Emoji:       "💰",
		Description: "This primarily affects top-line growth expectations.",
		Metrics:     []string{"Revenue growth rate", "TAM expansion", "Market share"},
	},
	"margin": {
		Impact:      "Margin Effect",
		Emoji:       "📊",
		Description: "This impacts profitability and operating leverage.",
		Metrics:     []string{"Gross margin", "Operating margin", "EBITDA margin"},
	},
	"discount_rate": {
		Impact:      "Discount Rate",
		Emoji:       "📉",
		Description: "This changes the cost of capital and risk premium.",
		Metrics:     []string{"WACC", "Risk-free rate", "Equity risk premium"},
	},
	"multiple": {
		Impact:      "Multiple Expansion/Compression",
		Emoji:       "🔢",
		Description: "This affects how the market values earnings/sales.",
		Metrics:     []string{"P/E ratio", "EV/EBITDA", "P/S ratio"},
	},
}

// ValuationLens maps a story onto its primary valuation driver. Inflation
// and rate events move the discount rate, growth data and earnings beats
// move revenue, misses move margins, and the rest move the multiple.
func ValuationLens(category, eventType, surprise string) Lens {
	key := "multiple"
	switch category {
	case feeds.CategoryMacro:
		switch eventType {
		case "FOMC", "FED_RATE", "CPI", "PCE":
			key = "discount_rate"
		case "JOBS", "GDP":
			key = "revenue"
		}
	case feeds.CategoryEarnings:
		switch surprise {
		case "beat":
			key = "revenue"
		case "miss":
			key = "margin"
		}
	case feeds.CategoryAI:
		key = "revenue"
	}
	return lenses[key]
}

// Body renders the lens as one message block.
func (l Lens) Body() string {
	lines := []string{
		fmt.Sprintf("%s **%s**", l.Emoji, l.Impact),
		"",
		l.Description,
		"",
		"**Key Metrics to Watch:**",
	}
	for _, m := range l.Metrics {
		lines = append(lines, "• "+m)
	}
	return strings.Join(lines, "\n")
}

var classroomConcepts = map[string][]string{
	"FOMC":     {"CAPM", "risk-free rate", "discount rate", "term structure"},
	"CPI":      {"real returns", "inflation expectations", "TIPS", "nominal vs real"},
	"JOBS":     {"Phillips curve", "Okun's law", "labor economics"},
	"earnings": {"DCF valuation", "comparable analysis", "multiple valuation"},
	"AI":       {"growth investing", "option value", "real options", "disruption"},
}

// ClassroomConcepts maps a story to the finance-course concepts it
// illustrates. Unmapped stories fall back to the general pair.
func ClassroomConcepts(category, eventType string) []string {
	var concepts []string
	switch category {
	case feeds.CategoryMacro:
		concepts = classroomConcepts[eventType]
	case feeds.CategoryEarnings:
		concepts = classroomConcepts["earnings"]
	case feeds.CategoryAI:
		concepts = classroomConcepts["AI"]
	}
	if len(concepts) == 0 {
		return []string{"fundamental analysis", "market efficiency"}
	}
	return concepts
}
