package newsfilter

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mhollis/beacon/internal/feeds"
)

func TestDetectMacroEventType(t *testing.T) {
	cases := []struct {
		title, summary string
		want           string
	}{
		{"FOMC statement released after rate decision", "", "FOMC"},
		{"CPI report shows inflation rose 0.3 percent", "", "CPI"},
		{"PCE data release for January", "", "PCE"},
		{"Jobs report: economy added 200,000 jobs", "", "JOBS"},
		{"GDP growth slows to 1.2 percent in the quarter", "", "GDP"},
		{"Fed announces rate cut of 25 basis points", "", "FED_RATE"},
		// Primary keyword without a required keyword is too vague.
		{"Fed officials give speeches this week", "", ""},
		// Administrative items are rejected before classification.
		{"Fed issues enforcement action against regional bank", "", ""},
		{"Tech company ships new phone", "", ""},
	}
	for _, tc := range cases {
		if got := DetectMacroEventType(tc.title, tc.summary); got != tc.want {
			t.Errorf("DetectMacroEventType(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestExtractRateInfo(t *testing.T) {
	info := ExtractRateInfo("Fed cut rates by 25 basis points, as expected")
	if !reflect.DeepEqual(info.RatesMentioned, []float64{25}) {
		t.Errorf("rates = %v", info.RatesMentioned)
	}
	if info.Action != "cut" {
		t.Errorf("action = %q, want cut", info.Action)
	}
	if !info.HasExpectations {
		t.Error("expected HasExpectations")
	}

	hold := ExtractRateInfo("Fed holds rates steady at 5.5 percent")
	if hold.Action != "hold" {
		t.Errorf("action = %q, want hold", hold.Action)
	}
	if !reflect.DeepEqual(hold.RatesMentioned, []float64{5.5}) {
		t.Errorf("rates = %v", hold.RatesMentioned)
	}

	if none := ExtractRateInfo("No monetary content here"); none.Action != "" {
		t.Errorf("action = %q, want empty", none.Action)
	}
}

func TestDetectMacroItems(t *testing.T) {
	items := []feeds.NewsItem{
		{Title: "Fed announces rate hike of 50 basis points", Category: feeds.CategoryGeneral},
		{Title: "Celebrity opens restaurant", Category: feeds.CategoryGeneral},
	}

	macro := DetectMacroItems(items)
	if len(macro) != 1 {
		t.Fatalf("got %d macro items, want 1", len(macro))
	}
	m := macro[0]
	if m.EventType != "FED_RATE" {
		t.Errorf("event type = %q", m.EventType)
	}
	if m.Category != feeds.CategoryMacro {
		t.Errorf("category not reassigned: %q", m.Category)
	}
	if m.Rate.Action != "hike" {
		t.Errorf("rate action = %q", m.Rate.Action)
	}
	if m.Importance != "high" {
		t.Errorf("importance = %q", m.Importance)
	}
}

func TestWhyItMatters(t *testing.T) {
	got := WhyItMatters("FOMC", RateInfo{Action: "hike"})
	if !strings.Contains(got, "Fed policy") || !strings.Contains(got, "Rate hikes") {
		t.Errorf("unexpected context: %q", got)
	}

	cut := WhyItMatters("CPI", RateInfo{Action: "cut"})
	if !strings.Contains(cut, "Rate cuts") {
		t.Errorf("missing cut context: %q", cut)
	}

	unknown := WhyItMatters("MYSTERY", RateInfo{})
	if !strings.Contains(unknown, "market sentiment") {
		t.Errorf("missing fallback: %q", unknown)
	}
}
