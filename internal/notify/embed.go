// Package notify posts messages to Discord-compatible webhooks. Embeds
// are clamped to the API's size limits before sending so an oversized
// payload degrades to truncated text instead of a 400.
package notify

// Discord payload limits.
const (
	maxContentLen     = 2000
	maxEmbeds         = 10
	maxTitleLen       = 256
	maxDescriptionLen = 4096
	maxFields         = 25
	maxFieldNameLen   = 256
	maxFieldValueLen  = 1024
	maxFooterLen      = 2048
)

// Colors maps named colors and priority labels to embed color values.
var Colors = map[string]int{
	"red":      0xED4245,
	"orange":   0xFFA500,
	"yellow":   0xFEE75C,
	"green":    0x57F287,
	"blue":     0x5865F2,
	"purple":   0x9B59B6,
	"gray":     0x95A5A6,
	"critical": 0xED4245,
	"high":     0xFFA500,
	"medium":   0xFEE75C,
	"low":      0x57F287,
}

// Color looks up a named color, defaulting to blue.
func Color(name string) int {
	if c, ok := Colors[name]; ok {
		return c
	}
	return Colors["blue"]
}

// EmbedField is one field in an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Embed is a rich message block.
type Embed struct {
	Title       string
	Description string
	Color       int
	URL         string
	Fields      []EmbedField
	Footer      string
	Timestamp   string
}

// Wire formats matching the webhook API.
type wireFooter struct {
	Text string `json:"text"`
}

type wireEmbed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	URL         string       `json:"url,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *wireFooter  `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type wirePayload struct {
	Content  string      `json:"content,omitempty"`
	Embeds   []wireEmbed `json:"embeds,omitempty"`
	Username string      `json:"username,omitempty"`
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// toWire clamps an embed to the API limits.
func (e Embed) toWire() wireEmbed {
	w := wireEmbed{
		Title:       truncate(e.Title, maxTitleLen),
		Description: truncate(e.Description, maxDescriptionLen),
		Color:       e.Color,
		URL:         e.URL,
		Timestamp:   e.Timestamp,
	}

	fields := e.Fields
	if len(fields) > maxFields {
		fields = fields[:maxFields]
	}
	for _, f := range fields {
		w.Fields = append(w.Fields, EmbedField{
			Name:   truncate(f.Name, maxFieldNameLen),
			Value:  truncate(f.Value, maxFieldValueLen),
			Inline: f.Inline,
		})
	}

	if e.Footer != "" {
		w.Footer = &wireFooter{Text: truncate(e.Footer, maxFooterLen)}
	}
	return w
}
