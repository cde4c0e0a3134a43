package notify

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mhollis/beacon/internal/httpx"
)

// Webhook posts messages to one channel. In dry-run mode it prints the
// payload instead of sending it.
type Webhook struct {
	name   string
	url    string
	dryRun bool
	client *httpx.Client
	out    io.Writer
}

// NewWebhook creates a webhook poster. name is used for logs and dry-run
// output; an empty url leaves the webhook unconfigured.
func NewWebhook(name, url string, dryRun bool) *Webhook {
	return &Webhook{
		name:   name,
		url:    url,
		dryRun: dryRun,
		client: httpx.NewClient(),
		out:    os.Stdout,
	}
}

// IsConfigured reports whether posting can do anything. Dry-run is always
// configured since it only prints.
func (w *Webhook) IsConfigured() bool {
	return w.url != "" || w.dryRun
}

// Post sends a message with optional content and embeds. Returns true on
// success (or in dry-run). Posting failures are logged, not returned:
// one webhook being down should not abort a job mid-run.
func (w *Webhook) Post(ctx context.Context, content string, embeds []Embed) bool {
	if content == "" && len(embeds) == 0 {
		log.Printf("beacon: nothing to post to %s", w.name)
		return false
	}

	if len(embeds) > maxEmbeds {
		embeds = embeds[:maxEmbeds]
	}
	payload := wirePayload{Content: truncate(content, maxContentLen)}
	for _, e := range embeds {
		payload.Embeds = append(payload.Embeds, e.toWire())
	}

	if w.dryRun {
		w.printDryRun(payload)
		return true
	}

	if w.url == "" {
		log.Printf("beacon: no webhook URL configured for %s", w.name)
		return false
	}

	if err := w.client.PostJSON(ctx, w.url, payload); err != nil {
		log.Printf("beacon: failed to post to %s: %v", w.name, err)
		return false
	}
	return true
}

func (w *Webhook) printDryRun(payload wirePayload) {
	line := strings.Repeat("=", 60)
	fmt.Fprintf(w.out, "\n%s\nDRY-RUN: would post to %s\n%s\n", line, w.name, line)

	if payload.Content != "" {
		fmt.Fprintf(w.out, "\nContent: %s\n", payload.Content)
	}
	for i, e := range payload.Embeds {
		fmt.Fprintf(w.out, "\nEmbed %d:\n  Title: %s\n", i+1, e.Title)
		if e.Description != "" {
			fmt.Fprintf(w.out, "  Description: %s\n", firstN(e.Description, 200))
		}
		for _, f := range e.Fields {
			fmt.Fprintf(w.out, "  - %s: %s\n", f.Name, firstN(f.Value, 80))
		}
		if e.Footer != nil {
			fmt.Fprintf(w.out, "  Footer: %s\n", e.Footer.Text)
		}
	}
	fmt.Fprintf(w.out, "\n%s\n", line)
}

func firstN(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
