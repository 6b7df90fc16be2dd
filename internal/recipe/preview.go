// Package recipe fetches a recipe page and reduces it to a short text
// preview, so food items carrying a recipe_link can be shown inline without
// leaving the chat.
package recipe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Preview is the distilled view of a recipe page.
type Preview struct {
	Title   string
	Summary string
	URL     string
}

// Fetcher downloads and cleans recipe pages.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher with a bounded request timeout; recipe sites
// are third parties and must not hang the conversation.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

const maxSummaryRunes = 600

// FetchPreview downloads the page, strips navigation and script noise, and
// returns the title plus the opening stretch of readable text.
func (f *Fetcher) FetchPreview(ctx context.Context, url string) (*Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recipe page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch recipe page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recipe page: %w", err)
	}

	// Remove noise before extracting text.
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		title = h1
	}

	summary := condense(doc.Find("body").Text())
	if summary == "" {
		return nil, fmt.Errorf("recipe page had no readable content")
	}

	return &Preview{Title: title, Summary: summary, URL: url}, nil
}

// condense collapses whitespace runs and truncates to a chat-sized excerpt.
func condense(raw string) string {
	fields := strings.Fields(raw)
	text := strings.Join(fields, " ")
	runes := []rune(text)
	if len(runes) > maxSummaryRunes {
		text = string(runes[:maxSummaryRunes]) + "…"
	}
	return text
}
