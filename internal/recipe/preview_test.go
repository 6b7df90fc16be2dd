package recipe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchPreview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `<html><head><title>Site Title</title><style>.x{}</style></head>
<body><nav>Home | About</nav><h1>Tofu Bowl</h1>
<p>Press the tofu, cube it, and fry until golden.</p>
<script>trackPageView()</script><footer>Copyright</footer></body></html>`)
	}))
	defer server.Close()

	preview, err := NewFetcher().FetchPreview(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchPreview: %v", err)
	}

	if preview.Title != "Tofu Bowl" {
		t.Errorf("Title = %q, want h1 text", preview.Title)
	}
	if !strings.Contains(preview.Summary, "Press the tofu") {
		t.Errorf("Summary missing recipe text: %q", preview.Summary)
	}
	if strings.Contains(preview.Summary, "trackPageView") || strings.Contains(preview.Summary, "Home | About") {
		t.Errorf("Summary contains noise: %q", preview.Summary)
	}
	if preview.URL != server.URL {
		t.Errorf("URL = %q, want %q", preview.URL, server.URL)
	}
}

func TestFetchPreviewErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := NewFetcher().FetchPreview(context.Background(), server.URL); err == nil {
		t.Fatal("Expected an error for a 404 page, got nil")
	}
}

func TestCondenseTruncates(t *testing.T) {
	long := strings.Repeat("tasty food ", 200)
	got := condense(long)
	if len([]rune(got)) > maxSummaryRunes+1 {
		t.Errorf("Condensed text too long: %d runes", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("Expected truncation marker")
	}
}
