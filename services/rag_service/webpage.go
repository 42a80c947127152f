package rag_service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// WebPageFetcher retrieves a URL and strips it down to readable text for
// ingestion.
type WebPageFetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func NewWebPageFetcher(logger *slog.Logger) *WebPageFetcher {
	return &WebPageFetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (f *WebPageFetcher) FetchText(ctx context.Context, url string) (title, text string, err error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "eaa-chatbot-ingest/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse page: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	// Boilerplate elements contribute nothing to the knowledge base.
	doc.Find("script, style, nav, header, footer, aside, noscript, iframe").Remove()

	var sb strings.Builder
	doc.Find("h1, h2, h3, h4, p, li, td, blockquote").Each(func(_ int, sel *goquery.Selection) {
		line := strings.TrimSpace(sel.Text())
		if line == "" {
			return
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	})

	text = strings.TrimSpace(sb.String())
	if text == "" {
		return "", "", fmt.Errorf("no readable text found at %s", url)
	}

	f.logger.Info("Fetched page for ingestion",
		slog.String("url", url),
		slog.Int("text_length", len(text)))

	return title, text, nil
}
