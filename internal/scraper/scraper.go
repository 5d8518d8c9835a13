// Package scraper pulls the full article text from a URL so the summarizer
// has more to work with than the feed description. Best effort only.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxBodyRunes   = 6000
	minParagraph   = 40
	requestTimeout = 20 * time.Second
)

var contentSelectors = []string{
	"article p",
	"main p",
	"div[itemprop=articleBody] p",
	".article-body p",
	".story-content p",
	"p",
}

type Scraper struct {
	httpClient *http.Client
}

func New() *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// ExtractText fetches url and returns the concatenated article paragraphs,
// capped at maxBodyRunes. Returns an error when nothing usable was found;
// callers fall back to the feed description.
func (s *Scraper) ExtractText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; positivebot/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch article: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse article: %w", err)
	}

	for _, selector := range contentSelectors {
		if text := collectParagraphs(doc, selector); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("no article text found at %s", url)
}

func collectParagraphs(doc *goquery.Document, selector string) string {
	var b strings.Builder

	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		p := strings.TrimSpace(sel.Text())
		if len(p) < minParagraph {
			return true
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p)
		return utf8.RuneCountInString(b.String()) < maxBodyRunes
	})

	text := b.String()
	if utf8.RuneCountInString(text) < minParagraph*2 {
		return ""
	}
	if utf8.RuneCountInString(text) > maxBodyRunes {
		runes := []rune(text)
		text = string(runes[:maxBodyRunes])
		if idx := strings.LastIndex(text, ". "); idx > maxBodyRunes/2 {
			text = text[:idx+1]
		}
	}
	return text
}
