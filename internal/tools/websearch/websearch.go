// Package websearch is the escalation tool of last resort: a scrape of the
// DuckDuckGo HTML endpoint. Transport and parse failures surface as zero
// results, never as errors, so a dead network can only degrade an answer.
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/supplyhub/scm-assistant/internal/observability"
)

const (
	searchEndpoint = "https://duckduckgo.com/html/"
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Result is one web hit. Score is always 1.0; web results carry no
// similarity signal of their own.
type Result struct {
	URL     string
	Title   string
	Snippet string
	Score   float64
}

// Client fetches and parses web search results.
type Client struct {
	logger     *observability.Logger
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a web search client. A zero timeout defaults to 8s.
func NewClient(logger *observability.Logger, timeout time.Duration) *Client {
	if logger == nil {
		logger = observability.Nop()
	}
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   searchEndpoint,
	}
}

// Search returns up to maxResults web hits for the query. Any failure
// returns an empty slice.
func (c *Client) Search(ctx context.Context, query string, maxResults int) []Result {
	if maxResults <= 0 {
		maxResults = 3
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s?q=%s", c.endpoint, url.QueryEscape(query)), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Web search request failed")
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("Web search returned non-OK status")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Web search response parse failed")
		return nil
	}
	return ParseResults(doc, maxResults)
}

// ParseResults extracts result links and snippets from a DuckDuckGo HTML
// results document.
func ParseResults(doc *goquery.Document, maxResults int) []Result {
	var results []Result
	doc.Find("a.result__a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		results = append(results, Result{
			URL:   unwrapRedirect(href),
			Title: strings.TrimSpace(sel.Text()),
			Score: 1.0,
		})
		return len(results) < maxResults
	})

	doc.Find(".result__snippet").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= len(results) {
			return false
		}
		results[i].Snippet = strings.TrimSpace(sel.Text())
		return true
	})
	return results
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg=<target> indirection to the
// target URL. Links without the wrapper pass through unchanged.
func unwrapRedirect(link string) string {
	if !strings.Contains(link, "uddg=") {
		return link
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return link
}
