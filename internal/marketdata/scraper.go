package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/types"
)

// GoogleNewsScraper scrapes Google News search results as a headline source
// of last resort.
type GoogleNewsScraper struct {
	timeout time.Duration
}

// NewGoogleNewsScraper creates a scraper with the given per-request timeout.
func NewGoogleNewsScraper(timeout time.Duration) *GoogleNewsScraper {
	return &GoogleNewsScraper{timeout: timeout}
}

// Scrape collects up to maxHeadlines headlines for a symbol.
func (s *GoogleNewsScraper) Scrape(ctx context.Context, symbol string, maxHeadlines int) ([]types.Headline, error) {
	headlines := []types.Headline{}

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com", "www.google.com"),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(headlines) >= maxHeadlines {
			return
		}

		title := strings.TrimSpace(e.ChildText("h3, h4"))
		link := e.ChildAttr("a", "href")
		if title == "" || link == "" {
			return
		}

		// Google News links are relative redirect paths.
		if strings.HasPrefix(link, "./articles/") {
			link = "https://news.google.com" + link[1:]
		}

		headlines = append(headlines, types.Headline{
			Title:     title,
			Publisher: "Google News",
			Link:      link,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "url", r.Request.URL.String())
	})

	searchQuery := url.QueryEscape(symbol + " stock news")
	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en-US&gl=US&ceid=US:en", searchQuery)

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to scrape Google News: %w", err)
	}
	c.Wait()

	logger.Info(ctx, "Google News scraping completed", "symbol", symbol, "headlines", len(headlines))
	return headlines, nil
}
