package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"stock-research-agent/internal/api"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/trace"
	"stock-research-agent/internal/types"
)

const yahooSearchURL = "https://query1.finance.yahoo.com/v1/finance/search"

// YahooNews fetches recent headlines from the Yahoo Finance search API, with
// a scraper fallback when the API returns nothing.
type YahooNews struct {
	client   *api.Client
	fallback *GoogleNewsScraper
}

// NewYahooNews creates a headline provider.
func NewYahooNews() *YahooNews {
	return &YahooNews{
		client:   api.NewClient(api.WithTimeout(15 * time.Second)),
		fallback: NewGoogleNewsScraper(15 * time.Second),
	}
}

// News implements NewsProvider. Upstream failures degrade to an empty slice
// rather than an error: missing headlines only mean sentiment gets skipped.
func (n *YahooNews) News(ctx context.Context, symbol string, limit int) ([]types.Headline, error) {
	ctx, span := trace.StartSpan(ctx, "fetch-news")
	defer span.End()

	if limit <= 0 {
		limit = 5
	}

	headlines, err := n.search(ctx, symbol, limit)
	if err != nil {
		logger.Warn(ctx, "Yahoo news search failed", "symbol", symbol, "error", err)
	}

	if len(headlines) == 0 {
		logger.Info(ctx, "No headlines from search API, trying Google News scraper", "symbol", symbol)
		scraped, serr := n.fallback.Scrape(ctx, symbol, limit)
		if serr != nil {
			logger.Warn(ctx, "Google News fallback failed", "symbol", symbol, "error", serr)
			return []types.Headline{}, nil
		}
		headlines = scraped
	}

	return headlines, nil
}

func (n *YahooNews) search(ctx context.Context, symbol string, limit int) ([]types.Headline, error) {
	q := url.Values{}
	q.Set("q", symbol)
	q.Set("quotesCount", "0")
	q.Set("newsCount", fmt.Sprint(limit))

	resp, err := n.client.GETWithRetry(ctx, yahooSearchURL+"?"+q.Encode(), 3, api.YahooHeaders())
	if err != nil {
		return nil, err
	}

	var r struct {
		News []struct {
			Title     string `json:"title"`
			Publisher string `json:"publisher"`
			Link      string `json:"link"`
		} `json:"news"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return nil, err
	}

	headlines := make([]types.Headline, 0, len(r.News))
	for _, item := range r.News {
		if item.Title == "" {
			continue
		}
		headlines = append(headlines, types.Headline{
			Title:     item.Title,
			Publisher: item.Publisher,
			Link:      item.Link,
		})
		if len(headlines) == limit {
			break
		}
	}
	return headlines, nil
}
