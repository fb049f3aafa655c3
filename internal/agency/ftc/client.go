// Package ftc reads the FTC Do Not Call complaint feed, which also backs
// fraud-report search.
package ftc

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"consumer-portal/internal/agency"
	commonhttp "consumer-portal/internal/common/http"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/models"
)

const (
	DefaultDNCLimit    = 100
	DefaultSearchLimit = 50
	DefaultRecentLimit = 50

	// DemoKey is the public api.data.gov key used when none is configured.
	DemoKey = "DEMO_KEY"
)

type Client struct {
	baseURL string
	apiKey  string
	fetcher *agency.Fetcher
}

func NewClient(baseURL, apiKey string, httpClient *commonhttp.Client, log logger.Logger) *Client {
	if apiKey == "" {
		apiKey = DemoKey
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		fetcher: agency.NewFetcher(models.SourceFTC, httpClient, log),
	}
}

func (c *Client) GetDNCComplaints(ctx context.Context, limit int) *models.Result {
	return c.list(ctx, limit, DefaultDNCLimit, nil)
}

// SearchFraudReports keeps complaints whose JSON encoding contains keyword,
// case-insensitively. An empty keyword returns the page unfiltered.
func (c *Client) SearchFraudReports(ctx context.Context, keyword string, limit int) *models.Result {
	keyword = strings.TrimSpace(keyword)
	var keep func(models.Record) bool
	if keyword != "" {
		keep = func(rec models.Record) bool {
			return models.ContainsFold(rec, keyword)
		}
	}
	return c.list(ctx, limit, DefaultSearchLimit, keep)
}

func (c *Client) GetRecentFraudComplaints(ctx context.Context, limit int) *models.Result {
	return c.list(ctx, limit, DefaultRecentLimit, nil)
}

func (c *Client) IsAvailable(ctx context.Context) bool {
	return c.fetcher.Ping(ctx, c.endpoint(1))
}

func (c *Client) list(ctx context.Context, limit, def int, keep func(models.Record) bool) *models.Result {
	if limit < 0 {
		return c.fetcher.Reject("limit must not be negative")
	}
	if limit == 0 {
		limit = def
	}
	return c.fetcher.GetJSONFiltered(ctx, c.endpoint(limit), keep, agency.ShapeData, agency.ShapeArray)
}

func (c *Client) endpoint(limit int) string {
	return c.baseURL + "/dnc-complaints?api_key=" + url.QueryEscape(c.apiKey) + "&limit=" + strconv.Itoa(limit)
}
