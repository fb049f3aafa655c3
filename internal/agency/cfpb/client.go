// Package cfpb searches the CFPB consumer complaint database.
package cfpb

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
	DefaultSearchLimit = 100
	DefaultRecentLimit = 50
)

type Client struct {
	baseURL      string
	defaultLimit int
	fetcher      *agency.Fetcher
}

type Option func(*Client)

// WithDefaultLimit sets the page size used when a search passes limit 0.
func WithDefaultLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.defaultLimit = n
		}
	}
}

func NewClient(baseURL string, httpClient *commonhttp.Client, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		defaultLimit: DefaultSearchLimit,
		fetcher:      agency.NewFetcher(models.SourceCFPB, httpClient, log),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchComplaints lists complaints filed against company.
func (c *Client) SearchComplaints(ctx context.Context, company string, limit int) *models.Result {
	return c.search(ctx, "company", company, limit)
}

// SearchByProduct lists complaints for a product category, e.g. "Mortgage".
func (c *Client) SearchByProduct(ctx context.Context, product string, limit int) *models.Result {
	return c.search(ctx, "product", product, limit)
}

// GetRecentComplaints lists the newest complaints across all companies.
func (c *Client) GetRecentComplaints(ctx context.Context, limit int) *models.Result {
	if limit < 0 {
		return c.fetcher.Reject("limit must not be negative")
	}
	if limit == 0 {
		limit = DefaultRecentLimit
	}
	return c.get(ctx, [][2]string{{"size", strconv.Itoa(limit)}, {"sort", "created_date_desc"}})
}

func (c *Client) IsAvailable(ctx context.Context) bool {
	return c.fetcher.Ping(ctx, c.endpoint([][2]string{{"size", "1"}}))
}

func (c *Client) search(ctx context.Context, field, value string, limit int) *models.Result {
	if strings.TrimSpace(value) == "" {
		return c.fetcher.Reject(field + " is required")
	}
	if limit < 0 {
		return c.fetcher.Reject("limit must not be negative")
	}
	if limit == 0 {
		limit = c.defaultLimit
	}
	return c.get(ctx, [][2]string{{field, value}, {"size", strconv.Itoa(limit)}})
}

func (c *Client) get(ctx context.Context, params [][2]string) *models.Result {
	return c.fetcher.GetJSON(ctx, c.endpoint(params), agency.ShapeHits, agency.ShapeArray)
}

func (c *Client) endpoint(params [][2]string) string {
	parts := make([]string, 0, len(params))
	for _, kv := range params {
		parts = append(parts, kv[0]+"="+url.QueryEscape(kv[1]))
	}
	base := c.baseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + "?" + strings.Join(parts, "&")
}
