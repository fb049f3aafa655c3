// Package nhtsa looks up vehicle recalls through the NHTSA recalls API.
package nhtsa

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"consumer-portal/internal/agency"
	commonhttp "consumer-portal/internal/common/http"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/models"
)

// FirstModelYear is the oldest model year the recalls API covers.
const FirstModelYear = 1949

type Client struct {
	baseURL string
	fetcher *agency.Fetcher
	now     func() time.Time
}

type Option func(*Client)

// WithClock replaces time.Now when resolving the current model year.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(baseURL string, httpClient *commonhttp.Client, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: agency.NewFetcher(models.SourceNHTSA, httpClient, log),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetRecallsByMake lists recalls for vehicleMake in modelYear. Year 0 means the
// current year.
func (c *Client) GetRecallsByMake(ctx context.Context, vehicleMake string, modelYear int) *models.Result {
	if strings.TrimSpace(vehicleMake) == "" {
		return c.fetcher.Reject("make is required")
	}
	year, err := c.resolveYear(modelYear)
	if err != nil {
		return c.fetcher.Reject(err.Error())
	}
	return c.fetcher.GetJSON(ctx, c.endpoint("make="+url.QueryEscape(vehicleMake)+"&modelYear="+strconv.Itoa(year)), agency.ShapeResults)
}

// GetRecentRecalls lists recalls for every make in modelYear.
func (c *Client) GetRecentRecalls(ctx context.Context, modelYear int) *models.Result {
	return c.recent(ctx, modelYear, nil)
}

// SearchRecalls filters the current year's recalls on Summary and
// Component. The API has no keyword search of its own.
func (c *Client) SearchRecalls(ctx context.Context, keyword string) *models.Result {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	var keep func(models.Record) bool
	if needle != "" {
		keep = func(rec models.Record) bool {
			return strings.Contains(strings.ToLower(rec.String("Summary")), needle) ||
				strings.Contains(strings.ToLower(rec.String("Component")), needle)
		}
	}
	return c.recent(ctx, 0, keep)
}

func (c *Client) recent(ctx context.Context, modelYear int, keep func(models.Record) bool) *models.Result {
	year, err := c.resolveYear(modelYear)
	if err != nil {
		return c.fetcher.Reject(err.Error())
	}
	return c.fetcher.GetJSONFiltered(ctx, c.endpoint("modelYear="+strconv.Itoa(year)), keep, agency.ShapeResults)
}

func (c *Client) IsAvailable(ctx context.Context) bool {
	return c.fetcher.Ping(ctx, c.endpoint("modelYear="+strconv.Itoa(c.now().Year())))
}

func (c *Client) resolveYear(modelYear int) (int, error) {
	current := c.now().Year()
	if modelYear == 0 {
		return current, nil
	}
	if modelYear < FirstModelYear || modelYear > current+1 {
		return 0, fmt.Errorf("modelYear must be between %d and %d", FirstModelYear, current+1)
	}
	return modelYear, nil
}

func (c *Client) endpoint(query string) string {
	return c.baseURL + "/recalls/recallsByVehicle?" + query
}
