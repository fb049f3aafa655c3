// Package cpsc queries the CPSC Recall Retrieval API on saferproducts.gov.
package cpsc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"consumer-portal/internal/agency"
	commonhttp "consumer-portal/internal/common/http"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/models"
)

var shapes = []agency.Shape{
	agency.ShapeArray,
	agency.ShapeData,
	agency.ShapeRecalls,
	agency.ShapeRecall,
	agency.ShapeEmpty,
	agency.ShapeObject,
}

type Client struct {
	baseURL string
	fetcher *agency.Fetcher
	now     func() time.Time
}

type Option func(*Client)

// WithClock replaces time.Now for date-relative helpers.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(baseURL string, httpClient *commonhttp.Client, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		fetcher: agency.NewFetcher(models.SourceCPSC, httpClient, log),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryRecalls validates params, calls the Recall endpoint and normalizes
// the JSON or XML answer into records. Invalid params never reach the network.
func (c *Client) QueryRecalls(ctx context.Context, params QueryParams) *models.Result {
	if err := Validate(params); err != nil {
		return c.fetcher.Reject(err.Error())
	}

	start := time.Now()
	accept := "application/json"
	if params.Format == FormatXML {
		accept = "application/xml"
	}

	resp, failed := c.fetcher.Get(ctx, BuildQueryURL(c.baseURL, params), map[string]string{"Accept": accept})
	if failed != nil {
		return c.fetcher.Observe(start, failed)
	}

	value, err := decodeBody(resp, params.Format)
	if err != nil {
		return c.fetcher.Observe(start, c.fetcher.FromDecode(nil, err))
	}
	records, _, err := agency.DecodeValue(value, shapes...)
	return c.fetcher.Observe(start, c.fetcher.FromDecode(records, err))
}

// decodeBody picks the parser from the content type: JSON, XML, or JSON
// with an XML fallback when the server does not say.
func decodeBody(resp *commonhttp.Response, format string) (interface{}, error) {
	ct := resp.ContentType()
	switch {
	case strings.Contains(ct, "application/json"):
		return decodeJSON(resp.Body)
	case strings.Contains(ct, "xml") || format == FormatXML:
		return agency.XMLToValue(resp.Body)
	}

	v, jsonErr := decodeJSON(resp.Body)
	if jsonErr == nil {
		return v, nil
	}
	v, xmlErr := agency.XMLToValue(resp.Body)
	if xmlErr != nil {
		return nil, fmt.Errorf("body is neither JSON (%v) nor XML (%v)", jsonErr, xmlErr)
	}
	return v, nil
}

func decodeJSON(body []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Client) GetRecallsByTitle(ctx context.Context, title string) *models.Result {
	return c.QueryRecalls(ctx, QueryParams{RecallTitle: title})
}

func (c *Client) GetRecallsByHazard(ctx context.Context, hazard string) *models.Result {
	return c.QueryRecalls(ctx, QueryParams{Hazard: hazard})
}

// GetRecallsByDateRange takes YYYY-MM-DD dates.
func (c *Client) GetRecallsByDateRange(ctx context.Context, startDate, endDate string) *models.Result {
	return c.QueryRecalls(ctx, QueryParams{RecallDateStart: startDate, RecallDateEnd: endDate})
}

// GetStrollerPinchHazards is the sample combined-filter query.
func (c *Client) GetStrollerPinchHazards(ctx context.Context) *models.Result {
	return c.QueryRecalls(ctx, QueryParams{RecallTitle: "stroller", Hazard: "pinch"})
}

// GetRecentRecalls covers the last 30 days in UTC.
func (c *Client) GetRecentRecalls(ctx context.Context) *models.Result {
	end := c.now().UTC()
	start := end.AddDate(0, 0, -30)
	return c.QueryRecalls(ctx, QueryParams{
		RecallDateStart: start.Format(dateLayout),
		RecallDateEnd:   end.Format(dateLayout),
	})
}

// QueryRecallsXML forces the XML format.
func (c *Client) QueryRecallsXML(ctx context.Context, params QueryParams) *models.Result {
	params.Format = FormatXML
	return c.QueryRecalls(ctx, params)
}

func (c *Client) IsAvailable(ctx context.Context) bool {
	return c.fetcher.Ping(ctx, strings.TrimRight(c.baseURL, "/")+"/Recall?format=json")
}
