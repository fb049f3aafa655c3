package nhtsa

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "consumer-portal/internal/common/errors"
	commonhttp "consumer-portal/internal/common/http"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/common/metrics"
	"consumer-portal/internal/models"
)

const recallsBody = `{"Count":3,"Message":"Results returned successfully","results":[
	{"Manufacturer":"Ford Motor Company","NHTSACampaignNumber":"24V001000","Component":"SERVICE BRAKES, HYDRAULIC","Summary":"Brake fluid may leak from the master cylinder."},
	{"Manufacturer":"Tesla, Inc.","NHTSACampaignNumber":"24V002000","Component":"STEERING","Summary":"The steering wheel may detach."},
	{"Manufacturer":"General Motors","NHTSACampaignNumber":"24V003000","Component":"AIR BAGS","Summary":"Air bag may not deploy."}
]}`

var fixedNow = func() time.Time { return time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC) }

func setup(t *testing.T, status int, body string) (*Client, *atomic.Value, *atomic.Int32) {
	var query atomic.Value
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/recalls/recallsByVehicle", r.URL.Path)
		query.Store(r.URL.RawQuery)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, commonhttp.NewClient(2*time.Second), logger.NewTestLogger(t), WithClock(fixedNow))
	return c, &query, &hits
}

func TestGetRecallsByMake(t *testing.T) {
	c, query, _ := setup(t, http.StatusOK, recallsBody)

	res := c.GetRecallsByMake(context.Background(), "Ford", 0)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 3, res.RecordCount)
	assert.Equal(t, "make=Ford&modelYear=2024", query.Load())

	c.GetRecallsByMake(context.Background(), "Land Rover", 2019)
	assert.Equal(t, "make=Land+Rover&modelYear=2019", query.Load())
}

func TestModelYearBounds(t *testing.T) {
	c, _, hits := setup(t, http.StatusOK, recallsBody)

	for _, year := range []int{1948, 2026, -1} {
		res := c.GetRecallsByMake(context.Background(), "Ford", year)
		assert.Equal(t, apperrors.KindValidation, res.Kind, "year %d", year)
	}
	assert.Equal(t, apperrors.KindValidation, c.GetRecallsByMake(context.Background(), "", 2024).Kind)
	assert.Equal(t, int32(0), hits.Load())

	assert.True(t, c.GetRecallsByMake(context.Background(), "Ford", 2025).Success)
	assert.True(t, c.GetRecallsByMake(context.Background(), "Ford", 1949).Success)
}

func TestGetRecentRecalls(t *testing.T) {
	c, query, _ := setup(t, http.StatusOK, `{"Results":[]}`)
	res := c.GetRecentRecalls(context.Background(), 0)
	assert.Equal(t, models.OutcomeNoMatch, res.Outcome())
	assert.Equal(t, "modelYear=2024", query.Load())
}

func TestSearchRecalls(t *testing.T) {
	c, _, _ := setup(t, http.StatusOK, recallsBody)

	tests := []struct {
		keyword string
		want    int
	}{
		{"brake", 1},
		{"STEERING", 1},
		{"may", 3},
		{"airbag", 0},
		{"", 3},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			res := c.SearchRecalls(context.Background(), tt.keyword)
			require.True(t, res.Success)
			assert.Equal(t, tt.want, res.RecordCount)
		})
	}
}

func TestSearchRecalls_Failure(t *testing.T) {
	c, _, _ := setup(t, http.StatusBadGateway, ``)
	res := c.SearchRecalls(context.Background(), "brake")
	assert.Equal(t, models.OutcomeFailed, res.Outcome())
	assert.Equal(t, "NHTSA API error: 502 Bad Gateway", res.Error)
}

func TestIsAvailable(t *testing.T) {
	c, _, _ := setup(t, http.StatusOK, recallsBody)
	assert.True(t, c.IsAvailable(context.Background()))
}

func TestSearchRecalls_CountsFilteredOutcome(t *testing.T) {
	c, _, _ := setup(t, http.StatusOK, recallsBody)
	matched := metrics.AgencyRequests.WithLabelValues(string(models.SourceNHTSA), string(models.OutcomeMatched))
	noMatch := metrics.AgencyRequests.WithLabelValues(string(models.SourceNHTSA), string(models.OutcomeNoMatch))
	beforeMatched, beforeNoMatch := testutil.ToFloat64(matched), testutil.ToFloat64(noMatch)

	res := c.SearchRecalls(context.Background(), "airbag")
	assert.Equal(t, models.OutcomeNoMatch, res.Outcome())
	assert.Equal(t, beforeMatched, testutil.ToFloat64(matched))
	assert.Equal(t, beforeNoMatch+1, testutil.ToFloat64(noMatch))
}
