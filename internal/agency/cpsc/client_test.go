package cpsc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "consumer-portal/internal/common/errors"
	commonhttp "consumer-portal/internal/common/http"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/models"
)

type countingServer struct {
	*httptest.Server
	hits    atomic.Int32
	lastURL atomic.Value
}

func newCountingServer(t *testing.T, contentType string, status int, body string) *countingServer {
	cs := &countingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		cs.lastURL.Store(r.URL.String())
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *countingServer) last() string {
	s, _ := cs.lastURL.Load().(string)
	return s
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	return NewClient(baseURL, commonhttp.NewClient(2*time.Second), logger.NewTestLogger(t), opts...)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  QueryParams
		wantErr string
	}{
		{"empty", QueryParams{}, ""},
		{"valid range", QueryParams{RecallDateStart: "2024-01-01", RecallDateEnd: "2024-12-31"}, ""},
		{"equal dates", QueryParams{RecallDateStart: "2024-05-05", RecallDateEnd: "2024-05-05"}, ""},
		{"bad start", QueryParams{RecallDateStart: "01/15/2024"}, "Invalid RecallDateStart format. Use YYYY-MM-DD"},
		{"impossible start", QueryParams{RecallDateStart: "2024-13-45"}, "Invalid RecallDateStart format. Use YYYY-MM-DD"},
		{"bad end", QueryParams{RecallDateEnd: "2024-1-1"}, "Invalid RecallDateEnd format. Use YYYY-MM-DD"},
		{"start after end", QueryParams{RecallDateStart: "2024-12-31", RecallDateEnd: "2024-01-01"}, "RecallDateStart must be before RecallDateEnd"},
		{"bad format", QueryParams{Format: "csv"}, `Format must be either "json" or "xml"`},
		{"xml format", QueryParams{Format: FormatXML}, ""},
		{"negative id", QueryParams{RecallID: -1}, "RecallID must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.params)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
}

func TestBuildQueryURL(t *testing.T) {
	tests := []struct {
		name   string
		params QueryParams
		want   string
	}{
		{"defaults to json", QueryParams{}, "https://example.gov/Recall?format=json"},
		{
			"fixed order",
			QueryParams{ProductType: "Toys", RecallID: 42, Hazard: "pinch", RecallTitle: "baby stroller"},
			"https://example.gov/Recall?format=json&RecallTitle=baby+stroller&Hazard=pinch&RecallID=42&ProductType=Toys",
		},
		{
			"dates and xml",
			QueryParams{Format: FormatXML, RecallDateStart: "2024-01-01", RecallDateEnd: "2024-02-01"},
			"https://example.gov/Recall?format=xml&RecallDateStart=2024-01-01&RecallDateEnd=2024-02-01",
		},
		{"zero id omitted", QueryParams{RecallNumber: "24-001"}, "https://example.gov/Recall?format=json&RecallNumber=24-001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQueryURL("https://example.gov/", tt.params))
		})
	}
}

func TestQueryRecalls_InvalidParamsSkipNetwork(t *testing.T) {
	server := newCountingServer(t, "application/json", http.StatusOK, `[]`)
	c := newTestClient(t, server.URL)

	res := c.QueryRecalls(context.Background(), QueryParams{RecallDateStart: "2024-13-01"})
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid RecallDateStart format. Use YYYY-MM-DD", res.Error)

	res = c.GetRecallsByDateRange(context.Background(), "2024-12-31", "2024-01-01")
	assert.False(t, res.Success)
	assert.Equal(t, "RecallDateStart must be before RecallDateEnd", res.Error)
	assert.Empty(t, res.Data)

	assert.Equal(t, int32(0), server.hits.Load())
}

func TestQueryRecalls_JSON(t *testing.T) {
	server := newCountingServer(t, "application/json; charset=utf-8", http.StatusOK,
		`[{"RecallID":9021,"Title":"Strollers Recalled Due to Pinch Hazard"},{"RecallID":9022}]`)
	c := newTestClient(t, server.URL)

	res := c.GetStrollerPinchHazards(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, 2, res.RecordCount)
	assert.Equal(t, "Strollers Recalled Due to Pinch Hazard", res.Data[0].String("Title"))
	assert.Equal(t, "/Recall?format=json&RecallTitle=stroller&Hazard=pinch", server.last())
}

func TestQueryRecalls_BareObject(t *testing.T) {
	server := newCountingServer(t, "application/json", http.StatusOK, `{"RecallID":7,"Title":"Crib"}`)
	res := newTestClient(t, server.URL).GetRecallsByTitle(context.Background(), "crib")

	require.True(t, res.Success)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Crib", res.Data[0].String("Title"))
}

func TestQueryRecalls_ServerError(t *testing.T) {
	server := newCountingServer(t, "text/plain", http.StatusServiceUnavailable, "down")
	res := newTestClient(t, server.URL).GetRecallsByHazard(context.Background(), "fire")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "503")
	assert.Equal(t, "CPSC API error: 503 Service Unavailable", res.Error)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Equal(t, 0, res.RecordCount)
}

func TestQueryRecalls_XML(t *testing.T) {
	body := `<?xml version="1.0"?>
<ArrayOfRecall>
  <Recall><RecallID>1</RecallID><Title>Heater</Title></Recall>
  <Recall><RecallID>2</RecallID><Title>Adapter</Title></Recall>
</ArrayOfRecall>`

	t.Run("content type", func(t *testing.T) {
		server := newCountingServer(t, "application/xml", http.StatusOK, body)
		res := newTestClient(t, server.URL).GetRecallsByHazard(context.Background(), "fire")
		require.True(t, res.Success, res.Error)
		assert.Equal(t, 2, res.RecordCount)
		assert.Equal(t, "Adapter", res.Data[1].String("Title"))
	})

	t.Run("forced format", func(t *testing.T) {
		server := newCountingServer(t, "text/plain", http.StatusOK, body)
		res := newTestClient(t, server.URL).QueryRecallsXML(context.Background(), QueryParams{Hazard: "fire"})
		require.True(t, res.Success, res.Error)
		assert.Equal(t, 2, res.RecordCount)
		assert.Contains(t, server.last(), "format=xml")
	})

	t.Run("sniffed without content type", func(t *testing.T) {
		server := newCountingServer(t, "", http.StatusOK, body)
		res := newTestClient(t, server.URL).GetRecallsByTitle(context.Background(), "heater")
		require.True(t, res.Success, res.Error)
		assert.Equal(t, 2, res.RecordCount)
	})
}

func TestQueryRecalls_XMLCollections(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantOutcome models.Outcome
		wantTitles  []string
	}{
		{"self closing", `<ArrayOfRecall/>`, models.OutcomeNoMatch, nil},
		{
			"empty namespaced",
			`<?xml version="1.0"?><ArrayOfRecall xmlns="http://schemas.datacontract.org/2004/07/CPSC.Recalls"></ArrayOfRecall>`,
			models.OutcomeNoMatch,
			nil,
		},
		{
			"single recall",
			`<ArrayOfRecall><Recall><RecallID>5</RecallID><Title>Crib</Title></Recall></ArrayOfRecall>`,
			models.OutcomeMatched,
			[]string{"Crib"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newCountingServer(t, "application/xml", http.StatusOK, tt.body)
			res := newTestClient(t, server.URL).QueryRecallsXML(context.Background(), QueryParams{Hazard: "fire"})

			require.True(t, res.Success, res.Error)
			assert.Equal(t, tt.wantOutcome, res.Outcome())
			assert.Equal(t, apperrors.KindNone, res.Kind)
			assert.Equal(t, len(tt.wantTitles), res.RecordCount)
			assert.NotNil(t, res.Data)
			for i, title := range tt.wantTitles {
				assert.Equal(t, title, res.Data[i].String("Title"))
			}
		})
	}
}

func TestQueryRecalls_Undecodable(t *testing.T) {
	server := newCountingServer(t, "application/json", http.StatusOK, `{"broken":`)
	res := newTestClient(t, server.URL).GetRecallsByTitle(context.Background(), "x")
	assert.Equal(t, apperrors.KindDecode, res.Kind)
	assert.Equal(t, models.OutcomeFailed, res.Outcome())
}

func TestGetRecentRecalls(t *testing.T) {
	server := newCountingServer(t, "application/json", http.StatusOK, `[]`)
	now := func() time.Time { return time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC) }

	res := newTestClient(t, server.URL, WithClock(now)).GetRecentRecalls(context.Background())
	assert.Equal(t, models.OutcomeNoMatch, res.Outcome())
	assert.Equal(t, "/Recall?format=json&RecallDateStart=2024-09-15&RecallDateEnd=2024-10-15", server.last())
}

func TestIsAvailable(t *testing.T) {
	up := newCountingServer(t, "application/json", http.StatusOK, `[]`)
	assert.True(t, newTestClient(t, up.URL).IsAvailable(context.Background()))

	down := newCountingServer(t, "", http.StatusInternalServerError, "")
	assert.False(t, newTestClient(t, down.URL).IsAvailable(context.Background()))
}
