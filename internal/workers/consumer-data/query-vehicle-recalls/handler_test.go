package queryvehiclerecalls

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consumer-portal/internal/agency/nhtsa"
	commonhttp "consumer-portal/internal/common/http"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/models"
)

const recallsBody = `{"Count":2,"results":[
	{"Make":"FORD","Component":"SERVICE BRAKES","Summary":"Brake fluid may leak"},
	{"Make":"TESLA","Component":"STEERING","Summary":"Power steering assist may be lost"}
]}`

func newHandler(t *testing.T, seen *atomic.Value) *Handler {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(recallsBody))
	}))
	t.Cleanup(server.Close)

	now := func() time.Time { return time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC) }
	client := nhtsa.NewClient(server.URL, commonhttp.NewClient(2*time.Second), logger.NewNoOpLogger(), nhtsa.WithClock(now))
	return NewHandler(&Config{Timeout: time.Second}, client, logger.NewTestLogger(t))
}

func TestParseInput(t *testing.T) {
	input, err := parseInput(`{"make":" Ford ","modelYear":2020}`)
	require.NoError(t, err)
	assert.Equal(t, "Ford", input.Make)
	assert.Equal(t, 2020, input.ModelYear)

	for _, vars := range []string{`{"modelYear":-1}`, `{"modelYear":"2020"}`, `{"make":1}`, `nope`} {
		_, err := parseInput(vars)
		assert.Error(t, err, vars)
	}
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name        string
		input       Input
		wantLookup  string
		wantQuery   string
		wantRecords int
	}{
		{"by make", Input{Make: "Ford", ModelYear: 2020}, LookupMake, "make=Ford&modelYear=2020", 2},
		{"by keyword", Input{Keyword: "steering"}, LookupKeyword, "modelYear=2024", 1},
		{"by year", Input{}, LookupYear, "modelYear=2024", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen atomic.Value
			out := newHandler(t, &seen).Execute(context.Background(), &tt.input)

			assert.Equal(t, tt.wantLookup, out.Lookup)
			assert.Equal(t, tt.wantQuery, seen.Load())
			assert.Equal(t, tt.wantRecords, out.Recalls.RecordCount)
			assert.Equal(t, models.OutcomeMatched, out.Outcome)
		})
	}
}

func TestExecute_ModelYearOutOfRange(t *testing.T) {
	var seen atomic.Value
	out := newHandler(t, &seen).Execute(context.Background(), &Input{Make: "Ford", ModelYear: 1900})

	assert.Nil(t, seen.Load())
	assert.Equal(t, models.OutcomeFailed, out.Outcome)
	assert.Equal(t, "modelYear must be between 1949 and 2025", out.Recalls.Error)
}
