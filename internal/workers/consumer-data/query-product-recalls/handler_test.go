package queryproductrecalls

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consumer-portal/internal/agency/cpsc"
	commonhttp "consumer-portal/internal/common/http"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/models"
)

// ==========================
// Test Logger Implementation
// ==========================

// TestLogger implements the Logger interface for testing
type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{
		t:      t,
		fields: make(map[string]interface{}),
	}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return &TestLogger{t: l.t, fields: l.mergeFields(fields)}
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	allFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		allFields[k] = v
	}
	for k, v := range fields {
		allFields[k] = v
	}
	return allFields
}

func newCPSC(t *testing.T, status int, body string, seen *atomic.Value) *cpsc.Client {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	now := func() time.Time { return time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC) }
	return cpsc.NewClient(server.URL, commonhttp.NewClient(2*time.Second), logger.NewNoOpLogger(), cpsc.WithClock(now))
}

func TestParseInput(t *testing.T) {
	input, err := parseInput(`{"hazard":"fire","recallId":12,"format":"xml"}`)
	require.NoError(t, err)
	assert.Equal(t, "fire", input.Hazard)
	assert.Equal(t, 12, input.RecallID)
	assert.Equal(t, cpsc.FormatXML, input.Format)

	for _, vars := range []string{`{"preset":"weekly"}`, `{"recallId":-3}`, `{"format":"csv"}`, `{"hazard":7}`} {
		_, err := parseInput(vars)
		assert.Error(t, err, vars)
	}
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name        string
		input       Input
		status      int
		body        string
		wantQuery   string
		wantOutcome models.Outcome
	}{
		{
			name:        "filters",
			input:       Input{QueryParams: cpsc.QueryParams{Hazard: "fire", Manufacturer: "Acme"}},
			status:      http.StatusOK,
			body:        `[{"RecallID":1}]`,
			wantQuery:   "format=json&Hazard=fire&Manufacturer=Acme",
			wantOutcome: models.OutcomeMatched,
		},
		{
			name:        "recent preset",
			input:       Input{Preset: PresetRecent},
			status:      http.StatusOK,
			body:        `[]`,
			wantQuery:   "format=json&RecallDateStart=2024-09-15&RecallDateEnd=2024-10-15",
			wantOutcome: models.OutcomeNoMatch,
		},
		{
			name:        "stroller preset",
			input:       Input{Preset: PresetStrollerPinch},
			status:      http.StatusOK,
			body:        `[{"RecallID":2}]`,
			wantQuery:   "format=json&RecallTitle=stroller&Hazard=pinch",
			wantOutcome: models.OutcomeMatched,
		},
		{
			name:        "agency failure still completes",
			input:       Input{QueryParams: cpsc.QueryParams{Hazard: "fire"}},
			status:      http.StatusServiceUnavailable,
			body:        `down`,
			wantQuery:   "format=json&Hazard=fire",
			wantOutcome: models.OutcomeFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen atomic.Value
			h := NewHandler(&Config{Timeout: time.Second}, newCPSC(t, tt.status, tt.body, &seen), NewTestLogger(t))

			out := h.Execute(context.Background(), &tt.input)

			assert.Equal(t, tt.wantQuery, seen.Load())
			assert.Equal(t, tt.wantOutcome, out.Outcome)
			assert.NotNil(t, out.Recalls.Data)
		})
	}
}

func TestExecute_InvalidDatesSkipNetwork(t *testing.T) {
	var seen atomic.Value
	h := NewHandler(&Config{Timeout: time.Second}, newCPSC(t, http.StatusOK, `[]`, &seen), NewTestLogger(t))

	out := h.Execute(context.Background(), &Input{QueryParams: cpsc.QueryParams{RecallDateStart: "2024-02-30"}})

	assert.Nil(t, seen.Load())
	assert.Equal(t, models.OutcomeFailed, out.Outcome)
	assert.Equal(t, "Invalid RecallDateStart format. Use YYYY-MM-DD", out.Recalls.Error)
}
