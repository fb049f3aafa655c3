package interpretquery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consumer-portal/internal/assistant"
	"consumer-portal/internal/dataset"
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

type fakeInterpreter struct {
	result  models.IntentResult
	bundles []assistant.ContextBundle
}

func (f *fakeInterpreter) Interpret(ctx context.Context, query string, bundle assistant.ContextBundle) models.IntentResult {
	f.bundles = append(f.bundles, bundle)
	return f.result
}

func (f *fakeInterpreter) Bundle() assistant.ContextBundle {
	return assistant.ContextBundle{Companies: []string{"Wells Fargo"}}
}

func (f *fakeInterpreter) Dataset() *dataset.Dataset {
	return dataset.Demo()
}

func newTestHandler(t *testing.T, fake *fakeInterpreter) *Handler {
	return NewHandler(&Config{Timeout: time.Second}, fake, NewTestLogger(t))
}

func TestParseInput(t *testing.T) {
	input, err := parseInput(`{"query":"  tesla  ","context":{"companies":["Tesla"]}}`)
	require.NoError(t, err)
	assert.Equal(t, "tesla", input.Query)
	require.NotNil(t, input.Context)
	assert.Equal(t, []string{"Tesla"}, input.Context.Companies)

	for _, vars := range []string{`{}`, `{"query":""}`, `{"query":"x","context":{"companies":"Tesla"}}`, `[`} {
		_, err := parseInput(vars)
		assert.Error(t, err, vars)
	}
}

func TestExecute_DefaultBundle(t *testing.T) {
	fake := &fakeInterpreter{result: models.IntentResult{
		Intent:     models.IntentSearchCompany,
		SearchTerm: "Wells Fargo",
		Answer:     "Showing Wells Fargo complaints.",
	}}

	out := newTestHandler(t, fake).Execute(context.Background(), &Input{Query: "wells fargo problems"})

	require.Len(t, fake.bundles, 1)
	assert.Equal(t, []string{"Wells Fargo"}, fake.bundles[0].Companies)
	assert.Equal(t, models.IntentSearchCompany, out.Intent)
	assert.Equal(t, "Wells Fargo", out.SearchTerm)
	assert.Equal(t, "Showing Wells Fargo complaints.", out.Answer)
	assert.Len(t, out.Local.Companies, 1)
	assert.False(t, out.Local.NoResults)
}

func TestExecute_ContextOverride(t *testing.T) {
	fake := &fakeInterpreter{result: models.DefaultIntent("x")}
	bundle := &assistant.ContextBundle{Sectors: []string{"Automotive"}}

	newTestHandler(t, fake).Execute(context.Background(), &Input{Query: "x", Context: bundle})

	require.Len(t, fake.bundles, 1)
	assert.Equal(t, *bundle, fake.bundles[0])
}

func TestExecute_FiltersRefineLocalResults(t *testing.T) {
	fake := &fakeInterpreter{result: models.IntentResult{
		Intent:     models.IntentSearchSector,
		SearchTerm: "automotive",
		Filters:    models.IntentFilters{Sector: "Automotive"},
		Answer:     "Automotive sector overview.",
	}}

	out := newTestHandler(t, fake).Execute(context.Background(), &Input{Query: "cars"})

	assert.Equal(t, models.IntentFilters{Sector: "Automotive"}, out.Filters)
	assert.NotEmpty(t, out.Local.Companies)
	for _, c := range out.Local.Companies {
		assert.Contains(t, c.Sector, "Automotive")
	}
}
