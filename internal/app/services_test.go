package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"consumer-portal/internal/common/config"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/models"
)

func TestNewServices_RoutesAgenciesToConfiguredURLs(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "consumer-portal-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.HTTP.UserAgent = "consumer-portal-test"
	cfg.Assistant.APIKey = ""
	cfg.HTTP.RelayPrefix = ""
	cfg.Agencies.CFPB.BaseURL = server.URL + "/cfpb/"
	cfg.Agencies.FTC.BaseURL = server.URL + "/ftc"
	cfg.Agencies.CPSC.BaseURL = server.URL + "/cpsc"
	cfg.Agencies.NHTSA.BaseURL = server.URL + "/nhtsa"

	s := NewServices(context.Background(), cfg, logger.NewTestLogger(t), nil)
	require.NotNil(t, s.Dispatcher)
	assert.False(t, s.Assistant.IsAvailable())

	res := s.Dispatcher.Search(context.Background(), "acme")
	assert.Equal(t, models.OutcomeNoMatch, res.CFPB.Outcome())
	assert.Equal(t, models.OutcomeNoMatch, res.FTC.Outcome())
	assert.Nil(t, res.Fallback)

	assert.Equal(t, models.OutcomeNoMatch, s.CPSC.GetRecallsByHazard(context.Background(), "fire").Outcome())
	assert.Equal(t, int32(3), hits.Load())

	deps := s.APIDeps()
	assert.Same(t, s.Dispatcher, deps.Dispatcher)
	assert.Same(t, s.CPSC, deps.CPSC)
}

func TestNewServices_ComponentFieldSetOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Assistant.APIKey = ""
	cfg.HTTP.RelayPrefix = ""
	cfg.Agencies.CFPB.BaseURL = server.URL
	cfg.Agencies.FTC.BaseURL = server.URL

	core, logs := observer.New(zapcore.DebugLevel)
	s := NewServices(context.Background(), cfg, logger.NewZapAdapter(zap.New(core)), nil)
	s.Dispatcher.Search(context.Background(), "acme")

	components := map[string]bool{}
	for _, entry := range logs.All() {
		var n int
		for _, f := range entry.Context {
			if f.Key == "component" {
				n++
				components[f.String] = true
			}
		}
		assert.LessOrEqual(t, n, 1, "entry %q", entry.Message)
	}
	assert.True(t, components["assistant"])
	assert.True(t, components["dispatcher"])
}
