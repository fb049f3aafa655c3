package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consumer-portal/internal/agency/cfpb"
	"consumer-portal/internal/agency/cpsc"
	"consumer-portal/internal/agency/ftc"
	"consumer-portal/internal/agency/nhtsa"
	"consumer-portal/internal/assistant"
	commonhttp "consumer-portal/internal/common/http"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/dispatcher"
)

type stubGenerator struct{ answer string }

func (s stubGenerator) GenerateText(context.Context, string) (string, error) {
	return s.answer, nil
}

func agencyBackend(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/cfpb/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"1","_source":{"company":"WELLS FARGO"}}]}}`))
	})
	mux.HandleFunc("/ftc/dnc-complaints", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/nhtsa/recalls/recallsByVehicle", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"Make":"` + r.URL.Query().Get("make") + `","Component":"BRAKES","Summary":"brakes fail"}]}`))
	})
	mux.HandleFunc("/cpsc/Recall", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"RecallID":1,"Title":"Stroller"}]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestServer(t *testing.T, apiKey string) *Server {
	gin.SetMode(gin.TestMode)
	backend := agencyBackend(t)
	log := logger.NewTestLogger(t)
	hc := commonhttp.NewClient(2 * time.Second)

	cfpbClient := cfpb.NewClient(backend.URL+"/cfpb/", hc, log)
	ftcClient := ftc.NewClient(backend.URL+"/ftc", "", hc, log)
	ai := assistant.New(context.Background(), assistant.Config{APIKey: apiKey},
		assistant.WithGenerator(stubGenerator{answer: "Keep records of every charge."}))

	deps := Deps{
		Dispatcher: dispatcher.New(cfpbClient, ftcClient, ai, dispatcher.Config{}),
		Assistant:  ai,
		CFPB:       cfpbClient,
		NHTSA:      nhtsa.NewClient(backend.URL+"/nhtsa", hc, log),
		CPSC:       cpsc.NewClient(backend.URL+"/cpsc", hc, log),
		FTC:        ftcClient,
	}
	return NewServer(NewHandler(deps), ":0", log)
}

func do(t *testing.T, s *Server, method, target, body string) (int, map[string]interface{}) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func TestHealth(t *testing.T) {
	code, body := do(t, newTestServer(t, ""), http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "up", body["status"])
}

func TestSearch(t *testing.T) {
	s := newTestServer(t, "")

	code, body := do(t, s, http.MethodGet, "/api/v1/search", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])

	code, body = do(t, s, http.MethodGet, "/api/v1/search?q=Wells+Fargo", "")
	require.Equal(t, http.StatusOK, code)

	live := body["live"].(map[string]interface{})
	assert.Equal(t, true, live["cfpb"].(map[string]interface{})["success"])
	ftcRes := live["ftc"].(map[string]interface{})
	assert.Equal(t, false, ftcRes["success"])
	assert.Contains(t, ftcRes["error"], "503")

	intent := body["intent"].(map[string]interface{})
	assert.Equal(t, dispatcher.InterpretUnavailableAnswer, intent["answer"])

	local := body["local"].(map[string]interface{})
	assert.Len(t, local["companies"], 1)
	assert.Len(t, local["timeline"], 1)
}

func TestChat(t *testing.T) {
	code, body := do(t, newTestServer(t, ""), http.MethodPost, "/api/v1/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, assistant.ChatUnavailableMessage, body["answer"])
	assert.Equal(t, false, body["assistantAvailable"])

	s := newTestServer(t, "live-key")
	code, body = do(t, s, http.MethodPost, "/api/v1/chat", `{"message":"was I overcharged?"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Keep records of every charge.", body["answer"])

	code, _ = do(t, s, http.MethodPost, "/api/v1/chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDataset(t *testing.T) {
	code, body := do(t, newTestServer(t, ""), http.MethodGet, "/api/v1/dataset?sector=automotive&sort=recalls", "")
	require.Equal(t, http.StatusOK, code)

	result := body["result"].(map[string]interface{})
	companies := result["companies"].([]interface{})
	require.Len(t, companies, 3)
	assert.Equal(t, "Ford Motor Company", companies[0].(map[string]interface{})["name"])
	assert.NotNil(t, body["liveStats"])
}

func TestAgencyRoutes(t *testing.T) {
	s := newTestServer(t, "")

	code, body := do(t, s, http.MethodGet, "/api/v1/recalls/products?title=stroller", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["recordCount"])

	code, body = do(t, s, http.MethodGet, "/api/v1/recalls/products?from=2024-02-01&to=2024-01-01", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "validation", body["failureKind"])

	code, body = do(t, s, http.MethodGet, "/api/v1/recalls/vehicles?make=Ford&year=2020", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ford", body["data"].([]interface{})[0].(map[string]interface{})["Make"])

	code, _ = do(t, s, http.MethodGet, "/api/v1/recalls/vehicles?year=soon", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, s, http.MethodGet, "/api/v1/fraud?keyword=imposter", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Empty(t, body["data"])
}

func TestSources(t *testing.T) {
	code, body := do(t, newTestServer(t, "live-key"), http.MethodGet, "/api/v1/sources", "")
	require.Equal(t, http.StatusOK, code)

	agencies := body["agencies"].(map[string]interface{})
	assert.Equal(t, true, agencies["cfpb"])
	assert.Equal(t, false, agencies["ftc"])
	assert.Equal(t, true, agencies["cpsc"])
	assert.Equal(t, true, agencies["nhtsa"])
	assert.Equal(t, true, body["assistant"])
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/search", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
