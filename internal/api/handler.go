package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"consumer-portal/internal/agency/cfpb"
	"consumer-portal/internal/agency/cpsc"
	"consumer-portal/internal/agency/ftc"
	"consumer-portal/internal/agency/nhtsa"
	"consumer-portal/internal/assistant"
	"consumer-portal/internal/dataset"
	"consumer-portal/internal/dispatcher"
	"consumer-portal/internal/models"
)

const probeTimeout = 5 * time.Second

// Deps are the clients behind the API. All fields are required.
type Deps struct {
	Dispatcher *dispatcher.Dispatcher
	Assistant  *assistant.Client
	CFPB       *cfpb.Client
	NHTSA      *nhtsa.Client
	CPSC       *cpsc.Client
	FTC        *ftc.Client
}

type Handler struct {
	deps Deps
}

func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "up",
		"service": "consumer-portal",
		"time":    time.Now().UTC(),
	})
}

// Sources probes every agency concurrently.
func (h *Handler) Sources(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()
	c.JSON(http.StatusOK, ProbeAgencies(ctx, h.deps))
}

// SourceStatus is the reachability of each agency and whether the
// assistant has a credential.
type SourceStatus struct {
	Agencies  map[models.Source]bool `json:"agencies"`
	Assistant bool                   `json:"assistant"`
}

// ProbeAgencies pings every agency concurrently.
func ProbeAgencies(ctx context.Context, deps Deps) SourceStatus {
	probes := map[models.Source]func(context.Context) bool{
		models.SourceCFPB:  deps.CFPB.IsAvailable,
		models.SourceNHTSA: deps.NHTSA.IsAvailable,
		models.SourceCPSC:  deps.CPSC.IsAvailable,
		models.SourceFTC:   deps.FTC.IsAvailable,
	}

	var mu sync.Mutex
	status := make(map[models.Source]bool, len(probes))
	var g errgroup.Group
	for source, probe := range probes {
		g.Go(func() error {
			ok := probe(ctx)
			mu.Lock()
			status[source] = ok
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return SourceStatus{Agencies: status, Assistant: deps.Assistant.IsAvailable()}
}

func (h *Handler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		badRequest(c, "query parameter q is required")
		return
	}
	c.JSON(http.StatusOK, h.deps.Dispatcher.Run(c.Request.Context(), q))
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat always answers 200; model problems come back as a readable message.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		badRequest(c, "message is required")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answer":             h.deps.Assistant.Chat(c.Request.Context(), req.Message),
		"assistantAvailable": h.deps.Assistant.IsAvailable(),
	})
}

func (h *Handler) Dataset(c *gin.Context) {
	data := h.deps.Dispatcher.Dataset()
	res := data.SearchFiltered(
		strings.TrimSpace(c.Query("q")),
		c.DefaultQuery("sector", dataset.AllSectors),
		dataset.ParseSortKey(c.Query("sort")),
	)
	c.JSON(http.StatusOK, gin.H{
		"liveStats": data.Stats,
		"result":    res,
	})
}

func (h *Handler) ProductRecalls(c *gin.Context) {
	params := cpsc.QueryParams{
		RecallTitle:     c.Query("title"),
		Hazard:          c.Query("hazard"),
		RecallDateStart: c.Query("from"),
		RecallDateEnd:   c.Query("to"),
		Manufacturer:    c.Query("manufacturer"),
		ProductType:     c.Query("productType"),
		Format:          c.Query("format"),
	}
	c.JSON(http.StatusOK, h.deps.CPSC.QueryRecalls(c.Request.Context(), params))
}

// VehicleRecalls looks up by make when given, else by keyword, else lists
// the model year.
func (h *Handler) VehicleRecalls(c *gin.Context) {
	year, ok := intQuery(c, "year")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	vehicleMake := strings.TrimSpace(c.Query("make"))
	keyword := strings.TrimSpace(c.Query("keyword"))

	var res *models.Result
	switch {
	case vehicleMake != "":
		res = h.deps.NHTSA.GetRecallsByMake(ctx, vehicleMake, year)
	case keyword != "":
		res = h.deps.NHTSA.SearchRecalls(ctx, keyword)
	default:
		res = h.deps.NHTSA.GetRecentRecalls(ctx, year)
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Fraud(c *gin.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.deps.FTC.SearchFraudReports(c.Request.Context(), c.Query("keyword"), limit))
}

// intQuery parses an optional integer parameter, answering 400 on garbage.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name+" must be an integer")
		return 0, false
	}
	return n, true
}
