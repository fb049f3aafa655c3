// Package dispatcher fans a search out to the agency clients, merges the
// envelopes and falls back to the assistant when no agency matched.
package dispatcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"consumer-portal/internal/assistant"
	"consumer-portal/internal/common/config"
	apperrors "consumer-portal/internal/common/errors"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/common/metrics"
	"consumer-portal/internal/common/observability"
	"consumer-portal/internal/dataset"
	"consumer-portal/internal/models"
)

const (
	DefaultTimeout       = 15 * time.Second
	DefaultBranchTimeout = 10 * time.Second
	DefaultSearchLimit   = 10

	// InterpretUnavailableAnswer is shown when interpretation has no model.
	InterpretUnavailableAnswer = "AI search requires Gemini API key. Using standard search."
)

type ComplaintSearcher interface {
	SearchComplaints(ctx context.Context, company string, limit int) *models.Result
}

type FraudSearcher interface {
	SearchFraudReports(ctx context.Context, keyword string, limit int) *models.Result
}

// Assistant is the subset of *assistant.Client the dispatcher uses.
type Assistant interface {
	IsAvailable() bool
	InterpretQuery(ctx context.Context, query string, bundle assistant.ContextBundle) models.IntentResult
	ConsumerAdvice(ctx context.Context, question string, contextData interface{}) (string, error)
}

type Config struct {
	Timeout       time.Duration
	BranchTimeout time.Duration
	SearchLimit   int
}

func FromConfig(c config.DispatcherConfig) Config {
	return Config{
		Timeout:       config.GetDuration(c.Timeout),
		BranchTimeout: config.GetDuration(c.BranchTimeout),
		SearchLimit:   c.SearchLimit,
	}
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.BranchTimeout <= 0 {
		c.BranchTimeout = DefaultBranchTimeout
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = DefaultSearchLimit
	}
	return c
}

type Dispatcher struct {
	cfpb      ComplaintSearcher
	ftc       FraudSearcher
	assistant Assistant
	data      *dataset.Dataset
	cfg       Config
	obs       *observability.Observability
	logger    logger.Logger
	now       func() time.Time
}

type Option func(*Dispatcher)

func WithDataset(d *dataset.Dataset) Option {
	return func(disp *Dispatcher) {
		if d != nil {
			disp.data = d
		}
	}
}

func WithObservability(o *observability.Observability) Option {
	return func(d *Dispatcher) { d.obs = o }
}

func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// New wires the dispatcher. ai may be nil, which disables fallback and
// interpretation.
func New(cfpb ComplaintSearcher, ftc FraudSearcher, ai Assistant, cfg Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfpb:      cfpb,
		ftc:       ftc,
		assistant: ai,
		data:      dataset.Demo(),
		cfg:       cfg.withDefaults(),
		logger:    logger.NewNoOpLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(map[string]interface{}{"component": "dispatcher"})
	return d
}

func (d *Dispatcher) assistantAvailable() bool {
	return d.assistant != nil && d.assistant.IsAvailable()
}

// Search queries CFPB and FTC concurrently and waits for both. One branch
// failing never cancels the other. It never returns nil.
func (d *Dispatcher) Search(ctx context.Context, query string) *CombinedResult {
	start := time.Now()
	q := strings.TrimSpace(query)
	res := &CombinedResult{
		ID:         uuid.NewString(),
		Query:      q,
		CapturedAt: d.now().UTC(),
	}

	if q == "" {
		res.CFPB = models.Failed(apperrors.NewValidationError("search query is required"))
		res.FTC = models.Failed(apperrors.NewValidationError("search query is required"))
		d.obs.RecordSearch(ctx, "invalid", time.Since(start))
		return res
	}

	fanCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(fanCtx)
	g.Go(func() error {
		res.CFPB = d.branch(gctx, models.SourceCFPB, func(bctx context.Context) *models.Result {
			return d.cfpb.SearchComplaints(bctx, q, d.cfg.SearchLimit)
		})
		return nil
	})
	g.Go(func() error {
		res.FTC = d.branch(gctx, models.SourceFTC, func(bctx context.Context) *models.Result {
			return d.ftc.SearchFraudReports(bctx, q, d.cfg.SearchLimit)
		})
		return nil
	})
	_ = g.Wait()

	outcome := "matched"
	if !res.AnyMatched() {
		outcome = "empty"
		if d.assistantAvailable() {
			d.fallback(ctx, res)
			if res.Fallback != nil {
				outcome = "fallback"
			}
		}
	}

	d.obs.RecordSearch(ctx, outcome, time.Since(start))
	d.logger.Info("search dispatched", map[string]interface{}{
		"searchId":   res.ID,
		"cfpb":       string(res.CFPB.Outcome()),
		"ftc":        string(res.FTC.Outcome()),
		"outcome":    outcome,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return res
}

// branch runs one agency call under the branch timeout and turns a panic
// or nil envelope into a failure.
func (d *Dispatcher) branch(ctx context.Context, source models.Source, call func(context.Context) *models.Result) (res *models.Result) {
	bctx, cancel := context.WithTimeout(ctx, d.cfg.BranchTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("agency branch panicked", map[string]interface{}{
				"source": string(source),
				"panic":  fmt.Sprint(r),
			})
			res = models.Failed(apperrors.NewAgencyTransportError(source.Label(), fmt.Errorf("panic: %v", r)))
		}
	}()

	res = call(bctx)
	if res == nil {
		res = models.Failed(apperrors.NewAgencyTransportError(source.Label(), fmt.Errorf("no result")))
	}
	return res
}

func (d *Dispatcher) fallback(ctx context.Context, res *CombinedResult) {
	question := fmt.Sprintf("I'm searching for information about %s. Can you provide general consumer protection guidance?", res.Query)
	answer, err := d.assistant.ConsumerAdvice(ctx, question, map[string]interface{}{"searchQuery": res.Query})
	if err != nil {
		res.FallbackError = err.Error()
		d.logger.Warn("fallback advice failed", map[string]interface{}{"searchId": res.ID, "error": err.Error()})
		return
	}
	if strings.TrimSpace(answer) == "" {
		res.FallbackError = "assistant returned an empty answer"
		return
	}
	metrics.DispatcherFallbacks.Inc()
	res.Fallback = &models.IntentResult{
		Intent:     models.IntentFallback,
		SearchTerm: res.Query,
		Answer:     answer,
	}
}

// Interpret runs the structured-intent path. An empty query gets the
// default intent, and without an assistant it returns the standard-search
// notice. Neither case makes a model call.
func (d *Dispatcher) Interpret(ctx context.Context, query string, bundle assistant.ContextBundle) models.IntentResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.DefaultIntent(query)
	}
	if !d.assistantAvailable() {
		return models.IntentResult{
			Intent:     models.IntentGeneralQuery,
			SearchTerm: query,
			Answer:     InterpretUnavailableAnswer,
		}
	}
	return d.assistant.InterpretQuery(ctx, query, bundle)
}

// Bundle lists the demo dataset's entities for interpretation prompts.
func (d *Dispatcher) Bundle() assistant.ContextBundle {
	return assistant.ContextBundle{
		Companies: d.data.CompanyNames(),
		Sectors:   d.data.SectorNames(),
		Sources: []string{
			models.SourceCFPB.Label(),
			models.SourceNHTSA.Label(),
			models.SourceCPSC.Label(),
			models.SourceFTC.Label(),
		},
	}
}

// Dataset returns the local dataset used by Run.
func (d *Dispatcher) Dataset() *dataset.Dataset {
	return d.data
}

// Run performs the live search and interpretation concurrently, then
// searches the local dataset refined by the intent's filter hints.
func (d *Dispatcher) Run(ctx context.Context, query string) *Report {
	rep := &Report{}

	var g errgroup.Group
	g.Go(func() error {
		rep.Live = d.Search(ctx, query)
		return nil
	})
	g.Go(func() error {
		rep.Intent = d.Interpret(ctx, strings.TrimSpace(query), d.Bundle())
		return nil
	})
	_ = g.Wait()

	rep.Local = dataset.Refine(d.data.Search(strings.TrimSpace(query)), rep.Intent.Filters)
	return rep
}
