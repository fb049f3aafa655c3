package agency

import (
	"context"
	"errors"
	"time"

	apperrors "consumer-portal/internal/common/errors"
	commonhttp "consumer-portal/internal/common/http"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/common/metrics"
	"consumer-portal/internal/models"
)

// Fetcher runs the request pipeline for one agency: relay rewrite, the
// HTTP call, status check, decoding, metrics and logging. It turns every
// failure into a failure envelope.
type Fetcher struct {
	source models.Source
	client *commonhttp.Client
	logger logger.Logger
}

func NewFetcher(source models.Source, client *commonhttp.Client, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Fetcher{
		source: source,
		client: client,
		logger: log.With(map[string]interface{}{"source": string(source)}),
	}
}

func (f *Fetcher) Source() models.Source {
	return f.source
}

// Get performs the request. On failure the response is nil and the second
// return holds the failure envelope.
func (f *Fetcher) Get(ctx context.Context, target string, headers map[string]string) (*commonhttp.Response, *models.Result) {
	label := f.source.Label()
	resp, err := f.client.Get(ctx, target, headers)
	if err != nil {
		return nil, models.Failed(apperrors.NewAgencyTransportError(label, err))
	}
	if !resp.OK() {
		return nil, models.Failed(apperrors.NewAgencyStatusError(label, resp.StatusCode, resp.Status))
	}
	return resp, nil
}

// GetJSON fetches target and decodes it with the first matching shape.
func (f *Fetcher) GetJSON(ctx context.Context, target string, shapes ...Shape) *models.Result {
	return f.GetJSONFiltered(ctx, target, nil, shapes...)
}

// GetJSONFiltered is GetJSON with keep applied to the decoded records
// before the call is observed, so metrics and logs report the outcome the
// caller gets. A nil keep keeps everything.
func (f *Fetcher) GetJSONFiltered(ctx context.Context, target string, keep func(models.Record) bool, shapes ...Shape) *models.Result {
	start := time.Now()
	resp, failed := f.Get(ctx, target, map[string]string{"Accept": "application/json"})
	if failed != nil {
		return f.Observe(start, failed)
	}
	records, _, err := DecodeJSON(resp.Body, shapes...)
	res := f.FromDecode(records, err)
	if keep != nil {
		res = res.Filter(keep)
	}
	return f.Observe(start, res)
}

// FromDecode builds the envelope for a decode attempt.
func (f *Fetcher) FromDecode(records []models.Record, err error) *models.Result {
	label := f.source.Label()
	switch {
	case errors.Is(err, ErrUnrecognizedShape):
		return models.Failed(apperrors.NewUnrecognizedShapeError(label))
	case err != nil:
		return models.Failed(apperrors.NewAgencyDecodeError(label, err))
	default:
		return models.Succeeded(records)
	}
}

// Reject reports parameters refused before any request was made.
func (f *Fetcher) Reject(message string) *models.Result {
	return f.Observe(time.Now(), models.Failed(apperrors.NewValidationError(message)))
}

// Observe records metrics and logs for a finished call and returns res.
func (f *Fetcher) Observe(start time.Time, res *models.Result) *models.Result {
	outcome := res.Outcome()
	elapsed := time.Since(start)

	metrics.AgencyRequests.WithLabelValues(string(f.source), string(outcome)).Inc()
	if res.Kind != apperrors.KindValidation {
		metrics.AgencyRequestDuration.WithLabelValues(string(f.source)).Observe(elapsed.Seconds())
	}

	if outcome == models.OutcomeFailed {
		f.logger.Warn("agency call failed", map[string]interface{}{
			"failureKind": string(res.Kind),
			"error":       res.Error,
			"durationMs":  elapsed.Milliseconds(),
		})
		return res
	}
	f.logger.Debug("agency call completed", map[string]interface{}{
		"outcome":    string(outcome),
		"records":    res.RecordCount,
		"durationMs": elapsed.Milliseconds(),
	})
	return res
}

// Ping reports whether target answers with a 2xx status.
func (f *Fetcher) Ping(ctx context.Context, target string) bool {
	resp, err := f.client.Get(ctx, target, nil)
	return err == nil && resp.OK()
}
