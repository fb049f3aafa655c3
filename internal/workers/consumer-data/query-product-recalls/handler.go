package queryproductrecalls

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"consumer-portal/internal/agency/cpsc"
	apperrors "consumer-portal/internal/common/errors"
	"consumer-portal/internal/common/metrics"
	"consumer-portal/internal/common/validation"
	"consumer-portal/internal/models"
)

const (
	TaskType = "query-product-recalls"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type RecallQuerier interface {
	QueryRecalls(ctx context.Context, params cpsc.QueryParams) *models.Result
	GetRecentRecalls(ctx context.Context) *models.Result
	GetStrollerPinchHazards(ctx context.Context) *models.Result
}

type Handler struct {
	config  *Config
	querier RecallQuerier
	errors  *apperrors.ErrorHandler
	logger  Logger
}

func NewHandler(config *Config, querier RecallQuerier, log Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:  config,
		querier: querier,
		errors:  apperrors.NewErrorHandler(l),
		logger:  l,
	}
}

// Handle completes the job with the result envelope even when CPSC fails;
// the process branches on productRecallsOutcome. Only unreadable job
// variables fail the job.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Normalize(err).Code)).Inc()
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	output := h.execute(ctx, input)
	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func parseInput(variables string) (*Input, error) {
	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &vars); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	result, err := validation.Validate(InputSchema(), vars)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidInputError(result.Summary())
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	var res *models.Result
	switch input.Preset {
	case PresetRecent:
		res = h.querier.GetRecentRecalls(ctx)
	case PresetStrollerPinch:
		res = h.querier.GetStrollerPinchHazards(ctx)
	default:
		res = h.querier.QueryRecalls(ctx, input.QueryParams)
	}

	out := &Output{Recalls: res, Outcome: res.Outcome()}
	if out.Outcome == models.OutcomeFailed {
		h.logger.Warn("product recall lookup failed", map[string]interface{}{
			"error":       res.Error,
			"failureKind": string(res.Kind),
		})
	}
	return out
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	return h.execute(ctx, input)
}
