package queryvehiclerecalls

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "consumer-portal/internal/common/errors"
	"consumer-portal/internal/common/logger"
	"consumer-portal/internal/common/metrics"
	"consumer-portal/internal/common/validation"
	"consumer-portal/internal/models"
)

const (
	TaskType = "query-vehicle-recalls"
)

type RecallLookup interface {
	GetRecallsByMake(ctx context.Context, vehicleMake string, modelYear int) *models.Result
	GetRecentRecalls(ctx context.Context, modelYear int) *models.Result
	SearchRecalls(ctx context.Context, keyword string) *models.Result
}

type Handler struct {
	config *Config
	lookup RecallLookup
	errors *apperrors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, lookup RecallLookup, log logger.Logger) *Handler {
	l := log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		lookup: lookup,
		errors: apperrors.NewErrorHandler(l),
		logger: l,
	}
}

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
	input.Make = strings.TrimSpace(input.Make)
	input.Keyword = strings.TrimSpace(input.Keyword)
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	out := &Output{}
	switch {
	case input.Make != "":
		out.Lookup = LookupMake
		out.Recalls = h.lookup.GetRecallsByMake(ctx, input.Make, input.ModelYear)
	case input.Keyword != "":
		out.Lookup = LookupKeyword
		out.Recalls = h.lookup.SearchRecalls(ctx, input.Keyword)
	default:
		out.Lookup = LookupYear
		out.Recalls = h.lookup.GetRecentRecalls(ctx, input.ModelYear)
	}
	out.Outcome = out.Recalls.Outcome()

	h.logger.Info("vehicle recall lookup finished", map[string]interface{}{
		"lookup":  out.Lookup,
		"outcome": string(out.Outcome),
		"records": out.Recalls.RecordCount,
	})
	return out
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.WithError(err).Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.WithError(err).Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	return h.execute(ctx, input)
}
