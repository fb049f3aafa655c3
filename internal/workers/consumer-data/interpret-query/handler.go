package interpretquery

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"consumer-portal/internal/assistant"
	apperrors "consumer-portal/internal/common/errors"
	"consumer-portal/internal/common/metrics"
	"consumer-portal/internal/common/validation"
	"consumer-portal/internal/dataset"
	"consumer-portal/internal/models"
)

const (
	TaskType = "interpret-query"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Interpreter interface {
	Interpret(ctx context.Context, query string, bundle assistant.ContextBundle) models.IntentResult
	Bundle() assistant.ContextBundle
	Dataset() *dataset.Dataset
}

type Handler struct {
	config      *Config
	interpreter Interpreter
	errors      *apperrors.ErrorHandler
	logger      Logger
}

func NewHandler(config *Config, interpreter Interpreter, log Logger) *Handler {
	l := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:      config,
		interpreter: interpreter,
		errors:      apperrors.NewErrorHandler(l),
		logger:      l,
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
	input.Query = strings.TrimSpace(input.Query)
	return &input, nil
}

// execute always produces an intent: the assistant degrades to the default
// one, so the job completes even when Gemini is down.
func (h *Handler) execute(ctx context.Context, input *Input) *Output {
	bundle := h.interpreter.Bundle()
	if input.Context != nil {
		bundle = *input.Context
	}

	intent := h.interpreter.Interpret(ctx, input.Query, bundle)
	local := dataset.Refine(h.interpreter.Dataset().Search(intent.SearchTerm), intent.Filters)

	h.logger.Info("query interpreted", map[string]interface{}{
		"intent":     string(intent.Intent),
		"searchTerm": intent.SearchTerm,
		"noResults":  local.NoResults,
	})

	return &Output{
		Intent:     intent.Intent,
		SearchTerm: intent.SearchTerm,
		Filters:    intent.Filters,
		Answer:     intent.Answer,
		Local:      local,
	}
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
