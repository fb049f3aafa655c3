package consumeradvice

import (
	"context"
	"encoding/json"
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
	TaskType = "consumer-advice"
)

type Advisor interface {
	ConsumerAdvice(ctx context.Context, question string, contextData interface{}) (string, error)
	AnalyzeComplaintTrends(ctx context.Context, company string, complaints []map[string]interface{}) (*models.TrendAnalysis, error)
	DetectFraudPatterns(ctx context.Context, complaints []map[string]interface{}) (string, error)
}

type Handler struct {
	config  *Config
	advisor Advisor
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
}

func NewHandler(config *Config, advisor Advisor, log logger.Logger) *Handler {
	l := log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:  config,
		advisor: advisor,
		errors:  apperrors.NewErrorHandler(l),
		logger:  l,
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
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func parseInput(variables string) (*Input, error) {
	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &vars); err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	if _, ok := vars["mode"]; !ok {
		vars["mode"] = ModeAdvice
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
	if input.Mode == "" {
		input.Mode = ModeAdvice
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	out := &Output{Mode: input.Mode}

	var err error
	switch input.Mode {
	case ModeTrends:
		out.Trends, err = h.advisor.AnalyzeComplaintTrends(ctx, input.Company, input.Complaints)
	case ModeFraud:
		out.Advice, err = h.advisor.DetectFraudPatterns(ctx, input.Complaints)
	case ModeAdvice:
		var contextData interface{}
		if input.Context != nil {
			contextData = input.Context
		}
		out.Advice, err = h.advisor.ConsumerAdvice(ctx, input.Question, contextData)
	default:
		return nil, apperrors.NewInvalidInputError("unknown mode: " + input.Mode)
	}
	if err != nil {
		return nil, err
	}

	h.logger.Info("assistant answered", map[string]interface{}{
		"mode":        out.Mode,
		"adviceChars": len(out.Advice),
	})
	return out, nil
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

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Normalize(err).Code)).Inc()
	h.errors.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
