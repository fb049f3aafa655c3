// Package consumerdata lists the consumer-data job workers for the
// activity registry.
package consumerdata

import (
	"consumer-portal/internal/common/config"
	apperrors "consumer-portal/internal/common/errors"
	"consumer-portal/pkg/registry"

	ca "consumer-portal/internal/workers/consumer-data/consumer-advice"
	iq "consumer-portal/internal/workers/consumer-data/interpret-query"
	qpr "consumer-portal/internal/workers/consumer-data/query-product-recalls"
	qvr "consumer-portal/internal/workers/consumer-data/query-vehicle-recalls"
	sld "consumer-portal/internal/workers/consumer-data/search-live-data"
)

const (
	Category        = "consumer-data"
	CatalogVersion  = "1.0.0"
	activityVersion = "1.0.0"
)

func codes(cs ...apperrors.ErrorCode) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

func retries(cs ...apperrors.ErrorCode) int {
	most := 0
	for _, c := range cs {
		if n := apperrors.GetRetryCount(c); n > most {
			most = n
		}
	}
	return most
}

// Activities describes every worker with its default timeout.
func Activities() []registry.Activity {
	none := config.WorkerConfig{}
	adviceErrors := []apperrors.ErrorCode{
		apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeAssistantUnavailable,
		apperrors.ErrCodeAssistantFailed,
		apperrors.ErrCodeAssistantTimeout,
	}

	return []registry.Activity{
		{
			ID:          sld.TaskType,
			DisplayName: "Search Live Data",
			Description: "Searches CFPB complaints and FTC fraud reports concurrently, falls back to Gemini guidance and adds demo dataset hits",
			TaskType:    sld.TaskType,
			InputSchema: sld.InputSchema(),
			OutputKeys:  []string{"searchId", "sourceOutcomes", "liveEntries", "usedFallback", "fallbackError", "intent", "localResults", "capturedAt"},
			ErrorCodes:  codes(apperrors.ErrCodeInvalidInput),
			Timeout:     sld.LoadConfig(none).Timeout.String(),
			Tags:        []string{"cfpb", "ftc", "gemini"},
		},
		{
			ID:          iq.TaskType,
			DisplayName: "Interpret Query",
			Description: "Classifies a natural-language query with Gemini and refines the demo dataset with the returned filters",
			TaskType:    iq.TaskType,
			InputSchema: iq.InputSchema(),
			OutputKeys:  []string{"intent", "searchTerm", "filters", "answer", "localResults"},
			ErrorCodes:  codes(apperrors.ErrCodeInvalidInput),
			Timeout:     iq.LoadConfig(none).Timeout.String(),
			Tags:        []string{"gemini", "dataset"},
		},
		{
			ID:          ca.TaskType,
			DisplayName: "Consumer Advice",
			Description: "Answers a consumer question, analyzes complaint trends or detects fraud patterns with Gemini",
			TaskType:    ca.TaskType,
			InputSchema: ca.InputSchema(),
			OutputKeys:  []string{"mode", "advice", "trends"},
			ErrorCodes:  codes(adviceErrors...),
			Timeout:     ca.LoadConfig(none).Timeout.String(),
			Retries:     retries(adviceErrors...),
			Tags:        []string{"gemini"},
		},
		{
			ID:          qpr.TaskType,
			DisplayName: "Query Product Recalls",
			Description: "Looks up CPSC product recalls by filters or a preset and returns the result envelope",
			TaskType:    qpr.TaskType,
			InputSchema: qpr.InputSchema(),
			OutputKeys:  []string{"productRecalls", "productRecallsOutcome"},
			ErrorCodes:  codes(apperrors.ErrCodeInvalidInput),
			Timeout:     qpr.LoadConfig(none).Timeout.String(),
			Tags:        []string{"cpsc"},
		},
		{
			ID:          qvr.TaskType,
			DisplayName: "Query Vehicle Recalls",
			Description: "Looks up NHTSA vehicle recalls by make, keyword or model year and returns the result envelope",
			TaskType:    qvr.TaskType,
			InputSchema: qvr.InputSchema(),
			OutputKeys:  []string{"vehicleRecalls", "vehicleRecallsOutcome", "vehicleRecallsLookup"},
			ErrorCodes:  codes(apperrors.ErrCodeInvalidInput),
			Timeout:     qvr.LoadConfig(none).Timeout.String(),
			Tags:        []string{"nhtsa"},
		},
	}
}

// Registry wraps Activities with the category and version stamped in.
func Registry() *registry.ActivityRegistry {
	activities := Activities()
	for i := range activities {
		activities[i].Category = Category
		activities[i].Version = activityVersion
	}
	return registry.New(CatalogVersion, activities)
}
