package searchlivedata

import (
	"time"

	"consumer-portal/internal/common/validation"
	"consumer-portal/internal/dataset"
	"consumer-portal/internal/dispatcher"
	"consumer-portal/internal/models"
)

type Input struct {
	Query string `json:"query"`
}

func InputSchema() validation.Schema {
	return validation.Object(map[string]interface{}{
		"query": validation.NonEmptyString(),
	}, "query")
}

type Output struct {
	SearchID      string                           `json:"searchId"`
	Outcomes      map[models.Source]models.Outcome `json:"sourceOutcomes"`
	Entries       []dispatcher.Entry               `json:"liveEntries"`
	Fallback      bool                             `json:"usedFallback"`
	FallbackError string                           `json:"fallbackError,omitempty"`
	Intent        models.IntentResult              `json:"intent"`
	Local         dataset.SearchResult             `json:"localResults"`
	CapturedAt    time.Time                        `json:"capturedAt"`
}
