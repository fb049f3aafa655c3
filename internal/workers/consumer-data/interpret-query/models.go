package interpretquery

import (
	"consumer-portal/internal/assistant"
	"consumer-portal/internal/common/validation"
	"consumer-portal/internal/dataset"
	"consumer-portal/internal/models"
)

// Input carries the query and an optional entity bundle; the portal's own
// companies, sectors and sources are used when Context is absent.
type Input struct {
	Query   string                   `json:"query"`
	Context *assistant.ContextBundle `json:"context,omitempty"`
}

func InputSchema() validation.Schema {
	list := map[string]interface{}{
		"type":  "array",
		"items": map[string]interface{}{"type": "string"},
	}
	return validation.Object(map[string]interface{}{
		"query": validation.NonEmptyString(),
		"context": validation.Object(map[string]interface{}{
			"companies": list,
			"sectors":   list,
			"sources":   list,
		}),
	}, "query")
}

type Output struct {
	Intent     models.Intent        `json:"intent"`
	SearchTerm string               `json:"searchTerm"`
	Filters    models.IntentFilters `json:"filters"`
	Answer     string               `json:"answer"`
	Local      dataset.SearchResult `json:"localResults"`
}
