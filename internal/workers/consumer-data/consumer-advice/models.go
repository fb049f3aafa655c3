package consumeradvice

import (
	"consumer-portal/internal/common/validation"
	"consumer-portal/internal/models"
)

const (
	ModeAdvice = "advice"
	ModeTrends = "trends"
	ModeFraud  = "fraud"
)

// Input selects one assistant operation; Mode defaults to advice. Question
// is required for advice, Company and Complaints for trends, Complaints for
// fraud.
type Input struct {
	Mode       string                   `json:"mode"`
	Question   string                   `json:"question"`
	Context    map[string]interface{}   `json:"context"`
	Company    string                   `json:"company"`
	Complaints []map[string]interface{} `json:"complaints"`
}

func InputSchema() validation.Schema {
	s := validation.Object(map[string]interface{}{
		"mode":     validation.String(ModeAdvice, ModeTrends, ModeFraud),
		"question": map[string]interface{}{"type": "string"},
		"context":  map[string]interface{}{"type": "object"},
		"company":  map[string]interface{}{"type": "string"},
		"complaints": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "object"},
		},
	})
	s["allOf"] = []interface{}{
		ifMode(ModeAdvice, "question"),
		ifMode(ModeTrends, "company", "complaints"),
		ifMode(ModeFraud, "complaints"),
	}
	return s
}

func ifMode(mode string, required ...string) map[string]interface{} {
	req := make([]interface{}, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]interface{}{
		"if": map[string]interface{}{
			"properties": map[string]interface{}{"mode": map[string]interface{}{"const": mode}},
			"required":   []interface{}{"mode"},
		},
		"then": map[string]interface{}{"required": req},
	}
}

type Output struct {
	Mode   string                `json:"mode"`
	Advice string                `json:"advice,omitempty"`
	Trends *models.TrendAnalysis `json:"trends,omitempty"`
}
