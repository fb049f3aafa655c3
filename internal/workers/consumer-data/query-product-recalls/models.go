package queryproductrecalls

import (
	"consumer-portal/internal/agency/cpsc"
	"consumer-portal/internal/common/validation"
	"consumer-portal/internal/models"
)

const (
	PresetRecent        = "recent"
	PresetStrollerPinch = "stroller_pinch"
)

// Input embeds the Recall filters; Preset replaces them with one of the
// canned queries.
type Input struct {
	cpsc.QueryParams
	Preset string `json:"preset,omitempty"`
}

func InputSchema() validation.Schema {
	str := map[string]interface{}{"type": "string"}
	return validation.Object(map[string]interface{}{
		"preset":          validation.String(PresetRecent, PresetStrollerPinch),
		"recallTitle":     str,
		"hazard":          str,
		"recallDateStart": str,
		"recallDateEnd":   str,
		"recallNumber":    str,
		"recallId":        validation.Integer(0),
		"manufacturer":    str,
		"productType":     str,
		"format":          validation.String(cpsc.FormatJSON, cpsc.FormatXML),
	})
}

type Output struct {
	Recalls *models.Result `json:"productRecalls"`
	Outcome models.Outcome `json:"productRecallsOutcome"`
}
