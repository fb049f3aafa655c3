package queryvehiclerecalls

import (
	"consumer-portal/internal/common/validation"
	"consumer-portal/internal/models"
)

// Input picks the lookup: by make when Make is set, by keyword when Keyword
// is set, otherwise every recall of ModelYear. ModelYear 0 is the current year.
type Input struct {
	Make      string `json:"make,omitempty"`
	Keyword   string `json:"keyword,omitempty"`
	ModelYear int    `json:"modelYear,omitempty"`
}

func InputSchema() validation.Schema {
	return validation.Object(map[string]interface{}{
		"make":      map[string]interface{}{"type": "string"},
		"keyword":   map[string]interface{}{"type": "string"},
		"modelYear": validation.Integer(0),
	})
}

type Output struct {
	Recalls *models.Result `json:"vehicleRecalls"`
	Outcome models.Outcome `json:"vehicleRecallsOutcome"`
	Lookup  string         `json:"vehicleRecallsLookup"`
}

const (
	LookupMake    = "make"
	LookupKeyword = "keyword"
	LookupYear    = "year"
)

