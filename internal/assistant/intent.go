package assistant

import (
	"encoding/json"
	"fmt"

	"consumer-portal/internal/common/validation"
	"consumer-portal/internal/models"
)

var optionalString = map[string]interface{}{"type": []interface{}{"string", "null"}}

func intentSchema() validation.Schema {
	values := make([]string, len(models.Intents))
	for i, v := range models.Intents {
		values[i] = string(v)
	}
	return validation.Object(map[string]interface{}{
		"intent":     validation.String(values...),
		"searchTerm": optionalString,
		"filters": map[string]interface{}{
			"type": []interface{}{"object", "null"},
			"properties": map[string]interface{}{
				"sector":   optionalString,
				"severity": optionalString,
				"source":   optionalString,
			},
		},
		"answer": validation.String(),
	}, "intent", "answer")
}

// ParseIntent extracts the JSON object from a model answer and checks it
// against the intent schema.
func ParseIntent(text string) (models.IntentResult, error) {
	match := jsonObject.FindString(text)
	if match == "" {
		return models.IntentResult{}, fmt.Errorf("no JSON object in answer")
	}

	result, err := validation.ValidateJSON(intentSchema(), match)
	if err != nil {
		return models.IntentResult{}, err
	}
	if !result.Valid {
		return models.IntentResult{}, fmt.Errorf("intent does not match schema: %s", result.Summary())
	}

	var intent models.IntentResult
	if err := json.Unmarshal([]byte(match), &intent); err != nil {
		return models.IntentResult{}, err
	}
	return intent, nil
}
