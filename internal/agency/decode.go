// Package agency holds what the four agency clients share: the request
// pipeline, response-shape decoders and XML conversion.
package agency

import (
	"encoding/json"
	"errors"

	"consumer-portal/internal/models"
)

// Shape recognizes one response layout and extracts its records.
type Shape struct {
	Name   string
	decode func(v interface{}) ([]models.Record, bool)
}

var (
	// ShapeArray matches a top-level JSON array of objects.
	ShapeArray = Shape{Name: "array", decode: func(v interface{}) ([]models.Record, bool) {
		arr, ok := v.([]interface{})
		if !ok {
			return nil, false
		}
		return objects(arr), true
	}}

	ShapeData    = keyShape("data")
	ShapeRecalls = keyShape("recalls")
	ShapeRecall  = keyShape("Recall")
	ShapeResults = keyShape("results", "Results")

	// ShapeHits matches an Elasticsearch response. Each record is the hit's
	// _source with _id copied in.
	ShapeHits = Shape{Name: "hits", decode: func(v interface{}) ([]models.Record, bool) {
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		outer, ok := obj["hits"].(map[string]interface{})
		if !ok {
			return nil, false
		}
		hits, ok := outer["hits"].([]interface{})
		if !ok {
			return nil, false
		}
		records := make([]models.Record, 0, len(hits))
		for _, h := range hits {
			hit, ok := h.(map[string]interface{})
			if !ok {
				continue
			}
			src, ok := hit["_source"].(map[string]interface{})
			if !ok {
				records = append(records, models.Record(hit))
				continue
			}
			rec := make(models.Record, len(src)+1)
			for k, val := range src {
				rec[k] = val
			}
			if id, ok := hit["_id"]; ok {
				if _, exists := rec["_id"]; !exists {
					rec["_id"] = id
				}
			}
			records = append(records, rec)
		}
		return records, true
	}}

	// ShapeEmpty matches an object with no fields besides "@attributes",
	// such as an empty XML collection. It yields no records.
	ShapeEmpty = Shape{Name: "empty", decode: func(v interface{}) ([]models.Record, bool) {
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		for k := range obj {
			if k != "@attributes" {
				return nil, false
			}
		}
		return []models.Record{}, true
	}}

	// ShapeObject wraps a bare object as a one-element list. List it last.
	ShapeObject = Shape{Name: "object", decode: func(v interface{}) ([]models.Record, bool) {
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		return []models.Record{obj}, true
	}}
)

// keyShape matches an object holding its records under one of keys, either
// as an array or as a single object.
func keyShape(keys ...string) Shape {
	return Shape{Name: keys[0], decode: func(v interface{}) ([]models.Record, bool) {
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		for _, k := range keys {
			switch inner := obj[k].(type) {
			case []interface{}:
				return objects(inner), true
			case map[string]interface{}:
				return []models.Record{inner}, true
			}
		}
		return nil, false
	}}
}

func objects(arr []interface{}) []models.Record {
	records := make([]models.Record, 0, len(arr))
	for _, item := range arr {
		if obj, ok := item.(map[string]interface{}); ok {
			records = append(records, obj)
		}
	}
	return records
}

// ErrUnrecognizedShape is returned by DecodeValue when no shape matches.
var ErrUnrecognizedShape = errors.New("unrecognized response shape")

// DecodeValue runs shapes in order against an already parsed document and
// returns the records of the first match with its name.
func DecodeValue(v interface{}, shapes ...Shape) ([]models.Record, string, error) {
	for _, s := range shapes {
		if records, ok := s.decode(v); ok {
			return records, s.Name, nil
		}
	}
	return nil, "", ErrUnrecognizedShape
}

// DecodeJSON parses body and runs DecodeValue. Parse errors are returned
// as-is so callers can tell decode failures from shape mismatches.
func DecodeJSON(body []byte, shapes ...Shape) ([]models.Record, string, error) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, "", err
	}
	return DecodeValue(v, shapes...)
}
