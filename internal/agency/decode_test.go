package agency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cpscShapes = []Shape{ShapeArray, ShapeData, ShapeRecalls, ShapeRecall, ShapeEmpty, ShapeObject}

func TestDecodeJSON_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		shapes    []Shape
		wantShape string
		wantCount int
	}{
		{"array", `[{"RecallID":1},{"RecallID":2}]`, cpscShapes, "array", 2},
		{"data key", `{"data":[{"RecallID":1}]}`, cpscShapes, "data", 1},
		{"recalls key", `{"recalls":[{"RecallID":1},{"RecallID":2},{"RecallID":3}]}`, cpscShapes, "recalls", 3},
		{"single Recall object", `{"Recall":{"RecallID":9}}`, cpscShapes, "Recall", 1},
		{"bare object", `{"RecallID":7,"Title":"Stroller"}`, cpscShapes, "object", 1},
		{"empty array", `[]`, cpscShapes, "array", 0},
		{"empty object", `{}`, cpscShapes, "empty", 0},
		{"nhtsa results", `{"Count":1,"results":[{"NHTSACampaignNumber":"24V001"}]}`, []Shape{ShapeResults}, "results", 1},
		{"nhtsa capitalized", `{"Results":[{"Make":"FORD"}]}`, []Shape{ShapeResults}, "results", 1},
		{"non-object array items skipped", `[{"a":1},"x",2]`, []Shape{ShapeArray}, "array", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, shape, err := DecodeJSON([]byte(tt.body), tt.shapes...)
			require.NoError(t, err)
			assert.Equal(t, tt.wantShape, shape)
			assert.Len(t, records, tt.wantCount)
		})
	}
}

func TestDecodeJSON_BareObjectWrapped(t *testing.T) {
	records, _, err := DecodeJSON([]byte(`{"RecallID":7,"Title":"Stroller"}`), cpscShapes...)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Stroller", records[0].String("Title"))
	assert.Equal(t, float64(7), records[0]["RecallID"])
}

func TestDecodeJSON_Hits(t *testing.T) {
	body := `{"hits":{"total":{"value":2},"hits":[
		{"_id":"101","_source":{"complaint_id":"101","company":"WELLS FARGO"}},
		{"_id":"102","_source":{"company":"WELLS FARGO","product":"Mortgage"}}
	]}}`
	records, shape, err := DecodeJSON([]byte(body), ShapeHits, ShapeArray)
	require.NoError(t, err)

	assert.Equal(t, "hits", shape)
	require.Len(t, records, 2)
	assert.Equal(t, "101", records[0].String("complaint_id"))
	assert.Equal(t, "102", records[1].String("_id"))
	assert.Equal(t, "Mortgage", records[1].String("product"))
}

func TestDecodeJSON_Unrecognized(t *testing.T) {
	_, _, err := DecodeJSON([]byte(`{"meta":{"page":1}}`), ShapeData)
	assert.ErrorIs(t, err, ErrUnrecognizedShape)

	_, _, err = DecodeJSON([]byte(`"just a string"`), cpscShapes...)
	assert.ErrorIs(t, err, ErrUnrecognizedShape)
}

func TestDecodeJSON_Malformed(t *testing.T) {
	_, _, err := DecodeJSON([]byte(`{"data":[`), ShapeData)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnrecognizedShape)
}
