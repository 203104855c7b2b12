package domain

import (
	"encoding/json"
	"fmt"
)

// Detection is one categorization verdict: a category and how sure the model
// is that the transcript contains it.
type Detection struct {
	Type       CategoryType `json:"type"`
	Confidence float64      `json:"confidence"`
}

// CategoryResult is one extracted category with its typed payload.
type CategoryResult struct {
	Type             CategoryType
	Confidence       float64
	Data             CategoryData
	FieldConfidences map[string]float64
}

type categoryResultJSON struct {
	Type             CategoryType       `json:"type"`
	Confidence       float64            `json:"confidence"`
	Data             json.RawMessage    `json:"data"`
	FieldConfidences map[string]float64 `json:"field_confidences,omitempty"`
}

func (c CategoryResult) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(c.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s data: %w", c.Type, err)
	}
	return json.Marshal(categoryResultJSON{
		Type:             c.Type,
		Confidence:       c.Confidence,
		Data:             data,
		FieldConfidences: c.FieldConfidences,
	})
}

func (c *CategoryResult) UnmarshalJSON(b []byte) error {
	var raw categoryResultJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	data, err := DecodeCategoryData(raw.Type, raw.Data)
	if err != nil {
		return err
	}
	*c = CategoryResult{
		Type:             raw.Type,
		Confidence:       raw.Confidence,
		Data:             data,
		FieldConfidences: raw.FieldConfidences,
	}
	return nil
}

// ExtractedData is the stored result of one analysis run: the accepted
// categories in detection order, the rejected detections kept for tuning,
// and the aggregated score.
type ExtractedData struct {
	Categories        []CategoryResult `json:"categories"`
	Rejected          []Detection      `json:"rejected"`
	OverallConfidence float64          `json:"overall_confidence"`
}

// Types returns the accepted category types in order.
func (e ExtractedData) Types() []CategoryType {
	out := make([]CategoryType, len(e.Categories))
	for i, c := range e.Categories {
		out[i] = c.Type
	}
	return out
}
