package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kaptinlin/jsonrepair"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

type categorizeOutput struct {
	Categories []struct {
		Type       string  `json:"type"`
		Confidence float64 `json:"confidence"`
	} `json:"categories"`
}

type fieldConfidence struct {
	Field      string  `json:"field"`
	Confidence float64 `json:"confidence"`
}

// extractOutput is the decode side; Data stays raw until the category is
// known.
type extractOutput struct {
	Data             json.RawMessage   `json:"data"`
	FieldConfidences []fieldConfidence `json:"field_confidences"`
}

// extractShape is the schema side of extractOutput for one variant.
type extractShape[T any] struct {
	Data             T                 `json:"data"`
	FieldConfidences []fieldConfidence `json:"field_confidences"`
}

var schemaTypes = map[reflect.Type]*jsonschema.Schema{
	reflect.TypeFor[time.Time](): {Type: "string", Format: "date-time"},
}

func extractSchema[T any]() (*jsonschema.Schema, error) {
	return jsonschema.For[extractShape[T]](&jsonschema.ForOptions{TypeSchemas: schemaTypes})
}

var extractSchemaBuilders = map[domain.CategoryType]func() (*jsonschema.Schema, error){
	domain.CategoryVitals:       extractSchema[domain.Vitals],
	domain.CategoryMedication:   extractSchema[domain.Medication],
	domain.CategoryClinicalNote: extractSchema[domain.ClinicalNote],
	domain.CategoryADL:          extractSchema[domain.ADL],
	domain.CategoryIncident:     extractSchema[domain.Incident],
	domain.CategoryCarePlan:     extractSchema[domain.CarePlan],
	domain.CategoryPain:         extractSchema[domain.Pain],
}

var errNoJSON = errors.New("no JSON object found in response")

// extractJSON returns the span between the first '{' and the last '}'.
// Models like to wrap JSON in prose or code fences.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", errNoJSON
	}
	return s[start : end+1], nil
}

// decodeModelJSON decodes model output into v, repairing it once if the
// extracted object is syntactically broken.
func decodeModelJSON(text string, v any) error {
	raw, err := extractJSON(text)
	if err != nil {
		// truncated output may lack the closing brace entirely
		start := strings.Index(text, "{")
		if start == -1 {
			return err
		}
		raw = text[start:]
	}

	err = json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return fmt.Errorf("decode model output: %w", err)
	}

	fixed, repairErr := jsonrepair.JSONRepair(raw)
	if repairErr != nil {
		return fmt.Errorf("repair model output: %w", repairErr)
	}
	if err := json.Unmarshal([]byte(fixed), v); err != nil {
		return fmt.Errorf("decode repaired model output: %w", err)
	}
	return nil
}
