package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CategoryType identifies one of the fixed clinical data kinds.
type CategoryType string

const (
	CategoryVitals       CategoryType = "vitals"
	CategoryMedication   CategoryType = "medication"
	CategoryClinicalNote CategoryType = "clinical_note"
	CategoryADL          CategoryType = "adl"
	CategoryIncident     CategoryType = "incident"
	CategoryCarePlan     CategoryType = "care_plan"
	CategoryPain         CategoryType = "pain"
)

// AllCategoryTypes returns every category in a stable order.
func AllCategoryTypes() []CategoryType {
	return []CategoryType{
		CategoryVitals, CategoryMedication, CategoryClinicalNote, CategoryADL,
		CategoryIncident, CategoryCarePlan, CategoryPain,
	}
}

func (c CategoryType) String() string { return string(c) }

func (c CategoryType) IsValid() bool {
	switch c {
	case CategoryVitals, CategoryMedication, CategoryClinicalNote, CategoryADL,
		CategoryIncident, CategoryCarePlan, CategoryPain:
		return true
	}
	return false
}

// CategoryData is the tagged union of per-category field sets.
type CategoryData interface {
	Type() CategoryType
	Validate() []FieldError
}

// NewCategoryData returns an empty variant for t.
func NewCategoryData(t CategoryType) (CategoryData, error) {
	switch t {
	case CategoryVitals:
		return &Vitals{}, nil
	case CategoryMedication:
		return &Medication{}, nil
	case CategoryClinicalNote:
		return &ClinicalNote{}, nil
	case CategoryADL:
		return &ADL{}, nil
	case CategoryIncident:
		return &Incident{}, nil
	case CategoryCarePlan:
		return &CarePlan{}, nil
	case CategoryPain:
		return &Pain{}, nil
	}
	return nil, fmt.Errorf("unknown category %q", t)
}

// DecodeCategoryData unmarshals raw into the variant selected by t. Keys the
// variant does not define are ignored.
func DecodeCategoryData(t CategoryType, raw []byte) (CategoryData, error) {
	return decodeCategoryData(t, raw, false)
}

// DecodeCategoryDataStrict is DecodeCategoryData for caller-supplied payloads:
// a key the variant does not define is reported as an *UnknownFieldError.
func DecodeCategoryDataStrict(t CategoryType, raw []byte) (CategoryData, error) {
	return decodeCategoryData(t, raw, true)
}

// UnknownFieldError names a payload key that no field of the variant accepts.
type UnknownFieldError struct {
	Category CategoryType
	Field    string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("decode %s data: unknown field %q", e.Category, e.Field)
}

func decodeCategoryData(t CategoryType, raw []byte, strict bool) (CategoryData, error) {
	data, err := NewCategoryData(t)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return data, nil
	}
	if !strict {
		if err := json.Unmarshal(raw, data); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", t, err)
		}
		return data, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(data); err != nil {
		// encoding/json has no typed error for this case
		if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return nil, &UnknownFieldError{Category: t, Field: strings.Trim(name, `"`)}
		}
		return nil, fmt.Errorf("decode %s data: %w", t, err)
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// Variants
// ---------------------------------------------------------------------------

// Vitals holds measured vital signs. Temperature is in degrees Celsius.
type Vitals struct {
	SystolicBP      *float64 `json:"systolic_bp,omitempty"`
	DiastolicBP     *float64 `json:"diastolic_bp,omitempty"`
	HeartRate       *float64 `json:"heart_rate,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	SpO2            *float64 `json:"spo2,omitempty"`
	RespiratoryRate *float64 `json:"respiratory_rate,omitempty"`
}

func (*Vitals) Type() CategoryType { return CategoryVitals }

func (v *Vitals) Validate() []FieldError {
	var errs []FieldError
	if v.SystolicBP == nil && v.DiastolicBP == nil && v.HeartRate == nil &&
		v.Temperature == nil && v.SpO2 == nil && v.RespiratoryRate == nil {
		return append(errs, FieldError{Field: "vitals", Message: "at least one measurement required"})
	}
	errs = checkRange(errs, "systolic_bp", v.SystolicBP, 50, 260)
	errs = checkRange(errs, "diastolic_bp", v.DiastolicBP, 30, 160)
	errs = checkRange(errs, "heart_rate", v.HeartRate, 20, 250)
	errs = checkRange(errs, "temperature", v.Temperature, 30, 43)
	errs = checkRange(errs, "spo2", v.SpO2, 50, 100)
	errs = checkRange(errs, "respiratory_rate", v.RespiratoryRate, 4, 60)
	if v.SystolicBP != nil && v.DiastolicBP != nil && *v.DiastolicBP >= *v.SystolicBP {
		errs = append(errs, FieldError{Field: "diastolic_bp", Message: "must be lower than systolic_bp"})
	}
	return errs
}

// Medication records an administered or planned medication.
type Medication struct {
	Name  string `json:"name"`
	Dose  string `json:"dose,omitempty"`
	Route string `json:"route,omitempty"`
	Time  string `json:"time,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func (*Medication) Type() CategoryType { return CategoryMedication }

func (m *Medication) Validate() []FieldError {
	var errs []FieldError
	errs = checkRequired(errs, "name", m.Name)
	return errs
}

// ClinicalNote is free-text documentation.
type ClinicalNote struct {
	Content string `json:"content"`
	Kind    string `json:"kind,omitempty"`
}

func (*ClinicalNote) Type() CategoryType { return CategoryClinicalNote }

func (n *ClinicalNote) Validate() []FieldError {
	var errs []FieldError
	errs = checkRequired(errs, "content", n.Content)
	errs = checkOneOf(errs, "kind", n.Kind, "observation", "assessment", "plan")
	return errs
}

// ADL documents an activity of daily living and the help it needed.
type ADL struct {
	Activity        string `json:"activity"`
	AssistanceLevel string `json:"assistance_level,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

func (*ADL) Type() CategoryType { return CategoryADL }

func (a *ADL) Validate() []FieldError {
	var errs []FieldError
	errs = checkRequired(errs, "activity", a.Activity)
	errs = checkOneOf(errs, "assistance_level", a.AssistanceLevel, "independent", "supervision", "partial", "full")
	return errs
}

// Incident documents a fall, injury or other adverse event.
type Incident struct {
	Description string     `json:"description"`
	Severity    string     `json:"severity,omitempty"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

func (*Incident) Type() CategoryType { return CategoryIncident }

func (i *Incident) Validate() []FieldError {
	var errs []FieldError
	errs = checkRequired(errs, "description", i.Description)
	errs = checkOneOf(errs, "severity", i.Severity, "low", "medium", "high")
	return errs
}

// CarePlan is a goal with its planned interventions.
type CarePlan struct {
	Goal          string   `json:"goal"`
	Interventions []string `json:"interventions,omitempty"`
	ReviewDate    string   `json:"review_date,omitempty"`
}

func (*CarePlan) Type() CategoryType { return CategoryCarePlan }

func (c *CarePlan) Validate() []FieldError {
	var errs []FieldError
	errs = checkRequired(errs, "goal", c.Goal)
	if c.ReviewDate != "" {
		if _, err := time.Parse(time.DateOnly, c.ReviewDate); err != nil {
			errs = append(errs, FieldError{Field: "review_date", Message: "must be YYYY-MM-DD"})
		}
	}
	return errs
}

// Pain is a 0-10 numeric rating scale assessment.
type Pain struct {
	Score     *int   `json:"score"`
	Location  string `json:"location,omitempty"`
	Character string `json:"character,omitempty"`
}

func (*Pain) Type() CategoryType { return CategoryPain }

func (p *Pain) Validate() []FieldError {
	var errs []FieldError
	if p.Score == nil {
		return append(errs, FieldError{Field: "score", Message: "required"})
	}
	if *p.Score < 0 || *p.Score > 10 {
		errs = append(errs, FieldError{Field: "score", Message: "must be between 0 and 10"})
	}
	return errs
}

// ---------------------------------------------------------------------------
// Validation helpers
// ---------------------------------------------------------------------------

func checkRequired(errs []FieldError, field, value string) []FieldError {
	if strings.TrimSpace(value) == "" {
		return append(errs, FieldError{Field: field, Message: "required"})
	}
	return errs
}

func checkRange(errs []FieldError, field string, v *float64, lo, hi float64) []FieldError {
	if v == nil {
		return errs
	}
	if *v < lo || *v > hi {
		return append(errs, FieldError{Field: field, Message: fmt.Sprintf("must be between %g and %g", lo, hi)})
	}
	return errs
}

func checkOneOf(errs []FieldError, field, value string, allowed ...string) []FieldError {
	if value == "" {
		return errs
	}
	for _, a := range allowed {
		if value == a {
			return errs
		}
	}
	return append(errs, FieldError{Field: field, Message: "must be one of " + strings.Join(allowed, ", ")})
}
