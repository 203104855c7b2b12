// Package clinical writes confirmed categories into their domain tables.
// Each category has its own table; the provenance columns are shared.
package clinical

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/voicedoc-backend/internal/adapter/postgres"
	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

var tables = map[domain.CategoryType]string{
	domain.CategoryVitals:       "vitals_records",
	domain.CategoryMedication:   "medication_records",
	domain.CategoryClinicalNote: "clinical_note_records",
	domain.CategoryADL:          "adl_records",
	domain.CategoryIncident:     "incident_records",
	domain.CategoryCarePlan:     "care_plan_records",
	domain.CategoryPain:         "pain_records",
}

// Table returns the domain table for a category.
func Table(t domain.CategoryType) (string, bool) {
	name, ok := tables[t]
	return name, ok
}

// Repo provides clinical record persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new clinical record repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Insert writes one record to the table of its category.
func (r *Repo) Insert(ctx context.Context, rec domain.ClinicalRecord) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	table, ok := Table(rec.Type())
	if !ok {
		return fmt.Errorf("clinical record %s: unknown category %q: %w", rec.ID, rec.Type(), domain.ErrValidation)
	}

	cols, vals, err := categoryColumns(rec.Data)
	if err != nil {
		return fmt.Errorf("clinical record %s: %w", rec.ID, err)
	}

	query, args, err := postgres.Builder().
		Insert(table).
		Columns(append([]string{
			"id", "review_item_id", "recording_id", "patient_id", "recorded_by", "recorded_at", "confidence",
		}, cols...)...).
		Values(append([]any{
			rec.ID, rec.ReviewItemID, rec.RecordingID, rec.PatientID, rec.RecordedBy, rec.RecordedAt, rec.Confidence,
		}, vals...)...).
		ToSql()
	if err != nil {
		return fmt.Errorf("build %s insert: %w", table, err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, table, rec.ID)
	}
	return nil
}

// CountByReviewItem returns how many records each category table holds for
// a review item. Categories with no rows are omitted.
func (r *Repo) CountByReviewItem(ctx context.Context, reviewItemID uuid.UUID) (map[domain.CategoryType]int, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	out := make(map[domain.CategoryType]int)
	for _, ct := range domain.AllCategoryTypes() {
		query, args, err := postgres.Builder().
			Select("count(*)").
			From(tables[ct]).
			Where(squirrel.Eq{"review_item_id": reviewItemID}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build %s count: %w", tables[ct], err)
		}
		var n int
		if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", tables[ct], err)
		}
		if n > 0 {
			out[ct] = n
		}
	}
	return out, nil
}

// categoryColumns flattens a variant into its table's columns.
func categoryColumns(data domain.CategoryData) ([]string, []any, error) {
	switch d := data.(type) {
	case *domain.Vitals:
		return []string{"systolic_bp", "diastolic_bp", "heart_rate", "temperature", "spo2", "respiratory_rate"},
			[]any{d.SystolicBP, d.DiastolicBP, d.HeartRate, d.Temperature, d.SpO2, d.RespiratoryRate}, nil
	case *domain.Medication:
		return []string{"name", "dose", "route", "administered", "notes"},
			[]any{d.Name, nullString(d.Dose), nullString(d.Route), nullString(d.Time), nullString(d.Notes)}, nil
	case *domain.ClinicalNote:
		return []string{"content", "kind"},
			[]any{d.Content, nullString(d.Kind)}, nil
	case *domain.ADL:
		return []string{"activity", "assistance_level", "notes"},
			[]any{d.Activity, nullString(d.AssistanceLevel), nullString(d.Notes)}, nil
	case *domain.Incident:
		return []string{"description", "severity", "occurred_at"},
			[]any{d.Description, nullString(d.Severity), d.OccurredAt}, nil
	case *domain.CarePlan:
		var reviewDate *time.Time
		if d.ReviewDate != "" {
			t, err := time.Parse(time.DateOnly, d.ReviewDate)
			if err != nil {
				return nil, nil, fmt.Errorf("care_plan review_date: %w", domain.ErrValidation)
			}
			reviewDate = &t
		}
		interventions := d.Interventions
		if interventions == nil {
			interventions = []string{}
		}
		return []string{"goal", "interventions", "review_date"},
			[]any{d.Goal, interventions, reviewDate}, nil
	case *domain.Pain:
		return []string{"score", "location", "pain_character"},
			[]any{d.Score, nullString(d.Location), nullString(d.Character)}, nil
	}
	return nil, nil, fmt.Errorf("unsupported category data %T: %w", data, domain.ErrValidation)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
