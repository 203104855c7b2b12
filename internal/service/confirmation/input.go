package confirmation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

// CategoryInput is one category of the reviewer's final data.
type CategoryInput struct {
	Type domain.CategoryType
	Data domain.CategoryData
}

// ConfirmInput holds the parameters for confirming a review item.
type ConfirmInput struct {
	ReviewID   uuid.UUID
	Categories []CategoryInput
}

// Validate checks all fields and collects all errors. Field paths point into
// the category list, e.g. categories[0].systolic_bp.
func (i *ConfirmInput) Validate() error {
	var errs []domain.FieldError

	if i.ReviewID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "review_id", Message: "required"})
	}
	if len(i.Categories) == 0 {
		errs = append(errs, domain.FieldError{Field: "categories", Message: "at least one category is required"})
	}

	seen := make(map[domain.CategoryType]int, len(i.Categories))
	for idx, c := range i.Categories {
		prefix := fmt.Sprintf("categories[%d]", idx)

		if !c.Type.IsValid() {
			errs = append(errs, domain.FieldError{Field: prefix + ".type", Message: fmt.Sprintf("unknown category %q", c.Type)})
			continue
		}
		if first, dup := seen[c.Type]; dup {
			errs = append(errs, domain.FieldError{
				Field:   prefix + ".type",
				Message: fmt.Sprintf("duplicate of categories[%d]", first),
			})
			continue
		}
		seen[c.Type] = idx

		if c.Data == nil {
			errs = append(errs, domain.FieldError{Field: prefix + ".data", Message: "required"})
			continue
		}
		if c.Data.Type() != c.Type {
			errs = append(errs, domain.FieldError{
				Field:   prefix + ".data",
				Message: fmt.Sprintf("data is %s, not %s", c.Data.Type(), c.Type),
			})
			continue
		}
		errs = append(errs, domain.PrefixFieldErrors(prefix, c.Data.Validate())...)
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
