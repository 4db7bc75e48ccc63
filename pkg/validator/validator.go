package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/patient-records/pkg/errors"
)

// Validator checks boundary input before it reaches the record store. The
// store itself trusts its callers; anything malformed is rejected here.
type Validator interface {
	Validate(interface{}) error
	ValidateEmail(email string) error
	ValidateDate(value string) error
}

type boundaryValidator struct {
	v *validator.Validate
}

func New() Validator {
	return &boundaryValidator{
		v: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (b *boundaryValidator) Validate(obj interface{}) error {
	if err := b.v.Struct(obj); err != nil {
		return apperrors.Validation("validation failed", err)
	}
	return nil
}

func (b *boundaryValidator) ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if err := b.v.Var(email, "email"); err != nil {
		return apperrors.Validation(fmt.Sprintf("invalid email %q", email), err)
	}
	return nil
}

// dateLayouts covers the formats the forms produce: date-only pickers and
// full RFC3339 timestamps.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func (b *boundaryValidator) ValidateDate(value string) error {
	if value == "" {
		return nil
	}
	if _, ok := ParseDate(value); !ok {
		return apperrors.Validation(fmt.Sprintf("invalid date %q", value), nil)
	}
	return nil
}

// ParseDate parses a form-supplied date string. The second return is false
// when no known layout matches.
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
