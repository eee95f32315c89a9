package claim

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/osse101/HarvestShare_Go/internal/domain"
)

const tagPositiveDecimal = "positive_decimal"

// newValidator builds a validator that understands decimal.Decimal fields
func newValidator() *validator.Validate {
	v := validator.New()

	// decimal.Decimal is validated through its string form
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation(tagPositiveDecimal, validatePositiveDecimal)

	return v
}

func validatePositiveDecimal(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// validateRequest checks a claim request and reports every failing field as domain.ErrInvalidInput
func validateRequest(v *validator.Validate, req domain.ClaimRequest) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			fields = append(fields, e.Field()+" is required")
		case tagPositiveDecimal:
			fields = append(fields, e.Field()+" must be greater than zero")
		default:
			fields = append(fields, e.Field()+" is invalid")
		}
	}
	sort.Strings(fields)
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
}
