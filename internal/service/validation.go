package service

import (
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/report-portal/internal/config"

	apperrors "github.com/spec-kit/report-portal/pkg/util/errorutil"
)

const (
	notBlankTag = "notblank"
	quarterTag  = "quarter"
	yearTag     = "year"
)

// newValidator builds a validator that reports fields by their json names and
// knows the configured quarter labels and year bounds.
func newValidator(rules config.ReportsConfig) *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation(quarterTag, func(fl validator.FieldLevel) bool {
		return slices.Contains(rules.Quarters, fl.Field().String())
	})
	_ = v.RegisterValidation(yearTag, func(fl validator.FieldLevel) bool {
		return rules.YearAllowed(int(fl.Field().Int()))
	})
	return v
}

// validationError turns validator output into a VALIDATION_FAILED domain error.
func validationError(err error, rules config.ReportsConfig) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("invalid input", nil)
	}
	fields := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe, rules)
	}
	return apperrors.NewValidationError("invalid input", map[string]any{"fields": fields})
}

func fieldMessage(fe validator.FieldError, rules config.ReportsConfig) string {
	switch fe.Tag() {
	case "required", notBlankTag:
		return "is required"
	case quarterTag:
		return "must be one of " + strings.Join(rules.Quarters, ", ")
	case yearTag:
		return yearMessage(rules)
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	}
	return "is invalid"
}

func yearMessage(rules config.ReportsConfig) string {
	switch {
	case rules.MinYear > 0 && rules.MaxYear > 0:
		return "must be between " + strconv.Itoa(rules.MinYear) + " and " + strconv.Itoa(rules.MaxYear)
	case rules.MinYear > 0:
		return "must be at least " + strconv.Itoa(rules.MinYear)
	default:
		return "must be at most " + strconv.Itoa(rules.MaxYear)
	}
}
