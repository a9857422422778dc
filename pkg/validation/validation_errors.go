package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors converts validator.ValidationErrors into per-field messages
// keyed by the wire path (e.g. "pay.unit"). It returns nil for other errors.
func FieldErrors(err error) map[string][]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	out := make(map[string][]string, len(validationErrors))
	for _, e := range validationErrors {
		key := fieldPath(e)
		out[key] = append(out[key], message(e))
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	param := e.Param()

	switch e.Tag() {
	case "required", "required_if", "required_with":
		return "is required"
	case "min":
		if isText(e) {
			return fmt.Sprintf("must be at least %s characters", param)
		}
		if isList(e) {
			return fmt.Sprintf("must contain at least %s items", param)
		}
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		if isText(e) {
			return fmt.Sprintf("must be at most %s characters", param)
		}
		if isList(e) {
			return fmt.Sprintf("must contain at most %s items", param)
		}
		return fmt.Sprintf("must be at most %s", param)
	case "gt":
		return fmt.Sprintf("must be greater than %s", param)
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", param)
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", param)
	case "gtefield":
		return fmt.Sprintf("must be greater than or equal to %s", param)
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "latitude":
		return "must be between -90 and 90"
	case "longitude":
		return "must be between -180 and 180"
	case "iso4217":
		return "must be an ISO 4217 currency code"
	case "valid_phone":
		return "must be a valid phone number (7-15 digits, optional +)"
	case "no_emoji":
		return "must not contain emoji or special symbols"
	case "pay_unit":
		return "must be one of: hour, day, week, month"
	case "duration_unit":
		return "must be one of: days, weeks, months"
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}

func isText(e validator.FieldError) bool {
	return e.Kind().String() == "string"
}

func isList(e validator.FieldError) bool {
	k := e.Kind().String()
	return k == "slice" || k == "array" || k == "map"
}
