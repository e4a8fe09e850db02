package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// fieldErrors turns validator failures into per-field messages. These never
// reach the remote API; invalid input is rejected before any request is made.
func fieldErrors(err error) map[string]string {
	fields := map[string]string{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["_"] = "Invalid input"
		return fields
	}

	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Not a valid email address"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "gt":
		return "Must be greater than " + fe.Param()
	case "gte":
		return "Must be at least " + fe.Param()
	default:
		return "Invalid value"
	}
}
