package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// bindingErrors turns a gin binding failure into field-specific messages.
func bindingErrors(err error) map[string]string {
	fieldErrors := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fieldErrors["body"] = "invalid request payload"
		return fieldErrors
	}

	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fieldErrors[field] = "is required"
		case "email":
			fieldErrors[field] = "must be a valid email address"
		case "min":
			fieldErrors[field] = fmt.Sprintf("must be at least %s", fe.Param())
		case "max":
			fieldErrors[field] = fmt.Sprintf("must be at most %s", fe.Param())
		case "oneof":
			fieldErrors[field] = fmt.Sprintf("must be one of: %s", fe.Param())
		default:
			fieldErrors[field] = fmt.Sprintf("is invalid (%s)", fe.Tag())
		}
	}
	return fieldErrors
}
