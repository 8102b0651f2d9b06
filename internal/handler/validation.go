package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const msgMissingFields = "Please provide all fields"

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names so messages match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage turns validator output into a single client message.
// Any missing required field yields the generic "provide all fields" text.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation failed"
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return msgMissingFields
		}
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", fe.Field())
	case "min", "max":
		return fmt.Sprintf("%s must be between 1900 and 9999", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
