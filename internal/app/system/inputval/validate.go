// Package inputval validates user input for form and API handlers.
//
// Struct validation uses go-playground/validator tags, with an optional
// `label` tag controlling how the field is named in messages:
//
//	type createTeamInput struct {
//	    Name string `validate:"required,max=200" label:"Name"`
//	}
//
//	if result := inputval.Validate(input); result.HasErrors() {
//	    renderError(result.First())
//	}
package inputval

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if label := fld.Tag.Get("label"); label != "" {
				return label
			}
			return fld.Name
		})
	})
	return v
}

// Result collects validation failures for one input struct.
type Result struct {
	errs []string
}

// HasErrors reports whether any field failed validation.
func (r Result) HasErrors() bool { return len(r.errs) > 0 }

// First returns the first failure message, or "" when validation passed.
// Form handlers typically surface one error at a time.
func (r Result) First() string {
	if len(r.errs) == 0 {
		return ""
	}
	return r.errs[0]
}

// All returns every failure message in field declaration order.
func (r Result) All() []string { return r.errs }

// Validate checks the struct's `validate` tags and returns the failures as
// human-readable messages.
func Validate(input any) Result {
	err := instance().Struct(input)
	if err == nil {
		return Result{}
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{errs: []string{"Invalid input."}}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, message(fe))
	}
	return Result{errs: msgs}
}

// message converts a single field error to a user-facing sentence.
func message(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", name)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", name, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or more.", name, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be %s or less.", name, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", name)
	}
}
