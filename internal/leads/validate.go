package leads

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

var fieldLabels = map[string]string{
	"firstName":      "First name",
	"lastName":       "Last name",
	"email":          "Email",
	"phone":          "Phone number",
	"organization":   "Organization",
	"title":          "Job title",
	"projectType":    "Project type",
	"timeline":       "Timeline",
	"clearanceLevel": "Clearance level",
	"message":        "Message",
	"consent":        "Consent",
}

var (
	validateOnce sync.Once
	formValidate *validator.Validate
	textPolicy   = bluemonday.StrictPolicy()
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
			return validPhone(fl.Field().String())
		})
		mustRegister(v, "accepted", func(fl validator.FieldLevel) bool {
			return fl.Field().Kind() == reflect.Bool && fl.Field().Bool()
		})
		mustRegister(v, "project_type", func(fl validator.FieldLevel) bool {
			return ProjectType(fl.Field().String()).Valid()
		})
		mustRegister(v, "timeline", func(fl validator.FieldLevel) bool {
			return Timeline(fl.Field().String()).Valid()
		})
		mustRegister(v, "clearance_level", func(fl validator.FieldLevel) bool {
			return ClearanceLevel(fl.Field().String()).Valid()
		})
		formValidate = v
	})
	return formValidate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("leads: register %s validation: %v", tag, err))
	}
}

// validPhone accepts common formatting characters and 10-15 digits.
func validPhone(phone string) bool {
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ', r == '-', r == '.', r == '(', r == ')':
		default:
			return false
		}
	}
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}

// Validate checks every field independently and returns all failures together.
// Rules apply to the sanitized text, so markup alone never satisfies a field.
// The returned error is a ValidationErrors when the form is invalid.
func Validate(values FormValues) (*Lead, error) {
	values = values.normalized()

	err := formValidator().Struct(values)
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("leads: validate form: %w", err)
		}
		out := make(ValidationErrors, len(fieldErrs))
		for _, fe := range fieldErrs {
			out[fe.Field()] = messageFor(fe)
		}
		return nil, out
	}

	return &Lead{
		FirstName:      values.FirstName,
		LastName:       values.LastName,
		Email:          values.Email,
		Phone:          values.Phone,
		Organization:   values.Organization,
		Title:          values.Title,
		ProjectType:    ProjectType(values.ProjectType),
		Timeline:       Timeline(values.Timeline),
		ClearanceLevel: ClearanceLevel(values.ClearanceLevel),
		Message:        values.Message,
		Consent:        values.Consent,
	}, nil
}

func messageFor(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "email":
		return "Please enter a valid email address"
	case "phone":
		return "Please enter a valid phone number"
	case "accepted":
		return "You must agree to be contacted"
	case "project_type", "timeline", "clearance_level":
		return label + " is not a recognized option"
	default:
		return label + " is invalid"
	}
}

// sanitizeText strips any markup a visitor pasted into a free text field.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}
