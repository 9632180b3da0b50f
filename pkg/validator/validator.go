package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/clinic-admin/pkg/errors"
)

// DateLayout is the calendar date format accepted by the API.
const DateLayout = "2006-01-02"

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var messages = map[string]string{
	"required":     "is required",
	"notblank":     "must not be blank",
	"hhmm":         "must be a time in HH:mm format",
	"calendardate": "must be a date in YYYY-MM-DD format",
	"uuid":         "must be a valid identifier",
	"email":        "must be a valid email",
	"oneof":        "must be one of: %s",
	"min":          "must be at least %s",
	"max":          "must be at most %s",
}

// Validator validates request structs tagged with `validate` and reports
// failures as field errors keyed by their json names.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsClock(fl.Field().String())
	})
	_ = v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{v: v}
}

// IsClock reports whether s is a zero-padded 24h HH:mm time.
func IsClock(s string) bool {
	return clockPattern.MatchString(s)
}

// Struct validates s and returns nil when it is valid.
func (v *Validator) Struct(s interface{}) []apperrors.FieldError {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperrors.FieldError{{Field: "", Message: err.Error()}}
	}

	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   e.Field(),
			Message: message(e),
		})
	}
	return fields
}

func message(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("failed on %s", e.Tag())
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, e.Param())
	}
	return msg
}
