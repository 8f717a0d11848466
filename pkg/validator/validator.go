package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// New returns a validator with the project's custom tags registered and
// field names reported by their json tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	Register(v)
	return v
}

// Register installs custom tags on an existing validator instance.
func Register(v *validator.Validate) {
	// hhmm: 24h wall-clock time, e.g. "08:30"
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return IsClock(fl.Field().String())
	})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// IsClock reports whether s is a valid HH:MM time.
func IsClock(s string) bool {
	return clockPattern.MatchString(s)
}

// FieldError is a single failed rule, reported by json field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var messages = map[string]string{
	"required": "field is required",
	"hhmm":     "must be a time in HH:MM format",
	"uuid":     "must be a valid UUID",
	"datetime": "must be a date in YYYY-MM-DD format",
	"min":      "value is too small",
	"max":      "value is too large",
	"oneof":    "value is not allowed",
}

// Describe flattens validator errors into field messages. Non-validation
// errors yield nil.
func Describe(err error) []FieldError {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		msg := messages[e.Tag()]
		if msg == "" {
			msg = e.Error()
		}
		out = append(out, FieldError{Field: e.Namespace(), Message: msg})
	}
	return out
}
