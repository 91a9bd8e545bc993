// Package validation checks request payloads before records are constructed.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/parishrama/diagnostic-api/internal/apperr"
)

// emailPattern is the address format the website has always accepted.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Validator wraps validator.Validate with the lab-specific rules and turns
// failures into apperr validation errors naming every violated field.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom "labemail" and "date" rules.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("labemail", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	return &Validator{validate: v}
}

var std = New()

// Struct validates s with the package default Validator.
func Struct(s interface{}) error {
	return std.Struct(s)
}

// Struct validates s. The returned error is an *apperr.Error of
// KindValidation listing one message per violated field.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.KindInternal, "validation could not run", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, message(fe))
	}
	return apperr.Validation("Validation failed", msgs...)
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fieldName(fe)
	kind := fe.Kind()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "labemail":
		return fmt.Sprintf("%s: please enter a valid email", field)
	case "date":
		return fmt.Sprintf("%s: please enter a valid date", field)
	case "max", "lte":
		if kind == reflect.String {
			return fmt.Sprintf("%s cannot be more than %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s cannot be more than %s", field, fe.Param())
	case "min", "gte":
		switch {
		case kind == reflect.Slice:
			return fmt.Sprintf("at least %s %s entry is required", fe.Param(), field)
		case kind == reflect.String:
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		case fe.Param() == "0":
			return fmt.Sprintf("%s cannot be negative", field)
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

// IsEmail reports whether s matches the accepted address format.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns
// the instant in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// CleanList trims every entry and drops the blank ones. A single entry that
// holds a JSON array (multipart clients send lists that way) is expanded
// first.
func CleanList(items []string) []string {
	if len(items) == 1 && strings.HasPrefix(strings.TrimSpace(items[0]), "[") {
		var decoded []string
		if err := json.Unmarshal([]byte(items[0]), &decoded); err == nil {
			items = decoded
		}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Trim trims each referenced string in place.
func Trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
