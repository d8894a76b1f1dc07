package resources

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"retailadmin/models"
)

var validate = validator.New()

// ValidationError collects client-side rule violations by field. It never reaches the network layer.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return strings.Join(parts, "; ")
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// Validate checks values against every rule of the fields shown in mode.
func (s *Schema) Validate(values models.Record, mode Mode) error {
	problems := map[string]string{}
	for _, f := range s.FormFields(mode) {
		if msg := f.check(values[f.Name]); msg != "" {
			problems[f.Name] = msg
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Fields: problems}
	}
	return nil
}

// ValidateFilter rejects non-positive page or limit values.
func ValidateFilter(f models.Filter) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	problems := map[string]string{}
	for _, fe := range fieldErrs {
		name := strings.ToLower(fe.Field())
		problems[name] = fmt.Sprintf("%s must be at least %s", name, fe.Param())
	}
	return &ValidationError{Fields: problems}
}

func (f Field) check(v interface{}) string {
	if isEmpty(v) {
		if f.Required {
			return f.Label + " is required"
		}
		return ""
	}

	switch f.Kind {
	case Email:
		if validate.Var(fmt.Sprint(v), "email") != nil {
			return "Please enter a valid email"
		}
	case Password:
		if validate.Var(fmt.Sprint(v), fmt.Sprintf("min=%d", f.MinLen)) != nil {
			return fmt.Sprintf("%s must be at least %d characters", f.Label, f.MinLen)
		}
	case Number, Integer:
		d, ok := numeric(v)
		if !ok {
			return f.Label + " must be a number"
		}
		if f.Kind == Integer && !d.IsInteger() {
			return f.Label + " must be a whole number"
		}
		if f.Min != nil && d.LessThan(decimal.NewFromFloat(*f.Min)) {
			return fmt.Sprintf("%s must be at least %s", f.Label, strconv.FormatFloat(*f.Min, 'f', -1, 64))
		}
	case Enum:
		if validate.Var(fmt.Sprint(v), "oneof="+strings.Join(f.Options, " ")) != nil {
			return fmt.Sprintf("%s must be one of %s", f.Label, strings.Join(f.Options, ", "))
		}
	}
	return ""
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

func numeric(v interface{}) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}
