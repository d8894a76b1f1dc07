package resources

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"retailadmin/utils"
)

var numericID = regexp.MustCompile(`^[0-9]+$`)

// Parse converts raw text input into the field's typed value. Empty input clears the field (nil).
func (f Field) Parse(raw string) (interface{}, error) {
	if f.Kind != Password {
		raw = strings.TrimSpace(raw)
	}
	if raw == "" {
		return nil, nil
	}

	switch f.Kind {
	case Number, Integer:
		d, err := utils.ParseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", f.Label)
		}
		if f.Kind == Integer && !d.IsInteger() {
			return nil, fmt.Errorf("%s must be a whole number", f.Label)
		}
		return json.Number(d.String()), nil
	case Enum:
		return strings.ToLower(raw), nil
	case Reference:
		if numericID.MatchString(raw) {
			return json.Number(raw), nil
		}
		return raw, nil
	default:
		return raw, nil
	}
}
