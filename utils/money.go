package utils

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a monetary or quantity input exactly.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", raw)
	}
	return d, nil
}

// FormatMoney renders a JSON numeric value with two decimals ("$12.50"). Non-numbers render as "$0.00".
func FormatMoney(v interface{}) string {
	d, ok := toDecimal(v)
	if !ok {
		return "$0.00"
	}
	return "$" + d.StringFixed(2)
}

func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(t)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}
