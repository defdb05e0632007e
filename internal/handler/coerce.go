package handler

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MissingFieldError reports a required request field that was not sent
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "Missing required field: " + e.Field
}

// toFloat converts a decoded JSON value to a finite float. Numbers, numeric
// strings and booleans are accepted.
func toFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		var err error
		if f, err = x.Float64(); err != nil {
			return 0, fmt.Errorf("could not convert %q to float", x.String())
		}
	case float64:
		f = x
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(x), 64); err != nil {
			return 0, fmt.Errorf("could not convert string to float: %q", x)
		}
	case bool:
		if x {
			f = 1
		}
	case nil:
		return 0, fmt.Errorf("must be a number, got null")
	default:
		return 0, fmt.Errorf("must be a number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value %v is not a finite number", f)
	}
	return f, nil
}
