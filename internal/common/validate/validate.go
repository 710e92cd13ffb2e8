// Package validate asserts the runtime types of loosely decoded JSON values.
// The builder backend and the session cookie both hand the application
// map[string]interface{} payloads; these helpers turn "probably an int" into
// an int or a validation error.
package validate

import (
	"encoding/json"
	"math"

	"psjudge_frontend/internal/common"
)

// Int accepts the numeric shapes encoding/json and the JWT library produce
// and requires the value to be integral.
func Int(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, common.Errorf("value must be integer but is floating-point: %w", common.ErrValidation)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, common.Errorf("value %q is not an integer: %w", v.String(), common.ErrValidation)
		}
		return int(n), nil
	default:
		return 0, common.Errorf("value must be integer but has type %T: %w", value, common.ErrValidation)
	}
}

func String(value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", common.Errorf("value must be string but has type %T: %w", value, common.ErrValidation)
	}
	return s, nil
}

// StringSlice accepts either []string or the []interface{} produced by
// encoding/json, requiring every element to be a string.
func StringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, err := String(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, common.Errorf("value must be array but has type %T: %w", value, common.ErrValidation)
	}
}
