package pricing

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field is a raw request value that remembers whether its key was sent at
// all. A present null decodes to Set=true, Value=nil.
type Field struct {
	Set   bool
	Value any
}

// Val wraps a present value.
func Val(v any) Field {
	return Field{Set: true, Value: v}
}

func (f *Field) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Value = nil
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value)
}

// isBlank treats nil and whitespace-only strings as "no value given".
func isBlank(raw any) bool {
	if raw == nil {
		return true
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return true
	}
	return false
}

// parseNumber accepts JSON numbers, Go numeric types and numeric strings.
// ok is false for anything unparsable, non-finite or negative.
func parseNumber(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// SanitizeNumber returns raw as a finite non-negative number. Blank input
// yields fallback unflagged; invalid input yields fallback with clamped=true.
func SanitizeNumber(raw any, fallback float64) (value float64, clamped bool) {
	if isBlank(raw) {
		return fallback, false
	}
	f, ok := parseNumber(raw)
	if !ok {
		return fallback, true
	}
	return f, false
}

// SanitizeInt is SanitizeNumber for counts; fractional input is truncated
// and flagged.
func SanitizeInt(raw any, fallback int) (value int, clamped bool) {
	if isBlank(raw) {
		return fallback, false
	}
	f, ok := parseNumber(raw)
	if !ok || f > math.MaxInt32 {
		return fallback, true
	}
	i := int(math.Trunc(f))
	return i, float64(i) != f
}

// SanitizeOptionalNumber is SanitizeNumber for nullable amounts: blank input
// means "no value" rather than fallback.
func SanitizeOptionalNumber(raw any, fallback *float64) (value *float64, clamped bool) {
	if isBlank(raw) {
		return nil, false
	}
	f, ok := parseNumber(raw)
	if !ok {
		return copyFloat(fallback), true
	}
	return &f, false
}

// SanitizeBool accepts booleans, numbers and the usual form spellings.
func SanitizeBool(raw any, fallback bool) (value bool, clamped bool) {
	switch v := raw.(type) {
	case nil:
		return fallback, false
	case bool:
		return v, false
	case float64:
		return v != 0, false
	case int:
		return v != 0, false
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true, false
		case "false", "0", "no", "off":
			return false, false
		case "":
			return fallback, false
		}
	}
	return fallback, true
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
