package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormData maps field names to the values a caller collected. Values are
// scalars (string, bool, numbers) or lists of scalars. Keys a wizard does not
// know about are ignored.
type FormData map[string]any

// Has reports whether key is present with a non-nil value.
func (f FormData) Has(key string) bool {
	if f == nil {
		return false
	}
	v, ok := f[key]
	return ok && v != nil
}

// String returns the value for key rendered as a string. Lists yield their
// first element. Missing keys yield "".
func (f FormData) String(key string) string {
	if f == nil {
		return ""
	}
	return scalarString(f[key])
}

// Int parses the value for key as an integer, returning fallback when the
// key is missing or not numeric.
func (f FormData) Int(key string, fallback int) int {
	v, ok := f.Number(key)
	if !ok {
		return fallback
	}
	return int(v)
}

// Number parses the value for key as a number. Fractions are truncated toward
// zero.
func (f FormData) Number(key string) (int64, bool) {
	if f == nil {
		return 0, false
	}
	return ParseNumber(f[key])
}

// Bool interprets the value for key as a checkbox state.
func (f FormData) Bool(key string) bool {
	if f == nil {
		return false
	}
	switch v := f[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case []string, []any:
		return FormData{key: scalarString(v)}.Bool(key)
	default:
		switch strings.ToLower(strings.TrimSpace(scalarString(v))) {
		case "1", "true", "on", "yes", "y":
			return true
		}
		return false
	}
}

// Strings returns the value for key as a list. A scalar string is returned as
// a single-element list; empty strings yield nil.
func (f FormData) Strings(key string) []string {
	if f == nil {
		return nil
	}
	switch v := f[key].(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, scalarString(item))
		}
		return out
	default:
		s := scalarString(v)
		if s == "" {
			return nil
		}
		return []string{s}
	}
}

// Lines splits a textarea value into trimmed, non-empty lines. List values
// are flattened the same way.
func (f FormData) Lines(key string) []string {
	var out []string
	for _, chunk := range f.Strings(key) {
		for _, line := range strings.Split(strings.ReplaceAll(chunk, "\r\n", "\n"), "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

// Clone returns a shallow copy with list values copied.
func (f FormData) Clone() FormData {
	if f == nil {
		return nil
	}
	out := make(FormData, len(f))
	for k, v := range f {
		switch typed := v.(type) {
		case []string:
			out[k] = append([]string(nil), typed...)
		case []any:
			out[k] = append([]any(nil), typed...)
		default:
			out[k] = v
		}
	}
	return out
}

// ParseNumber converts a form value into an integer. Strings must hold a
// decimal number; fractions are truncated.
func ParseNumber(value any) (int64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case bool:
		return 0, false
	case []string, []any:
		return ParseNumber(scalarString(v))
	default:
		s := strings.TrimSpace(scalarString(v))
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		fv, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return floatToInt(fv)
	}
}

func floatToInt(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v > math.MaxInt64 || v < math.MinInt64 {
		return 0, false
	}
	return int64(v), true
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		if len(v) == 0 {
			return ""
		}
		return v[0]
	case []any:
		if len(v) == 0 {
			return ""
		}
		return scalarString(v[0])
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		if v {
			return "1"
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}
