package domains

import (
	"encoding/json"
	"strconv"
)

// CanonicalValue normalizes a raw answer value into the single stored shape
// {"value": x}. Values already carrying the envelope pass through unchanged,
// so replaying a stored answer is idempotent.
func CanonicalValue(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if inner, ok := envelope["value"]; ok {
			wrapped, _ := json.Marshal(map[string]json.RawMessage{"value": inner})
			return wrapped
		}
	}
	wrapped, _ := json.Marshal(map[string]json.RawMessage{"value": raw})
	return wrapped
}

// DecodeAnswerValue unwraps a stored answer into its bare value. It accepts
// both the canonical {"value": x} envelope and a bare scalar, since answers
// written before normalization may still carry the old shape.
func DecodeAnswerValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if inner, ok := envelope["value"]; ok {
			return decodeBare(inner)
		}
	}
	return decodeBare(raw)
}

func decodeBare(raw json.RawMessage) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// NumericValue coerces a decoded answer value into a float64. Strings that
// parse as numbers are accepted; everything else is discarded.
func NumericValue(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case json.Number:
		f, err := value.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(value, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// StringValues flattens a decoded answer into the selected option strings:
// a single selection yields one entry, a multi-select array yields one per
// element.
func StringValues(v any) []string {
	switch value := v.(type) {
	case string:
		return []string{value}
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case float64:
				out = append(out, strconv.FormatFloat(s, 'f', -1, 64))
			}
		}
		return out
	case float64:
		return []string{strconv.FormatFloat(value, 'f', -1, 64)}
	case bool:
		return []string{strconv.FormatBool(value)}
	default:
		return nil
	}
}
