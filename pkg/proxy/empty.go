package proxy

import (
	"bytes"
	"encoding/json"
)

// isEmpty reports whether an API response is empty or falsy.
// Such responses are never cached.
func isEmpty(value json.RawMessage) bool {
	if len(bytes.TrimSpace(value)) == 0 {
		return true
	}

	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		// Not JSON; treat any bytes as a value
		return false
	}

	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == "" || t == "0"
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
