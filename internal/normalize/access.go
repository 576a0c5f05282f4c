package normalize

import "encoding/json"

// String returns the value under key rendered as a string. Non-string values
// are rendered as compact JSON so they can be interpolated into prompts.
func String(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// FirstString probes keys in order and returns the first non-empty string value.
func FirstString(m map[string]any, keys ...string) (string, bool) {
	for _, key := range keys {
		if s := String(m, key); s != "" {
			return s, true
		}
	}
	return "", false
}

// Degraded reports whether a normalized result fell back to the raw-content
// wrapper (with or without an absorbed error).
func Degraded(m map[string]any) bool {
	_, hasRaw := m[KeyRawContent]
	return hasRaw && len(m) <= 2
}
