// Package normalize converts free-form model output into a structured mapping.
// It is the single seam between unreliable natural-language text and the
// pipeline's internal shape: it never fails, and always returns a non-nil map.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// Keys attached when normalization degrades to best-effort.
const (
	// KeyRawContent carries the original text when no structure was recovered.
	KeyRawContent = "raw_content"
	// KeyError carries a description of a parse failure that was absorbed.
	KeyError = "error"
	// KeyItems is the key under which a bare top-level JSON array is wrapped.
	KeyItems = "items"
)

// Normalize parses raw model text into a mapping. Strategies are tried in
// order and the first success wins:
//  1. strict JSON parse of the first balanced {...} or [...] span
//  2. a single "key: value" line
//  3. Markdown-style sections with bullet/numbered values
//  4. a raw-content wrapper (always succeeds)
//
// Parse failures are absorbed, never propagated.
func Normalize(raw string) (result map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			result = map[string]any{
				KeyRawContent: raw,
				KeyError:      fmt.Sprintf("normalization panic: %v", r),
			}
		}
	}()

	if m, ok := tryJSON(raw); ok {
		return m
	}
	if m, ok := tryKeyValueLine(raw); ok {
		return m
	}
	if m, ok := tryMarkdown(raw); ok {
		return m
	}
	return map[string]any{KeyRawContent: raw}
}

// ToText renders a normalized mapping back to canonical JSON. Feeding the
// output through Normalize again recovers an equivalent mapping.
func ToText(m map[string]any) string {
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// CleanFences removes a Markdown code-block wrapper from text if present.
// Models often wrap JSON in ```json ... ``` blocks even when told not to.
func CleanFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// Drop a language identifier on the opening line.
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := text[:idx]
		if len(first) < 20 && !strings.ContainsAny(first, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// tryJSON finds the first balanced top-level JSON object or array and parses
// it strictly. A top-level array is wrapped under KeyItems so the result is
// always a mapping.
func tryJSON(raw string) (map[string]any, bool) {
	text := CleanFences(raw)

	span := balancedSpan(text, '{', '}')
	if span == "" {
		span = balancedSpan(text, '[', ']')
	}
	if span == "" {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err == nil {
		return obj, true
	}
	var arr []any
	if err := json.Unmarshal([]byte(span), &arr); err == nil {
		return map[string]any{KeyItems: arr}, true
	}
	return nil, false
}

// balancedSpan returns the first balanced open..close span in text, tracking
// JSON string literals so delimiters inside strings don't count.
func balancedSpan(text string, open, close byte) string {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// tryKeyValueLine handles a whole input that is one "key: value" line with
// exactly one separator (ASCII or full-width colon).
func tryKeyValueLine(raw string) (map[string]any, bool) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.Contains(line, "\n") {
		return nil, false
	}

	sep, sepLen := -1, 0
	if n := strings.Count(line, ":") + strings.Count(line, "："); n != 1 {
		return nil, false
	}
	if idx := strings.Index(line, ":"); idx >= 0 {
		sep, sepLen = idx, 1
	} else if idx := strings.Index(line, "："); idx >= 0 {
		sep, sepLen = idx, len("：")
	}
	if sep <= 0 {
		return nil, false
	}

	key := strings.TrimSpace(line[:sep])
	value := strings.TrimSpace(line[sep+sepLen:])
	if key == "" {
		return nil, false
	}
	return map[string]any{key: value}, true
}

// tryMarkdown splits the input on heading markers. Each section's heading text
// (punctuation-stripped) becomes a key; subsequent bullet or numbered lines
// become the value sequence. Succeeds only when at least one key was found.
func tryMarkdown(raw string) (map[string]any, bool) {
	lines := strings.Split(raw, "\n")
	result := make(map[string]any)

	var key string
	var values []any
	flush := func() {
		if key == "" {
			return
		}
		if len(values) > 0 {
			result[key] = values
		} else {
			result[key] = ""
		}
		key, values = "", nil
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			flush()
			key = stripPunct(strings.TrimLeft(line, "# "))
			continue
		}
		if key == "" {
			continue
		}
		if item, ok := bulletText(line); ok {
			values = append(values, item)
		}
	}
	flush()

	if len(result) == 0 {
		return nil, false
	}
	return result, true
}

// bulletText strips a leading bullet or "1." style marker and reports whether
// the line was a list item.
func bulletText(line string) (string, bool) {
	for _, marker := range []string{"-", "•", "*"} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	// Numbered list: digits followed by "." or "、"
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || strings.HasPrefix(line[i:], "、")) {
		rest := line[i:]
		rest = strings.TrimPrefix(rest, ".")
		rest = strings.TrimPrefix(rest, "、")
		return strings.TrimSpace(rest), true
	}
	return "", false
}

// stripPunct removes leading/trailing punctuation and whitespace from a key.
func stripPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
	})
}
