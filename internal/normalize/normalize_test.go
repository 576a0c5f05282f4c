package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{
			name: "plain object",
			raw:  `{"title": "标题", "score": 3}`,
			want: map[string]any{"title": "标题", "score": float64(3)},
		},
		{
			name: "fenced object",
			raw:  "```json\n{\"key\": \"value\"}\n```",
			want: map[string]any{"key": "value"},
		},
		{
			name: "object embedded in prose",
			raw:  `好的，以下是结果：{"方向": "单品测评"}，请查收。`,
			want: map[string]any{"方向": "单品测评"},
		},
		{
			name: "braces inside string literals ignored",
			raw:  `{"text": "a } b { c", "ok": true}`,
			want: map[string]any{"text": "a } b { c", "ok": true},
		},
		{
			name: "top-level array wrapped under items",
			raw:  `[{"a": 1}, {"b": 2}]`,
			want: map[string]any{KeyItems: []any{
				map[string]any{"a": float64(1)},
				map[string]any{"b": float64(2)},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalizeKeyValueLine(t *testing.T) {
	assert.Equal(t, map[string]any{"风格": "活泼"}, Normalize("风格: 活泼"))
	assert.Equal(t, map[string]any{"风格": "活泼"}, Normalize("风格：活泼"))

	// Two separators means this is not a single key-value line.
	m := Normalize("a: b: c")
	assert.Equal(t, "a: b: c", m[KeyRawContent])
}

func TestNormalizeMarkdown(t *testing.T) {
	raw := strings.Join([]string{
		"# 核心卖点",
		"- 轻薄便携",
		"- 续航持久",
		"## 注意事项",
		"1. 避免高温",
	}, "\n")

	m := Normalize(raw)
	require.Contains(t, m, "核心卖点")
	assert.Equal(t, []any{"轻薄便携", "续航持久"}, m["核心卖点"])
	assert.Equal(t, []any{"避免高温"}, m["注意事项"])
}

func TestNormalizeFallback(t *testing.T) {
	m := Normalize("这是一段没有任何结构的文字。\n第二行。")
	assert.Equal(t, "这是一段没有任何结构的文字。\n第二行。", m[KeyRawContent])
	assert.True(t, Degraded(m))
}

func TestNormalizeNeverNil(t *testing.T) {
	for _, raw := range []string{"", "   ", "{", "```"} {
		m := Normalize(raw)
		require.NotNil(t, m, "input %q", raw)
	}
}

// Normalizing the canonical text of a normalized mapping must recover an
// equivalent mapping.
func TestNormalizeIdempotentForJSON(t *testing.T) {
	inputs := []string{
		`{"title": "秋日好物", "tags": ["a", "b"]}`,
		"```json\n{\"nested\": {\"k\": \"v\"}}\n```",
		`[{"镜号": "特写"}]`,
	}
	for _, raw := range inputs {
		first := Normalize(raw)
		second := Normalize(ToText(first))
		assert.Equal(t, first, second, "input %q", raw)
	}
}

func TestCleanFences(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, CleanFences("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, CleanFences("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, CleanFences(`{"a": 1}`))
}

func TestAccessHelpers(t *testing.T) {
	m := map[string]any{
		"name":  "测评",
		"count": float64(2),
	}

	assert.Equal(t, "测评", String(m, "name"))
	assert.Equal(t, "2", String(m, "count"))
	assert.Equal(t, "", String(m, "missing"))

	v, ok := FirstString(m, "missing", "name")
	assert.True(t, ok)
	assert.Equal(t, "测评", v)

	_, ok = FirstString(m, "nope")
	assert.False(t, ok)
}
