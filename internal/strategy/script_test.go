package strategy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScriptFlat(t *testing.T) {
	art := ParseScript(`{"title": "秋日好物", "text": "入手一周测评", "label": "好物分享"}`)
	assert.Equal(t, "秋日好物", art.Title)
	assert.Equal(t, "入手一周测评", art.Text)
	assert.Equal(t, "好物分享", art.Label)
}

func TestParseScriptDoubleNested(t *testing.T) {
	art := ParseScript(`{"content": "{\"title\": \"内层标题\", \"text\": \"内层正文\", \"label\": \"内层标签\"}"}`)
	assert.Equal(t, "内层标题", art.Title)
	assert.Equal(t, "内层正文", art.Text)
	assert.Equal(t, "内层标签", art.Label)
}

func TestParseScriptFencedJSON(t *testing.T) {
	art := ParseScript("```json\n{\"title\": \"围栏标题\", \"text\": \"围栏正文\"}\n```")
	assert.Equal(t, "围栏标题", art.Title)
	assert.Equal(t, "围栏正文", art.Text)
	assert.Equal(t, defaultScriptLabel, art.Label)
}

func TestParseScriptPlainText(t *testing.T) {
	raw := "这是第一行，会成为标题\n这是后面的正文内容"
	art := ParseScript(raw)
	assert.Equal(t, "这是第一行，会成为标题", art.Title)
	assert.Equal(t, raw, art.Text)
	assert.Equal(t, defaultScriptLabel, art.Label)
}

func TestParseScriptLongFirstLineTruncated(t *testing.T) {
	long := strings.Repeat("很长的标题", 20)
	art := ParseScript(long)
	assert.Len(t, []rune(art.Title), 50)
}

func TestParseScriptEmptyFieldsKeepDefaults(t *testing.T) {
	art := ParseScript(`{"text": "只有正文"}`)
	assert.True(t, strings.HasPrefix(art.Title, "内容策略_"))
	assert.Equal(t, "只有正文", art.Text)
	assert.Equal(t, defaultScriptLabel, art.Label)
}

func TestStyleTypeMessage(t *testing.T) {
	msg := styleTypeMessage([]string{"测评类", "种草类"})
	assert.Equal(t, "风格类型必须是'测评类'或'种草类'", msg)
}
