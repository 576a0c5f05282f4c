package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/content-strategist/internal/types"
)

func TestPrintStrategy(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStrategy(map[string]any{
		"hook":   "开场三秒抓注意力",
		"angle":  "对比实测",
		"格式建议": "竖屏",
	}, "测评类", "横向对比测评")

	output := buf.String()
	assert.Contains(t, output, "FINAL STRATEGY")
	assert.Contains(t, output, "测评类")
	assert.Contains(t, output, "横向对比测评")
	// Keys come out sorted.
	assert.Less(t, strings.Index(output, "angle"), strings.Index(output, "hook"))
}

func TestPrintStrategyNilIsSilent(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStrategy(nil, "测评类", "单品测评")
	assert.Empty(t, buf.String())
}

func TestPrintStrategyTruncatesLongList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	strategy := map[string]any{
		"a": 1, "b": 2, "c": 3, "d": 4, "e": 5, "f": 6, "g": 7,
	}
	p.PrintStrategy(strategy, "种草类", "好物合集")

	output := buf.String()
	assert.Contains(t, output, "... and 2 more")
	assert.NotContains(t, output, "• f:")
}

func TestPrintShotList(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintShotList(types.ShotList{
		{ShotType: "特写", Visual: "产品包装细节", Voiceover: "这款的质感很扎实", Duration: "3s"},
		{ShotType: "中景", Visual: "开箱过程", Caption: "第一印象"},
	})

	output := buf.String()
	assert.Contains(t, output, "SHOT LIST (2 shots)")
	assert.Contains(t, output, "1. [特写]")
	assert.Contains(t, output, "口播:")
	assert.Contains(t, output, "时长: 3s")
	assert.Contains(t, output, "字幕: 第一印象")
}

func TestPrintShotListEmptyIsSilent(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintShotList(nil)
	assert.Empty(t, buf.String())
}

func TestPrintScript(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintScript("秋季护肤测评", "开场白……", "自动生成")

	output := buf.String()
	assert.Contains(t, output, "VIDEO SCRIPT")
	assert.Contains(t, output, "Title: 秋季护肤测评")
	assert.Contains(t, output, "Label: 自动生成")
}

func TestPrintTimingChart(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTimingChart("")
	assert.Empty(t, buf.String())

	p.PrintTimingChart("运行时间可视化 (单位: 秒):")
	assert.Contains(t, buf.String(), "运行时间可视化")
}
