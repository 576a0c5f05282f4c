package strategy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimingLedgerInsertionOrder(t *testing.T) {
	l := NewTimingLedger()
	l.Record("b", 2*time.Second)
	l.Record("a", 1*time.Second)
	l.Record("c", 3*time.Second)
	l.Record("a", 4*time.Second) // overwrite keeps position

	assert.Equal(t, []string{"b", "a", "c"}, l.Stages())
	assert.Equal(t, 4.0, l.Seconds("a"))
}

func TestRenderChartSortsDescending(t *testing.T) {
	l := NewTimingLedger()
	l.Record("快的环节", 1*time.Second)
	l.Record("慢的环节", 3*time.Second)

	chart := l.RenderChart()
	lines := strings.Split(chart, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "运行时间可视化 (单位: 秒):", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "慢的环节: 3.00s"))
	assert.True(t, strings.HasPrefix(lines[2], "快的环节: 1.00s"))

	// The slowest stage gets a full bar; each bar is exactly 30 cells.
	assert.Contains(t, lines[1], strings.Repeat("■", 30))
	assert.Equal(t, 30, strings.Count(lines[2], "■")+strings.Count(lines[2], "□"))
}

func TestRenderChartEmpty(t *testing.T) {
	assert.Equal(t, "无时间统计数据", NewTimingLedger().RenderChart())

	l := NewTimingLedger()
	l.Record("stage", 0)
	assert.Equal(t, "所有环节耗时为0", l.RenderChart())
}
