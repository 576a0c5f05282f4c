package strategy

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const timingBarWidth = 30

// TimingLedger records how long each pipeline stage took, preserving the
// order stages were recorded in.
type TimingLedger struct {
	order     []string
	durations map[string]time.Duration
}

func NewTimingLedger() *TimingLedger {
	return &TimingLedger{durations: make(map[string]time.Duration)}
}

// Record stores a stage duration. Recording the same stage again overwrites
// the duration but keeps the original position.
func (l *TimingLedger) Record(stage string, d time.Duration) {
	if _, ok := l.durations[stage]; !ok {
		l.order = append(l.order, stage)
	}
	l.durations[stage] = d
}

// Stages returns the recorded stage names in insertion order.
func (l *TimingLedger) Stages() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Seconds returns the recorded duration for a stage, in seconds.
func (l *TimingLedger) Seconds(stage string) float64 {
	return l.durations[stage].Seconds()
}

// RenderChart renders the ledger as a horizontal bar chart, longest stage
// first, each bar scaled to the slowest stage.
func (l *TimingLedger) RenderChart() string {
	if len(l.order) == 0 {
		return "无时间统计数据"
	}

	var maxDur time.Duration
	for _, d := range l.durations {
		if d > maxDur {
			maxDur = d
		}
	}
	if maxDur == 0 {
		return "所有环节耗时为0"
	}

	stages := l.Stages()
	sort.SliceStable(stages, func(i, j int) bool {
		return l.durations[stages[i]] > l.durations[stages[j]]
	})

	lines := []string{"运行时间可视化 (单位: 秒):"}
	for _, stage := range stages {
		d := l.durations[stage]
		filled := int(float64(d) / float64(maxDur) * timingBarWidth)
		bar := strings.Repeat("■", filled) + strings.Repeat("□", timingBarWidth-filled)
		lines = append(lines, fmt.Sprintf("%s: %.2fs | %s", stage, d.Seconds(), bar))
	}
	return strings.Join(lines, "\n")
}
