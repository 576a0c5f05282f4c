// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/content-strategist/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStrategy outputs a human-readable summary of the final strategy
// object, keys sorted for stable output.
func (p *Printer) PrintStrategy(strategy map[string]any, styleType, direction string) {
	if strategy == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Style:     %s\n", styleType))
	sb.WriteString(fmt.Sprintf("Direction: %s\n", direction))
	sb.WriteString("\n")

	keys := make([]string, 0, len(strategy))
	for k := range strategy {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	count := min(len(keys), maxItemsToShow)
	for _, k := range keys[:count] {
		sb.WriteString(fmt.Sprintf("  • %s: %v\n", k, strategy[k]))
	}
	if len(keys) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(keys)-maxItemsToShow))
	}

	p.printBox("FINAL STRATEGY", sb.String())
}

// PrintShotList outputs the shot list as a numbered table.
func (p *Printer) PrintShotList(shots types.ShotList) {
	if len(shots) == 0 {
		return
	}

	var sb strings.Builder
	for i, shot := range shots {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, shot.ShotType, shot.Visual))
		if shot.Voiceover != "" {
			sb.WriteString(fmt.Sprintf("   口播: %s\n", shot.Voiceover))
		}
		if shot.Caption != "" {
			sb.WriteString(fmt.Sprintf("   字幕: %s\n", shot.Caption))
		}
		if shot.Duration != "" {
			sb.WriteString(fmt.Sprintf("   时长: %s\n", shot.Duration))
		}
	}

	p.printBox(fmt.Sprintf("SHOT LIST (%d shots)", len(shots)), sb.String())
}

// PrintScript outputs the parsed video-script artifacts.
func (p *Printer) PrintScript(title, text, label string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title: %s\n", title))
	sb.WriteString(fmt.Sprintf("Label: %s\n", label))
	sb.WriteString("\n")
	sb.WriteString(text)

	p.printBox("VIDEO SCRIPT", sb.String())
}

// PrintTimingChart outputs a pre-rendered timing chart.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintTimingChart(chart string) {
	if chart == "" {
		return
	}
	fmt.Fprintln(p.out, chart)
}
