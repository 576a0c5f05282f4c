package strategy

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jonathan/content-strategist/internal/normalize"
)

const defaultScriptLabel = "自动生成"

// ScriptArtifacts is what the persistence stage needs out of the video-script
// answer: a spreadsheet title seed, the body copy, and the label line.
type ScriptArtifacts struct {
	Title string
	Text  string
	Label string
}

// ParseScript extracts title, text, and label from a raw video-script answer.
// The model sometimes wraps the real payload in a second JSON layer under a
// "content" string, and sometimes fences the JSON in a code block; both forms
// are unwrapped. A completely unparseable answer becomes the body verbatim,
// with the first line pressed into service as the title.
func ParseScript(raw string) ScriptArtifacts {
	art := ScriptArtifacts{
		Title: defaultTitle(),
		Label: defaultScriptLabel,
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		cleaned := normalize.CleanFences(raw)
		if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
			art.Text = raw
			if line := firstNonEmptyLine(raw); line != "" {
				art.Title = truncateRunes(line, 50)
			}
			return art
		}
	}

	// Double-nested answers carry the real object as a JSON string under
	// "content".
	if inner, ok := data["content"].(string); ok {
		var content map[string]any
		if err := json.Unmarshal([]byte(inner), &content); err == nil {
			data = content
		}
	}

	if title, ok := data["title"].(string); ok && title != "" {
		art.Title = title
	}
	if text, ok := data["text"].(string); ok {
		art.Text = text
	}
	if label, ok := data["label"].(string); ok && label != "" {
		art.Label = label
	}
	return art
}

func defaultTitle() string {
	return "内容策略_" + time.Now().Format("200601021504")
}

func firstNonEmptyLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
