package feishu

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/jonathan/content-strategist/internal/types"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	titleSuffix = " - 内容策略"

	bodyCell      = "B9"
	labelCell     = "B10"
	maxBodyRunes  = 1000
	maxLabelRunes = 100

	// Shot rows occupy columns A-F starting here, one row per shot.
	shotStartRow = 29

	// The copy API returns before the new spreadsheet is writable.
	creationDelay = time.Second
)

// titleForbidden matches characters the spreadsheet title cannot carry.
var titleForbidden = regexp.MustCompile(`[\\/*?:"<>|]`)

var shotColumns = [...]string{"A", "B", "C", "D", "E", "F"}

// PersistResult is the terminal outcome of one persistence attempt.
type PersistResult struct {
	Status  string `json:"status"`
	URL     string `json:"spreadsheet_url,omitempty"`
	Message string `json:"message"`
}

// Persist creates a spreadsheet from the template and writes the run's body,
// label, and shot rows into it. It never returns an error; every failure is
// folded into the result.
func (m *SheetManager) Persist(ctx context.Context, titleSeed, body, label string, shots types.ShotList) PersistResult {
	title := titleForbidden.ReplaceAllString(titleSeed, "-")
	if title == "" {
		title = "内容策略_" + time.Now().Format("200601021504")
	}

	handle, err := m.CreateFromTemplate(ctx, title+titleSuffix)
	if err != nil {
		return PersistResult{Status: StatusError, Message: err.Error()}
	}

	m.sleep(creationDelay)

	cells := map[string]string{
		bodyCell:  truncateRunes(body, maxBodyRunes),
		labelCell: truncateRunes(label, maxLabelRunes),
	}
	for i, shot := range shots {
		if problems := validateShot(shot); len(problems) > 0 {
			log.Printf("shot row %d failed schema validation, writing anyway: %v", shotStartRow+i, problems)
		}
		row := shotStartRow + i
		values := [...]string{shot.ShotType, shot.Visual, shot.Voiceover, shot.Caption, shot.Duration, shot.Notes}
		for col, value := range values {
			cells[fmt.Sprintf("%s%d", shotColumns[col], row)] = value
		}
	}

	if err := m.WriteCells(ctx, handle.Token, handle.SheetID, cells); err != nil {
		return PersistResult{
			Status:  StatusError,
			URL:     handle.URL,
			Message: fmt.Sprintf("表格创建成功，但写入数据失败: %v", err),
		}
	}

	return PersistResult{
		Status:  StatusSuccess,
		URL:     handle.URL,
		Message: "表格创建并写入成功",
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
