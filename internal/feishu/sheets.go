package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/jonathan/content-strategist/internal/config"
)

const (
	// DefaultBaseURL is the Feishu open-platform host.
	DefaultBaseURL = "https://open.feishu.cn"

	requestTimeout = 30 * time.Second
)

// sheetTokenPattern extracts the document token from a sheet URL.
var sheetTokenPattern = regexp.MustCompile(`/sheets/([A-Za-z0-9_-]+)`)

// ExtractSheetToken pulls the document token out of a Feishu sheet URL.
func ExtractSheetToken(url string) (string, error) {
	match := sheetTokenPattern.FindStringSubmatch(url)
	if match == nil {
		return "", fmt.Errorf("无效的飞书表格URL：%s", url)
	}
	return match[1], nil
}

// SheetManager creates spreadsheets from the configured template and writes
// cell values into them.
type SheetManager struct {
	tokens        *TokenCache
	httpClient    *http.Client
	baseURL       string
	templateToken string
	folderToken   string

	// sleep is stubbed in tests; the real delay covers template-copy
	// propagation before the first write.
	sleep func(time.Duration)
}

func NewSheetManager(cfg *config.Config) (*SheetManager, error) {
	templateToken, err := ExtractSheetToken(cfg.TemplateSheetURL)
	if err != nil {
		return nil, err
	}
	return &SheetManager{
		tokens:        NewTokenCache(cfg.FeishuAppID, cfg.FeishuAppSecret, DefaultBaseURL),
		httpClient:    &http.Client{Timeout: requestTimeout},
		baseURL:       DefaultBaseURL,
		templateToken: templateToken,
		folderToken:   cfg.FeishuFolderToken,
		sleep:         time.Sleep,
	}, nil
}

// SheetHandle identifies a freshly created spreadsheet.
type SheetHandle struct {
	Token   string
	URL     string
	SheetID string
}

type apiEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// CreateFromTemplate copies the template spreadsheet under the given title
// and resolves the first worksheet's ID.
func (m *SheetManager) CreateFromTemplate(ctx context.Context, title string) (SheetHandle, error) {
	payload := map[string]string{
		"name":         title,
		"type":         "sheet",
		"folder_token": m.folderToken,
	}
	var copied struct {
		File struct {
			Token string `json:"token"`
			URL   string `json:"url"`
		} `json:"file"`
	}
	copyPath := fmt.Sprintf("/open-apis/drive/v1/files/%s/copy", m.templateToken)
	if err := m.call(ctx, http.MethodPost, copyPath, payload, &copied); err != nil {
		return SheetHandle{}, fmt.Errorf("创建表格出错: %w", err)
	}
	if copied.File.Token == "" || copied.File.URL == "" {
		return SheetHandle{}, fmt.Errorf("缺少表格关键信息: token=%q url=%q", copied.File.Token, copied.File.URL)
	}

	var meta struct {
		Sheets []struct {
			SheetID string `json:"sheetId"`
		} `json:"sheets"`
	}
	metaPath := fmt.Sprintf("/open-apis/sheets/v2/spreadsheets/%s/metainfo", copied.File.Token)
	if err := m.call(ctx, http.MethodGet, metaPath, nil, &meta); err != nil {
		return SheetHandle{}, fmt.Errorf("获取sheet_id失败: %w", err)
	}
	if len(meta.Sheets) == 0 {
		return SheetHandle{}, fmt.Errorf("表格中未找到工作表")
	}

	sheetID := meta.Sheets[0].SheetID
	if sheetID == "" {
		sheetID = "0"
	}
	return SheetHandle{Token: copied.File.Token, URL: copied.File.URL, SheetID: sheetID}, nil
}

// WriteCells writes single-cell values in one batch. Cell keys use A1
// notation; ranges are addressed as sheetID!cell:cell.
func (m *SheetManager) WriteCells(ctx context.Context, token, sheetID string, cells map[string]string) error {
	type valueRange struct {
		Range  string     `json:"range"`
		Values [][]string `json:"values"`
	}
	ranges := make([]valueRange, 0, len(cells))
	for cell, value := range cells {
		ranges = append(ranges, valueRange{
			Range:  fmt.Sprintf("%s!%s:%s", sheetID, cell, cell),
			Values: [][]string{{value}},
		})
	}

	path := fmt.Sprintf("/open-apis/sheets/v2/spreadsheets/%s/values_batch_update", token)
	if err := m.call(ctx, http.MethodPost, path, map[string]any{"valueRanges": ranges}, nil); err != nil {
		return fmt.Errorf("写入失败: %w", err)
	}
	return nil
}

// call performs one authenticated API request and decodes data into out. A
// non-zero envelope code is an application error even on HTTP 200.
func (m *SheetManager) call(ctx context.Context, method, path string, payload, out any) error {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("API请求失败 (状态码: %d): %s", resp.StatusCode, raw)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("API返回格式异常: %w", err)
	}
	if envelope.Code != 0 {
		return fmt.Errorf("飞书接口错误: %s (错误码: %d)", envelope.Msg, envelope.Code)
	}
	if out != nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("API返回格式异常: %w", err)
		}
	}
	return nil
}
