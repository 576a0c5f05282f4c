// Package feishu persists finished runs into a Feishu spreadsheet copied from
// a template. All failures stop at this package's boundary as a PersistResult;
// a spreadsheet problem must never take down a run that already produced its
// strategy and script.
package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	tokenPath = "/open-apis/auth/v3/tenant_access_token/internal"

	// Tokens are refreshed this far before their reported expiry so a token
	// cannot go stale between cache read and API call.
	tokenExpirySkew = 60 * time.Second

	tokenRequestTimeout = 30 * time.Second
)

// TokenCache caches the tenant access token and refreshes it on demand.
type TokenCache struct {
	appID      string
	appSecret  string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time

	mu     sync.Mutex
	value  string
	expiry time.Time
}

func NewTokenCache(appID, appSecret, baseURL string) *TokenCache {
	return &TokenCache{
		appID:      appID,
		appSecret:  appSecret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: tokenRequestTimeout},
		now:        time.Now,
	}
}

type tokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

// Token returns a valid tenant access token, refreshing when the cached one
// is absent or within the expiry skew.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value != "" && c.now().Add(tokenExpirySkew).Before(c.expiry) {
		return c.value, nil
	}

	payload, err := json.Marshal(map[string]string{
		"app_id":     c.appID,
		"app_secret": c.appSecret,
	})
	if err != nil {
		return "", fmt.Errorf("获取飞书令牌失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("获取飞书令牌失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("获取飞书令牌失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("获取飞书令牌失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("获取飞书令牌失败: 响应状态码 %d: %s", resp.StatusCode, body)
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("处理令牌时出错: %w", err)
	}
	if parsed.TenantAccessToken == "" {
		return "", fmt.Errorf("飞书令牌接口缺少关键字段: %s", body)
	}

	c.value = parsed.TenantAccessToken
	c.expiry = c.now().Add(time.Duration(parsed.Expire) * time.Second)
	return c.value, nil
}
