package acquire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/content-strategist/internal/types"
)

func newTestFetcher() *Fetcher {
	f := NewFetcher(false, false)
	f.sleep = func(time.Duration) {}
	return f
}

func TestFromURLRetriesEmptyThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			// An empty shell, as SPA hosts serve to bots.
			_, _ = w.Write([]byte("<html><body></body></html>"))
			return
		}
		_, _ = w.Write([]byte("<html><body><p>这位博主专注于美妆测评内容分享</p></body></html>"))
	}))
	defer srv.Close()

	result := newTestFetcher().FromURL(context.Background(), srv.URL)

	assert.Equal(t, 3, attempts)
	assert.True(t, result.Succeeded)
	assert.Contains(t, result.Document, "美妆测评")
}

func TestFromURLExhaustsRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	result := newTestFetcher().FromURL(context.Background(), srv.URL)

	assert.Equal(t, 3, attempts)
	assert.False(t, result.Succeeded)
	assert.True(t, strings.HasPrefix(result.Document, PrefixRetriesSpent))
	assert.Contains(t, result.Document, "（3次）")
}

func TestFromURLStatusCodeMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher()
	result := f.fetchOnce(context.Background(), srv.URL)
	assert.Equal(t, "请求失败，状态码: 404", result.Document)
}

func TestExtractInterleavesTextAndImages(t *testing.T) {
	page := `<html><body>
		<p>第一段正文内容，足够长不会被过滤。</p>
		<img src="/images/a.jpg">
		<p>第二段正文内容，同样足够长。</p>
		<img src="https://cdn.example.com/b.png">
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	result := newTestFetcher().FromURL(context.Background(), srv.URL)
	require.True(t, result.Succeeded)

	// Blocks appear in document order: text, image, text, image.
	firstText := strings.Index(result.Document, "第一段正文")
	firstImage := strings.Index(result.Document, "[图片内容]\nURL: "+srv.URL+"/images/a.jpg")
	secondText := strings.Index(result.Document, "第二段正文")
	secondImage := strings.Index(result.Document, "https://cdn.example.com/b.png")
	require.NotEqual(t, -1, firstImage, "relative image URL should be resolved against the page URL")
	assert.Less(t, firstText, firstImage)
	assert.Less(t, firstImage, secondText)
	assert.Less(t, secondText, secondImage)

	assert.Equal(t, []string{srv.URL + "/images/a.jpg", "https://cdn.example.com/b.png"}, result.ImageRefs)
}

func TestExtractSkipsScriptsAndDataImages(t *testing.T) {
	page := `<html><body>
		<script>var tracking = "这段脚本文字不应该出现在结果里";</script>
		<img src="data:image/png;base64,AAAA">
		<p>可见的正文内容应该被保留下来。</p>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	result := newTestFetcher().FromURL(context.Background(), srv.URL)
	assert.NotContains(t, result.Document, "这段脚本文字")
	assert.Contains(t, result.Document, "可见的正文内容")
	assert.Empty(t, result.ImageRefs)
}

func TestRemoveDuplicatesAndNoise(t *testing.T) {
	input := strings.Join([]string{
		"这是一条正常的内容行",
		"这是一条正常的内容行", // duplicate
		"广告合作请联系商务",  // noise
		"下载小红书查看更多精彩",
		"短行",
		"另一条有效的内容信息",
	}, "\n")

	cleaned := removeDuplicatesAndNoise(input)
	lines := strings.Split(cleaned, "\n")
	assert.Equal(t, []string{"这是一条正常的内容行", "另一条有效的内容信息"}, lines)
}

func TestExtractTruncatesLongDocuments(t *testing.T) {
	long := strings.Repeat("这是一段很长的测试文字内容。", 2000)
	page := "<html><body><p>" + long + "</p></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	result := newTestFetcher().FromURL(context.Background(), srv.URL)
	assert.True(t, strings.HasSuffix(result.Document, truncationMarker))
}

func TestNeedsRetry(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want bool
	}{
		{"empty", "", true},
		{"whitespace only", "  \n ", true},
		{"request failure", "请求失败，状态码: 503", true},
		{"fetch failure", "获取网页内容时出错: dial tcp", true},
		{"valid content", "[文本内容]\n这是正常提取的内容\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := needsRetry(types.AcquisitionResult{Document: tt.doc})
			assert.Equal(t, tt.want, got)
		})
	}
}
