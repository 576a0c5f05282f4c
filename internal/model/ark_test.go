package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArkClient(apiURL string) *ArkClient {
	c := NewArkClient("test-key", apiURL, "test-model")
	c.sleep = func(time.Duration) {}
	return c
}

func arkReply(content string) string {
	return `{"choices": [{"message": {"content": ` + mustJSON(content) + `}}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestArkInvokeSuccess(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(arkReply(`{"result": "ok"}`)))
	}))
	defer srv.Close()

	outcome := newTestArkClient(srv.URL).Invoke(context.Background(), Invocation{
		SystemPrompt: "你是内容策略专家",
		UserPrompt:   "分析以下内容",
	})

	require.False(t, outcome.Failed())
	assert.Equal(t, `{"result": "ok"}`, outcome.Text)

	assert.Equal(t, "test-model", captured["model"])
	assert.Equal(t, 0.1, captured["temperature"])
	assert.Equal(t, float64(2048), captured["max_tokens"])
	thinking, ok := captured["thinking"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "disabled", thinking["type"])
}

func TestArkInvokeAuthErrorNoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	outcome := newTestArkClient(srv.URL).Invoke(context.Background(), Invocation{UserPrompt: "x"})

	require.True(t, outcome.Failed())
	assert.Equal(t, AuthError, outcome.Err.Kind)
	assert.Equal(t, "invalid API key", outcome.Err.Detail)
	assert.Equal(t, 1, calls)
}

func TestArkInvokeBadRequestNoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "bad prompt"}`))
	}))
	defer srv.Close()

	outcome := newTestArkClient(srv.URL).Invoke(context.Background(), Invocation{UserPrompt: "x"})

	require.True(t, outcome.Failed())
	assert.Equal(t, BadRequest, outcome.Err.Kind)
	assert.Contains(t, outcome.Err.Detail, "bad prompt")
	assert.Equal(t, 1, calls)
}

func TestArkInvokeRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(arkReply("recovered")))
	}))
	defer srv.Close()

	outcome := newTestArkClient(srv.URL).Invoke(context.Background(), Invocation{UserPrompt: "x"})

	require.False(t, outcome.Failed())
	assert.Equal(t, "recovered", outcome.Text)
	assert.Equal(t, 3, calls)
}

func TestArkInvokeExhaustsRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var slept []time.Duration
	c := NewArkClient("k", srv.URL, "m")
	c.sleep = func(d time.Duration) { slept = append(slept, d) }

	outcome := c.Invoke(context.Background(), Invocation{UserPrompt: "x"})

	require.True(t, outcome.Failed())
	assert.Equal(t, ExhaustedRetries, outcome.Err.Kind)
	assert.Equal(t, 3, calls)
	// Linear backoff: 5s after the first failure, 10s after the second.
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, slept)
}

func TestArkInvokeEmptyEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	outcome := newTestArkClient(srv.URL).Invoke(context.Background(), Invocation{UserPrompt: "x"})

	require.True(t, outcome.Failed())
	assert.Equal(t, BadRequest, outcome.Err.Kind)
	assert.Equal(t, "empty completion envelope", outcome.Err.Detail)
}

func TestBuildArkMessagesAttachesLocalImages(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "shot.jpg")
	require.NoError(t, os.WriteFile(img, []byte{0xff, 0xd8, 0xff}, 0o644))

	messages := buildArkMessages(Invocation{
		SystemPrompt: "sys",
		UserPrompt:   "user",
		ImageRefs:    []string{img, "https://cdn.example.com/remote.jpg"},
	})

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "sys", messages[0].Content)

	parts, ok := messages[1].Content.([]arkContentPart)
	require.True(t, ok)
	// Text plus the one local image; the remote URL is not fetched.
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.Contains(t, parts[1].ImageURL.URL, "data:image/jpeg;base64,")
}

func TestFailureErrorString(t *testing.T) {
	f := &Failure{Kind: AuthError, Detail: "invalid API key"}
	assert.Contains(t, f.Error(), "auth_error")
	assert.Contains(t, f.Error(), "invalid API key")
}
