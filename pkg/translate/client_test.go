package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeComplete(t *testing.T) {
	var gotPath, gotKey, gotVersion string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"content":[{"type":"text","text":"번역 결과"}]}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClaude("sk-test", "", srv.URL)
	out, err := c.Complete(context.Background(), "translate this")
	require.NoError(t, err)

	assert.Equal(t, "번역 결과", out)
	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "sk-test", gotKey)
	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Equal(t, defaultModel, gotBody["model"])
	assert.Equal(t, float64(defaultMaxTokens), gotBody["max_tokens"])
}

func TestClaudeCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"type":"error","error":{"type":"rate_limit_error"}}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClaude("sk-test", "", srv.URL)
	_, err := c.Complete(context.Background(), "translate this")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClaudeCompleteEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content":[]}`)
	}))
	t.Cleanup(srv.Close)

	c := NewClaude("sk-test", "", srv.URL)
	_, err := c.Complete(context.Background(), "translate this")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}
