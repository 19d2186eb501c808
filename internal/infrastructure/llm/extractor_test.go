package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StrategyScanner/internal/config"
)

func newFakeChatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "gpt-4o-mini", payload["model"])
		assert.Contains(t, payload, "response_format")

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newTestExtractor(endpoint string) *Extractor {
	return NewExtractor(config.LLMConfig{
		Endpoint: endpoint,
		Model:    "gpt-4o-mini",
		APIKey:   "test-key",
	}, http.DefaultClient, zerolog.Nop())
}

func TestExtract_ParsesModelJSON(t *testing.T) {
	t.Parallel()

	content := `{"name":"EMA Cross","cagr":"38%","win":"Not mentioned","quality_score":8}`
	srv := newFakeChatServer(t, content, http.StatusOK)
	defer srv.Close()

	fields, err := newTestExtractor(srv.URL).Extract(context.Background(), "EMA Cross Video", "transcript text")
	require.NoError(t, err)

	assert.Equal(t, "EMA Cross", fields["name"])
	assert.Equal(t, "38%", fields["cagr"])
	assert.Equal(t, "Not mentioned", fields["win"])
	assert.Equal(t, 8.0, fields["quality_score"])
}

func TestExtract_NonJSONContentFails(t *testing.T) {
	t.Parallel()

	srv := newFakeChatServer(t, "Sorry, I cannot analyze this transcript.", http.StatusOK)
	defer srv.Close()

	_, err := newTestExtractor(srv.URL).Extract(context.Background(), "title", "text")
	assert.Error(t, err)
}

func TestExtract_UpstreamErrorFails(t *testing.T) {
	t.Parallel()

	srv := newFakeChatServer(t, "", http.StatusTooManyRequests)
	defer srv.Close()

	_, err := newTestExtractor(srv.URL).Extract(context.Background(), "title", "text")
	assert.Error(t, err)
}

func TestExtract_MisconfiguredClientFails(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(config.LLMConfig{}, http.DefaultClient, zerolog.Nop())
	_, err := extractor.Extract(context.Background(), "title", "text")
	assert.Error(t, err)
}

func TestExtract_TruncatesLongText(t *testing.T) {
	t.Parallel()

	var gotLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Messages, 2)
		gotLen = len(payload.Messages[1].Content)

		resp := map[string]any{"choices": []map[string]any{
			{"message": map[string]any{"content": `{"name":"x"}`}},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	long := make([]byte, 50000)
	for i := range long {
		long[i] = 'a'
	}

	_, err := newTestExtractor(srv.URL).Extract(context.Background(), "title", string(long))
	require.NoError(t, err)
	assert.Less(t, gotLen, 10000, "transcript must be truncated before sending")
}
