package reddit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StrategyScanner/internal/criteria"
	"StrategyScanner/internal/domain"
	"StrategyScanner/internal/scanner"
)

func listingPayload(posts ...[3]string) map[string]any {
	children := make([]map[string]any, 0, len(posts))
	for _, p := range posts {
		children = append(children, map[string]any{
			"data": map[string]any{
				"title":       p[0],
				"permalink":   p[1],
				"selftext":    p[2],
				"subreddit":   "algotrading",
				"created_utc": 1740000000.0,
			},
		})
	}
	return map[string]any{"data": map[string]any{"children": children}}
}

func newTestAdapter(srv *httptest.Server) *Adapter {
	return &Adapter{
		client:     srv.Client(),
		base:       srv.URL,
		subreddits: defaultSubreddits,
		bodies:     map[string]string{},
		log:        zerolog.Nop(),
	}
}

func TestFetchItems_SearchesSubreddit(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("restrict_sr"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		require.NoError(t, json.NewEncoder(w).Encode(listingPayload(
			[3]string{"My grid bot results", "/r/algotrading/comments/1/grid/", "Backtested a grid bot, 45% win rate."},
			[3]string{"Link post", "/r/algotrading/comments/2/link/", ""},
		)))
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	items, err := adapter.FetchItems(context.Background(), criteria.Criteria{Keywords: []string{"grid bot"}})
	require.NoError(t, err)

	require.Len(t, paths, 1)
	assert.Equal(t, "/r/algotrading/search.json", paths[0])

	require.Len(t, items, 2)
	assert.Equal(t, "My grid bot results", items[0].Title)
	assert.Equal(t, srv.URL+"/r/algotrading/comments/1/grid/", items[0].Link)
	assert.Equal(t, "r/algotrading", items[0].Channel)
	assert.Equal(t, "2025-02-19", items[0].Published)
}

func TestFetchItems_FilterOverridesSubreddits(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(listingPayload()))
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	_, err := adapter.FetchItems(context.Background(), criteria.Criteria{
		Keywords:      []string{"momentum"},
		SourceFilters: map[domain.Source]string{domain.SourceReddit: "r/quant, Daytrading"},
	})
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.True(t, strings.HasPrefix(paths[0], "/r/quant/"))
	assert.True(t, strings.HasPrefix(paths[1], "/r/Daytrading/"))
}

func TestFetchItems_TotalOutageFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	_, err := adapter.FetchItems(context.Background(), criteria.Criteria{Keywords: []string{"momentum"}})
	assert.Error(t, err)
}

func TestExtractText_UsesCachedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(listingPayload(
			[3]string{"Post", "/r/algotrading/comments/1/post/", "Full strategy write-up."},
		)))
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	items, err := adapter.FetchItems(context.Background(), criteria.Criteria{Keywords: []string{"x"}})
	require.NoError(t, err)
	require.Len(t, items, 1)

	text, err := adapter.ExtractText(context.Background(), items[0])
	require.NoError(t, err)
	assert.Equal(t, "Full strategy write-up.", text)
}

func TestExtractText_LinkPostFails(t *testing.T) {
	adapter := &Adapter{bodies: map[string]string{"https://x/post": ""}, log: zerolog.Nop()}

	_, err := adapter.ExtractText(context.Background(), scanner.Item{Link: "https://x/post"})
	assert.Error(t, err, "posts without self text are dropped")

	_, err = adapter.ExtractText(context.Background(), scanner.Item{Link: "https://x/unknown"})
	assert.Error(t, err, "links outside the current run are rejected")
}

func TestSplitSubreddits(t *testing.T) {
	assert.Equal(t, []string{"quant", "Daytrading"}, splitSubreddits("r/quant, Daytrading"))
	assert.Equal(t, defaultSubreddits, splitSubreddits(" , "))
}

func TestAdapterIdentity(t *testing.T) {
	adapter := &Adapter{}
	assert.Equal(t, domain.SourceReddit, adapter.Source())
	assert.Equal(t, 2, adapter.Priority())
}
