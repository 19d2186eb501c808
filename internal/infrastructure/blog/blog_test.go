package blog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StrategyScanner/internal/criteria"
	"StrategyScanner/internal/domain"
	"StrategyScanner/internal/scanner"
)

func scannerItem(link string) scanner.Item {
	return scanner.Item{Title: "test", Link: link}
}

const searchPage = `<html><body>
<article>
	<h2 class="entry-title"><a href="%[1]s/ema-cross-backtest">EMA Cross Backtest Results</a></h2>
	<time datetime="2025-02-01T10:00:00+00:00">Feb 1</time>
</article>
<article>
	<h2 class="entry-title"><a href="%[1]s/rsi-mean-reversion">RSI Mean Reversion Study</a></h2>
</article>
<article>
	<h2 class="entry-title"><a href="">Broken entry</a></h2>
</article>
</body></html>`

const articlePage = `<html><body><div class="entry-content">
<p>We backtested an EMA crossover from 2010 to 2024.</p>
<p>The CAGR came out at 18% with a max drawdown of 22%.</p>
<li>Long when fast EMA crosses above slow EMA.</li>
</div></body></html>`

func newTestAdapter(srv *httptest.Server) *Adapter {
	return &Adapter{
		client: srv.Client(),
		sites:  []string{srv.URL},
		log:    zerolog.Nop(),
	}
}

func newBlogServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("s") == "" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, searchPage, srv.URL)
	})
	mux.HandleFunc("/ema-cross-backtest", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, articlePage)
	})
	mux.HandleFunc("/empty-article", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><div class="entry-content"></div></body></html>`)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchItems_ParsesSearchResults(t *testing.T) {
	srv := newBlogServer(t)
	adapter := newTestAdapter(srv)

	items, err := adapter.FetchItems(context.Background(), criteria.Criteria{Keywords: []string{"ema cross"}})
	require.NoError(t, err)
	require.Len(t, items, 2, "entries without a link are skipped")

	assert.Equal(t, "EMA Cross Backtest Results", items[0].Title)
	assert.Equal(t, srv.URL+"/ema-cross-backtest", items[0].Link)
	assert.Equal(t, "2025-02-01", items[0].Published)
	assert.Equal(t, "RSI Mean Reversion Study", items[1].Title)
	assert.Empty(t, items[1].Published)
}

func TestFetchItems_DeduplicatesAcrossKeywords(t *testing.T) {
	srv := newBlogServer(t)
	adapter := newTestAdapter(srv)

	items, err := adapter.FetchItems(context.Background(), criteria.Criteria{
		Keywords: []string{"ema cross", "moving average"},
	})
	require.NoError(t, err)
	assert.Len(t, items, 2, "the same article from two searches appears once")
}

func TestFetchItems_TotalOutageFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	adapter := newTestAdapter(srv)
	_, err := adapter.FetchItems(context.Background(), criteria.Criteria{Keywords: []string{"ema"}})
	assert.Error(t, err)
}

func TestFilterSites(t *testing.T) {
	adapter := &Adapter{sites: []string{
		"https://www.quantifiedstrategies.com",
		"https://www.tradingheroes.com",
	}, log: zerolog.Nop()}

	assert.Equal(t, adapter.sites, adapter.filterSites(""))
	assert.Equal(t, []string{"https://www.tradingheroes.com"}, adapter.filterSites("tradingheroes"))
	assert.Equal(t, adapter.sites, adapter.filterSites("nosuchsite"), "unmatched filter falls back to all sites")
}

func TestExtractText_JoinsBodyParagraphs(t *testing.T) {
	srv := newBlogServer(t)
	adapter := newTestAdapter(srv)

	text, err := adapter.ExtractText(context.Background(), scannerItem(srv.URL+"/ema-cross-backtest"))
	require.NoError(t, err)
	assert.Contains(t, text, "CAGR came out at 18%")
	assert.Contains(t, text, "fast EMA crosses above slow EMA")
}

func TestExtractText_EmptyBodyFails(t *testing.T) {
	srv := newBlogServer(t)
	adapter := newTestAdapter(srv)

	_, err := adapter.ExtractText(context.Background(), scannerItem(srv.URL+"/empty-article"))
	assert.Error(t, err)
}

func TestAdapterIdentity(t *testing.T) {
	adapter := &Adapter{}
	assert.Equal(t, domain.SourceBlog, adapter.Source())
	assert.Equal(t, 3, adapter.Priority())
}
