package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"StrategyScanner/internal/criteria"
	"StrategyScanner/internal/domain"
	"StrategyScanner/internal/scanner"
)

const (
	baseURL   = "https://www.reddit.com"
	userAgent = "StrategyScanner/1.0 (strategy research)"
	pageLimit = 25
)

var defaultSubreddits = []string{"algotrading"}

// Adapter searches subreddits through the public JSON listing API. Post
// bodies come back with the search results, so they are cached per run and
// ExtractText never refetches.
type Adapter struct {
	client     *http.Client
	base       string
	subreddits []string
	bodies     map[string]string
	log        zerolog.Logger
}

var _ scanner.SourceAdapter = (*Adapter)(nil)

// New builds the adapter from per-run options.
func New(opts scanner.BuildOptions) scanner.SourceAdapter {
	return &Adapter{
		client:     opts.HTTPClient,
		base:       baseURL,
		subreddits: defaultSubreddits,
		bodies:     map[string]string{},
		log:        opts.Log.With().Str("adapter", "reddit").Logger(),
	}
}

func (a *Adapter) Source() domain.Source { return domain.SourceReddit }

func (a *Adapter) Priority() int { return 2 }

type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Permalink  string  `json:"permalink"`
				SelfText   string  `json:"selftext"`
				Subreddit  string  `json:"subreddit"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchItems searches each subreddit for each keyword. The Reddit filter
// string, when set, is a comma list of subreddits overriding the default.
func (a *Adapter) FetchItems(ctx context.Context, c criteria.Criteria) ([]scanner.Item, error) {
	keywords := c.Keywords
	if len(keywords) == 0 {
		keywords = []string{"trading strategy backtest"}
	}

	subreddits := a.subreddits
	if filter := c.FilterFor(domain.SourceReddit); filter != "" {
		subreddits = splitSubreddits(filter)
	}

	var (
		results []scanner.Item
		seen    = map[string]struct{}{}
		failed  int
	)
	for _, subreddit := range subreddits {
		for _, keyword := range keywords {
			items, err := a.searchSubreddit(ctx, subreddit, keyword)
			if err != nil {
				failed++
				a.log.Debug().Err(err).Str("subreddit", subreddit).Str("keyword", keyword).Msg("subreddit search failed")
				continue
			}
			for _, item := range items {
				if _, ok := seen[item.Link]; ok {
					continue
				}
				seen[item.Link] = struct{}{}
				results = append(results, item)
			}
		}
	}

	if len(results) == 0 && failed > 0 {
		return nil, fmt.Errorf("all %d reddit searches failed", failed)
	}
	return results, nil
}

func (a *Adapter) searchSubreddit(ctx context.Context, subreddit, keyword string) ([]scanner.Item, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("restrict_sr", "1")
	params.Set("sort", "relevance")
	params.Set("limit", fmt.Sprintf("%d", pageLimit))

	endpoint := fmt.Sprintf("%s/r/%s/search.json?%s", a.base, subreddit, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("reddit %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded listing
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	items := make([]scanner.Item, 0, len(decoded.Data.Children))
	for _, child := range decoded.Data.Children {
		post := child.Data
		if post.Permalink == "" {
			continue
		}

		link := a.base + post.Permalink
		a.bodies[link] = strings.TrimSpace(post.SelfText)

		items = append(items, scanner.Item{
			Title:     post.Title,
			Link:      link,
			Channel:   "r/" + post.Subreddit,
			Published: time.Unix(int64(post.CreatedUTC), 0).UTC().Format("2006-01-02"),
		})
	}
	return items, nil
}

// ExtractText returns the post body cached during FetchItems. Link posts
// carry no self text and are dropped.
func (a *Adapter) ExtractText(_ context.Context, item scanner.Item) (string, error) {
	body, ok := a.bodies[item.Link]
	if !ok {
		return "", fmt.Errorf("post %s was not fetched this run", item.Link)
	}
	if body == "" {
		return "", fmt.Errorf("post %s has no self text", item.Link)
	}
	return body, nil
}

func splitSubreddits(filter string) []string {
	parts := strings.Split(filter, ",")
	subreddits := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimPrefix(strings.TrimSpace(part), "r/")
		if part == "" {
			continue
		}
		subreddits = append(subreddits, part)
	}
	if len(subreddits) == 0 {
		return defaultSubreddits
	}
	return subreddits
}
