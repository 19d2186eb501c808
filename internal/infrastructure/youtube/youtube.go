package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"StrategyScanner/internal/criteria"
	"StrategyScanner/internal/domain"
	"StrategyScanner/internal/scanner"
)

const (
	searchEndpoint    = "https://www.googleapis.com/youtube/v3/search"
	timedtextEndpoint = "https://video.google.com/timedtext"
	maxResults        = 25
)

// Adapter searches the YouTube Data API for candidate strategy videos and
// pulls their transcripts through the public timedtext endpoint.
type Adapter struct {
	client        *http.Client
	apiKey        string
	searchURL     string
	transcriptURL string
	log           zerolog.Logger
}

var _ scanner.SourceAdapter = (*Adapter)(nil)

// New builds the adapter from per-run options; the API key arrives with the
// request, not from process configuration.
func New(opts scanner.BuildOptions) scanner.SourceAdapter {
	return &Adapter{
		client:        opts.HTTPClient,
		apiKey:        opts.APIKey,
		searchURL:     searchEndpoint,
		transcriptURL: timedtextEndpoint,
		log:           opts.Log.With().Str("adapter", "youtube").Logger(),
	}
}

func (a *Adapter) Source() domain.Source { return domain.SourceYouTube }

func (a *Adapter) Priority() int { return 1 }

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

// FetchItems runs one Data API search per keyword and merges the results,
// dropping duplicate video IDs. The free-form YouTube filter string is
// appended to each query.
func (a *Adapter) FetchItems(ctx context.Context, c criteria.Criteria) ([]scanner.Item, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("youtube api key is missing")
	}

	keywords := c.Keywords
	if len(keywords) == 0 {
		keywords = []string{"trading strategy backtest"}
	}

	filter := c.FilterFor(domain.SourceYouTube)

	var (
		results []scanner.Item
		seen    = map[string]struct{}{}
	)
	for _, keyword := range keywords {
		query := keyword
		if filter != "" {
			query = keyword + " " + filter
		}

		items, err := a.search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", keyword, err)
		}

		for _, item := range items {
			if _, ok := seen[item.Link]; ok {
				continue
			}
			seen[item.Link] = struct{}{}
			results = append(results, item)
		}
	}

	return results, nil
}

func (a *Adapter) search(ctx context.Context, query string) ([]scanner.Item, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", fmt.Sprintf("%d", maxResults))
	params.Set("q", query)
	params.Set("key", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("youtube api %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]scanner.Item, 0, len(decoded.Items))
	for _, entry := range decoded.Items {
		if entry.ID.VideoID == "" {
			continue
		}

		published := entry.Snippet.PublishedAt
		if len(published) > 10 {
			published = published[:10]
		}

		items = append(items, scanner.Item{
			Title:     html.UnescapeString(entry.Snippet.Title),
			Link:      "https://www.youtube.com/watch?v=" + entry.ID.VideoID,
			Channel:   entry.Snippet.ChannelTitle,
			Published: published,
		})
	}
	return items, nil
}

type transcript struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// ExtractText downloads the English transcript for one video. Videos without
// captions fail here and are dropped one at a time upstream.
func (a *Adapter) ExtractText(ctx context.Context, item scanner.Item) (string, error) {
	videoID := videoIDFromLink(item.Link)
	if videoID == "" {
		return "", fmt.Errorf("link %s carries no video id", item.Link)
	}

	params := url.Values{}
	params.Set("lang", "en")
	params.Set("v", videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.transcriptURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcript request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timedtext returned %s", resp.Status)
	}

	var decoded transcript
	if err := xml.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}

	var parts []string
	for _, text := range decoded.Texts {
		value := strings.TrimSpace(html.UnescapeString(text.Value))
		if value != "" {
			parts = append(parts, value)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("video %s has no transcript", videoID)
	}

	return strings.Join(parts, " "), nil
}

func videoIDFromLink(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return parsed.Query().Get("v")
}
