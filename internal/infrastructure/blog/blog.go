package blog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"StrategyScanner/internal/criteria"
	"StrategyScanner/internal/domain"
	"StrategyScanner/internal/scanner"
)

const (
	userAgent  = "StrategyScanner/1.0"
	maxPerSite = 10
)

// defaultSites are WordPress-style trading blogs whose search pages share
// the ?s= query convention and entry-title/entry-content markup.
var defaultSites = []string{
	"https://www.quantifiedstrategies.com",
	"https://www.tradingheroes.com",
}

// Adapter scrapes trading blogs. FetchItems walks each site's search page
// per keyword; ExtractText pulls the article body.
type Adapter struct {
	client *http.Client
	sites  []string
	log    zerolog.Logger
}

var _ scanner.SourceAdapter = (*Adapter)(nil)

// New builds the adapter from per-run options.
func New(opts scanner.BuildOptions) scanner.SourceAdapter {
	return &Adapter{
		client: opts.HTTPClient,
		sites:  defaultSites,
		log:    opts.Log.With().Str("adapter", "blog").Logger(),
	}
}

func (a *Adapter) Source() domain.Source { return domain.SourceBlog }

func (a *Adapter) Priority() int { return 3 }

// FetchItems searches every configured site for every keyword. The blog
// filter string, when set, restricts sites to those whose host contains it.
func (a *Adapter) FetchItems(ctx context.Context, c criteria.Criteria) ([]scanner.Item, error) {
	keywords := c.Keywords
	if len(keywords) == 0 {
		keywords = []string{"trading strategy backtest"}
	}

	sites := a.filterSites(c.FilterFor(domain.SourceBlog))

	var (
		results []scanner.Item
		seen    = map[string]struct{}{}
		failed  int
	)
	for _, site := range sites {
		for _, keyword := range keywords {
			items, err := a.searchSite(ctx, site, keyword)
			if err != nil {
				failed++
				a.log.Debug().Err(err).Str("site", site).Str("keyword", keyword).Msg("site search failed")
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

	// Only a total outage counts as the adapter being unavailable.
	if len(results) == 0 && failed > 0 {
		return nil, fmt.Errorf("all %d blog searches failed", failed)
	}
	return results, nil
}

func (a *Adapter) filterSites(filter string) []string {
	if filter == "" {
		return a.sites
	}

	var matched []string
	for _, site := range a.sites {
		if strings.Contains(strings.ToLower(site), strings.ToLower(filter)) {
			matched = append(matched, site)
		}
	}
	if len(matched) == 0 {
		return a.sites
	}
	return matched
}

func (a *Adapter) searchSite(ctx context.Context, site, keyword string) ([]scanner.Item, error) {
	searchURL, err := buildSearchURL(site, keyword)
	if err != nil {
		return nil, err
	}

	doc, err := a.fetchDocument(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	host := hostLabel(site)

	var items []scanner.Item
	doc.Find("article").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= maxPerSite {
			return false
		}

		link := sel.Find(".entry-title a, h2 a").First()
		href, _ := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if href == "" || title == "" {
			return true
		}

		published, _ := sel.Find("time").First().Attr("datetime")
		if len(published) > 10 {
			published = published[:10]
		}

		items = append(items, scanner.Item{
			Title:     title,
			Link:      href,
			Channel:   host,
			Published: published,
		})
		return true
	})

	return items, nil
}

// ExtractText fetches the article page and returns its body paragraphs.
func (a *Adapter) ExtractText(ctx context.Context, item scanner.Item) (string, error) {
	doc, err := a.fetchDocument(ctx, item.Link)
	if err != nil {
		return "", err
	}

	body := doc.Find(".entry-content, article").First()
	var paragraphs []string
	body.Find("p, li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	text := strings.Join(paragraphs, "\n")
	if text == "" {
		return "", fmt.Errorf("article %s has no readable body", item.Link)
	}
	return text, nil
}

func (a *Adapter) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blog returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func buildSearchURL(site, keyword string) (string, error) {
	parsed, err := url.Parse(site)
	if err != nil {
		return "", fmt.Errorf("invalid site url %s: %w", site, err)
	}

	query := parsed.Query()
	query.Set("s", keyword)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func hostLabel(site string) string {
	parsed, err := url.Parse(site)
	if err != nil {
		return site
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
