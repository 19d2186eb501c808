package criteria

import "StrategyScanner/internal/domain"

// Raw option names recognized in the incoming key/value criteria mapping.
// The upstream sheet uses human-readable labels; anything else is ignored.
const (
	KeyMinCAGR          = "Min CAGR (%)"
	KeyMinSharpe        = "Min Sharpe Ratio"
	KeyMaxDrawdown      = "Max Drawdown (%)"
	KeyMinWinRate       = "Min Win Rate (%)"
	KeyMinTradesPerYear = "Min Trades/Year"
	KeyStartYear        = "Backtest Start Year"
	KeyEndYear          = "Backtest End Year"
	KeyYouTubeEnabled   = "YouTube Enabled"
	KeyRedditEnabled    = "Reddit Enabled"
	KeyBlogsEnabled     = "Blogs Enabled"
	KeyKeywords         = "Keywords"
	KeyYouTubeFilters   = "YouTube Filters"
	KeyRedditFilters    = "Reddit Filters"
	KeyBlogFilters      = "Blog Filters"
)

// Criteria is the typed, validated rule set controlling which sources run
// and which records pass. Nil threshold pointers mean "no constraint".
type Criteria struct {
	MinCAGR          *float64
	MinSharpe        *float64
	MaxDrawdown      *float64
	MinWinRate       *float64
	MinTradesPerYear *float64

	StartYear *int
	EndYear   *int

	YouTubeEnabled bool
	RedditEnabled  bool
	BlogsEnabled   bool

	Keywords      []string
	SourceFilters map[domain.Source]string
}

// EnabledSources lists the sources switched on, in declared priority order.
func (c Criteria) EnabledSources() []domain.Source {
	var sources []domain.Source
	if c.YouTubeEnabled {
		sources = append(sources, domain.SourceYouTube)
	}
	if c.RedditEnabled {
		sources = append(sources, domain.SourceReddit)
	}
	if c.BlogsEnabled {
		sources = append(sources, domain.SourceBlog)
	}
	return sources
}

// FilterFor returns the free-form filter string configured for a source.
func (c Criteria) FilterFor(source domain.Source) string {
	return c.SourceFilters[source]
}
