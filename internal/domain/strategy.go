package domain

// Source identifies the platform an item was scraped from.
type Source string

const (
	SourceYouTube Source = "youtube"
	SourceReddit  Source = "reddit"
	SourceBlog    Source = "blog"
)

// Fallback values used when the extractor left a classification field empty.
const (
	UnknownValue    = "Unknown"
	AllRegimesValue = "All Regimes"
	AllHoursValue   = "All Hours"
)

// StrategyRecord is the canonical, source-agnostic representation of one
// extracted trading strategy. Performance fields are pointers: nil means the
// source text carried no evidence for that metric, which is distinct from 0.
// Seq is assigned once, after aggregation across all sources.
type StrategyRecord struct {
	Seq          int      `json:"seq"`
	Name         string   `json:"name"`
	Source       Source   `json:"source"`
	Link         string   `json:"link"`
	Channel      string   `json:"channel"`
	Date         string   `json:"date"`
	StrategyType string   `json:"strategy_type"`
	AssetClass   string   `json:"asset_class"`
	MarketRegime string   `json:"market_regime"`
	TradingHours string   `json:"trading_hours"`
	WinRate      *float64 `json:"win_rate"`
	CAGR         *float64 `json:"cagr"`
	MaxDrawdown  *float64 `json:"max_drawdown"`
	SharpeRatio  *float64 `json:"sharpe_ratio"`
	ProfitFactor *float64 `json:"profit_factor"`
	QualityScore *int     `json:"quality_score"`
	Description  string   `json:"description"`
}

// HasPerformanceData reports whether at least one performance metric was
// extracted. A record with none is not a usable candidate.
func (r StrategyRecord) HasPerformanceData() bool {
	return r.WinRate != nil || r.CAGR != nil || r.MaxDrawdown != nil ||
		r.SharpeRatio != nil || r.ProfitFactor != nil
}

// Float returns a pointer to v; helper for building optional fields.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
