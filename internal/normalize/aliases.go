package normalize

// Alias lists for each canonical field, first alias wins. This table is the
// single place that changes when the extraction prompt drifts: older prompt
// revisions emitted spreadsheet-style headers ("CAGR (%)"), newer ones emit
// bare snake_case keys.
var (
	aliasName         = []string{"name", "strategy_name", "Strategy Name", "title"}
	aliasStrategyType = []string{"strategy_type", "type", "Strategy Type", "style"}
	aliasAssetClass   = []string{"asset_class", "asset", "Asset Class", "market"}
	aliasMarketRegime = []string{"regime", "market_regime", "Market Regime"}
	aliasTradingHours = []string{"trading_hours", "hours", "Trading Hours", "session"}
	aliasWinRate      = []string{"win", "win_rate", "Win Rate (%)", "winrate"}
	aliasCAGR         = []string{"cagr", "CAGR (%)", "annual_return", "roi"}
	aliasMaxDrawdown  = []string{"drawdown", "max_drawdown", "Max Drawdown (%)", "dd"}
	aliasSharpe       = []string{"sharpe", "sharpe_ratio", "Sharpe Ratio"}
	aliasProfitFactor = []string{"profit_factor", "Profit Factor", "pf"}
	aliasQualityScore = []string{"quality_score", "Quality Score", "score"}
	aliasDescription  = []string{"description", "summary", "Description"}
)
