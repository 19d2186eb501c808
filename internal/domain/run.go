package domain

import "time"

// ScrapeRun is one completed aggregation, persisted for history and audit.
// Criteria holds the raw option snapshot as received, so a run can be
// replayed even after the recognized key set changes.
type ScrapeRun struct {
	ID              string
	StartedAt       time.Time
	Criteria        map[string]string
	TotalStrategies int
	Strategies      []StrategyRecord
}
