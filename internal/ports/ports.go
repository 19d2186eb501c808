package ports

import (
	"context"

	"StrategyScanner/internal/criteria"
	"StrategyScanner/internal/domain"
)

// Extractor pushes unstructured source text to the LLM and returns the raw
// field mapping it produced. The mapping's keys and presence are not
// guaranteed; callers must treat it as opaque and run it through the
// normalizer.
type Extractor interface {
	Extract(ctx context.Context, title, text string) (map[string]any, error)
}

// StrategyRepository persists completed scrape runs for history and audit.
type StrategyRepository interface {
	SaveRun(ctx context.Context, run domain.ScrapeRun) error
	RecentRuns(ctx context.Context, limit int) ([]domain.ScrapeRun, error)
}

// Notifier streams digests of accepted strategies to Telegram or other
// channels after scheduled runs.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Pipeline is the aggregation entry point the HTTP server and the scheduler
// drive. Criteria must already be validated; the run itself never fails,
// it degrades to partial results.
type Pipeline interface {
	Run(ctx context.Context, c criteria.Criteria, apiKey string) []domain.StrategyRecord
}
