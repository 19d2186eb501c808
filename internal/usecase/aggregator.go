package usecase

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"StrategyScanner/internal/criteria"
	"StrategyScanner/internal/domain"
	"StrategyScanner/internal/filter"
	"StrategyScanner/internal/metrics"
	"StrategyScanner/internal/normalize"
	"StrategyScanner/internal/ports"
	"StrategyScanner/internal/scanner"
)

// AggregatorDeps wires the driven adapters into the aggregation use case.
type AggregatorDeps struct {
	Registry   *scanner.Registry
	Extractor  ports.Extractor
	Normalizer *normalize.Normalizer
	Log        zerolog.Logger
}

// Aggregator runs every enabled source adapter in priority order, pushes
// each raw item through extract -> normalize -> filter immediately, and
// returns the concatenated accepted records with final sequence numbers.
//
// The whole run is deliberately sequential: the bottleneck is the external
// rate-limited APIs, not local compute. Failures are contained at the
// smallest granularity: a bad item skips one item, a dead upstream skips one
// adapter, and only invalid criteria (checked by the caller) stop a run.
type Aggregator struct {
	registry   *scanner.Registry
	extractor  ports.Extractor
	normalizer *normalize.Normalizer
	log        zerolog.Logger
}

var _ ports.Pipeline = (*Aggregator)(nil)

// NewAggregator constructs the orchestration component.
func NewAggregator(deps AggregatorDeps) *Aggregator {
	return &Aggregator{
		registry:   deps.Registry,
		extractor:  deps.Extractor,
		normalizer: deps.Normalizer,
		log:        deps.Log.With().Str("component", "aggregator").Logger(),
	}
}

// Run executes one aggregation over the sources the criteria enable.
// Criteria must already be validated.
func (a *Aggregator) Run(ctx context.Context, c criteria.Criteria, apiKey string) []domain.StrategyRecord {
	adapters := a.buildAdapters(c, apiKey)

	sort.SliceStable(adapters, func(i, j int) bool {
		return adapters[i].Priority() < adapters[j].Priority()
	})

	results := make([]domain.StrategyRecord, 0)
	for _, adapter := range adapters {
		results = append(results, a.collect(ctx, adapter, c)...)
	}

	for i := range results {
		results[i].Seq = i + 1
	}

	metrics.RecordRun()
	a.log.Info().Int("total", len(results)).Msg("aggregation finished")
	return results
}

// buildAdapters constructs a fresh adapter per enabled source. Each run owns
// its own HTTP client; nothing is shared between runs.
func (a *Aggregator) buildAdapters(c criteria.Criteria, apiKey string) []scanner.SourceAdapter {
	opts := scanner.BuildOptions{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		Log:        a.log,
	}

	var adapters []scanner.SourceAdapter
	for _, source := range c.EnabledSources() {
		adapter, err := a.registry.Build(source, opts)
		if err != nil {
			a.log.Warn().Err(err).Str("source", string(source)).Msg("source enabled but not registered")
			continue
		}
		adapters = append(adapters, adapter)
	}
	return adapters
}

// collect drains one adapter. An upstream failure means this adapter
// contributes zero records; it never aborts the others.
func (a *Aggregator) collect(ctx context.Context, adapter scanner.SourceAdapter, c criteria.Criteria) []domain.StrategyRecord {
	source := string(adapter.Source())
	log := a.log.With().Str("source", source).Logger()

	items, err := adapter.FetchItems(ctx, c)
	if err != nil {
		metrics.RecordAdapterFailure(source)
		log.Warn().Err(err).Msg("source unavailable, continuing with remaining sources")
		return nil
	}
	metrics.RecordItemsFetched(source, len(items))

	var accepted []domain.StrategyRecord
	for _, item := range items {
		text, err := adapter.ExtractText(ctx, item)
		if err != nil {
			metrics.RecordItemDropped(source, "text")
			log.Debug().Err(err).Str("item", item.Title).Msg("text retrieval failed, item dropped")
			continue
		}

		raw, err := a.extractor.Extract(ctx, item.Title, text)
		if err != nil {
			metrics.RecordItemDropped(source, "extract")
			log.Debug().Err(err).Str("item", item.Title).Msg("extraction failed, item dropped")
			continue
		}

		rec, err := a.normalizer.Record(raw, normalize.Meta{
			Source:  adapter.Source(),
			Title:   item.Title,
			Link:    item.Link,
			Channel: item.Channel,
			Date:    item.Published,
		})
		if err != nil {
			metrics.RecordItemDropped(source, "normalize")
			log.Debug().Err(err).Str("item", item.Title).Msg("normalization failed, item dropped")
			continue
		}

		if !filter.Accept(rec, c) {
			metrics.RecordRejected(source)
			continue
		}

		metrics.RecordAccepted(source)
		accepted = append(accepted, rec)
	}

	log.Info().Int("items", len(items)).Int("accepted", len(accepted)).Msg("source processed")
	return accepted
}
