package scanner

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"StrategyScanner/internal/criteria"
	"StrategyScanner/internal/domain"
)

// Item is one raw candidate found by an adapter, before any text extraction.
type Item struct {
	Title     string
	Link      string
	Channel   string
	Published string
}

// SourceAdapter is a pluggable fetcher for one external origin. FetchItems
// discovers candidates matching the criteria's keywords and filters;
// ExtractText retrieves the unstructured text (transcript, post body,
// article) for one item.
type SourceAdapter interface {
	Source() domain.Source
	Priority() int
	FetchItems(ctx context.Context, c criteria.Criteria) ([]Item, error)
	ExtractText(ctx context.Context, item Item) (string, error)
}

// BuildOptions carries per-run resources for adapter construction. Each run
// gets its own HTTP client so sessions are scoped to the run and test
// doubles can substitute fakes.
type BuildOptions struct {
	APIKey     string
	HTTPClient *http.Client
	Log        zerolog.Logger
}

// Builder constructs a fresh adapter instance for one aggregation run.
type Builder func(opts BuildOptions) SourceAdapter

// Registry keeps a mapping from source tags to adapter builders.
type Registry struct {
	builders map[domain.Source]Builder
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[domain.Source]Builder{}}
}

// Register adds or replaces a builder for a source.
func (r *Registry) Register(source domain.Source, builder Builder) {
	if r.builders == nil {
		r.builders = map[domain.Source]Builder{}
	}
	r.builders[source] = builder
}

// Build constructs an adapter for the source or fails if none is registered.
func (r *Registry) Build(source domain.Source, opts BuildOptions) (SourceAdapter, error) {
	builder, ok := r.builders[source]
	if !ok {
		return nil, fmt.Errorf("source %s is not registered", source)
	}
	return builder(opts), nil
}
