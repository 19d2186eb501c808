package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"StrategyScanner/internal/criteria"
	"StrategyScanner/internal/domain"
	"StrategyScanner/internal/ports"
)

// ScanJobConfig wires the recurring scan's dependencies.
type ScanJobConfig struct {
	Log           zerolog.Logger
	Parser        *criteria.Parser
	Pipeline      ports.Pipeline
	Repository    ports.StrategyRepository
	Notifier      ports.Notifier
	RawCriteria   map[string]string
	YouTubeAPIKey string
}

// ScanJob runs the pipeline against the criteria configured in the YAML
// file and publishes a digest of accepted strategies.
type ScanJob struct {
	log           zerolog.Logger
	parser        *criteria.Parser
	pipeline      ports.Pipeline
	repository    ports.StrategyRepository
	notifier      ports.Notifier
	rawCriteria   map[string]string
	youtubeAPIKey string
}

// NewScanJob creates the scheduled scan job.
func NewScanJob(cfg ScanJobConfig) *ScanJob {
	return &ScanJob{
		log:           cfg.Log.With().Str("job", "scheduled_scan").Logger(),
		parser:        cfg.Parser,
		pipeline:      cfg.Pipeline,
		repository:    cfg.Repository,
		notifier:      cfg.Notifier,
		rawCriteria:   cfg.RawCriteria,
		youtubeAPIKey: cfg.YouTubeAPIKey,
	}
}

// Name identifies the job in scheduler logs.
func (j *ScanJob) Name() string {
	return "scheduled_scan"
}

// Run executes one scan. Invalid configured criteria fail the job without
// touching any source.
func (j *ScanJob) Run() error {
	c := j.parser.Parse(j.rawCriteria)
	if ok, violations := criteria.Validate(c); !ok {
		return fmt.Errorf("configured scan criteria invalid: %s", strings.Join(violations, "; "))
	}

	ctx := context.Background()
	startedAt := time.Now().UTC()
	records := j.pipeline.Run(ctx, c, j.youtubeAPIKey)

	if j.repository != nil {
		run := domain.ScrapeRun{
			ID:              uuid.NewString(),
			StartedAt:       startedAt,
			Criteria:        j.rawCriteria,
			TotalStrategies: len(records),
			Strategies:      records,
		}
		if err := j.repository.SaveRun(ctx, run); err != nil {
			j.log.Warn().Err(err).Msg("failed to persist scheduled run")
		}
	}

	if j.notifier != nil && len(records) > 0 {
		if err := j.notifier.PublishDigest(ctx, buildDigest(records)); err != nil {
			j.log.Warn().Err(err).Msg("failed to publish digest")
		}
	}

	j.log.Info().Int("accepted", len(records)).Msg("scheduled scan finished")
	return nil
}

// buildDigest formats the top accepted strategies for the notification
// channel.
func buildDigest(records []domain.StrategyRecord) string {
	const maxEntries = 10

	var b strings.Builder
	fmt.Fprintf(&b, "Strategy scan: %d candidates passed\n\n", len(records))

	for i, rec := range records {
		if i >= maxEntries {
			fmt.Fprintf(&b, "... and %d more\n", len(records)-maxEntries)
			break
		}

		fmt.Fprintf(&b, "%d. %s [%s]\n", rec.Seq, rec.Name, rec.Source)
		var stats []string
		if rec.CAGR != nil {
			stats = append(stats, fmt.Sprintf("CAGR %.1f%%", *rec.CAGR))
		}
		if rec.WinRate != nil {
			stats = append(stats, fmt.Sprintf("win %.1f%%", *rec.WinRate))
		}
		if rec.SharpeRatio != nil {
			stats = append(stats, fmt.Sprintf("sharpe %.2f", *rec.SharpeRatio))
		}
		if rec.MaxDrawdown != nil {
			stats = append(stats, fmt.Sprintf("DD %.1f%%", *rec.MaxDrawdown))
		}
		if len(stats) > 0 {
			fmt.Fprintf(&b, "   %s\n", strings.Join(stats, ", "))
		}
		fmt.Fprintf(&b, "   %s\n", rec.Link)
	}

	return b.String()
}
