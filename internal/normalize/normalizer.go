package normalize

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"StrategyScanner/internal/domain"
)

// ErrNoFields reports that the extractor produced no usable field mapping at
// all; the item is dropped rather than forwarded as an all-absent record.
var ErrNoFields = errors.New("extractor returned no usable fields")

// notMentioned is the sentinel the extraction prompt uses for metrics the
// source text never states. Exact match only; it means absent, never zero.
const notMentioned = "Not mentioned"

// Meta carries adapter-supplied metadata. These values come from structured
// platform data, so they always overwrite whatever the extractor guessed.
type Meta struct {
	Source  domain.Source
	Title   string
	Link    string
	Channel string
	Date    string
}

// Normalizer maps a raw extractor field mapping, whatever its shape, into
// the canonical StrategyRecord schema. The extractor output is untyped and
// drifts between prompt revisions, so every canonical field is resolved
// through an alias table instead of a fixed name.
type Normalizer struct {
	log zerolog.Logger
}

// New wires a component logger.
func New(log zerolog.Logger) *Normalizer {
	return &Normalizer{log: log.With().Str("component", "normalizer").Logger()}
}

// Record builds a StrategyRecord from one raw extractor mapping.
func (n *Normalizer) Record(raw map[string]any, meta Meta) (domain.StrategyRecord, error) {
	if len(raw) == 0 {
		return domain.StrategyRecord{}, ErrNoFields
	}

	rec := domain.StrategyRecord{
		Source:       meta.Source,
		Link:         meta.Link,
		Channel:      meta.Channel,
		Date:         stringOr(meta.Date, domain.UnknownValue),
		Name:         n.lookupString(raw, aliasName, meta.Title),
		StrategyType: n.lookupString(raw, aliasStrategyType, domain.UnknownValue),
		AssetClass:   n.lookupString(raw, aliasAssetClass, domain.UnknownValue),
		MarketRegime: n.lookupString(raw, aliasMarketRegime, domain.AllRegimesValue),
		TradingHours: n.lookupString(raw, aliasTradingHours, domain.AllHoursValue),
		WinRate:      n.lookupFloat(raw, aliasWinRate),
		CAGR:         n.lookupFloat(raw, aliasCAGR),
		MaxDrawdown:  n.lookupFloat(raw, aliasMaxDrawdown),
		SharpeRatio:  n.lookupFloat(raw, aliasSharpe),
		ProfitFactor: n.lookupFloat(raw, aliasProfitFactor),
		QualityScore: n.lookupScore(raw, aliasQualityScore),
		Description:  n.lookupString(raw, aliasDescription, ""),
	}

	if rec.Name == "" {
		rec.Name = domain.UnknownValue
	}

	return rec, nil
}

// lookup resolves the first alias present in the raw mapping, matching the
// exact key first and then case-insensitively.
func lookup(raw map[string]any, aliases []string) (any, bool) {
	for _, alias := range aliases {
		if value, ok := raw[alias]; ok {
			return value, true
		}
	}
	for _, alias := range aliases {
		for key, value := range raw {
			if strings.EqualFold(strings.TrimSpace(key), alias) {
				return value, true
			}
		}
	}
	return nil, false
}

func (n *Normalizer) lookupString(raw map[string]any, aliases []string, fallback string) string {
	value, ok := lookup(raw, aliases)
	if !ok || value == nil {
		return fallback
	}

	text, ok := value.(string)
	if !ok {
		return fallback
	}

	text = strings.TrimSpace(text)
	if text == "" || text == notMentioned {
		return fallback
	}
	return text
}

// lookupFloat coerces a numeric-looking field: trailing % stripped, sentinel
// and null become absent, a present-but-unparsable value becomes absent with
// a log line, never an error.
func (n *Normalizer) lookupFloat(raw map[string]any, aliases []string) *float64 {
	value, ok := lookup(raw, aliases)
	if !ok || value == nil {
		return nil
	}

	switch v := value.(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return &f
		}
		n.log.Debug().Str("field", aliases[0]).Str("value", v.String()).Msg("numeric field failed to parse, treating as absent")
		return nil
	case string:
		text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
		if text == "" || v == notMentioned {
			return nil
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return &f
		}
		n.log.Debug().Str("field", aliases[0]).Str("value", v).Msg("numeric field failed to parse, treating as absent")
		return nil
	default:
		n.log.Debug().Str("field", aliases[0]).Msg("numeric field has unexpected type, treating as absent")
		return nil
	}
}

// lookupScore coerces the 1-10 quality score; out-of-range values are
// extractor hallucinations and count as absent.
func (n *Normalizer) lookupScore(raw map[string]any, aliases []string) *int {
	f := n.lookupFloat(raw, aliases)
	if f == nil {
		return nil
	}

	score := int(math.Round(*f))
	if score < 1 || score > 10 {
		n.log.Debug().Int("score", score).Msg("quality score out of range, treating as absent")
		return nil
	}
	return &score
}

func stringOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
