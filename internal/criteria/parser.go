package criteria

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"StrategyScanner/internal/domain"
)

// Parser converts the raw key/value mapping coming from the operator sheet
// into a typed Criteria. Parsing never fails: malformed numeric values are
// logged and treated as absent, so the result degrades toward a more
// permissive rule set rather than aborting the request.
type Parser struct {
	log zerolog.Logger
}

// NewParser wires a component logger.
func NewParser(log zerolog.Logger) *Parser {
	return &Parser{log: log.With().Str("component", "criteria.parser").Logger()}
}

// Parse builds a Criteria from raw option strings. Unrecognized keys are
// ignored; missing keys mean "no constraint".
func (p *Parser) Parse(raw map[string]string) Criteria {
	c := Criteria{
		MinCAGR:          p.parseFloat(raw, KeyMinCAGR),
		MinSharpe:        p.parseFloat(raw, KeyMinSharpe),
		MaxDrawdown:      p.parseFloat(raw, KeyMaxDrawdown),
		MinWinRate:       p.parseFloat(raw, KeyMinWinRate),
		MinTradesPerYear: p.parseFloat(raw, KeyMinTradesPerYear),
		StartYear:        p.parseInt(raw, KeyStartYear),
		EndYear:          p.parseInt(raw, KeyEndYear),
		YouTubeEnabled:   parseBool(raw[KeyYouTubeEnabled]),
		RedditEnabled:    parseBool(raw[KeyRedditEnabled]),
		BlogsEnabled:     parseBool(raw[KeyBlogsEnabled]),
		Keywords:         parseList(raw[KeyKeywords]),
		SourceFilters: map[domain.Source]string{
			domain.SourceYouTube: strings.TrimSpace(raw[KeyYouTubeFilters]),
			domain.SourceReddit:  strings.TrimSpace(raw[KeyRedditFilters]),
			domain.SourceBlog:    strings.TrimSpace(raw[KeyBlogFilters]),
		},
	}
	return c
}

func (p *Parser) parseFloat(raw map[string]string, key string) *float64 {
	value, ok := raw[key]
	if !ok {
		return nil
	}

	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	if value == "" {
		return nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.log.Warn().Str("key", key).Str("value", value).Msg("criteria value is not numeric, ignoring")
		return nil
	}
	return &parsed
}

func (p *Parser) parseInt(raw map[string]string, key string) *int {
	value, ok := raw[key]
	if !ok {
		return nil
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		p.log.Warn().Str("key", key).Str("value", value).Msg("criteria value is not an integer, ignoring")
		return nil
	}
	return &parsed
}

// parseBool accepts the fixed truthy equivalence class; every other token,
// including empty, is false.
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "true", "1":
		return true
	default:
		return false
	}
}

// parseList splits on comma, trims, drops empty segments, preserves order.
// Duplicates are kept: the operator may intentionally repeat a query.
func parseList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		items = append(items, part)
	}
	if len(items) == 0 {
		return nil
	}
	return items
}
