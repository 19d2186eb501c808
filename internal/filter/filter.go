package filter

import (
	"StrategyScanner/internal/criteria"
	"StrategyScanner/internal/domain"
)

// Accept evaluates one record against the active criteria. Pure function,
// no side effects.
//
// Each threshold is only compared when both the threshold and the record's
// metric are present; a missing metric never disqualifies on its own
// (skip-on-absent). The one exception: a record where every performance
// field is absent carries no evidence at all and is rejected regardless of
// thresholds. Treating absent as zero would silently reject every valid but
// partially described strategy; treating it as always-pass would let fully
// unevidenced records through. Both halves matter.
func Accept(rec domain.StrategyRecord, c criteria.Criteria) bool {
	if !rec.HasPerformanceData() {
		return false
	}

	if fails(c.MinCAGR, rec.CAGR, atLeast) {
		return false
	}
	if fails(c.MinSharpe, rec.SharpeRatio, atLeast) {
		return false
	}
	if fails(c.MaxDrawdown, rec.MaxDrawdown, atMost) {
		return false
	}
	if fails(c.MinWinRate, rec.WinRate, atLeast) {
		return false
	}

	return true
}

type comparison func(value, threshold float64) bool

func atLeast(value, threshold float64) bool { return value >= threshold }
func atMost(value, threshold float64) bool  { return value <= threshold }

// fails reports whether a threshold check disqualifies the record. The check
// is skipped when either side is absent.
func fails(threshold, value *float64, cmp comparison) bool {
	if threshold == nil || value == nil {
		return false
	}
	return !cmp(*value, *threshold)
}
