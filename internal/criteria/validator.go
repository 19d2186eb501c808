package criteria

import "fmt"

// Domain bounds for each threshold. Values outside these ranges are operator
// typos (a min win rate of 4500% is not a strict preference).
const (
	maxCAGRPercent    = 500
	maxSharpe         = 10
	maxPercent        = 100
	maxTradesPerYear  = 10000
	earliestStartYear = 1990
	latestEndYear     = 2030
)

// Validate checks the typed criteria for internal consistency. Every rule is
// checked independently so the operator sees all problems at once; absent
// fields are never a violation. An invalid rule set must block the pipeline
// before any source is queried.
func Validate(c Criteria) (bool, []string) {
	var violations []string

	checkRange := func(name string, value *float64, min, max float64) {
		if value == nil {
			return
		}
		if *value < min || *value > max {
			violations = append(violations,
				fmt.Sprintf("%s must be between %g and %g, got %g", name, min, max, *value))
		}
	}

	checkRange(KeyMinCAGR, c.MinCAGR, 0, maxCAGRPercent)
	checkRange(KeyMinSharpe, c.MinSharpe, 0, maxSharpe)
	checkRange(KeyMaxDrawdown, c.MaxDrawdown, 0, maxPercent)
	checkRange(KeyMinWinRate, c.MinWinRate, 0, maxPercent)
	checkRange(KeyMinTradesPerYear, c.MinTradesPerYear, 0, maxTradesPerYear)

	if c.StartYear != nil && *c.StartYear < earliestStartYear {
		violations = append(violations,
			fmt.Sprintf("%s must be %d or later, got %d", KeyStartYear, earliestStartYear, *c.StartYear))
	}
	if c.EndYear != nil && *c.EndYear > latestEndYear {
		violations = append(violations,
			fmt.Sprintf("%s must be %d or earlier, got %d", KeyEndYear, latestEndYear, *c.EndYear))
	}
	if c.StartYear != nil && c.EndYear != nil && *c.StartYear >= *c.EndYear {
		violations = append(violations,
			fmt.Sprintf("%s (%d) must be before %s (%d)", KeyStartYear, *c.StartYear, KeyEndYear, *c.EndYear))
	}

	return len(violations) == 0, violations
}
