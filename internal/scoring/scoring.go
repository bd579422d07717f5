// Package scoring holds the statistical primitives shared by the
// aggregation, performance and ranking services: Wilson confidence
// bounds, the recency consistency ladder and saturating log curves.
package scoring

import "math"

// WilsonZ is the z value for a 95% lower confidence bound.
const WilsonZ = 1.96

// Consistency ladder buckets, in days since the last conversion.
const (
	ConsistencyWithinWeek    = 100.0
	ConsistencyWithinMonth   = 85.0
	ConsistencyWithinQuarter = 70.0
	ConsistencyWithinHalf    = 55.0
	ConsistencyStale         = 40.0
	ConsistencyNoConversion  = 50.0
)

// ConsistencyScore maps days-since-last-conversion onto the recency
// ladder. A nil value means the pair has never converted.
func ConsistencyScore(daysSinceLastConversion *int) float64 {
	if daysSinceLastConversion == nil {
		return ConsistencyNoConversion
	}
	days := *daysSinceLastConversion
	switch {
	case days <= 7:
		return ConsistencyWithinWeek
	case days <= 30:
		return ConsistencyWithinMonth
	case days <= 90:
		return ConsistencyWithinQuarter
	case days <= 180:
		return ConsistencyWithinHalf
	default:
		return ConsistencyStale
	}
}

// WilsonLowerBound returns the lower bound of the Wilson score interval
// for a proportion rate observed over trials samples. It shrinks the raw
// rate toward zero for small samples.
func WilsonLowerBound(rate float64, trials int64, z float64) float64 {
	if trials <= 0 {
		return 0
	}
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}

	n := float64(trials)
	z2 := z * z
	denom := 1 + z2/n
	center := rate + z2/(2*n)
	margin := z * math.Sqrt(rate*(1-rate)/n+z2/(4*n*n))

	lower := (center - margin) / denom
	if lower < 0 {
		return 0
	}
	return lower
}

// SampleSizeRamp linearly discounts samples below fullTrials, reaching
// 1.0 at or above it.
func SampleSizeRamp(trials, fullTrials int64) float64 {
	if trials <= 0 || fullTrials <= 0 {
		return 0
	}
	if trials >= fullTrials {
		return 1
	}
	return float64(trials) / float64(fullTrials)
}

// ConversionRateCurve maps a conversion rate onto [0,1] with a
// saturating log curve: zero at or below 0, full weight at 10%+.
func ConversionRateCurve(rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	if rate >= 0.10 {
		return 1
	}
	v := math.Sqrt(math.Log10(rate*1000+1)) * 40 / 100
	if v > 1 {
		return 1
	}
	return v
}

// LogSaturationCurve maps a non-negative value onto [0,1], saturating at
// saturation. Used for lifetime value and commission totals where each
// additional dollar matters less.
func LogSaturationCurve(value, saturation float64) float64 {
	if value <= 0 || saturation <= 0 {
		return 0
	}
	if value >= saturation {
		return 1
	}
	return math.Log10(value+1) / math.Log10(saturation+1)
}

// MetricSimilarity compares two positive metric values as 1-|a-b|/max(a,b).
// Zero when either side is missing or non-positive.
func MetricSimilarity(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	maxVal := math.Max(a, b)
	return 1 - math.Abs(a-b)/maxVal
}

// Jaccard returns |intersection| / |union| of two string sets, and the
// intersection size. Zero similarity when the union is empty.
func Jaccard(a, b []string) (float64, int) {
	if len(a) == 0 && len(b) == 0 {
		return 0, 0
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	union := len(set)
	shared := 0
	seen := make(map[string]struct{}, len(b))
	for _, v := range b {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := set[v]; ok {
			shared++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0, 0
	}
	return float64(shared) / float64(union), shared
}
