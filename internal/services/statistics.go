// Package services provides business logic implementations.
package services

import (
	"math"
	"sort"
	"strconv"

	"github.com/pulsecheck-tools/pulsecheck_backend/internal/models"
)

// Statistics primitives for the aggregation pipeline. Pure functions, no
// state, no I/O. Empty input never errors; every function degrades to a
// documented zero/absent sentinel that callers treat as "no data".

// DistributionBucket is one label's occurrence count. Buckets keep the
// first-occurrence order of the input, which drives mode tie-breaking.
type DistributionBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PercentageBucket is one label's share of the input in percentage points
type PercentageBucket struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// RangeResult holds min, max and their difference
type RangeResult struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Range float64 `json:"range"`
}

// Average returns the arithmetic mean, 0 for empty input
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle sorted value, the mean of the two middle
// values for even length, and 0 for empty input
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Distribution counts occurrences per stringified value in first-occurrence
// order
func Distribution(values []float64) []DistributionBucket {
	return countLabels(stringifyValues(values))
}

// Mode returns the stringified value with the strictly highest frequency;
// first-encountered wins ties. The second return is false for empty input.
func Mode(values []float64) (string, bool) {
	return modeOf(Distribution(values))
}

// Percentage returns per-label shares in percentage points (already scaled
// by 100; callers must not re-multiply)
func Percentage(values []float64) []PercentageBucket {
	dist := Distribution(values)
	total := len(values)
	out := make([]PercentageBucket, 0, len(dist))
	for _, b := range dist {
		out = append(out, PercentageBucket{
			Label:   b.Label,
			Percent: float64(b.Count) / float64(total) * 100,
		})
	}
	return out
}

// Range returns min, max and their difference, all zero for empty input
func Range(values []float64) RangeResult {
	if len(values) == 0 {
		return RangeResult{}
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return RangeResult{Min: min, Max: max, Range: max - min}
}

// StandardDeviation returns the population standard deviation, 0 for empty
// input
func StandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Average(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// WeightedAverage returns the weighted mean, 0 when the slices are empty,
// mismatched in length, or the weights sum to zero
func WeightedAverage(values, weights []float64) float64 {
	if len(values) == 0 || len(values) != len(weights) {
		return 0
	}
	var sum, weightSum float64
	for i, v := range values {
		sum += v * weights[i]
		weightSum += weights[i]
	}
	if weightSum == 0 {
		return 0
	}
	return sum / weightSum
}

// Normalize min-max scales values into [0,1]. Bounds come from the supplied
// scale when given, otherwise from the data. A zero range maps every value
// to 0.
func Normalize(values []float64, scale *models.ScaleRange) []float64 {
	if len(values) == 0 {
		return nil
	}
	var min, max float64
	if scale != nil {
		min, max = scale.Min, scale.Max
	} else {
		r := Range(values)
		min, max = r.Min, r.Max
	}

	out := make([]float64, len(values))
	span := max - min
	if span == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - min) / span
	}
	return out
}

// FormatStatValue stringifies a numeric value without trailing zeros, so
// distribution keys read "5" and "3.5" rather than "5.000000"
func FormatStatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func stringifyValues(values []float64) []string {
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = FormatStatValue(v)
	}
	return labels
}

// countLabels builds first-occurrence-ordered buckets over labels
func countLabels(labels []string) []DistributionBucket {
	index := make(map[string]int, len(labels))
	buckets := make([]DistributionBucket, 0, len(labels))
	for _, label := range labels {
		if i, ok := index[label]; ok {
			buckets[i].Count++
			continue
		}
		index[label] = len(buckets)
		buckets = append(buckets, DistributionBucket{Label: label, Count: 1})
	}
	return buckets
}

// modeOf picks the first strictly-highest bucket
func modeOf(buckets []DistributionBucket) (string, bool) {
	if len(buckets) == 0 {
		return "", false
	}
	best := buckets[0]
	for _, b := range buckets[1:] {
		if b.Count > best.Count {
			best = b
		}
	}
	return best.Label, true
}

// bucketCounts converts ordered buckets into the plain map used in API
// payloads
func bucketCounts(buckets []DistributionBucket) map[string]int {
	out := make(map[string]int, len(buckets))
	for _, b := range buckets {
		out[b.Label] = b.Count
	}
	return out
}
