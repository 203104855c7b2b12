// Package confidence partitions detections by threshold and scores the
// overall confidence of an extraction.
package confidence

import (
	"math"

	"github.com/heartmarshall/voicedoc-backend/internal/domain"
)

// DefaultThreshold is the acceptance cut-off used when none is configured.
const DefaultThreshold = 0.6

// Aggregator is stateless and safe for concurrent use.
type Aggregator struct {
	Threshold float64
	Strategy  domain.AggregationStrategy
}

// New returns an Aggregator with the threshold clamped into [0,1]. An
// unknown strategy falls back to mean.
func New(threshold float64, strategy domain.AggregationStrategy) Aggregator {
	if !strategy.IsValid() {
		strategy = domain.AggregationMean
	}
	return Aggregator{Threshold: Clamp(threshold), Strategy: strategy}
}

// Clamp maps NaN to 0 and bounds x to [0,1].
func Clamp(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

// Partition splits detections into accepted (confidence >= threshold) and
// rejected, both in input order with clamped scores.
func (a Aggregator) Partition(detections []domain.Detection) (accepted, rejected []domain.Detection) {
	for _, d := range detections {
		d.Confidence = Clamp(d.Confidence)
		if d.Confidence >= a.Threshold {
			accepted = append(accepted, d)
		} else {
			rejected = append(rejected, d)
		}
	}
	return accepted, rejected
}

// Aggregate clamps every score in results and returns the assembled
// ExtractedData. The input slice is not modified.
func (a Aggregator) Aggregate(results []domain.CategoryResult, rejected []domain.Detection) domain.ExtractedData {
	out := domain.ExtractedData{
		Categories: make([]domain.CategoryResult, len(results)),
		Rejected:   make([]domain.Detection, len(rejected)),
	}
	for i, r := range results {
		r.Confidence = Clamp(r.Confidence)
		if r.FieldConfidences != nil {
			fc := make(map[string]float64, len(r.FieldConfidences))
			for k, v := range r.FieldConfidences {
				fc[k] = Clamp(v)
			}
			r.FieldConfidences = fc
		}
		out.Categories[i] = r
	}
	for i, d := range rejected {
		d.Confidence = Clamp(d.Confidence)
		out.Rejected[i] = d
	}

	switch a.Strategy {
	case domain.AggregationWeighted:
		out.OverallConfidence = weighted(out.Categories)
	default:
		out.OverallConfidence = mean(out.Categories)
	}
	return out
}

func mean(results []domain.CategoryResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Confidence
	}
	return Clamp(sum / float64(len(results)))
}

// weighted gives each category the weight 1 + mean(field confidences), so a
// category whose fields were read confidently counts up to twice as much.
func weighted(results []domain.CategoryResult) float64 {
	var num, den float64
	for _, r := range results {
		w := 1 + fieldMean(r.FieldConfidences)
		num += r.Confidence * w
		den += w
	}
	if den == 0 {
		return 0
	}
	return Clamp(num / den)
}

func fieldMean(fc map[string]float64) float64 {
	if len(fc) == 0 {
		return 0
	}
	var sum float64
	for _, v := range fc {
		sum += v
	}
	return sum / float64(len(fc))
}
