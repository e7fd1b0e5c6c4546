package forecast

import (
	"errors"
	"time"
)

// Trend describes the direction of the forward window.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendStable     Trend = "stable"
	TrendDecreasing Trend = "decreasing"
)

// Insight is the single human-facing summary derived from a forecast run.
// It is recomputed fresh on every run and never persisted.
type Insight struct {
	NextArrivalDate time.Time `json:"nextArrivalDate"`
	PredictedAmount float64   `json:"predictedAmount"`
	Confidence      int       `json:"confidence"`
	SeasonalTrend   Trend     `json:"seasonalTrend"`
	RiskFactors     []string  `json:"riskFactors"`
	Recommendations []string  `json:"recommendations"`
}

// RiskHook lets callers contribute externally sourced risk factors (weather,
// festival calendars) without this package fetching anything itself.
type RiskHook func(forward []Point) []string

var ErrNoUpcomingArrival = errors.New("no upcoming arrival predicted")

// Tolerance band, relative to the window mean, inside which the two halves
// of the forward window count as the same level.
const trendTolerance = 0.10

const lowConfidenceThreshold = 70

// Summarize derives the actionable summary from a forecast series. The next
// arrival is the first forecast or scheduled point dated on or after now;
// if none exists the explicit ErrNoUpcomingArrival is returned instead of a
// zero-value insight.
func Summarize(points []Point, now time.Time, hooks ...RiskHook) (Insight, error) {
	today := dayOf(now)

	forward := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Kind == KindHistorical {
			continue
		}
		if p.Date.Before(today) {
			continue
		}
		forward = append(forward, p)
	}

	if len(forward) == 0 {
		return Insight{}, ErrNoUpcomingArrival
	}

	next := forward[0]
	trend := seasonalTrend(forward)

	risks := make([]string, 0, 2)
	for _, p := range forward {
		if p.Confidence < lowConfidenceThreshold {
			risks = append(risks, "Low confidence in long-term predictions")
			break
		}
	}
	for _, hook := range hooks {
		risks = append(risks, hook(forward)...)
	}

	recs := []string{"Monitor actual arrivals vs predictions to improve model accuracy"}
	if trend == TrendIncreasing {
		recs = append(recs, "Prepare additional storage capacity for increased supply")
	}
	for _, p := range forward {
		if p.Kind == KindScheduled {
			recs = append(recs, "Coordinate with government schedules for optimal stock management")
			break
		}
	}

	return Insight{
		NextArrivalDate: next.Date,
		PredictedAmount: next.PredictedAmount,
		Confidence:      next.Confidence,
		SeasonalTrend:   trend,
		RiskFactors:     risks,
		Recommendations: recs,
	}, nil
}

// seasonalTrend compares the mean predicted amount of the first half of the
// forward window against the second half, within a tolerance band.
func seasonalTrend(forward []Point) Trend {
	if len(forward) < 2 {
		return TrendStable
	}

	mid := len(forward) / 2
	firstHalf := meanAmount(forward[:mid])
	secondHalf := meanAmount(forward[mid:])

	overall := (firstHalf + secondHalf) / 2
	if overall <= 0 {
		return TrendStable
	}

	delta := (secondHalf - firstHalf) / overall
	switch {
	case delta > trendTolerance:
		return TrendIncreasing
	case delta < -trendTolerance:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func meanAmount(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.PredictedAmount
	}
	return sum / float64(len(points))
}
