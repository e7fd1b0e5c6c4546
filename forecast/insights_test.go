package forecast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func forwardPoint(dayOffset int, amount float64, confidence int, kind Kind) Point {
	return Point{
		Date:            dayOf(testToday.AddDate(0, 0, dayOffset)),
		PredictedAmount: amount,
		Confidence:      confidence,
		Kind:            kind,
	}
}

func TestSummarizeNextArrival(t *testing.T) {
	points := []Point{
		forwardPoint(-3, 80, 100, KindHistorical),
		forwardPoint(1, 120, 94, KindForecast),
		forwardPoint(2, 110, 92, KindForecast),
		forwardPoint(14, 500, 100, KindScheduled),
	}

	insight, err := Summarize(points, testToday)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}

	assert.Equal(t, dayOf(testToday.AddDate(0, 0, 1)), insight.NextArrivalDate)
	assert.Equal(t, 120.0, insight.PredictedAmount)
	assert.Equal(t, 94, insight.Confidence)
}

func TestSummarizeNoUpcomingArrival(t *testing.T) {
	points := []Point{
		forwardPoint(-10, 80, 100, KindHistorical),
		forwardPoint(-2, 90, 94, KindForecast), // stale forecast, already in the past
	}

	_, err := Summarize(points, testToday)
	if !errors.Is(err, ErrNoUpcomingArrival) {
		t.Fatalf("expected ErrNoUpcomingArrival, got %v", err)
	}
}

func TestSummarizeSeasonalTrend(t *testing.T) {
	cases := []struct {
		name     string
		firstAmt float64
		lastAmt  float64
		want     Trend
	}{
		{"increasing", 50, 150, TrendIncreasing},
		{"decreasing", 150, 50, TrendDecreasing},
		{"stable", 100, 104, TrendStable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			points := []Point{
				forwardPoint(1, tc.firstAmt, 94, KindForecast),
				forwardPoint(2, tc.firstAmt, 92, KindForecast),
				forwardPoint(3, tc.lastAmt, 90, KindForecast),
				forwardPoint(4, tc.lastAmt, 88, KindForecast),
			}
			insight, err := Summarize(points, testToday)
			if err != nil {
				t.Fatalf("summarize failed: %v", err)
			}
			assert.Equal(t, tc.want, insight.SeasonalTrend)
		})
	}
}

func TestSummarizeLowConfidenceRisk(t *testing.T) {
	points := []Point{
		forwardPoint(1, 100, 94, KindForecast),
		forwardPoint(20, 100, 65, KindForecast),
	}

	insight, err := Summarize(points, testToday)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	assert.Contains(t, insight.RiskFactors, "Low confidence in long-term predictions")

	// High-confidence windows carry no confidence risk.
	confident := []Point{
		forwardPoint(1, 100, 94, KindForecast),
		forwardPoint(2, 100, 92, KindForecast),
	}
	insight, err = Summarize(confident, testToday)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	assert.Empty(t, insight.RiskFactors)
}

func TestSummarizeRiskHooks(t *testing.T) {
	points := []Point{
		forwardPoint(1, 100, 94, KindForecast),
		forwardPoint(2, 100, 92, KindForecast),
	}

	monsoon := func([]Point) []string {
		return []string{"Monsoon season may affect transportation"}
	}

	insight, err := Summarize(points, testToday, monsoon)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	assert.Contains(t, insight.RiskFactors, "Monsoon season may affect transportation")
}

func TestSummarizeRecommendations(t *testing.T) {
	points := []Point{
		forwardPoint(1, 50, 94, KindForecast),
		forwardPoint(2, 60, 92, KindForecast),
		forwardPoint(3, 150, 90, KindForecast),
		forwardPoint(14, 500, 100, KindScheduled),
	}

	insight, err := Summarize(points, testToday)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}

	// The recalibration recommendation is always present.
	assert.Contains(t, insight.Recommendations, "Monitor actual arrivals vs predictions to improve model accuracy")
	// Increasing trend adds the capacity recommendation.
	assert.Equal(t, TrendIncreasing, insight.SeasonalTrend)
	assert.Contains(t, insight.Recommendations, "Prepare additional storage capacity for increased supply")
	// A scheduled delivery in the window adds the coordination recommendation.
	assert.Contains(t, insight.Recommendations, "Coordinate with government schedules for optimal stock management")
}
