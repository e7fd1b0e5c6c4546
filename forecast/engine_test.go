package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testToday = time.Date(2025, 6, 16, 10, 30, 0, 0, time.UTC)

func testEngine() *Engine {
	e := NewEngine()
	e.Noise = ZeroNoise{}
	e.Now = func() time.Time { return testToday }
	return e
}

// riceHistory builds 30 days of history with a 100kg arrival every 7 days.
func riceHistory() []Observation {
	obs := make([]Observation, 0, 30)
	for i := 30; i >= 1; i-- {
		date := testToday.AddDate(0, 0, -i)
		amount := 0.0
		if i%7 == 0 {
			amount = 100
		}
		obs = append(obs, Observation{
			ShopID:        "shop1",
			Commodity:     "Rice",
			Date:          date,
			StockLevel:    500,
			ArrivalAmount: amount,
		})
	}
	return obs
}

func TestForecastInvalidHorizon(t *testing.T) {
	e := testEngine()
	for _, horizon := range []int{0, -1, -30} {
		_, err := e.Forecast("shop1", "Rice", riceHistory(), nil, horizon)
		if !errors.Is(err, ErrInvalidHorizon) {
			t.Fatalf("horizon %d: expected ErrInvalidHorizon, got %v", horizon, err)
		}
	}
}

func TestForecastConfidenceMonotonicity(t *testing.T) {
	e := testEngine()
	points, err := e.Forecast("shop1", "Rice", riceHistory(), nil, 30)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}

	prev := 101
	for _, p := range points {
		if p.Kind != KindForecast {
			continue
		}
		if p.Confidence > prev {
			t.Fatalf("confidence increased from %d to %d at %s", prev, p.Confidence, p.Date)
		}
		prev = p.Confidence
	}

	first := firstOfKind(points, KindForecast)
	assert.InDelta(t, startConfidence, first.Confidence, 2, "day +1 confidence should start near 95")

	last := points[len(points)-1]
	assert.Equal(t, minConfidence, last.Confidence, "far horizon should sit at the confidence floor")
}

func TestForecastScheduledOverride(t *testing.T) {
	e := testEngine()
	schedule := []ScheduleEntry{{
		ShopID:         "shop1",
		Commodity:      "Rice",
		Date:           testToday.AddDate(0, 0, 14),
		ExpectedAmount: 500,
	}}

	points, err := e.Forecast("shop1", "Rice", riceHistory(), schedule, 30)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}

	target := dayOf(testToday.AddDate(0, 0, 14))
	found := false
	for _, p := range points {
		if !p.Date.Equal(target) {
			continue
		}
		found = true
		assert.Equal(t, KindScheduled, p.Kind)
		assert.Equal(t, 100, p.Confidence)
		assert.Equal(t, 500.0, p.PredictedAmount)
	}
	if !found {
		t.Fatalf("no point emitted for scheduled date %s", target)
	}
}

func TestForecastNonNegativity(t *testing.T) {
	e := testEngine()
	// Noise large enough to push quiet weekdays below zero before flooring.
	e.Noise = NewUniformNoise(50, 1)

	points, err := e.Forecast("shop1", "Rice", riceHistory(), nil, 60)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	for _, p := range points {
		if p.PredictedAmount < 0 {
			t.Fatalf("negative predicted amount %f at %s", p.PredictedAmount, p.Date)
		}
	}
}

func TestForecastChronologicalOrder(t *testing.T) {
	e := testEngine()
	points, err := e.Forecast("shop1", "Rice", riceHistory(), nil, 30)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Date.Before(points[i-1].Date) {
			t.Fatalf("points out of order at index %d", i)
		}
	}
}

func TestForecastHistoricalWindow(t *testing.T) {
	e := testEngine()
	points, err := e.Forecast("shop1", "Rice", riceHistory(), nil, 30)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}

	historical := 0
	for _, p := range points {
		if p.Kind != KindHistorical {
			continue
		}
		historical++
		if !p.Date.Before(dayOf(testToday)) {
			t.Fatalf("historical point dated %s is not in the past", p.Date)
		}
	}
	// One observation row per day over the trailing 30 days, today excluded.
	assert.Equal(t, 30, historical)

	// Historical points carry the observed arrival, not a model output.
	arrival := pointOn(t, points, testToday.AddDate(0, 0, -7))
	assert.Equal(t, 100.0, arrival.PredictedAmount)
	assert.Equal(t, KindHistorical, arrival.Kind)
}

func TestForecastEmptyHistoryFallback(t *testing.T) {
	e := testEngine()
	schedule := []ScheduleEntry{{
		ShopID:         "shop1",
		Commodity:      "Rice",
		Date:           testToday.AddDate(0, 0, 5),
		ExpectedAmount: 250,
	}}

	points, err := e.Forecast("shop1", "Rice", nil, schedule, 10)
	if err != nil {
		t.Fatalf("empty history must not be an error, got: %v", err)
	}
	assert.Len(t, points, 10)

	for _, p := range points {
		if p.Kind == KindScheduled {
			assert.Equal(t, 250.0, p.PredictedAmount)
			assert.Equal(t, 100, p.Confidence)
			continue
		}
		assert.Equal(t, e.Baseline, p.PredictedAmount, "fallback should be a flat baseline")
		assert.Equal(t, minConfidence, p.Confidence, "fallback confidence should be low throughout")
	}
}

func TestForecastIgnoresOtherShopsAndCommodities(t *testing.T) {
	e := testEngine()
	history := []Observation{
		{ShopID: "shop2", Commodity: "Rice", Date: testToday.AddDate(0, 0, -7), ArrivalAmount: 900},
		{ShopID: "shop1", Commodity: "Wheat", Date: testToday.AddDate(0, 0, -7), ArrivalAmount: 900},
	}

	points, err := e.Forecast("shop1", "Rice", history, nil, 5)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	// Nothing matches, so the engine behaves as if history were empty.
	for _, p := range points {
		assert.NotEqual(t, KindHistorical, p.Kind)
		assert.Equal(t, e.Baseline, p.PredictedAmount)
	}
}

// End-to-end scenario: weekly 100kg rice arrivals plus one scheduled 500kg
// delivery on day +14 over a 30-day horizon.
func TestForecastEndToEnd(t *testing.T) {
	e := testEngine()
	schedule := []ScheduleEntry{{
		ShopID:         "shop1",
		Commodity:      "Rice",
		Date:           testToday.AddDate(0, 0, 14),
		ExpectedAmount: 500,
	}}

	points, err := e.Forecast("shop1", "Rice", riceHistory(), schedule, 30)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}

	scheduledDay := dayOf(testToday.AddDate(0, 0, 14))
	sp := pointOn(t, points, scheduledDay)
	assert.Equal(t, KindScheduled, sp.Kind)
	assert.Equal(t, 500.0, sp.PredictedAmount)
	assert.Equal(t, 100, sp.Confidence)

	// Every other forward point follows the decaying-confidence pattern.
	prev := 101
	for _, p := range points {
		if p.Kind != KindForecast {
			continue
		}
		if p.Confidence > prev {
			t.Fatalf("confidence increased at %s", p.Date)
		}
		if p.Confidence < minConfidence || p.Confidence > startConfidence {
			t.Fatalf("confidence %d out of range at %s", p.Confidence, p.Date)
		}
		prev = p.Confidence
	}

	// The weekly profile should still surface ~100kg on arrival weekdays.
	arrivalWeekday := testToday.AddDate(0, 0, -7).Weekday()
	for _, p := range points {
		if p.Kind == KindForecast && p.Date.Weekday() == arrivalWeekday {
			assert.InDelta(t, 100, p.PredictedAmount, 45)
		}
	}
}

func firstOfKind(points []Point, kind Kind) Point {
	for _, p := range points {
		if p.Kind == kind {
			return p
		}
	}
	return Point{}
}

func pointOn(t *testing.T, points []Point, date time.Time) Point {
	t.Helper()
	day := dayOf(date)
	for _, p := range points {
		if p.Date.Equal(day) {
			return p
		}
	}
	t.Fatalf("no point on %s", day)
	return Point{}
}
