package forecast

import (
	"errors"
	"sort"
	"time"
)

// Kind classifies a point on the forecast series.
type Kind string

const (
	KindHistorical Kind = "historical"
	KindForecast   Kind = "forecast"
	KindScheduled  Kind = "scheduled"
)

// Observation is a recorded fact about stock at a shop on a given day.
// Observations are immutable once recorded; days without a row are treated
// as days with no arrival.
type Observation struct {
	ShopID        string    `json:"shopId"`
	Commodity     string    `json:"commodity"`
	Date          time.Time `json:"date"`
	StockLevel    float64   `json:"stockLevel"`
	ArrivalAmount float64   `json:"arrivalAmount"`
	IsScheduled   bool      `json:"isScheduled"`

	// Capacity is the shop's storage capacity for the commodity, when known.
	// The dashboard uses it to bucket stock levels; the forecast ignores it.
	Capacity *float64 `json:"capacity,omitempty"`
}

// ScheduleEntry is a government-declared future arrival. Scheduled dates are
// fixed points: they override whatever the statistical model would predict.
type ScheduleEntry struct {
	ShopID         string    `json:"shopId"`
	Commodity      string    `json:"commodity"`
	Date           time.Time `json:"date"`
	ExpectedAmount float64   `json:"expectedAmount"`
}

// Point is one predicted-or-historical point on the output series.
type Point struct {
	Date            time.Time `json:"date"`
	PredictedAmount float64   `json:"predictedAmount"`
	Confidence      int       `json:"confidence"`
	Kind            Kind      `json:"kind"`
}

var ErrInvalidHorizon = errors.New("forecast horizon must be a positive number of days")

const (
	startConfidence    = 95
	minConfidence      = 60
	defaultBaseline    = 100
	defaultHistoryDays = 30
)

// Engine generates arrival forecasts from historical observations and a
// schedule of known future arrivals. The seasonal and noise models are
// pluggable so a real statistical model can replace the built-in one without
// touching the dispatcher or the summarizer.
type Engine struct {
	Seasonal SeasonalModel
	Noise    NoiseModel

	// HistoryWindow is how many trailing days of observed history are
	// emitted ahead of the forward-looking points.
	HistoryWindow int

	// Baseline is the flat daily estimate used when there is no history.
	Baseline float64

	// Now is overridable for tests.
	Now func() time.Time
}

// NewEngine returns an engine with the default weekly/monthly seasonal model
// and uniform noise seeded from the clock.
func NewEngine() *Engine {
	return &Engine{
		Seasonal:      NewWeeklyMonthlyModel(),
		Noise:         NewUniformNoise(10, time.Now().UnixNano()),
		HistoryWindow: defaultHistoryDays,
		Baseline:      defaultBaseline,
		Now:           time.Now,
	}
}

// Forecast produces a chronologically ordered series: up to HistoryWindow
// days of observed history followed by horizonDays forward points.
//
// Forward points combine the fitted seasonal components with bounded noise
// and are floored at zero. Confidence starts near 95 on day +1 and decays
// to a floor of 60. Dates present in the schedule are hard overrides:
// kind=scheduled, confidence=100, amount=expectedAmount.
//
// An empty history is not an error: the engine falls back to a flat Baseline
// estimate at the minimum confidence.
func (e *Engine) Forecast(shopID, commodity string, history []Observation, schedule []ScheduleEntry, horizonDays int) ([]Point, error) {
	if horizonDays <= 0 {
		return nil, ErrInvalidHorizon
	}

	today := dayOf(e.Now())

	obs := filterObservations(shopID, commodity, history)
	scheduled := scheduleByDay(shopID, commodity, schedule)

	points := make([]Point, 0, len(obs)+horizonDays)

	// Trailing observed window, oldest first.
	windowStart := today.AddDate(0, 0, -e.HistoryWindow)
	for _, o := range obs {
		d := dayOf(o.Date)
		if d.Before(windowStart) || !d.Before(today) {
			continue
		}
		points = append(points, Point{
			Date:            d,
			PredictedAmount: o.ArrivalAmount,
			Confidence:      100,
			Kind:            KindHistorical,
		})
	}

	flat := len(obs) == 0
	if !flat {
		e.Seasonal.Fit(obs)
	}

	for offset := 1; offset <= horizonDays; offset++ {
		date := today.AddDate(0, 0, offset)

		if entry, ok := scheduled[date]; ok {
			points = append(points, Point{
				Date:            date,
				PredictedAmount: entry.ExpectedAmount,
				Confidence:      100,
				Kind:            KindScheduled,
			})
			continue
		}

		var amount float64
		confidence := minConfidence
		if flat {
			amount = e.Baseline
		} else {
			amount = e.Seasonal.Component(date, offset) + e.Noise.Sample(offset)
			confidence = confidenceAt(offset)
		}
		if amount < 0 {
			amount = 0
		}

		points = append(points, Point{
			Date:            date,
			PredictedAmount: amount,
			Confidence:      confidence,
			Kind:            KindForecast,
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

// confidenceAt decays linearly with the forecast horizon: near-term
// predictions are more trustworthy than far ones.
func confidenceAt(dayOffset int) int {
	c := startConfidence - (3*dayOffset)/2
	if c < minConfidence {
		return minConfidence
	}
	return c
}

func filterObservations(shopID, commodity string, history []Observation) []Observation {
	out := make([]Observation, 0, len(history))
	for _, o := range history {
		if o.ShopID == shopID && o.Commodity == commodity {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func scheduleByDay(shopID, commodity string, schedule []ScheduleEntry) map[time.Time]ScheduleEntry {
	byDay := make(map[time.Time]ScheduleEntry, len(schedule))
	for _, s := range schedule {
		if s.ShopID == shopID && s.Commodity == commodity {
			byDay[dayOf(s.Date)] = s
		}
	}
	return byDay
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
