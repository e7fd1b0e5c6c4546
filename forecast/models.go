package forecast

import (
	"math"
	"math/rand"
	"time"
)

// SeasonalModel is fitted against historical observations and then queried
// for the expected arrival amount on a future date. Implementations must be
// safe to refit between forecast runs.
type SeasonalModel interface {
	Fit(history []Observation)
	Component(date time.Time, dayOffset int) float64
}

// NoiseModel represents the irreducible uncertainty added to each forward
// point. Samples must be bounded.
type NoiseModel interface {
	Sample(dayOffset int) float64
}

// WeeklyMonthlyModel is the built-in seasonal strategy: a weekly periodic
// component phase-aligned to the day of week, with amplitude taken from the
// spread of same-weekday arrivals, plus a slower monthly cosine trend.
type WeeklyMonthlyModel struct {
	dailyMean   float64
	weekdayMean [7]float64
	weekdayDamp [7]float64
	monthlyAmp  float64
}

func NewWeeklyMonthlyModel() *WeeklyMonthlyModel {
	return &WeeklyMonthlyModel{}
}

// Fit derives the per-weekday arrival profile over the full observed span.
// Days with no observation count as zero-arrival days, so sparse history
// does not inflate the weekday means.
func (m *WeeklyMonthlyModel) Fit(history []Observation) {
	*m = WeeklyMonthlyModel{}
	if len(history) == 0 {
		return
	}

	first := dayOf(history[0].Date)
	last := first
	arrivals := make(map[time.Time]float64, len(history))
	for _, o := range history {
		d := dayOf(o.Date)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
		arrivals[d] += o.ArrivalAmount
	}
	span := int(last.Sub(first).Hours()/24) + 1

	var total float64
	var sums, sqSums [7]float64
	var counts [7]int
	for i := 0; i < span; i++ {
		d := first.AddDate(0, 0, i)
		amount := arrivals[d]
		wd := int(d.Weekday())
		sums[wd] += amount
		sqSums[wd] += amount * amount
		counts[wd]++
		total += amount
	}

	m.dailyMean = total / float64(span)
	for wd := 0; wd < 7; wd++ {
		if counts[wd] == 0 {
			m.weekdayMean[wd] = m.dailyMean
			m.weekdayDamp[wd] = 1
			continue
		}
		mean := sums[wd] / float64(counts[wd])
		variance := sqSums[wd]/float64(counts[wd]) - mean*mean
		if variance < 0 {
			variance = 0
		}
		m.weekdayMean[wd] = mean
		// Erratic weekdays carry less of their deviation from the mean.
		if mean > 0 {
			m.weekdayDamp[wd] = mean / (mean + math.Sqrt(variance))
		} else {
			m.weekdayDamp[wd] = 1
		}
	}

	// The monthly trend oscillates around the weekly profile at a fraction
	// of the overall daily mean, mirroring the slow seasonal swing seen in
	// government supply cycles.
	m.monthlyAmp = 0.3 * m.dailyMean
}

// Component returns the expected arrival amount for a future date: the
// weekly profile for that weekday plus the monthly trend at the given
// forecast offset.
func (m *WeeklyMonthlyModel) Component(date time.Time, dayOffset int) float64 {
	wd := int(date.Weekday())
	weekly := (m.weekdayMean[wd] - m.dailyMean) * m.weekdayDamp[wd]
	monthly := math.Cos(float64(dayOffset)*math.Pi/15) * m.monthlyAmp
	return m.dailyMean + weekly + monthly
}

// UniformNoise samples uniformly from [-Amplitude, +Amplitude].
type UniformNoise struct {
	Amplitude float64
	rng       *rand.Rand
}

func NewUniformNoise(amplitude float64, seed int64) *UniformNoise {
	return &UniformNoise{Amplitude: amplitude, rng: rand.New(rand.NewSource(seed))}
}

func (n *UniformNoise) Sample(int) float64 {
	return (n.rng.Float64()*2 - 1) * n.Amplitude
}

// ZeroNoise disables the noise term. Useful for deterministic forecasts
// and for callers that want the bare seasonal expectation.
type ZeroNoise struct{}

func (ZeroNoise) Sample(int) float64 { return 0 }
