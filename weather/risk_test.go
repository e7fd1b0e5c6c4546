package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func current(main string, temp, wind float64) Current {
	var c Current
	c.Weather = []Condition{{Main: main}}
	c.Main.Temp = temp
	c.Wind.Speed = wind
	return c
}

func forecastOf(mains ...string) Forecast {
	var f Forecast
	for _, m := range mains {
		f.List = append(f.List, struct {
			Weather []Condition `json:"weather"`
		}{Weather: []Condition{{Main: m}}})
	}
	return f
}

func TestAssessSupplyRiskClear(t *testing.T) {
	risk := AssessSupplyRisk(current("Clear", 28, 3), forecastOf("Clear", "Clouds"))
	assert.Equal(t, "low", risk.RiskLevel)
	assert.Equal(t, "0-1 days", risk.DelayPrediction)
	assert.Empty(t, risk.Factors)
}

func TestAssessSupplyRiskRain(t *testing.T) {
	risk := AssessSupplyRisk(current("Rain", 28, 3), forecastOf("Clouds"))
	assert.Equal(t, "medium", risk.RiskLevel)
	assert.Equal(t, "1-2 days", risk.DelayPrediction)
	assert.Contains(t, risk.Factors, "Heavy rainfall may affect transportation")
}

func TestAssessSupplyRiskWindAndTemperature(t *testing.T) {
	risk := AssessSupplyRisk(current("Clear", 43, 12), Forecast{})
	assert.Equal(t, "medium", risk.RiskLevel)
	assert.Contains(t, risk.Factors, "High wind speeds may delay deliveries")
	assert.Contains(t, risk.Factors, "Extreme temperatures may affect supply chain")
}

func TestAssessSupplyRiskSevereForecast(t *testing.T) {
	risk := AssessSupplyRisk(current("Clear", 28, 3), forecastOf("Clear", "Thunderstorm"))
	assert.Equal(t, "high", risk.RiskLevel)
	assert.Equal(t, "2-4 days", risk.DelayPrediction)
	assert.Contains(t, risk.Factors, "Severe weather expected in the next 24 hours")
}

func TestAssessSupplyRiskIgnoresFarForecast(t *testing.T) {
	// Slot 9+ is beyond the 24-hour window and must not raise the risk.
	mains := []string{"Clear", "Clear", "Clear", "Clear", "Clear", "Clear", "Clear", "Clear", "Thunderstorm"}
	risk := AssessSupplyRisk(current("Clear", 28, 3), forecastOf(mains...))
	assert.Equal(t, "low", risk.RiskLevel)
}
