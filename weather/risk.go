package weather

import "strings"

// RiskAssessment describes how current and forecast conditions are likely
// to affect supply deliveries.
type RiskAssessment struct {
	RiskLevel       string   `json:"riskLevel"` // low, medium, high
	DelayPrediction string   `json:"delayPrediction"`
	Factors         []string `json:"factors"`
}

// AssessSupplyRisk is a pure rule evaluation over weather data: rain or
// storms, high wind, temperature extremes, and severe weather in the next
// 24 hours each raise the risk.
func AssessSupplyRisk(current Current, forecast Forecast) RiskAssessment {
	risk := RiskAssessment{
		RiskLevel:       "low",
		DelayPrediction: "0-1 days",
		Factors:         []string{},
	}

	conditions := ""
	if len(current.Weather) > 0 {
		conditions = strings.ToLower(current.Weather[0].Main)
	}

	if strings.Contains(conditions, "rain") || strings.Contains(conditions, "storm") {
		risk.RiskLevel = "medium"
		risk.DelayPrediction = "1-2 days"
		risk.Factors = append(risk.Factors, "Heavy rainfall may affect transportation")
	}

	if current.Wind.Speed > 10 {
		risk.RiskLevel = "medium"
		risk.Factors = append(risk.Factors, "High wind speeds may delay deliveries")
	}

	if current.Main.Temp > 40 || current.Main.Temp < 5 {
		risk.RiskLevel = "medium"
		risk.Factors = append(risk.Factors, "Extreme temperatures may affect supply chain")
	}

	// The 3-hourly forecast list covers 24 hours in its first 8 slots.
	slots := forecast.List
	if len(slots) > 8 {
		slots = slots[:8]
	}
	for _, slot := range slots {
		if len(slot.Weather) == 0 {
			continue
		}
		main := strings.ToLower(slot.Weather[0].Main)
		if strings.Contains(main, "storm") || strings.Contains(main, "snow") || strings.Contains(main, "extreme") {
			risk.RiskLevel = "high"
			risk.DelayPrediction = "2-4 days"
			risk.Factors = append(risk.Factors, "Severe weather expected in the next 24 hours")
			break
		}
	}

	return risk
}
