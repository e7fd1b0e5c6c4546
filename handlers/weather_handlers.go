package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"rationtrack/weather"
)

const weatherCacheTTL = 15 * time.Minute

// HandleSupplyRisk fetches current conditions and the short-range forecast
// for a coordinate and returns the delivery risk assessment derived from
// them. Results are cached briefly since weather moves slowly.
// GET /api/v1/weather/supply-risk?lat=...&lon=...
func HandleSupplyRisk(c *fiber.Ctx) error {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Query parameters lat and lon are required"})
	}

	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Weather service not configured"})
	}

	cacheKey := fmt.Sprintf("weather-risk:%.2f:%.2f", lat, lon)
	if cached, ok := Cache.Get(c.Context(), cacheKey); ok {
		var payload json.RawMessage = cached
		return c.JSON(fiber.Map{"status": "success", "data": payload})
	}

	client := weather.NewClient(apiKey)

	current, err := client.FetchCurrent(c.Context(), lat, lon)
	if err != nil {
		log.Printf("Error fetching current weather for %.2f,%.2f: %v", lat, lon, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"status": "error", "message": "Weather provider unreachable"})
	}

	forecast, err := client.FetchForecast(c.Context(), lat, lon)
	if err != nil {
		log.Printf("Error fetching weather forecast for %.2f,%.2f: %v", lat, lon, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"status": "error", "message": "Weather provider unreachable"})
	}

	assessment := weather.AssessSupplyRisk(current, forecast)

	payload := fiber.Map{
		"current":    current,
		"assessment": assessment,
	}
	if encoded, err := json.Marshal(payload); err == nil {
		Cache.Set(c.Context(), cacheKey, encoded, weatherCacheTTL)
	}

	return c.JSON(fiber.Map{"status": "success", "data": payload})
}
