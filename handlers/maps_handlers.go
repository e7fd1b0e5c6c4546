package handlers

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofiber/fiber/v2"

	"rationtrack/cache"
)

// Cache is the shared response cache for external-provider lookups. It is
// assigned at startup and may be nil, in which case caching is disabled.
var Cache *cache.Store

const geocodeCacheTTL = 24 * time.Hour

var mapsClient = resty.New().SetBaseURL("https://maps.googleapis.com/maps/api")

// HandleGeocode proxies an address lookup to the Google Maps Geocoding API
// so the browser never sees the server's API key. Responses are cached per
// address because shop addresses essentially never move.
// POST /api/v1/maps/geocode
func HandleGeocode(c *fiber.Ctx) error {
	var body struct {
		Address string `json:"address"`
	}
	if err := c.BodyParser(&body); err != nil || body.Address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Field address is required"})
	}

	apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if apiKey == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": "Geocoding not configured"})
	}

	cacheKey := "geocode:" + body.Address
	if cached, ok := Cache.Get(c.Context(), cacheKey); ok {
		var payload json.RawMessage = cached
		return c.JSON(fiber.Map{"status": "success", "data": payload})
	}

	var result json.RawMessage
	resp, err := mapsClient.R().
		SetContext(c.Context()).
		SetQueryParam("address", body.Address).
		SetQueryParam("key", apiKey).
		SetResult(&result).
		Get("/geocode/json")
	if err != nil {
		log.Printf("Error calling geocoding API for %q: %v", body.Address, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"status": "error", "message": "Geocoding provider unreachable"})
	}
	if resp.IsError() {
		log.Printf("Geocoding API returned %s for %q", resp.Status(), body.Address)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"status": "error", "message": "Geocoding provider error"})
	}

	Cache.Set(c.Context(), cacheKey, result, geocodeCacheTTL)

	return c.JSON(fiber.Map{"status": "success", "data": result})
}
