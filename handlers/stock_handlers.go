package handlers

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"rationtrack/database"
	"rationtrack/store"
)

const defaultHistoryQueryDays = 90

// HandleGetStockLevels returns the latest observed stock position per
// commodity at a shop, with the dashboard status attached.
// GET /api/v1/stock/:shopId
func HandleGetStockLevels(c *fiber.Ctx) error {
	shopID := c.Params("shopId")

	supplies := store.NewSupplyStore(database.GetDB())
	levels, err := supplies.LatestStockLevels(c.Context(), shopID)
	if err != nil {
		log.Printf("Error fetching stock levels for shop %s: %v", shopID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": levels})
}

// HandleGetStockHistory returns the observation history for one commodity at
// a shop, oldest first.
// GET /api/v1/stock/:shopId/history?commodity=...&days=...
func HandleGetStockHistory(c *fiber.Ctx) error {
	shopID := c.Params("shopId")
	commodity := c.Query("commodity")
	if commodity == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Query parameter commodity is required"})
	}

	days := defaultHistoryQueryDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "days must be a positive integer"})
		}
		days = parsed
	}

	from := time.Now().UTC().AddDate(0, 0, -days)
	supplies := store.NewSupplyStore(database.GetDB())
	observations, err := supplies.ListObservations(c.Context(), shopID, commodity, from)
	if err != nil {
		log.Printf("Error fetching stock history for %s/%s: %v", shopID, commodity, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": observations})
}
