package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"rationtrack/database"
	"rationtrack/forecast"
	"rationtrack/models"
	"rationtrack/store"
	"rationtrack/utils"
)

const (
	defaultForecastHorizonDays = 30
	forecastHistoryDays        = 180
)

// HandleRunForecast loads the shop's observation history and declared
// schedule, runs the forecast engine over them, and returns the series
// together with a derived insight summary.
// POST /api/v1/forecast/run
func HandleRunForecast(c *fiber.Ctx) error {
	var req models.ForecastRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": utils.ValidationMessage(err)})
	}
	if req.HorizonDays == 0 {
		req.HorizonDays = defaultForecastHorizonDays
	}

	now := time.Now().UTC()
	supplies := store.NewSupplyStore(database.GetDB())

	history, err := supplies.ListObservations(c.Context(), req.ShopID, req.Commodity,
		now.AddDate(0, 0, -forecastHistoryDays))
	if err != nil {
		log.Printf("Error loading observations for %s/%s: %v", req.ShopID, req.Commodity, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not generate forecast"})
	}

	schedule, err := supplies.ListSchedule(c.Context(), req.ShopID, req.Commodity, now)
	if err != nil {
		log.Printf("Error loading schedule for %s/%s: %v", req.ShopID, req.Commodity, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not generate forecast"})
	}

	engine := forecast.NewEngine()
	points, err := engine.Forecast(req.ShopID, req.Commodity, history, schedule, req.HorizonDays)
	if err != nil {
		if err == forecast.ErrInvalidHorizon {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
		}
		log.Printf("Forecast failed for %s/%s: %v", req.ShopID, req.Commodity, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not generate forecast"})
	}

	var hooks []forecast.RiskHook
	if len(req.ExternalRiskFactors) > 0 {
		factors := req.ExternalRiskFactors
		hooks = append(hooks, func([]forecast.Point) []string { return factors })
	}

	insight, err := forecast.Summarize(points, now, hooks...)
	if err != nil {
		if err == forecast.ErrNoUpcomingArrival {
			return c.JSON(fiber.Map{
				"status":  "success",
				"message": "No upcoming arrival predicted within the forecast horizon",
				"data":    fiber.Map{"points": points, "insight": nil},
			})
		}
		log.Printf("Insight summary failed for %s/%s: %v", req.ShopID, req.Commodity, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not generate forecast"})
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"points": points, "insight": insight},
	})
}
