package handlers

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"rationtrack/database"
	"rationtrack/models"
	"rationtrack/store"
	"rationtrack/utils"
)

// HandleCreateAlert declares a stock arrival event. Alerts are immutable
// after creation; dispatch only ever stamps sent_at.
// POST /api/v1/alerts
func HandleCreateAlert(c *fiber.Ctx) error {
	var req models.CreateAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": utils.ValidationMessage(err)})
	}

	arrivalDate, err := time.ParseInLocation("2006-01-02", req.ArrivalDate, time.UTC)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "arrivalDate must be formatted as YYYY-MM-DD"})
	}

	alerts := store.NewAlertStore(database.GetDB())
	alert, err := alerts.CreateAlert(c.Context(), models.StockAlert{
		ShopID:        req.ShopID,
		ShopName:      req.ShopName,
		CommodityName: req.CommodityName,
		ArrivalDate:   arrivalDate,
		QuantityKg:    req.QuantityKg,
		Message:       req.Message,
	})
	if err != nil {
		log.Printf("Error creating alert for shop %s: %v", req.ShopID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not create alert"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "success", "data": alert})
}

// HandleListAlerts returns alerts newest first, paginated.
// GET /api/v1/alerts?page=...&pageSize=...
func HandleListAlerts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	alerts := store.NewAlertStore(database.GetDB())
	list, total, err := alerts.ListAlerts(c.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		log.Printf("Error listing alerts: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	return c.JSON(fiber.Map{
		"status":     "success",
		"data":       list,
		"pagination": utils.CreatePagination(total, page, pageSize),
	})
}

// HandleDispatchAlert fans an alert out to every matching subscriber and
// returns the per-subscriber outcome. Rerunning it only retries pairs that
// have not been delivered yet.
// POST /api/v1/alerts/:id/dispatch
func HandleDispatchAlert(c *fiber.Ctx) error {
	alertID := c.Params("id")

	result, err := DispatchAlert(c.Context(), alertID)
	if err != nil {
		if err == store.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "Alert not found"})
		}
		log.Printf("Error dispatching alert %s: %v", alertID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not dispatch alert"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": result})
}
