package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"rationtrack/database"
	"rationtrack/models"
	"rationtrack/store"
	"rationtrack/utils"
)

// HandleGetPreferences returns the authenticated user's notification
// preferences. Users who never saved any get the defaults: email on, SMS
// off, every shop and commodity matched.
// GET /api/v1/alerts/preferences
func HandleGetPreferences(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	alerts := store.NewAlertStore(database.GetDB())
	pref, err := alerts.GetPreference(c.Context(), userID)
	if err != nil {
		if err == store.ErrNotFound {
			return c.JSON(fiber.Map{"status": "success", "data": models.AlertPreference{
				UserID:               userID,
				EmailEnabled:         true,
				PreferredShops:       []string{},
				PreferredCommodities: []string{},
			}})
		}
		log.Printf("Error fetching preferences for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": pref})
}

// HandleUpsertPreferences saves the authenticated user's notification
// preferences, replacing any previous configuration.
// PUT /api/v1/alerts/preferences
func HandleUpsertPreferences(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var req models.PreferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Cannot parse JSON"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": utils.ValidationMessage(err)})
	}

	if req.PreferredShops == nil {
		req.PreferredShops = []string{}
	}
	if req.PreferredCommodities == nil {
		req.PreferredCommodities = []string{}
	}

	alerts := store.NewAlertStore(database.GetDB())
	err := alerts.UpsertPreference(c.Context(), models.AlertPreference{
		UserID:               userID,
		EmailEnabled:         req.EmailEnabled,
		SMSEnabled:           req.SMSEnabled,
		PhoneNumber:          req.PhoneNumber,
		PreferredShops:       req.PreferredShops,
		PreferredCommodities: req.PreferredCommodities,
	})
	if err != nil {
		log.Printf("Error saving preferences for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Could not save preferences"})
	}

	pref, err := alerts.GetPreference(c.Context(), userID)
	if err != nil {
		log.Printf("Error re-reading preferences for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}

	return c.JSON(fiber.Map{"status": "success", "data": pref})
}
