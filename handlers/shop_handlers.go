package handlers

import (
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"rationtrack/database"
	"rationtrack/models"
	"rationtrack/utils"
)

// HandleListShops returns active shops, optionally filtered by district or a
// name search term.
// GET /api/v1/shops?district=...&search=...
func HandleListShops(c *fiber.Ctx) error {
	district := strings.TrimSpace(c.Query("district"))
	search := strings.TrimSpace(c.Query("search"))

	query := `
		SELECT id, name, address, phone, district, latitude, longitude, is_active, created_at, updated_at
		FROM shops
		WHERE is_active = TRUE
	`
	args := []interface{}{}
	if district != "" {
		args = append(args, district)
		query += " AND district = $" + strconv.Itoa(len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += " AND name ILIKE $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY name"

	rows, err := database.GetDB().Query(c.Context(), query, args...)
	if err != nil {
		log.Printf("Error listing shops: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}
	defer rows.Close()

	shops := make([]models.Shop, 0)
	for rows.Next() {
		var shop models.Shop
		if err := rows.Scan(
			&shop.ID, &shop.Name, &shop.Address, &shop.Phone, &shop.District,
			&shop.Latitude, &shop.Longitude, &shop.IsActive, &shop.CreatedAt, &shop.UpdatedAt,
		); err != nil {
			log.Printf("Error scanning shop row: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
		}
		shops = append(shops, shop)
	}

	return c.JSON(fiber.Map{"status": "success", "data": shops})
}

// HandleNearbyShops returns active shops within a radius of a coordinate,
// sorted nearest first. Shops without coordinates are skipped.
// GET /api/v1/shops/nearby?lat=...&lng=...&radiusKm=...
func HandleNearbyShops(c *fiber.Ctx) error {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Query parameters lat and lng are required"})
	}

	radiusKm := 10.0
	if raw := c.Query("radiusKm"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "radiusKm must be a positive number"})
		}
		radiusKm = parsed
	}

	query := `
		SELECT id, name, address, phone, district, latitude, longitude, is_active, created_at, updated_at
		FROM shops
		WHERE is_active = TRUE AND latitude IS NOT NULL AND longitude IS NOT NULL
	`
	rows, err := database.GetDB().Query(c.Context(), query)
	if err != nil {
		log.Printf("Error querying shops for nearby search: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
	}
	defer rows.Close()

	shops := make([]models.Shop, 0)
	for rows.Next() {
		var shop models.Shop
		if err := rows.Scan(
			&shop.ID, &shop.Name, &shop.Address, &shop.Phone, &shop.District,
			&shop.Latitude, &shop.Longitude, &shop.IsActive, &shop.CreatedAt, &shop.UpdatedAt,
		); err != nil {
			log.Printf("Error scanning shop row: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Database error"})
		}

		distance := utils.HaversineKm(lat, lng, *shop.Latitude, *shop.Longitude)
		if distance > radiusKm {
			continue
		}
		shop.DistanceKm = &distance
		shops = append(shops, shop)
	}

	sort.Slice(shops, func(i, j int) bool {
		return *shops[i].DistanceKm < *shops[j].DistanceKm
	})

	return c.JSON(fiber.Map{"status": "success", "data": shops})
}
