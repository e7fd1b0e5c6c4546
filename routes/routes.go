package routes

import (
	"rationtrack/handlers"
	"rationtrack/middleware"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// --- Authentication Routes ---
	auth := api.Group("/auth")
	auth.Post("/signup", handlers.HandleSignup)
	auth.Post("/login", handlers.HandleLogin)
	auth.Get("/me", middleware.JWTMiddleware, handlers.HandleGetProfile)

	// --- Bootstrap ---
	api.Post("/init/admin", handlers.HandleInitializeAdmin)

	// --- Public Routes ---
	api.Get("/shops", handlers.HandleListShops)
	api.Get("/shops/nearby", handlers.HandleNearbyShops)
	api.Post("/maps/geocode", handlers.HandleGeocode)
	api.Get("/stock/:shopId", handlers.HandleGetStockLevels)
	api.Get("/stock/:shopId/history", handlers.HandleGetStockHistory)
	api.Get("/weather/supply-risk", handlers.HandleSupplyRisk)
	api.Get("/reports", handlers.HandleListReports)

	// --- Authenticated Routes ---
	api.Post("/chatbot/query", middleware.JWTMiddleware, handlers.HandleChatbotQuery)
	api.Post("/forecast/run", middleware.JWTMiddleware, handlers.HandleRunForecast)
	api.Post("/reports", middleware.JWTMiddleware, handlers.HandleCreateReport)

	// Alert preferences are a subscriber feature, so they are citizen-only.
	// Registered before the admin alert routes so the literal
	// /alerts/preferences path wins over /alerts/:id.
	api.Get("/alerts/preferences", middleware.JWTMiddleware, middleware.CitizenRequired, handlers.HandleGetPreferences)
	api.Put("/alerts/preferences", middleware.JWTMiddleware, middleware.CitizenRequired, handlers.HandleUpsertPreferences)

	// --- Admin Routes ---
	api.Put("/reports/:id/status", middleware.JWTMiddleware, middleware.AdminRequired, handlers.HandleUpdateReportStatus)

	alerts := api.Group("/alerts", middleware.JWTMiddleware, middleware.AdminRequired)
	alerts.Post("/", handlers.HandleCreateAlert)
	alerts.Get("/", handlers.HandleListAlerts)
	alerts.Post("/:id/dispatch", handlers.HandleDispatchAlert)

	data := api.Group("/data", middleware.JWTMiddleware, middleware.AdminRequired)
	data.Post("/observations", handlers.HandleImportObservations)
	data.Post("/schedule", handlers.HandleImportSchedule)
	data.Post("/import", handlers.HandleImportFile)
	data.Get("/export", handlers.HandleExportData)
}
