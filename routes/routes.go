package routes

import (
	"app/handlers"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes defines all the routes for the application.
//
// The brand endpoints are registered with All so non-POST requests reach
// the handler's JSON 405 instead of Fiber's plain-text default.
func SetupRoutes(app *fiber.App, brand *handlers.BrandHandler) {
	app.Get("/version", handlers.HandleVersion)

	// --- Brand AI Visibility Routes ---
	app.All("/brand/lookup/", brand.HandleLookupBrand)
	app.All("/brand/analyze/", brand.HandleRunBrandAnalysis)
}
