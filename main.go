package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"app/config"
	"app/handlers"
	"app/middleware"
	"app/routes"
	"app/services"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := config.Load()
	if cfg.Gemini.APIKey == "" {
		// Not fatal: every AI call reports the missing key on its own.
		log.Println("WARNING: GEMINI_API_KEY is not set, AI lookups and analyses will fail")
	}

	enricher := services.NewBrandEnricher(cfg.Gemini)
	analyzer := services.NewVisibilityAnalyzer(cfg.Gemini)

	app := fiber.New()

	// Add CORS middleware
	app.Use(cors.New())
	app.Use(middleware.RequestID())

	// Setup routes
	routes.SetupRoutes(app, handlers.NewBrandHandler(enricher, analyzer))

	// Start server
	log.Fatal(app.Listen(":" + cfg.Port))
}
