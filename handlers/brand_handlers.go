package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"app/middleware"
	"app/models"
	"app/services"
)

// BrandEnricher produces an AI-enriched profile for a brand name plus an
// optional description hint.
type BrandEnricher interface {
	EnrichBrand(ctx context.Context, brandName, descriptionHint string) (*models.BrandProfile, error)
}

// VisibilityAnalyzer produces the full visibility snapshot for a brand
// configuration.
type VisibilityAnalyzer interface {
	AnalyzeBrandVisibility(ctx context.Context, brandName, brandURL, region, language, initialTopics string) (*models.AnalysisResult, error)
}

// BrandHandler serves the brand lookup and analysis endpoints.
type BrandHandler struct {
	enricher BrandEnricher
	analyzer VisibilityAnalyzer
}

// NewBrandHandler wires the brand endpoints to their services.
func NewBrandHandler(enricher BrandEnricher, analyzer VisibilityAnalyzer) *BrandHandler {
	return &BrandHandler{enricher: enricher, analyzer: analyzer}
}

// HandleLookupBrand enriches a brand name into a full profile.
// POST /brand/lookup/
//
// An enrichment failure never fails the request: the response falls back
// to the user's own input and carries the cause in ai_warning.
func (h *BrandHandler) HandleLookupBrand(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "POST required"})
	}

	var req models.LookupBrandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
	}

	brandName := strings.TrimSpace(req.BrandName)
	brandDesc := strings.TrimSpace(req.BrandDescription)

	if brandName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Brand name is required"})
	}

	var aiWarning string
	profile, err := h.enricher.EnrichBrand(c.Context(), brandName, brandDesc)
	if err != nil {
		// Don't block the flow on an AI failure; fall back to user input.
		aiWarning = err.Error()
		log.Printf("[%s] WARNING Brand AI failed: %s", middleware.GetRequestID(c), aiWarning)
	}

	var resp models.LookupBrandResponse
	if profile != nil {
		resp = models.LookupBrandResponse{
			BrandName:        profile.BrandName,
			BrandDescription: profile.BrandDescription,
			BrandURL:         profile.BrandURL,
			Region:           profile.Region,
			Language:         profile.Language,
			InitialTopics:    strings.Join(profile.InitialTopics, "\n"),
		}
	} else {
		resp = models.LookupBrandResponse{
			BrandName:        brandName,
			BrandDescription: brandDesc,
		}
	}
	resp.AIWarning = aiWarning

	return c.JSON(resp)
}

// HandleRunBrandAnalysis runs the visibility analysis for a configured
// brand and returns the snapshot envelope.
// POST /brand/analyze/
//
// Unlike lookup there is no fallback here: an analysis failure is a 500.
func (h *BrandHandler) HandleRunBrandAnalysis(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "POST required"})
	}

	var req models.BrandAnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
	}

	brandName := strings.TrimSpace(req.BrandName)
	if brandName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Brand name is required"})
	}

	result, err := h.analyzer.AnalyzeBrandVisibility(
		c.Context(),
		brandName,
		strings.TrimSpace(req.BrandURL),
		strings.TrimSpace(req.Region),
		strings.TrimSpace(req.Language),
		req.InitialTopics,
	)
	if err != nil {
		var aerr *services.VisibilityAnalysisError
		if errors.As(err, &aerr) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": fmt.Sprintf("Brand visibility analysis failed: %v", aerr),
			})
		}
		log.Printf("[%s] ERROR in brand visibility analysis: %v", middleware.GetRequestID(c), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Brand analysis failed",
			"details": err.Error(),
		})
	}

	return c.JSON(result)
}
