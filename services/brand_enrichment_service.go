package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"app/config"
	"app/models"
	"app/utils"
)

// enrichmentTimeout bounds one enrichment call to Gemini.
const enrichmentTimeout = 20 * time.Second

// maxRawTextLen caps how much unparseable candidate text is quoted in a
// parse error.
const maxRawTextLen = 100

// enrichmentSchema constrains the enrichment call to the exact profile
// shape the brand form consumes. Kept in lockstep with models.BrandProfile.
var enrichmentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"brand_name": {
			Type:        genai.TypeString,
			Description: "The official or recognized brand name.",
		},
		"brand_description": {
			Type:        genai.TypeString,
			Description: "A brief, accurate description of the brand and its core business.",
		},
		"brand_url": {
			Type:        genai.TypeString,
			Description: "The brand's primary official website URL.",
		},
		"region": {
			Type:        genai.TypeString,
			Description: "The primary geographical region the brand targets (e.g., 'India', 'Global', 'North America').",
		},
		"language": {
			Type:        genai.TypeString,
			Description: "The primary language the brand uses (e.g., 'English', 'Hindi').",
		},
		"initial_topics": {
			Type:        genai.TypeArray,
			Description: "3 to 5 high-level keywords or product categories the brand is known for.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{
		"brand_name",
		"brand_description",
		"brand_url",
		"region",
		"language",
		"initial_topics",
	},
}

// BrandEnricher normalizes and enriches brand information through Gemini
// structured output.
type BrandEnricher struct {
	cfg     config.GeminiConfig
	timeout time.Duration
}

// NewBrandEnricher builds an enricher around the given Gemini config.
func NewBrandEnricher(cfg config.GeminiConfig) *BrandEnricher {
	return &BrandEnricher{cfg: cfg, timeout: enrichmentTimeout}
}

// EnrichBrand asks Gemini for a fact-checked brand profile. The
// description hint is context only and may be overridden. Every failure
// comes back as a *BrandEnrichmentError so the caller can decide whether
// to fall back to plain user input.
func (s *BrandEnricher) EnrichBrand(ctx context.Context, brandName, descriptionHint string) (*models.BrandProfile, error) {
	prompt := fmt.Sprintf(
		"You are a brand intelligence engine. Your task is to provide accurate, factual information about the given brand. "+
			"Brand Name: %s\n"+
			"Description Hint (use for context, but fact-check): %s\n"+
			"Fill in all fields in the required JSON structure. Be realistic and accurate. If you cannot find a URL, use an empty string.",
		brandName, descriptionHint,
	)

	raw, callErr := callGemini(ctx, s.cfg, prompt, enrichmentSchema, s.timeout)
	if callErr != nil {
		return nil, s.wrapCallError(callErr)
	}

	var payload struct {
		BrandName        string          `json:"brand_name"`
		BrandDescription string          `json:"brand_description"`
		BrandURL         string          `json:"brand_url"`
		Region           string          `json:"region"`
		Language         string          `json:"language"`
		InitialTopics    json.RawMessage `json:"initial_topics"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, s.parseError(err.Error(), string(raw))
	}

	return &models.BrandProfile{
		BrandName:        utils.FirstNonEmpty(payload.BrandName, brandName),
		BrandDescription: utils.FirstNonEmpty(payload.BrandDescription, descriptionHint),
		BrandURL:         strings.TrimSpace(payload.BrandURL),
		Region:           strings.TrimSpace(payload.Region),
		Language:         strings.TrimSpace(payload.Language),
		InitialTopics:    coerceTopics(payload.InitialTopics),
	}, nil
}

func (s *BrandEnricher) wrapCallError(ce *geminiCallError) *BrandEnrichmentError {
	switch ce.kind {
	case KindConfig:
		return &BrandEnrichmentError{Kind: KindConfig, Cause: "GEMINI_API_KEY not configured."}
	case KindProvider:
		return &BrandEnrichmentError{
			Kind:  KindProvider,
			Cause: fmt.Sprintf("Gemini API returned %d: %s", ce.status, ce.detail),
		}
	case KindParse:
		return s.parseError(ce.detail, "")
	default:
		return &BrandEnrichmentError{
			Kind:  KindNetwork,
			Cause: fmt.Sprintf("Network error contacting Gemini API: %s", ce.detail),
		}
	}
}

func (s *BrandEnricher) parseError(detail, raw string) *BrandEnrichmentError {
	return &BrandEnrichmentError{
		Kind: KindParse,
		Cause: fmt.Sprintf("Failed to parse expected JSON structure from Gemini AI: %s. Raw text start: '%s...'",
			detail, utils.Truncate(raw, maxRawTextLen)),
	}
}

// coerceTopics accepts initial_topics however the model shaped it. A
// single scalar becomes a one-element list, entries are stringified and
// trimmed, and blanks are dropped. Always returns a non-nil slice.
func coerceTopics(raw json.RawMessage) []string {
	topics := []string{}
	if len(raw) == 0 {
		return topics
	}

	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		var single interface{}
		if err := json.Unmarshal(raw, &single); err != nil || single == nil {
			return topics
		}
		items = []interface{}{single}
	}

	for _, item := range items {
		var topic string
		switch v := item.(type) {
		case nil:
			continue
		case string:
			topic = v
		default:
			topic = fmt.Sprint(v)
		}
		if topic = strings.TrimSpace(topic); topic != "" {
			topics = append(topics, topic)
		}
	}
	return topics
}
