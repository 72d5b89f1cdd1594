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
)

// visibilityTimeout bounds one visibility analysis call to Gemini. The
// snapshot prompt is much heavier than enrichment, so it gets more room.
const visibilityTimeout = 40 * time.Second

// analysisTimeWindow labels the period every snapshot is estimated over.
const analysisTimeWindow = "last_30_days"

// trendSeriesSchema is the shared shape of one named trend line: a brand
// name plus values aligned with the trend labels.
var trendSeriesSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name": {Type: genai.TypeString},
		"values": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeNumber},
		},
	},
	Required: []string{"name", "values"},
}

// visibilitySchema mirrors the chart data the dashboard renders. Kept in
// lockstep with models.VisibilityMetrics.
var visibilitySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"brand_share_pct": {
			Type:        genai.TypeNumber,
			Description: "Estimated percentage of AI responses (across major models) that mention the brand compared to its competitors for the given topics and region.",
		},
		"competitor_shares": {
			Type:        genai.TypeArray,
			Description: "Estimated share-of-voice percentage for each competitor brand.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":      {Type: genai.TypeString},
					"share_pct": {Type: genai.TypeNumber},
				},
				Required: []string{"name", "share_pct"},
			},
		},
		"avg_rank": {
			Type:        genai.TypeNumber,
			Description: "Estimated average rank/position of the brand when it appears in AI responses for relevant prompts (lower is better).",
		},
		"avg_rank_competitors": {
			Type:        genai.TypeArray,
			Description: "Estimated average rank for the brand and key competitors.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":     {Type: genai.TypeString},
					"avg_rank": {Type: genai.TypeNumber},
				},
				Required: []string{"name", "avg_rank"},
			},
		},
		"citations": {
			Type:        genai.TypeInteger,
			Description: "Estimated count of AI responses that explicitly reference the brand's official website or URL for the chosen topics and time window.",
		},
		"trend": {
			Type:        genai.TypeObject,
			Description: "Time-series trends for visibility and average rank.",
			Properties: map[string]*genai.Schema{
				"labels": {
					Type:        genai.TypeArray,
					Description: "Time labels (e.g., dates) for each point in the trend.",
					Items:       &genai.Schema{Type: genai.TypeString},
				},
				"visibility": {
					Type:        genai.TypeArray,
					Description: "List of brands with visibility share-of-voice time series. Each item has a brand name and an array of numeric values aligned with 'labels'.",
					Items:       trendSeriesSchema,
				},
				"avg_rank": {
					Type:        genai.TypeArray,
					Description: "List of brands with average-rank time series. Each item has a brand name and an array of numeric values aligned with 'labels'.",
					Items:       trendSeriesSchema,
				},
			},
			Required: []string{"labels", "visibility", "avg_rank"},
		},
		"donut": {
			Type:        genai.TypeArray,
			Description: "Data for the competitor-vs-brand donut chart.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"label": {Type: genai.TypeString},
					"value": {Type: genai.TypeNumber},
				},
				Required: []string{"label", "value"},
			},
		},
		"top_prompts": {
			Type:        genai.TypeArray,
			Description: "Top 5 prompts that most strongly drive visibility for the brand.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"prompt": {Type: genai.TypeString},
					"model":  {Type: genai.TypeString},
					"impact": {
						Type:        genai.TypeString,
						Description: "Impact level: High, Medium, or Low.",
					},
				},
				Required: []string{"prompt", "model", "impact"},
			},
		},
		"prompt_stats": {
			Type:        genai.TypeObject,
			Description: "Internal estimate of how many prompts were considered.",
			Properties: map[string]*genai.Schema{
				"used":  {Type: genai.TypeInteger},
				"total": {Type: genai.TypeInteger},
			},
			Required: []string{"used", "total"},
		},
	},
	Required: []string{
		"brand_share_pct",
		"competitor_shares",
		"avg_rank",
		"avg_rank_competitors",
		"citations",
		"trend",
		"donut",
		"top_prompts",
		"prompt_stats",
	},
}

// visibilityPromptPreamble frames Gemini as an analytics engine and walks
// it through every section of the schema. The brand-specific lines are
// appended by buildVisibilityPrompt.
const visibilityPromptPreamble = `You are an AI brand visibility and search analytics expert.
You have access to the public web and your own knowledge, but you do NOT have access to proprietary usage logs from ChatGPT, Gemini, Claude, Llama or other assistants.

Your job is to build a realistic, internally-consistent ANALYTICS SNAPSHOT for the given brand, as if you had a dashboard of AI-search usage. You must strictly output JSON that matches the provided JSON schema. Do NOT add any extra top-level fields, do NOT add comments, and do NOT return markdown.

First, use the brand name, region, language and topics to understand:
  • What the brand sells and how strong / popular it is in its market.
  • The brand's main official website.
  • Around 10 meaningful competitors in the same category and region.
Then, using your best judgement and web knowledge, construct a plausible analytics dataset that fills ALL required fields of the JSON schema:

1) brand_share_pct (number)
   - Your estimate of the brand's overall 'share of voice' in AI assistant answers for the last ~30 days.
   - This is the % of relevant AI responses that mention the brand, compared to its competitors, across the given topics and region.
   - Must be between 0 and 100.

2) competitor_shares (array)
   - A list of competitors and their share_pct values.
   - Include around 8–10 key competitors where possible.
   - brand_share_pct + sum(all competitor share_pct) should be close to 100 (allow small rounding error).
   - Use realistic competitor brand names for this category and region.

3) avg_rank and avg_rank_competitors
   - avg_rank: estimated average position where the brand appears in AI answer lists when it is present.
     Lower numbers are better (e.g. 1–10 range is typical).
   - avg_rank_competitors: include the brand itself plus several main competitors with their avg_rank.
   - The stronger brands should generally have lower (better) avg_rank numbers.

4) citations
   - An INTEGER estimate of how many AI responses in the last ~30 days explicitly reference or link to the brand's official website (citations).
   - Scale this number to the brand's size. Big global brands can be in the thousands; small brands can be in the tens or hundreds.

5) trend (labels, visibility, avg_rank)
   - Build a time-series over the last ~30 days with 5–8 points.
   - 'labels' should be user-friendly time labels, for example: 'Day 1', 'Day 5', 'Day 10', ... OR short dates.
   - 'visibility' must be an ARRAY of objects. Each object:
       { "name": "<brand or competitor>", "values": [v1, v2, ...] }
     where 'values' is a numeric array of share-of-voice % aligned with 'labels'.
   - 'avg_rank' must be an ARRAY of objects with the SAME structure, but 'values' are average rank numbers.
   - ALWAYS include the main brand name as one of the 'name' entries in BOTH arrays.
   - Also include 2–4 important competitors.
   - All 'values' arrays MUST have the same length as 'labels'.
   - The curves should look realistic: small fluctuations, no impossible jumps.

6) donut
   - An array for the brand vs competitors donut chart.
   - At minimum, include TWO entries:
       { "label": "<brand_name>", "value": brand_share_pct }
       { "label": "Competitors", "value": 100 - brand_share_pct }
   - You may optionally break competitors into multiple slices, but they must be consistent with brand_share_pct and competitor_shares.

7) top_prompts
   - A list of the top 5 prompts that people would realistically type into AI assistants when searching for this brand or its category.
   - Each item must have:
       • prompt: a natural language user query (e.g. 'best budget wireless earbuds like <brand_name>')
       • model: a realistic LLM model name such as 'gpt-4o', 'gpt-4o-mini', 'gemini-2.5-flash', 'claude-3-5-sonnet', 'llama-3-70b', etc.
       • impact: one of 'High', 'Medium', 'Low', representing how strongly this prompt contributes to the brand's visibility in AI answers.
   - Provide at least two prompts with impact = 'High', at least two with 'Medium'.
   - Sort the list from highest to lowest impact.

8) prompt_stats
   - used: integer estimate of how many prompts you effectively considered or simulated for this analysis.
   - total: integer estimate of the broader prompt space.
   - Ensure used <= total.
   - Typical ranges might be between 10 and 200.

IMPORTANT CONSTRAINTS:
  • You MUST fully satisfy the given JSON schema. Fill every required field.
  • Do NOT add extra top-level fields beyond those in the schema.
  • Do NOT output explanations, comments, or markdown – ONLY a single JSON object.
  • Ensure all numeric values are valid JSON numbers (no NaN, no Infinity).
  • Ensure arrays and objects are internally consistent (lengths match, names match between sections).
`

// buildVisibilityPrompt appends the brand-specific lines to the preamble.
// Defaults for region and language must already be applied.
func buildVisibilityPrompt(brandName, brandURL, region, language, topics string) string {
	urlHint := brandURL
	if urlHint == "" {
		urlHint = "unknown"
	}
	topicsHint := topics
	if topicsHint == "" {
		topicsHint = "[not specified]"
	}
	return visibilityPromptPreamble + fmt.Sprintf(
		"\nBrand name: %s\n"+
			"User-supplied brand URL (may be empty or approximate): %s\n"+
			"Target region: %s\n"+
			"Primary language: %s\n"+
			"User-provided initial topics / categories (one per line, optional):\n%s\n\n"+
			"Now generate the JSON object matching the schema.",
		brandName, urlHint, region, language, topicsHint)
}

// VisibilityAnalyzer estimates how visible a brand is in AI assistant
// answers, using Gemini as the analytics engine. The numbers are AI
// estimations grounded in public web knowledge, not logs from real AI
// products.
type VisibilityAnalyzer struct {
	cfg     config.GeminiConfig
	timeout time.Duration
}

// NewVisibilityAnalyzer builds an analyzer around the given Gemini config.
func NewVisibilityAnalyzer(cfg config.GeminiConfig) *VisibilityAnalyzer {
	return &VisibilityAnalyzer{cfg: cfg, timeout: visibilityTimeout}
}

// AnalyzeBrandVisibility runs the full pipeline for one brand: build the
// analytics prompt, fetch the structured snapshot, validate it, and wrap
// it with the brand context and time window. Region defaults to "Global"
// and language to "English" when blank. Every failure comes back as a
// *VisibilityAnalysisError.
func (s *VisibilityAnalyzer) AnalyzeBrandVisibility(ctx context.Context, brandName, brandURL, region, language, initialTopics string) (*models.AnalysisResult, error) {
	topicsHint := strings.TrimSpace(initialTopics)
	regionHint := region
	if regionHint == "" {
		regionHint = "Global"
	}
	languageHint := language
	if languageHint == "" {
		languageHint = "English"
	}

	prompt := buildVisibilityPrompt(brandName, brandURL, regionHint, languageHint, topicsHint)

	metrics, err := s.fetchVisibilityMetrics(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if err := metrics.Validate(brandName); err != nil {
		return nil, &VisibilityAnalysisError{
			Kind:  KindInvalid,
			Cause: fmt.Sprintf("Gemini visibility response failed validation: %v", err),
		}
	}

	return &models.AnalysisResult{
		Brand: models.BrandContext{
			Name:          brandName,
			URL:           brandURL,
			Region:        regionHint,
			Language:      languageHint,
			InitialTopics: topicsHint,
		},
		TimeWindow: analysisTimeWindow,
		Metrics:    *metrics,
	}, nil
}

// fetchVisibilityMetrics runs the low-level Gemini call for a prepared
// prompt and decodes the structured snapshot.
func (s *VisibilityAnalyzer) fetchVisibilityMetrics(ctx context.Context, prompt string) (*models.VisibilityMetrics, error) {
	raw, callErr := callGemini(ctx, s.cfg, prompt, visibilitySchema, s.timeout)
	if callErr != nil {
		return nil, s.wrapCallError(callErr)
	}

	var metrics models.VisibilityMetrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		return nil, &VisibilityAnalysisError{
			Kind:  KindParse,
			Cause: fmt.Sprintf("Failed to parse visibility JSON structure from Gemini: %v.", err),
		}
	}
	return &metrics, nil
}

func (s *VisibilityAnalyzer) wrapCallError(ce *geminiCallError) *VisibilityAnalysisError {
	switch ce.kind {
	case KindConfig:
		return &VisibilityAnalysisError{Kind: KindConfig, Cause: "GEMINI_API_KEY not configured for visibility analysis."}
	case KindProvider:
		return &VisibilityAnalysisError{
			Kind:  KindProvider,
			Cause: fmt.Sprintf("Gemini visibility API returned %d: %s", ce.status, ce.detail),
		}
	case KindParse:
		return &VisibilityAnalysisError{
			Kind:  KindParse,
			Cause: fmt.Sprintf("Failed to parse visibility JSON structure from Gemini: %s.", ce.detail),
		}
	default:
		return &VisibilityAnalysisError{
			Kind:  KindNetwork,
			Cause: fmt.Sprintf("Network error contacting Gemini for visibility: %s", ce.detail),
		}
	}
}
