package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"app/config"
	"app/models"
)

// validVisibilitySnapshot builds a metrics payload that passes validation
// for the given brand.
func validVisibilitySnapshot(brand string) models.VisibilityMetrics {
	return models.VisibilityMetrics{
		BrandSharePct: 34.5,
		CompetitorShares: []models.CompetitorShare{
			{Name: "Globex", SharePct: 40.5},
			{Name: "Initech", SharePct: 25},
		},
		AvgRank: 2.3,
		AvgRankCompetitors: []models.CompetitorRank{
			{Name: brand, AvgRank: 2.3},
			{Name: "Globex", AvgRank: 1.8},
		},
		Citations: 120,
		Trend: models.Trend{
			Labels: []string{"Day 1", "Day 10", "Day 20", "Day 30"},
			Visibility: []models.TrendSeries{
				{Name: brand, Values: []float64{30, 32, 35, 34.5}},
				{Name: "Globex", Values: []float64{42, 41, 40, 40.5}},
			},
			AvgRank: []models.TrendSeries{
				{Name: brand, Values: []float64{2.6, 2.5, 2.4, 2.3}},
				{Name: "Globex", Values: []float64{1.9, 1.8, 1.8, 1.8}},
			},
		},
		Donut: []models.DonutSlice{
			{Label: brand, Value: 34.5},
			{Label: "Competitors", Value: 65.5},
		},
		TopPrompts: []models.TopPrompt{
			{Prompt: "best widget brands", Model: "gpt-4o", Impact: "High"},
			{Prompt: "widgets like " + brand, Model: "gemini-2.5-flash", Impact: "High"},
			{Prompt: "cheap widgets", Model: "claude-3-5-sonnet", Impact: "Medium"},
			{Prompt: "widget reviews", Model: "gpt-4o-mini", Impact: "Medium"},
			{Prompt: "widget accessories", Model: "llama-3-70b", Impact: "Low"},
		},
		PromptStats: models.PromptStats{Used: 48, Total: 120},
	}
}

func snapshotJSON(t *testing.T, m models.VisibilityMetrics) string {
	t.Helper()
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal snapshot: %v", err)
	}
	return string(b)
}

func asAnalysisError(t *testing.T, err error) *VisibilityAnalysisError {
	t.Helper()
	var e *VisibilityAnalysisError
	if !errors.As(err, &e) {
		t.Fatalf("expected *VisibilityAnalysisError, got %T: %v", err, err)
	}
	return e
}

func TestAnalyzeBrandVisibilitySuccess(t *testing.T) {
	rec := &requestRecorder{}
	snapshot := validVisibilitySnapshot("Acme")
	cfg := newGeminiStub(t, rec.record(serveJSON(textResponse(snapshotJSON(t, snapshot)))))

	result, err := NewVisibilityAnalyzer(cfg).AnalyzeBrandVisibility(
		context.Background(), "Acme", "", "", "", "")
	if err != nil {
		t.Fatalf("AnalyzeBrandVisibility failed: %v", err)
	}

	if result.Brand.Name != "Acme" {
		t.Fatalf("brand name = %q", result.Brand.Name)
	}
	if result.Brand.Region != "Global" || result.Brand.Language != "English" {
		t.Fatalf("defaults not applied: region=%q language=%q", result.Brand.Region, result.Brand.Language)
	}
	if result.TimeWindow != "last_30_days" {
		t.Fatalf("time window = %q", result.TimeWindow)
	}
	if result.Metrics.BrandSharePct != 34.5 {
		t.Fatalf("brand share = %v", result.Metrics.BrandSharePct)
	}
	if len(result.Metrics.TopPrompts) != 5 {
		t.Fatalf("top prompts = %d", len(result.Metrics.TopPrompts))
	}

	prompt := rec.prompt(t)
	for _, want := range []string{
		"ANALYTICS SNAPSHOT",
		"Brand name: Acme",
		"User-supplied brand URL (may be empty or approximate): unknown",
		"Target region: Global",
		"Primary language: English",
		"[not specified]",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt is missing %q", want)
		}
	}

	body := rec.rawBody()
	if !strings.Contains(body, `"responseMimeType":"application/json"`) {
		t.Fatalf("request did not ask for JSON output: %s", body)
	}
	if !strings.Contains(body, "brand_share_pct") || !strings.Contains(body, "prompt_stats") {
		t.Fatalf("request did not carry the visibility schema: %s", body)
	}
}

func TestAnalyzeBrandVisibilityEchoesBrandConfig(t *testing.T) {
	rec := &requestRecorder{}
	snapshot := validVisibilitySnapshot("Acme")
	cfg := newGeminiStub(t, rec.record(serveJSON(textResponse(snapshotJSON(t, snapshot)))))

	result, err := NewVisibilityAnalyzer(cfg).AnalyzeBrandVisibility(
		context.Background(), "Acme", "https://acme.example", "India", "Hindi", "widgets\ngadgets\n")
	if err != nil {
		t.Fatalf("AnalyzeBrandVisibility failed: %v", err)
	}

	want := models.BrandContext{
		Name:          "Acme",
		URL:           "https://acme.example",
		Region:        "India",
		Language:      "Hindi",
		InitialTopics: "widgets\ngadgets",
	}
	if result.Brand != want {
		t.Fatalf("brand context = %+v, want %+v", result.Brand, want)
	}

	prompt := rec.prompt(t)
	for _, line := range []string{
		"User-supplied brand URL (may be empty or approximate): https://acme.example",
		"Target region: India",
		"Primary language: Hindi",
		"widgets\ngadgets",
	} {
		if !strings.Contains(prompt, line) {
			t.Fatalf("prompt is missing %q", line)
		}
	}
}

func TestAnalyzeBrandVisibilityMissingAPIKey(t *testing.T) {
	cfg := config.GeminiConfig{}
	_, err := NewVisibilityAnalyzer(cfg).AnalyzeBrandVisibility(
		context.Background(), "Acme", "", "", "", "")
	e := asAnalysisError(t, err)
	if e.Kind != KindConfig {
		t.Fatalf("kind = %q, want %q", e.Kind, KindConfig)
	}
	if e.Error() != "GEMINI_API_KEY not configured for visibility analysis." {
		t.Fatalf("message = %q", e.Error())
	}
}

func TestAnalyzeBrandVisibilityProviderError(t *testing.T) {
	cfg := newGeminiStub(t, serveError(500, "internal error"))

	_, err := NewVisibilityAnalyzer(cfg).AnalyzeBrandVisibility(
		context.Background(), "Acme", "", "", "", "")
	e := asAnalysisError(t, err)
	if e.Kind != KindProvider {
		t.Fatalf("kind = %q, want %q", e.Kind, KindProvider)
	}
	if !strings.Contains(e.Error(), "Gemini visibility API returned 500") || !strings.Contains(e.Error(), "internal error") {
		t.Fatalf("message = %q", e.Error())
	}
}

func TestAnalyzeBrandVisibilityDoesNotRetryProviderErrors(t *testing.T) {
	// A 503 must come back as the provider's own error after a single
	// request, not be retried until the deadline.
	rec := &requestRecorder{}
	cfg := newGeminiStub(t, rec.record(serveError(503, "model overloaded")))

	_, err := NewVisibilityAnalyzer(cfg).AnalyzeBrandVisibility(
		context.Background(), "Acme", "", "", "", "")
	e := asAnalysisError(t, err)
	if e.Kind != KindProvider {
		t.Fatalf("kind = %q, want %q", e.Kind, KindProvider)
	}
	if !strings.Contains(e.Error(), "Gemini visibility API returned 503") || !strings.Contains(e.Error(), "model overloaded") {
		t.Fatalf("message = %q", e.Error())
	}
	if got := rec.callCount(); got != 1 {
		t.Fatalf("made %d calls to Gemini, want exactly 1", got)
	}
}

func TestAnalyzeBrandVisibilityTimeout(t *testing.T) {
	snapshot := validVisibilitySnapshot("Acme")
	cfg := newGeminiStub(t, serveSlow(300*time.Millisecond, textResponse(snapshotJSON(t, snapshot))))

	analyzer := NewVisibilityAnalyzer(cfg)
	analyzer.timeout = 50 * time.Millisecond

	_, err := analyzer.AnalyzeBrandVisibility(context.Background(), "Acme", "", "", "", "")
	e := asAnalysisError(t, err)
	if e.Kind != KindNetwork {
		t.Fatalf("kind = %q, want %q", e.Kind, KindNetwork)
	}
	if !strings.HasPrefix(e.Error(), "Network error contacting Gemini for visibility:") {
		t.Fatalf("message = %q", e.Error())
	}
}

func TestAnalyzeBrandVisibilityBadInnerJSON(t *testing.T) {
	cfg := newGeminiStub(t, serveJSON(textResponse("{ broken")))

	_, err := NewVisibilityAnalyzer(cfg).AnalyzeBrandVisibility(
		context.Background(), "Acme", "", "", "", "")
	e := asAnalysisError(t, err)
	if e.Kind != KindParse {
		t.Fatalf("kind = %q, want %q", e.Kind, KindParse)
	}
	if !strings.HasPrefix(e.Error(), "Failed to parse visibility JSON structure from Gemini:") {
		t.Fatalf("message = %q", e.Error())
	}
}

func TestAnalyzeBrandVisibilityEmptyCandidates(t *testing.T) {
	cfg := newGeminiStub(t, serveJSON(`{"candidates":[]}`))

	_, err := NewVisibilityAnalyzer(cfg).AnalyzeBrandVisibility(
		context.Background(), "Acme", "", "", "", "")
	e := asAnalysisError(t, err)
	if e.Kind != KindParse {
		t.Fatalf("kind = %q, want %q", e.Kind, KindParse)
	}
	if !strings.Contains(e.Error(), "no content received from Gemini") {
		t.Fatalf("message = %q", e.Error())
	}
}

func TestAnalyzeBrandVisibilityRejectsInconsistentSnapshot(t *testing.T) {
	snapshot := validVisibilitySnapshot("Acme")
	snapshot.CompetitorShares[0].SharePct = 5 // shares no longer sum to ~100
	cfg := newGeminiStub(t, serveJSON(textResponse(snapshotJSON(t, snapshot))))

	_, err := NewVisibilityAnalyzer(cfg).AnalyzeBrandVisibility(
		context.Background(), "Acme", "", "", "", "")
	e := asAnalysisError(t, err)
	if e.Kind != KindInvalid {
		t.Fatalf("kind = %q, want %q", e.Kind, KindInvalid)
	}
	if !strings.Contains(e.Error(), "Gemini visibility response failed validation") {
		t.Fatalf("message = %q", e.Error())
	}
}
