package models

import (
	"fmt"
	"math"
	"strings"
)

// --- Visibility Metrics ---

// CompetitorShare pairs a competitor brand with its share-of-voice percentage.
type CompetitorShare struct {
	Name     string  `json:"name"`
	SharePct float64 `json:"share_pct"`
}

// CompetitorRank pairs a brand with its average rank in AI answers.
type CompetitorRank struct {
	Name    string  `json:"name"`
	AvgRank float64 `json:"avg_rank"`
}

// TrendSeries is one named line in a trend chart. Values align with the
// labels of the enclosing Trend.
type TrendSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Trend holds the time-series section of the metrics.
type Trend struct {
	Labels     []string      `json:"labels"`
	Visibility []TrendSeries `json:"visibility"`
	AvgRank    []TrendSeries `json:"avg_rank"`
}

// DonutSlice is one slice of the brand-vs-competitors donut chart.
type DonutSlice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// TopPrompt is one suggested high-impact prompt.
type TopPrompt struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Impact string `json:"impact"`
}

// PromptStats reports how many prompts the analysis considered.
type PromptStats struct {
	Used  int `json:"used"`
	Total int `json:"total"`
}

// VisibilityMetrics is the AI-estimated analytics snapshot for one brand.
// It is re-derived on every request and never cached.
type VisibilityMetrics struct {
	BrandSharePct      float64           `json:"brand_share_pct"`
	CompetitorShares   []CompetitorShare `json:"competitor_shares"`
	AvgRank            float64           `json:"avg_rank"`
	AvgRankCompetitors []CompetitorRank  `json:"avg_rank_competitors"`
	Citations          int               `json:"citations"`
	Trend              Trend             `json:"trend"`
	Donut              []DonutSlice      `json:"donut"`
	TopPrompts         []TopPrompt       `json:"top_prompts"`
	PromptStats        PromptStats       `json:"prompt_stats"`
}

// shareSumTolerance is how far share percentages may drift from 100 before
// validation rejects the snapshot. The provider is asked to make them sum
// to 100, with small rounding drift expected.
const shareSumTolerance = 5.0

// Validate checks the structural invariants of a metrics snapshot: share
// percentages in range and summing to about 100, trend series aligned with
// the label axis and including the brand, donut and prompt sections well
// formed. Softer asks in the provider prompt, such as competitor count or
// prompt ordering, are not checked.
func (m *VisibilityMetrics) Validate(brandName string) error {
	if m.BrandSharePct < 0 || m.BrandSharePct > 100 {
		return fmt.Errorf("brand_share_pct %.2f outside [0, 100]", m.BrandSharePct)
	}
	seen := make(map[string]bool, len(m.CompetitorShares))
	shareSum := m.BrandSharePct
	for _, c := range m.CompetitorShares {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("competitor_shares contains an entry with an empty name")
		}
		if seen[c.Name] {
			return fmt.Errorf("competitor_shares lists %q more than once", c.Name)
		}
		seen[c.Name] = true
		if c.SharePct < 0 {
			return fmt.Errorf("competitor_shares entry %q has negative share_pct %.2f", c.Name, c.SharePct)
		}
		shareSum += c.SharePct
	}
	if math.Abs(shareSum-100) > shareSumTolerance {
		return fmt.Errorf("brand and competitor shares sum to %.2f, expected about 100", shareSum)
	}
	if m.Citations < 0 {
		return fmt.Errorf("citations is negative: %d", m.Citations)
	}
	if len(m.Trend.Labels) == 0 {
		return fmt.Errorf("trend.labels is empty")
	}
	if err := validateTrendSeries("trend.visibility", m.Trend.Visibility, len(m.Trend.Labels), brandName); err != nil {
		return err
	}
	if err := validateTrendSeries("trend.avg_rank", m.Trend.AvgRank, len(m.Trend.Labels), brandName); err != nil {
		return err
	}
	if len(m.Donut) < 2 {
		return fmt.Errorf("donut needs at least a brand slice and a competitors slice, got %d", len(m.Donut))
	}
	var donutSum float64
	for _, s := range m.Donut {
		donutSum += s.Value
	}
	if math.Abs(donutSum-100) > shareSumTolerance {
		return fmt.Errorf("donut slices sum to %.2f, expected about 100", donutSum)
	}
	if len(m.TopPrompts) == 0 {
		return fmt.Errorf("top_prompts is empty")
	}
	for i, p := range m.TopPrompts {
		switch p.Impact {
		case "High", "Medium", "Low":
		default:
			return fmt.Errorf("top_prompts[%d] has impact %q, want High, Medium or Low", i, p.Impact)
		}
	}
	if m.PromptStats.Used < 0 || m.PromptStats.Total < 0 || m.PromptStats.Used > m.PromptStats.Total {
		return fmt.Errorf("prompt_stats used=%d total=%d is inconsistent", m.PromptStats.Used, m.PromptStats.Total)
	}
	return nil
}

// validateTrendSeries checks one trend collection: every series must align
// with the label axis and the analyzed brand must appear among the names.
func validateTrendSeries(field string, series []TrendSeries, labelCount int, brandName string) error {
	foundBrand := false
	for _, s := range series {
		if len(s.Values) != labelCount {
			return fmt.Errorf("%s series %q has %d values for %d labels", field, s.Name, len(s.Values), labelCount)
		}
		if strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(brandName)) {
			foundBrand = true
		}
	}
	if !foundBrand {
		return fmt.Errorf("%s has no series for brand %q", field, brandName)
	}
	return nil
}

// --- Analysis Envelope ---

// BrandContext echoes the brand configuration an analysis ran with.
type BrandContext struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Region        string `json:"region"`
	Language      string `json:"language"`
	InitialTopics string `json:"initial_topics"`
}

// AnalysisResult is the envelope returned by the analysis endpoint: brand
// context, a fixed time-window label, and the metrics snapshot.
type AnalysisResult struct {
	Brand      BrandContext      `json:"brand"`
	TimeWindow string            `json:"time_window"`
	Metrics    VisibilityMetrics `json:"metrics"`
}
