package models

// --- Brand Identity ---

// BrandProfile is the enriched identity record for a brand. It is built
// from user input and overwritten by AI enrichment when that succeeds.
type BrandProfile struct {
	BrandName        string   `json:"brand_name"`
	BrandDescription string   `json:"brand_description"`
	BrandURL         string   `json:"brand_url"`
	Region           string   `json:"region"`
	Language         string   `json:"language"`
	InitialTopics    []string `json:"initial_topics"`
}

// --- API Request/Response Structs ---

// LookupBrandRequest defines the body for the brand lookup endpoint.
type LookupBrandRequest struct {
	BrandName        string `json:"brand_name"`
	BrandDescription string `json:"brand_description"`
}

// LookupBrandResponse is the lookup payload sent back to the frontend.
// InitialTopics is newline-joined so it can be dropped straight into a
// textarea. AIWarning is only set when enrichment failed and the response
// falls back to the user's own input.
type LookupBrandResponse struct {
	BrandName        string `json:"brand_name"`
	BrandDescription string `json:"brand_description"`
	BrandURL         string `json:"brand_url"`
	Region           string `json:"region"`
	Language         string `json:"language"`
	InitialTopics    string `json:"initial_topics"`
	AIWarning        string `json:"ai_warning,omitempty"`
}

// BrandAnalysisRequest defines the body for the brand analysis endpoint.
// InitialTopics arrives as one topic per line, matching what the lookup
// response put into the form.
type BrandAnalysisRequest struct {
	BrandName     string `json:"brand_name"`
	BrandURL      string `json:"brand_url"`
	Region        string `json:"region"`
	Language      string `json:"language"`
	InitialTopics string `json:"initial_topics"`
}
