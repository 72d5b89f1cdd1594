package services

// ErrorKind tags which stage of an AI call failed.
type ErrorKind string

const (
	KindConfig   ErrorKind = "config"
	KindNetwork  ErrorKind = "network"
	KindProvider ErrorKind = "provider"
	KindParse    ErrorKind = "parse"
	KindInvalid  ErrorKind = "invalid"
)

// BrandEnrichmentError reports a failed brand enrichment. The lookup flow
// treats it as soft: the caller falls back to user input and surfaces the
// cause as a warning.
type BrandEnrichmentError struct {
	Kind  ErrorKind
	Cause string
}

func (e *BrandEnrichmentError) Error() string {
	return e.Cause
}

// VisibilityAnalysisError reports a failed visibility analysis. The
// analysis flow treats it as fatal and returns it to the caller.
type VisibilityAnalysisError struct {
	Kind  ErrorKind
	Cause string
}

func (e *VisibilityAnalysisError) Error() string {
	return e.Cause
}
