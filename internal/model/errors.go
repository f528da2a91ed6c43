package model

import "errors"

// Error kinds surfaced by the analysis pipeline. Components wrap these with
// fmt.Errorf("...: %w") so callers can match them with errors.Is.
var (
	// ErrInvalidInput is returned for malformed or non-http(s) URLs
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionFailed is returned when every extraction strategy failed
	ErrExtractionFailed = errors.New("content extraction failed")

	// ErrAnalysisProvider is returned when the AI provider call fails or
	// never yields a parseable response
	ErrAnalysisProvider = errors.New("analysis provider failed")

	// ErrEnrichmentFailed marks a metadata enrichment failure. It is logged,
	// never propagated.
	ErrEnrichmentFailed = errors.New("metadata enrichment failed")
)
