package score

import "github.com/ppiankov/skeptic/internal/model"

// Level labels for credibility and bias
const (
	LevelHigh     = "High"
	LevelModerate = "Moderate"
	LevelLow      = "Low"
)

// Recommendations shown in the report summary
const (
	RecommendCaution = "Exercise caution when sharing or citing this article"
	RecommendVerify  = "Article appears relatively credible but verify key claims independently"
)

// Assessment is the reader-facing summary of a result
type Assessment struct {
	Credibility       float64
	CredibilityLabel  string
	Bias              float64
	BiasLabel         string
	StrongClaims      int
	TotalClaims       int
	HighSeverityFlags int
	Recommendation    string
}

// CredibilityLabel maps credibility to High (>=0.8), Moderate (>=0.6) or Low
func CredibilityLabel(credibility float64) string {
	switch {
	case credibility >= 0.8:
		return LevelHigh
	case credibility >= 0.6:
		return LevelModerate
	default:
		return LevelLow
	}
}

// BiasLabel maps bias confidence to Low (<=0.3), Moderate (<=0.6) or High
func BiasLabel(bias float64) string {
	switch {
	case bias <= 0.3:
		return LevelLow
	case bias <= 0.6:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// Recommendation advises caution below 0.6 credibility or above 0.6 bias
func Recommendation(credibility, bias float64) string {
	if credibility < 0.6 || bias > 0.6 {
		return RecommendCaution
	}
	return RecommendVerify
}

// Assess summarizes a reconciled result
func (s *Scorer) Assess(result *model.AnalysisResult) Assessment {
	a := Assessment{
		Credibility:      result.OverallCredibility,
		CredibilityLabel: CredibilityLabel(result.OverallCredibility),
		Bias:             result.BiasConfidence,
		BiasLabel:        BiasLabel(result.BiasConfidence),
		TotalClaims:      len(result.CoreClaims),
		Recommendation:   Recommendation(result.OverallCredibility, result.BiasConfidence),
	}

	for _, c := range result.CoreClaims {
		if c.EvidenceQuality == model.EvidenceStrong {
			a.StrongClaims++
		}
	}
	for _, f := range result.RedFlags {
		if f.Severity == model.SeverityHigh {
			a.HighSeverityFlags++
		}
	}
	return a
}
