package reconcile

import "github.com/ppiankov/skeptic/internal/model"

// Heuristic holds the locally computed findings for one article
type Heuristic struct {
	Claims   []model.Claim
	Language model.LanguageAnalysis
	RedFlags []model.RedFlag
}

// Merged is the reconciled view. Verification questions are not part of
// it: they are generated from the merged claims.
type Merged struct {
	Claims             []model.Claim
	Language           model.LanguageAnalysis
	RedFlags           []model.RedFlag
	BiasConfidence     float64
	OverallCredibility float64
	FromAI             bool
}

// Reconcile merges heuristic findings with an AI analysis. A nil analysis
// (provider disabled) keeps the heuristic tone and leaves the scores to
// the caller; FromAI reports which case applied.
func Reconcile(h Heuristic, ai *model.AIAnalysis) Merged {
	if ai == nil {
		return Merged{
			Claims:   MergeClaims(h.Claims, nil),
			Language: MergeLanguage(model.LanguageAnalysis{}, h.Language),
			RedFlags: MergeRedFlags(h.RedFlags, nil),
		}
	}

	return Merged{
		Claims:             MergeClaims(h.Claims, ai.Claims),
		Language:           MergeLanguage(h.Language, ai.LanguageAnalysis),
		RedFlags:           MergeRedFlags(h.RedFlags, ai.RedFlags),
		BiasConfidence:     model.Clamp01(ai.BiasConfidence),
		OverallCredibility: model.Clamp01(ai.OverallCredibility),
		FromAI:             true,
	}
}
