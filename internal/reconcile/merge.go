// Package reconcile combines the heuristic and AI views of one article.
// Every function is pure: inputs are never modified and nothing fails.
// Callers pass heuristic results first; on a collision the earlier item wins.
package reconcile

import (
	"sort"
	"strings"

	"github.com/ppiankov/skeptic/internal/model"
)

// ClaimSimilarityThreshold is the word-set Jaccard similarity above which
// a claim duplicates one already kept
const ClaimSimilarityThreshold = 0.6

// MergeClaims keeps each claim unless it is too similar to an earlier one,
// then sorts by confidence (stable) and caps at model.MaxClaims
func MergeClaims(heuristic, ai []model.Claim) []model.Claim {
	merged := make([]model.Claim, 0, len(heuristic)+len(ai))
	var kept []map[string]struct{}

	for _, claim := range concat(heuristic, ai) {
		words := wordSet(claim.Claim)

		duplicate := false
		for _, seen := range kept {
			if jaccardSets(words, seen) > ClaimSimilarityThreshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		merged = append(merged, claim)
		kept = append(kept, words)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})

	if len(merged) > model.MaxClaims {
		merged = merged[:model.MaxClaims]
	}
	return merged
}

// MergeRedFlags drops flags whose normalized description was already seen,
// sorts by severity then confidence and caps at model.MaxRedFlags
func MergeRedFlags(heuristic, ai []model.RedFlag) []model.RedFlag {
	merged := make([]model.RedFlag, 0, len(heuristic)+len(ai))
	seen := make(map[string]bool)

	for _, flag := range concat(heuristic, ai) {
		key := normalize(flag.Description)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, flag)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		ri, rj := merged[i].Severity.Rank(), merged[j].Severity.Rank()
		if ri != rj {
			return ri > rj
		}
		return merged[i].Confidence > merged[j].Confidence
	})

	if len(merged) > model.MaxRedFlags {
		merged = merged[:model.MaxRedFlags]
	}
	return merged
}

// MergeLanguage takes the AI tone and appends heuristic-only items to each
// AI list. Membership is exact and case-sensitive.
func MergeLanguage(heuristic, ai model.LanguageAnalysis) model.LanguageAnalysis {
	return model.LanguageAnalysis{
		Tone:                 ai.Tone,
		BiasIndicators:       mergeList(ai.BiasIndicators, heuristic.BiasIndicators, model.MaxBiasIndicators),
		LoadedLanguage:       mergeList(ai.LoadedLanguage, heuristic.LoadedLanguage, model.MaxLoadedLanguage),
		EmotionalWords:       mergeList(ai.EmotionalWords, heuristic.EmotionalWords, model.MaxEmotionalWords),
		PersuasiveTechniques: mergeList(ai.PersuasiveTechniques, heuristic.PersuasiveTechniques, model.MaxPersuasiveTechniques),
	}
}

// Jaccard returns the word-set similarity of two texts after lowercasing
// and whitespace normalization. Two empty texts score 0.
func Jaccard(a, b string) float64 {
	return jaccardSets(wordSet(a), wordSet(b))
}

func jaccardSets(a, b map[string]struct{}) float64 {
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func mergeList(primary, secondary []string, limit int) []string {
	merged := make([]string, 0, len(primary)+len(secondary))
	present := make(map[string]bool, len(primary)+len(secondary))

	for _, item := range primary {
		merged = append(merged, item)
		present[item] = true
	}
	for _, item := range secondary {
		if present[item] {
			continue
		}
		present[item] = true
		merged = append(merged, item)
	}

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func concat[T any](first, second []T) []T {
	out := make([]T, 0, len(first)+len(second))
	out = append(out, first...)
	return append(out, second...)
}
