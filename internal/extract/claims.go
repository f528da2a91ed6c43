package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/skeptic/internal/model"
)

// claimDuplicateThreshold is the word-set Jaccard similarity at which two
// claims from the same source are considered the same claim
const claimDuplicateThreshold = 0.7

var (
	sentenceSplit   = regexp.MustCompile(`[.!?]+`)
	digitPattern    = regexp.MustCompile(`\d+`)
	properNounPair  = regexp.MustCompile(`[A-Z][a-z]+ [A-Z][a-z]+`)
	leadingFiller   = regexp.MustCompile(`^(However,|But,|And,|So,|Then,)\s*`)
	nonWordChars    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	moderateGeneric = regexp.MustCompile(`according to|data|study|research`)
	weakGeneric     = regexp.MustCompile(`said|stated|announced`)
)

// ClaimExtractor finds factual claims in article text and grades their support
type ClaimExtractor struct {
	factualIndicators  []*regexp.Regexp
	definitivePatterns []*regexp.Regexp
	verifiablePatterns []*regexp.Regexp

	strongEvidence   []string
	moderateEvidence []string
	weakEvidence     []string
	noEvidence       []string
	nonVerifiable    []string
	uncertainty      []string
}

// NewClaimExtractor creates a new claim extractor
func NewClaimExtractor() *ClaimExtractor {
	return &ClaimExtractor{
		factualIndicators: compileAll(
			`according to \w+`,
			`data shows?`,
			`statistics reveal`,
			`study found`,
			`research indicates`,
			`report states`,
			`officials? said`,
			`spokesperson said`,
			`\d+% of`,
			`\$[\d,]+ (?:million|billion)`,
			`\d+ people`,
			`increased by \d+`,
			`decreased by \d+`,
		),
		definitivePatterns: compileAll(
			`will \w+`,
			`has \w+ed`,
			`have \w+ed`,
			`is \w+ing`,
			`are \w+ing`,
		),
		verifiablePatterns: compileAll(
			`(?i)\d+%`,
			`(?i)\$[\d,]+`,
			`(?i)\d+ (?:people|cases|instances)`,
			`(?i)(?:january|february|march|april|may|june|july|august|september|october|november|december)`,
			`(?i)\d{4}`,
			`(?i)government data`,
			`(?i)official statistics`,
			`(?i)public records`,
		),
		strongEvidence: []string{
			"peer-reviewed", "published study", "government data",
			"official statistics", "verified by", "confirmed by",
			"documented evidence", "multiple sources",
		},
		moderateEvidence: []string{
			"study shows", "research indicates", "data suggests",
			"report found", "analysis shows", "experts say",
		},
		weakEvidence: []string{
			"sources say", "allegedly", "reportedly", "claims",
			"appears to", "seems to", "suggests that",
		},
		noEvidence: []string{
			"believes", "thinks", "feels", "opinion", "speculation",
			"rumors", "unconfirmed", "without evidence",
		},
		nonVerifiable: []string{
			"believes", "thinks", "feels", "opinion", "speculation",
			"rumors", "allegedly", "reportedly", "sources say",
		},
		uncertainty: []string{"might", "could", "may", "possibly", "perhaps", "allegedly"},
	}
}

// Extract returns up to model.MaxClaims ranked claims from title and content
func (e *ClaimExtractor) Extract(content, title string) []model.Claim {
	fullText := content
	if title != "" {
		fullText = title + "\n" + content
	}

	var claims []model.Claim
	for _, sentence := range SplitSentences(fullText) {
		if !e.isFactual(sentence) {
			continue
		}
		claim := e.analyze(sentence)
		if len(strings.TrimSpace(claim.Claim)) > 20 {
			claims = append(claims, claim)
		}
	}

	claims = dedupeClaims(claims)
	rankClaims(claims)

	if len(claims) > model.MaxClaims {
		claims = claims[:model.MaxClaims]
	}
	return claims
}

// SplitSentences splits text on runs of sentence terminators, dropping
// fragments of 20 chars or fewer and fragments that start with a URL
func SplitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceSplit.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) <= 20 || strings.HasPrefix(s, "http") || strings.HasPrefix(s, "www") {
			continue
		}
		sentences = append(sentences, s)
	}
	return sentences
}

// isFactual checks whether a sentence asserts something checkable
func (e *ClaimExtractor) isFactual(sentence string) bool {
	lower := strings.ToLower(sentence)

	if matchesAny(lower, e.factualIndicators) {
		return true
	}

	if digitPattern.MatchString(sentence) && len(sentence) > 30 {
		return true
	}

	return matchesAny(lower, e.definitivePatterns)
}

// analyze grades a single sentence
func (e *ClaimExtractor) analyze(sentence string) model.Claim {
	lower := strings.ToLower(sentence)

	quality := e.evidenceQuality(lower)
	verifiable := e.verifiable(sentence)

	return model.Claim{
		Claim:           strings.TrimSpace(sentence),
		EvidenceQuality: quality,
		Verifiable:      verifiable,
		Context:         claimContext(sentence),
		Confidence:      e.confidence(sentence, quality, verifiable),
	}
}

// evidenceQuality returns the first matching tier, strongest first
func (e *ClaimExtractor) evidenceQuality(lower string) model.EvidenceQuality {
	switch {
	case containsAnyPhrase(lower, e.strongEvidence):
		return model.EvidenceStrong
	case containsAnyPhrase(lower, e.moderateEvidence):
		return model.EvidenceModerate
	case containsAnyPhrase(lower, e.weakEvidence):
		return model.EvidenceWeak
	case containsAnyPhrase(lower, e.noEvidence):
		return model.EvidenceNone
	case moderateGeneric.MatchString(lower):
		return model.EvidenceModerate
	case weakGeneric.MatchString(lower):
		return model.EvidenceWeak
	default:
		return model.EvidenceNone
	}
}

// verifiable checks numeric, date and official-record cues. Hedged or
// opinion phrasing overrides to false; otherwise a proper-noun pair makes
// the claim checkable.
func (e *ClaimExtractor) verifiable(sentence string) bool {
	if matchesAny(sentence, e.verifiablePatterns) {
		return true
	}

	if containsAnyPhrase(strings.ToLower(sentence), e.nonVerifiable) {
		return false
	}

	return properNounPair.MatchString(sentence)
}

var evidenceBonus = map[model.EvidenceQuality]float64{
	model.EvidenceStrong:   0.4,
	model.EvidenceModerate: 0.25,
	model.EvidenceWeak:     0.1,
	model.EvidenceNone:     0.0,
}

func (e *ClaimExtractor) confidence(sentence string, quality model.EvidenceQuality, verifiable bool) float64 {
	score := 0.3 + evidenceBonus[quality]

	if verifiable {
		score += 0.2
	}
	if digitPattern.MatchString(sentence) {
		score += 0.1
	}
	if properNounPair.MatchString(sentence) {
		score += 0.05
	}
	if containsAnyPhrase(strings.ToLower(sentence), e.uncertainty) {
		score -= 0.1
	}

	return model.Clamp01(score)
}

func claimContext(sentence string) string {
	context := leadingFiller.ReplaceAllString(strings.TrimSpace(sentence), "")
	if len(context) > 200 {
		context = truncateUTF8(context, 197) + "..."
	}
	return context
}

// dedupeClaims keeps the first of any group of near-identical claims
func dedupeClaims(claims []model.Claim) []model.Claim {
	var unique []model.Claim
	var seen []map[string]struct{}

	for _, claim := range claims {
		words := wordSet(normalizeClaim(claim.Claim))

		duplicate := false
		for _, s := range seen {
			if jaccard(words, s) >= claimDuplicateThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			unique = append(unique, claim)
			seen = append(seen, words)
		}
	}

	return unique
}

// rankClaims sorts by confidence plus evidence, verifiability, numeric and
// length bonuses, highest first. Ties keep input order.
func rankClaims(claims []model.Claim) {
	score := func(c model.Claim) float64 {
		s := c.Confidence
		switch c.EvidenceQuality {
		case model.EvidenceStrong:
			s += 0.3
		case model.EvidenceModerate:
			s += 0.1
		}
		if c.Verifiable {
			s += 0.2
		}
		if digitPattern.MatchString(c.Claim) {
			s += 0.1
		}
		if len(c.Claim) > 100 {
			s += 0.05
		}
		return s
	}

	sort.SliceStable(claims, func(i, j int) bool {
		return score(claims[i]) > score(claims[j])
	})
}

func normalizeClaim(text string) string {
	text = nonWordChars.ReplaceAllString(strings.ToLower(text), "")
	return strings.Join(strings.Fields(text), " ")
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		set[w] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func containsAnyPhrase(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
