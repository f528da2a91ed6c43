package analysis

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/skeptic/internal/model"
)

const (
	maxAlternatives   = 4
	maxMissingContext = 5
	maxRebuttals      = 5
	claimsConsidered  = 3
)

// framework is one ideological axis with its topic keywords
type framework struct {
	name     string
	keywords []string
}

// frameworks are scored in this order; the first maximum wins ties
var frameworks = []framework{
	{"economic", []string{"economy", "jobs", "business", "market", "trade"}},
	{"political", []string{"government", "policy", "politics", "election", "vote"}},
	{"social", []string{"social", "community", "rights", "equality", "justice"}},
	{"environmental", []string{"environment", "climate", "energy", "pollution", "green"}},
}

// opposingTemplates are keyed framework_direction
var opposingTemplates = map[string]string{
	"economic_pro-business": "From a worker advocacy perspective, this article may overemphasize business interests while downplaying worker concerns, environmental costs, and social inequality. " +
		"Alternative viewpoints might focus on living wages, worker protections, and sustainable business practices.",
	"economic_pro-regulation": "From a free-market perspective, this article may overstate the benefits of regulation while ignoring market efficiency, innovation incentives, and economic growth potential. " +
		"Critics might argue for reduced government intervention and market-based solutions.",
	"political_conservative": "From a progressive perspective, this article may reflect traditional viewpoints that resist necessary social change. " +
		"Alternative views might emphasize the need for reform, social justice, and addressing systemic inequalities.",
	"political_liberal": "From a conservative perspective, this article may promote rapid changes without considering traditional values, established institutions, and potential unintended consequences. " +
		"Critics might advocate for measured, proven approaches.",
	"environmental_pro-environment": "From an industry perspective, this article may overstate environmental risks while underestimating economic impacts on jobs, communities, and global competitiveness. " +
		"Critics might emphasize technological solutions and balanced approaches.",
	"environmental_pro-industry": "From an environmental perspective, this article may prioritize short-term economic gains over long-term sustainability and public health. " +
		"Critics might emphasize climate urgency and the true cost of environmental damage.",
}

const genericOpposingView = "Alternative perspectives might challenge the assumptions and conclusions presented in this article."

const (
	altEconomic    = "Economic trends may be influenced by multiple factors including global markets, technological changes, and cyclical patterns not addressed in the original analysis."
	altStatistical = "Statistical increases/decreases may reflect measurement changes, seasonal variations, or different baseline comparisons rather than fundamental trends."
	altPolicy      = "Policy impacts may vary significantly across different demographics, regions, or timeframes, with both intended and unintended consequences."
	altSocial      = "Social phenomena often have complex, multifaceted causes that may not be fully captured in a single narrative or study."
)

var subjectKeywords = map[string]bool{
	"economy": true, "government": true, "policy": true, "people": true, "study": true, "report": true,
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// CounterNarrativeGenerator builds opposing viewpoints from content cues and claims
type CounterNarrativeGenerator struct{}

// NewCounterNarrativeGenerator creates a counter-narrative generator
func NewCounterNarrativeGenerator() *CounterNarrativeGenerator {
	return &CounterNarrativeGenerator{}
}

// Generate produces a counter-narrative for the article. It returns nil only
// when no opposing viewpoint text could be produced.
func (g *CounterNarrativeGenerator) Generate(content string, claims []model.Claim) *model.CounterNarrative {
	lower := strings.ToLower(content)

	name := dominantFramework(lower)
	key := name + "_" + biasDirection(lower, name)

	viewpoint, ok := opposingTemplates[key]
	if !ok {
		viewpoint = genericOpposingView
	}
	if viewpoint == "" {
		return nil
	}

	top := claims
	if len(top) > claimsConsidered {
		top = top[:claimsConsidered]
	}

	return &model.CounterNarrative{
		OpposingViewpoint:       viewpoint,
		AlternativeExplanations: alternativeExplanations(top),
		MissingContext:          missingContext(lower),
		PotentialRebuttals:      rebuttals(top),
	}
}

// dominantFramework returns the framework with the most keyword occurrences
func dominantFramework(lower string) string {
	best, bestScore := frameworks[0].name, -1
	for _, f := range frameworks {
		score := 0
		for _, kw := range f.keywords {
			score += strings.Count(lower, kw)
		}
		if score > bestScore {
			best, bestScore = f.name, score
		}
	}
	return best
}

// biasDirection decides which side of the framework the article leans to
func biasDirection(lower, name string) string {
	switch name {
	case "economic":
		business := countPresent(lower, []string{"free market", "competition", "business", "profit", "growth"})
		regulation := countPresent(lower, []string{"regulation", "worker rights", "inequality", "wealth gap"})
		if business > regulation {
			return "pro-business"
		}
		return "pro-regulation"
	case "political":
		conservative := countPresent(lower, []string{"tradition", "law and order", "security", "defense"})
		liberal := countPresent(lower, []string{"progress", "reform", "change", "innovation"})
		if conservative > liberal {
			return "conservative"
		}
		return "liberal"
	case "environmental":
		env := countPresent(lower, []string{"protect", "sustainable", "clean", "renewable"})
		industry := countPresent(lower, []string{"jobs", "economic impact", "cost", "practical"})
		if env > industry {
			return "pro-environment"
		}
		return "pro-industry"
	}
	return "neutral"
}

func alternativeExplanations(claims []model.Claim) []string {
	var out uniqueList
	for _, c := range claims {
		text := strings.ToLower(c.Claim)
		if containsAny(text, []string{"economy", "jobs", "unemployment", "growth"}) {
			out.add(altEconomic)
		}
		if strings.IndexFunc(c.Claim, unicode.IsDigit) >= 0 && strings.Contains(c.Claim, "%") {
			out.add(altStatistical)
		}
		if containsAny(text, []string{"policy", "law", "regulation", "government"}) {
			out.add(altPolicy)
		}
		if containsAny(text, []string{"people", "community", "social", "public"}) {
			out.add(altSocial)
		}
	}
	return out.first(maxAlternatives)
}

func missingContext(lower string) []string {
	var out uniqueList

	if !containsAny(lower, []string{"historical", "previous", "past", "trend"}) {
		out.add("Historical context and long-term trends that might provide perspective on current events")
	}

	stakeholders := []string{"workers", "consumers", "businesses", "communities", "experts", "critics"}
	if countPresent(lower, stakeholders) < 3 {
		out.add("Perspectives from additional stakeholder groups who may be affected by or have expertise on this issue")
	}

	if !containsAny(lower, []string{"compared to", "similar", "other countries", "international"}) {
		out.add("Comparative analysis with similar situations in other contexts or jurisdictions")
	}

	if !containsAny(lower, []string{"uncertain", "unclear", "debate", "controversy"}) {
		out.add("Acknowledgment of uncertainties, limitations, or ongoing debates around this topic")
	}

	hasBenefits := containsAny(lower, []string{"benefit", "advantage", "positive", "improvement"})
	hasCosts := containsAny(lower, []string{"cost", "disadvantage", "negative", "problem"})
	switch {
	case hasBenefits && !hasCosts:
		out.add("Discussion of potential costs, risks, or negative consequences")
	case hasCosts && !hasBenefits:
		out.add("Discussion of potential benefits or positive outcomes")
	}

	return out.first(maxMissingContext)
}

func rebuttals(claims []model.Claim) []string {
	var out uniqueList

	for _, c := range claims {
		text := strings.ToLower(c.Claim)

		if c.EvidenceQuality == model.EvidenceWeak || c.EvidenceQuality == model.EvidenceNone {
			out.add("The claim about " + keySubject(c.Claim) + " lacks sufficient evidence and could be challenged on methodological grounds.")
		}
		if containsAny(text, []string{"cause", "because", "due to", "result"}) {
			out.add("Critics might argue that correlation does not imply causation and that alternative causal explanations should be considered.")
		}
		if containsAny(text, []string{"study", "survey", "poll", "research"}) {
			out.add("Questions could be raised about the study's sample size, methodology, or generalizability to broader populations.")
		}
		if containsAny(text, []string{"recent", "new", "latest", "current"}) {
			out.add("Critics might argue that recent data points may not represent long-term trends or may be influenced by temporary factors.")
		}
	}

	out.add("Alternative data sources or methodologies might yield different conclusions")
	out.add("The framing of the issue may influence how the facts are interpreted")

	return out.first(maxRebuttals)
}

// keySubject picks the first proper noun or topic keyword of a claim
func keySubject(claim string) string {
	for _, word := range strings.Fields(claim) {
		clean := nonWord.ReplaceAllString(word, "")
		if clean == "" {
			continue
		}
		lower := strings.ToLower(clean)
		first := []rune(clean)[0]
		if unicode.IsUpper(first) || subjectKeywords[lower] {
			return lower
		}
	}
	return "the topic"
}

// perspectiveGroups are reported in this order
var perspectiveGroups = []struct {
	name  string
	terms []string
}{
	{"supporters", []string{"supporters", "advocates", "proponents", "those who favor"}},
	{"critics", []string{"critics", "opponents", "those who oppose", "skeptics"}},
	{"experts", []string{"experts", "researchers", "analysts", "specialists"}},
	{"officials", []string{"officials", "authorities", "government", "administration"}},
}

var (
	positiveFraming = []string{"success", "improvement", "benefit", "progress", "achievement", "positive"}
	negativeFraming = []string{"problem", "crisis", "failure", "decline", "negative", "concern"}
)

// AnalyzeNarrativeBalance measures positive versus negative framing and how
// many perspective groups the article gives voice to.
func AnalyzeNarrativeBalance(content string) model.NarrativeBalance {
	lower := strings.ToLower(content)

	positive := countPresent(lower, positiveFraming)
	negative := countPresent(lower, negativeFraming)

	balance := 0.0
	if total := positive + negative; total > 0 {
		balance = float64(positive-negative) / float64(total)
	}

	perspectives := make([]string, 0, len(perspectiveGroups))
	for _, g := range perspectiveGroups {
		if containsAny(lower, g.terms) {
			perspectives = append(perspectives, g.name)
		}
	}

	return model.NarrativeBalance{
		PositiveMentions: positive,
		NegativeMentions: negative,
		SentimentBalance: balance,
		Perspectives:     perspectives,
		PerspectiveCount: len(perspectives),
		IsBalanced:       len(perspectives) >= 2 && balance >= -0.5 && balance <= 0.5,
	}
}
