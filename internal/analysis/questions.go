package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/skeptic/internal/model"
)

const (
	questionClaims   = 5
	questionEntities = 10
	entityQuestions  = 5
)

var (
	statisticalClaim = regexp.MustCompile(`\d+%|\$[\d,]+|\d+ (?:people|percent)`)

	statisticPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d+%`),
		regexp.MustCompile(`\$[\d,]+(?:\s+(?:million|billion|trillion))?`),
		regexp.MustCompile(`\d+\s+(?:people|percent|times|years|months|days)`),
	}

	speakerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`([A-Z][a-z]+ [A-Z][a-z]+)\s+(?:said|stated|told|announced)`),
		regexp.MustCompile(`according to ([A-Z][a-z]+ [A-Z][a-z]+)`),
		regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*),?\s+(?:a|the)?\s*\w+,?\s+(?:said|stated)`),
	}
)

var (
	tipsStatistical = []string{
		"Find the original study or survey methodology",
		"Check if the data has been peer-reviewed",
	}
	tipsFactChecking = []string{
		"Check fact-checking sites like Snopes, FactCheck.org, or PolitiFact",
		"Search for the original source document or statement",
	}
)

// QuestionGenerator turns claims, entities and content cues into research questions
type QuestionGenerator struct{}

// NewQuestionGenerator creates a verification question generator
func NewQuestionGenerator() *QuestionGenerator {
	return &QuestionGenerator{}
}

// Generate builds verification questions, deduplicated and ranked by
// priority then number of research tips, capped at model.MaxQuestions.
func (g *QuestionGenerator) Generate(claims []model.Claim, entities []model.Entity, content, domain string) []model.VerificationQuestion {
	var questions []model.VerificationQuestion

	for i, c := range claims {
		if i >= questionClaims {
			break
		}
		questions = append(questions, claimQuestions(c)...)
	}

	if len(entities) > questionEntities {
		entities = entities[:questionEntities]
	}
	questions = append(questions, entityQuestionsFor(entities)...)
	questions = append(questions, sourceQuestions(domain, content)...)
	questions = append(questions, contextQuestions(content)...)

	questions = dedupeQuestions(questions)
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].Priority != questions[j].Priority {
			return questions[i].Priority > questions[j].Priority
		}
		return len(questions[i].ResearchTips) > len(questions[j].ResearchTips)
	})

	if len(questions) > model.MaxQuestions {
		questions = questions[:model.MaxQuestions]
	}
	return questions
}

// claimQuestions classifies a claim as statistical, quote, causal or factual
func claimQuestions(c model.Claim) []model.VerificationQuestion {
	lower := strings.ToLower(c.Claim)

	switch {
	case statisticalClaim.MatchString(c.Claim):
		stat := extractStatistic(c.Claim)
		return questionSet(model.CategoryStatistical, []string{
			fmt.Sprintf("What is the source of the '%s' statistic mentioned?", stat),
			fmt.Sprintf("How was the data for '%s' collected and verified?", stat),
			fmt.Sprintf("What time period and sample size does the '%s' represent?", stat),
			fmt.Sprintf("Do other credible sources report similar figures for '%s'?", stat),
		}, []int{4, 4, 3, 3}, tipsStatistical)

	case strings.Contains(c.Claim, `"`) || strings.Contains(lower, "said"):
		speaker := extractSpeaker(c.Claim)
		or := func(fallback string) string {
			if speaker != "" {
				return speaker
			}
			return fallback
		}
		return questionSet(model.CategoryQuote, []string{
			fmt.Sprintf("Can this quote from %s be verified in its original context?", or("the source")),
			fmt.Sprintf("When and in what forum did %s make this statement?", or("this person")),
			fmt.Sprintf("Has %s made any clarifications about this statement?", or("the speaker")),
			"What was the full context surrounding this quote?",
		}, []int{5, 3, 3, 3}, []string{
			"Search for the original speech, interview, or document",
			"Check the speaker's official statements or social media",
		})

	case containsAny(lower, []string{"cause", "because", "due to", "result"}):
		cause, effect := extractCauseEffect(c.Claim)
		return questionSet(model.CategoryCausal, []string{
			fmt.Sprintf("What evidence supports the claim that %s causes %s?", cause, effect),
			fmt.Sprintf("What alternative explanations exist for %s?", effect),
			fmt.Sprintf("What do experts say about the relationship between %s and %s?", cause, effect),
			"What prior research exists on this causal relationship?",
		}, []int{4, 4, 3, 3}, []string{
			"Look for peer-reviewed studies on causation",
			"Check for correlation vs. causation discussion",
		})
	}

	subject := questionSubject(c.Claim)
	return questionSet(model.CategoryFactual, []string{
		fmt.Sprintf("What independent sources can verify the claims about %s?", subject),
		fmt.Sprintf("What additional context about %s might be relevant?", subject),
		fmt.Sprintf("Are there credible sources that present different information about %s?", subject),
		fmt.Sprintf("What experts or authorities have commented on %s?", subject),
	}, []int{3, 3, 3, 3}, tipsFactChecking)
}

func questionSet(category model.QuestionCategory, texts []string, priorities []int, tips []string) []model.VerificationQuestion {
	out := make([]model.VerificationQuestion, len(texts))
	for i, text := range texts {
		out[i] = model.VerificationQuestion{
			Question:     text,
			Category:     category,
			Priority:     priorities[i],
			ResearchTips: append([]string(nil), tips...),
		}
	}
	return out
}

func entityQuestionsFor(entities []model.Entity) []model.VerificationQuestion {
	var out []model.VerificationQuestion
	for _, e := range entities {
		if len(out) >= entityQuestions {
			break
		}
		switch e.Label {
		case model.EntityOrg:
			out = append(out, model.VerificationQuestion{
				Question: fmt.Sprintf("What is %s's funding source, ownership, and potential biases?", e.Text),
				Category: model.CategorySource,
				Priority: 4,
				ResearchTips: []string{
					"Check the organization's website for funding information",
					"Look up the organization's history and leadership",
				},
			})
		case model.EntityPerson:
			out = append(out, model.VerificationQuestion{
				Question: fmt.Sprintf("What are %s's credentials and potential conflicts of interest on this topic?", e.Text),
				Category: model.CategorySource,
				Priority: 3,
				ResearchTips: []string{
					"Research the person's background and expertise",
					"Check for disclosed conflicts of interest",
				},
			})
		}
	}
	return out
}

func sourceQuestions(domain, content string) []model.VerificationQuestion {
	out := []model.VerificationQuestion{{
		Question: fmt.Sprintf("What is %s's editorial stance, ownership, and funding sources?", domain),
		Category: model.CategorySource,
		Priority: 4,
		ResearchTips: []string{
			"Check media bias rating sites",
			"Research the publication's ownership structure",
		},
	}}

	lower := strings.ToLower(content)
	if strings.Contains(lower, "study") || strings.Contains(lower, "research") {
		out = append(out, model.VerificationQuestion{
			Question: "Can the studies or research mentioned be independently verified?",
			Category: model.CategoryMethodology,
			Priority: 5,
			ResearchTips: []string{
				"Find the original study publication",
				"Check if the study was peer-reviewed",
			},
		})
	}
	return out
}

func contextQuestions(content string) []model.VerificationQuestion {
	lower := strings.ToLower(content)
	var out []model.VerificationQuestion

	if !containsAny(lower, []string{"historical", "previously", "past"}) {
		out = append(out, model.VerificationQuestion{
			Question: "What historical context or trends might provide perspective on this issue?",
			Category: model.CategoryContext,
			Priority: 2,
			ResearchTips: []string{
				"Research the historical background of this issue",
				"Look for long-term trend data",
			},
		})
	}

	if !containsAny(lower, []string{"compared", "other countries", "similar"}) {
		out = append(out, model.VerificationQuestion{
			Question: "How does this situation compare to similar cases in other contexts?",
			Category: model.CategoryContext,
			Priority: 2,
			ResearchTips: []string{
				"Look for international comparisons",
				"Research similar cases in other jurisdictions",
			},
		})
	}
	return out
}

func extractStatistic(text string) string {
	for _, re := range statisticPatterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return "the statistic"
}

func extractSpeaker(text string) string {
	for _, re := range speakerPatterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// extractCauseEffect splits on "because" or "due to": effect first, cause second
func extractCauseEffect(text string) (cause, effect string) {
	lower := strings.ToLower(text)
	for _, sep := range []string{"because", "due to"} {
		if before, after, ok := strings.Cut(lower, sep); ok {
			return strings.TrimSpace(after), strings.TrimSpace(before)
		}
	}
	return "the stated cause", "the stated effect"
}

// questionSubject picks the first capitalized word longer than three letters
func questionSubject(text string) string {
	for _, word := range strings.Fields(text) {
		clean := nonWord.ReplaceAllString(word, "")
		if len(clean) > 3 && clean[0] >= 'A' && clean[0] <= 'Z' {
			return strings.ToLower(clean)
		}
	}
	lower := strings.ToLower(text)
	for _, term := range []string{"government", "economy", "policy", "study", "report", "data"} {
		if strings.Contains(lower, term) {
			return term
		}
	}
	return "this topic"
}

func dedupeQuestions(questions []model.VerificationQuestion) []model.VerificationQuestion {
	seen := make(map[string]bool, len(questions))
	out := make([]model.VerificationQuestion, 0, len(questions))
	for _, q := range questions {
		key := strings.Join(strings.Fields(strings.ToLower(q.Question)), " ")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, q)
	}
	return out
}
