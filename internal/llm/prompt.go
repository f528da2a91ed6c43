package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt frames every analysis request
const SystemPrompt = "You are a media analyst and fact-checker. You assess how well an article supports its claims and how it uses language. You never declare a claim true or false. You answer with a single JSON object and nothing else."

const responseShape = `{
  "core_claims": [
    {
      "claim": "a specific factual assertion from the article",
      "evidence_quality": "strong|moderate|weak|none",
      "verifiable": true,
      "context": "surrounding context for the claim",
      "confidence": 0.0
    }
  ],
  "language_analysis": {
    "tone": "neutral|persuasive|emotional|inflammatory",
    "bias_indicators": ["quoted examples of biased phrasing"],
    "loaded_language": ["charged words or phrases"],
    "emotional_words": ["words meant to provoke a reaction"],
    "persuasive_techniques": ["techniques used to steer the reader"]
  },
  "red_flags": [
    {
      "type": "source_bias|statistical_misuse|logical_fallacy|selection_bias|framing_bias|emotional_manipulation",
      "description": "what the problem is",
      "severity": "high|medium|low",
      "evidence": "the text that shows it",
      "confidence": 0.0
    }
  ],
  "verification_questions": [
    {
      "question": "a concrete question a reader can research",
      "category": "factual|source|methodology|context",
      "priority": 1,
      "research_tips": ["where or how to look"]
    }
  ],
  "bias_confidence": 0.0,
  "overall_credibility": 0.0
}`

const analysisGuidelines = `Guidelines:
1. Core claims: pick 3 to 5 central factual assertions. Grade evidence by the sources, data and attributions the article itself gives.
2. Language: look for appeals to fear or anger, loaded terms that frame the issue, absolute statements and appeals to emotion over argument.
3. Red flags: anonymous sourcing for major claims, cherry-picked or context-free statistics, false dichotomies, straw men, missing viewpoints and conflicts of interest.
4. Verification questions: specific questions a reader can answer with public sources.
5. Confidence and credibility values are numbers between 0 and 1. Priority is an integer between 1 and 5.
Quote the article for every finding. Do not invent sources.`

// BuildAnalysisPrompt embeds the article and its metadata in the analysis task
func BuildAnalysisPrompt(req AnalysisRequest) string {
	var b strings.Builder

	b.WriteString("Analyze the following news article for credibility, bias and rhetorical technique.\n\n")
	b.WriteString("ARTICLE CONTENT:\n")
	b.WriteString(req.Content)
	b.WriteString("\n\nARTICLE METADATA:\n")
	fmt.Fprintf(&b, "- URL: %s\n", req.URL)
	fmt.Fprintf(&b, "- Title: %s\n", orUnknown(req.Title))
	fmt.Fprintf(&b, "- Author: %s\n", orUnknown(req.Author))
	fmt.Fprintf(&b, "- Domain: %s\n", orUnknown(req.Domain))
	fmt.Fprintf(&b, "- Publication date: %s\n\n", orUnknown(req.PublishDate))
	b.WriteString("Respond with JSON in exactly this shape:\n\n")
	b.WriteString(responseShape)
	b.WriteString("\n\n")
	b.WriteString(analysisGuidelines)

	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
