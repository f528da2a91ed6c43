package model

import "strings"

// BiasType classifies a red flag
type BiasType string

const (
	BiasSource                BiasType = "source_bias"
	BiasStatisticalMisuse     BiasType = "statistical_misuse"
	BiasLogicalFallacy        BiasType = "logical_fallacy"
	BiasSelection             BiasType = "selection_bias"
	BiasFraming               BiasType = "framing_bias"
	BiasEmotionalManipulation BiasType = "emotional_manipulation"
)

// ParseBiasType maps a free-form value onto a known type (source_bias if unknown)
func ParseBiasType(s string) BiasType {
	switch t := BiasType(s); t {
	case BiasSource, BiasStatisticalMisuse, BiasLogicalFallacy, BiasSelection, BiasFraming, BiasEmotionalManipulation:
		return t
	default:
		return BiasSource
	}
}

// Severity of a red flag
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ParseSeverity maps a free-form value onto a known severity (low if unknown)
func ParseSeverity(s string) Severity {
	switch sev := Severity(strings.ToLower(s)); sev {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return sev
	default:
		return SeverityLow
	}
}

// Rank orders severities: high=3, medium=2, low=1
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// RedFlag is a structural or rhetorical problem found in the article
type RedFlag struct {
	Type        BiasType `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Evidence    string   `json:"evidence"`
	Confidence  float64  `json:"confidence"`
}

// Tone is the overall register of the article
type Tone string

const (
	ToneNeutral      Tone = "neutral"
	TonePersuasive   Tone = "persuasive"
	ToneEmotional    Tone = "emotional"
	ToneInflammatory Tone = "inflammatory"
)

// ParseTone maps a free-form value onto a known tone (neutral if unknown)
func ParseTone(s string) Tone {
	switch t := Tone(strings.ToLower(s)); t {
	case ToneNeutral, TonePersuasive, ToneEmotional, ToneInflammatory:
		return t
	default:
		return ToneNeutral
	}
}

// LanguageAnalysis summarizes tone and rhetoric
type LanguageAnalysis struct {
	Tone                 Tone     `json:"tone"`
	BiasIndicators       []string `json:"bias_indicators"`
	LoadedLanguage       []string `json:"loaded_language"`
	EmotionalWords       []string `json:"emotional_words"`
	PersuasiveTechniques []string `json:"persuasive_techniques"`
}

// List caps applied when language findings are merged
const (
	MaxBiasIndicators       = 15
	MaxLoadedLanguage       = 15
	MaxEmotionalWords       = 15
	MaxPersuasiveTechniques = 10
	MaxRedFlags             = 10
	MaxQuestions            = 8
)

// QuestionCategory groups verification questions
type QuestionCategory string

const (
	CategoryFactual     QuestionCategory = "factual"
	CategorySource      QuestionCategory = "source"
	CategoryMethodology QuestionCategory = "methodology"
	CategoryContext     QuestionCategory = "context"
	CategoryStatistical QuestionCategory = "statistical"
	CategoryQuote       QuestionCategory = "quote"
	CategoryCausal      QuestionCategory = "causal"
)

// ParseQuestionCategory maps a free-form value onto a known category (factual if unknown)
func ParseQuestionCategory(s string) QuestionCategory {
	switch c := QuestionCategory(strings.ToLower(s)); c {
	case CategoryFactual, CategorySource, CategoryMethodology, CategoryContext,
		CategoryStatistical, CategoryQuote, CategoryCausal:
		return c
	default:
		return CategoryFactual
	}
}

// VerificationQuestion is a research prompt for the reader
type VerificationQuestion struct {
	Question     string           `json:"question"`
	Category     QuestionCategory `json:"category"`
	Priority     int              `json:"priority"` // 1 (low) to 5 (high)
	ResearchTips []string         `json:"research_tips"`
}

// CounterNarrative presents perspectives the article does not
type CounterNarrative struct {
	OpposingViewpoint       string   `json:"opposing_viewpoint"`
	AlternativeExplanations []string `json:"alternative_explanations"`
	MissingContext          []string `json:"missing_context"`
	PotentialRebuttals      []string `json:"potential_rebuttals"`
}

// NarrativeBalance measures sentiment balance and perspective coverage
type NarrativeBalance struct {
	PositiveMentions int      `json:"positive_mentions"`
	NegativeMentions int      `json:"negative_mentions"`
	SentimentBalance float64  `json:"sentiment_balance"` // -1 (negative) to 1 (positive)
	Perspectives     []string `json:"perspectives_present"`
	PerspectiveCount int      `json:"perspective_diversity"`
	IsBalanced       bool     `json:"is_balanced"`
}

// AIAnalysis is the structured payload parsed from the AI provider
type AIAnalysis struct {
	Claims                []Claim                `json:"core_claims"`
	LanguageAnalysis      LanguageAnalysis       `json:"language_analysis"`
	RedFlags              []RedFlag              `json:"red_flags"`
	VerificationQuestions []VerificationQuestion `json:"verification_questions"`
	BiasConfidence        float64                `json:"bias_confidence"`
	OverallCredibility    float64                `json:"overall_credibility"`
}

// AnalysisResult is the reconciled output for one article
type AnalysisResult struct {
	Article               ArticleContent         `json:"article"`
	CoreClaims            []Claim                `json:"core_claims"`
	LanguageAnalysis      LanguageAnalysis       `json:"language_analysis"`
	RedFlags              []RedFlag              `json:"red_flags"`
	VerificationQuestions []VerificationQuestion `json:"verification_questions"`
	Entities              []Entity               `json:"entities,omitempty"`
	EntityRoles           *EntityRoles           `json:"entity_roles,omitempty"`
	SourceMetrics         *SourceMetrics         `json:"source_metrics,omitempty"`
	CounterNarrative      *CounterNarrative      `json:"counter_narrative,omitempty"`
	NarrativeBalance      *NarrativeBalance      `json:"narrative_balance,omitempty"`
	BiasConfidence        float64                `json:"bias_confidence"`
	OverallCredibility    float64                `json:"overall_credibility"`
	AnalyzedAt            string                 `json:"analyzed_at"`
	Provider              string                 `json:"provider,omitempty"`
}

// AnalysisOptions selects optional analysis steps
type AnalysisOptions struct {
	IncludeCounterNarrative bool `json:"include_counter_narrative" yaml:"include_counter_narrative" mapstructure:"include_counter_narrative"`
	IncludeEntityAnalysis   bool `json:"include_entity_analysis" yaml:"include_entity_analysis" mapstructure:"include_entity_analysis"`
	IncludeSourceCheck      bool `json:"include_source_check" yaml:"include_source_check" mapstructure:"include_source_check"`
}

// DefaultAnalysisOptions enables every optional step
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		IncludeCounterNarrative: true,
		IncludeEntityAnalysis:   true,
		IncludeSourceCheck:      true,
	}
}

// AnalysisResponse is what the orchestrator returns for every request.
// Success=false responses carry Error and no Result.
type AnalysisResponse struct {
	Success        bool            `json:"success"`
	Result         *AnalysisResult `json:"analysis_result,omitempty"`
	MarkdownReport string          `json:"markdown_report,omitempty"`
	Error          string          `json:"error_message,omitempty"`
	ProcessingTime float64         `json:"processing_time"` // Seconds
	RequestID      string          `json:"request_id,omitempty"`
	Cached         bool            `json:"cached,omitempty"`
}

// Clamp01 bounds v to [0, 1]
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
