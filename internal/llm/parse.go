package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/skeptic/internal/model"
)

// errUnparseable marks a response that holds no JSON object
var errUnparseable = errors.New("response is not a JSON object")

var (
	fenceOpen  = regexp.MustCompile("^```[A-Za-z]*[ \t]*\\n?")
	fenceClose = regexp.MustCompile("\\n?[ \t]*```$")
)

// rawAnalysis mirrors the response contract with lenient field types
type rawAnalysis struct {
	Claims []struct {
		Claim           string    `json:"claim"`
		EvidenceQuality string    `json:"evidence_quality"`
		Verifiable      flexBool  `json:"verifiable"`
		Context         string    `json:"context"`
		Confidence      flexFloat `json:"confidence"`
	} `json:"core_claims"`
	LanguageAnalysis struct {
		Tone                 string   `json:"tone"`
		BiasIndicators       []string `json:"bias_indicators"`
		LoadedLanguage       []string `json:"loaded_language"`
		EmotionalWords       []string `json:"emotional_words"`
		PersuasiveTechniques []string `json:"persuasive_techniques"`
	} `json:"language_analysis"`
	RedFlags []struct {
		Type        string    `json:"type"`
		Description string    `json:"description"`
		Severity    string    `json:"severity"`
		Evidence    string    `json:"evidence"`
		Confidence  flexFloat `json:"confidence"`
	} `json:"red_flags"`
	VerificationQuestions []struct {
		Question     string    `json:"question"`
		Category     string    `json:"category"`
		Priority     flexFloat `json:"priority"`
		ResearchTips []string  `json:"research_tips"`
	} `json:"verification_questions"`
	BiasConfidence     flexFloat  `json:"bias_confidence"`
	OverallCredibility *flexFloat `json:"overall_credibility"`
}

// ParseJSONResponse decodes a provider reply into an AIAnalysis. Code
// fences are stripped first; if that does not parse, the outermost {...}
// span is tried. Unknown enum values fall back to defaults and numbers
// are clamped to their ranges.
func ParseJSONResponse(text string) (*model.AIAnalysis, error) {
	var raw rawAnalysis

	cleaned := stripCodeFences(text)
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		span, ok := outermostObject(text)
		if !ok {
			return nil, errUnparseable
		}
		raw = rawAnalysis{}
		if err := json.Unmarshal([]byte(span), &raw); err != nil {
			return nil, errUnparseable
		}
	}

	return raw.toModel(), nil
}

func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// outermostObject returns the span from the first '{' to the last '}'
func outermostObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func (r rawAnalysis) toModel() *model.AIAnalysis {
	out := &model.AIAnalysis{
		Claims:                make([]model.Claim, 0, len(r.Claims)),
		RedFlags:              make([]model.RedFlag, 0, len(r.RedFlags)),
		VerificationQuestions: make([]model.VerificationQuestion, 0, len(r.VerificationQuestions)),
		LanguageAnalysis: model.LanguageAnalysis{
			Tone:                 model.ParseTone(strings.TrimSpace(r.LanguageAnalysis.Tone)),
			BiasIndicators:       nonEmpty(r.LanguageAnalysis.BiasIndicators),
			LoadedLanguage:       nonEmpty(r.LanguageAnalysis.LoadedLanguage),
			EmotionalWords:       nonEmpty(r.LanguageAnalysis.EmotionalWords),
			PersuasiveTechniques: nonEmpty(r.LanguageAnalysis.PersuasiveTechniques),
		},
		BiasConfidence:     model.Clamp01(float64(r.BiasConfidence)),
		OverallCredibility: 0.5,
	}
	if r.OverallCredibility != nil {
		out.OverallCredibility = model.Clamp01(float64(*r.OverallCredibility))
	}

	for _, c := range r.Claims {
		text := strings.TrimSpace(c.Claim)
		if text == "" {
			continue
		}
		out.Claims = append(out.Claims, model.Claim{
			Claim:           text,
			EvidenceQuality: model.ParseEvidenceQuality(normalizeEnum(c.EvidenceQuality)),
			Verifiable:      bool(c.Verifiable),
			Context:         strings.TrimSpace(c.Context),
			Confidence:      model.Clamp01(float64(c.Confidence)),
		})
	}

	for _, f := range r.RedFlags {
		desc := strings.TrimSpace(f.Description)
		if desc == "" {
			continue
		}
		out.RedFlags = append(out.RedFlags, model.RedFlag{
			Type:        model.ParseBiasType(normalizeEnum(f.Type)),
			Description: desc,
			Severity:    model.ParseSeverity(normalizeEnum(f.Severity)),
			Evidence:    strings.TrimSpace(f.Evidence),
			Confidence:  model.Clamp01(float64(f.Confidence)),
		})
	}

	for _, q := range r.VerificationQuestions {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			continue
		}
		out.VerificationQuestions = append(out.VerificationQuestions, model.VerificationQuestion{
			Question:     text,
			Category:     model.ParseQuestionCategory(normalizeEnum(q.Category)),
			Priority:     clampPriority(q.Priority),
			ResearchTips: nonEmpty(q.ResearchTips),
		})
	}

	return out
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clampPriority(p flexFloat) int {
	v := int(p + 0.5)
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// nonEmpty trims items and drops blanks; the result is never nil
func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// flexFloat accepts a JSON number, a numeric string or null
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// flexBool accepts a JSON bool, "true"/"false" strings or null
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(bytes.ToLower(bytes.Trim(data, `"`))) {
	case "true", "yes", "1":
		*b = true
	default:
		*b = false
	}
	return nil
}
