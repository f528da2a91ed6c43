// Package analysis holds the deterministic text heuristics: tone and
// rhetoric, structural red flags, counter-narratives and verification questions.
package analysis

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/skeptic/internal/model"
)

// Caps for the heuristic language pass
const (
	maxHeuristicIndicators = 10
	maxHeuristicLoaded     = 15
	maxHeuristicEmotional  = 10
	maxHeuristicTechniques = 8
)

var (
	emotionalPositive = []string{
		"amazing", "fantastic", "incredible", "outstanding", "remarkable",
		"wonderful", "excellent", "brilliant", "spectacular", "magnificent",
	}
	emotionalNegative = []string{
		"terrible", "awful", "horrible", "devastating", "catastrophic",
		"disastrous", "shocking", "outrageous", "appalling", "disgusting",
	}
	loadedTerms = []string{
		"regime", "puppet", "thugs", "terrorists", "extremists",
		"fanatics", "radicals", "militants", "cronies", "lackeys",
	}
	appealToEmotion = []string{
		"you should be afraid", "this threatens", "dangerous consequences",
		"shocking truth", "hidden agenda", "they don't want you to know",
	}
	falseDichotomy = []string{
		"either...or", "only two choices", "must choose between",
		"no middle ground", "black and white",
	}
	fearWords  = []string{"threat", "danger", "risk", "fear", "terror", "crisis", "emergency"}
	angerWords = []string{"outrage", "fury", "anger", "rage", "disgusting", "appalling"}

	loadedQualifiers = []string{"so-called", "alleged", "claimed", "supposed", "purported"}

	bandwagonPhrases      = []string{"everyone is doing", "most people believe", "join the movement", "don't be left behind"}
	vagueAuthorityPhrases = []string{"experts say", "authorities claim", "officials state"}
)

// BiasDetector finds tone, loaded language and structural bias patterns
type BiasDetector struct {
	absolutePatterns     []*regexp.Regexp
	unsubstantiated      []*regexp.Regexp
	inflammatoryPatterns []*regexp.Regexp

	anonymousSources []*regexp.Regexp
	statistics       []*regexp.Regexp
	statContext      []*regexp.Regexp
	cherryPicking    []*regexp.Regexp
	adHominem        []*regexp.Regexp
	strawMan         []*regexp.Regexp
}

// NewBiasDetector compiles the detector patterns
func NewBiasDetector() *BiasDetector {
	return &BiasDetector{
		absolutePatterns: compile(
			`\b(always|never|all|none|every|completely|totally|absolutely)\b`,
			`\b(everyone knows|it's obvious|clearly|undoubtedly)\b`,
		),
		unsubstantiated: compile(
			`(sources say|reports suggest|it is believed|allegedly)`,
			`(many people think|most experts agree|studies show)`,
		),
		inflammatoryPatterns: compile(
			`\b(radical|extremist|rogue|reckless|dangerous|toxic|corrupt)\s+\w+`,
			`\b(failed|broken|devastating|crushing|shocking)\s+\w+`,
		),
		anonymousSources: compile(
			`anonymous sources?`,
			`sources close to`,
			`insiders?\s+say`,
			`unnamed officials?`,
			`sources say`,
		),
		statistics: compile(
			`\d+%\s+(?:increase|decrease|rise|fall)`,
			`\$[\d,]+\s+(?:million|billion)`,
			`\d+\s+times\s+(?:more|less|higher|lower)`,
		),
		statContext: compile(
			`compared to`,
			`baseline`,
			`previous year`,
			`same period`,
			`methodology`,
		),
		cherryPicking: compile(
			`record high`,
			`unprecedented`,
			`never before seen`,
			`highest ever`,
		),
		adHominem: compile(
			`critics of \w+ are`,
			`only \w+ would`,
			`anyone who believes`,
			`supporters are just`,
		),
		strawMan: compile(
			`they want to`,
			`their real agenda`,
			`what they really mean`,
		),
	}
}

// DetectLanguageBias analyzes tone and rhetoric over the title and content
func (d *BiasDetector) DetectLanguageBias(content, title string) model.LanguageAnalysis {
	text := content
	if title != "" {
		text = title + "\n" + content
	}
	text = strings.ToLower(text)

	return model.LanguageAnalysis{
		Tone:                 d.detectTone(text),
		BiasIndicators:       d.findBiasIndicators(text),
		LoadedLanguage:       d.findLoadedLanguage(text),
		EmotionalWords:       findEmotionalWords(text),
		PersuasiveTechniques: d.detectPersuasiveTechniques(text),
	}
}

// detectTone classifies the register from per-100-word ratios
func (d *BiasDetector) detectTone(text string) model.Tone {
	positive := countPresent(text, emotionalPositive)
	negative := countPresent(text, emotionalNegative)
	loaded := countPresent(text, loadedTerms)
	persuasive := countPresent(text, appealToEmotion)

	per100 := float64(len(strings.Fields(text))) / 100
	if per100 < 1 {
		per100 = 1
	}

	emotionalRatio := float64(positive+negative) / per100
	loadedRatio := float64(loaded) / per100
	persuasiveRatio := float64(persuasive) / per100

	switch {
	case loadedRatio > 2 || persuasiveRatio > 1:
		return model.ToneInflammatory
	case emotionalRatio > 3 || negative > positive*2:
		return model.ToneEmotional
	case persuasiveRatio > 0.5 || emotionalRatio > 1.5:
		return model.TonePersuasive
	default:
		return model.ToneNeutral
	}
}

func (d *BiasDetector) findBiasIndicators(text string) []string {
	var out uniqueList

	for _, re := range d.absolutePatterns {
		for _, m := range re.FindAllString(text, -1) {
			out.add(fmt.Sprintf("Absolute statement: '%s'", m))
		}
	}
	for _, re := range d.unsubstantiated {
		for _, m := range re.FindAllString(text, -1) {
			out.add(fmt.Sprintf("Unsubstantiated claim: '%s'", m))
		}
	}
	for _, q := range loadedQualifiers {
		if strings.Contains(text, q) {
			out.add(fmt.Sprintf("Loaded qualifier: '%s'", q))
		}
	}

	return out.first(maxHeuristicIndicators)
}

func (d *BiasDetector) findLoadedLanguage(text string) []string {
	var out uniqueList

	for _, term := range loadedTerms {
		if strings.Contains(text, term) {
			out.add(term)
		}
	}
	for _, re := range d.inflammatoryPatterns {
		for _, m := range re.FindAllString(text, -1) {
			out.add(strings.Join(strings.Fields(m), " "))
		}
	}

	return out.first(maxHeuristicLoaded)
}

func findEmotionalWords(text string) []string {
	var out uniqueList

	for _, list := range [][]string{emotionalPositive, emotionalNegative, fearWords, angerWords} {
		for _, w := range list {
			if strings.Contains(text, w) {
				out.add(w)
			}
		}
	}

	return out.first(maxHeuristicEmotional)
}

func (d *BiasDetector) detectPersuasiveTechniques(text string) []string {
	var out uniqueList

	for _, phrase := range appealToEmotion {
		if strings.Contains(text, phrase) {
			out.add("Appeal to emotion: " + phrase)
		}
	}
	for _, phrase := range falseDichotomy {
		if strings.Contains(text, phrase) {
			out.add("False dichotomy: " + phrase)
		}
	}
	for _, phrase := range bandwagonPhrases {
		if strings.Contains(text, phrase) {
			out.add("Bandwagon appeal: " + phrase)
		}
	}
	for _, phrase := range vagueAuthorityPhrases {
		if strings.Contains(text, phrase) {
			out.add("Vague authority appeal: " + phrase)
		}
	}

	return out.first(maxHeuristicTechniques)
}

// uniqueList keeps the first occurrence of each value in insertion order
type uniqueList struct {
	items []string
	seen  map[string]bool
}

func (u *uniqueList) add(s string) {
	if u.seen == nil {
		u.seen = make(map[string]bool)
	}
	if s == "" || u.seen[s] {
		return
	}
	u.seen[s] = true
	u.items = append(u.items, s)
}

func (u *uniqueList) first(n int) []string {
	if len(u.items) > n {
		return u.items[:n]
	}
	if u.items == nil {
		return []string{}
	}
	return u.items
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// countPresent counts how many of the phrases occur in text
func countPresent(text string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(text, p) {
			n++
		}
	}
	return n
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
