package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/ppiankov/skeptic/internal/model"
)

const (
	maxTaggedEntities = 20
	maxRegexEntities  = 15
	maxTaggerInput    = 100000
	maxEntityContext  = 250
)

var relevantLabels = map[string]model.EntityLabel{
	"PERSON":      model.EntityPerson,
	"ORG":         model.EntityOrg,
	"GPE":         model.EntityGPE,
	"EVENT":       model.EntityEvent,
	"LAW":         model.EntityLaw,
	"PRODUCT":     model.EntityProduct,
	"WORK_OF_ART": model.EntityWorkOfArt,
}

var (
	honorificPrefix  = regexp.MustCompile(`^(Mr|Mrs|Ms|Dr|Prof)\.\s+`)
	corporateSuffix  = regexp.MustCompile(`\s+((Inc|Corp|Ltd|LLC)\.?)$`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)
)

// regexPatterns are applied in order: PERSON, ORG, GPE
var regexPatterns = []struct {
	label    model.EntityLabel
	patterns []*regexp.Regexp
}{
	{model.EntityPerson, compileAll(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)},
	{model.EntityOrg, compileAll(`\b[A-Z][a-z]+ (?:Corporation|Corp|Company|Inc|LLC|Ltd)\b`, `\b[A-Z]{3,5}\b`)},
	{model.EntityGPE, compileAll(`\b(?:United States|USA|UK|China|India|Russia|Germany|France)\b`)},
}

// TaggedEntity is a raw span reported by a Tagger
type TaggedEntity struct {
	Text     string
	Label    string
	Sentence string
}

// Tagger is a model-based named-entity recognizer
type Tagger interface {
	Tag(text string) ([]TaggedEntity, error)
}

// ProseTagger tags entities with the prose NER model
type ProseTagger struct{}

// Tag runs tokenization, segmentation and NER over text
func (ProseTagger) Tag(text string) ([]TaggedEntity, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, fmt.Errorf("prose document: %w", err)
	}

	sentences := doc.Sentences()
	var tagged []TaggedEntity
	for _, ent := range doc.Entities() {
		tagged = append(tagged, TaggedEntity{
			Text:     ent.Text,
			Label:    ent.Label,
			Sentence: sentenceContaining(ent.Text, sentences),
		})
	}
	return tagged, nil
}

func sentenceContaining(text string, sentences []prose.Sentence) string {
	for _, s := range sentences {
		if strings.Contains(s.Text, text) {
			return s.Text
		}
	}
	return ""
}

// EntityExtractor recognizes named entities with a model-based tagger and
// falls back to capitalization patterns when the tagger fails or finds nothing
type EntityExtractor struct {
	tagger Tagger
}

// NewEntityExtractor creates an extractor backed by the prose tagger
func NewEntityExtractor() *EntityExtractor {
	return &EntityExtractor{tagger: ProseTagger{}}
}

// NewEntityExtractorWithTagger creates an extractor with a custom tagger (nil means regex only)
func NewEntityExtractorWithTagger(tagger Tagger) *EntityExtractor {
	return &EntityExtractor{tagger: tagger}
}

// Extract returns deduplicated entities ranked by confidence. It never fails.
func (e *EntityExtractor) Extract(content, title string) []model.Entity {
	fullText := content
	if title != "" {
		fullText = title + "\n\n" + content
	}

	if e.tagger != nil {
		entities, err := e.extractTagged(fullText)
		if err == nil && len(entities) > 0 {
			return entities
		}
	}

	return extractWithRegex(fullText)
}

func (e *EntityExtractor) extractTagged(fullText string) ([]model.Entity, error) {
	if len(fullText) > maxTaggerInput {
		fullText = truncateUTF8(fullText, maxTaggerInput)
	}

	tagged, err := e.tagger.Tag(fullText)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var entities []model.Entity
	for _, t := range tagged {
		label, ok := relevantLabels[t.Label]
		if !ok {
			continue
		}
		text := cleanEntityText(t.Text)
		if len(text) <= 2 || len(strings.Fields(text)) >= 6 {
			continue
		}

		counts[text]++
		entities = append(entities, model.Entity{
			Text:       text,
			Label:      label,
			Confidence: min(1.0, 0.4+float64(counts[text])*0.15),
			Context:    truncateContext(t.Sentence),
		})
	}

	unique := dedupeEntities(entities)
	sort.SliceStable(unique, func(i, j int) bool {
		if unique[i].Confidence != unique[j].Confidence {
			return unique[i].Confidence > unique[j].Confidence
		}
		return len(unique[i].Text) > len(unique[j].Text)
	})

	if len(unique) > maxTaggedEntities {
		unique = unique[:maxTaggedEntities]
	}
	return unique, nil
}

func extractWithRegex(fullText string) []model.Entity {
	var entities []model.Entity
	for _, group := range regexPatterns {
		for _, re := range group.patterns {
			for _, match := range re.FindAllString(fullText, -1) {
				text := cleanEntityText(match)
				if len(text) <= 2 {
					continue
				}
				entities = append(entities, model.Entity{
					Text:       text,
					Label:      group.label,
					Confidence: 0.5,
					Context:    regexContext(text, fullText),
				})
			}
		}
	}

	unique := dedupeEntities(entities)
	sort.SliceStable(unique, func(i, j int) bool {
		return len(unique[i].Text) > len(unique[j].Text)
	})

	if len(unique) > maxRegexEntities {
		unique = unique[:maxRegexEntities]
	}
	return unique
}

// dedupeEntities keys entities by lowercase text; a strictly more confident
// entity replaces the kept one in place
func dedupeEntities(entities []model.Entity) []model.Entity {
	index := make(map[string]int)
	var unique []model.Entity

	for _, ent := range entities {
		key := strings.ToLower(strings.TrimSpace(ent.Text))
		if i, ok := index[key]; ok {
			if ent.Confidence > unique[i].Confidence {
				unique[i] = ent
			}
			continue
		}
		index[key] = len(unique)
		unique = append(unique, ent)
	}

	return unique
}

func cleanEntityText(text string) string {
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	text = honorificPrefix.ReplaceAllString(text, "")
	text = corporateSuffix.ReplaceAllString(text, "")
	return text
}

// regexContext returns the first sentence that contains text
func regexContext(text, fullText string) string {
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(fullText, -1) {
		sentence := fullText[start : loc[0]+1]
		if strings.Contains(sentence, text) {
			return truncateContext(sentence)
		}
		start = loc[1]
	}
	if tail := fullText[start:]; strings.Contains(tail, text) {
		return truncateContext(tail)
	}
	return ""
}

func truncateContext(sentence string) string {
	context := strings.ReplaceAll(strings.TrimSpace(sentence), "\n", " ")
	if len(context) > maxEntityContext {
		return truncateUTF8(context, maxEntityContext) + "..."
	}
	return context
}

// AnalyzeEntityRoles sorts entities into quoted sources, organizations,
// locations and discussed people
func AnalyzeEntityRoles(entities []model.Entity, content string) model.EntityRoles {
	roles := model.EntityRoles{}
	lower := strings.ToLower(content)

	for _, ent := range entities {
		name := strings.ToLower(ent.Text)

		isSource := strings.Contains(lower, name+" said") ||
			strings.Contains(lower, "according to "+name) ||
			strings.Contains(lower, name+" stated")
		if isSource {
			roles.Sources = append(roles.Sources, ent.Text)
		}

		switch ent.Label {
		case model.EntityOrg:
			if !isSource {
				roles.Organizations = append(roles.Organizations, ent.Text)
			}
		case model.EntityGPE:
			roles.Locations = append(roles.Locations, ent.Text)
		case model.EntityPerson:
			if !isSource {
				roles.Subjects = append(roles.Subjects, ent.Text)
			}
		}
	}

	return roles
}
