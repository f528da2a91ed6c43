package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ppiankov/skeptic/internal/model"
	"github.com/ppiankov/skeptic/internal/score"
)

const disclaimer = "*Generated automatically by skeptic from text heuristics and an AI model. " +
	"It points at what deserves checking; it does not establish what is true. " +
	"Confirm important claims against primary sources before relying on them.*"

var evidenceEmoji = map[model.EvidenceQuality]string{
	model.EvidenceStrong:   "✅",
	model.EvidenceModerate: "⚠️",
	model.EvidenceWeak:     "❌",
	model.EvidenceNone:     "🚫",
}

var severityEmoji = map[model.Severity]string{
	model.SeverityHigh:   "🔴",
	model.SeverityMedium: "🟡",
	model.SeverityLow:    "🟢",
}

var credibilityEmoji = map[string]string{
	score.LevelHigh:     "✅",
	score.LevelModerate: "⚠️",
	score.LevelLow:      "❌",
}

// entityGroups is the display order and heading for each entity label
var entityGroups = []struct {
	label   model.EntityLabel
	heading string
}{
	{model.EntityPerson, "People"},
	{model.EntityOrg, "Organizations"},
	{model.EntityGPE, "Places"},
	{model.EntityEvent, "Events"},
	{model.EntityLaw, "Laws"},
	{model.EntityProduct, "Products"},
	{model.EntityWorkOfArt, "Works"},
}

// Renderer produces Markdown and JSON reports
type Renderer struct {
	scorer        *score.Scorer
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{
		scorer:        score.NewScorer(),
		includeFooter: includeFooter,
	}
}

// RenderMarkdown renders the report sections in fixed order, separated by blank lines
func (r *Renderer) RenderMarkdown(result *model.AnalysisResult) string {
	sections := []string{
		r.header(result),
		r.claims(result.CoreClaims),
		r.language(result.LanguageAnalysis),
		r.redFlags(result.RedFlags),
		r.questions(result.VerificationQuestions),
	}
	if len(result.Entities) > 0 {
		sections = append(sections, r.entities(result.Entities, result.EntityRoles))
	}
	if result.CounterNarrative != nil {
		sections = append(sections, r.counterNarrative(result.CounterNarrative))
	}
	if result.SourceMetrics != nil {
		sections = append(sections, r.source(result.Article.Domain, result.SourceMetrics))
	}
	sections = append(sections, r.summary(result))
	if r.includeFooter {
		sections = append(sections, "---\n\n"+disclaimer)
	}
	return strings.Join(sections, "\n\n") + "\n"
}

func (r *Renderer) header(result *model.AnalysisResult) string {
	var b strings.Builder
	article := result.Article

	fmt.Fprintf(&b, "# Critical Analysis Report\n\n")
	fmt.Fprintf(&b, "**Article:** %s\n", orUnknown(article.Title))
	fmt.Fprintf(&b, "**URL:** %s\n", article.URL)
	fmt.Fprintf(&b, "**Domain:** %s\n", orUnknown(article.Domain))
	fmt.Fprintf(&b, "**Author:** %s\n", orUnknown(article.Author))
	fmt.Fprintf(&b, "**Publication Date:** %s\n", orUnknown(article.PublishDate))
	fmt.Fprintf(&b, "**Analysis Date:** %s\n\n", analysisDate(result.AnalyzedAt))
	b.WriteString("---")
	return b.String()
}

func (r *Renderer) claims(claims []model.Claim) string {
	var b strings.Builder
	b.WriteString("### Core Claims\n\n")

	if len(claims) == 0 {
		b.WriteString("*No major factual claims identified.*")
		return b.String()
	}

	for i, c := range claims {
		fmt.Fprintf(&b, "**%d.** %s\n\n", i+1, c.Claim)
		fmt.Fprintf(&b, "- **Evidence Quality:** %s %s\n", evidenceEmoji[c.EvidenceQuality], titleCase(string(c.EvidenceQuality)))
		if c.Verifiable {
			b.WriteString("- **Verifiable:** ✓ Verifiable\n")
		} else {
			b.WriteString("- **Verifiable:** ✗ Not easily verifiable\n")
		}
		fmt.Fprintf(&b, "- **Confidence:** %.1f%%\n", c.Confidence*100)
		if c.Context != "" && c.Context != c.Claim {
			fmt.Fprintf(&b, "- **Context:** %s\n", c.Context)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) language(lang model.LanguageAnalysis) string {
	var b strings.Builder
	b.WriteString("### Language & Tone Analysis\n\n")

	tone := lang.Tone
	if tone == "" {
		tone = model.ToneNeutral
	}
	fmt.Fprintf(&b, "**Overall Tone:** %s\n", titleCase(string(tone)))

	if len(lang.BiasIndicators) > 0 {
		fmt.Fprintf(&b, "\n**Bias Indicators:** %s\n", strings.Join(lang.BiasIndicators, ", "))
	}
	if len(lang.LoadedLanguage) > 0 {
		fmt.Fprintf(&b, "\n**Loaded Language:** %s\n", quoted(lang.LoadedLanguage))
	}
	if len(lang.EmotionalWords) > 0 {
		fmt.Fprintf(&b, "\n**Emotional Language:** %s\n", quoted(lang.EmotionalWords))
	}
	if len(lang.PersuasiveTechniques) > 0 {
		fmt.Fprintf(&b, "\n**Persuasive Techniques:** %s\n", strings.Join(lang.PersuasiveTechniques, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) redFlags(flags []model.RedFlag) string {
	var b strings.Builder
	b.WriteString("### Potential Red Flags\n\n")

	if len(flags) == 0 {
		b.WriteString("*No significant red flags identified.*")
		return b.String()
	}

	sorted := append([]model.RedFlag(nil), flags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() > sorted[j].Severity.Rank()
	})

	for _, f := range sorted {
		fmt.Fprintf(&b, "**%s %s** (%s)\n\n", severityEmoji[f.Severity], titleCase(strings.ReplaceAll(string(f.Type), "_", " ")), strings.ToUpper(string(f.Severity)))
		fmt.Fprintf(&b, "%s\n\n", f.Description)
		if f.Evidence != "" {
			fmt.Fprintf(&b, "- **Evidence:** %s\n", f.Evidence)
		}
		fmt.Fprintf(&b, "- **Confidence:** %.1f%%\n\n---\n\n", f.Confidence*100)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) questions(questions []model.VerificationQuestion) string {
	var b strings.Builder
	b.WriteString("### Verification Questions\n\n")

	if len(questions) == 0 {
		b.WriteString("*No specific verification questions generated.*")
		return b.String()
	}

	sorted := append([]model.VerificationQuestion(nil), questions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	for i, q := range sorted {
		priority := min(max(q.Priority, 1), 5)
		fmt.Fprintf(&b, "**%d. %s** %s (%d/5)\n\n", i+1, q.Question, strings.Repeat("🔥", priority), priority)
		fmt.Fprintf(&b, "- **Category:** %s\n", titleCase(string(q.Category)))
		if len(q.ResearchTips) > 0 {
			b.WriteString("- **Research Tips:**\n")
			for _, tip := range q.ResearchTips {
				fmt.Fprintf(&b, "  - %s\n", tip)
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) entities(entities []model.Entity, roles *model.EntityRoles) string {
	var b strings.Builder
	b.WriteString("### Key Entities\n\n")

	for _, group := range entityGroups {
		var members []model.Entity
		for _, e := range entities {
			if e.Label == group.label {
				members = append(members, e)
			}
		}
		if len(members) == 0 {
			continue
		}
		fmt.Fprintf(&b, "**%s:**\n", group.heading)
		for _, e := range members {
			if e.Context != "" {
				fmt.Fprintf(&b, "- %s _%s_ (confidence: %.0f%%)\n", e.Text, e.Context, e.Confidence*100)
			} else {
				fmt.Fprintf(&b, "- %s (confidence: %.0f%%)\n", e.Text, e.Confidence*100)
			}
		}
		b.WriteString("\n")
	}

	if roles != nil {
		if len(roles.Sources) > 0 {
			fmt.Fprintf(&b, "**Quoted Sources:** %s\n", strings.Join(roles.Sources, ", "))
		}
		if len(roles.Subjects) > 0 {
			fmt.Fprintf(&b, "**Discussed (not quoted):** %s\n", strings.Join(roles.Subjects, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) counterNarrative(cn *model.CounterNarrative) string {
	var b strings.Builder
	b.WriteString("### Alternative Perspectives\n\n")

	if cn.OpposingViewpoint != "" {
		fmt.Fprintf(&b, "**Opposing Viewpoint:** %s\n\n", cn.OpposingViewpoint)
	}
	writeList(&b, "Alternative Explanations", cn.AlternativeExplanations)
	writeList(&b, "Missing Context", cn.MissingContext)
	writeList(&b, "Potential Rebuttals", cn.PotentialRebuttals)
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) source(domain string, metrics *model.SourceMetrics) string {
	var b strings.Builder
	b.WriteString("### Source Analysis\n\n")

	if domain != "" {
		fmt.Fprintf(&b, "**Domain:** %s\n", domain)
	}
	if metrics.DomainAuthority != nil {
		fmt.Fprintf(&b, "**Domain Authority:** %.0f/100\n", *metrics.DomainAuthority)
	} else {
		b.WriteString("**Domain Authority:** Unknown\n")
	}
	fmt.Fprintf(&b, "**Bias Rating:** %s\n", orUnknown(metrics.BiasRating))
	fmt.Fprintf(&b, "**Factual Reporting:** %s\n", orUnknown(metrics.FactualReporting))
	fmt.Fprintf(&b, "**Funding Transparency:** %s\n", orUnknown(metrics.FundingTransparency))
	if metrics.DomainAge != "" {
		fmt.Fprintf(&b, "**Domain Age:** %s\n", metrics.DomainAge)
	}
	if metrics.URLStructureScore > 0 {
		fmt.Fprintf(&b, "**URL Structure:** %d/100\n", metrics.URLStructureScore)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) summary(result *model.AnalysisResult) string {
	a := r.scorer.Assess(result)

	var b strings.Builder
	b.WriteString("### Summary\n\n")
	fmt.Fprintf(&b, "**Credibility:** %s %s (%.0f%%)\n", credibilityEmoji[a.CredibilityLabel], a.CredibilityLabel, a.Credibility*100)
	fmt.Fprintf(&b, "**Bias Level:** %s (%.0f%%)\n", a.BiasLabel, a.Bias*100)
	fmt.Fprintf(&b, "**Strong Claims:** %d/%d\n", a.StrongClaims, a.TotalClaims)
	fmt.Fprintf(&b, "**High-Severity Issues:** %d\n\n", a.HighSeverityFlags)
	fmt.Fprintf(&b, "**Recommendation:** %s\n\n", a.Recommendation)

	b.WriteString("**Key Action Items:**\n")
	if n := len(result.VerificationQuestions); n > 0 {
		fmt.Fprintf(&b, "1. Verify the %d questions listed above\n", n)
	} else {
		b.WriteString("1. Identify the article's central claims and trace them to their origin\n")
	}
	b.WriteString("2. Compare coverage of the same story across outlets with different leanings\n")
	b.WriteString("3. Look for primary documents, data or recordings behind quoted figures\n")
	b.WriteString("4. Check the author's track record and the outlet's corrections policy")
	return b.String()
}

// RenderSummary writes a short terminal summary of the result
func (r *Renderer) RenderSummary(w io.Writer, result *model.AnalysisResult) {
	a := r.scorer.Assess(result)

	fmt.Fprintf(w, "\n%s\n", orUnknown(result.Article.Title))
	fmt.Fprintf(w, "%s\n\n", result.Article.URL)
	fmt.Fprintf(w, "  Credibility:  %s (%.0f%%)\n", a.CredibilityLabel, a.Credibility*100)
	fmt.Fprintf(w, "  Bias:         %s (%.0f%%)\n", a.BiasLabel, a.Bias*100)
	fmt.Fprintf(w, "  Claims:       %d (%d strong)\n", a.TotalClaims, a.StrongClaims)
	fmt.Fprintf(w, "  Red flags:    %d (%d high)\n", len(result.RedFlags), a.HighSeverityFlags)
	fmt.Fprintf(w, "  Extraction:   %s (quality %.2f)\n", result.Article.ExtractionMethod, result.Article.QualityScore)
	if result.Provider != "" {
		fmt.Fprintf(w, "  AI provider:  %s\n", result.Provider)
	}
	fmt.Fprintf(w, "\n  %s\n\n", a.Recommendation)
}

// RenderJSON encodes v as indented JSON
func (r *Renderer) RenderJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return data, nil
}

// WriteJSON writes v as indented JSON to path
func (r *Renderer) WriteJSON(path string, v any) error {
	data, err := r.RenderJSON(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// WriteMarkdown writes a rendered report to path
func (r *Renderer) WriteMarkdown(path, markdown string) error {
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:**\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func quoted(items []string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = `"` + s + `"`
	}
	return strings.Join(out, ", ")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

// analysisDate formats an RFC 3339 timestamp for display
func analysisDate(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return orUnknown(ts)
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}
