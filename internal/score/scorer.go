package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/skeptic/internal/model"
)

// Signal types emitted by the scorer
const (
	SignalEvidence      = "evidence_quality"
	SignalVerifiability = "verifiability"
	SignalSource        = "source_authority"
	SignalIntegrity     = "structural_integrity"
	SignalTone          = "tone"
)

// Signal severities
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Signal explains one component of an estimate
type Signal struct {
	Type        string                 `json:"type"`
	Severity    string                 `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// Estimate is the heuristic credibility and bias score used when no AI
// analysis is available
type Estimate struct {
	Credibility    float64  `json:"credibility"`
	BiasConfidence float64  `json:"bias_confidence"`
	Signals        []Signal `json:"signals"`
}

// Scorer calculates heuristic scores and reader-facing assessments
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Estimate scores credibility out of 100 points (evidence 40, verifiability
// 20, source 20, structural integrity 20) and bias from tone and rhetoric
func (s *Scorer) Estimate(claims []model.Claim, flags []model.RedFlag, language model.LanguageAnalysis, metrics *model.SourceMetrics) Estimate {
	var signals []Signal

	evidenceScore, evidenceSignal := s.evidenceScore(claims)
	signals = append(signals, evidenceSignal)

	verifiableScore, verifiableSignal := s.verifiabilityScore(claims)
	signals = append(signals, verifiableSignal)

	sourceScore, sourceSignal := s.sourceScore(metrics)
	signals = append(signals, sourceSignal)

	integrityScore, integritySignal := s.integrityScore(flags)
	signals = append(signals, integritySignal)

	bias, toneSignal := s.biasScore(flags, language)
	signals = append(signals, toneSignal)

	total := evidenceScore + verifiableScore + sourceScore + integrityScore

	return Estimate{
		Credibility:    model.Clamp01(float64(total) / 100),
		BiasConfidence: bias,
		Signals:        signals,
	}
}

var evidenceWeight = map[model.EvidenceQuality]float64{
	model.EvidenceStrong:   1.0,
	model.EvidenceModerate: 0.6,
	model.EvidenceWeak:     0.3,
	model.EvidenceNone:     0.0,
}

// evidenceScore calculates evidence quality score (0-40 points)
func (s *Scorer) evidenceScore(claims []model.Claim) (int, Signal) {
	if len(claims) == 0 {
		return 0, Signal{
			Type:        SignalEvidence,
			Severity:    SeverityCritical,
			Description: "No claims extracted",
			Data:        map[string]interface{}{"claims": 0},
		}
	}

	var weighted float64
	counts := make(map[model.EvidenceQuality]int)
	for _, c := range claims {
		weighted += evidenceWeight[c.EvidenceQuality]
		counts[c.EvidenceQuality]++
	}
	ratio := weighted / float64(len(claims))
	score := int(math.Round(ratio * 40))

	severity := SeverityInfo
	if ratio < 0.3 {
		severity = SeverityCritical
	} else if ratio < 0.6 {
		severity = SeverityWarning
	}

	return score, Signal{
		Type:        SignalEvidence,
		Severity:    severity,
		Description: fmt.Sprintf("Evidence: %d strong, %d moderate, %d weak, %d none", counts[model.EvidenceStrong], counts[model.EvidenceModerate], counts[model.EvidenceWeak], counts[model.EvidenceNone]),
		Data: map[string]interface{}{
			"claims":  len(claims),
			"ratio":   ratio,
			"score":   score,
			"formula": "(strong*1 + moderate*0.6 + weak*0.3) / claims * 40",
		},
	}
}

// verifiabilityScore calculates verifiable-claim share (0-20 points)
func (s *Scorer) verifiabilityScore(claims []model.Claim) (int, Signal) {
	if len(claims) == 0 {
		return 0, Signal{
			Type:        SignalVerifiability,
			Severity:    SeverityWarning,
			Description: "No claims to verify",
			Data:        map[string]interface{}{"claims": 0},
		}
	}

	verifiable := 0
	for _, c := range claims {
		if c.Verifiable {
			verifiable++
		}
	}
	ratio := float64(verifiable) / float64(len(claims))
	score := int(math.Round(ratio * 20))

	severity := SeverityInfo
	if ratio < 0.5 {
		severity = SeverityWarning
	}

	return score, Signal{
		Type:        SignalVerifiability,
		Severity:    severity,
		Description: fmt.Sprintf("Verifiable claims: %d/%d", verifiable, len(claims)),
		Data: map[string]interface{}{
			"verifiable": verifiable,
			"claims":     len(claims),
			"score":      score,
			"formula":    "verifiable / claims * 20",
		},
	}
}

// sourceScore maps domain authority onto 0-20 points; unknown domains get 10
func (s *Scorer) sourceScore(metrics *model.SourceMetrics) (int, Signal) {
	if metrics == nil || metrics.DomainAuthority == nil {
		return 10, Signal{
			Type:        SignalSource,
			Severity:    SeverityInfo,
			Description: "No domain authority data available (assuming moderate)",
			Data:        map[string]interface{}{"score": 10},
		}
	}

	authority := *metrics.DomainAuthority
	score := int(math.Round(authority / 100 * 20))

	severity := SeverityInfo
	if authority < 50 {
		severity = SeverityWarning
	}

	return score, Signal{
		Type:        SignalSource,
		Severity:    severity,
		Description: fmt.Sprintf("Domain authority: %.0f/100", authority),
		Data: map[string]interface{}{
			"authority": authority,
			"score":     score,
			"formula":   "authority / 100 * 20",
		},
	}
}

var severityPenalty = map[model.Severity]int{
	model.SeverityHigh:   8,
	model.SeverityMedium: 4,
	model.SeverityLow:    2,
}

// integrityScore subtracts red-flag penalties from 20 points
func (s *Scorer) integrityScore(flags []model.RedFlag) (int, Signal) {
	penalty := 0
	for _, f := range flags {
		penalty += severityPenalty[f.Severity]
	}
	score := 20 - penalty
	if score < 0 {
		score = 0
	}

	severity := SeverityInfo
	if score < 8 {
		severity = SeverityCritical
	} else if score < 16 {
		severity = SeverityWarning
	}

	return score, Signal{
		Type:        SignalIntegrity,
		Severity:    severity,
		Description: fmt.Sprintf("Red flags: %d (penalty %d)", len(flags), penalty),
		Data: map[string]interface{}{
			"red_flags": len(flags),
			"penalty":   penalty,
			"score":     score,
			"formula":   "20 - (high*8 + medium*4 + low*2)",
		},
	}
}

var toneBase = map[model.Tone]float64{
	model.ToneNeutral:      0.1,
	model.TonePersuasive:   0.35,
	model.ToneEmotional:    0.5,
	model.ToneInflammatory: 0.7,
}

var rhetoricalFlags = map[model.BiasType]bool{
	model.BiasFraming:               true,
	model.BiasEmotionalManipulation: true,
	model.BiasSelection:             true,
	model.BiasSource:                true,
}

// biasScore starts from the tone and adds loaded language, persuasive
// techniques and medium-or-worse rhetorical flags
func (s *Scorer) biasScore(flags []model.RedFlag, language model.LanguageAnalysis) (float64, Signal) {
	base, ok := toneBase[language.Tone]
	if !ok {
		base = toneBase[model.ToneNeutral]
	}

	rhetorical := 0
	for _, f := range flags {
		if rhetoricalFlags[f.Type] && f.Severity.Rank() >= model.SeverityMedium.Rank() {
			rhetorical++
		}
	}

	bias := base +
		0.02*float64(len(language.LoadedLanguage)) +
		0.03*float64(len(language.PersuasiveTechniques)) +
		0.05*float64(rhetorical)
	bias = model.Clamp01(bias)

	severity := SeverityInfo
	if bias > 0.6 {
		severity = SeverityCritical
	} else if bias > 0.3 {
		severity = SeverityWarning
	}

	return bias, Signal{
		Type:        SignalTone,
		Severity:    severity,
		Description: fmt.Sprintf("Tone %s with %d loaded terms and %d persuasive techniques", language.Tone, len(language.LoadedLanguage), len(language.PersuasiveTechniques)),
		Data: map[string]interface{}{
			"base":       base,
			"rhetorical": rhetorical,
			"bias":       bias,
			"formula":    "tone_base + 0.02*loaded + 0.03*techniques + 0.05*rhetorical_flags",
		},
	}
}
