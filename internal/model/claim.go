package model

// EvidenceQuality grades how well a claim is supported in the article
type EvidenceQuality string

const (
	EvidenceStrong   EvidenceQuality = "strong"
	EvidenceModerate EvidenceQuality = "moderate"
	EvidenceWeak     EvidenceQuality = "weak"
	EvidenceNone     EvidenceQuality = "none"
)

// ParseEvidenceQuality maps a free-form value onto a known tier (none if unknown)
func ParseEvidenceQuality(s string) EvidenceQuality {
	switch q := EvidenceQuality(s); q {
	case EvidenceStrong, EvidenceModerate, EvidenceWeak, EvidenceNone:
		return q
	default:
		return EvidenceNone
	}
}

// Claim is a factual assertion made by the article
type Claim struct {
	Claim           string          `json:"claim"`
	EvidenceQuality EvidenceQuality `json:"evidence_quality"`
	Verifiable      bool            `json:"verifiable"`
	Context         string          `json:"context,omitempty"`
	Confidence      float64         `json:"confidence"`
}

// MaxClaims caps the reconciled claim list
const MaxClaims = 8
