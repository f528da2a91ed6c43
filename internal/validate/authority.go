package validate

import (
	"strings"
	"unicode"

	"github.com/ppiankov/skeptic/internal/model"
)

// Static reputation tables for well-known outlets
var (
	domainAuthority = map[string]float64{
		"reuters.com":        95,
		"ap.org":             95,
		"bbc.com":            90,
		"nytimes.com":        90,
		"washingtonpost.com": 88,
		"wsj.com":            88,
		"npr.org":            85,
		"cnn.com":            82,
		"bloomberg.com":      85,
		"theguardian.com":    83,
		"politico.com":       80,
		"axios.com":          78,
		"vox.com":            75,
		"slate.com":          72,
	}

	biasRatings = map[string]string{
		"reuters.com":        "Least Biased",
		"ap.org":             "Least Biased",
		"bbc.com":            "Least Biased",
		"npr.org":            "Least Biased",
		"bloomberg.com":      "Least Biased",
		"axios.com":          "Least Biased",
		"nytimes.com":        "Left-Center",
		"washingtonpost.com": "Left-Center",
		"theguardian.com":    "Left-Center",
		"cnn.com":            "Left-Center",
		"politico.com":       "Left-Center",
		"vox.com":            "Left",
		"slate.com":          "Left",
		"wsj.com":            "Right-Center",
	}

	factualRatings = map[string]string{
		"reuters.com":        "Very High",
		"ap.org":             "Very High",
		"bbc.com":            "Very High",
		"npr.org":            "Very High",
		"nytimes.com":        "High",
		"washingtonpost.com": "High",
		"wsj.com":            "High",
		"bloomberg.com":      "High",
		"theguardian.com":    "High",
		"politico.com":       "High",
		"axios.com":          "High",
		"cnn.com":            "Mostly Factual",
		"vox.com":            "Mostly Factual",
		"slate.com":          "Mostly Factual",
	}

	fundingInfo = map[string]string{
		"reuters.com":        "Thomson Reuters Corporation (Publicly Traded)",
		"ap.org":             "Member-funded cooperative",
		"bbc.com":            "Publicly funded (UK)",
		"npr.org":            "Public radio (donations, grants)",
		"nytimes.com":        "The New York Times Company (Publicly Traded)",
		"washingtonpost.com": "Nash Holdings (Jeff Bezos)",
		"wsj.com":            "News Corp (Rupert Murdoch)",
		"cnn.com":            "Warner Bros. Discovery",
		"bloomberg.com":      "Bloomberg L.P. (Michael Bloomberg)",
		"theguardian.com":    "Scott Trust Limited",
		"politico.com":       "Axel Springer SE",
		"vox.com":            "Vox Media",
		"axios.com":          "Axios Media",
		"slate.com":          "The Slate Group",
	}

	establishedDomains = map[string]string{
		"reuters.com":        "1990s",
		"nytimes.com":        "1996",
		"bbc.com":            "1997",
		"cnn.com":            "1995",
		"washingtonpost.com": "1996",
	}

	authorityNewsIndicators = []string{"news", "times", "post", "herald", "tribune", "journal"}
	suspiciousIndicators    = []string{"blog", "wordpress", "blogspot", "medium.com"}
)

// SourceRater looks up reputation metrics for a publishing domain.
// Overrides take precedence over the built-in authority table.
type SourceRater struct {
	overrides map[string]float64
}

// NewSourceRater creates a rater; overrides may be nil
func NewSourceRater(overrides map[string]float64) *SourceRater {
	if overrides == nil {
		overrides = map[string]float64{}
	}
	return &SourceRater{overrides: overrides}
}

// Rate returns the metrics for domain. It never fails: unknown domains get
// heuristic authority and "Unknown" ratings.
func (r *SourceRater) Rate(domain string) model.SourceMetrics {
	domain = strings.TrimPrefix(strings.ToLower(domain), "www.")
	authority := r.Authority(domain)

	return model.SourceMetrics{
		DomainAuthority:     &authority,
		BiasRating:          BiasRating(domain),
		FactualReporting:    FactualReporting(domain),
		FundingTransparency: FundingTransparency(domain),
		DomainAge:           DomainAge(domain),
	}
}

// Authority returns a 0-100 authority score for domain
func (r *SourceRater) Authority(domain string) float64 {
	if score, ok := r.overrides[domain]; ok {
		return score
	}
	if score, ok := domainAuthority[domain]; ok {
		return score
	}

	score := 50.0

	if strings.HasSuffix(domain, ".gov") {
		score += 30
	} else if strings.HasSuffix(domain, ".edu") {
		score += 25
	}

	if containsAny(domain, authorityNewsIndicators) {
		score += 10
	}
	if containsAny(domain, suspiciousIndicators) {
		score -= 15
	}

	if len(strings.Split(domain, ".")) > 3 || strings.IndexFunc(domain, unicode.IsDigit) >= 0 {
		score -= 10
	}

	return min(100.0, max(0.0, score))
}

// BiasRating returns the political bias rating for domain
func BiasRating(domain string) string {
	if rating, ok := biasRatings[domain]; ok {
		return rating
	}
	if strings.HasSuffix(domain, ".gov") {
		return "Least Biased"
	}
	return "Unknown"
}

// FactualReporting returns the factual reporting rating for domain
func FactualReporting(domain string) string {
	if rating, ok := factualRatings[domain]; ok {
		return rating
	}
	if strings.HasSuffix(domain, ".gov") || strings.HasSuffix(domain, ".edu") {
		return "High"
	}
	return "Unknown"
}

// FundingTransparency returns the ownership/funding description for domain
func FundingTransparency(domain string) string {
	if info, ok := fundingInfo[domain]; ok {
		return info
	}
	if strings.HasSuffix(domain, ".gov") {
		return "Government funded"
	}
	if strings.HasSuffix(domain, ".edu") {
		return "Educational institution"
	}
	return "Unknown ownership"
}

// DomainAge returns when a well-known domain was established, or "Unknown"
func DomainAge(domain string) string {
	if established, ok := establishedDomains[domain]; ok {
		return established
	}
	return "Unknown"
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
