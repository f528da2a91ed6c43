package score

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	datePathPattern     = regexp.MustCompile(`/\d{4}/`)
	trackingParams      = regexp.MustCompile(`(^|&)(utm_|ref=|source=)`)
	establishedTLDs     = map[string]bool{"com": true, "org": true, "gov": true, "edu": true}
	freeTLDs            = map[string]bool{"tk": true, "ml": true, "ga": true, "cf": true}
	maxTrustedDepth     = 5
	urlBaselineScore    = 50
	urlScoreCeiling     = 100
	urlScoreFloor       = 0
	subdomainPenalty    = 10
	deepPathPenalty     = 5
	freeTLDPenalty      = 20
	datePathBonus       = 10
	establishedTLDBonus = 5
)

// URLStructure describes credibility cues in an article URL
type URLStructure struct {
	Domain            string `json:"domain"`
	PathDepth         int    `json:"path_depth"`
	HasDateInPath     bool   `json:"has_date_in_path"`
	HasTrackingParams bool   `json:"has_tracking_params"`
	IsSubdomain       bool   `json:"is_subdomain"`
	TLD               string `json:"tld,omitempty"`
	Score             int    `json:"score"` // 0-100, baseline 50
}

// AnalyzeURLStructure scores a URL from a baseline of 50: a /YYYY/ path
// segment adds 10, a com/org/gov/edu TLD adds 5; a subdomain other than www
// subtracts 10, more than 5 path segments 5, and a free TLD 20.
func AnalyzeURLStructure(rawURL string) URLStructure {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return URLStructure{Score: urlBaselineScore}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	labels := strings.Split(host, ".")

	s := URLStructure{
		Domain:            host,
		HasDateInPath:     datePathPattern.MatchString(u.Path),
		HasTrackingParams: trackingParams.MatchString(u.RawQuery),
		IsSubdomain:       len(labels) > 2,
	}
	for _, segment := range strings.Split(u.Path, "/") {
		if segment != "" {
			s.PathDepth++
		}
	}
	if len(labels) > 1 {
		s.TLD = labels[len(labels)-1]
	}

	score := urlBaselineScore
	if s.HasDateInPath {
		score += datePathBonus
	}
	if establishedTLDs[s.TLD] {
		score += establishedTLDBonus
	}
	if s.IsSubdomain {
		score -= subdomainPenalty
	}
	if s.PathDepth > maxTrustedDepth {
		score -= deepPathPenalty
	}
	if freeTLDs[s.TLD] {
		score -= freeTLDPenalty
	}

	s.Score = min(max(score, urlScoreFloor), urlScoreCeiling)
	return s
}
