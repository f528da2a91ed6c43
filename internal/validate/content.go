package validate

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Article gating thresholds
const (
	MinContentLength = 500
	MinParagraphs    = 3
	MinSentenceDots  = 5
	MinQualityScore  = 0.3
)

// Rejection reasons returned by ValidateExtractionResult
const (
	ReasonNoContent  = "no content"
	ReasonNotArticle = "not an article"
	ReasonLowQuality = "quality too low"
)

var nonArticleIndicators = []string{
	"404 not found",
	"page not found",
	"access denied",
	"login required",
	"subscribe to continue",
	"paywall",
	"premium content",
}

var newsIndicators = []string{
	"news", "times", "post", "herald", "tribune", "journal",
	"guardian", "telegraph", "reuters", "ap", "bbc", "cnn",
	"npr", "wsj", "nytimes", "washingtonpost", "bloomberg",
	"politico", "axios", "vox", "slate", "salon", "dailybeast",
}

var (
	horizontalSpace = regexp.MustCompile(`[^\S\n]+`)
	spaceAroundLF   = regexp.MustCompile(` *\n *`)
	blankLineRuns   = regexp.MustCompile(`\n{2,}`)
	multiSpace      = regexp.MustCompile(` {2,}`)
	webArtifacts    = regexp.MustCompile(`(?i)\[advertisement\]|cookie policy|privacy policy|terms of service|subscribe to newsletter|follow us on|share this article|advertisement`)
)

// ValidateURL reports whether rawURL is a well-formed http(s) URL with a host.
// It never touches the network.
func ValidateURL(rawURL string) bool {
	if rawURL == "" || strings.ContainsAny(rawURL, " \t\n") {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Hostname() != ""
}

// ExtractDomain returns the lowercase host of rawURL without port and
// leading "www.", or "" if the URL cannot be parsed
func ExtractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// IsNewsDomain reports whether the domain looks like a news outlet
func IsNewsDomain(domain string) bool {
	d := strings.ToLower(domain)
	for _, indicator := range newsIndicators {
		if strings.Contains(d, indicator) {
			return true
		}
	}
	return false
}

// IsArticleContent reports whether text has the shape of a news article:
// long enough, several paragraphs and sentences, and no error/paywall markers
func IsArticleContent(text string) bool {
	if len(text) < MinContentLength {
		return false
	}
	if strings.Count(text, "\n\n") < MinParagraphs {
		return false
	}
	if strings.Count(text, ".") < MinSentenceDots {
		return false
	}

	lower := strings.ToLower(text)
	for _, indicator := range nonArticleIndicators {
		if strings.Contains(lower, indicator) {
			return false
		}
	}
	return true
}

// CalculateContentQuality scores text in [0, 1].
//
// Components:
//   - length: up to 0.3, linear to 10,000 chars (only counted from 500 chars)
//   - paragraphs: up to 0.3, linear to 10 blank-line breaks (only counted from 3)
//   - average sentence length in [10, 100] chars: 0.2
//   - title longer than 10 chars: 0.1
//   - detected language is English: 0.1
func CalculateContentQuality(text, title string) float64 {
	if text == "" {
		return 0.0
	}

	score := 0.0
	length := float64(len(text))

	if len(text) >= MinContentLength {
		score += math.Min(0.3, length/10000*0.3)
	}

	paragraphs := strings.Count(text, "\n\n") + strings.Count(text, "\n \n")
	if paragraphs >= MinParagraphs {
		score += math.Min(0.3, float64(paragraphs)/10*0.3)
	}

	sentences := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	avgSentence := length / float64(max(sentences, 1))
	if avgSentence >= 10 && avgSentence <= 100 {
		score += 0.2
	}

	if len(title) > 10 {
		score += 0.1
	}

	if DetectLanguage(text) == "en" {
		score += 0.1
	}

	return math.Min(1.0, score)
}

// DetectLanguage returns the ISO 639-1 code of the text language, or "" if
// it cannot be determined
func DetectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return ""
	}
	return info.Lang.Iso6391()
}

// CleanContent collapses whitespace, strips common page boilerplate and
// normalizes paragraph breaks to a single blank line
func CleanContent(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = webArtifacts.ReplaceAllString(text, "")
	text = multiSpace.ReplaceAllString(text, " ")
	text = spaceAroundLF.ReplaceAllString(text, "\n")
	text = blankLineRuns.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// ValidateExtractionResult is the acceptance gate for every extraction
// strategy. It returns whether text is acceptable, a rejection reason and
// the quality score.
func ValidateExtractionResult(text, rawURL, method string) (bool, string, float64) {
	if strings.TrimSpace(text) == "" {
		return false, ReasonNoContent, 0.0
	}

	if !IsArticleContent(text) {
		return false, ReasonNotArticle, 0.0
	}

	score := CalculateContentQuality(text, "")
	if score < MinQualityScore {
		return false, ReasonLowQuality, score
	}

	return true, "", score
}
