package analysis

import (
	"fmt"
	"strings"

	"github.com/ppiankov/skeptic/internal/model"
)

// sourceCategories are the keyword groups used to estimate source diversity
var sourceCategories = []struct {
	name     string
	keywords []string
}{
	{"government", []string{"official", "spokesperson", "administration", "department"}},
	{"expert", []string{"professor", "researcher", "analyst", "expert"}},
	{"industry", []string{"executive", "company", "corporation", "business"}},
	{"advocacy", []string{"activist", "advocate", "group", "organization"}},
}

// balanceIndicators signal that an opposing view is presented.
// Matching is by substring, so "but" also matches inside longer words.
var balanceIndicators = []string{
	"however", "but", "on the other hand", "critics argue",
	"opposing view", "alternative perspective", "others believe",
}

const (
	minDiversity        = 0.3
	longArticleChars    = 1000
	mediumArticleChars  = 500
	minBalanceIndicator = 2
)

// DetectStructuralBias runs the source, statistics, fallacy and selection checks
func (d *BiasDetector) DetectStructuralBias(content string) []model.RedFlag {
	flags := make([]model.RedFlag, 0)
	flags = append(flags, d.checkSourceBias(content)...)
	flags = append(flags, d.checkStatisticalMisuse(content)...)
	flags = append(flags, d.checkLogicalFallacies(content)...)
	flags = append(flags, checkSelectionBias(content)...)
	return flags
}

func (d *BiasDetector) checkSourceBias(content string) []model.RedFlag {
	var flags []model.RedFlag

	anonymous := 0
	for _, re := range d.anonymousSources {
		anonymous += len(re.FindAllStringIndex(content, -1))
	}

	switch {
	case anonymous > 3:
		flags = append(flags, model.RedFlag{
			Type:        model.BiasSource,
			Description: fmt.Sprintf("Heavy reliance on anonymous sources (%d instances)", anonymous),
			Severity:    model.SeverityHigh,
			Evidence:    "Multiple unnamed sources without verification",
			Confidence:  0.8,
		})
	case anonymous > 1:
		flags = append(flags, model.RedFlag{
			Type:        model.BiasSource,
			Description: fmt.Sprintf("Multiple anonymous sources (%d instances)", anonymous),
			Severity:    model.SeverityMedium,
			Evidence:    "Some unnamed sources present",
			Confidence:  0.6,
		})
	}

	if SourceDiversity(content) < minDiversity {
		flags = append(flags, model.RedFlag{
			Type:        model.BiasSource,
			Description: "Limited source diversity - potential echo chamber",
			Severity:    model.SeverityMedium,
			Evidence:    "Most information comes from similar sources",
			Confidence:  0.7,
		})
	}

	return flags
}

// SourceDiversity returns the fraction of source categories mentioned in content
func SourceDiversity(content string) float64 {
	lower := strings.ToLower(content)
	found := 0
	for _, cat := range sourceCategories {
		if containsAny(lower, cat.keywords) {
			found++
		}
	}
	return float64(found) / float64(len(sourceCategories))
}

func (d *BiasDetector) checkStatisticalMisuse(content string) []model.RedFlag {
	var flags []model.RedFlag

	stats := 0
	for _, re := range d.statistics {
		stats += len(re.FindAllStringIndex(content, -1))
	}

	contexts := 0
	for _, re := range d.statContext {
		if re.MatchString(content) {
			contexts++
		}
	}

	if stats > 2 && contexts == 0 {
		flags = append(flags, model.RedFlag{
			Type:        model.BiasStatisticalMisuse,
			Description: "Statistics presented without proper context or comparison",
			Severity:    model.SeverityMedium,
			Evidence:    fmt.Sprintf("Found %d statistical claims with minimal context", stats),
			Confidence:  0.7,
		})
	}

	cherry := 0
	for _, re := range d.cherryPicking {
		if re.MatchString(content) {
			cherry++
		}
	}

	if cherry > 2 {
		flags = append(flags, model.RedFlag{
			Type:        model.BiasStatisticalMisuse,
			Description: "Potential cherry-picking of extreme statistics",
			Severity:    model.SeverityMedium,
			Evidence:    fmt.Sprintf("Multiple 'record' or 'unprecedented' claims (%d)", cherry),
			Confidence:  0.6,
		})
	}

	return flags
}

func (d *BiasDetector) checkLogicalFallacies(content string) []model.RedFlag {
	var flags []model.RedFlag

	for _, re := range d.adHominem {
		if m := re.FindString(content); m != "" {
			flags = append(flags, model.RedFlag{
				Type:        model.BiasLogicalFallacy,
				Description: "Potential ad hominem attack - attacking the person rather than the argument",
				Severity:    model.SeverityMedium,
				Evidence:    fmt.Sprintf("Pattern found: %q", m),
				Confidence:  0.6,
			})
			break
		}
	}

	for _, re := range d.strawMan {
		if m := re.FindString(content); m != "" {
			flags = append(flags, model.RedFlag{
				Type:        model.BiasLogicalFallacy,
				Description: "Potential straw man argument - misrepresenting opposing views",
				Severity:    model.SeverityMedium,
				Evidence:    fmt.Sprintf("Pattern found: %q", m),
				Confidence:  0.5,
			})
			break
		}
	}

	return flags
}

func checkSelectionBias(content string) []model.RedFlag {
	balance := countPresent(strings.ToLower(content), balanceIndicators)

	switch {
	case len(content) > longArticleChars && balance == 0:
		return []model.RedFlag{{
			Type:        model.BiasSelection,
			Description: "No opposing viewpoints or alternative perspectives presented",
			Severity:    model.SeverityHigh,
			Evidence:    "Article lacks balance in perspective",
			Confidence:  0.8,
		}}
	case len(content) > mediumArticleChars && balance < minBalanceIndicator:
		return []model.RedFlag{{
			Type:        model.BiasSelection,
			Description: "Limited opposing viewpoints presented",
			Severity:    model.SeverityMedium,
			Evidence:    "Minimal alternative perspectives",
			Confidence:  0.6,
		}}
	}
	return nil
}
