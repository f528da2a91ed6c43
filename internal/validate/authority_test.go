package validate

import (
	"testing"
)

func TestSourceRater_KnownDomains(t *testing.T) {
	rater := NewSourceRater(nil)

	tests := []struct {
		domain    string
		authority float64
		bias      string
		factual   string
		funding   string
	}{
		{"reuters.com", 95, "Least Biased", "Very High", "Thomson Reuters Corporation (Publicly Traded)"},
		{"nytimes.com", 90, "Left-Center", "High", "The New York Times Company (Publicly Traded)"},
		{"wsj.com", 88, "Right-Center", "High", "News Corp (Rupert Murdoch)"},
		{"vox.com", 75, "Left", "Mostly Factual", "Vox Media"},
		{"www.bbc.com", 90, "Least Biased", "Very High", "Publicly funded (UK)"},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			m := rater.Rate(tt.domain)
			if m.DomainAuthority == nil || *m.DomainAuthority != tt.authority {
				t.Errorf("Expected authority %v, got %v", tt.authority, m.DomainAuthority)
			}
			if m.BiasRating != tt.bias {
				t.Errorf("Expected bias %q, got %q", tt.bias, m.BiasRating)
			}
			if m.FactualReporting != tt.factual {
				t.Errorf("Expected factual %q, got %q", tt.factual, m.FactualReporting)
			}
			if m.FundingTransparency != tt.funding {
				t.Errorf("Expected funding %q, got %q", tt.funding, m.FundingTransparency)
			}
		})
	}
}

func TestSourceRater_HeuristicAuthority(t *testing.T) {
	rater := NewSourceRater(nil)

	tests := []struct {
		domain string
		want   float64
		desc   string
	}{
		{"census.gov", 80, "government bonus"},
		{"mit.edu", 75, "educational bonus"},
		{"dailyherald.com", 60, "news indicator"},
		{"myblog.wordpress.com", 35, "suspicious host"},
		{"news24.example.co.uk", 50, "news indicator, deep host with digits"},
		{"example.com", 50, "baseline"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := rater.Authority(tt.domain); got != tt.want {
				t.Errorf("Authority(%q) = %v, want %v", tt.domain, got, tt.want)
			}
		})
	}
}

func TestSourceRater_Overrides(t *testing.T) {
	rater := NewSourceRater(map[string]float64{"reuters.com": 40})
	if got := rater.Authority("reuters.com"); got != 40 {
		t.Errorf("Expected override 40, got %v", got)
	}
}

func TestSourceRater_UnknownAndInstitutional(t *testing.T) {
	tests := []struct {
		domain  string
		bias    string
		factual string
		funding string
	}{
		{"example.com", "Unknown", "Unknown", "Unknown ownership"},
		{"nasa.gov", "Least Biased", "High", "Government funded"},
		{"stanford.edu", "Unknown", "High", "Educational institution"},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			if got := BiasRating(tt.domain); got != tt.bias {
				t.Errorf("BiasRating = %q, want %q", got, tt.bias)
			}
			if got := FactualReporting(tt.domain); got != tt.factual {
				t.Errorf("FactualReporting = %q, want %q", got, tt.factual)
			}
			if got := FundingTransparency(tt.domain); got != tt.funding {
				t.Errorf("FundingTransparency = %q, want %q", got, tt.funding)
			}
		})
	}
}

func TestDomainAge(t *testing.T) {
	if got := DomainAge("cnn.com"); got != "1995" {
		t.Errorf("Expected 1995, got %q", got)
	}
	if got := DomainAge("example.com"); got != "Unknown" {
		t.Errorf("Expected Unknown, got %q", got)
	}
}
