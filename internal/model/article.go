package model

// ArticleContent is the normalized article produced by the extraction chain.
// Only empty Title, Author and PublishDate may be filled in afterwards
// (by the metadata enricher) before the article is analyzed.
type ArticleContent struct {
	URL              string  `json:"url"`
	Title            string  `json:"title,omitempty"`
	Content          string  `json:"content"`
	Author           string  `json:"author,omitempty"`
	PublishDate      string  `json:"publish_date,omitempty"`
	Domain           string  `json:"domain"`
	Language         string  `json:"language,omitempty"`
	QualityScore     float64 `json:"quality_score"`
	ExtractionMethod string  `json:"extraction_method"` // Name of the winning strategy
}

// EntityLabel is the named-entity category
type EntityLabel string

const (
	EntityPerson    EntityLabel = "PERSON"
	EntityOrg       EntityLabel = "ORG"
	EntityGPE       EntityLabel = "GPE"
	EntityEvent     EntityLabel = "EVENT"
	EntityLaw       EntityLabel = "LAW"
	EntityProduct   EntityLabel = "PRODUCT"
	EntityWorkOfArt EntityLabel = "WORK_OF_ART"
)

// Entity is a named entity found in the article
type Entity struct {
	Text       string      `json:"text"`
	Label      EntityLabel `json:"label"`
	Confidence float64     `json:"confidence"`
	Context    string      `json:"context,omitempty"` // Sentence the entity appears in
}

// EntityRoles groups entities by the role they play in the article
type EntityRoles struct {
	Sources       []string `json:"sources"`       // People quoted or cited
	Organizations []string `json:"organizations"` // Organizations mentioned
	Locations     []string `json:"locations"`     // Places
	Subjects      []string `json:"subjects"`      // People discussed but not quoted
}

// SourceMetrics describes the publishing domain.
// DomainAuthority is nil when the domain is not in the lookup table.
type SourceMetrics struct {
	DomainAuthority     *float64 `json:"domain_authority,omitempty"`
	BiasRating          string   `json:"bias_rating,omitempty"`
	FactualReporting    string   `json:"factual_reporting,omitempty"`
	FundingTransparency string   `json:"funding_transparency,omitempty"`
	DomainAge           string   `json:"domain_age,omitempty"`
	URLStructureScore   int      `json:"url_structure_score,omitempty"`
}
