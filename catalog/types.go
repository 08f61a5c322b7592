package catalog

import "time"

// FacetKind names a classification dimension an item can be tagged with.
type FacetKind string

const (
	FacetType      FacetKind = "type"
	FacetSubject   FacetKind = "subject"
	FacetTechnique FacetKind = "technique"
	FacetPeriod    FacetKind = "period"
	FacetMedium    FacetKind = "medium"
)

// FacetKinds lists all facet dimensions.
var FacetKinds = []FacetKind{FacetType, FacetSubject, FacetTechnique, FacetPeriod, FacetMedium}

// Valid reports whether k is a known facet kind.
func (k FacetKind) Valid() bool {
	for _, known := range FacetKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Facet is one value of a classification dimension. Name is the
// immutable system identifier; DisplayName is mutable.
type Facet struct {
	Kind        FacetKind `json:"kind"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
}

// Individual holds the person-specific fields of a contributor.
type Individual struct {
	FirstName  string `json:"first_name" dynamodbav:"first_name"`
	MiddleName string `json:"middle_name,omitempty" dynamodbav:"middle_name,omitempty"`
	LastName   string `json:"last_name" dynamodbav:"last_name"`
	BirthYear  int    `json:"birth_year,omitempty" dynamodbav:"birth_year,omitempty"`
	DeathYear  int    `json:"death_year,omitempty" dynamodbav:"death_year,omitempty"`
	Living     bool   `json:"living" dynamodbav:"living"`
}

// Organization holds the organization-specific fields of a contributor.
type Organization struct {
	Name       string `json:"name" dynamodbav:"name"`
	Founded    int    `json:"founded,omitempty" dynamodbav:"founded,omitempty"`
	Dissolved  int    `json:"dissolved,omitempty" dynamodbav:"dissolved,omitempty"`
	Active     bool   `json:"active" dynamodbav:"active"`
}

// Contributor is a person or organization credited on items. Exactly one
// of Individual or Organization is set. The identifier is derived from
// the name fields at creation and never changes; DisplayName is mutable
// and denormalized onto items (see Cascade).
type Contributor struct {
	ID           string        `json:"id"`
	DisplayName  string        `json:"display_name"`
	Biography    string        `json:"biography,omitempty"`
	Individual   *Individual   `json:"individual,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
}

// DateDescriptor is an item's date: an exact year, a year range, or a
// free-text period, with an approximate flag.
type DateDescriptor struct {
	Year        int    `json:"year,omitempty" dynamodbav:"year,omitempty"`
	YearStart   int    `json:"year_start,omitempty" dynamodbav:"year_start,omitempty"`
	YearEnd     int    `json:"year_end,omitempty" dynamodbav:"year_end,omitempty"`
	PeriodText  string `json:"period_text,omitempty" dynamodbav:"period_text,omitempty"`
	Approximate bool   `json:"approximate" dynamodbav:"approximate"`
}

// DimensionPart is one named measured part of an item.
type DimensionPart struct {
	Name     string  `json:"name" dynamodbav:"name"`
	Height   float64 `json:"height,omitempty" dynamodbav:"height,omitempty"`
	Width    float64 `json:"width,omitempty" dynamodbav:"width,omitempty"`
	Depth    float64 `json:"depth,omitempty" dynamodbav:"depth,omitempty"`
	Diameter float64 `json:"diameter,omitempty" dynamodbav:"diameter,omitempty"`
	Unit     string  `json:"unit" dynamodbav:"unit"`
}

// Condition is an item's condition status plus free text.
type Condition struct {
	Status string `json:"status,omitempty" dynamodbav:"status,omitempty"`
	Notes  string `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
}

// Image is one entry of an item's ordered image list.
type Image struct {
	URL     string `json:"url" dynamodbav:"url"`
	Primary bool   `json:"primary" dynamodbav:"primary"`
}

// ContributorLink associates an item with a contributor in given roles.
type ContributorLink struct {
	ContributorID string   `json:"contributor_id" dynamodbav:"contributor_id"`
	Roles         []string `json:"roles,omitempty" dynamodbav:"roles,omitempty"`
}

// Item is a catalog entry. ContributorName is a denormalized copy of the
// primary (first-listed) contributor's display name; it is filled from
// the contributor row on create when left empty and kept current by the
// Cascade when the contributor is renamed.
type Item struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	PriceCents   int64             `json:"price_cents"`
	Description  string            `json:"description,omitempty"`
	Date         DateDescriptor    `json:"date"`
	Dimensions   []DimensionPart   `json:"dimensions,omitempty"`
	MediumIDs    []string          `json:"medium_ids,omitempty"`
	MediumText   string            `json:"medium_text,omitempty"`
	Condition    Condition         `json:"condition"`
	Quantity     int               `json:"quantity"`
	Images       []Image           `json:"images,omitempty"`
	TypeIDs      []string          `json:"type_ids,omitempty"`
	SubjectID    string            `json:"subject_id,omitempty"`
	TechniqueID  string            `json:"technique_id,omitempty"`
	PeriodID     string            `json:"period_id,omitempty"`
	Contributors []ContributorLink `json:"contributors,omitempty"`

	ContributorName string    `json:"contributor_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
