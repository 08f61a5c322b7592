package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/curioworks/curio/internal/keys"
	"github.com/curioworks/curio/store"
)

// Attribute names shared with the search planner and cascade updater.
const (
	AttrTitleLC       = "title_lc"
	AttrDescriptionLC = "description_lc"
	AttrContributor   = "contributor"
	AttrContributorLC = "contributor_lc"
	AttrTypes         = "types"
	AttrPrice         = "price"
	AttrPeriod        = "period"
	AttrCreatedAt     = "created_at"
)

// itemRow is the stored shape of an item's metadata row. Alongside the
// full item document it carries pre-lower-cased search caches, the type
// set, the period id, and a fixed-width price encoding so the base scan
// and the secondary indexes never need the source fields folded at read
// time.
type itemRow struct {
	PK   string `dynamodbav:"pk"`
	SK   string `dynamodbav:"sk"`
	Kind string `dynamodbav:"kind"`

	ID            string            `dynamodbav:"id"`
	Title         string            `dynamodbav:"title"`
	TitleLC       string            `dynamodbav:"title_lc"`
	Description   string            `dynamodbav:"description,omitempty"`
	DescriptionLC string            `dynamodbav:"description_lc,omitempty"`
	Price         int64             `dynamodbav:"price"`
	PriceSort     string            `dynamodbav:"price_sort"`
	Date          DateDescriptor    `dynamodbav:"date"`
	Dimensions    []DimensionPart   `dynamodbav:"dimensions,omitempty"`
	MediumIDs     []string          `dynamodbav:"medium_ids,omitempty"`
	MediumText    string            `dynamodbav:"medium_text,omitempty"`
	Condition     Condition         `dynamodbav:"condition"`
	Quantity      int               `dynamodbav:"quantity"`
	Images        []Image           `dynamodbav:"images,omitempty"`
	Types         []string          `dynamodbav:"types,stringset,omitempty"`
	SubjectID     string            `dynamodbav:"subject_id,omitempty"`
	TechniqueID   string            `dynamodbav:"technique_id,omitempty"`
	Period        string            `dynamodbav:"period,omitempty"`
	Contributors  []ContributorLink `dynamodbav:"contributors,omitempty"`
	Contributor   string            `dynamodbav:"contributor,omitempty"`
	ContributorLC string            `dynamodbav:"contributor_lc,omitempty"`
	CreatedAt     string            `dynamodbav:"created_at"`
}

// relRow is a relationship row: one (item, facet-or-contributor)
// association. Target duplicates the sort key into the reverse-index
// attribute so the association is queryable from the target side.
type relRow struct {
	PK     string   `dynamodbav:"pk"`
	SK     string   `dynamodbav:"sk"`
	Kind   string   `dynamodbav:"kind"`
	Target string   `dynamodbav:"gsi1pk"`
	Roles  []string `dynamodbav:"roles,omitempty"`
}

// facetRow is a facet's metadata row.
type facetRow struct {
	PK          string `dynamodbav:"pk"`
	SK          string `dynamodbav:"sk"`
	Kind        string `dynamodbav:"kind"`
	Name        string `dynamodbav:"name"`
	DisplayName string `dynamodbav:"display_name"`
}

// contributorRow is a contributor's metadata row.
type contributorRow struct {
	PK           string        `dynamodbav:"pk"`
	SK           string        `dynamodbav:"sk"`
	Kind         string        `dynamodbav:"kind"`
	ID           string        `dynamodbav:"id"`
	DisplayName  string        `dynamodbav:"display_name"`
	Biography    string        `dynamodbav:"biography,omitempty"`
	Individual   *Individual   `dynamodbav:"individual,omitempty"`
	Organization *Organization `dynamodbav:"organization,omitempty"`
}

// itemRows builds an item's full row-set: the metadata row followed by
// one relationship row per subject, technique, medium, and contributor.
func itemRows(item *Item) ([]store.Row, error) {
	meta, err := marshalRow(itemRowFrom(item))
	if err != nil {
		return nil, fmt.Errorf("marshal item %s: %w", item.ID, err)
	}

	pk := keys.ItemRef(item.ID)
	rows := []store.Row{meta}

	appendRel := func(targetRef string, roles []string) error {
		row, err := marshalRow(relRow{
			PK:     pk,
			SK:     targetRef,
			Kind:   keys.KindRelationship,
			Target: targetRef,
			Roles:  roles,
		})
		if err != nil {
			return fmt.Errorf("marshal relationship %s -> %s: %w", pk, targetRef, err)
		}
		rows = append(rows, row)
		return nil
	}

	if item.SubjectID != "" {
		if err := appendRel(keys.Ref(keys.KindSubject, item.SubjectID), nil); err != nil {
			return nil, err
		}
	}
	if item.TechniqueID != "" {
		if err := appendRel(keys.Ref(keys.KindTechnique, item.TechniqueID), nil); err != nil {
			return nil, err
		}
	}
	for _, id := range item.MediumIDs {
		if err := appendRel(keys.Ref(keys.KindMedium, id), nil); err != nil {
			return nil, err
		}
	}
	for _, link := range item.Contributors {
		if err := appendRel(keys.ContributorRef(link.ContributorID), link.Roles); err != nil {
			return nil, err
		}
	}

	return rows, nil
}

func itemRowFrom(item *Item) itemRow {
	return itemRow{
		PK:            keys.ItemRef(item.ID),
		SK:            keys.SortMetadata,
		Kind:          keys.KindItem,
		ID:            item.ID,
		Title:         item.Title,
		TitleLC:       strings.ToLower(item.Title),
		Description:   item.Description,
		DescriptionLC: strings.ToLower(item.Description),
		Price:         item.PriceCents,
		PriceSort:     keys.PriceSort(item.PriceCents),
		Date:          item.Date,
		Dimensions:    item.Dimensions,
		MediumIDs:     item.MediumIDs,
		MediumText:    item.MediumText,
		Condition:     item.Condition,
		Quantity:      item.Quantity,
		Images:        item.Images,
		Types:         item.TypeIDs,
		SubjectID:     item.SubjectID,
		TechniqueID:   item.TechniqueID,
		Period:        item.PeriodID,
		Contributors:  item.Contributors,
		Contributor:   item.ContributorName,
		ContributorLC: strings.ToLower(item.ContributorName),
		CreatedAt:     item.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// ItemFromRow decodes an item metadata row back into the domain shape.
func ItemFromRow(row store.Row) (*Item, error) {
	var r itemRow
	if err := attributevalue.UnmarshalMap(row, &r); err != nil {
		return nil, fmt.Errorf("unmarshal item row: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}

	return &Item{
		ID:              r.ID,
		Title:           r.Title,
		PriceCents:      r.Price,
		Description:     r.Description,
		Date:            r.Date,
		Dimensions:      r.Dimensions,
		MediumIDs:       r.MediumIDs,
		MediumText:      r.MediumText,
		Condition:       r.Condition,
		Quantity:        r.Quantity,
		Images:          r.Images,
		TypeIDs:         r.Types,
		SubjectID:       r.SubjectID,
		TechniqueID:     r.TechniqueID,
		PeriodID:        r.Period,
		Contributors:    r.Contributors,
		ContributorName: r.Contributor,
		CreatedAt:       createdAt,
	}, nil
}

func facetFromRow(kind FacetKind, row store.Row) (*Facet, error) {
	var r facetRow
	if err := attributevalue.UnmarshalMap(row, &r); err != nil {
		return nil, fmt.Errorf("unmarshal facet row: %w", err)
	}
	return &Facet{Kind: kind, Name: r.Name, DisplayName: r.DisplayName}, nil
}

func contributorFromRow(row store.Row) (*Contributor, error) {
	var r contributorRow
	if err := attributevalue.UnmarshalMap(row, &r); err != nil {
		return nil, fmt.Errorf("unmarshal contributor row: %w", err)
	}
	return &Contributor{
		ID:           r.ID,
		DisplayName:  r.DisplayName,
		Biography:    r.Biography,
		Individual:   r.Individual,
		Organization: r.Organization,
	}, nil
}

func marshalRow(v any) (store.Row, error) {
	m, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, err
	}
	return store.Row(m), nil
}
