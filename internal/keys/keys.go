// Package keys owns the key-construction rules for catalog rows.
package keys

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// SortMetadata is the sort key of an entity's metadata row. Relationship
// rows use the target's ref as their sort key, so an item's metadata row
// and all its relationship rows share one partition.
const SortMetadata = "METADATA"

// Entity kind markers stored on every row.
const (
	KindItem         = "item"
	KindContributor  = "contributor"
	KindType         = "type"
	KindSubject      = "subject"
	KindTechnique    = "technique"
	KindPeriod       = "period"
	KindMedium       = "medium"
	KindRelationship = "relationship"
)

// Ref builds the type-qualified reference used as a partition key and
// as the reverse-index key of relationship rows (e.g. "ITEM#42",
// "SUBJECT#still_life").
func Ref(kind, id string) string {
	return fmt.Sprintf("%s#%s", strings.ToUpper(kind), id)
}

// ItemRef returns the partition key for an item's row-set.
func ItemRef(id string) string { return Ref(KindItem, id) }

// ContributorRef returns a contributor's ref.
func ContributorRef(id string) string { return Ref(KindContributor, id) }

// NewItemID generates a random item identifier for callers that do not
// supply one.
func NewItemID() string {
	return uuid.New().String()
}

// Slug derives a stable identifier from human-entered name parts:
// lower-cased, non-alphanumeric runs collapsed to single underscores,
// empty parts dropped. Slug("Jane", "", "Doe") == "jane_doe".
func Slug(parts ...string) string {
	var words []string
	for _, part := range parts {
		for _, w := range splitWords(part) {
			words = append(words, strings.ToLower(w))
		}
	}
	return strings.Join(words, "_")
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// PriceSort encodes a non-negative price in cents as a fixed-width,
// zero-padded decimal so lexicographic row order equals numeric order.
func PriceSort(cents int64) string {
	if cents < 0 {
		cents = 0
	}
	return fmt.Sprintf("%012d", cents)
}
