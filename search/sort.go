package search

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/curioworks/curio/catalog"
)

// sortItems orders the result set in place. The scan yields rows in
// arbitrary key order, so items are first put in insertion order; the
// requested ordering is then applied stably on top, which keeps items
// with equal sort keys in their relative insertion order. Title
// ordering is locale-aware via the collator rather than byte order.
func sortItems(items []*catalog.Item, by Sort) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	switch by {
	case SortOldest:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
	case SortPriceAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].PriceCents < items[j].PriceCents
		})
	case SortPriceDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].PriceCents > items[j].PriceCents
		})
	case SortTitleAsc:
		c := newCollator()
		sort.SliceStable(items, func(i, j int) bool {
			return c.CompareString(items[i].Title, items[j].Title) < 0
		})
	case SortTitleDesc:
		c := newCollator()
		sort.SliceStable(items, func(i, j int) bool {
			return c.CompareString(items[i].Title, items[j].Title) > 0
		})
	default: // SortNewest
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
	}
}

// Collators are not safe for concurrent use, so each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}
