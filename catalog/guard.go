package catalog

import (
	"context"
	"fmt"

	"github.com/curioworks/curio/internal/keys"
	"github.com/curioworks/curio/store"
)

// Guard refuses facet and contributor deletions while items still
// reference them. The check is advisory: it is read immediately before
// the delete with no transactional link, so a relationship row inserted
// between check and delete can leave a dangling reference. Reads
// tolerate dangling references, so this window is accepted.
type Guard struct {
	store store.Store
}

// NewGuard creates a deletion guard over the store.
func NewGuard(s store.Store) *Guard {
	return &Guard{store: s}
}

// Usage returns the number of items referencing the given facet or
// contributor. Subject, technique, medium, and contributor references
// live in relationship rows and are counted through the reverse index.
// Periods are projected onto item metadata rows and counted through the
// period index. Types have no index at all and fall back to a filtered
// scan.
func (g *Guard) Usage(ctx context.Context, kind, id string) (int, error) {
	var (
		rows []store.Row
		err  error
	)
	switch kind {
	case keys.KindType:
		rows, err = g.store.Scan(ctx, store.Filter{
			Kind:  keys.KindItem,
			AnyOf: &store.AnyOf{Attr: AttrTypes, Values: []string{id}},
		})
	case keys.KindPeriod:
		rows, err = g.store.QueryIndex(ctx, store.PeriodIndex, id)
	default:
		rows, err = g.store.QueryIndex(ctx, store.ReverseIndex, keys.Ref(kind, id))
	}
	if err != nil {
		return 0, fmt.Errorf("usage of %s %s: %w", kind, id, err)
	}
	return len(rows), nil
}

// CanDelete reports whether the facet or contributor has no referencing
// items.
func (g *Guard) CanDelete(ctx context.Context, kind, id string) (bool, error) {
	n, err := g.Usage(ctx, kind, id)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
