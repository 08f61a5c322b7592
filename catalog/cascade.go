package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/curioworks/curio/internal/keys"
	"github.com/curioworks/curio/store"
)

// Cascade rewrites denormalized contributor display names on items when
// the contributor is renamed. Facet display-name changes never cascade:
// items reference facets by stable identifier only, so there is nothing
// cached to rewrite.
type Cascade struct {
	store store.Store
	log   *slog.Logger
}

// NewCascade creates a cascade updater.
func NewCascade(s store.Store, logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{store: s, log: logger}
}

// PropagateContributorName patches the cached contributor name on every
// item referencing the contributor whose field still equals oldName
// exactly. Items whose field was overridden to some other literal are
// left alone. Per-item failures are logged and skipped; the returned
// count is the number of items actually rewritten, not the number of
// items referencing the contributor.
func (c *Cascade) PropagateContributorName(ctx context.Context, contributorID, oldName, newName string) (int, error) {
	if oldName == newName {
		return 0, nil
	}

	rels, err := c.store.QueryIndex(ctx, store.ReverseIndex, keys.ContributorRef(contributorID))
	if err != nil {
		return 0, fmt.Errorf("cascade %s: %w", contributorID, err)
	}

	seen := make(map[string]struct{}, len(rels))
	var pks []string
	for _, rel := range rels {
		pk, _ := store.Key(rel)
		if _, ok := seen[pk]; ok {
			continue
		}
		seen[pk] = struct{}{}
		pks = append(pks, pk)
	}

	var (
		affected atomic.Int64
		wg       sync.WaitGroup
	)
	for _, pk := range pks {
		wg.Add(1)
		go func(pk string) {
			defer wg.Done()
			if c.rewriteItem(ctx, pk, oldName, newName) {
				affected.Add(1)
			}
		}(pk)
	}
	wg.Wait()

	c.log.Info("contributor rename propagated",
		"contributor", contributorID,
		"referencing", len(pks),
		"rewritten", affected.Load(),
	)
	return int(affected.Load()), nil
}

func (c *Cascade) rewriteItem(ctx context.Context, pk, oldName, newName string) bool {
	row, err := c.store.Get(ctx, pk, keys.SortMetadata)
	if err != nil {
		c.log.Warn("cascade: load item failed", "item", pk, "error", err)
		return false
	}
	if store.StringAttr(row, AttrContributor) != oldName {
		return false
	}

	store.SetStringAttr(row, AttrContributor, newName)
	store.SetStringAttr(row, AttrContributorLC, strings.ToLower(newName))
	if err := c.store.Put(ctx, row); err != nil {
		c.log.Warn("cascade: rewrite item failed", "item", pk, "error", err)
		return false
	}
	return true
}
