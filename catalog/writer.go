package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/curioworks/curio/internal/keys"
	"github.com/curioworks/curio/store"
)

// Writer coordinates item mutations. A logical item mutation fans out
// to multiple independent rows; the Writer owns the row-set assembly,
// the batch chunking, and the documented partial-failure contracts.
type Writer struct {
	store     store.Store
	log       *slog.Logger
	batchSize int
}

// NewWriter creates a write coordinator.
func NewWriter(s store.Store, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		store:     s,
		log:       logger,
		batchSize: store.MaxBatchItems,
	}
}

// CreateItem writes an item's full row-set. The identifier is taken
// from the item or generated; referenced facets and contributors must
// exist (checked concurrently before any write). The row-set is
// submitted in sequential chunks with no rollback: on failure a
// *PartialWriteError reports how many rows are known committed, and the
// caller may issue DeleteItem to retract the half-written item.
func (w *Writer) CreateItem(ctx context.Context, item *Item) (*Item, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}

	out := *item
	if out.ID == "" {
		out.ID = keys.NewItemID()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}

	if err := w.resolveReferences(ctx, &out); err != nil {
		return nil, err
	}

	rows, err := itemRows(&out)
	if err != nil {
		return nil, err
	}

	for start := 0; start < len(rows); start += w.batchSize {
		end := start + w.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := w.store.BatchPut(ctx, rows[start:end]); err != nil {
			return nil, &PartialWriteError{
				ItemID:    out.ID,
				Committed: start,
				Attempted: len(rows),
				Err:       err,
			}
		}
	}

	return &out, nil
}

// UpdateItem replaces an item's row-set wholesale: every row under the
// item's partition is deleted, then the row-set is recreated under the
// same identifier. Stale relationship rows are never reconciled in
// place. A failure between the two phases leaves the item fully absent
// rather than stale; that trade-off favors simplicity over availability
// during update.
func (w *Writer) UpdateItem(ctx context.Context, id string, item *Item) (*Item, error) {
	existing, err := w.store.Get(ctx, keys.ItemRef(id), keys.SortMetadata)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load item %s: %w", id, err)
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, store.StringAttr(existing, AttrCreatedAt))

	rows, err := w.store.QueryPartition(ctx, keys.ItemRef(id))
	if err != nil {
		return nil, fmt.Errorf("query item %s rows: %w", id, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, row := range rows {
		pk, sk := store.Key(row)
		g.Go(func() error {
			return w.store.Delete(gctx, pk, sk)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("update item %s: delete phase: %w", id, err)
	}

	out := *item
	out.ID = id
	out.CreatedAt = createdAt
	return w.CreateItem(ctx, &out)
}

// DeleteItem removes every row under the item's partition. The deletes
// are issued concurrently and are fire-and-forget: a failed row delete
// is logged and does not fail the call, so partial deletion is possible
// and not retried. An identifier with no rows at all returns
// ErrNotFound rather than silent success.
func (w *Writer) DeleteItem(ctx context.Context, id string) error {
	rows, err := w.store.QueryPartition(ctx, keys.ItemRef(id))
	if err != nil {
		return fmt.Errorf("query item %s rows: %w", id, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}

	var wg sync.WaitGroup
	for _, row := range rows {
		pk, sk := store.Key(row)
		wg.Add(1)
		go func(pk, sk string) {
			defer wg.Done()
			if err := w.store.Delete(ctx, pk, sk); err != nil {
				w.log.Warn("item delete: row delete failed",
					"pk", pk,
					"sk", sk,
					"error", err,
				)
			}
		}(pk, sk)
	}
	wg.Wait()

	return nil
}

// resolveReferences checks every referenced facet and contributor row
// exists, concurrently, and fills the denormalized contributor name
// from the primary (first-listed) contributor when the caller left it
// empty.
func (w *Writer) resolveReferences(ctx context.Context, item *Item) error {
	g, gctx := errgroup.WithContext(ctx)

	check := func(field, kind, id string) {
		g.Go(func() error {
			_, err := w.store.Get(gctx, keys.Ref(kind, id), keys.SortMetadata)
			if errors.Is(err, store.ErrNotFound) {
				return &ValidationError{Field: field, Message: fmt.Sprintf("unknown %s %q", kind, id)}
			}
			return err
		})
	}

	for _, id := range item.TypeIDs {
		check("type_ids", keys.KindType, id)
	}
	if item.SubjectID != "" {
		check("subject_id", keys.KindSubject, item.SubjectID)
	}
	if item.TechniqueID != "" {
		check("technique_id", keys.KindTechnique, item.TechniqueID)
	}
	if item.PeriodID != "" {
		check("period_id", keys.KindPeriod, item.PeriodID)
	}
	for _, id := range item.MediumIDs {
		check("medium_ids", keys.KindMedium, id)
	}

	names := make([]string, len(item.Contributors))
	for i, link := range item.Contributors {
		i, link := i, link
		g.Go(func() error {
			row, err := w.store.Get(gctx, keys.ContributorRef(link.ContributorID), keys.SortMetadata)
			if errors.Is(err, store.ErrNotFound) {
				return &ValidationError{Field: "contributors", Message: fmt.Sprintf("unknown contributor %q", link.ContributorID)}
			}
			if err != nil {
				return err
			}
			names[i] = store.StringAttr(row, "display_name")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if item.ContributorName == "" && len(names) > 0 {
		item.ContributorName = names[0]
	}
	return nil
}

func validateItem(item *Item) error {
	if item == nil {
		return &ValidationError{Field: "item", Message: "missing body"}
	}
	if item.Title == "" {
		return &ValidationError{Field: "title", Message: "required"}
	}
	if item.PriceCents < 0 {
		return &ValidationError{Field: "price_cents", Message: "must not be negative"}
	}
	if item.Quantity < 0 {
		return &ValidationError{Field: "quantity", Message: "must not be negative"}
	}
	for _, img := range item.Images {
		if img.URL == "" {
			return &ValidationError{Field: "images", Message: "image url required"}
		}
	}
	for _, link := range item.Contributors {
		if link.ContributorID == "" {
			return &ValidationError{Field: "contributors", Message: "contributor_id required"}
		}
	}
	return nil
}
