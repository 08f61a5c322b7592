// Package catalog implements the entity-relationship layer for
// collectible items and their descriptive facets.
//
// One logical item is stored as a row-set sharing a single partition
// key: a metadata row carrying the full item document plus denormalized
// search-cache fields, and one relationship row per facet or contributor
// association. Relationship rows duplicate the target's ref into the
// reverse-index attribute so "which items use facet X" is answerable
// without scanning items.
//
// The underlying store offers no multi-row transactions. Writes are
// choreographed: a create batches its row-set in chunks with no rollback,
// an update is a full delete-then-recreate of the row-set, and a delete
// removes every row under the item's partition best-effort. Callers must
// treat these operations as non-atomic; see the per-operation comments
// for the exact partial-failure contracts.
package catalog
