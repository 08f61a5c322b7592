package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/curioworks/curio/internal/keys"
	"github.com/curioworks/curio/store"
)

// Entities is the entity store for facets and contributors, plus item
// reads. Item mutations go through the Writer.
type Entities struct {
	store   store.Store
	guard   *Guard
	cascade *Cascade
	log     *slog.Logger
}

// NewEntities creates the entity store with its deletion guard and
// cascade updater.
func NewEntities(s store.Store, logger *slog.Logger) *Entities {
	if logger == nil {
		logger = slog.Default()
	}
	return &Entities{
		store:   s,
		guard:   NewGuard(s),
		cascade: NewCascade(s, logger),
		log:     logger,
	}
}

// Guard returns the deletion guard.
func (e *Entities) Guard() *Guard { return e.guard }

// GetItem loads an item from its metadata row.
func (e *Entities) GetItem(ctx context.Context, id string) (*Item, error) {
	row, err := e.store.Get(ctx, keys.ItemRef(id), keys.SortMetadata)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load item %s: %w", id, err)
	}
	return ItemFromRow(row)
}

// CreateFacet inserts a facet value, deriving the identifier from the
// supplied name. The duplicate check is a read followed by a write with
// no conditional link: two concurrent creations of the same identifier
// can both observe "not found" and both write, the second silently
// clobbering the first. That race is an accepted limitation of the
// store contract, not something this path defends against.
func (e *Entities) CreateFacet(ctx context.Context, kind FacetKind, name, displayName string) (*Facet, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown facet kind %q", kind)}
	}
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "required"}
	}
	if displayName == "" {
		return nil, &ValidationError{Field: "display_name", Message: "required"}
	}

	id := keys.Slug(name)
	if id == "" {
		return nil, &ValidationError{Field: "name", Message: "no usable characters"}
	}

	ref := keys.Ref(string(kind), id)
	if _, err := e.store.Get(ctx, ref, keys.SortMetadata); err == nil {
		return nil, &ConflictError{Ref: ref, Message: "already exists"}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check facet %s: %w", ref, err)
	}

	facet := &Facet{Kind: kind, Name: id, DisplayName: displayName}
	row, err := marshalRow(facetRow{
		PK:          ref,
		SK:          keys.SortMetadata,
		Kind:        string(kind),
		Name:        id,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal facet %s: %w", ref, err)
	}
	if err := e.store.Put(ctx, row); err != nil {
		return nil, fmt.Errorf("create facet %s: %w", ref, err)
	}
	return facet, nil
}

// GetFacet loads one facet value.
func (e *Entities) GetFacet(ctx context.Context, kind FacetKind, id string) (*Facet, error) {
	ref := keys.Ref(string(kind), id)
	row, err := e.store.Get(ctx, ref, keys.SortMetadata)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
		}
		return nil, fmt.Errorf("load facet %s: %w", ref, err)
	}
	return facetFromRow(kind, row)
}

// ListFacets returns all values of one facet dimension, by name. This
// is an unindexed scan filtered on the kind marker.
func (e *Entities) ListFacets(ctx context.Context, kind FacetKind) ([]Facet, error) {
	if !kind.Valid() {
		return nil, &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown facet kind %q", kind)}
	}

	rows, err := e.store.Scan(ctx, store.Filter{Kind: string(kind)})
	if err != nil {
		return nil, fmt.Errorf("list %s facets: %w", kind, err)
	}

	facets := make([]Facet, 0, len(rows))
	for _, row := range rows {
		if store.StringAttr(row, store.AttrSK) != keys.SortMetadata {
			continue
		}
		f, err := facetFromRow(kind, row)
		if err != nil {
			return nil, err
		}
		facets = append(facets, *f)
	}
	sort.Slice(facets, func(i, j int) bool { return facets[i].Name < facets[j].Name })
	return facets, nil
}

// UpdateFacet changes a facet's display name. The identifier is
// immutable, and facet renames do not cascade to items: items carry
// facet identifiers only, never cached facet display names.
func (e *Entities) UpdateFacet(ctx context.Context, kind FacetKind, id, displayName string) (*Facet, error) {
	if displayName == "" {
		return nil, &ValidationError{Field: "display_name", Message: "required"}
	}

	facet, err := e.GetFacet(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	facet.DisplayName = displayName

	ref := keys.Ref(string(kind), id)
	row, err := marshalRow(facetRow{
		PK:          ref,
		SK:          keys.SortMetadata,
		Kind:        string(kind),
		Name:        facet.Name,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal facet %s: %w", ref, err)
	}
	if err := e.store.Put(ctx, row); err != nil {
		return nil, fmt.Errorf("update facet %s: %w", ref, err)
	}
	return facet, nil
}

// DeleteFacet removes a facet value after the deletion guard passes.
// A facet referenced by any item is refused with a ConflictError
// carrying the referencing item count.
func (e *Entities) DeleteFacet(ctx context.Context, kind FacetKind, id string) error {
	if _, err := e.GetFacet(ctx, kind, id); err != nil {
		return err
	}

	n, err := e.guard.Usage(ctx, string(kind), id)
	if err != nil {
		return err
	}
	ref := keys.Ref(string(kind), id)
	if n > 0 {
		return &ConflictError{Ref: ref, ItemCount: n, Message: "is referenced by items"}
	}

	if err := e.store.Delete(ctx, ref, keys.SortMetadata); err != nil {
		return fmt.Errorf("delete facet %s: %w", ref, err)
	}
	return nil
}

// CreateContributor inserts a contributor, deriving the immutable
// identifier from the name fields. Same read-then-write duplicate
// check, and the same accepted race, as CreateFacet.
func (e *Entities) CreateContributor(ctx context.Context, c *Contributor) (*Contributor, error) {
	if c == nil {
		return nil, &ValidationError{Field: "contributor", Message: "missing body"}
	}
	if c.DisplayName == "" {
		return nil, &ValidationError{Field: "display_name", Message: "required"}
	}
	if (c.Individual == nil) == (c.Organization == nil) {
		return nil, &ValidationError{Field: "contributor", Message: "exactly one of individual or organization required"}
	}

	var id string
	switch {
	case c.Individual != nil:
		id = keys.Slug(c.Individual.FirstName, c.Individual.MiddleName, c.Individual.LastName)
	case c.Organization != nil:
		id = keys.Slug(c.Organization.Name)
	}
	if id == "" {
		return nil, &ValidationError{Field: "name", Message: "no usable characters"}
	}

	ref := keys.ContributorRef(id)
	if _, err := e.store.Get(ctx, ref, keys.SortMetadata); err == nil {
		return nil, &ConflictError{Ref: ref, Message: "already exists"}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check contributor %s: %w", ref, err)
	}

	out := *c
	out.ID = id
	row, err := marshalRow(contributorRowFrom(&out))
	if err != nil {
		return nil, fmt.Errorf("marshal contributor %s: %w", ref, err)
	}
	if err := e.store.Put(ctx, row); err != nil {
		return nil, fmt.Errorf("create contributor %s: %w", ref, err)
	}
	return &out, nil
}

// GetContributor loads one contributor.
func (e *Entities) GetContributor(ctx context.Context, id string) (*Contributor, error) {
	row, err := e.store.Get(ctx, keys.ContributorRef(id), keys.SortMetadata)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("contributor %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load contributor %s: %w", id, err)
	}
	return contributorFromRow(row)
}

// ListContributors returns all contributors, by identifier.
func (e *Entities) ListContributors(ctx context.Context) ([]Contributor, error) {
	rows, err := e.store.Scan(ctx, store.Filter{Kind: keys.KindContributor})
	if err != nil {
		return nil, fmt.Errorf("list contributors: %w", err)
	}

	contributors := make([]Contributor, 0, len(rows))
	for _, row := range rows {
		if store.StringAttr(row, store.AttrSK) != keys.SortMetadata {
			continue
		}
		c, err := contributorFromRow(row)
		if err != nil {
			return nil, err
		}
		contributors = append(contributors, *c)
	}
	sort.Slice(contributors, func(i, j int) bool { return contributors[i].ID < contributors[j].ID })
	return contributors, nil
}

// UpdateContributor changes a contributor's display name and biography.
// When the display name actually changes value, the cascade rewrites
// the denormalized copy on referencing items; the returned count is the
// number of items rewritten. Cascade failures are best-effort and never
// fail this call.
func (e *Entities) UpdateContributor(ctx context.Context, id, displayName, biography string) (*Contributor, int, error) {
	if displayName == "" {
		return nil, 0, &ValidationError{Field: "display_name", Message: "required"}
	}

	current, err := e.GetContributor(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	oldName := current.DisplayName

	current.DisplayName = displayName
	current.Biography = biography

	row, err := marshalRow(contributorRowFrom(current))
	if err != nil {
		return nil, 0, fmt.Errorf("marshal contributor %s: %w", id, err)
	}
	if err := e.store.Put(ctx, row); err != nil {
		return nil, 0, fmt.Errorf("update contributor %s: %w", id, err)
	}

	affected := 0
	if oldName != displayName {
		affected, err = e.cascade.PropagateContributorName(ctx, id, oldName, displayName)
		if err != nil {
			e.log.Warn("contributor rename: cascade failed", "contributor", id, "error", err)
			affected = 0
		}
	}
	return current, affected, nil
}

// DeleteContributor removes a contributor after the deletion guard
// passes, refusing with the referencing item count otherwise.
func (e *Entities) DeleteContributor(ctx context.Context, id string) error {
	if _, err := e.GetContributor(ctx, id); err != nil {
		return err
	}

	n, err := e.guard.Usage(ctx, keys.KindContributor, id)
	if err != nil {
		return err
	}
	ref := keys.ContributorRef(id)
	if n > 0 {
		return &ConflictError{Ref: ref, ItemCount: n, Message: "is referenced by items"}
	}

	if err := e.store.Delete(ctx, ref, keys.SortMetadata); err != nil {
		return fmt.Errorf("delete contributor %s: %w", ref, err)
	}
	return nil
}

func contributorRowFrom(c *Contributor) contributorRow {
	return contributorRow{
		PK:           keys.ContributorRef(c.ID),
		SK:           keys.SortMetadata,
		Kind:         keys.KindContributor,
		ID:           c.ID,
		DisplayName:  c.DisplayName,
		Biography:    c.Biography,
		Individual:   c.Individual,
		Organization: c.Organization,
	}
}
