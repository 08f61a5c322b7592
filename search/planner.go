// Package search computes faceted item searches by combining one base
// predicate scan with per-facet reverse-index lookups intersected in
// memory.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/curioworks/curio/catalog"
	"github.com/curioworks/curio/internal/keys"
	"github.com/curioworks/curio/store"
)

// Sort names a result ordering.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortTitleAsc  Sort = "title_asc"
	SortTitleDesc Sort = "title_desc"
)

// Defaults are the explicit fallback options applied to requests that
// leave sort or pagination unset.
type Defaults struct {
	Sort  Sort
	Page  int
	Limit int
}

// DefaultOptions returns the standard defaults: newest first, page 1,
// 24 items per page.
func DefaultOptions() Defaults {
	return Defaults{Sort: SortNewest, Page: 1, Limit: 24}
}

// Request is a faceted search. Zero selected values in a dimension
// means that dimension imposes no constraint; within a dimension the
// selected values are OR'd, across dimensions they are AND'd.
type Request struct {
	Query        string
	Types        []string
	Subjects     []string
	Techniques   []string
	Periods      []string
	Mediums      []string
	Contributors []string
	PriceMin     *int64
	PriceMax     *int64
	Sort         Sort
	Page         int
	Limit        int
}

// Pagination describes the result page.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Result is one page of matching items.
type Result struct {
	Items      []catalog.Item `json:"items"`
	Pagination Pagination     `json:"pagination"`
}

// Planner executes search requests against the store.
type Planner struct {
	store    store.Store
	defaults Defaults
}

// NewPlanner creates a planner with the given defaults.
func NewPlanner(s store.Store, defaults Defaults) *Planner {
	def := DefaultOptions()
	if defaults.Sort == "" {
		defaults.Sort = def.Sort
	}
	if defaults.Page < 1 {
		defaults.Page = def.Page
	}
	if defaults.Limit < 1 {
		defaults.Limit = def.Limit
	}
	return &Planner{store: s, defaults: defaults}
}

// Search runs the base scan, fans out one reverse-index lookup per
// selected facet value, intersects, then sorts and paginates in memory.
// Zero matches is a normal empty page, never an error.
func (p *Planner) Search(ctx context.Context, req Request) (*Result, error) {
	req = p.normalize(req)

	filter := store.Filter{Kind: keys.KindItem}
	if q := strings.ToLower(strings.TrimSpace(req.Query)); q != "" {
		filter.Match = q
		filter.MatchAttrs = []string{
			catalog.AttrTitleLC,
			catalog.AttrDescriptionLC,
			catalog.AttrContributorLC,
		}
	}
	if len(req.Types) > 0 {
		filter.AnyOf = &store.AnyOf{Attr: catalog.AttrTypes, Values: req.Types}
	}
	if req.PriceMin != nil || req.PriceMax != nil {
		filter.Range = &store.NumRange{Attr: catalog.AttrPrice, Min: req.PriceMin, Max: req.PriceMax}
	}

	rows, err := p.store.Scan(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search base scan: %w", err)
	}
	if len(rows) == 0 {
		return p.emptyPage(req), nil
	}

	allowed, constrained, err := p.facetIntersection(ctx, req)
	if err != nil {
		return nil, err
	}

	items := make([]*catalog.Item, 0, len(rows))
	for _, row := range rows {
		if constrained {
			pk, _ := store.Key(row)
			if _, ok := allowed[pk]; !ok {
				continue
			}
		}
		item, err := catalog.ItemFromRow(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	sortItems(items, req.Sort)
	return paginate(items, req), nil
}

// facetIntersection resolves every facet dimension with selections into
// a set of item partition keys: unions within a dimension, intersection
// across dimensions. The per-value lookups all run concurrently; any
// lookup failure fails the search.
func (p *Planner) facetIntersection(ctx context.Context, req Request) (map[string]struct{}, bool, error) {
	type lookup struct {
		index string
		key   string
	}

	var dims [][]lookup
	addDim := func(index, kind string, values []string) {
		if len(values) == 0 {
			return
		}
		lookups := make([]lookup, 0, len(values))
		for _, v := range values {
			key := v
			if kind != "" {
				key = keys.Ref(kind, v)
			}
			lookups = append(lookups, lookup{index: index, key: key})
		}
		dims = append(dims, lookups)
	}

	addDim(store.ReverseIndex, keys.KindSubject, req.Subjects)
	addDim(store.ReverseIndex, keys.KindTechnique, req.Techniques)
	addDim(store.ReverseIndex, keys.KindMedium, req.Mediums)
	addDim(store.ReverseIndex, keys.KindContributor, req.Contributors)
	addDim(store.PeriodIndex, "", req.Periods)

	if len(dims) == 0 {
		return nil, false, nil
	}

	sets := make([]map[string]struct{}, len(dims))
	for i := range sets {
		sets[i] = make(map[string]struct{})
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for di, lookups := range dims {
		for _, lk := range lookups {
			di, lk := di, lk
			g.Go(func() error {
				rows, err := p.store.QueryIndex(gctx, lk.index, lk.key)
				if err != nil {
					return fmt.Errorf("search facet lookup %s: %w", lk.key, err)
				}
				mu.Lock()
				defer mu.Unlock()
				for _, row := range rows {
					pk, _ := store.Key(row)
					sets[di][pk] = struct{}{}
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	allowed := sets[0]
	for _, set := range sets[1:] {
		next := make(map[string]struct{})
		for pk := range allowed {
			if _, ok := set[pk]; ok {
				next[pk] = struct{}{}
			}
		}
		allowed = next
	}
	return allowed, true, nil
}

func (p *Planner) normalize(req Request) Request {
	if req.Sort == "" {
		req.Sort = p.defaults.Sort
	}
	if req.Page < 1 {
		req.Page = p.defaults.Page
	}
	if req.Limit < 1 {
		req.Limit = p.defaults.Limit
	}
	return req
}

func (p *Planner) emptyPage(req Request) *Result {
	return &Result{
		Items: []catalog.Item{},
		Pagination: Pagination{
			Total:      0,
			Page:       req.Page,
			Limit:      req.Limit,
			TotalPages: 0,
		},
	}
}

func paginate(items []*catalog.Item, req Request) *Result {
	total := len(items)
	totalPages := 0
	if total > 0 {
		totalPages = (total + req.Limit - 1) / req.Limit
	}

	start := (req.Page - 1) * req.Limit
	if start > total {
		start = total
	}
	end := start + req.Limit
	if end > total {
		end = total
	}

	page := make([]catalog.Item, 0, end-start)
	for _, item := range items[start:end] {
		page = append(page, *item)
	}

	return &Result{
		Items: page,
		Pagination: Pagination{
			Total:      total,
			Page:       req.Page,
			Limit:      req.Limit,
			TotalPages: totalPages,
		},
	}
}
