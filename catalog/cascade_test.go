package catalog_test

import (
	"context"
	"testing"

	"github.com/curioworks/curio/catalog"
)

func TestCascadeRewritesMatchingItems(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c := e.seedIndividual(t, "Jane", "Doe", "Jane Doe")
	link := []catalog.ContributorLink{{ContributorID: c.ID, Roles: []string{"artist"}}}

	a := e.seedItem(t, &catalog.Item{Title: "One", Contributors: link})
	b := e.seedItem(t, &catalog.Item{Title: "Two", Contributors: link})
	d := e.seedItem(t, &catalog.Item{Title: "Three", Contributors: link})

	// This item references the contributor but its cached name was
	// overridden to a different literal; it must not be rewritten.
	overridden := e.seedItem(t, &catalog.Item{
		Title:           "Four",
		Contributors:    link,
		ContributorName: "Attributed to Jane Doe",
	})

	updated, affected, err := e.entities.UpdateContributor(ctx, c.ID, "Jane D. Smith", "")
	if err != nil {
		t.Fatalf("update contributor: %v", err)
	}
	if updated.DisplayName != "Jane D. Smith" {
		t.Errorf("expected display name updated, got %q", updated.DisplayName)
	}
	if affected != 3 {
		t.Errorf("expected 3 items rewritten, got %d", affected)
	}

	for _, id := range []string{a.ID, b.ID, d.ID} {
		item, err := e.entities.GetItem(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if item.ContributorName != "Jane D. Smith" {
			t.Errorf("item %s: expected 'Jane D. Smith', got %q", id, item.ContributorName)
		}
	}

	item, err := e.entities.GetItem(ctx, overridden.ID)
	if err != nil {
		t.Fatal(err)
	}
	if item.ContributorName != "Attributed to Jane Doe" {
		t.Errorf("overridden item rewritten to %q", item.ContributorName)
	}
}

func TestCascadeSkippedWhenNameUnchanged(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	c := e.seedIndividual(t, "Jane", "Doe", "Jane Doe")
	e.seedItem(t, &catalog.Item{Title: "One", Contributors: []catalog.ContributorLink{{ContributorID: c.ID}}})

	_, affected, err := e.entities.UpdateContributor(ctx, c.ID, "Jane Doe", "Updated biography only.")
	if err != nil {
		t.Fatalf("update contributor: %v", err)
	}
	if affected != 0 {
		t.Errorf("expected no rewrites for unchanged name, got %d", affected)
	}

	got, err := e.entities.GetContributor(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Biography != "Updated biography only." {
		t.Errorf("expected biography updated, got %q", got.Biography)
	}
}

func TestFacetRenameDoesNotTouchItems(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.seedFacet(t, catalog.FacetSubject, "Portrait", "Portrait")
	item := e.seedItem(t, &catalog.Item{Title: "Lady", SubjectID: "portrait"})

	if _, err := e.entities.UpdateFacet(ctx, catalog.FacetSubject, "portrait", "Portraiture"); err != nil {
		t.Fatalf("update facet: %v", err)
	}

	// Items carry the facet identifier only; nothing to propagate.
	got, err := e.entities.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.SubjectID != "portrait" {
		t.Errorf("expected stable subject id, got %q", got.SubjectID)
	}
}
