package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/curioworks/curio/catalog"
	"github.com/curioworks/curio/store"
)

type env struct {
	store    *store.Memory
	entities *catalog.Entities
	writer   *catalog.Writer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	m := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &env{
		store:    m,
		entities: catalog.NewEntities(m, logger),
		writer:   catalog.NewWriter(m, logger),
	}
}

func (e *env) seedFacet(t *testing.T, kind catalog.FacetKind, name, displayName string) *catalog.Facet {
	t.Helper()
	f, err := e.entities.CreateFacet(context.Background(), kind, name, displayName)
	if err != nil {
		t.Fatalf("seed %s facet %q: %v", kind, name, err)
	}
	return f
}

func (e *env) seedIndividual(t *testing.T, first, last, displayName string) *catalog.Contributor {
	t.Helper()
	c, err := e.entities.CreateContributor(context.Background(), &catalog.Contributor{
		DisplayName: displayName,
		Individual:  &catalog.Individual{FirstName: first, LastName: last, Living: true},
	})
	if err != nil {
		t.Fatalf("seed contributor %s %s: %v", first, last, err)
	}
	return c
}

func (e *env) seedItem(t *testing.T, item *catalog.Item) *catalog.Item {
	t.Helper()
	created, err := e.writer.CreateItem(context.Background(), item)
	if err != nil {
		t.Fatalf("seed item %q: %v", item.Title, err)
	}
	return created
}
