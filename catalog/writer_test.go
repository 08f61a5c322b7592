package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/curioworks/curio/catalog"
	"github.com/curioworks/curio/store"
)

// flakyStore wraps Memory and fails the nth BatchPut call, recording
// chunk sizes along the way.
type flakyStore struct {
	*store.Memory
	batches []int
	failAt  int // 1-based call number to fail; 0 = never
	calls   int
}

func (f *flakyStore) BatchPut(ctx context.Context, rows []store.Row) error {
	f.calls++
	f.batches = append(f.batches, len(rows))
	if f.failAt != 0 && f.calls == f.failAt {
		return fmt.Errorf("injected batch failure")
	}
	return f.Memory.BatchPut(ctx, rows)
}

func TestCreateItemRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.seedFacet(t, catalog.FacetType, "Ceramics", "Ceramics")
	e.seedFacet(t, catalog.FacetSubject, "Still Life", "Still Life")
	e.seedFacet(t, catalog.FacetTechnique, "Glazing", "Glazing")
	e.seedFacet(t, catalog.FacetPeriod, "Art Deco", "Art Deco")
	e.seedFacet(t, catalog.FacetMedium, "Porcelain", "Porcelain")
	c := e.seedIndividual(t, "Jane", "Doe", "Jane Doe")

	in := &catalog.Item{
		Title:       "Delft Vase",
		PriceCents:  125000,
		Description: "A blue and white vase.",
		Date:        catalog.DateDescriptor{YearStart: 1920, YearEnd: 1930, Approximate: true},
		Dimensions: []catalog.DimensionPart{
			{Name: "body", Height: 30, Diameter: 12, Unit: "cm"},
		},
		MediumIDs:  []string{"porcelain"},
		MediumText: "glazed porcelain",
		Condition:  catalog.Condition{Status: "good", Notes: "minor crazing"},
		Quantity:   1,
		Images: []catalog.Image{
			{URL: "https://img/1.jpg", Primary: true},
			{URL: "https://img/2.jpg"},
		},
		TypeIDs:      []string{"ceramics"},
		SubjectID:    "still_life",
		TechniqueID:  "glazing",
		PeriodID:     "art_deco",
		Contributors: []catalog.ContributorLink{{ContributorID: c.ID, Roles: []string{"maker"}}},
	}

	created, err := e.writer.CreateItem(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected assigned timestamp")
	}
	if created.ContributorName != "Jane Doe" {
		t.Errorf("expected denormalized contributor name 'Jane Doe', got %q", created.ContributorName)
	}

	got, err := e.entities.GetItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// Equal in all fields except server-assigned id and timestamp,
	// which must match the values returned from create. The timestamp
	// is compared as an instant since Parse and Now encode locations
	// differently.
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("timestamp changed: got %v, want %v", got.CreatedAt, created.CreatedAt)
	}
	want := *in
	want.ID = created.ID
	want.ContributorName = "Jane Doe"
	got.CreatedAt, want.CreatedAt = time.Time{}, time.Time{}
	if !reflect.DeepEqual(got, &want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, &want)
	}
}

func TestCreateItemRowSet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.seedFacet(t, catalog.FacetSubject, "Portrait", "Portrait")
	e.seedFacet(t, catalog.FacetMedium, "Oil", "Oil")
	e.seedFacet(t, catalog.FacetMedium, "Canvas", "Canvas")
	c := e.seedIndividual(t, "Jane", "Doe", "Jane Doe")
	before := e.store.Len()

	item := e.seedItem(t, &catalog.Item{
		Title:        "Lady",
		SubjectID:    "portrait",
		MediumIDs:    []string{"oil", "canvas"},
		Contributors: []catalog.ContributorLink{{ContributorID: c.ID}},
	})

	// Metadata row + subject + 2 mediums + contributor.
	if got := e.store.Len() - before; got != 5 {
		t.Errorf("expected 5 rows in row-set, got %d", got)
	}

	rows, err := e.store.QueryPartition(ctx, "ITEM#"+item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Errorf("expected all 5 rows under the item partition, got %d", len(rows))
	}
}

func TestCreateItemValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		item *catalog.Item
	}{
		{"missing title", &catalog.Item{}},
		{"negative price", &catalog.Item{Title: "X", PriceCents: -1}},
		{"negative quantity", &catalog.Item{Title: "X", Quantity: -1}},
		{"image without url", &catalog.Item{Title: "X", Images: []catalog.Image{{}}}},
		{"unknown subject", &catalog.Item{Title: "X", SubjectID: "missing"}},
		{"unknown contributor", &catalog.Item{Title: "X", Contributors: []catalog.ContributorLink{{ContributorID: "missing"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.writer.CreateItem(ctx, tt.item)
			var verr *catalog.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}

	// Nothing was written by any rejected create.
	if e.store.Len() != 0 {
		t.Errorf("expected empty store after rejected creates, got %d rows", e.store.Len())
	}
}

func TestCreateItemChunksBatches(t *testing.T) {
	fs := &flakyStore{Memory: store.NewMemory()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	entities := catalog.NewEntities(fs.Memory, logger)
	writer := catalog.NewWriter(fs, logger)
	ctx := context.Background()

	var mediums []string
	for i := 0; i < 30; i++ {
		name := fmt.Sprintf("medium %d", i)
		if _, err := entities.CreateFacet(ctx, catalog.FacetMedium, name, name); err != nil {
			t.Fatal(err)
		}
		mediums = append(mediums, fmt.Sprintf("medium_%d", i))
	}

	// 1 metadata row + 30 medium relationships = 31 rows -> 25 + 6.
	if _, err := writer.CreateItem(ctx, &catalog.Item{Title: "Mixed", MediumIDs: mediums}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !reflect.DeepEqual(fs.batches, []int{25, 6}) {
		t.Errorf("expected chunks [25 6], got %v", fs.batches)
	}
}

func TestCreateItemPartialWrite(t *testing.T) {
	fs := &flakyStore{Memory: store.NewMemory(), failAt: 2}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	entities := catalog.NewEntities(fs.Memory, logger)
	writer := catalog.NewWriter(fs, logger)
	ctx := context.Background()

	var mediums []string
	for i := 0; i < 30; i++ {
		name := fmt.Sprintf("medium %d", i)
		if _, err := entities.CreateFacet(ctx, catalog.FacetMedium, name, name); err != nil {
			t.Fatal(err)
		}
		mediums = append(mediums, fmt.Sprintf("medium_%d", i))
	}

	_, err := writer.CreateItem(ctx, &catalog.Item{ID: "half", Title: "Mixed", MediumIDs: mediums})
	var perr *catalog.PartialWriteError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PartialWriteError, got %v", err)
	}
	if perr.Committed != 25 || perr.Attempted != 31 {
		t.Errorf("expected 25 of 31 committed, got %d of %d", perr.Committed, perr.Attempted)
	}

	// Earlier chunks stay committed: the caller re-runs a cleanup delete.
	if err := writer.DeleteItem(ctx, "half"); err != nil {
		t.Fatalf("cleanup delete: %v", err)
	}
	rows, err := fs.Memory.QueryPartition(ctx, "ITEM#half")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("expected cleanup to remove committed rows, %d left", len(rows))
	}
}

func TestUpdateItemReplacesRowSet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.seedFacet(t, catalog.FacetSubject, "Portrait", "Portrait")
	e.seedFacet(t, catalog.FacetSubject, "Landscape", "Landscape")

	item := e.seedItem(t, &catalog.Item{Title: "View", SubjectID: "portrait"})
	createdAt := item.CreatedAt

	time.Sleep(5 * time.Millisecond)
	updated, err := e.writer.UpdateItem(ctx, item.ID, &catalog.Item{Title: "View II", SubjectID: "landscape"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "View II" || updated.SubjectID != "landscape" {
		t.Errorf("unexpected updated item %+v", updated)
	}
	if !updated.CreatedAt.Equal(createdAt) {
		t.Errorf("expected insertion timestamp preserved, got %v", updated.CreatedAt)
	}

	// The stale relationship row must be gone, not merely superseded.
	rows, err := e.store.QueryPartition(ctx, "ITEM#"+item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected metadata + 1 relationship, got %d rows", len(rows))
	}
	for _, row := range rows {
		if _, sk := store.Key(row); sk == "SUBJECT#portrait" {
			t.Error("stale relationship row survived the update")
		}
	}
}

func TestUpdateItemNotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.writer.UpdateItem(context.Background(), "missing", &catalog.Item{Title: "X"})
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteItemRemovesPartition(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.seedFacet(t, catalog.FacetSubject, "Portrait", "Portrait")
	item := e.seedItem(t, &catalog.Item{Title: "Lady", SubjectID: "portrait"})

	if err := e.writer.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows, err := e.store.QueryPartition(ctx, "ITEM#"+item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows left, got %d", len(rows))
	}
}

func TestDeleteItemNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.seedFacet(t, catalog.FacetSubject, "Portrait", "Portrait")
	item := e.seedItem(t, &catalog.Item{Title: "Lady", SubjectID: "portrait"})

	if err := e.writer.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	// Deleting again is NotFound, not silent success.
	if err := e.writer.DeleteItem(ctx, item.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
