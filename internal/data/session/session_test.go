package session

import (
	"context"
	"testing"

	"github.com/yungbote/baseapi-backend/internal/data/repos/testutil"
	"github.com/yungbote/baseapi-backend/internal/data/schema"
	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
	"github.com/yungbote/baseapi-backend/internal/domain/catalog"
)

func productDescriptor(t *testing.T) *schema.Descriptor[catalog.Product] {
	t.Helper()
	d, err := schema.For[catalog.Product]()
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	return d
}

func newProduct(t *testing.T, name string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "", 9.99, "USD", 5, nil)
	if err != nil {
		t.Fatalf("NewProduct: %v", err)
	}
	return p
}

func TestPending_PromotesEditedUnchanged(t *testing.T) {
	s := New(nil, testutil.Logger(t))
	d := productDescriptor(t)
	loaded := newProduct(t, "Loaded")
	untouched := newProduct(t, "Untouched")
	Track(s, d, loaded, Unchanged)
	Track(s, d, untouched, Unchanged)

	if got := s.Pending(); len(got) != 0 {
		t.Fatalf("expected nothing pending, got %d", len(got))
	}
	loaded.Stock = 1
	pending := s.Pending()
	if len(pending) != 1 || pending[0].Entity != loaded || pending[0].State != Modified {
		t.Fatalf("expected loaded product to be Modified, got %+v", pending)
	}
	if cols := pending[0].ChangedColumns(); len(cols) != 1 || cols[0] != "stock" {
		t.Fatalf("ChangedColumns = %v", cols)
	}
}

func TestPending_RevertedEditIsUnchanged(t *testing.T) {
	s := New(nil, testutil.Logger(t))
	p := newProduct(t, "Widget")
	e := Track(s, productDescriptor(t), p, Modified)
	if len(s.Pending()) != 0 {
		t.Fatalf("Modified entry without field changes must not be pending")
	}
	if e.State != Unchanged {
		t.Fatalf("state = %s, want unchanged", e.State)
	}
}

func TestTrack_ReplacesInPlace(t *testing.T) {
	s := New(nil, testutil.Logger(t))
	d := productDescriptor(t)
	a := newProduct(t, "A")
	b := newProduct(t, "B")
	Track(s, d, a, Added)
	Track(s, d, b, Added)
	copyOfA := *a
	Track(s, d, &copyOfA, Modified)

	entries := s.Entries()
	if len(entries) != 2 || entries[0].Entity != &copyOfA || entries[1].Entity != b {
		t.Fatalf("replacement must keep tracking order")
	}
	got, ok := s.Lookup("products", a.ID)
	if !ok || got.Entity != &copyOfA {
		t.Fatalf("Lookup did not return the replacement")
	}
}

func TestClose_LifecycleErrors(t *testing.T) {
	s := New(testutil.DB(t), testutil.Logger(t))
	Track(s, productDescriptor(t), newProduct(t, "Widget"), Added)
	s.Close()
	if !s.Closed() {
		t.Fatalf("expected closed session")
	}
	if _, err := s.DB(context.Background(), "op"); !aggregates.IsCode(err, aggregates.CodeLifecycle) {
		t.Fatalf("expected lifecycle error, got %v", err)
	}
	if len(s.Entries()) != 0 {
		t.Fatalf("close must drop tracked entries")
	}
}

func TestFlush_WritesAndAccepts(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	s := New(db, testutil.Logger(t))
	d := productDescriptor(t)

	added := newProduct(t, "Added")
	Track(s, d, added, Added)
	stored := testutil.SeedProduct(t, ctx, db, "Stored", 1, 1)
	Track(s, d, stored, Unchanged)
	stored.Stock = 9

	pending := s.Pending()
	rows, err := s.Flush(db.WithContext(ctx), pending)
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if rows != 2 {
		t.Fatalf("rows = %d, want 2", rows)
	}
	s.AcceptChanges(pending)
	if len(s.Pending()) != 0 {
		t.Fatalf("accepted entries must not be pending")
	}

	var reloaded catalog.Product
	if err := db.First(&reloaded, "id = ?", stored.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Stock != 9 || reloaded.Name != "Stored" {
		t.Fatalf("unexpected stored row: %+v", reloaded)
	}
}

func TestAcceptChanges_DetachesDeleted(t *testing.T) {
	s := New(nil, testutil.Logger(t))
	p := newProduct(t, "Gone")
	e := Track(s, productDescriptor(t), p, Deleted)
	s.AcceptChanges([]*Entry{e})
	if _, ok := s.Lookup("products", p.ID); ok {
		t.Fatalf("deleted entry still tracked")
	}
}
