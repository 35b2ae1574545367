package schema

import (
	"testing"
	"time"

	"github.com/yungbote/baseapi-backend/internal/domain/audit"
	"github.com/yungbote/baseapi-backend/internal/domain/catalog"
	"github.com/yungbote/baseapi-backend/internal/domain/user"
)

func TestFor_RegisteredAggregates(t *testing.T) {
	pd, err := For[catalog.Product]()
	if err != nil {
		t.Fatalf("For[Product]: %v", err)
	}
	if pd.Table != "products" || pd.Policy != DeleteSoft || !pd.Auditable {
		t.Fatalf("unexpected product descriptor: table=%s policy=%s auditable=%v", pd.Table, pd.Policy, pd.Auditable)
	}
	ud, err := For[user.User]()
	if err != nil {
		t.Fatalf("For[User]: %v", err)
	}
	if ud.Policy != DeleteHard {
		t.Fatalf("users must be hard-deletable")
	}
	ad, err := For[audit.AuditLog]()
	if err != nil {
		t.Fatalf("For[AuditLog]: %v", err)
	}
	if ad.Auditable {
		t.Fatalf("audit rows must never be audited")
	}
	if TableOf[audit.OperationLog]() != "logs" {
		t.Fatalf("unexpected operation log table")
	}
}

func TestRegister_RejectsDuplicatesAndMismatches(t *testing.T) {
	if err := Register[catalog.Product](ProductDescriptor()); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	d := ProductDescriptor()
	d.Table = "widgets"
	if err := Register[catalog.Product](d); err == nil {
		t.Fatalf("expected table mismatch error")
	}
}

func TestDescriptor_ValidateSoftDeleteNeedsFlag(t *testing.T) {
	d := Descriptor[catalog.Product]{
		Table:  "products",
		Policy: DeleteSoft,
		Fields: []Field[catalog.Product]{
			{Name: "name", Get: func(p *catalog.Product) any { return p.Name }},
		},
	}
	if err := d.validate(); err == nil {
		t.Fatalf("expected missing is_deleted error")
	}
	d.Fields = append(d.Fields, Field[catalog.Product]{Name: "name", Get: func(p *catalog.Product) any { return p.Name }})
	if err := d.validate(); err == nil {
		t.Fatalf("expected duplicate field error")
	}
}

func TestSnapshot_ChangedInColumnOrder(t *testing.T) {
	d, err := For[catalog.Product]()
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	p, err := catalog.NewProduct("Widget", "A widget", 9.99, "USD", 5, nil)
	if err != nil {
		t.Fatalf("NewProduct: %v", err)
	}
	before := d.Snapshot(p)
	p.Stock = 7
	p.Price = 12.5
	after := d.Snapshot(p)

	changed := before.Changed(after)
	if len(changed) != 2 || changed[0] != "price" || changed[1] != "stock" {
		t.Fatalf("Changed = %v, want [price stock]", changed)
	}
	old := before.Subset(changed)
	if old["price"] != 9.99 || old["stock"] != 5 {
		t.Fatalf("unexpected old values: %v", old)
	}
	if before.Len() != len(d.Fields) || before.Names()[0] != "id" {
		t.Fatalf("snapshot does not follow descriptor order: %v", before.Names())
	}
}

func TestEqual_CanonicalValues(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.UTC)
	local := ts.In(time.FixedZone("x", 7200))
	if !Equal(Time(ts), Time(local)) {
		t.Fatalf("same instant in different zones must be equal")
	}
	if !Equal(Time(ts), Time(ts.Add(100*time.Nanosecond))) {
		t.Fatalf("sub-microsecond differences are below storage precision")
	}
	if Equal(nil, "x") || !Equal(nil, nil) {
		t.Fatalf("nil handling broken")
	}
	if Equal(5, 6) || !Equal("a", "a") {
		t.Fatalf("scalar comparison broken")
	}
	if Time(time.Time{}) != nil || TimePtr(nil) != nil || String(nil) != nil || IntPtr(nil) != nil {
		t.Fatalf("zero values must canonicalize to nil")
	}
}
