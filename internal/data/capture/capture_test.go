package capture

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/yungbote/baseapi-backend/internal/data/repos/testutil"
	"github.com/yungbote/baseapi-backend/internal/data/schema"
	"github.com/yungbote/baseapi-backend/internal/data/session"
	"github.com/yungbote/baseapi-backend/internal/domain/audit"
	"github.com/yungbote/baseapi-backend/internal/domain/catalog"
)

var fixedNow = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

func newCapturer(t *testing.T) *Capturer {
	t.Helper()
	return New(testutil.Logger(t), WithClock(func() time.Time { return fixedNow }), WithSource("tests"))
}

func descriptors(t *testing.T) (*schema.Descriptor[catalog.Product], *schema.Descriptor[audit.AuditLog]) {
	t.Helper()
	pd, err := schema.For[catalog.Product]()
	if err != nil {
		t.Fatalf("For[Product]: %v", err)
	}
	ad, err := schema.For[audit.AuditLog]()
	if err != nil {
		t.Fatalf("For[AuditLog]: %v", err)
	}
	return pd, ad
}

func TestBefore_ClassifiesAndDiffs(t *testing.T) {
	pd, ad := descriptors(t)
	s := session.New(nil, testutil.Logger(t))

	inserted, _ := catalog.NewProduct("New", "", 1, "USD", 1, nil)
	updated, _ := catalog.NewProduct("Old", "desc", 9.99, "USD", 5, nil)
	deleted, _ := catalog.NewProduct("Gone", "", 2, "USD", 2, nil)
	session.Track(s, pd, inserted, session.Added)
	session.Track(s, pd, updated, session.Unchanged)
	session.Track(s, pd, deleted, session.Deleted)
	session.Track(s, ad, &audit.AuditLog{Table: "products"}, session.Added)
	updated.Price = 12.5
	updated.Stock = 3

	actor := audit.NewActor("7", "alice", "10.0.0.1", "go-test")
	entries := newCapturer(t).Before(s.Pending(), actor)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries (audit rows skipped), got %d", len(entries))
	}

	ins, upd, del := entries[0], entries[1], entries[2]
	if ins.Action != audit.ActionInsert || ins.OldValues != nil || ins.NewValues["name"] != "New" {
		t.Fatalf("unexpected insert entry: %+v", ins)
	}
	if upd.Action != audit.ActionUpdate {
		t.Fatalf("expected update, got %s", upd.Action)
	}
	if len(upd.AffectedColumns) != 2 || upd.AffectedColumns[0] != "price" || upd.AffectedColumns[1] != "stock" {
		t.Fatalf("AffectedColumns = %v", upd.AffectedColumns)
	}
	if upd.OldValues["price"] != 9.99 || upd.NewValues["stock"] != 3 {
		t.Fatalf("unexpected update values old=%v new=%v", upd.OldValues, upd.NewValues)
	}
	if _, ok := upd.NewValues["name"]; ok {
		t.Fatalf("unchanged fields must not be captured")
	}
	if del.Action != audit.ActionDelete || del.NewValues != nil || del.OldValues["name"] != "Gone" {
		t.Fatalf("unexpected delete entry: %+v", del)
	}
	if ins.EntityID != inserted.ID.String() || !ins.Timestamp.Equal(fixedNow) || *ins.Actor.UserName != "alice" {
		t.Fatalf("entry not stamped: %+v", ins)
	}
}

func TestRecords_OneAuditAndOneLogPerEntry(t *testing.T) {
	c := newCapturer(t)
	entries := []Entry{{
		Table:           "products",
		Action:          audit.ActionUpdate,
		EntityID:        "abc",
		OldValues:       map[string]any{"stock": 5},
		NewValues:       map[string]any{"stock": 3},
		AffectedColumns: []string{"stock"},
		Actor:           audit.NewActor("7", "alice", "", ""),
		Timestamp:       fixedNow,
	}}
	audits, ops, err := c.Records(entries)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(audits) != 1 || len(ops) != 1 {
		t.Fatalf("expected 1 audit and 1 log, got %d/%d", len(audits), len(ops))
	}
	a := audits[0]
	if a.TargetID != "abc" || a.Table != "products" || a.AffectedColumns == nil || *a.AffectedColumns != "stock" {
		t.Fatalf("unexpected audit row: %+v", a)
	}
	var newValues map[string]any
	if err := json.Unmarshal(a.NewValues, &newValues); err != nil {
		t.Fatalf("new values not JSON: %v", err)
	}
	if newValues["stock"] != float64(3) {
		t.Fatalf("new values = %v", newValues)
	}
	op := ops[0]
	if op.Level != audit.LevelInfo || op.Message != "Database operation: UPDATE on products (ID: abc)" || *op.Source != "tests" {
		t.Fatalf("unexpected log row: %+v", op)
	}
}

func TestPersist_WritesBothTables(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	c := newCapturer(t)
	entries := []Entry{
		{Table: "products", Action: audit.ActionInsert, EntityID: "a", NewValues: map[string]any{"name": "x"}, Timestamp: fixedNow},
		{Table: "products", Action: audit.ActionDelete, EntityID: "b", OldValues: map[string]any{"name": "y"}, Timestamp: fixedNow},
	}
	if err := c.Persist(ctx, db, entries); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if n := testutil.CountRows(t, db, &audit.AuditLog{}); n != 2 {
		t.Fatalf("audit rows = %d, want 2", n)
	}
	if n := testutil.CountRows(t, db, &audit.OperationLog{}); n != 2 {
		t.Fatalf("log rows = %d, want 2", n)
	}
}

func TestPersist_FailureRollsBackBoth(t *testing.T) {
	ctx := context.Background()
	log, _ := testutil.ObservedLogger(t, zapcore.DebugLevel)
	db := testutil.DBWithLogger(t, log)
	fault := errors.New("logs table unavailable")
	testutil.FailOn(t, db, "create", "logs", fault)

	err := New(log).Persist(ctx, db, []Entry{{Table: "products", Action: audit.ActionInsert, EntityID: "a", Timestamp: fixedNow}})
	if !errors.Is(err, fault) {
		t.Fatalf("expected injected fault, got %v", err)
	}
	if n := testutil.CountRows(t, db, &audit.AuditLog{}); n != 0 {
		t.Fatalf("audit rows = %d, want 0 after rollback", n)
	}
}

func TestPersist_NothingToWrite(t *testing.T) {
	if err := newCapturer(t).Persist(context.Background(), nil, nil); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
