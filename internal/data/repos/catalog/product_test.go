package catalog

import (
	"context"
	"testing"

	"github.com/yungbote/baseapi-backend/internal/data/repos/testutil"
	"github.com/yungbote/baseapi-backend/internal/data/session"
	types "github.com/yungbote/baseapi-backend/internal/domain"
	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
)

func TestProductRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	widget := testutil.SeedProduct(t, ctx, db, "Widget", 9.99, 5)
	gadget := testutil.SeedProduct(t, ctx, db, "Gadget", 25, 40)
	gizmo := testutil.SeedProduct(t, ctx, db, "Widget Pro", 49.5, 2)

	repo := NewProductRepo(session.New(db, testutil.Logger(t)), testutil.Logger(t))

	byName, err := repo.GetByName(ctx, "Widget")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if len(byName) != 2 || byName[0].ID != widget.ID || byName[1].ID != gizmo.ID {
		t.Fatalf("GetByName: unexpected result: %d rows", len(byName))
	}

	inRange, err := repo.GetByPriceRange(ctx, 10, 30)
	if err != nil {
		t.Fatalf("GetByPriceRange: %v", err)
	}
	if len(inRange) != 1 || inRange[0].ID != gadget.ID {
		t.Fatalf("GetByPriceRange: unexpected result: %d rows", len(inRange))
	}
	if _, err := repo.GetByPriceRange(ctx, 30, 10); !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("GetByPriceRange inverted: expected validation, got %v", err)
	}

	low, err := repo.GetLowStock(ctx, DefaultLowStockThreshold)
	if err != nil {
		t.Fatalf("GetLowStock: %v", err)
	}
	if len(low) != 2 || low[0].ID != gizmo.ID || low[1].ID != widget.ID {
		t.Fatalf("GetLowStock: expected gizmo then widget, got %d rows", len(low))
	}
	low, err = repo.GetLowStock(ctx, 3)
	if err != nil {
		t.Fatalf("GetLowStock(3): %v", err)
	}
	if len(low) != 1 || low[0].ID != gizmo.ID {
		t.Fatalf("GetLowStock(3): unexpected result: %d rows", len(low))
	}
	if _, err := repo.GetLowStock(ctx, -1); !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("GetLowStock(-1): expected validation, got %v", err)
	}

	// Staged edits on tracked instances win over stored values.
	low[0].Deactivate(nil)
	low, err = repo.GetLowStock(ctx, 3)
	if err != nil {
		t.Fatalf("GetLowStock after deactivate: %v", err)
	}
	if len(low) != 0 {
		t.Fatalf("deactivated product must not be low stock, got %d rows", len(low))
	}
	inactive, err := repo.GetByStatus(ctx, types.ProductStatusInactive)
	if err != nil {
		t.Fatalf("GetByStatus: %v", err)
	}
	if len(inactive) != 0 {
		t.Fatalf("GetByStatus reads stored status, got %d rows", len(inactive))
	}
}
