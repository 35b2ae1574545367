package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/baseapi-backend/internal/domain"
	"github.com/yungbote/baseapi-backend/internal/domain/catalog"
	"github.com/yungbote/baseapi-backend/internal/domain/user"
)

// SeedProduct stores a product directly, bypassing any unit of work.
func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, price float64, stock int) *types.Product {
	tb.Helper()
	p, err := catalog.NewProduct(name, name+" description", price, "USD", stock, nil)
	if err != nil {
		tb.Fatalf("build product: %v", err)
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

// SeedUser stores a user directly, bypassing any unit of work.
func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, userName, email string) *types.User {
	tb.Helper()
	u, err := user.NewUser(userName, email, "A", "B", nil)
	if err != nil {
		tb.Fatalf("build user: %v", err)
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func CountRows(tb testing.TB, tx *gorm.DB, model any) int64 {
	tb.Helper()
	var n int64
	if err := tx.Model(model).Count(&n).Error; err != nil {
		tb.Fatalf("count rows: %v", err)
	}
	return n
}

func Ptr[T any](v T) *T { return &v }
