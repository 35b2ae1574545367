package catalog

import (
	"context"

	"github.com/yungbote/baseapi-backend/internal/data/criteria"
	"github.com/yungbote/baseapi-backend/internal/data/repos/generic"
	"github.com/yungbote/baseapi-backend/internal/data/session"
	types "github.com/yungbote/baseapi-backend/internal/domain"
	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
	"github.com/yungbote/baseapi-backend/internal/pkg/logger"
)

// DefaultLowStockThreshold is the stock level callers use for "low stock" unless they have their own.
const DefaultLowStockThreshold = 10

// ProductRepo is the generic product repository plus catalog queries. Every
// query excludes soft-deleted products.
type ProductRepo struct {
	*generic.Repository[types.Product, *types.Product]
}

func NewProductRepo(sess *session.Session, baseLog *logger.Logger) *ProductRepo {
	return &ProductRepo{Repository: generic.MustNew[types.Product](sess, baseLog.With("repo", "ProductRepo"))}
}

func (r *ProductRepo) GetByStatus(ctx context.Context, status types.ProductStatus) ([]*types.Product, error) {
	return r.Find(ctx, criteria.NewQuery(criteria.Eq("status", string(status))).OrderBy("name"))
}

// GetByName matches products whose name contains name.
func (r *ProductRepo) GetByName(ctx context.Context, name string) ([]*types.Product, error) {
	if name == "" {
		return nil, aggregates.ValidationError("product_repo.get_by_name", "name is required")
	}
	return r.Find(ctx, criteria.NewQuery(criteria.Contains("name", name)).OrderBy("name"))
}

// GetByPriceRange returns products priced within [min, max].
func (r *ProductRepo) GetByPriceRange(ctx context.Context, min, max float64) ([]*types.Product, error) {
	if min < 0 || max < min {
		return nil, aggregates.ValidationError("product_repo.get_by_price_range", "price range is invalid")
	}
	c := criteria.Gte("price", min).And(criteria.Lte("price", max))
	return r.Find(ctx, criteria.NewQuery(c).OrderBy("price"))
}

// GetLowStock returns active products whose stock is at or below threshold.
func (r *ProductRepo) GetLowStock(ctx context.Context, threshold int) ([]*types.Product, error) {
	if threshold < 0 {
		return nil, aggregates.ValidationError("product_repo.get_low_stock", "threshold cannot be negative")
	}
	c := criteria.Lte("stock", threshold).And(criteria.Eq("status", string(types.ProductStatusActive)))
	return r.Find(ctx, criteria.NewQuery(c).OrderBy("stock"))
}
