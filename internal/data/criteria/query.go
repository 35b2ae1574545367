package criteria

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Order sorts by one column.
type Order struct {
	Field string
	Desc  bool
}

func Asc(field string) Order  { return Order{Field: field} }
func Desc(field string) Order { return Order{Field: field, Desc: true} }

// Query bundles filter, ordering and paging. A nil Limit means unbounded;
// Take(0) selects nothing.
type Query struct {
	Criteria Criteria
	Orders   []Order
	Offset   int
	Limit    *int
}

func NewQuery(c Criteria) Query { return Query{Criteria: c} }

func (q Query) OrderBy(field string) Query {
	q.Orders = append(append([]Order(nil), q.Orders...), Asc(field))
	return q
}

func (q Query) OrderByDesc(field string) Query {
	q.Orders = append(append([]Order(nil), q.Orders...), Desc(field))
	return q
}

func (q Query) Skip(n int) Query {
	q.Offset = n
	return q
}

func (q Query) Take(n int) Query {
	q.Limit = &n
	return q
}

// Unpaged drops skip and take, keeping filter and ordering.
func (q Query) Unpaged() Query {
	q.Offset = 0
	q.Limit = nil
	return q
}

// Page returns the bounds of the skip/take window over n already ordered rows.
func (q Query) Page(n int) (lo, hi int) {
	lo = min(max(q.Offset, 0), n)
	hi = n
	if q.Limit != nil {
		hi = min(lo+max(*q.Limit, 0), n)
	}
	return lo, hi
}

// Compare orders two rows by the query's orderings, returning -1, 0 or 1.
// Values that cannot be compared count as equal.
func (q Query) Compare(a, b func(string) (any, bool)) int {
	for _, o := range q.Orders {
		av, _ := a(o.Field)
		bv, _ := b(o.Field)
		n := compare(av, bv)
		if n == incomparable || n == 0 {
			continue
		}
		if o.Desc {
			return -n
		}
		return n
	}
	return 0
}

// Validate checks columns in filters and orderings, and paging bounds.
func (q Query) Validate(known func(string) bool) error {
	if err := q.Criteria.Validate(known); err != nil {
		return err
	}
	for _, o := range q.Orders {
		if !known(o.Field) {
			return fmt.Errorf("unknown order field %q", o.Field)
		}
	}
	if q.Offset < 0 {
		return fmt.Errorf("skip must be >= 0, got %d", q.Offset)
	}
	if q.Limit != nil && *q.Limit < 0 {
		return fmt.Errorf("take must be >= 0, got %d", *q.Limit)
	}
	return nil
}

// Apply pushes filter, ordering and paging down to db.
func (q Query) Apply(db *gorm.DB) *gorm.DB {
	db = q.Criteria.Apply(db)
	for _, o := range q.Orders {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Field}, Desc: o.Desc})
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	if q.Limit != nil {
		db = db.Limit(*q.Limit)
	}
	return db
}
