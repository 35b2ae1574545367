package criteria

import (
	"testing"
	"time"
)

func known(fields ...string) func(string) bool {
	set := map[string]bool{}
	for _, f := range fields {
		set[f] = true
	}
	return func(name string) bool { return set[name] }
}

func row(values map[string]any) func(string) (any, bool) {
	return func(name string) (any, bool) {
		v, ok := values[name]
		return v, ok
	}
}

func TestValidate(t *testing.T) {
	k := known("name", "stock")
	if err := Eq("name", "x").And(Lte("stock", 3)).Validate(k); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := Eq("price", 1).Validate(k); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if err := Where("name", OpContains, 3).Validate(k); err == nil {
		t.Fatalf("expected contains type error")
	}
	if err := Where("name", Operator("regex"), "x").Validate(k); err == nil {
		t.Fatalf("expected unsupported operator error")
	}
	if err := NewQuery(Criteria{}).OrderBy("price").Validate(k); err == nil {
		t.Fatalf("expected unknown order field error")
	}
	if err := NewQuery(Criteria{}).Take(-1).Validate(k); err == nil {
		t.Fatalf("expected negative take error")
	}
}

func TestMatch(t *testing.T) {
	r := row(map[string]any{
		"name":   "Blue Widget",
		"stock":  5,
		"price":  9.99,
		"status": "active",
		"when":   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"gone":   nil,
	})
	cases := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"eq", Eq("status", "active"), true},
		{"ne", Ne("status", "active"), false},
		{"lte int", Lte("stock", 10), true},
		{"lte excludes", Lte("stock", 3), false},
		{"mixed numbers", Gt("price", 9), true},
		{"gte float", Gte("price", 9.99), true},
		{"lt time", Lt("when", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)), true},
		{"contains", Contains("name", "Widget"), true},
		{"contains ignores case", Contains("name", "widget"), true},
		{"contains underscore is literal", Contains("name", "_"), false},
		{"contains percent is literal", Contains("name", "%"), false},
		{"in", In("status", "inactive", "active"), true},
		{"in misses", In("status", "discontinued"), false},
		{"nil eq", Eq("gone", nil), true},
		{"nil ordered", Lt("gone", 1), false},
		{"unknown column", Eq("missing", 1), false},
		{"and", Lte("stock", 10).And(Eq("status", "active")), true},
		{"and fails", Lte("stock", 10).And(Eq("status", "inactive")), false},
		{"empty", Criteria{}, true},
	}
	for _, tc := range cases {
		if got := tc.c.Match(r); got != tc.want {
			t.Fatalf("%s: Match = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestQuery_BuildersDoNotAlias(t *testing.T) {
	base := NewQuery(Eq("status", "active")).OrderBy("name")
	a := base.OrderByDesc("price")
	b := base.OrderBy("stock")
	if len(a.Orders) != 2 || len(b.Orders) != 2 {
		t.Fatalf("unexpected orders a=%v b=%v", a.Orders, b.Orders)
	}
	if a.Orders[1].Field != "price" || !a.Orders[1].Desc || b.Orders[1].Field != "stock" {
		t.Fatalf("builders share backing arrays: a=%v b=%v", a.Orders, b.Orders)
	}
	q := base.Skip(5).Take(10)
	if q.Offset != 5 || q.Limit == nil || *q.Limit != 10 || base.Limit != nil {
		t.Fatalf("paging not applied by value: %+v", q)
	}
}

func TestCriteria_AndDoesNotAlias(t *testing.T) {
	base := Eq("a", 1)
	x := base.And(Eq("b", 2))
	y := base.And(Eq("c", 3))
	if x.Conditions[1].Field != "b" || y.Conditions[1].Field != "c" || len(base.Conditions) != 1 {
		t.Fatalf("And aliases conditions: x=%v y=%v", x.Fields(), y.Fields())
	}
}

func TestLikeEscaper(t *testing.T) {
	cases := map[string]string{
		"widget":     "widget",
		"50%":        `50\%`,
		"a_b":        `a\_b`,
		`back\slash`: `back\\slash`,
	}
	for in, want := range cases {
		if got := likeEscaper.Replace(in); got != want {
			t.Fatalf("escape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuery_Page(t *testing.T) {
	cases := []struct {
		name   string
		q      Query
		n      int
		lo, hi int
	}{
		{"unbounded", Query{}, 4, 0, 4},
		{"take zero", Query{}.Take(0), 4, 0, 0},
		{"skip and take", Query{}.Skip(1).Take(2), 4, 1, 3},
		{"take past end", Query{}.Skip(3).Take(5), 4, 3, 4},
		{"skip past end", Query{}.Skip(9), 4, 4, 4},
	}
	for _, tc := range cases {
		lo, hi := tc.q.Page(tc.n)
		if lo != tc.lo || hi != tc.hi {
			t.Fatalf("%s: Page = [%d,%d), want [%d,%d)", tc.name, lo, hi, tc.lo, tc.hi)
		}
	}
	if u := (Query{}).Skip(2).Take(1).Unpaged(); u.Offset != 0 || u.Limit != nil {
		t.Fatalf("Unpaged kept paging: %+v", u)
	}
}

func TestQuery_Compare(t *testing.T) {
	a := row(map[string]any{"name": "Alpha", "stock": 3})
	b := row(map[string]any{"name": "Bravo", "stock": 3})
	if got := NewQuery(Criteria{}).OrderBy("name").Compare(a, b); got != -1 {
		t.Fatalf("asc name = %d, want -1", got)
	}
	if got := NewQuery(Criteria{}).OrderByDesc("name").Compare(a, b); got != 1 {
		t.Fatalf("desc name = %d, want 1", got)
	}
	if got := NewQuery(Criteria{}).OrderBy("stock").OrderByDesc("name").Compare(a, b); got != 1 {
		t.Fatalf("tie on stock then desc name = %d, want 1", got)
	}
	if got := NewQuery(Criteria{}).Compare(a, b); got != 0 {
		t.Fatalf("no orderings = %d, want 0", got)
	}
}
