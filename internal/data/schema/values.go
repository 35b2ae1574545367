package schema

import (
	"fmt"
	"time"
)

// Values is an ordered column -> canonical value snapshot.
type Values struct {
	names []string
	vals  map[string]any
}

func (v Values) Len() int { return len(v.names) }

func (v Values) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

func (v Values) Get(name string) (any, bool) {
	val, ok := v.vals[name]
	return val, ok
}

// Map copies the snapshot into a plain map, e.g. for JSON encoding.
func (v Values) Map() map[string]any {
	out := make(map[string]any, len(v.vals))
	for k, val := range v.vals {
		out[k] = val
	}
	return out
}

// Subset copies only the named columns.
func (v Values) Subset(names []string) map[string]any {
	out := make(map[string]any, len(names))
	for _, n := range names {
		if val, ok := v.vals[n]; ok {
			out[n] = val
		}
	}
	return out
}

// Changed lists, in column order, the columns whose value in cur differs from v.
func (v Values) Changed(cur Values) []string {
	var out []string
	for _, n := range v.names {
		a := v.vals[n]
		b, ok := cur.vals[n]
		if !ok || !Equal(a, b) {
			out = append(out, n)
		}
	}
	return out
}

// Equal compares two canonical values.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case time.Time:
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	case string, bool, int, int64, float64, uint, uint64, int32, float32:
		return a == b
	default:
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
}
