package criteria

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Operator is a comparison supported by both the SQL translation and in-memory matching.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpContains Operator = "contains" // case-insensitive substring
	OpIn       Operator = "in"
)

// Condition compares one column to a value.
type Condition struct {
	Field string
	Op    Operator
	Value any
}

// Criteria is a conjunction of conditions. The zero value matches everything.
type Criteria struct {
	Conditions []Condition
}

func Where(field string, op Operator, value any) Criteria {
	return Criteria{Conditions: []Condition{{Field: field, Op: op, Value: value}}}
}

func Eq(field string, value any) Criteria { return Where(field, OpEq, value) }
func Ne(field string, value any) Criteria { return Where(field, OpNe, value) }
func Lt(field string, value any) Criteria { return Where(field, OpLt, value) }
func Lte(field string, value any) Criteria { return Where(field, OpLte, value) }
func Gt(field string, value any) Criteria { return Where(field, OpGt, value) }
func Gte(field string, value any) Criteria { return Where(field, OpGte, value) }
func Contains(field, value string) Criteria { return Where(field, OpContains, value) }
func In(field string, values ...any) Criteria { return Where(field, OpIn, values) }

// And appends the conditions of other.
func (c Criteria) And(other Criteria) Criteria {
	out := Criteria{Conditions: make([]Condition, 0, len(c.Conditions)+len(other.Conditions))}
	out.Conditions = append(out.Conditions, c.Conditions...)
	out.Conditions = append(out.Conditions, other.Conditions...)
	return out
}

func (c Criteria) Empty() bool { return len(c.Conditions) == 0 }

// Fields lists the referenced columns.
func (c Criteria) Fields() []string {
	out := make([]string, 0, len(c.Conditions))
	for _, cond := range c.Conditions {
		out = append(out, cond.Field)
	}
	return out
}

// Validate rejects unknown columns and operators. known reports whether a column exists.
func (c Criteria) Validate(known func(string) bool) error {
	for _, cond := range c.Conditions {
		if !known(cond.Field) {
			return fmt.Errorf("unknown field %q", cond.Field)
		}
		switch cond.Op {
		case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
		case OpContains:
			if _, ok := cond.Value.(string); !ok {
				return fmt.Errorf("contains on %q requires a string value", cond.Field)
			}
		case OpIn:
			if _, ok := cond.Value.([]any); !ok {
				return fmt.Errorf("in on %q requires a value list", cond.Field)
			}
		default:
			return fmt.Errorf("unsupported operator %q", cond.Op)
		}
	}
	return nil
}

// Apply pushes the conditions down as gorm clauses.
func (c Criteria) Apply(db *gorm.DB) *gorm.DB {
	for _, cond := range c.Conditions {
		db = db.Where(cond.expression())
	}
	return db
}

// likeEscaper makes LIKE treat the pattern characters of a contains value literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (cond Condition) expression() clause.Expression {
	col := clause.Column{Name: cond.Field}
	switch cond.Op {
	case OpNe:
		return clause.Neq{Column: col, Value: cond.Value}
	case OpLt:
		return clause.Lt{Column: col, Value: cond.Value}
	case OpLte:
		return clause.Lte{Column: col, Value: cond.Value}
	case OpGt:
		return clause.Gt{Column: col, Value: cond.Value}
	case OpGte:
		return clause.Gte{Column: col, Value: cond.Value}
	case OpContains:
		pattern := "%" + likeEscaper.Replace(strings.ToLower(cond.Value.(string))) + "%"
		return clause.Expr{SQL: "LOWER(?) LIKE ? ESCAPE '\\'", Vars: []any{col, pattern}}
	case OpIn:
		return clause.IN{Column: col, Values: cond.Value.([]any)}
	default:
		return clause.Eq{Column: col, Value: cond.Value}
	}
}

// Match evaluates the conditions against canonical column values. get returns
// the value of a column and whether it exists.
func (c Criteria) Match(get func(string) (any, bool)) bool {
	for _, cond := range c.Conditions {
		v, ok := get(cond.Field)
		if !ok || !cond.matches(v) {
			return false
		}
	}
	return true
}

func (cond Condition) matches(v any) bool {
	switch cond.Op {
	case OpEq:
		return compare(v, cond.Value) == 0
	case OpNe:
		return compare(v, cond.Value) != 0
	case OpLt:
		return ordered(v, cond.Value, func(n int) bool { return n < 0 })
	case OpLte:
		return ordered(v, cond.Value, func(n int) bool { return n <= 0 })
	case OpGt:
		return ordered(v, cond.Value, func(n int) bool { return n > 0 })
	case OpGte:
		return ordered(v, cond.Value, func(n int) bool { return n >= 0 })
	case OpContains:
		s, ok := v.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(cond.Value.(string)))
	case OpIn:
		for _, want := range cond.Value.([]any) {
			if compare(v, want) == 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

const incomparable = 2

func ordered(a, b any, ok func(int) bool) bool {
	n := compare(a, b)
	return n != incomparable && ok(n)
}

// compare returns -1, 0, 1, or incomparable. Numbers compare as float64,
// named string types compare by their string form.
func compare(a, b any) int {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0
		}
		return incomparable
	}
	if af, ok := number(a); ok {
		bf, ok := number(b)
		if !ok {
			return incomparable
		}
		return sign(af - bf)
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		if !ok {
			return incomparable
		}
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		default:
			return 0
		}
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		if !ok {
			return incomparable
		}
		if ab == bb {
			return 0
		}
		return incomparable
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func sign(f float64) int {
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	default:
		return 0
	}
}
