package schema

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
)

// Model ties an aggregate struct T to its pointer type, which carries the entity contract.
type Model[T any] interface {
	*T
	aggregates.Entity
}

// DeletePolicy is the deletion capability of an aggregate type.
type DeletePolicy uint8

const (
	DeleteHard DeletePolicy = iota
	DeleteSoft
)

func (p DeletePolicy) String() string {
	if p == DeleteSoft {
		return "soft"
	}
	return "hard"
}

// Field is one named column and its accessor. Get must return a canonical value
// (see Time, TimePtr, String, UUID) so snapshots compare without reflection.
type Field[T any] struct {
	Name string
	Get  func(*T) any
}

// Descriptor lists the audited columns of one aggregate type, in column order.
type Descriptor[T any] struct {
	Table  string
	Fields []Field[T]
	Policy DeletePolicy
	// Auditable is false for the audit/log tables themselves.
	Auditable bool

	index map[string]int
}

// Snapshot reads every described field of e.
func (d *Descriptor[T]) Snapshot(e *T) Values {
	v := Values{names: make([]string, 0, len(d.Fields)), vals: make(map[string]any, len(d.Fields))}
	for _, f := range d.Fields {
		v.names = append(v.names, f.Name)
		v.vals[f.Name] = f.Get(e)
	}
	return v
}

// HasField reports whether name is a described column.
func (d *Descriptor[T]) HasField(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Columns returns the described column names in order.
func (d *Descriptor[T]) Columns() []string {
	out := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		out = append(out, f.Name)
	}
	return out
}

func (d *Descriptor[T]) validate() error {
	if d.Table == "" {
		return fmt.Errorf("schema: descriptor without table")
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("schema: descriptor %s has no fields", d.Table)
	}
	d.index = make(map[string]int, len(d.Fields))
	for i, f := range d.Fields {
		if f.Name == "" || f.Get == nil {
			return fmt.Errorf("schema: descriptor %s field %d incomplete", d.Table, i)
		}
		if _, dup := d.index[f.Name]; dup {
			return fmt.Errorf("schema: descriptor %s duplicates field %s", d.Table, f.Name)
		}
		d.index[f.Name] = i
	}
	if d.Policy == DeleteSoft && !d.HasField("is_deleted") {
		return fmt.Errorf("schema: soft-delete descriptor %s lacks is_deleted", d.Table)
	}
	return nil
}

var (
	regMu    sync.RWMutex
	registry = map[string]any{}
)

// Register installs d for its table. Registering the same table twice is an error.
func Register[T any, PT Model[T]](d Descriptor[T]) error {
	var zero T
	if table := PT(&zero).TableName(); table != d.Table {
		return fmt.Errorf("schema: descriptor table %q does not match model table %q", d.Table, table)
	}
	if err := d.validate(); err != nil {
		return err
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, exists := registry[d.Table]; exists {
		return fmt.Errorf("schema: table %s already registered", d.Table)
	}
	registry[d.Table] = &d
	return nil
}

// MustRegister is Register for package initialization.
func MustRegister[T any, PT Model[T]](d Descriptor[T]) {
	if err := Register[T, PT](d); err != nil {
		panic(err)
	}
}

// For returns the registered descriptor of T, keyed by its table name.
func For[T any, PT Model[T]]() (*Descriptor[T], error) {
	var zero T
	table := PT(&zero).TableName()
	regMu.RLock()
	raw, ok := registry[table]
	regMu.RUnlock()
	if !ok {
		return nil, aggregates.NewError(aggregates.CodeInternal, "schema.for", "no descriptor registered for "+table, nil)
	}
	d, ok := raw.(*Descriptor[T])
	if !ok {
		return nil, aggregates.NewError(aggregates.CodeInternal, "schema.for", "descriptor type mismatch for "+table, nil)
	}
	return d, nil
}

// TableOf is the type tag of T used by registries.
func TableOf[T any, PT Model[T]]() string {
	var zero T
	return PT(&zero).TableName()
}

// Time canonicalizes a timestamp to UTC microseconds, the precision both supported databases keep.
func Time(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Truncate(time.Microsecond)
}

func TimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return Time(*t)
}

func String(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func UUID(id uuid.UUID) any {
	return id.String()
}

func IntPtr(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}
