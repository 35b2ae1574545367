package session

import (
	"github.com/google/uuid"
	"github.com/yungbote/baseapi-backend/internal/data/schema"
	"gorm.io/gorm"
)

// Entry is one tracked entity.
type Entry struct {
	Table     string
	ID        uuid.UUID
	State     State
	Entity    any
	Auditable bool

	original schema.Values
	snapshot func() schema.Values
	insert   func(tx *gorm.DB) *gorm.DB
	update   func(tx *gorm.DB, cols []string) *gorm.DB
	remove   func(tx *gorm.DB) *gorm.DB
}

// Original is the snapshot taken when the entity was loaded or last committed.
func (e *Entry) Original() schema.Values { return e.original }

// Current snapshots the entity as it is now.
func (e *Entry) Current() schema.Values { return e.snapshot() }

// ChangedColumns lists columns whose current value differs from the original.
func (e *Entry) ChangedColumns() []string {
	return e.original.Changed(e.snapshot())
}

// WithOriginal replaces the original snapshot, e.g. with the stored row of an
// entity that was attached without being loaded through the session.
func (e *Entry) WithOriginal(v schema.Values) *Entry {
	e.original = v
	return e
}
