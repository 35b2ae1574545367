package aggregates

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the minimal shape every persisted aggregate satisfies.
type Entity interface {
	EntityID() uuid.UUID
	TableName() string
}

// SoftDeletable aggregates flag deletion instead of removing rows.
// Default reads exclude rows where IsDeletedFlag reports true.
type SoftDeletable interface {
	Entity
	IsDeletedFlag() bool
}

// Base carries identity and creation/update metadata. Embed it by value.
type Base struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime:false" json:"created_at"`
	CreatedBy *string    `gorm:"size:100" json:"created_by,omitempty"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
	UpdatedBy *string    `gorm:"size:100" json:"updated_by,omitempty"`
}

// NewBase assigns a fresh identifier and creation metadata.
func NewBase(createdBy *string, now time.Time) Base {
	return Base{
		ID:        uuid.New(),
		CreatedAt: now.UTC(),
		CreatedBy: createdBy,
	}
}

func (b *Base) EntityID() uuid.UUID { return b.ID }

// Touch stamps the last-update metadata.
func (b *Base) Touch(actor *string, now time.Time) {
	t := now.UTC()
	b.UpdatedAt = &t
	b.UpdatedBy = actor
}

// Deletion holds reversible-deletion state. Embed it by value next to Base.
type Deletion struct {
	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy *string    `gorm:"size:100" json:"deleted_by,omitempty"`
}

func (s *Deletion) IsDeletedFlag() bool { return s.IsDeleted }

// MarkDeleted moves Active -> Deleted. Deleting twice is a lifecycle error and leaves state untouched.
func (s *Deletion) MarkDeleted(actor *string, now time.Time) error {
	if s.IsDeleted {
		return LifecycleError("soft_delete", "aggregate is already deleted")
	}
	t := now.UTC()
	s.IsDeleted = true
	s.DeletedAt = &t
	s.DeletedBy = actor
	return nil
}

// ClearDeleted moves Deleted -> Active. Restoring an active aggregate is a lifecycle error.
func (s *Deletion) ClearDeleted() error {
	if !s.IsDeleted {
		return LifecycleError("restore", "aggregate is not deleted")
	}
	s.IsDeleted = false
	s.DeletedAt = nil
	s.DeletedBy = nil
	return nil
}
