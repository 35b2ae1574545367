package audit

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// AuditLog is one immutable record of a committed mutation. TargetID holds the
// string form of the mutated aggregate's identifier (column entity_id).
type AuditLog struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Table           string         `gorm:"column:table_name;size:100;not null;index" json:"table_name"`
	Action          Action         `gorm:"column:action;size:20;not null;index" json:"action"`
	TargetID        string         `gorm:"column:entity_id;size:50;not null;index" json:"entity_id"`
	OldValues       datatypes.JSON `gorm:"column:old_values" json:"old_values,omitempty"`
	NewValues       datatypes.JSON `gorm:"column:new_values" json:"new_values,omitempty"`
	AffectedColumns *string        `gorm:"column:affected_columns" json:"affected_columns,omitempty"`
	UserID          *string        `gorm:"column:user_id;size:50;index" json:"user_id,omitempty"`
	UserName        *string        `gorm:"column:user_name;size:100" json:"user_name,omitempty"`
	IPAddress       *string        `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`
	UserAgent       *string        `gorm:"column:user_agent" json:"user_agent,omitempty"`
	Timestamp       time.Time      `gorm:"column:timestamp;not null;index" json:"timestamp"`
	CreatedAt       time.Time      `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
	CreatedBy       *string        `gorm:"column:created_by;size:100" json:"created_by,omitempty"`
}

func (AuditLog) TableName() string { return "audit_logs" }

func (a *AuditLog) EntityID() uuid.UUID { return a.ID }

// Columns splits AffectedColumns back into its ordered field names.
func (a *AuditLog) Columns() []string {
	if a == nil || a.AffectedColumns == nil || *a.AffectedColumns == "" {
		return nil
	}
	return strings.Split(*a.AffectedColumns, ",")
}

func (a *AuditLog) HasColumn(name string) bool {
	for _, c := range a.Columns() {
		if c == name {
			return true
		}
	}
	return false
}
