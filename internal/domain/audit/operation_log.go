package audit

import (
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelDebug   Level = "DEBUG"
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// OperationLog is the human-readable companion of an AuditLog row.
type OperationLog struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Level           Level     `gorm:"column:level;size:20;not null;index" json:"level"`
	Message         string    `gorm:"column:message;not null" json:"message"`
	Exception       *string   `gorm:"column:exception" json:"exception,omitempty"`
	StackTrace      *string   `gorm:"column:stack_trace" json:"stack_trace,omitempty"`
	Source          *string   `gorm:"column:source;size:100" json:"source,omitempty"`
	UserID          *string   `gorm:"column:user_id;size:50;index" json:"user_id,omitempty"`
	UserName        *string   `gorm:"column:user_name;size:100" json:"user_name,omitempty"`
	IPAddress       *string   `gorm:"column:ip_address;size:45" json:"ip_address,omitempty"`
	UserAgent       *string   `gorm:"column:user_agent" json:"user_agent,omitempty"`
	RequestPath     *string   `gorm:"column:request_path;size:500" json:"request_path,omitempty"`
	RequestMethod   *string   `gorm:"column:request_method;size:10" json:"request_method,omitempty"`
	StatusCode      *int      `gorm:"column:status_code;index" json:"status_code,omitempty"`
	ExecutionTimeMS *int64    `gorm:"column:execution_time" json:"execution_time,omitempty"`
	Timestamp       time.Time `gorm:"column:timestamp;not null;index" json:"timestamp"`
	CreatedAt       time.Time `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`
	CreatedBy       *string   `gorm:"column:created_by;size:100" json:"created_by,omitempty"`
}

func (OperationLog) TableName() string { return "logs" }

func (l *OperationLog) EntityID() uuid.UUID { return l.ID }
