package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/baseapi-backend/internal/data/session"
	"github.com/yungbote/baseapi-backend/internal/domain/audit"
	"github.com/yungbote/baseapi-backend/internal/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultSource = "unit_of_work"

// Entry is an audit record under construction, built before the entity flush.
type Entry struct {
	Table           string
	Action          audit.Action
	EntityID        string
	OldValues       map[string]any
	NewValues       map[string]any
	AffectedColumns []string
	Actor           audit.Actor
	Timestamp       time.Time
}

// Capturer derives audit and operation log rows from pending session mutations.
type Capturer struct {
	log    *logger.Logger
	source string
	now    func() time.Time
}

type Option func(*Capturer)

// WithSource sets the source column of operation log rows.
func WithSource(source string) Option {
	return func(c *Capturer) {
		if s := strings.TrimSpace(source); s != "" {
			c.source = s
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Capturer) {
		if now != nil {
			c.now = now
		}
	}
}

func New(baseLog *logger.Logger, opts ...Option) *Capturer {
	c := &Capturer{
		log:    baseLog.With("component", "ChangeCapture"),
		source: DefaultSource,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Before snapshots pending entries. Audit/log rows and entries without a state
// change are skipped. It must run before the flush, while originals are intact.
func (c *Capturer) Before(pending []*session.Entry, actor audit.Actor) []Entry {
	ts := c.now().UTC()
	out := make([]Entry, 0, len(pending))
	for _, pe := range pending {
		if !pe.Auditable {
			continue
		}
		e := Entry{
			Table:     pe.Table,
			EntityID:  pe.ID.String(),
			Actor:     actor,
			Timestamp: ts,
		}
		switch pe.State {
		case session.Added:
			e.Action = audit.ActionInsert
			e.NewValues = pe.Current().Map()
		case session.Deleted:
			e.Action = audit.ActionDelete
			e.OldValues = pe.Original().Map()
		case session.Modified:
			changed := pe.ChangedColumns()
			if len(changed) == 0 {
				continue
			}
			e.Action = audit.ActionUpdate
			e.AffectedColumns = changed
			e.OldValues = pe.Original().Subset(changed)
			e.NewValues = pe.Current().Subset(changed)
		default:
			continue
		}
		out = append(out, e)
	}
	return out
}

// Records builds one AuditLog and one OperationLog row per entry.
func (c *Capturer) Records(entries []Entry) ([]*audit.AuditLog, []*audit.OperationLog, error) {
	audits := make([]*audit.AuditLog, 0, len(entries))
	ops := make([]*audit.OperationLog, 0, len(entries))
	now := c.now().UTC()
	for _, e := range entries {
		oldJSON, err := encode(e.OldValues)
		if err != nil {
			return nil, nil, fmt.Errorf("encode old values of %s %s: %w", e.Table, e.EntityID, err)
		}
		newJSON, err := encode(e.NewValues)
		if err != nil {
			return nil, nil, fmt.Errorf("encode new values of %s %s: %w", e.Table, e.EntityID, err)
		}
		var cols *string
		if len(e.AffectedColumns) > 0 {
			joined := strings.Join(e.AffectedColumns, ",")
			cols = &joined
		}
		audits = append(audits, &audit.AuditLog{
			ID:              uuid.New(),
			Table:           e.Table,
			Action:          e.Action,
			TargetID:        e.EntityID,
			OldValues:       oldJSON,
			NewValues:       newJSON,
			AffectedColumns: cols,
			UserID:          e.Actor.UserID,
			UserName:        e.Actor.UserName,
			IPAddress:       e.Actor.IPAddress,
			UserAgent:       e.Actor.UserAgent,
			Timestamp:       e.Timestamp,
			CreatedAt:       now,
			CreatedBy:       e.Actor.UserName,
		})
		source := c.source
		ops = append(ops, &audit.OperationLog{
			ID:        uuid.New(),
			Level:     audit.LevelInfo,
			Message:   Message(e),
			Source:    &source,
			UserID:    e.Actor.UserID,
			UserName:  e.Actor.UserName,
			IPAddress: e.Actor.IPAddress,
			UserAgent: e.Actor.UserAgent,
			Timestamp: e.Timestamp,
			CreatedAt: now,
			CreatedBy: e.Actor.UserName,
		})
	}
	return audits, ops, nil
}

// Persist writes the audit and operation log rows of entries in one transaction.
// The caller decides what a failure means; the unit of work logs and drops it.
func (c *Capturer) Persist(ctx context.Context, db *gorm.DB, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	audits, ops, err := c.Records(entries)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&audits).Error; err != nil {
			return fmt.Errorf("write audit logs: %w", err)
		}
		if err := tx.Create(&ops).Error; err != nil {
			return fmt.Errorf("write operation logs: %w", err)
		}
		return nil
	})
}

// Message is the operation log text for e.
func Message(e Entry) string {
	return fmt.Sprintf("Database operation: %s on %s (ID: %s)", e.Action, e.Table, e.EntityID)
}

func encode(values map[string]any) (datatypes.JSON, error) {
	if len(values) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
