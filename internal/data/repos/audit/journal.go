package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/baseapi-backend/internal/domain"
	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
	"github.com/yungbote/baseapi-backend/internal/pkg/ctxutil"
	"github.com/yungbote/baseapi-backend/internal/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxSourceLen is the width of the logs.source column.
const maxSourceLen = 100

// Journal writes operation log rows and manual audit rows directly, outside
// any unit of work commit. Storage failures are logged and dropped; only
// malformed entries are reported to the caller.
type Journal struct {
	db      *gorm.DB
	log     *logger.Logger
	now     func() time.Time
	dropped func(entries int)
}

type JournalOption func(*Journal)

// WithDropHook is called with the number of rows lost on every failed write.
func WithDropHook(fn func(entries int)) JournalOption {
	return func(j *Journal) {
		if fn != nil {
			j.dropped = fn
		}
	}
}

func WithJournalClock(now func() time.Time) JournalOption {
	return func(j *Journal) {
		if now != nil {
			j.now = now
		}
	}
}

func NewJournal(db *gorm.DB, baseLog *logger.Logger, opts ...JournalOption) *Journal {
	j := &Journal{
		db:      db,
		log:     baseLog.With("component", "Journal"),
		now:     time.Now,
		dropped: func(int) {},
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// LogEntry is one operation log row. An empty Source resolves to the calling
// function; a non-nil Err fills the exception and stack trace columns.
type LogEntry struct {
	Level   types.Level
	Message string
	Err     error
	Source  string
}

// AuditEntry is a manually recorded mutation. A nil Actor means the actor
// attached to the context.
type AuditEntry struct {
	Table           string
	Action          types.Action
	EntityID        string
	OldValues       any
	NewValues       any
	AffectedColumns []string
	Actor           *types.Actor
}

func (j *Journal) Debug(ctx context.Context, message string) {
	j.record(ctx, LogEntry{Level: types.LevelDebug, Message: message})
}

func (j *Journal) Info(ctx context.Context, message string) {
	j.record(ctx, LogEntry{Level: types.LevelInfo, Message: message})
}

func (j *Journal) Warning(ctx context.Context, message string) {
	j.record(ctx, LogEntry{Level: types.LevelWarning, Message: message})
}

func (j *Journal) Error(ctx context.Context, message string, err error) {
	j.record(ctx, LogEntry{Level: types.LevelError, Message: message, Err: err})
}

// Log writes e. It returns a validation error for a malformed entry and nil
// otherwise, including when the write itself failed.
func (j *Journal) Log(ctx context.Context, e LogEntry) error {
	return j.record(ctx, e)
}

// record must be called directly by an exported method so the caller lookup
// lands on the code that invoked the journal.
func (j *Journal) record(ctx context.Context, e LogEntry) error {
	const op = "journal.log"
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(e.Message) == "" {
		return j.reject(op, "message is required")
	}
	switch e.Level {
	case types.LevelDebug, types.LevelInfo, types.LevelWarning, types.LevelError:
	default:
		return j.reject(op, fmt.Sprintf("unknown level %q", e.Level))
	}
	source := strings.TrimSpace(e.Source)
	if source == "" {
		source = callerName(3)
	}
	if len(source) > maxSourceLen {
		source = source[len(source)-maxSourceLen:]
	}

	actor, _ := ctxutil.ActorFrom(ctx)
	now := j.now().UTC()
	row := &types.OperationLog{
		ID:        uuid.New(),
		Level:     e.Level,
		Message:   e.Message,
		Source:    &source,
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
		Timestamp: now,
		CreatedAt: now,
		CreatedBy: actor.Label(),
	}
	if e.Err != nil {
		msg := e.Err.Error()
		stack := string(debug.Stack())
		row.Exception = &msg
		row.StackTrace = &stack
	}
	if req, ok := ctxutil.RequestFrom(ctx); ok {
		row.RequestPath = nonEmpty(req.Path)
		row.RequestMethod = nonEmpty(req.Method)
		if req.StatusCode != 0 {
			code := req.StatusCode
			row.StatusCode = &code
		}
		if req.Elapsed > 0 {
			ms := req.Elapsed.Milliseconds()
			row.ExecutionTimeMS = &ms
		}
	}

	if err := j.db.WithContext(ctx).Create(row).Error; err != nil {
		j.log.Error("journal write failed", "kind", "log", "level", string(e.Level), "error", err)
		j.dropped(1)
	}
	return nil
}

// Audit writes one audit row for a mutation recorded by hand. It returns a
// validation error for a malformed entry and nil otherwise.
func (j *Journal) Audit(ctx context.Context, e AuditEntry) error {
	const op = "journal.audit"
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(e.Table) == "" || strings.TrimSpace(e.EntityID) == "" {
		return j.reject(op, "table and entity id are required")
	}
	switch e.Action {
	case types.ActionInsert, types.ActionUpdate, types.ActionDelete:
	default:
		return j.reject(op, fmt.Sprintf("unknown action %q", e.Action))
	}
	oldJSON, err := encodeValues(e.OldValues)
	if err != nil {
		return j.reject(op, fmt.Sprintf("encode old values: %v", err))
	}
	newJSON, err := encodeValues(e.NewValues)
	if err != nil {
		return j.reject(op, fmt.Sprintf("encode new values: %v", err))
	}

	actor, _ := ctxutil.ActorFrom(ctx)
	if e.Actor != nil {
		actor = *e.Actor
	}
	var cols *string
	if len(e.AffectedColumns) > 0 {
		joined := strings.Join(e.AffectedColumns, ",")
		cols = &joined
	}
	now := j.now().UTC()
	row := &types.AuditLog{
		ID:              uuid.New(),
		Table:           e.Table,
		Action:          e.Action,
		TargetID:        e.EntityID,
		OldValues:       oldJSON,
		NewValues:       newJSON,
		AffectedColumns: cols,
		UserID:          actor.UserID,
		UserName:        actor.UserName,
		IPAddress:       actor.IPAddress,
		UserAgent:       actor.UserAgent,
		Timestamp:       now,
		CreatedAt:       now,
		CreatedBy:       actor.Label(),
	}
	if err := j.db.WithContext(ctx).Create(row).Error; err != nil {
		j.log.Error("journal write failed", "kind", "audit", "table", e.Table, "entity_id", e.EntityID, "error", err)
		j.dropped(1)
		return nil
	}
	j.log.Debug("manual audit recorded", "table", e.Table, "action", string(e.Action), "entity_id", e.EntityID)
	return nil
}

func (j *Journal) reject(op, message string) error {
	j.log.Warn("journal entry rejected", "op", op, "reason", message)
	return aggregates.ValidationError(op, message)
}

func encodeValues(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// callerName is the package-qualified function name skip frames up, e.g. "billing.(*Service).Charge".
func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
