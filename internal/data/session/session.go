package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/baseapi-backend/internal/data/schema"
	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
	"github.com/yungbote/baseapi-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

// State is the pending-change kind of a tracked entity.
type State uint8

const (
	Unchanged State = iota
	Added
	Modified
	Deleted
)

func (s State) String() string {
	switch s {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

type key struct {
	table string
	id    uuid.UUID
}

// Session is the storage session owned by one unit of work: an identity map of
// loaded entities plus the set of staged mutations. It is not safe for concurrent use.
type Session struct {
	db      *gorm.DB
	log     *logger.Logger
	entries map[key]*Entry
	order   []*Entry
	closed  bool
}

func New(db *gorm.DB, baseLog *logger.Logger) *Session {
	return &Session{
		db:      db,
		log:     baseLog.With("component", "Session"),
		entries: map[key]*Entry{},
	}
}

// DB returns the session's connection bound to ctx.
func (s *Session) DB(ctx context.Context, op string) (*gorm.DB, error) {
	if err := s.CheckOpen(op); err != nil {
		return nil, err
	}
	return s.db.WithContext(ctx), nil
}

func (s *Session) CheckOpen(op string) error {
	if s == nil || s.closed {
		return aggregates.LifecycleError(op, "unit of work is closed")
	}
	if s.db == nil {
		return aggregates.NewError(aggregates.CodeInternal, op, "session has nil db", nil)
	}
	return nil
}

// Close drops every tracked entity. Further use fails with a lifecycle error.
func (s *Session) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	s.entries = map[key]*Entry{}
	s.order = nil
}

func (s *Session) Closed() bool { return s == nil || s.closed }

// Lookup returns the tracked entry for table/id.
func (s *Session) Lookup(table string, id uuid.UUID) (*Entry, bool) {
	e, ok := s.entries[key{table: table, id: id}]
	return e, ok
}

// Entries returns tracked entries in the order they were first tracked.
func (s *Session) Entries() []*Entry {
	out := make([]*Entry, len(s.order))
	copy(out, s.order)
	return out
}

// Track starts tracking e in state st. The original snapshot is taken now; for
// Modified entries callers may supply the stored row via WithOriginal.
func Track[T any, PT schema.Model[T]](s *Session, d *schema.Descriptor[T], e PT, st State) *Entry {
	entity := (*T)(e)
	entry := &Entry{
		Table:     d.Table,
		ID:        e.EntityID(),
		State:     st,
		Entity:    e,
		Auditable: d.Auditable,
		snapshot:  func() schema.Values { return d.Snapshot(entity) },
		insert:    func(tx *gorm.DB) *gorm.DB { return tx.Create(entity) },
		update: func(tx *gorm.DB, cols []string) *gorm.DB {
			return tx.Model(entity).Select(cols).Updates(entity)
		},
		remove: func(tx *gorm.DB) *gorm.DB { return tx.Delete(entity) },
	}
	entry.original = entry.snapshot()
	k := key{table: entry.Table, id: entry.ID}
	if _, exists := s.entries[k]; !exists {
		s.order = append(s.order, entry)
	} else {
		s.replace(k, entry)
	}
	s.entries[k] = entry
	return entry
}

func (s *Session) replace(k key, entry *Entry) {
	for i, e := range s.order {
		if e.Table == k.table && e.ID == k.id {
			s.order[i] = entry
			return
		}
	}
}

// Detach stops tracking entry.
func (s *Session) Detach(entry *Entry) {
	k := key{table: entry.Table, id: entry.ID}
	if cur, ok := s.entries[k]; !ok || cur != entry {
		return
	}
	delete(s.entries, k)
	for i, e := range s.order {
		if e == entry {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Pending detects changes on every tracked entry and returns those with an
// actual mutation to flush, in tracking order. Unchanged entries whose fields
// were edited in memory are promoted to Modified.
func (s *Session) Pending() []*Entry {
	var out []*Entry
	for _, e := range s.order {
		switch e.State {
		case Added, Deleted:
			out = append(out, e)
		case Unchanged, Modified:
			changed := e.ChangedColumns()
			if len(changed) == 0 {
				e.State = Unchanged
				continue
			}
			e.State = Modified
			out = append(out, e)
		}
	}
	return out
}

// Flush writes pending entries through tx and returns the number of entity rows affected.
func (s *Session) Flush(tx *gorm.DB, pending []*Entry) (int64, error) {
	var rows int64
	for _, e := range pending {
		var res *gorm.DB
		switch e.State {
		case Added:
			res = e.insert(tx)
		case Modified:
			res = e.update(tx, e.ChangedColumns())
		case Deleted:
			res = e.remove(tx)
		default:
			continue
		}
		if res.Error != nil {
			s.log.Warn("entity flush failed", "table", e.Table, "state", e.State.String(), "error", res.Error)
			return rows, res.Error
		}
		rows += res.RowsAffected
	}
	return rows, nil
}

// AcceptChanges marks flushed entries as persisted: deleted ones are detached,
// the rest become Unchanged with a fresh original snapshot.
func (s *Session) AcceptChanges(flushed []*Entry) {
	for _, e := range flushed {
		if e.State == Deleted {
			s.Detach(e)
			continue
		}
		e.State = Unchanged
		e.original = e.snapshot()
	}
}
