package generic

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/yungbote/baseapi-backend/internal/data/criteria"
	"github.com/yungbote/baseapi-backend/internal/data/schema"
	"github.com/yungbote/baseapi-backend/internal/data/session"
	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
	"github.com/yungbote/baseapi-backend/internal/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the CRUD and query surface over one aggregate type, backed by
// the session of its unit of work. Nothing here commits: mutations are staged
// in the session until the unit of work commits.
//
// Reads push criteria down to SQL and then reconcile rows with the identity
// map: an already tracked instance wins over the stored row and is re-checked
// against the criteria with its staged values; edited instances whose staged
// values match are surfaced even when their stored row does not. Staged
// inserts are only visible to GetByID and Exists.
type Repository[T any, PT schema.Model[T]] struct {
	sess *session.Session
	desc *schema.Descriptor[T]
	log  *logger.Logger
}

func New[T any, PT schema.Model[T]](sess *session.Session, baseLog *logger.Logger) (*Repository[T, PT], error) {
	d, err := schema.For[T, PT]()
	if err != nil {
		return nil, err
	}
	return &Repository[T, PT]{
		sess: sess,
		desc: d,
		log:  baseLog.With("table", d.Table),
	}, nil
}

// MustNew is New for aggregates whose descriptors are registered at init.
func MustNew[T any, PT schema.Model[T]](sess *session.Session, baseLog *logger.Logger) *Repository[T, PT] {
	r, err := New[T, PT](sess, baseLog)
	if err != nil {
		panic(err)
	}
	return r
}

// Table is the type tag of the repository.
func (r *Repository[T, PT]) Table() string { return r.desc.Table }

// Descriptor exposes the field descriptor, e.g. for specialized repositories.
func (r *Repository[T, PT]) Descriptor() *schema.Descriptor[T] { return r.desc }

func (r *Repository[T, PT]) softDeletable() bool { return r.desc.Policy == schema.DeleteSoft }

// GetByID returns the live aggregate or a not_found error. Soft-deleted rows are not found.
func (r *Repository[T, PT]) GetByID(ctx context.Context, id uuid.UUID) (PT, error) {
	const op = "repository.get_by_id"
	e, err := r.byID(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if e == nil || r.hidden(e) {
		return nil, aggregates.NotFoundError(op, fmt.Sprintf("%s %s not found", r.desc.Table, id))
	}
	return e, nil
}

// GetByIDIncludeDeleted is GetByID without the soft-delete filter.
func (r *Repository[T, PT]) GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (PT, error) {
	const op = "repository.get_by_id_include_deleted"
	e, err := r.byID(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, aggregates.NotFoundError(op, fmt.Sprintf("%s %s not found", r.desc.Table, id))
	}
	return e, nil
}

// byID returns the tracked instance or loads and tracks the stored row. A nil
// result means no row, or a row staged for removal.
func (r *Repository[T, PT]) byID(ctx context.Context, op string, id uuid.UUID) (PT, error) {
	if err := r.sess.CheckOpen(op); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, aggregates.ValidationError(op, "id is required")
	}
	if entry, ok := r.sess.Lookup(r.desc.Table, id); ok {
		if entry.State == session.Deleted {
			return nil, nil
		}
		return entry.Entity.(PT), nil
	}
	row, err := r.load(ctx, op, id)
	if err != nil || row == nil {
		return nil, err
	}
	session.Track[T, PT](r.sess, r.desc, row, session.Unchanged)
	return row, nil
}

func (r *Repository[T, PT]) load(ctx context.Context, op string, id uuid.UUID) (PT, error) {
	db, err := r.sess.DB(ctx, op)
	if err != nil {
		return nil, err
	}
	var row T
	err = db.Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: id}).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, aggregates.StorageError(op, err)
	}
	return PT(&row), nil
}

// GetAll returns every live aggregate.
func (r *Repository[T, PT]) GetAll(ctx context.Context) ([]PT, error) {
	return r.query(ctx, "repository.get_all", criteria.Query{})
}

// Add stages e for insertion and returns it. Duplicate identifiers surface as
// a conflict at commit.
func (r *Repository[T, PT]) Add(ctx context.Context, e PT) (PT, error) {
	const op = "repository.add"
	if err := r.sess.CheckOpen(op); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, aggregates.ValidationError(op, "entity is required")
	}
	if e.EntityID() == uuid.Nil {
		return nil, aggregates.ValidationError(op, "entity id is required")
	}
	session.Track[T, PT](r.sess, r.desc, e, session.Added)
	return e, nil
}

// Update stages the already mutated e. An instance that was not loaded through
// this unit of work is diffed against its stored row.
func (r *Repository[T, PT]) Update(ctx context.Context, e PT) (PT, error) {
	const op = "repository.update"
	if err := r.sess.CheckOpen(op); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, aggregates.ValidationError(op, "entity is required")
	}
	id := e.EntityID()
	if id == uuid.Nil {
		return nil, aggregates.ValidationError(op, "entity id is required")
	}
	if entry, ok := r.sess.Lookup(r.desc.Table, id); ok {
		switch {
		case entry.State == session.Deleted:
			return nil, aggregates.LifecycleError(op, fmt.Sprintf("%s %s is staged for removal", r.desc.Table, id))
		case entry.Entity.(PT) == e:
			if entry.State == session.Unchanged {
				entry.State = session.Modified
			}
			return e, nil
		default:
			original, state := entry.Original(), entry.State
			if state == session.Unchanged {
				state = session.Modified
			}
			session.Track[T, PT](r.sess, r.desc, e, state).WithOriginal(original)
			return e, nil
		}
	}
	stored, err := r.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, aggregates.NotFoundError(op, fmt.Sprintf("%s %s not found", r.desc.Table, id))
	}
	session.Track[T, PT](r.sess, r.desc, e, session.Modified).WithOriginal(r.desc.Snapshot((*T)(stored)))
	return e, nil
}

// Delete stages physical removal of a hard-deletable aggregate. For
// soft-deletable types it does nothing: deletion is the aggregate's own
// SoftDelete followed by Update.
func (r *Repository[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "repository.delete"
	if err := r.sess.CheckOpen(op); err != nil {
		return err
	}
	if id == uuid.Nil {
		return aggregates.ValidationError(op, "id is required")
	}
	if r.softDeletable() {
		r.log.Debug("delete ignored for soft-deletable type", "id", id.String())
		return nil
	}
	if entry, ok := r.sess.Lookup(r.desc.Table, id); ok {
		switch entry.State {
		case session.Added:
			r.sess.Detach(entry)
		case session.Deleted:
		default:
			entry.State = session.Deleted
		}
		return nil
	}
	stored, err := r.load(ctx, op, id)
	if err != nil {
		return err
	}
	if stored == nil {
		return aggregates.NotFoundError(op, fmt.Sprintf("%s %s not found", r.desc.Table, id))
	}
	session.Track[T, PT](r.sess, r.desc, stored, session.Deleted)
	return nil
}

// Exists reports whether a live aggregate with id is visible to this unit of work.
func (r *Repository[T, PT]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	const op = "repository.exists"
	if err := r.sess.CheckOpen(op); err != nil {
		return false, err
	}
	if entry, ok := r.sess.Lookup(r.desc.Table, id); ok {
		return entry.State != session.Deleted && !r.hidden(entry.Entity.(PT)), nil
	}
	n, err := r.count(ctx, op, criteria.Eq("id", id))
	return n > 0, err
}

// Count counts live stored rows.
func (r *Repository[T, PT]) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, "repository.count", criteria.Criteria{})
}

// CountWhere counts live stored rows matching c.
func (r *Repository[T, PT]) CountWhere(ctx context.Context, c criteria.Criteria) (int64, error) {
	return r.count(ctx, "repository.count_where", c)
}

func (r *Repository[T, PT]) count(ctx context.Context, op string, c criteria.Criteria) (int64, error) {
	if err := c.Validate(r.desc.HasField); err != nil {
		return 0, aggregates.ValidationError(op, err.Error())
	}
	db, err := r.sess.DB(ctx, op)
	if err != nil {
		return 0, err
	}
	var n int64
	var zero T
	if err := c.Apply(r.scoped(db.Model(&zero))).Count(&n).Error; err != nil {
		return 0, aggregates.StorageError(op, err)
	}
	return n, nil
}

// Where returns live aggregates matching c.
func (r *Repository[T, PT]) Where(ctx context.Context, c criteria.Criteria) ([]PT, error) {
	return r.query(ctx, "repository.where", criteria.NewQuery(c))
}

// Find runs q with filtering, ordering and paging pushed down to storage.
func (r *Repository[T, PT]) Find(ctx context.Context, q criteria.Query) ([]PT, error) {
	return r.query(ctx, "repository.find", q)
}

// FindFunc filters every live aggregate in memory with pred. It materializes
// the whole table; prefer Where for anything larger than a lookup table.
func (r *Repository[T, PT]) FindFunc(ctx context.Context, pred func(PT) bool) ([]PT, error) {
	if pred == nil {
		return nil, aggregates.ValidationError("repository.find_func", "predicate is required")
	}
	all, err := r.query(ctx, "repository.find_func", criteria.Query{})
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, e := range all {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// FirstOrDefault returns the first match of c, or nil when nothing matches.
func (r *Repository[T, PT]) FirstOrDefault(ctx context.Context, c criteria.Criteria) (PT, error) {
	rows, err := r.query(ctx, "repository.first_or_default", criteria.NewQuery(c).Take(1))
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// SingleOrDefault returns the only match of c, nil when nothing matches, and a
// conflict error when more than one row matches.
func (r *Repository[T, PT]) SingleOrDefault(ctx context.Context, c criteria.Criteria) (PT, error) {
	const op = "repository.single_or_default"
	rows, err := r.query(ctx, op, criteria.NewQuery(c).Take(2))
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return rows[0], nil
	default:
		return nil, aggregates.ConflictError(op, fmt.Sprintf("more than one %s matches", r.desc.Table))
	}
}

func (r *Repository[T, PT]) Take(ctx context.Context, q criteria.Query, n int) ([]PT, error) {
	return r.query(ctx, "repository.take", q.Take(n))
}

func (r *Repository[T, PT]) Skip(ctx context.Context, q criteria.Query, n int) ([]PT, error) {
	return r.query(ctx, "repository.skip", q.Skip(n))
}

func (r *Repository[T, PT]) OrderBy(ctx context.Context, q criteria.Query, field string) ([]PT, error) {
	return r.query(ctx, "repository.order_by", q.OrderBy(field))
}

func (r *Repository[T, PT]) OrderByDescending(ctx context.Context, q criteria.Query, field string) ([]PT, error) {
	return r.query(ctx, "repository.order_by_descending", q.OrderByDesc(field))
}

func (r *Repository[T, PT]) query(ctx context.Context, op string, q criteria.Query) ([]PT, error) {
	if err := q.Validate(r.desc.HasField); err != nil {
		return nil, aggregates.ValidationError(op, err.Error())
	}
	db, err := r.sess.DB(ctx, op)
	if err != nil {
		return nil, err
	}
	// With staged edits or removals in the table, stored rows can no longer be
	// paged in SQL: skip/take apply after reconciliation.
	dirty := r.dirtyEntries()
	sqlQuery := q
	if len(dirty) > 0 {
		sqlQuery = q.Unpaged()
	}
	var rows []T
	if err := sqlQuery.Apply(r.scoped(db)).Find(&rows).Error; err != nil {
		return nil, aggregates.StorageError(op, err)
	}
	out := make([]PT, 0, len(rows))
	seen := make(map[uuid.UUID]bool, len(rows))
	for i := range rows {
		row := PT(&rows[i])
		seen[row.EntityID()] = true
		entry, tracked := r.sess.Lookup(r.desc.Table, row.EntityID())
		if !tracked {
			session.Track[T, PT](r.sess, r.desc, row, session.Unchanged)
			out = append(out, row)
			continue
		}
		if entry.State == session.Deleted {
			continue
		}
		staged := entry.Entity.(PT)
		if r.hidden(staged) || !q.Criteria.Match(entry.Current().Get) {
			continue
		}
		out = append(out, staged)
	}
	if len(dirty) == 0 {
		return out, nil
	}

	// Edited instances whose stored row did not match may match now.
	for _, entry := range dirty {
		if seen[entry.ID] || entry.State == session.Deleted {
			continue
		}
		staged := entry.Entity.(PT)
		if r.hidden(staged) || !q.Criteria.Match(entry.Current().Get) {
			continue
		}
		out = append(out, staged)
	}
	if len(q.Orders) > 0 {
		out = r.sortByQuery(out, q)
	}
	lo, hi := q.Page(len(out))
	return out[lo:hi], nil
}

// dirtyEntries lists tracked entries of this table staged for removal or
// edited in memory since they were loaded. Staged inserts are excluded.
func (r *Repository[T, PT]) dirtyEntries() []*session.Entry {
	var out []*session.Entry
	for _, e := range r.sess.Entries() {
		if e.Table != r.desc.Table {
			continue
		}
		switch e.State {
		case session.Deleted:
			out = append(out, e)
		case session.Unchanged, session.Modified:
			if len(e.ChangedColumns()) > 0 {
				out = append(out, e)
			}
		}
	}
	return out
}

func (r *Repository[T, PT]) sortByQuery(items []PT, q criteria.Query) []PT {
	type keyed struct {
		e PT
		v schema.Values
	}
	ks := make([]keyed, len(items))
	for i, e := range items {
		ks[i] = keyed{e: e, v: r.desc.Snapshot((*T)(e))}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		return q.Compare(a.v.Get, b.v.Get)
	})
	out := make([]PT, len(ks))
	for i, k := range ks {
		out[i] = k.e
	}
	return out
}

// scoped applies the standing soft-delete filter.
func (r *Repository[T, PT]) scoped(db *gorm.DB) *gorm.DB {
	if !r.softDeletable() {
		return db
	}
	return db.Where(clause.Eq{Column: clause.Column{Name: "is_deleted"}, Value: false})
}

func (r *Repository[T, PT]) hidden(e PT) bool {
	if !r.softDeletable() {
		return false
	}
	sd, ok := any(e).(aggregates.SoftDeletable)
	return ok && sd.IsDeletedFlag()
}
