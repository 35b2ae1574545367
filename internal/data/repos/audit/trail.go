package audit

import (
	"context"

	"github.com/yungbote/baseapi-backend/internal/data/criteria"
	"github.com/yungbote/baseapi-backend/internal/data/schema"
	"github.com/yungbote/baseapi-backend/internal/data/session"
	types "github.com/yungbote/baseapi-backend/internal/domain"
	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
	"github.com/yungbote/baseapi-backend/internal/pkg/logger"
)

// TrailRepo is the operator read side of the audit and operation logs. Rows are
// returned untracked: nothing read here can be staged back.
type TrailRepo struct {
	sess   *session.Session
	log    *logger.Logger
	audits *schema.Descriptor[types.AuditLog]
	ops    *schema.Descriptor[types.OperationLog]
}

func NewTrailRepo(sess *session.Session, baseLog *logger.Logger) *TrailRepo {
	audits, err := schema.For[types.AuditLog]()
	if err != nil {
		panic(err)
	}
	ops, err := schema.For[types.OperationLog]()
	if err != nil {
		panic(err)
	}
	return &TrailRepo{
		sess:   sess,
		log:    baseLog.With("repo", "TrailRepo"),
		audits: audits,
		ops:    ops,
	}
}

// ListByEntity returns the audit rows of one aggregate, oldest first.
func (r *TrailRepo) ListByEntity(ctx context.Context, table, entityID string) ([]*types.AuditLog, error) {
	const op = "trail_repo.list_by_entity"
	if table == "" || entityID == "" {
		return nil, aggregates.ValidationError(op, "table and entity id are required")
	}
	c := criteria.Eq("table_name", table).And(criteria.Eq("entity_id", entityID))
	return r.audit(ctx, op, criteria.NewQuery(c).OrderBy("timestamp"))
}

// ListByUser returns the newest audit rows recorded for userID. Zero limit means all.
func (r *TrailRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*types.AuditLog, error) {
	const op = "trail_repo.list_by_user"
	if userID == "" {
		return nil, aggregates.ValidationError(op, "user id is required")
	}
	return r.audit(ctx, op, newest(criteria.NewQuery(criteria.Eq("user_id", userID)), limit))
}

// ListByAction returns audit rows of one table and action, newest first.
func (r *TrailRepo) ListByAction(ctx context.Context, table string, action types.Action, limit int) ([]*types.AuditLog, error) {
	const op = "trail_repo.list_by_action"
	c := criteria.Eq("table_name", table).And(criteria.Eq("action", string(action)))
	return r.audit(ctx, op, newest(criteria.NewQuery(c), limit))
}

// LogsByLevel returns operation log rows of one level, newest first. Zero limit means all.
func (r *TrailRepo) LogsByLevel(ctx context.Context, level types.Level, limit int) ([]*types.OperationLog, error) {
	const op = "trail_repo.logs_by_level"
	q := newest(criteria.NewQuery(criteria.Eq("level", string(level))), limit)
	if err := q.Validate(r.ops.HasField); err != nil {
		return nil, aggregates.ValidationError(op, err.Error())
	}
	var rows []*types.OperationLog
	if err := r.find(ctx, op, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountAudits counts audit rows matching c.
func (r *TrailRepo) CountAudits(ctx context.Context, c criteria.Criteria) (int64, error) {
	const op = "trail_repo.count_audits"
	if err := c.Validate(r.audits.HasField); err != nil {
		return 0, aggregates.ValidationError(op, err.Error())
	}
	db, err := r.sess.DB(ctx, op)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := c.Apply(db.Model(&types.AuditLog{})).Count(&n).Error; err != nil {
		return 0, aggregates.StorageError(op, err)
	}
	return n, nil
}

// CountLogs counts operation log rows matching c.
func (r *TrailRepo) CountLogs(ctx context.Context, c criteria.Criteria) (int64, error) {
	const op = "trail_repo.count_logs"
	if err := c.Validate(r.ops.HasField); err != nil {
		return 0, aggregates.ValidationError(op, err.Error())
	}
	db, err := r.sess.DB(ctx, op)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := c.Apply(db.Model(&types.OperationLog{})).Count(&n).Error; err != nil {
		return 0, aggregates.StorageError(op, err)
	}
	return n, nil
}

func (r *TrailRepo) audit(ctx context.Context, op string, q criteria.Query) ([]*types.AuditLog, error) {
	if err := q.Validate(r.audits.HasField); err != nil {
		return nil, aggregates.ValidationError(op, err.Error())
	}
	var rows []*types.AuditLog
	if err := r.find(ctx, op, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *TrailRepo) find(ctx context.Context, op string, q criteria.Query, dest any) error {
	db, err := r.sess.DB(ctx, op)
	if err != nil {
		return err
	}
	if err := q.Apply(db).Find(dest).Error; err != nil {
		r.log.Warn("trail query failed", "op", op, "error", err)
		return aggregates.StorageError(op, err)
	}
	return nil
}

// newest orders q by timestamp descending and caps it at a non-zero limit.
func newest(q criteria.Query, limit int) criteria.Query {
	q = q.OrderByDesc("timestamp")
	if limit != 0 {
		q = q.Take(limit)
	}
	return q
}
