package uow

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/baseapi-backend/internal/data/capture"
	"github.com/yungbote/baseapi-backend/internal/data/repos/generic"
	"github.com/yungbote/baseapi-backend/internal/data/schema"
	"github.com/yungbote/baseapi-backend/internal/data/session"
	"github.com/yungbote/baseapi-backend/internal/domain/aggregates"
	"github.com/yungbote/baseapi-backend/internal/domain/audit"
	"github.com/yungbote/baseapi-backend/internal/pkg/ctxutil"
	"github.com/yungbote/baseapi-backend/internal/pkg/dbctx"
	"github.com/yungbote/baseapi-backend/internal/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	auditrepo "github.com/yungbote/baseapi-backend/internal/data/repos/audit"
	catalogrepo "github.com/yungbote/baseapi-backend/internal/data/repos/catalog"
	userrepo "github.com/yungbote/baseapi-backend/internal/data/repos/user"
)

const instrumentationName = "github.com/yungbote/baseapi-backend/internal/data/uow"

// UnitOfWork is a request-scoped commit boundary. It owns one storage session,
// hands out memoized repositories over it and commits everything they staged
// together. It is not safe for concurrent use.
type UnitOfWork struct {
	db      *gorm.DB
	log     *logger.Logger
	sess    *session.Session
	capture *capture.Capturer
	runner  TxRunner
	hooks   Hooks
	tracer  trace.Tracer

	repos      map[string]any
	products   *catalogrepo.ProductRepo
	users      *userrepo.UserRepo
	auditTrail *auditrepo.TrailRepo
	journal    *auditrepo.Journal
}

type Option func(*UnitOfWork)

// WithTxRunner replaces the transaction runner of the entity flush.
func WithTxRunner(r TxRunner) Option {
	return func(u *UnitOfWork) {
		if r != nil {
			u.runner = r
		}
	}
}

func WithHooks(h Hooks) Option {
	return func(u *UnitOfWork) {
		if h != nil {
			u.hooks = h
		}
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(u *UnitOfWork) {
		if tp != nil {
			u.tracer = tp.Tracer(instrumentationName)
		}
	}
}

func WithCapturer(c *capture.Capturer) Option {
	return func(u *UnitOfWork) {
		if c != nil {
			u.capture = c
		}
	}
}

func New(db *gorm.DB, baseLog *logger.Logger, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		db:      db,
		log:     baseLog.With("component", "UnitOfWork"),
		sess:    session.New(db, baseLog),
		capture: capture.New(baseLog),
		runner:  NewGormTxRunner(db),
		hooks:   noopHooks{},
		tracer:  otel.Tracer(instrumentationName),
		repos:   map[string]any{},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Factory creates units of work sharing one connection pool and option set.
type Factory struct {
	db   *gorm.DB
	log  *logger.Logger
	opts []Option
}

func NewFactory(db *gorm.DB, baseLog *logger.Logger, opts ...Option) *Factory {
	return &Factory{db: db, log: baseLog, opts: opts}
}

func (f *Factory) New(extra ...Option) *UnitOfWork {
	opts := make([]Option, 0, len(f.opts)+len(extra))
	opts = append(opts, f.opts...)
	opts = append(opts, extra...)
	return New(f.db, f.log, opts...)
}

// Repository returns the generic repository of T, created on first use and
// identical for every later call on u.
func Repository[T any, PT schema.Model[T]](u *UnitOfWork) (*generic.Repository[T, PT], error) {
	const op = "uow.repository"
	if err := u.sess.CheckOpen(op); err != nil {
		return nil, err
	}
	table := schema.TableOf[T, PT]()
	if cached, ok := u.repos[table]; ok {
		r, ok := cached.(*generic.Repository[T, PT])
		if !ok {
			return nil, aggregates.NewError(aggregates.CodeInternal, op, fmt.Sprintf("repository type mismatch for %s", table), nil)
		}
		return r, nil
	}
	r, err := generic.New[T, PT](u.sess, u.log.With("repo", "Repository"))
	if err != nil {
		return nil, err
	}
	u.repos[table] = r
	return r, nil
}

// Products is the product repository with catalog queries.
func (u *UnitOfWork) Products() *catalogrepo.ProductRepo {
	if u.products == nil {
		u.products = catalogrepo.NewProductRepo(u.sess, u.log)
	}
	return u.products
}

// Users is the user repository with identity lookups.
func (u *UnitOfWork) Users() *userrepo.UserRepo {
	if u.users == nil {
		u.users = userrepo.NewUserRepo(u.sess, u.log)
	}
	return u.users
}

// AuditTrail reads audit and operation log rows. It never stages writes.
func (u *UnitOfWork) AuditTrail() *auditrepo.TrailRepo {
	if u.auditTrail == nil {
		u.auditTrail = auditrepo.NewTrailRepo(u.sess, u.log)
	}
	return u.auditTrail
}

// Journal writes operation log and manual audit rows outside the commit. Failed
// writes are logged and counted as dropped audit entries.
func (u *UnitOfWork) Journal() *auditrepo.Journal {
	if u.journal == nil {
		u.journal = auditrepo.NewJournal(u.db, u.log, auditrepo.WithDropHook(u.hooks.IncAuditDropped))
	}
	return u.journal
}

// Commit flushes every staged mutation in one transaction and returns the
// number of entity rows written. Audit and operation log rows for the flushed
// mutations are written afterwards in a separate transaction; a failure there
// is logged and does not fail the commit.
func (u *UnitOfWork) Commit(ctx context.Context, actor audit.Actor) (int, error) {
	start := time.Now()
	ctx = ctxutil.Default(ctx)
	ctx, span := u.tracer.Start(ctx, "uow.commit")
	defer span.End()

	rows, err := u.commit(ctx, actor, span)
	u.hooks.ObserveCommit(commitStatus(err), rows, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return rows, err
}

// CommitContext is Commit attributed to the actor attached to ctx with
// ctxutil.WithActor. Without one the commit is anonymous.
func (u *UnitOfWork) CommitContext(ctx context.Context) (int, error) {
	actor, _ := ctxutil.ActorFrom(ctx)
	return u.Commit(ctx, actor)
}

func (u *UnitOfWork) commit(ctx context.Context, actor audit.Actor, span trace.Span) (int, error) {
	const op = "uow.commit"
	if err := u.sess.CheckOpen(op); err != nil {
		return 0, err
	}
	pending := u.sess.Pending()
	span.SetAttributes(attribute.Int("uow.pending", len(pending)))
	if len(pending) == 0 {
		return 0, nil
	}

	entries := u.capture.Before(pending, actor)

	var rows int64
	err := u.runner.InTx(ctx, func(dbc dbctx.Context) error {
		if dbc.Tx == nil {
			return aggregates.NewError(aggregates.CodeInternal, op, "transaction runner supplied no transaction", nil)
		}
		n, err := u.sess.Flush(dbc.Tx, pending)
		rows = n
		return err
	})
	if err != nil {
		mapped := MapError(op, err)
		u.log.Warn("commit failed", "pending", len(pending), "code", string(aggregates.CodeOf(mapped)), "error", err)
		return 0, mapped
	}
	u.sess.AcceptChanges(pending)
	span.SetAttributes(
		attribute.Int64("uow.rows_affected", rows),
		attribute.Int("uow.audit_entries", len(entries)),
	)

	if err := u.capture.Persist(ctx, u.db, entries); err != nil {
		u.log.Error("audit write failed; entity changes kept",
			"entries", len(entries),
			"tables", tablesOf(entries),
			"error", err,
		)
		u.hooks.IncAuditDropped(len(entries))
		span.AddEvent("audit.dropped", trace.WithAttributes(attribute.Int("entries", len(entries))))
	}
	return int(rows), nil
}

// Close releases the session. Every later repository call and Commit fails
// with a lifecycle error.
func (u *UnitOfWork) Close() {
	u.sess.Close()
	u.repos = map[string]any{}
}

func (u *UnitOfWork) Closed() bool { return u.sess.Closed() }

func tablesOf(entries []capture.Entry) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range entries {
		if !seen[e.Table] {
			seen[e.Table] = true
			out = append(out, e.Table)
		}
	}
	return out
}
