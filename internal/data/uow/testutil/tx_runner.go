package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/baseapi-backend/internal/data/uow"
	"github.com/yungbote/baseapi-backend/internal/pkg/dbctx"
)

// InjectedTxRunner injects transaction failures around the entity flush.
// With Inner set the body runs inside a real transaction and FailCommit rolls
// it back; without Inner the body gets a context with no transaction.
type InjectedTxRunner struct {
	mu sync.Mutex

	Inner uow.TxRunner

	FailBegin      error
	FailBeforeBody error
	FailCommit     error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ uow.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failBeforeBody := r.FailBeforeBody
	failCommit := r.FailCommit
	inner := r.Inner
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	if failBeforeBody != nil {
		r.rolledBack()
		return failBeforeBody
	}
	if fn == nil {
		r.committed()
		return nil
	}

	body := func(dbc dbctx.Context) error {
		if err := fn(dbc); err != nil {
			return err
		}
		return failCommit
	}
	var err error
	if inner != nil {
		err = inner.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}
	if err != nil {
		r.rolledBack()
		return err
	}
	r.committed()
	return nil
}

func (r *InjectedTxRunner) rolledBack() {
	r.mu.Lock()
	r.RollbackCalls++
	r.mu.Unlock()
}

func (r *InjectedTxRunner) committed() {
	r.mu.Lock()
	r.CommitCalls++
	r.mu.Unlock()
}
