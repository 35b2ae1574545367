package ctxutil

import (
	"context"

	"github.com/yungbote/baseapi-backend/internal/domain/audit"
)

type requestKey struct{}

// WithRequest attaches request metadata stamped onto operation log rows written on ctx.
func WithRequest(ctx context.Context, req audit.Request) context.Context {
	return context.WithValue(Default(ctx), requestKey{}, req)
}

func RequestFrom(ctx context.Context) (audit.Request, bool) {
	if ctx == nil {
		return audit.Request{}, false
	}
	req, ok := ctx.Value(requestKey{}).(audit.Request)
	return req, ok
}
