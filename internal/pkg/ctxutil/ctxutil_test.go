package ctxutil

import (
	"context"
	"testing"

	"github.com/yungbote/baseapi-backend/internal/domain/audit"
)

func TestActorRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), audit.NewActor("7", "dana", "", ""))
	got, ok := ActorFrom(ctx)
	if !ok || got.UserName == nil || *got.UserName != "dana" {
		t.Fatalf("ActorFrom = %+v, %v", got, ok)
	}
	if _, ok := ActorFrom(context.Background()); ok {
		t.Fatalf("expected no actor on a bare context")
	}
	//nolint:staticcheck // nil context is the case under test
	if _, ok := ActorFrom(nil); ok {
		t.Fatalf("expected no actor on a nil context")
	}
}

func TestDefault(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	if Default(nil) == nil {
		t.Fatalf("Default(nil) must return a usable context")
	}
}

func TestRequestRoundTrip(t *testing.T) {
	ctx := WithRequest(context.Background(), audit.Request{Path: "/products", Method: "POST", StatusCode: 201})
	got, ok := RequestFrom(ctx)
	if !ok || got.Path != "/products" || got.StatusCode != 201 {
		t.Fatalf("RequestFrom = %+v, %v", got, ok)
	}
	if _, ok := RequestFrom(WithActor(context.Background(), audit.Actor{})); ok {
		t.Fatalf("expected no request on a context carrying only an actor")
	}
}
