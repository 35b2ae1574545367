package observability

import (
	"context"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" api-key = abc , broken, =x, tenant=t1 ")
	if len(got) != 2 || got["api-key"] != "abc" || got["tenant"] != "t1" {
		t.Fatalf("ParseHeaders = %v", got)
	}
	if ParseHeaders("  ") != nil {
		t.Fatalf("expected nil for blank input")
	}
}

func TestSampleRatio(t *testing.T) {
	cases := map[float64]float64{0: 0.1, -2: 0, 3: 1, 0.25: 0.25}
	for in, want := range cases {
		if got := SampleRatio(in); got != want {
			t.Fatalf("SampleRatio(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestInitOTel_DisabledIsNoop(t *testing.T) {
	shutdown := InitOTel(context.Background(), nil, OtelConfig{})
	if shutdown == nil {
		t.Fatalf("expected a shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestNewMeterProvider_Stdout(t *testing.T) {
	ctx := context.Background()
	mp, err := NewMeterProvider(ctx, OtelConfig{Enabled: true}, nil)
	if err != nil {
		t.Fatalf("NewMeterProvider: %v", err)
	}
	counter, err := mp.Meter("test").Int64Counter("uow.commits")
	if err != nil {
		t.Fatalf("Int64Counter: %v", err)
	}
	counter.Add(ctx, 1)
	if err := mp.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
