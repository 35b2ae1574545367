package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorder_CapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveCommit("success", 2, 10*time.Millisecond)
	h.IncAuditDropped(2)

	last, ok := h.Last()
	if !ok {
		t.Fatalf("expected a commit event")
	}
	if last.Status != "success" || last.Rows != 2 {
		t.Fatalf("unexpected commit event: %+v", last)
	}
	if len(h.AuditDropped) != 1 || h.AuditDropped[0] != 2 {
		t.Fatalf("unexpected audit drops: %+v", h.AuditDropped)
	}
}

func TestHooksRecorder_EmptyHasNoLast(t *testing.T) {
	h := &HooksRecorder{}
	if _, ok := h.Last(); ok {
		t.Fatalf("expected no commit event")
	}
}
